package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-research-portal/internal/models"
	appErrors "github.com/noah-isme/sma-research-portal/pkg/errors"
	"github.com/noah-isme/sma-research-portal/pkg/export"
)

type catalogueStub struct{ items []models.Submission }

func (c catalogueStub) ListAll(ctx context.Context) ([]models.Submission, error) { return c.items, nil }

func TestExportServiceCatalogue(t *testing.T) {
	source := catalogueStub{items: []models.Submission{
		{ID: 1, Title: "Solar Dryers", Author: "Ana Cruz", Department: "CCS", Views: 12, CreatedAt: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)},
	}}
	svc := NewExportService(source, export.NewCSVExporter(), export.NewPDFExporter(), nil)
	svc.now = func() time.Time { return time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC) }

	file, err := svc.Catalogue(context.Background(), adminActor, "CSV")
	require.NoError(t, err)
	assert.Equal(t, "research-catalogue-20240502-0930.csv", file.Filename)
	assert.Equal(t, "text/csv; charset=utf-8", file.ContentType)
	body := string(file.Data)
	assert.True(t, strings.Contains(body, "ID,Title,Author,Department,Strand,Keywords,Views,Uploaded"))
	assert.True(t, strings.Contains(body, "1,Solar Dryers,Ana Cruz,CCS,,,12,2024-03-01"))

	file, err = svc.Catalogue(context.Background(), adminActor, "pdf")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, bytes.HasPrefix(file.Data, []byte("%PDF")))

	_, err = svc.Catalogue(context.Background(), adminActor, "xlsx")
	requireAppError(t, err, appErrors.ErrValidation.Code)

	_, err = svc.Catalogue(context.Background(), adviserActor, "csv")
	requireAppError(t, err, appErrors.ErrForbidden.Code)
}
