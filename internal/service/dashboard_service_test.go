package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-research-portal/internal/models"
	appErrors "github.com/noah-isme/sma-research-portal/pkg/errors"
)

type countsStub struct{ calls int }

func (c *countsStub) List(ctx context.Context) ([]models.Department, error) {
	c.calls++
	return []models.Department{{ID: 1}, {ID: 2}}, nil
}

func (c *countsStub) Count(ctx context.Context) (int64, error) { return 40, nil }

func (c *countsStub) CountAdvisers(ctx context.Context) (int64, int64, error) { return 3, 1, nil }

func (c *countsStub) Totals(ctx context.Context) (int64, int64, error) { return 9, 120, nil }

func TestDashboardServiceCounts(t *testing.T) {
	stub := &countsStub{}
	svc := NewDashboardService(stub, stub, stub, stub, nil, NewMetricsService(), time.Minute, nil)

	dash, err := svc.Get(context.Background(), adminActor)
	require.NoError(t, err)
	assert.Equal(t, models.DashboardCounts{
		Departments: 2, Students: 40, ActiveAdvisers: 3, ArchivedAdvisers: 1, Submissions: 9, TotalViews: 120,
	}, dash.Counts)
	assert.False(t, dash.System.GeneratedAt.IsZero())

	_, err = svc.Get(context.Background(), studentActor)
	requireAppError(t, err, appErrors.ErrForbidden.Code)
	assert.Equal(t, 1, stub.calls)
}
