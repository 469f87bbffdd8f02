package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-research-portal/internal/models"
	"github.com/noah-isme/sma-research-portal/internal/schema"
)

var submissionColumns = []string{"id", "title", "abstract", "keywords", "author", "department", "strand",
	"student_id", "adviser_id", "status", "views", "image_path", "document_path", "created_at"}

func TestSubmissionRepositoryTitleExists(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSubmissionRepository(db, migratedCaps())

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE status = 1 AND REGEXP_REPLACE(LOWER(title), '\s+', '', 'g') = REGEXP_REPLACE(LOWER($1), '\s+', '', 'g')`)).
		WithArgs("A").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := repo.TitleExists(context.Background(), "A")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSubmissionRepositoryCreateIsApproved(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSubmissionRepository(db, migratedCaps())
	student := "2024-001"
	doc := "uploads/research_documents/x.pdf"

	mock.ExpectQuery(regexp.QuoteMeta(
		"INSERT INTO cap_books (title, abstract, author, department, status, keywords, strand, student_id, document_path, views) VALUES ($1, $2, $3, $4, 1, $5, $6, $7, $8, 0) RETURNING id")).
		WithArgs("Solar Dryers", "abs", "Ben", "CCS", "solar", "STEM", &student, &doc).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(21))

	id, err := repo.Create(context.Background(), models.NewSubmission{
		Title: "Solar Dryers", Abstract: "abs", Keywords: "solar", Author: "Ben", Department: "CCS", Strand: "STEM",
		StudentID: &student, DocumentPath: &doc,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(21), id)
}

func TestSubmissionRepositoryListFiltersAndPaginates(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSubmissionRepository(db, migratedCaps())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM cap_books b WHERE b.status = 1 AND b.department = $1 AND b.strand = $2")).
		WithArgs("CCS", "STEM").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY b.created_at DESC, b.id DESC LIMIT $3 OFFSET $4")).
		WithArgs("CCS", "STEM", 10, 10).
		WillReturnRows(sqlmock.NewRows(submissionColumns).
			AddRow(1, "Solar", "", "", "Ben", "CCS", "STEM", nil, nil, 1, 4, nil, nil, time.Now()))

	items, total, err := repo.List(context.Background(), models.SubmissionFilter{Department: "CCS", Strand: "STEM", Page: 2, PageSize: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, items, 1)
	assert.Equal(t, int64(4), items[0].Views)
}

func TestSubmissionRepositoryStrandFilterWithoutColumn(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSubmissionRepository(db, schema.Static(&schema.Capabilities{}))

	mock.ExpectQuery(regexp.QuoteMeta("WHERE b.status = 1 AND 1=0")).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(regexp.QuoteMeta("0 AS views")).
		WillReturnRows(sqlmock.NewRows(submissionColumns))

	items, total, err := repo.List(context.Background(), models.SubmissionFilter{Strand: "STEM"})
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, items)
}

func TestSubmissionRepositoryIncrementViewsWithoutColumn(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewSubmissionRepository(db, schema.Static(&schema.Capabilities{}))

	require.NoError(t, repo.IncrementViews(context.Background(), 1))
	require.NoError(t, mock.ExpectationsWereMet())
}
