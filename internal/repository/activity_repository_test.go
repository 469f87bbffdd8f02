package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-research-portal/internal/models"
	"github.com/noah-isme/sma-research-portal/internal/schema"
)

func TestActivityRepositoryAppend(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewActivityRepository(db, migratedCaps())

	mock.ExpectQuery("INSERT INTO activity_logs").
		WithArgs("admin", "1", models.ActionDepartmentCreate, `{"name":"CCS"}`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(1, time.Now()))

	entry := &models.ActivityLog{ActorType: "admin", ActorID: "1", Action: models.ActionDepartmentCreate, Details: []byte(`{"name":"CCS"}`)}
	require.NoError(t, repo.Append(context.Background(), entry))
	assert.Equal(t, int64(1), entry.ID)
	assert.False(t, entry.CreatedAt.IsZero())
}

func TestActivityRepositoryAppendSkipsWithoutTable(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewActivityRepository(db, schema.Static(&schema.Capabilities{}))

	require.NoError(t, repo.Append(context.Background(), &models.ActivityLog{Action: models.ActionLogin}))
	require.NoError(t, mock.ExpectationsWereMet())
}
