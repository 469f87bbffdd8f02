package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-research-portal/internal/models"
	appErrors "github.com/noah-isme/sma-research-portal/pkg/errors"
)

type activityStoreStub struct {
	appended []*models.ActivityLog
	filter   models.ActivityFilter
}

func (s *activityStoreStub) Append(ctx context.Context, entry *models.ActivityLog) error {
	s.appended = append(s.appended, entry)
	return nil
}

func (s *activityStoreStub) List(ctx context.Context, filter models.ActivityFilter) ([]models.ActivityLog, int, error) {
	s.filter = filter
	return []models.ActivityLog{}, 0, nil
}

func TestActivityServiceRecordAndList(t *testing.T) {
	store := &activityStoreStub{}
	svc := NewActivityService(store, nil)

	svc.Record(context.Background(), adminActor, models.ActionDepartmentCreate, map[string]interface{}{"name": "CCS"})
	svc.Record(context.Background(), nil, models.ActionLogin, nil)
	require.Len(t, store.appended, 1)
	assert.Equal(t, "admin", store.appended[0].ActorType)
	assert.JSONEq(t, `{"name":"CCS"}`, string(store.appended[0].Details))

	_, page, err := svc.List(context.Background(), adminActor, models.ActivityFilter{PageSize: 1000})
	require.NoError(t, err)
	assert.Equal(t, 200, page.PageSize)
	assert.Equal(t, 200, store.filter.PageSize)

	_, _, err = svc.List(context.Background(), studentActor, models.ActivityFilter{})
	requireAppError(t, err, appErrors.ErrForbidden.Code)
}
