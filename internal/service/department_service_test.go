package service

import (
	"context"
	"regexp"
	"strings"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-research-portal/internal/dto"
	"github.com/noah-isme/sma-research-portal/internal/models"
	"github.com/noah-isme/sma-research-portal/internal/schema"
	appErrors "github.com/noah-isme/sma-research-portal/pkg/errors"
)

var whitespace = regexp.MustCompile(`\s+`)

func normalise(s string) string {
	return whitespace.ReplaceAllString(strings.ToLower(s), "")
}

type departmentRepoStub struct {
	items     []models.Department
	createErr error
	deleted   []int64
	backfill  *models.BackfillReport
}

func (r *departmentRepoStub) List(ctx context.Context) ([]models.Department, error) {
	return r.items, nil
}

func (r *departmentRepoStub) FindByID(ctx context.Context, id int64) (*models.Department, error) {
	for i := range r.items {
		if r.items[i].ID == id {
			return &r.items[i], nil
		}
	}
	return nil, errNoRows
}

func (r *departmentRepoStub) NameExists(ctx context.Context, name string) (bool, error) {
	for _, d := range r.items {
		if normalise(d.Name) == normalise(name) {
			return true, nil
		}
	}
	return false, nil
}

func (r *departmentRepoStub) Create(ctx context.Context, name string, code *string) (int64, error) {
	if r.createErr != nil {
		return 0, r.createErr
	}
	id := int64(len(r.items) + 1)
	r.items = append(r.items, models.Department{ID: id, Name: name, Code: code, Active: true})
	return id, nil
}

func (r *departmentRepoStub) Delete(ctx context.Context, id int64) error {
	for i := range r.items {
		if r.items[i].ID == id {
			r.items = append(r.items[:i], r.items[i+1:]...)
			r.deleted = append(r.deleted, id)
			return nil
		}
	}
	return errNoRows
}

func (r *departmentRepoStub) Backfill(ctx context.Context) (*models.BackfillReport, error) {
	return r.backfill, nil
}

type refresherStub struct{ calls int }

func (r *refresherStub) Refresh(ctx context.Context) *schema.Capabilities {
	r.calls++
	return &schema.Capabilities{}
}

func TestDepartmentServiceAddRejectsNormalisedDuplicate(t *testing.T) {
	repo := &departmentRepoStub{}
	activity := &activityStub{}
	svc := NewDepartmentService(repo, nil, activity, nil, nil, nil, nil)

	res, err := svc.Add(context.Background(), adminActor, dto.AddDepartmentRequest{Name: "  Computer Studies ", Code: "CCS"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, `Department "Computer Studies" added`, res.Message)
	require.Len(t, repo.items, 1)
	assert.Equal(t, "Computer Studies", repo.items[0].Name)
	require.NotNil(t, repo.items[0].Code)
	assert.Equal(t, "CCS", *repo.items[0].Code)

	_, err = svc.Add(context.Background(), adminActor, dto.AddDepartmentRequest{Name: "computer   STUDIES"})
	requireAppError(t, err, appErrors.ErrConflict.Code)
	assert.Len(t, repo.items, 1)
	assert.Equal(t, []string{models.ActionDepartmentCreate}, activity.actions())
}

func TestDepartmentServiceAddValidation(t *testing.T) {
	svc := NewDepartmentService(&departmentRepoStub{}, nil, nil, nil, nil, nil, nil)

	_, err := svc.Add(context.Background(), adminActor, dto.AddDepartmentRequest{Name: "   "})
	appErr := requireAppError(t, err, appErrors.ErrValidation.Code)
	assert.Equal(t, "name is required", appErr.Message)

	_, err = svc.Add(context.Background(), adminActor, dto.AddDepartmentRequest{Name: "Arts", Code: strings.Repeat("X", 21)})
	appErr = requireAppError(t, err, appErrors.ErrValidation.Code)
	assert.Equal(t, "code must be at most 20 characters", appErr.Message)
}

func TestDepartmentServiceAddPermissions(t *testing.T) {
	repo := &departmentRepoStub{}
	svc := NewDepartmentService(repo, nil, nil, nil, nil, nil, nil)

	_, err := svc.Add(context.Background(), studentActor, dto.AddDepartmentRequest{Name: "Arts"})
	requireAppError(t, err, appErrors.ErrForbidden.Code)

	_, err = svc.Add(context.Background(), plainAdviser, dto.AddDepartmentRequest{Name: "Arts"})
	requireAppError(t, err, appErrors.ErrForbidden.Code)

	granted := &models.Principal{Type: models.UserTypeSubAdmin, ID: "9", Permissions: []string{models.PermissionManageDepartments}}
	_, err = svc.Add(context.Background(), granted, dto.AddDepartmentRequest{Name: "Arts"})
	require.NoError(t, err)

	_, err = svc.Add(context.Background(), nil, dto.AddDepartmentRequest{Name: "Arts"})
	requireAppError(t, err, appErrors.ErrUnauthorized.Code)
	assert.Len(t, repo.items, 1)
}

func TestDepartmentServiceAddUniqueViolationIsConflict(t *testing.T) {
	repo := &departmentRepoStub{createErr: &pq.Error{Code: "23505"}}
	svc := NewDepartmentService(repo, nil, nil, nil, nil, nil, nil)

	_, err := svc.Add(context.Background(), adminActor, dto.AddDepartmentRequest{Name: "Arts"})
	requireAppError(t, err, appErrors.ErrConflict.Code)
}

func TestDepartmentServiceDelete(t *testing.T) {
	repo := &departmentRepoStub{items: []models.Department{{ID: 3, Name: "CCS"}}}
	svc := NewDepartmentService(repo, nil, nil, nil, nil, nil, nil)

	_, err := svc.Delete(context.Background(), adminActor, "abc")
	requireAppError(t, err, appErrors.ErrValidation.Code)

	_, err = svc.Delete(context.Background(), adminActor, "99")
	requireAppError(t, err, appErrors.ErrNotFound.Code)

	_, err = svc.Delete(context.Background(), adviserActor, "3")
	requireAppError(t, err, appErrors.ErrForbidden.Code)

	res, err := svc.Delete(context.Background(), adminActor, "3")
	require.NoError(t, err)
	assert.Equal(t, `Department "CCS" deleted`, res.Message)
	assert.Equal(t, []int64{3}, repo.deleted)
}

func TestDepartmentServiceBackfillRefreshesCapabilities(t *testing.T) {
	repo := &departmentRepoStub{backfill: &models.BackfillReport{EmployeesUpdated: 4, StudentsUpdated: 12}}
	refresher := &refresherStub{}
	svc := NewDepartmentService(repo, refresher, nil, nil, NewMetricsService(), nil, nil)

	_, err := svc.Backfill(context.Background(), adviserActor)
	requireAppError(t, err, appErrors.ErrForbidden.Code)
	assert.Zero(t, refresher.calls)

	out, err := svc.Backfill(context.Background(), adminActor)
	require.NoError(t, err)
	assert.Equal(t, "employees updated: 4\nstudents updated: 12\nroles updated: 0\n", out)
	assert.Equal(t, 1, refresher.calls)
}
