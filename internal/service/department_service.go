package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-research-portal/internal/dto"
	"github.com/noah-isme/sma-research-portal/internal/models"
	"github.com/noah-isme/sma-research-portal/internal/schema"
	appErrors "github.com/noah-isme/sma-research-portal/pkg/errors"
)

type departmentStore interface {
	List(ctx context.Context) ([]models.Department, error)
	FindByID(ctx context.Context, id int64) (*models.Department, error)
	NameExists(ctx context.Context, name string) (bool, error)
	Create(ctx context.Context, name string, code *string) (int64, error)
	Delete(ctx context.Context, id int64) error
	Backfill(ctx context.Context) (*models.BackfillReport, error)
}

type schemaRefresher interface {
	Refresh(ctx context.Context) *schema.Capabilities
}

// DepartmentService implements department maintenance.
type DepartmentService struct {
	repo      departmentStore
	schema    schemaRefresher
	activity  activityRecorder
	cache     *CacheService
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewDepartmentService constructs the service. refresher may be nil.
func NewDepartmentService(repo departmentStore, refresher schemaRefresher, activity activityRecorder, cache *CacheService, metrics *MetricsService, v *validator.Validate, logger *zap.Logger) *DepartmentService {
	if v == nil {
		v = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DepartmentService{repo: repo, schema: refresher, activity: orNoop(activity), cache: cache, metrics: metrics, validator: v, logger: logger}
}

// List returns all departments ordered by name.
func (s *DepartmentService) List(ctx context.Context, actor *models.Principal) ([]models.Department, error) {
	if err := requirePrincipal(actor); err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, internalError(err, "failed to load departments")
	}
	return items, nil
}

// Add creates a department after rejecting names that already exist
// ignoring case and whitespace.
func (s *DepartmentService) Add(ctx context.Context, actor *models.Principal, req dto.AddDepartmentRequest) (*dto.Result, error) {
	if err := requirePermission(actor, models.PermissionManageDepartments); err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Code = strings.TrimSpace(req.Code)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	exists, err := s.repo.NameExists(ctx, req.Name)
	if err != nil {
		return nil, internalError(err, "failed to check department name")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("department %q already exists", req.Name))
	}

	var code *string
	if req.Code != "" {
		code = &req.Code
	}
	id, err := s.repo.Create(ctx, req.Name, code)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("department %q already exists", req.Name))
		}
		return nil, internalError(err, "failed to add department")
	}

	s.activity.Record(ctx, actor, models.ActionDepartmentCreate, map[string]interface{}{"id": id, "name": req.Name})
	s.invalidateDashboard(ctx)
	return dto.Succeeded(fmt.Sprintf("Department %q added", req.Name)).With("id", id), nil
}

// Delete hard-deletes a department by id.
func (s *DepartmentService) Delete(ctx context.Context, actor *models.Principal, rawID string) (*dto.Result, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	id, err := parseID(rawID, "department")
	if err != nil {
		return nil, err
	}
	dept, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, internalError(err, "failed to load department")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "department not found")
		}
		return nil, internalError(err, "failed to delete department")
	}

	s.activity.Record(ctx, actor, models.ActionDepartmentDelete, map[string]interface{}{"id": id, "name": dept.Name})
	s.invalidateDashboard(ctx)
	return dto.Succeeded(fmt.Sprintf("Department %q deleted", dept.Name)), nil
}

// Backfill copies department labels into the id columns and re-resolves the
// capability map. It returns a plain-text report.
func (s *DepartmentService) Backfill(ctx context.Context, actor *models.Principal) (string, error) {
	if err := requireAdmin(actor); err != nil {
		return "", err
	}
	report, err := s.repo.Backfill(ctx)
	if err != nil {
		return "", internalError(err, "department backfill failed")
	}
	if s.schema != nil {
		s.schema.Refresh(ctx)
		s.metrics.RecordSchemaRefresh()
	}
	s.activity.Record(ctx, actor, models.ActionDepartmentBackfill, map[string]interface{}{
		"employees": report.EmployeesUpdated,
		"students":  report.StudentsUpdated,
		"roles":     report.RolesUpdated,
	})
	s.logger.Info("department backfill finished",
		zap.Int64("employees", report.EmployeesUpdated),
		zap.Int64("students", report.StudentsUpdated),
		zap.Int64("roles", report.RolesUpdated))
	return FormatBackfill(report), nil
}

// FormatBackfill renders the report the way the maintenance endpoint and
// the CLI print it.
func FormatBackfill(r *models.BackfillReport) string {
	if r == nil {
		return "nothing to do\n"
	}
	var b strings.Builder
	b.WriteString("employees updated: " + strconv.FormatInt(r.EmployeesUpdated, 10) + "\n")
	b.WriteString("students updated: " + strconv.FormatInt(r.StudentsUpdated, 10) + "\n")
	b.WriteString("roles updated: " + strconv.FormatInt(r.RolesUpdated, 10) + "\n")
	return b.String()
}

func (s *DepartmentService) invalidateDashboard(ctx context.Context) {
	_ = s.cache.Invalidate(ctx, dashboardCacheKey)
}
