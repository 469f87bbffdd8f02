package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sma-research-portal/internal/dto"
	"github.com/noah-isme/sma-research-portal/internal/models"
	appErrors "github.com/noah-isme/sma-research-portal/pkg/errors"
)

type adviserStore interface {
	ListAdvisers(ctx context.Context, filter models.EmployeeFilter) ([]models.Employee, error)
	FindAdviser(ctx context.Context, id int64) (*models.Employee, error)
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
	CreateAdviser(ctx context.Context, emp models.NewEmployee) (int64, error)
	Archive(ctx context.Context, id int64) error
	Restore(ctx context.Context, id int64) error
}

type departmentLookup interface {
	Tracked() bool
	FindByName(ctx context.Context, name string) (*models.Department, error)
}

// resolveDepartment maps a submitted label onto a departments row. When the
// table does not exist the label is stored as given.
func resolveDepartment(ctx context.Context, lookup departmentLookup, label string) (*int64, string, error) {
	label = strings.TrimSpace(label)
	if label == "" || lookup == nil || !lookup.Tracked() {
		return nil, label, nil
	}
	dept, err := lookup.FindByName(ctx, label)
	if err != nil {
		if isNotFound(err) {
			return nil, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("department %q does not exist", label))
		}
		return nil, "", internalError(err, "failed to load department")
	}
	id := dept.ID
	return &id, dept.Name, nil
}

// SubAdminService manages research adviser accounts.
type SubAdminService struct {
	repo        adviserStore
	departments departmentLookup
	activity    activityRecorder
	cache       *CacheService
	validator   *validator.Validate
	logger      *zap.Logger
	hashCost    int
}

// NewSubAdminService constructs the service.
func NewSubAdminService(repo adviserStore, departments departmentLookup, activity activityRecorder, cache *CacheService, v *validator.Validate, logger *zap.Logger) *SubAdminService {
	if v == nil {
		v = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SubAdminService{
		repo:        repo,
		departments: departments,
		activity:    orNoop(activity),
		cache:       cache,
		validator:   v,
		logger:      logger,
		hashCost:    bcrypt.DefaultCost,
	}
}

// List returns active or archived research advisers.
func (s *SubAdminService) List(ctx context.Context, actor *models.Principal, filter models.EmployeeFilter) ([]models.Employee, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	items, err := s.repo.ListAdvisers(ctx, filter)
	if err != nil {
		return nil, internalError(err, "failed to load research advisers")
	}
	return items, nil
}

// Create adds a research adviser account.
func (s *SubAdminService) Create(ctx context.Context, actor *models.Principal, req dto.CreateSubAdminRequest) (*dto.Result, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Department = strings.TrimSpace(req.Department)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	taken, err := s.repo.EmailTaken(ctx, req.Email, 0)
	if err != nil {
		return nil, internalError(err, "failed to check email")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, "email is already in use")
	}

	deptID, deptName, err := resolveDepartment(ctx, s.departments, req.Department)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, internalError(err, "failed to secure password")
	}

	id, err := s.repo.CreateAdviser(ctx, models.NewEmployee{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		PasswordHash: string(hash),
		DepartmentID: deptID,
		Department:   deptName,
		Permissions:  req.Permissions,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "email is already in use")
		}
		return nil, internalError(err, "failed to create research adviser")
	}

	s.activity.Record(ctx, actor, models.ActionSubAdminCreate, map[string]interface{}{"id": id, "email": req.Email})
	_ = s.cache.Invalidate(ctx, dashboardCacheKey)
	return dto.Succeeded(fmt.Sprintf("Research adviser %s %s created", req.FirstName, req.LastName)).With("id", id), nil
}

// Archive hides an active adviser from listings and blocks their login.
func (s *SubAdminService) Archive(ctx context.Context, actor *models.Principal, rawID string) (*dto.Result, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	id, err := parseID(rawID, "research adviser")
	if err != nil {
		return nil, err
	}
	emp, err := s.repo.FindAdviser(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "research adviser not found")
		}
		return nil, internalError(err, "failed to load research adviser")
	}
	if emp.Archived {
		return nil, appErrors.Clone(appErrors.ErrValidation, "research adviser is already archived")
	}
	if err := s.repo.Archive(ctx, id); err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrValidation, "research adviser could not be archived")
		}
		return nil, internalError(err, "failed to archive research adviser")
	}

	s.activity.Record(ctx, actor, models.ActionSubAdminArchive, map[string]interface{}{"id": id})
	_ = s.cache.Invalidate(ctx, dashboardCacheKey)
	return dto.Succeeded(fmt.Sprintf("%s has been archived", emp.DisplayName)), nil
}

// Restore returns an archived adviser to the active list. The update only
// matches archived research advisers, so an unknown or active id changes
// nothing and yields an error.
func (s *SubAdminService) Restore(ctx context.Context, actor *models.Principal, rawID string) (*dto.Result, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	id, err := parseID(rawID, "research adviser")
	if err != nil {
		return nil, err
	}
	if err := s.repo.Restore(ctx, id); err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no archived research adviser with that id")
		}
		return nil, internalError(err, "failed to restore research adviser")
	}

	s.activity.Record(ctx, actor, models.ActionSubAdminRestore, map[string]interface{}{"id": id})
	_ = s.cache.Invalidate(ctx, dashboardCacheKey)
	return dto.Succeeded("Research adviser restored successfully"), nil
}
