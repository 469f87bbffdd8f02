package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-research-portal/internal/dto"
	"github.com/noah-isme/sma-research-portal/internal/models"
	appErrors "github.com/noah-isme/sma-research-portal/pkg/errors"
)

type strandStore interface {
	List(ctx context.Context) ([]models.Strand, error)
	FindByID(ctx context.Context, id int64) (*models.Strand, error)
	NameTaken(ctx context.Context, name string, excludeID int64) (bool, error)
	Rename(ctx context.Context, id int64, name string) error
}

// StrandService manages SHS strands.
type StrandService struct {
	repo      strandStore
	activity  activityRecorder
	validator *validator.Validate
	logger    *zap.Logger
}

// NewStrandService constructs the service.
func NewStrandService(repo strandStore, activity activityRecorder, v *validator.Validate, logger *zap.Logger) *StrandService {
	if v == nil {
		v = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StrandService{repo: repo, activity: orNoop(activity), validator: v, logger: logger}
}

// List returns every strand.
func (s *StrandService) List(ctx context.Context, actor *models.Principal) ([]models.Strand, error) {
	if err := requirePrincipal(actor); err != nil {
		return nil, err
	}
	items, err := s.repo.List(ctx)
	if err != nil {
		return nil, internalError(err, "failed to load strands")
	}
	return items, nil
}

// Update renames a strand. Names stay unique ignoring case and whitespace.
func (s *StrandService) Update(ctx context.Context, actor *models.Principal, rawID string, req dto.UpdateStrandRequest) (*dto.Result, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	id, err := parseID(rawID, "strand")
	if err != nil {
		return nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "strand not found")
		}
		return nil, internalError(err, "failed to load strand")
	}

	taken, err := s.repo.NameTaken(ctx, req.Name, id)
	if err != nil {
		return nil, internalError(err, "failed to check strand name")
	}
	if taken {
		return nil, appErrors.Clone(appErrors.ErrConflict, fmt.Sprintf("strand %q already exists", req.Name))
	}

	if err := s.repo.Rename(ctx, id, req.Name); err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "strand not found")
		}
		return nil, internalError(err, "failed to update strand")
	}

	s.activity.Record(ctx, actor, models.ActionStrandUpdate, map[string]interface{}{"id": id, "from": current.Name, "to": req.Name})
	return dto.Succeeded("Strand updated"), nil
}
