package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-research-portal/internal/models"
	appErrors "github.com/noah-isme/sma-research-portal/pkg/errors"
)

// NewValidator returns a validator that reports fields by their form name.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
		if name == "" || name == "-" {
			return strings.ToLower(f.Name)
		}
		return name
	})
	return v
}

// validationError turns validator output into a single readable message.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, appErrors.ErrValidation.Message)
	}
	fe := fieldErrs[0]
	field := strings.ReplaceAll(fe.Field(), "_", " ")
	var msg string
	switch fe.Tag() {
	case "required":
		msg = fmt.Sprintf("%s is required", field)
	case "email":
		msg = fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		msg = fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		msg = fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "eqfield":
		msg = fmt.Sprintf("%s does not match", field)
	case "oneof":
		msg = fmt.Sprintf("%s has an unsupported value", field)
	default:
		msg = fmt.Sprintf("%s is invalid", field)
	}
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, msg)
}

func internalError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, message)
}

// parseID enforces a positive numeric identifier.
func parseID(raw, label string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("invalid %s id", label))
	}
	return id, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}

// isUniqueViolation reports a 23505 from PostgreSQL.
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == "23505"
}

func requirePrincipal(p *models.Principal) error {
	if p == nil || !p.Type.Valid() || p.ID == "" {
		return appErrors.ErrUnauthorized
	}
	return nil
}

func requireAdmin(p *models.Principal) error {
	if err := requirePrincipal(p); err != nil {
		return err
	}
	if !p.IsAdmin() {
		return appErrors.Clone(appErrors.ErrForbidden, "administrator access required")
	}
	return nil
}

func requirePermission(p *models.Principal, permission string) error {
	if err := requirePrincipal(p); err != nil {
		return err
	}
	if p.IsStudent() || !p.Can(permission) {
		return appErrors.Clone(appErrors.ErrForbidden, "you do not have permission to do that")
	}
	return nil
}

type activityStore interface {
	Append(ctx context.Context, entry *models.ActivityLog) error
	List(ctx context.Context, filter models.ActivityFilter) ([]models.ActivityLog, int, error)
}

// activityRecorder appends audit entries; failures never fail the caller.
type activityRecorder interface {
	Record(ctx context.Context, actor *models.Principal, action string, details map[string]interface{})
}

type noopActivity struct{}

func (noopActivity) Record(context.Context, *models.Principal, string, map[string]interface{}) {}

func orNoop(a activityRecorder) activityRecorder {
	if a == nil {
		return noopActivity{}
	}
	return a
}

// ActivityService records and lists the activity log.
type ActivityService struct {
	repo   activityStore
	logger *zap.Logger
}

// NewActivityService constructs the service.
func NewActivityService(repo activityStore, logger *zap.Logger) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ActivityService{repo: repo, logger: logger}
}

// Record appends an entry, logging instead of failing on error.
func (s *ActivityService) Record(ctx context.Context, actor *models.Principal, action string, details map[string]interface{}) {
	if s == nil || s.repo == nil || actor == nil {
		return
	}
	entry := &models.ActivityLog{ActorType: string(actor.Type), ActorID: actor.ID, Action: action}
	if len(details) > 0 {
		raw, err := json.Marshal(details)
		if err != nil {
			s.logger.Warn("encode activity details", zap.String("action", action), zap.Error(err))
		} else {
			entry.Details = raw
		}
	}
	if err := s.repo.Append(ctx, entry); err != nil {
		s.logger.Warn("failed to record activity", zap.String("action", action), zap.Error(err))
	}
}

// List returns a page of activity entries.
func (s *ActivityService) List(ctx context.Context, actor *models.Principal, filter models.ActivityFilter) ([]models.ActivityLog, *models.Pagination, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, nil, err
	}
	filter.Page, filter.PageSize = models.Normalize(filter.Page, filter.PageSize, 200)
	items, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, internalError(err, "failed to load activity log")
	}
	return items, &models.Pagination{Page: filter.Page, PageSize: filter.PageSize, TotalCount: total}, nil
}
