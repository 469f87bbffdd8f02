package service

import (
	"context"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sma-research-portal/internal/dto"
	"github.com/noah-isme/sma-research-portal/internal/models"
	"github.com/noah-isme/sma-research-portal/internal/repository"
	appErrors "github.com/noah-isme/sma-research-portal/pkg/errors"
	"github.com/noah-isme/sma-research-portal/pkg/storage"
)

type studentProfileStore interface {
	FindByID(ctx context.Context, id string) (*models.Student, error)
	EmailTaken(ctx context.Context, email, excludeID string) (bool, error)
	UpdateProfile(ctx context.Context, id string, upd repository.ProfileUpdate, change repository.PasswordChange) error
}

type employeeProfileStore interface {
	FindByID(ctx context.Context, id int64) (*models.Employee, error)
	EmailTaken(ctx context.Context, email string, excludeID int64) (bool, error)
	UpdateProfile(ctx context.Context, id int64, upd repository.ProfileUpdate, change repository.PasswordChange) error
}

// ProfileService edits the caller's own account.
type ProfileService struct {
	students    studentProfileStore
	employees   employeeProfileStore
	departments departmentLookup
	files       fileStore
	activity    activityRecorder
	validator   *validator.Validate
	logger      *zap.Logger
	hashCost    int
}

// NewProfileService constructs the service.
func NewProfileService(students studentProfileStore, employees employeeProfileStore, departments departmentLookup, files fileStore, activity activityRecorder, v *validator.Validate, logger *zap.Logger) *ProfileService {
	if v == nil {
		v = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{
		students:    students,
		employees:   employees,
		departments: departments,
		files:       files,
		activity:    orNoop(activity),
		validator:   v,
		logger:      logger,
		hashCost:    bcrypt.DefaultCost,
	}
}

// Get returns the caller's profile row.
func (s *ProfileService) Get(ctx context.Context, actor *models.Principal) (interface{}, error) {
	if err := requirePrincipal(actor); err != nil {
		return nil, err
	}
	var (
		profile interface{}
		err     error
	)
	if actor.IsStudent() {
		profile, err = s.students.FindByID(ctx, actor.ID)
	} else {
		id, ok := actor.EmployeeID()
		if !ok {
			return nil, appErrors.ErrUnauthorized
		}
		profile, err = s.employees.FindByID(ctx, id)
	}
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return nil, internalError(err, "failed to load profile")
	}
	return profile, nil
}

// Update saves profile fields, an optional new picture and an optional
// password change. The field update and the password change commit
// together; a wrong current password or a mismatched confirmation leaves
// both untouched.
func (s *ProfileService) Update(ctx context.Context, actor *models.Principal, req dto.UpdateProfileRequest, picture *storage.File) (*dto.Result, error) {
	if err := requirePrincipal(actor); err != nil {
		return nil, err
	}
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Department = strings.TrimSpace(req.Department)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	wantsPassword := req.WantsPasswordChange()
	if wantsPassword && (req.CurrentPassword == "" || req.NewPassword == "") {
		return nil, appErrors.Clone(appErrors.ErrValidation, "enter your current password and a new password")
	}
	if picture != nil {
		if err := s.files.Validate(storage.KindProfile, picture); err != nil {
			return nil, err
		}
	}

	var (
		taken bool
		err   error
	)
	empID, isEmployee := actor.EmployeeID()
	switch {
	case actor.IsStudent():
		taken, err = s.students.EmailTaken(ctx, req.Email, actor.ID)
	case isEmployee:
		taken, err = s.employees.EmailTaken(ctx, req.Email, empID)
	default:
		return nil, appErrors.ErrUnauthorized
	}
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

	upd := repository.ProfileUpdate{
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		Email:        req.Email,
		Department:   deptName,
		DepartmentID: deptID,
	}

	var newPicture string
	if picture != nil {
		newPicture, err = s.files.Save(storage.KindProfile, picture)
		if err != nil {
			return nil, err
		}
		upd.ProfilePicture = &newPicture
	}

	var change repository.PasswordChange
	if wantsPassword {
		change = s.passwordChange(req.CurrentPassword, req.NewPassword, req.ConfirmPassword)
	}

	if actor.IsStudent() {
		err = s.students.UpdateProfile(ctx, actor.ID, upd, change)
	} else {
		err = s.employees.UpdateProfile(ctx, empID, upd, change)
	}
	if err != nil {
		if newPicture != "" {
			if rmErr := s.files.Remove(newPicture); rmErr != nil {
				s.logger.Warn("failed to remove profile picture", zap.String("path", newPicture), zap.Error(rmErr))
			}
		}
		var appErr *appErrors.Error
		if errors.As(err, &appErr) {
			return nil, appErr
		}
		if isNotFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "account not found")
		}
		return nil, internalError(err, "failed to update profile")
	}

	s.activity.Record(ctx, actor, models.ActionProfileUpdate, map[string]interface{}{"picture": newPicture != ""})
	msg := "Profile updated successfully"
	if wantsPassword {
		s.activity.Record(ctx, actor, models.ActionPasswordChange, nil)
		msg = "Profile and password updated successfully"
	}
	result := dto.Succeeded(msg)
	if newPicture != "" {
		result.With("profile_picture", newPicture)
	}
	return result, nil
}

// passwordChange verifies the locked hash and produces the replacement.
func (s *ProfileService) passwordChange(current, next, confirm string) repository.PasswordChange {
	return func(currentHash string) (string, error) {
		if bcrypt.CompareHashAndPassword([]byte(currentHash), []byte(current)) != nil {
			return "", appErrors.Clone(appErrors.ErrValidation, "current password is incorrect")
		}
		if next != confirm {
			return "", appErrors.Clone(appErrors.ErrValidation, "new password and confirmation do not match")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(next), s.hashCost)
		if err != nil {
			return "", internalError(err, "failed to secure password")
		}
		return string(hash), nil
	}
}
