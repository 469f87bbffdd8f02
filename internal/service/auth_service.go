package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/sma-research-portal/internal/dto"
	"github.com/noah-isme/sma-research-portal/internal/models"
	appErrors "github.com/noah-isme/sma-research-portal/pkg/errors"
	"github.com/noah-isme/sma-research-portal/pkg/mailer"
)

const resetRequestedMessage = "If that email is registered, a password reset link has been sent"

type employeeCredentialStore interface {
	FindCredentials(ctx context.Context, email string) (*models.EmployeeCredentials, error)
}

type studentCredentialStore interface {
	FindCredentials(ctx context.Context, email string) (*models.StudentCredentials, error)
	FindByResetToken(ctx context.Context, token string) (*models.StudentCredentials, error)
	SetResetToken(ctx context.Context, id, token string, expires time.Time) error
	ResetPassword(ctx context.Context, id, token, passwordHash string) error
}

// AuthConfig configures login and password reset.
type AuthConfig struct {
	PublicURL   string
	ResetSecret string
	ResetTTL    time.Duration
}

// AuthService authenticates principals and runs student password resets.
type AuthService struct {
	employees employeeCredentialStore
	students  studentCredentialStore
	mail      mailer.Backend
	activity  activityRecorder
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       AuthConfig
	now       func() time.Time
	hashCost  int
}

// NewAuthService constructs the service.
func NewAuthService(employees employeeCredentialStore, students studentCredentialStore, mail mailer.Backend, activity activityRecorder, metrics *MetricsService, v *validator.Validate, logger *zap.Logger, cfg AuthConfig) *AuthService {
	if v == nil {
		v = NewValidator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.ResetTTL <= 0 {
		cfg.ResetTTL = time.Hour
	}
	return &AuthService{
		employees: employees,
		students:  students,
		mail:      mail,
		activity:  orNoop(activity),
		metrics:   metrics,
		validator: v,
		logger:    logger,
		cfg:       cfg,
		now:       time.Now,
		hashCost:  bcrypt.DefaultCost,
	}
}

// Login checks credentials for the requested principal type.
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (principal *models.Principal, err error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.UserType = strings.ToLower(strings.TrimSpace(req.UserType))
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	defer func() { s.metrics.RecordLogin(req.UserType, err == nil) }()

	switch models.UserType(req.UserType) {
	case models.UserTypeStudent:
		principal, err = s.loginStudent(ctx, req)
	default:
		principal, err = s.loginEmployee(ctx, req)
	}
	if err != nil {
		return nil, err
	}
	principal.IssuedAt = s.now().UTC()
	s.activity.Record(ctx, principal, models.ActionLogin, nil)
	return principal, nil
}

func (s *AuthService) loginStudent(ctx context.Context, req dto.LoginRequest) (*models.Principal, error) {
	creds, err := s.students.FindCredentials(ctx, req.Email)
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, internalError(err, "failed to log in")
	}
	if bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(req.Password)) != nil {
		return nil, appErrors.ErrInvalidCredentials
	}
	return &models.Principal{Type: models.UserTypeStudent, ID: creds.StudentID, Name: creds.DisplayName}, nil
}

func (s *AuthService) loginEmployee(ctx context.Context, req dto.LoginRequest) (*models.Principal, error) {
	creds, err := s.employees.FindCredentials(ctx, req.Email)
	if err != nil {
		if isNotFound(err) {
			return nil, appErrors.ErrInvalidCredentials
		}
		return nil, internalError(err, "failed to log in")
	}
	if bcrypt.CompareHashAndPassword([]byte(creds.PasswordHash), []byte(req.Password)) != nil {
		return nil, appErrors.ErrInvalidCredentials
	}

	userType := models.UserType(req.UserType)
	want := models.RoleResearchAdviser
	if userType == models.UserTypeAdmin {
		want = models.RoleAdmin
	}
	if !strings.EqualFold(creds.Role, want) {
		return nil, appErrors.ErrInvalidCredentials
	}
	if creds.Archived {
		return nil, appErrors.ErrInactiveAccount
	}

	p := &models.Principal{Type: userType, ID: fmt.Sprintf("%d", creds.ID), Name: creds.DisplayName}
	if userType == models.UserTypeSubAdmin {
		p.Permissions = creds.PermissionList()
	}
	return p, nil
}

// Logout records the logout; the caller clears the session.
func (s *AuthService) Logout(ctx context.Context, actor *models.Principal) *dto.Result {
	if actor != nil {
		s.activity.Record(ctx, actor, models.ActionLogout, nil)
	}
	return dto.Succeeded("You have been logged out")
}

type resetClaims struct {
	jwt.RegisteredClaims
}

// ForgotPassword issues a reset token for the student and e-mails a link.
// The reply is the same whether or not the address exists.
func (s *AuthService) ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequest) (*dto.Result, error) {
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}

	creds, err := s.students.FindCredentials(ctx, req.Email)
	if err != nil {
		if isNotFound(err) {
			return dto.Succeeded(resetRequestedMessage), nil
		}
		return nil, internalError(err, "failed to start password reset")
	}

	now := s.now()
	expires := now.Add(s.cfg.ResetTTL)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, resetClaims{jwt.RegisteredClaims{
		Subject:   creds.StudentID,
		ID:        uuid.NewString(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
	}}).SignedString([]byte(s.cfg.ResetSecret))
	if err != nil {
		return nil, internalError(err, "failed to start password reset")
	}

	if err := s.students.SetResetToken(ctx, creds.StudentID, token, expires); err != nil {
		return nil, internalError(err, "failed to start password reset")
	}

	link := s.cfg.PublicURL + "/auth/password/reset?token=" + url.QueryEscape(token)
	msg, err := mailer.PasswordReset(creds.Email, creds.DisplayName, link, s.cfg.ResetTTL.String())
	if err != nil {
		return nil, internalError(err, "failed to send reset email")
	}
	if err := s.mail.Send(msg); err != nil {
		s.logger.Error("password reset email failed", zap.String("student_id", creds.StudentID), zap.Error(err))
		return nil, internalError(err, "failed to send reset email")
	}
	return dto.Succeeded(resetRequestedMessage), nil
}

// ResetPassword redeems a reset token. Tokens are single use.
func (s *AuthService) ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) (*dto.Result, error) {
	req.Token = strings.TrimSpace(req.Token)
	if err := s.validator.Struct(req); err != nil {
		return nil, validationError(err)
	}
	invalid := appErrors.Clone(appErrors.ErrValidation, "reset link is invalid or has expired")

	claims := &resetClaims{}
	_, err := jwt.ParseWithClaims(req.Token, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.ResetSecret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, invalid
	}

	creds, err := s.students.FindByResetToken(ctx, req.Token)
	if err != nil {
		if isNotFound(err) {
			return nil, invalid
		}
		return nil, internalError(err, "failed to reset password")
	}
	if creds.StudentID != claims.Subject {
		return nil, invalid
	}
	if creds.ResetTokenExpires != nil && s.now().After(*creds.ResetTokenExpires) {
		return nil, invalid
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.hashCost)
	if err != nil {
		return nil, internalError(err, "failed to secure password")
	}
	if err := s.students.ResetPassword(ctx, creds.StudentID, req.Token, string(hash)); err != nil {
		if isNotFound(err) {
			return nil, invalid
		}
		return nil, internalError(err, "failed to reset password")
	}

	actor := &models.Principal{Type: models.UserTypeStudent, ID: creds.StudentID}
	s.activity.Record(ctx, actor, models.ActionPasswordReset, nil)
	result := dto.Succeeded("Your password has been reset, you can now log in")
	result.Redirect = "/"
	return result, nil
}
