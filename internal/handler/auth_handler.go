package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-research-portal/internal/dto"
	"github.com/noah-isme/sma-research-portal/internal/middleware"
	"github.com/noah-isme/sma-research-portal/internal/models"
	appErrors "github.com/noah-isme/sma-research-portal/pkg/errors"
	"github.com/noah-isme/sma-research-portal/pkg/response"
)

const forgotPasswordPath = "/auth/password/forgot"

type authService interface {
	Login(ctx context.Context, req dto.LoginRequest) (*models.Principal, error)
	Logout(ctx context.Context, actor *models.Principal) *dto.Result
	ForgotPassword(ctx context.Context, req dto.ForgotPasswordRequest) (*dto.Result, error)
	ResetPassword(ctx context.Context, req dto.ResetPasswordRequest) (*dto.Result, error)
}

// AuthHandler wires HTTP endpoints to the auth service.
type AuthHandler struct {
	service authService
}

// NewAuthHandler creates a new handler.
func NewAuthHandler(svc authService) *AuthHandler {
	return &AuthHandler{service: svc}
}

// Login godoc
// @Summary Log in
// @Description Authenticate an admin, research adviser or student and start a session
// @Tags Authentication
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param payload body dto.LoginRequest true "Login payload"
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Router /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := bind(c, &req, "login payload"); err != nil {
		response.Respond(c, middleware.LoginPath, nil, err)
		return
	}

	p, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		response.Respond(c, middleware.LoginPath, nil, err)
		return
	}
	if err := middleware.StartSession(c, p); err != nil {
		response.Respond(c, middleware.LoginPath, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to start session"))
		return
	}

	result := dto.Succeeded("Welcome, " + p.Name).With("user_type", string(p.Type))
	result.Redirect = middleware.HomeFor(p)
	result.With("redirect", result.Redirect)
	response.Respond(c, middleware.LoginPath, result, nil)
}

// Logout godoc
// @Summary Log out
// @Tags Authentication
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	result := h.service.Logout(c.Request.Context(), principal(c))
	if err := middleware.EndSession(c); err != nil {
		response.Respond(c, middleware.LoginPath, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, http.StatusInternalServerError, "failed to end session"))
		return
	}
	response.Respond(c, middleware.LoginPath, result, nil)
}

// ForgotPassword godoc
// @Summary Request a password reset link
// @Tags Authentication
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param payload body dto.ForgotPasswordRequest true "Student email"
// @Success 200 {object} map[string]interface{}
// @Router /auth/password/forgot [post]
func (h *AuthHandler) ForgotPassword(c *gin.Context) {
	var req dto.ForgotPasswordRequest
	if err := bind(c, &req, "reset request"); err != nil {
		response.Respond(c, forgotPasswordPath, nil, err)
		return
	}
	result, err := h.service.ForgotPassword(c.Request.Context(), req)
	response.Respond(c, middleware.LoginPath, result, err)
}

// ResetPassword godoc
// @Summary Reset a student password
// @Tags Authentication
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param payload body dto.ResetPasswordRequest true "Token and new password"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /auth/password/reset [post]
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := bind(c, &req, "reset payload"); err != nil {
		response.Respond(c, forgotPasswordPath, nil, err)
		return
	}
	result, err := h.service.ResetPassword(c.Request.Context(), req)
	response.Respond(c, forgotPasswordPath, result, err)
}
