package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-research-portal/internal/dto"
	"github.com/noah-isme/sma-research-portal/internal/models"
	"github.com/noah-isme/sma-research-portal/pkg/response"
	"github.com/noah-isme/sma-research-portal/pkg/storage"
)

const profilePath = "/profile"

type profileService interface {
	Get(ctx context.Context, actor *models.Principal) (interface{}, error)
	Update(ctx context.Context, actor *models.Principal, req dto.UpdateProfileRequest, picture *storage.File) (*dto.Result, error)
}

// ProfileHandler lets students and advisers edit their own account.
type ProfileHandler struct {
	service profileService
	limits  uploadLimits
}

// NewProfileHandler constructs the handler.
func NewProfileHandler(svc profileService, limits uploadLimits) *ProfileHandler {
	return &ProfileHandler{service: svc, limits: limits}
}

// Get godoc
// @Summary Current profile
// @Tags Profile
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /profile [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	profile, err := h.service.Get(c.Request.Context(), principal(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, profile, nil)
}

// Update godoc
// @Summary Update profile and optionally the password
// @Description The profile fields and the password change are saved together or not at all.
// @Tags Profile
// @Accept multipart/form-data,x-www-form-urlencoded
// @Produce json
// @Param first_name formData string true "First name"
// @Param last_name formData string true "Last name"
// @Param email formData string true "Email"
// @Param department formData string false "Department"
// @Param current_password formData string false "Current password"
// @Param new_password formData string false "New password"
// @Param confirm_password formData string false "New password again"
// @Param profile_picture formData file false "Profile picture"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /profile [post]
func (h *ProfileHandler) Update(c *gin.Context) {
	var limit int64
	if h.limits != nil {
		limit = h.limits.Limit(storage.KindProfile)
	}
	picture, err := formFile(c, "profile_picture", limit)
	if err != nil {
		response.Respond(c, profilePath, nil, err)
		return
	}
	var req dto.UpdateProfileRequest
	if err := bind(c, &req, "profile form"); err != nil {
		response.Respond(c, profilePath, nil, err)
		return
	}
	result, err := h.service.Update(c.Request.Context(), principal(c), req, picture)
	response.Respond(c, profilePath, result, err)
}
