package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-research-portal/internal/models"
	"github.com/noah-isme/sma-research-portal/internal/service"
	appErrors "github.com/noah-isme/sma-research-portal/pkg/errors"
	"github.com/noah-isme/sma-research-portal/pkg/response"
)

type dashboardService interface {
	Get(ctx context.Context, actor *models.Principal) (*service.Dashboard, error)
}

type activityService interface {
	List(ctx context.Context, actor *models.Principal, filter models.ActivityFilter) ([]models.ActivityLog, *models.Pagination, error)
}

type exportService interface {
	Catalogue(ctx context.Context, actor *models.Principal, format string) (*service.ExportFile, error)
}

// AdminHandler serves the admin dashboard, activity log and exports.
type AdminHandler struct {
	dashboard dashboardService
	activity  activityService
	exports   exportService
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(dashboard dashboardService, activity activityService, exports exportService) *AdminHandler {
	return &AdminHandler{dashboard: dashboard, activity: activity, exports: exports}
}

// Dashboard godoc
// @Summary Admin dashboard
// @Tags Admin
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/dashboard [get]
func (h *AdminHandler) Dashboard(c *gin.Context) {
	summary, err := h.dashboard.Get(c.Request.Context(), principal(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// Activity godoc
// @Summary Activity log
// @Tags Admin
// @Produce json
// @Param actor_type query string false "admin, subadmin or student"
// @Param action query string false "Action name"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /admin/activity [get]
func (h *AdminHandler) Activity(c *gin.Context) {
	var filter models.ActivityFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid activity filter"))
		return
	}
	items, pagination, err := h.activity.List(c.Request.Context(), principal(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Export godoc
// @Summary Export the research catalogue
// @Tags Admin
// @Produce text/csv,application/pdf
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /admin/research/export [get]
func (h *AdminHandler) Export(c *gin.Context) {
	file, err := h.exports.Catalogue(c.Request.Context(), principal(c), c.Query("format"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Filename))
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}
