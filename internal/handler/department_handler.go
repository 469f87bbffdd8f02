package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-research-portal/internal/dto"
	"github.com/noah-isme/sma-research-portal/internal/models"
	appErrors "github.com/noah-isme/sma-research-portal/pkg/errors"
	"github.com/noah-isme/sma-research-portal/pkg/response"
)

const departmentsPath = "/admin/departments"

type departmentService interface {
	List(ctx context.Context, actor *models.Principal) ([]models.Department, error)
	Add(ctx context.Context, actor *models.Principal, req dto.AddDepartmentRequest) (*dto.Result, error)
	Delete(ctx context.Context, actor *models.Principal, rawID string) (*dto.Result, error)
	Backfill(ctx context.Context, actor *models.Principal) (string, error)
}

// DepartmentHandler exposes department management.
type DepartmentHandler struct {
	service departmentService
}

// NewDepartmentHandler constructs the handler.
func NewDepartmentHandler(svc departmentService) *DepartmentHandler {
	return &DepartmentHandler{service: svc}
}

// List godoc
// @Summary List departments
// @Tags Departments
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/departments [get]
func (h *DepartmentHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), principal(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Add godoc
// @Summary Add a department
// @Tags Departments
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param payload body dto.AddDepartmentRequest true "Department"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /admin/departments [post]
func (h *DepartmentHandler) Add(c *gin.Context) {
	var req dto.AddDepartmentRequest
	if err := bind(c, &req, "department payload"); err != nil {
		response.Respond(c, departmentsPath, nil, err)
		return
	}
	result, err := h.service.Add(c.Request.Context(), principal(c), req)
	response.Respond(c, departmentsPath, result, err)
}

// Delete godoc
// @Summary Delete a department
// @Tags Departments
// @Produce json
// @Param id path int true "Department ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /admin/departments/{id}/delete [post]
func (h *DepartmentHandler) Delete(c *gin.Context) {
	result, err := h.service.Delete(c.Request.Context(), principal(c), c.Param("id"))
	response.Respond(c, departmentsPath, result, err)
}

// Backfill godoc
// @Summary Copy department labels into department ids
// @Description Maintenance step for databases that still carry free-text department labels.
// @Tags Departments
// @Produce plain
// @Success 200 {string} string
// @Failure 403 {string} string
// @Router /admin/departments/backfill [post]
func (h *DepartmentHandler) Backfill(c *gin.Context) {
	report, err := h.service.Backfill(c.Request.Context(), principal(c))
	if err != nil {
		appErr := appErrors.FromError(err)
		if appErrors.Internal(appErr) {
			_ = c.Error(err)
		}
		response.Text(c, appErr.Status, appErr.Message+"\n")
		return
	}
	response.Text(c, http.StatusOK, report)
}
