package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-research-portal/internal/dto"
	"github.com/noah-isme/sma-research-portal/internal/models"
	"github.com/noah-isme/sma-research-portal/pkg/response"
)

const (
	subAdminsPath         = "/admin/subadmins"
	archivedSubAdminsPath = "/admin/subadmins/archived"
)

type subAdminService interface {
	List(ctx context.Context, actor *models.Principal, filter models.EmployeeFilter) ([]models.Employee, error)
	Create(ctx context.Context, actor *models.Principal, req dto.CreateSubAdminRequest) (*dto.Result, error)
	Archive(ctx context.Context, actor *models.Principal, rawID string) (*dto.Result, error)
	Restore(ctx context.Context, actor *models.Principal, rawID string) (*dto.Result, error)
}

// SubAdminHandler manages research adviser accounts.
type SubAdminHandler struct {
	service subAdminService
}

// NewSubAdminHandler constructs the handler.
func NewSubAdminHandler(svc subAdminService) *SubAdminHandler {
	return &SubAdminHandler{service: svc}
}

func employeeFilter(c *gin.Context, archived bool) models.EmployeeFilter {
	return models.EmployeeFilter{
		Archived:   archived,
		Department: strings.TrimSpace(c.Query("department")),
		Search:     strings.TrimSpace(c.Query("q")),
	}
}

// List godoc
// @Summary List active research advisers
// @Tags SubAdmins
// @Produce json
// @Param department query string false "Department label"
// @Param q query string false "Name or email search"
// @Success 200 {object} response.Envelope
// @Router /admin/subadmins [get]
func (h *SubAdminHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), principal(c), employeeFilter(c, false))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Archived godoc
// @Summary List archived research advisers
// @Description With ?restore=<id> the adviser is restored and the caller is sent back to the archived list.
// @Tags SubAdmins
// @Produce json
// @Param restore query int false "Adviser to restore"
// @Success 200 {object} response.Envelope
// @Router /admin/subadmins/archived [get]
func (h *SubAdminHandler) Archived(c *gin.Context) {
	if id, ok := c.GetQuery("restore"); ok {
		result, err := h.service.Restore(c.Request.Context(), principal(c), id)
		response.Respond(c, archivedSubAdminsPath, result, err)
		return
	}
	items, err := h.service.List(c.Request.Context(), principal(c), employeeFilter(c, true))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Create godoc
// @Summary Create a research adviser
// @Tags SubAdmins
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param payload body dto.CreateSubAdminRequest true "Adviser"
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /admin/subadmins [post]
func (h *SubAdminHandler) Create(c *gin.Context) {
	var req dto.CreateSubAdminRequest
	if err := bind(c, &req, "adviser payload"); err != nil {
		response.Respond(c, subAdminsPath, nil, err)
		return
	}
	result, err := h.service.Create(c.Request.Context(), principal(c), req)
	response.Respond(c, subAdminsPath, result, err)
}

// Archive godoc
// @Summary Archive a research adviser
// @Tags SubAdmins
// @Produce json
// @Param id path int true "Adviser ID"
// @Success 200 {object} map[string]interface{}
// @Router /admin/subadmins/{id}/archive [post]
func (h *SubAdminHandler) Archive(c *gin.Context) {
	result, err := h.service.Archive(c.Request.Context(), principal(c), c.Param("id"))
	response.Respond(c, subAdminsPath, result, err)
}

// Restore godoc
// @Summary Restore an archived research adviser
// @Tags SubAdmins
// @Accept json
// @Produce json
// @Param id path int false "Adviser ID"
// @Param payload body dto.RestoreRequest false "Adviser ID when not in the path"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /admin/subadmins/{id}/restore [post]
func (h *SubAdminHandler) Restore(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		var req dto.RestoreRequest
		if err := bind(c, &req, "restore payload"); err != nil {
			response.Respond(c, archivedSubAdminsPath, nil, err)
			return
		}
		id = req.ID
	}
	result, err := h.service.Restore(c.Request.Context(), principal(c), id)
	response.Respond(c, archivedSubAdminsPath, result, err)
}
