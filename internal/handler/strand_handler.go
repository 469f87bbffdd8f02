package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-research-portal/internal/dto"
	"github.com/noah-isme/sma-research-portal/internal/models"
	"github.com/noah-isme/sma-research-portal/pkg/response"
)

const strandsPath = "/admin/strands"

type strandService interface {
	List(ctx context.Context, actor *models.Principal) ([]models.Strand, error)
	Update(ctx context.Context, actor *models.Principal, rawID string, req dto.UpdateStrandRequest) (*dto.Result, error)
}

// StrandHandler exposes strand listing and renaming.
type StrandHandler struct {
	service strandService
}

// NewStrandHandler constructs the handler.
func NewStrandHandler(svc strandService) *StrandHandler {
	return &StrandHandler{service: svc}
}

// List godoc
// @Summary List strands
// @Tags Strands
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /admin/strands [get]
func (h *StrandHandler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), principal(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}

// Update godoc
// @Summary Rename a strand
// @Tags Strands
// @Accept x-www-form-urlencoded,json
// @Produce json
// @Param id path int true "Strand ID"
// @Param payload body dto.UpdateStrandRequest true "New name"
// @Success 200 {object} map[string]interface{}
// @Router /admin/strands/{id} [post]
func (h *StrandHandler) Update(c *gin.Context) {
	var req dto.UpdateStrandRequest
	if err := bind(c, &req, "strand payload"); err != nil {
		response.Respond(c, strandsPath, nil, err)
		return
	}
	result, err := h.service.Update(c.Request.Context(), principal(c), c.Param("id"), req)
	response.Respond(c, strandsPath, result, err)
}
