package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-research-portal/internal/dto"
	"github.com/noah-isme/sma-research-portal/internal/models"
	"github.com/noah-isme/sma-research-portal/internal/service"
	appErrors "github.com/noah-isme/sma-research-portal/pkg/errors"
	"github.com/noah-isme/sma-research-portal/pkg/response"
	"github.com/noah-isme/sma-research-portal/pkg/storage"
)

const researchPath = "/research"

type researchService interface {
	Upload(ctx context.Context, actor *models.Principal, req dto.UploadResearchRequest, document, image *storage.File) (*dto.Result, error)
	List(ctx context.Context, actor *models.Principal, filter models.SubmissionFilter) ([]models.Submission, *models.Pagination, error)
	View(ctx context.Context, actor *models.Principal, rawID string) (*models.SubmissionView, error)
	Document(ctx context.Context, actor *models.Principal, rawID, token string) (*service.DocumentFile, error)
}

type bookmarkService interface {
	Toggle(ctx context.Context, actor *models.Principal, rawID string) (*dto.Result, error)
	List(ctx context.Context, actor *models.Principal) ([]models.Bookmark, error)
}

// ResearchHandler serves the research repository and student bookmarks.
type ResearchHandler struct {
	research  researchService
	bookmarks bookmarkService
	limits    uploadLimits
}

// NewResearchHandler constructs the handler.
func NewResearchHandler(research researchService, bookmarks bookmarkService, limits uploadLimits) *ResearchHandler {
	return &ResearchHandler{research: research, bookmarks: bookmarks, limits: limits}
}

func (h *ResearchHandler) limit(kind storage.UploadKind) int64 {
	if h.limits == nil {
		return 0
	}
	return h.limits.Limit(kind)
}

// List godoc
// @Summary Search approved research
// @Tags Research
// @Produce json
// @Param department query string false "Department"
// @Param strand query string false "Strand"
// @Param q query string false "Keyword"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /research [get]
func (h *ResearchHandler) List(c *gin.Context) {
	var filter models.SubmissionFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid search parameters"))
		return
	}
	items, pagination, err := h.research.List(c.Request.Context(), principal(c), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, pagination)
}

// Upload godoc
// @Summary Upload a research paper
// @Description Multipart form with the paper's metadata, a PDF document and an optional cover image.
// @Tags Research
// @Accept multipart/form-data
// @Produce json
// @Param title formData string true "Title"
// @Param abstract formData string true "Abstract"
// @Param keywords formData string false "Keywords"
// @Param author formData string true "Author"
// @Param department formData string true "Department"
// @Param strand formData string false "Strand"
// @Param document formData file true "PDF document"
// @Param image formData file false "Cover image"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /research [post]
func (h *ResearchHandler) Upload(c *gin.Context) {
	document, err := formFile(c, "document", h.limit(storage.KindDocument))
	if err != nil {
		response.Respond(c, researchPath, nil, err)
		return
	}
	image, err := formFile(c, "image", h.limit(storage.KindImage))
	if err != nil {
		response.Respond(c, researchPath, nil, err)
		return
	}
	var req dto.UploadResearchRequest
	if err := bind(c, &req, "research form"); err != nil {
		response.Respond(c, researchPath, nil, err)
		return
	}
	result, err := h.research.Upload(c.Request.Context(), principal(c), req, document, image)
	response.Respond(c, researchPath, result, err)
}

// View godoc
// @Summary Open a research paper
// @Description Counts the view and returns a short-lived signed document link.
// @Tags Research
// @Produce json
// @Param id path int true "Research ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /research/{id} [get]
func (h *ResearchHandler) View(c *gin.Context) {
	view, err := h.research.View(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Document godoc
// @Summary Download a research PDF
// @Tags Research
// @Produce application/pdf
// @Param id path int true "Research ID"
// @Param token query string true "Signed document token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /research/{id}/document [get]
func (h *ResearchHandler) Document(c *gin.Context) {
	file, err := h.research.Document(c.Request.Context(), principal(c), c.Param("id"), c.Query("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Cache-Control", "private, no-store")
	c.FileAttachment(file.Path, file.Filename)
}

// ToggleBookmark godoc
// @Summary Bookmark or un-bookmark a paper
// @Tags Bookmarks
// @Produce json
// @Param id path int true "Research ID"
// @Success 200 {object} map[string]interface{}
// @Router /research/{id}/bookmark [post]
func (h *ResearchHandler) ToggleBookmark(c *gin.Context) {
	result, err := h.bookmarks.Toggle(c.Request.Context(), principal(c), c.Param("id"))
	response.Respond(c, fmt.Sprintf("%s/%s", researchPath, c.Param("id")), result, err)
}

// Bookmarks godoc
// @Summary List the caller's bookmarks
// @Tags Bookmarks
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /bookmarks [get]
func (h *ResearchHandler) Bookmarks(c *gin.Context) {
	items, err := h.bookmarks.List(c.Request.Context(), principal(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, items, nil)
}
