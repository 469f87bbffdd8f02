package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-research-portal/internal/middleware"
	"github.com/noah-isme/sma-research-portal/internal/models"
	appErrors "github.com/noah-isme/sma-research-portal/pkg/errors"
	"github.com/noah-isme/sma-research-portal/pkg/storage"
)

type uploadLimits interface {
	Limit(kind storage.UploadKind) int64
}

func principal(c *gin.Context) *models.Principal {
	return middleware.PrincipalFrom(c)
}

// bind decodes form, multipart or JSON bodies. Field rules are enforced by
// the services, so only decoding failures surface here.
func bind(c *gin.Context, dest interface{}, what string) error {
	if err := c.ShouldBind(dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid "+what)
	}
	return nil
}

// formFile returns the named upload, or nil when the form carries none.
func formFile(c *gin.Context, field string, limit int64) (*storage.File, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, nil
		}
		return nil, storage.UploadError(err, limit)
	}
	return storage.FromMultipart(fh), nil
}
