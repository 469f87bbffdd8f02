package requestid

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func serve(header string) (*httptest.ResponseRecorder, string) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Middleware())
	var seen string
	r.GET("/", func(c *gin.Context) {
		seen = Value(c)
		c.Status(http.StatusOK)
	})
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set(headerKey, header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec, seen
}

func TestReusesWellFormedInboundID(t *testing.T) {
	rec, seen := serve("proxy-123.abc")
	assert.Equal(t, "proxy-123.abc", seen)
	assert.Equal(t, "proxy-123.abc", rec.Header().Get(headerKey))
}

func TestReplacesMissingOrUnsafeID(t *testing.T) {
	for _, inbound := range []string{"", "bad id\nwith newline", "<script>"} {
		rec, seen := serve(inbound)
		_, err := uuid.Parse(seen)
		assert.NoError(t, err, inbound)
		assert.Equal(t, seen, rec.Header().Get(headerKey))
	}
}
