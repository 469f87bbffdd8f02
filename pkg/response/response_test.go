package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-research-portal/internal/dto"
	appErrors "github.com/noah-isme/sma-research-portal/pkg/errors"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(sessions.Sessions("test_session", cookie.NewStore([]byte("secret"))))
	return r
}

func TestRespondRedirectsWithFlashAndConsumesOnRead(t *testing.T) {
	r := newRouter()
	r.POST("/departments", func(c *gin.Context) {
		Respond(c, "/admin/departments", dto.Succeeded("Department added"), nil)
	})
	r.GET("/departments", func(c *gin.Context) {
		JSON(c, http.StatusOK, []string{}, nil)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/departments", nil))
	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/departments", w.Header().Get("Location"))
	cookies := w.Result().Cookies()
	require.NotEmpty(t, cookies)

	read := func() map[string]interface{} {
		req := httptest.NewRequest(http.MethodGet, "/departments", nil)
		for _, ck := range cookies {
			req.AddCookie(ck)
		}
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, req)
		if next := rec.Result().Cookies(); len(next) > 0 {
			cookies = next
		}
		var body map[string]interface{}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		return body
	}

	first := read()
	meta := first["meta"].(map[string]interface{})
	flash := meta["flash"].(map[string]interface{})
	assert.Equal(t, []interface{}{"Department added"}, flash["success"])

	second := read()
	assert.Nil(t, second["meta"])
}

func TestRespondJSONForAjax(t *testing.T) {
	r := newRouter()
	r.POST("/bookmark", func(c *gin.Context) {
		Respond(c, "/research", dto.Succeeded("Bookmarked").With("bookmarked", true), nil)
	})

	req := httptest.NewRequest(http.MethodPost, "/bookmark", nil)
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, true, body["success"])
	assert.Equal(t, true, body["bookmarked"])
	assert.Equal(t, "Bookmarked", body["message"])
}

func TestRespondHidesDriverErrors(t *testing.T) {
	r := newRouter()
	r.POST("/restore", func(c *gin.Context) {
		Respond(c, "/admin", nil, errors.New(`pq: column "is_archived" does not exist`))
	})

	req := httptest.NewRequest(http.MethodPost, "/restore", nil)
	req.Header.Set("Accept", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "is_archived")
	assert.Contains(t, w.Body.String(), `"success":false`)
}

func TestRespondValidationErrorRedirects(t *testing.T) {
	r := newRouter()
	r.POST("/strands/1", func(c *gin.Context) {
		Respond(c, "/admin/strands", nil, appErrors.Clone(appErrors.ErrValidation, "strand name is required"))
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/strands/1", nil))
	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/admin/strands", w.Header().Get("Location"))
}

func TestTextWritesPlainBody(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	Text(c, http.StatusForbidden, "forbidden\n")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "text/plain; charset=utf-8", w.Header().Get("Content-Type"))
}
