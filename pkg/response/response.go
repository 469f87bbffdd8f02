package response

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-research-portal/internal/dto"
	"github.com/noah-isme/sma-research-portal/internal/models"
	appErrors "github.com/noah-isme/sma-research-portal/pkg/errors"
)

// Flash keys consumed on the next render.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Envelope represents the common response contract for read endpoints.
type Envelope struct {
	Data       interface{}            `json:"data,omitempty"`
	Error      *appErrors.Error       `json:"error,omitempty"`
	Pagination *models.Pagination     `json:"pagination,omitempty"`
	Meta       map[string]interface{} `json:"meta,omitempty"`
}

// JSON sends a success response with optional pagination metadata. Pending
// flash messages are consumed and attached under meta.flash.
func JSON(c *gin.Context, status int, data interface{}, pagination *models.Pagination, meta ...map[string]interface{}) {
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	envelope := Envelope{Data: data, Pagination: pagination}
	if len(meta) > 0 && meta[0] != nil {
		envelope.Meta = meta[0]
	}
	if flash := ConsumeFlash(c); len(flash) > 0 {
		if envelope.Meta == nil {
			envelope.Meta = map[string]interface{}{}
		}
		envelope.Meta["flash"] = flash
	}
	c.JSON(status, envelope)
}

// Error sends an error envelope converting the error to the common structure.
func Error(c *gin.Context, err error) {
	appErr := appErrors.FromError(err)
	record(c, err, appErr)
	c.Header("Cache-Control", "no-store")
	c.Header("Pragma", "no-cache")
	c.JSON(appErr.Status, Envelope{Error: appErr})
}

// Text writes a plain-text body, used by maintenance endpoints.
func Text(c *gin.Context, status int, body string) {
	c.Header("Cache-Control", "no-store")
	c.Data(status, "text/plain; charset=utf-8", []byte(body))
}

// Respond renders the outcome of a mutating use case. AJAX callers receive
// {"success": bool, "message": string, ...}; everyone else is redirected
// with a flash message.
func Respond(c *gin.Context, redirectTo string, result *dto.Result, err error) {
	if err != nil {
		appErr := appErrors.FromError(err)
		record(c, err, appErr)
		if WantsJSON(c) {
			c.JSON(appErr.Status, gin.H{"success": false, "message": appErr.Message, "code": appErr.Code})
			return
		}
		Redirect(c, redirectTo, FlashError, appErr.Message)
		return
	}
	if result == nil {
		result = dto.Succeeded("")
	}
	if result.Redirect != "" {
		redirectTo = result.Redirect
	}
	if WantsJSON(c) {
		body := gin.H{"success": result.Success}
		if result.Message != "" {
			body["message"] = result.Message
		}
		for k, v := range result.Extra {
			body[k] = v
		}
		c.JSON(http.StatusOK, body)
		return
	}
	key := FlashSuccess
	if !result.Success {
		key = FlashError
	}
	Redirect(c, redirectTo, key, result.Message)
}

// Redirect stores the flash (when any) and issues a 303 See Other.
func Redirect(c *gin.Context, location, key, message string) {
	if message != "" {
		if session := sessionFrom(c); session != nil {
			session.AddFlash(message, key)
			_ = session.Save()
		}
	}
	c.Redirect(http.StatusSeeOther, location)
}

// ConsumeFlash pops the pending success/error flashes from the session.
func ConsumeFlash(c *gin.Context) map[string][]string {
	session := sessionFrom(c)
	if session == nil {
		return nil
	}
	out := make(map[string][]string)
	for _, key := range []string{FlashSuccess, FlashError} {
		for _, v := range session.Flashes(key) {
			if msg, ok := v.(string); ok {
				out[key] = append(out[key], msg)
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	_ = session.Save()
	return out
}

// WantsJSON reports whether the caller is an AJAX/JSON client.
func WantsJSON(c *gin.Context) bool {
	if strings.EqualFold(c.GetHeader("X-Requested-With"), "XMLHttpRequest") {
		return true
	}
	accept := c.GetHeader("Accept")
	return strings.Contains(accept, "application/json") && !strings.Contains(accept, "text/html")
}

func sessionFrom(c *gin.Context) sessions.Session {
	if _, ok := c.Get(sessions.DefaultKey); !ok {
		return nil
	}
	return sessions.Default(c)
}

// record attaches the underlying cause to the gin context so the request
// logger writes it server-side; clients only ever see appErr.Message.
func record(c *gin.Context, err error, appErr *appErrors.Error) {
	if err == nil || !appErrors.Internal(appErr) {
		return
	}
	_ = c.Error(err)
}
