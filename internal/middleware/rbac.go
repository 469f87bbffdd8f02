package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-research-portal/internal/models"
	appErrors "github.com/noah-isme/sma-research-portal/pkg/errors"
	"github.com/noah-isme/sma-research-portal/pkg/response"
)

// Landing pages used when a guard turns a browser away.
const (
	LoginPath          = "/"
	AdminDashboardPath = "/admin/dashboard"
	StudentHomePath    = "/research"
)

// HomeFor returns where a principal lands after login or refusal.
func HomeFor(p *models.Principal) string {
	switch {
	case p == nil:
		return LoginPath
	case p.IsStudent():
		return StudentHomePath
	default:
		return AdminDashboardPath
	}
}

func deny(c *gin.Context, location string, err error) {
	response.Respond(c, location, nil, err)
	c.Abort()
}

// RequireLogin refuses anonymous requests.
func RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if PrincipalFrom(c) == nil {
			deny(c, LoginPath, appErrors.ErrUnauthorized)
			return
		}
		c.Next()
	}
}

// RequireTypes admits only the listed principal types. Browsers are sent to
// their own landing page with a flash; AJAX callers get a JSON error.
func RequireTypes(types ...models.UserType) gin.HandlerFunc {
	allowed := make(map[models.UserType]struct{}, len(types))
	for _, t := range types {
		allowed[t] = struct{}{}
	}
	return func(c *gin.Context) {
		p := PrincipalFrom(c)
		if p == nil {
			deny(c, LoginPath, appErrors.ErrUnauthorized)
			return
		}
		if _, ok := allowed[p.Type]; !ok {
			deny(c, HomeFor(p), appErrors.Clone(appErrors.ErrForbidden, "you do not have access to that page"))
			return
		}
		c.Next()
	}
}

// RequirePermission admits admins and sub-admins granted the permission.
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := PrincipalFrom(c)
		if p == nil {
			deny(c, LoginPath, appErrors.ErrUnauthorized)
			return
		}
		if p.IsStudent() || !p.Can(permission) {
			deny(c, HomeFor(p), appErrors.Clone(appErrors.ErrForbidden, "you do not have permission to do that"))
			return
		}
		c.Next()
	}
}

// RequireAdminText guards maintenance endpoints with a bare 403 body.
func RequireAdminText() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !PrincipalFrom(c).IsAdmin() {
			response.Text(c, http.StatusForbidden, "Forbidden\n")
			c.Abort()
			return
		}
		c.Next()
	}
}
