package middleware

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-research-portal/internal/models"
	"github.com/noah-isme/sma-research-portal/pkg/logger"
)

// ContextPrincipalKey is the gin context key holding the *models.Principal.
const ContextPrincipalKey = "principal"

// Session keys.
const (
	KeyAdminID     = "admin_id"
	KeySubAdminID  = "subadmin_id"
	KeyStudentID   = "student_id"
	KeyUserType    = "user_type"
	KeyPermissions = "permissions"
	KeyName        = "name"
	KeyIssuedAt    = "issued_at"
)

func idKey(t models.UserType) string {
	switch t {
	case models.UserTypeAdmin:
		return KeyAdminID
	case models.UserTypeSubAdmin:
		return KeySubAdminID
	default:
		return KeyStudentID
	}
}

// Identity rebuilds the principal from the session cookie. Sessions older
// than maxAge are cleared. Requests without a session pass through
// anonymously; guards decide what to do with them.
func Identity(maxAge time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		p := principalFromSession(session)
		if p != nil && maxAge > 0 && time.Since(p.IssuedAt) > maxAge {
			session.Clear()
			_ = session.Save()
			p = nil
		}
		if p != nil {
			c.Set(ContextPrincipalKey, p)
			c.Set(logger.PrincipalTypeKey, string(p.Type))
		}
		c.Next()
	}
}

func principalFromSession(session sessions.Session) *models.Principal {
	rawType, _ := session.Get(KeyUserType).(string)
	userType := models.UserType(rawType)
	if !userType.Valid() {
		return nil
	}
	id, _ := session.Get(idKey(userType)).(string)
	if id == "" {
		return nil
	}
	p := &models.Principal{Type: userType, ID: id}
	p.Name, _ = session.Get(KeyName).(string)
	if raw, ok := session.Get(KeyPermissions).(string); ok && raw != "" {
		_ = json.Unmarshal([]byte(raw), &p.Permissions)
	}
	if ts, ok := session.Get(KeyIssuedAt).(string); ok {
		if unix, err := strconv.ParseInt(ts, 10, 64); err == nil {
			p.IssuedAt = time.Unix(unix, 0)
		}
	}
	return p
}

// StartSession replaces whatever the session held with the principal.
func StartSession(c *gin.Context, p *models.Principal) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(KeyUserType, string(p.Type))
	session.Set(idKey(p.Type), p.ID)
	session.Set(KeyName, p.Name)
	perms := p.Permissions
	if perms == nil {
		perms = []string{}
	}
	raw, err := json.Marshal(perms)
	if err != nil {
		return err
	}
	session.Set(KeyPermissions, string(raw))
	issued := p.IssuedAt
	if issued.IsZero() {
		issued = time.Now()
	}
	session.Set(KeyIssuedAt, strconv.FormatInt(issued.Unix(), 10))
	if err := session.Save(); err != nil {
		return err
	}
	c.Set(ContextPrincipalKey, p)
	return nil
}

// EndSession clears the session but keeps the cookie so a logout flash
// survives the redirect.
func EndSession(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	c.Set(ContextPrincipalKey, nil)
	return session.Save()
}

// PrincipalFrom returns the authenticated principal, or nil.
func PrincipalFrom(c *gin.Context) *models.Principal {
	value, ok := c.Get(ContextPrincipalKey)
	if !ok {
		return nil
	}
	p, _ := value.(*models.Principal)
	return p
}
