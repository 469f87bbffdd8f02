package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-research-portal/internal/middleware"
	"github.com/noah-isme/sma-research-portal/internal/models"
)

// Handlers groups every HTTP handler mounted by RegisterRoutes.
type Handlers struct {
	Auth        *AuthHandler
	Departments *DepartmentHandler
	Strands     *StrandHandler
	SubAdmins   *SubAdminHandler
	Research    *ResearchHandler
	Profile     *ProfileHandler
	Admin       *AdminHandler
	Metrics     *MetricsHandler
}

// RegisterRoutes mounts the portal. The engine must already run the session
// and Identity middleware. A nil limiter disables throttling.
func RegisterRoutes(r gin.IRouter, h Handlers, limiter *middleware.RateLimiter) {
	throttle := func(redirectTo string) gin.HandlerFunc {
		if limiter == nil {
			return func(c *gin.Context) { c.Next() }
		}
		return limiter.Middleware(redirectTo)
	}

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	r.GET("/metrics", h.Metrics.Prometheus)

	auth := r.Group("/auth")
	auth.POST("/login", throttle(middleware.LoginPath), h.Auth.Login)
	auth.POST("/logout", middleware.RequireLogin(), h.Auth.Logout)
	auth.POST("/password/forgot", throttle(forgotPasswordPath), h.Auth.ForgotPassword)
	auth.POST("/password/reset", throttle(forgotPasswordPath), h.Auth.ResetPassword)

	staff := middleware.RequireTypes(models.UserTypeAdmin, models.UserTypeSubAdmin)
	adminOnly := middleware.RequireTypes(models.UserTypeAdmin)

	admin := r.Group("/admin", middleware.RequireLogin())
	admin.GET("/dashboard", adminOnly, h.Admin.Dashboard)
	admin.GET("/activity", adminOnly, h.Admin.Activity)
	admin.GET("/research/export", adminOnly, h.Admin.Export)

	admin.GET("/departments", staff, h.Departments.List)
	admin.POST("/departments", middleware.RequirePermission(models.PermissionManageDepartments), h.Departments.Add)
	admin.POST("/departments/:id/delete", adminOnly, h.Departments.Delete)

	admin.GET("/strands", staff, h.Strands.List)
	admin.POST("/strands/:id", adminOnly, h.Strands.Update)

	admin.GET("/subadmins", adminOnly, h.SubAdmins.List)
	admin.POST("/subadmins", adminOnly, h.SubAdmins.Create)
	admin.GET("/subadmins/archived", adminOnly, h.SubAdmins.Archived)
	admin.POST("/subadmins/restore", adminOnly, h.SubAdmins.Restore)
	admin.POST("/subadmins/:id/archive", adminOnly, h.SubAdmins.Archive)
	admin.POST("/subadmins/:id/restore", adminOnly, h.SubAdmins.Restore)

	// Maintenance answers in plain text, including the refusal.
	r.POST("/admin/departments/backfill", middleware.RequireAdminText(), h.Departments.Backfill)

	uploaders := middleware.RequireTypes(models.UserTypeStudent, models.UserTypeSubAdmin)
	students := middleware.RequireTypes(models.UserTypeStudent)

	research := r.Group("/research", middleware.RequireLogin())
	research.GET("", h.Research.List)
	research.POST("", uploaders, throttle(researchPath), h.Research.Upload)
	research.GET("/:id", h.Research.View)
	research.GET("/:id/document", h.Research.Document)
	research.POST("/:id/bookmark", students, h.Research.ToggleBookmark)

	r.GET("/bookmarks", middleware.RequireLogin(), students, h.Research.Bookmarks)

	r.GET("/profile", middleware.RequireLogin(), uploaders, h.Profile.Get)
	r.POST("/profile", middleware.RequireLogin(), uploaders, h.Profile.Update)
}
