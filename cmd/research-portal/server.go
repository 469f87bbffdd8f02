package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/sma-research-portal/api/swagger"
	"github.com/noah-isme/sma-research-portal/internal/handler"
	"github.com/noah-isme/sma-research-portal/internal/middleware"
	"github.com/noah-isme/sma-research-portal/internal/repository"
	"github.com/noah-isme/sma-research-portal/internal/schema"
	"github.com/noah-isme/sma-research-portal/internal/service"
	"github.com/noah-isme/sma-research-portal/pkg/cache"
	"github.com/noah-isme/sma-research-portal/pkg/config"
	"github.com/noah-isme/sma-research-portal/pkg/database"
	"github.com/noah-isme/sma-research-portal/pkg/export"
	"github.com/noah-isme/sma-research-portal/pkg/logger"
	"github.com/noah-isme/sma-research-portal/pkg/mailer"
	corsmiddleware "github.com/noah-isme/sma-research-portal/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/sma-research-portal/pkg/middleware/requestid"
	"github.com/noah-isme/sma-research-portal/pkg/storage"
)

const shutdownGrace = 15 * time.Second

func serve(ctx context.Context, cfg *config.Config, logr *zap.Logger) error {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := migrateUp(cfg, logr); err != nil {
			return err
		}
	}

	engine, err := buildRouter(ctx, cfg, db, logr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func buildRouter(ctx context.Context, cfg *config.Config, db *sqlx.DB, logr *zap.Logger) (*gin.Engine, error) {
	registry := schema.NewRegistry(ctx, schema.NewIntrospector(db, logr), logr)
	metrics := service.NewMetricsService()

	redisClient := cache.NewRedis(cfg.Redis, logr)
	cacheRepo := repository.NewCacheRepository(redisClient, "portal", logr)
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.ListingTTL, logr, redisClient != nil)

	files, err := storage.NewLocalStorage(cfg.Uploads.WebRoot)
	if err != nil {
		return nil, fmt.Errorf("open upload root: %w", err)
	}
	uploader := storage.NewUploader(files, storage.DefaultPolicies(
		cfg.Uploads.MaxImageBytes,
		cfg.Uploads.MaxDocumentBytes,
		cfg.Uploads.MaxProfileBytes,
		cfg.Uploads.ProfileMaxPixels,
	))
	signer := storage.NewSignedURLSigner(cfg.Documents.SignedURLSecret, cfg.Documents.SignedURLTTL)

	departmentRepo := repository.NewDepartmentRepository(db, registry)
	strandRepo := repository.NewStrandRepository(db, registry)
	employeeRepo := repository.NewEmployeeRepository(db, registry)
	studentRepo := repository.NewStudentRepository(db, registry)
	submissionRepo := repository.NewSubmissionRepository(db, registry)
	bookmarkRepo := repository.NewBookmarkRepository(db, registry)
	activityRepo := repository.NewActivityRepository(db, registry)

	validate := service.NewValidator()
	activity := service.NewActivityService(activityRepo, logr)

	authSvc := service.NewAuthService(employeeRepo, studentRepo, mailer.New(cfg.Mail, logr), activity, metrics, validate, logr, service.AuthConfig{
		PublicURL:   cfg.PublicURL,
		ResetSecret: cfg.Reset.Secret,
		ResetTTL:    cfg.Reset.TTL,
	})
	departmentSvc := service.NewDepartmentService(departmentRepo, registry, activity, cacheSvc, metrics, validate, logr)
	strandSvc := service.NewStrandService(strandRepo, activity, validate, logr)
	subAdminSvc := service.NewSubAdminService(employeeRepo, departmentRepo, activity, cacheSvc, validate, logr)
	submissionSvc := service.NewSubmissionService(submissionRepo, uploader, signer, bookmarkRepo, departmentRepo, activity, cacheSvc, metrics, validate, logr, service.SubmissionServiceConfig{
		ListingTTL: cfg.Cache.ListingTTL,
	})
	bookmarkSvc := service.NewBookmarkService(bookmarkRepo, submissionRepo, logr)
	profileSvc := service.NewProfileService(studentRepo, employeeRepo, departmentRepo, uploader, activity, validate, logr)
	dashboardSvc := service.NewDashboardService(departmentRepo, studentRepo, employeeRepo, submissionRepo, cacheSvc, metrics, cfg.Cache.DashboardTTL, logr)
	exportSvc := service.NewExportService(submissionRepo, export.NewCSVExporter(), export.NewPDFExporter(), logr)

	store := cookie.NewStore([]byte(cfg.Session.Secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.Session.MaxAge.Seconds()),
		Secure:   cfg.Session.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(limitBody(cfg.Server.MaxBodyBytes))
	r.Use(middleware.Metrics(metrics, "/metrics", "/health", "/ready"))
	r.Use(sessions.Sessions(cfg.Session.Name, store))
	r.Use(middleware.Identity(cfg.Session.MaxAge))

	handler.RegisterRoutes(r, handler.Handlers{
		Auth:        handler.NewAuthHandler(authSvc),
		Departments: handler.NewDepartmentHandler(departmentSvc),
		Strands:     handler.NewStrandHandler(strandSvc),
		SubAdmins:   handler.NewSubAdminHandler(subAdminSvc),
		Research:    handler.NewResearchHandler(submissionSvc, bookmarkSvc, uploader),
		Profile:     handler.NewProfileHandler(profileSvc, uploader),
		Admin:       handler.NewAdminHandler(dashboardSvc, activity, exportSvc),
		Metrics:     handler.NewMetricsHandler(metrics, db),
	}, middleware.NewRateLimiter(cfg.RateLimit.PerMinute, cfg.RateLimit.Burst))

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}
	return r, nil
}

// limitBody caps request bodies so oversized uploads fail while the
// multipart form is read.
func limitBody(max int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if max > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, max)
		}
		c.Next()
	}
}
