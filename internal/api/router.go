package api

import (
	"context"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/guttosm/permitpulse/config"
	"github.com/guttosm/permitpulse/internal/middleware"
	"github.com/guttosm/permitpulse/internal/render"
)

// NewRouter creates a Gin engine with routes configured.
// It receives a Handler instance with all business logic already injected.
//
// Responsibilities:
//   - Registers global middlewares (RequestID, Logger, Recovery, ErrorHandler, RateLimiter).
//   - Adds the request timeout from cfg.RequestTimeout.
//   - Loads the embedded HTML templates and serves /static assets.
//   - Caps upload bodies at cfg.MaxUploadMB on the upload routes.
//   - Mounts Swagger docs (/swagger/*any) and the API v1 routes (/api/v1).
//
// Note:
//   - Health and readiness endpoints (/healthz, /readyz) are registered in app.InitializeApp().
func NewRouter(handler *Handler, cfg config.ServerConfig) (*gin.Engine, error) {
	router := gin.New()

	// ─── Middlewares ───────────────────────────────
	router.Use(
		middleware.RequestID(),
		middleware.RequestLogger(),
		middleware.RecoveryMiddleware(),
		middleware.ErrorHandler,
		middleware.RateLimiter(cfg.RateLimitPerMinute),
	)

	// ─── Timeout ──────────────────────────────────
	router.Use(timeout(cfg.RequestTimeout))

	// ─── Templates & static ───────────────────────
	tmpl, err := render.Templates()
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(tmpl)

	static, err := fs.Sub(render.StaticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}
	router.StaticFS("/static", http.FS(static))

	// ─── Swagger ──────────────────────────────────
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	upload := middleware.BodyLimit(cfg.MaxUploadMB << 20)

	// ─── Web ──────────────────────────────────────
	router.GET("/", handler.UploadForm)
	router.POST("/reports", upload, handler.CreateReport)

	// ─── API v1 ───────────────────────────────────
	v1 := router.Group("/api/v1")
	{
		v1.POST("/reports", upload, handler.CreateReportAPI)
		v1.GET("/reports/:id/pdf", handler.GetReportPDF)
		v1.GET("/runs", handler.ListRuns)
		v1.GET("/runs/:id", handler.GetRun)
	}

	return router, nil
}

func timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
