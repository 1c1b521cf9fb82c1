package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"khata/internal/config"
	"khata/internal/handler"
	"khata/internal/metrics"
	"khata/internal/middleware"
	"khata/internal/service"
)

// Handlers groups the HTTP handlers the router mounts.
type Handlers struct {
	Draft  *handler.DraftHandler
	Totals *handler.TotalsHandler
	Health *handler.HealthHandler
}

// Setup configures the Gin engine with all routes and middleware. rec may be
// nil when metrics are disabled.
func Setup(
	cfg *config.Config,
	validator service.TokenValidator,
	h Handlers,
	rec *metrics.Recorder,
	logger *zap.Logger,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.RequestID(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	r.Use(rec.GinMiddleware())

	// Health checks
	r.GET("/healthz", h.Health.Liveness)
	r.GET("/readyz", h.Health.Readiness)
	if cfg.Metrics.Enabled && rec != nil {
		r.GET(cfg.Metrics.Path, gin.WrapH(rec.Handler()))
	}

	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(validator))

	v1.GET("/duty-ledgers", h.Totals.ListDutyLedgers)
	v1.POST("/totals/preview", h.Totals.Preview)

	v1.POST("/documents/:id/drafts", h.Draft.OpenDocument)

	drafts := v1.Group("/drafts")
	drafts.POST("", h.Draft.Open)
	drafts.GET("/:id", h.Draft.Get)
	drafts.DELETE("/:id", h.Draft.Discard)
	drafts.PUT("/:id/line-items", h.Draft.UpdateLineItems)
	drafts.PUT("/:id/header", h.Draft.UpdateHeader)
	drafts.PUT("/:id/duties", h.Draft.SetDuties)
	drafts.POST("/:id/overrides", h.Draft.Override)
	drafts.POST("/:id/reset", h.Draft.Reset)
	drafts.POST("/:id/submit", h.Draft.Submit)

	return r
}
