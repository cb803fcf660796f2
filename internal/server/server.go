// Package server assembles the recurring engine, its services and the HTTP
// router on top of a store.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"budgetry/internal/config"
	_ "budgetry/internal/docs" // Import swagger docs
	"budgetry/internal/handlers"
	"budgetry/internal/logger"
	"budgetry/internal/metrics"
	"budgetry/internal/middleware"
	"budgetry/internal/recurring"
	"budgetry/internal/services"
)

// App holds the wired application stack.
type App struct {
	Engine      *recurring.Engine
	Metrics     *metrics.Metrics
	Periods     services.PeriodServicer
	Obligations services.ObligationServicer
	Audit       services.AuditServicer
	Router      *gin.Engine
}

// Options tweak how NewApp wires the stack.
type Options struct {
	// AuditDB persists audit events. Nil logs them only.
	AuditDB *gorm.DB
	// Clock overrides the configured timezone's wall clock.
	Clock recurring.Clock
}

// NewApp wires the engine, services and router over store.
func NewApp(cfg *config.Config, store recurring.Store, opts Options) *App {
	clock := opts.Clock
	if clock == nil {
		clock = recurring.SystemClock{Location: cfg.Timezone}
	}

	matcher := recurring.NewMatcher(cfg.HeuristicMatching)
	if !matcher.FuzzyEnabled() {
		logger.Get().Infow("heuristic name matching disabled; only linked and recurring-source entries are matched")
	}

	m := metrics.NewMetrics()
	engine := recurring.NewEngine(store, clock, matcher, m)
	periods := services.NewPeriodService(engine)

	app := &App{
		Engine:      engine,
		Metrics:     m,
		Periods:     periods,
		Obligations: services.NewObligationService(engine, periods, cfg.PayAheadMax),
		Audit:       services.NewAuditService(opts.AuditDB),
	}
	app.Router = app.newRouter(cfg)
	return app
}

func (a *App) newRouter(cfg *config.Config) *gin.Engine {
	periodHandler := handlers.NewPeriodHandler(a.Periods)
	obligationHandler := handlers.NewObligationHandler(a.Obligations, a.Audit)
	syncHandler := handlers.NewSyncHandler(a.Periods)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging(a.Metrics))
	router.Use(middleware.ErrorHandler())

	// CORS middleware
	router.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+middleware.SyncKeyHeader)

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(a.Metrics.Registry, promhttp.HandlerOpts{})))

	// Health check endpoint
	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "data_mode": cfg.DataMode})
	})

	v1 := router.Group("/api/v1")

	// Pipeline routes
	pipeline := v1.Group("/pipeline")
	pipeline.Use(middleware.PipelineAuthMiddleware(cfg.SyncAPIKey))
	pipeline.POST("/sync", syncHandler.SyncOwners)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/periods/:year/:month", periodHandler.GetPeriod)

	obligations := protected.Group("/obligations")
	obligations.POST("", obligationHandler.CreateObligation)
	obligations.GET("", obligationHandler.GetObligations)
	obligations.GET("/:id", obligationHandler.GetObligation)
	obligations.PUT("/:id", obligationHandler.UpdateObligation)
	obligations.PATCH("/:id/active", obligationHandler.SetObligationActive)
	obligations.DELETE("/:id", obligationHandler.DeleteObligation)
	obligations.POST("/:id/pay", obligationHandler.PayObligation)

	return router
}
