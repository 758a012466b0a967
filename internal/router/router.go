package router

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/recipe-remix/backend/internal/api"
	"github.com/pageza/recipe-remix/backend/internal/metrics"
	"github.com/pageza/recipe-remix/backend/internal/middleware"
	"github.com/pageza/recipe-remix/backend/internal/service"
)

// Dependencies are the components the routes are wired to
type Dependencies struct {
	Board    *service.Board
	Cookbook service.CookbookStore
	Exporter *service.Exporter
	Metrics  *metrics.Collector

	// Limiter guards search and remix. Nil disables rate limiting.
	Limiter *middleware.RateLimiter
	// TokenValidator protects /api/v1. Nil leaves the JSON API open.
	TokenValidator middleware.TokenValidator

	HealthChecks       map[string]api.HealthCheckFunc
	CORSAllowedOrigins []string
	Logger             *zap.Logger
}

// SetupRouter configures the application routes
func SetupRouter(deps Dependencies) (*gin.Engine, error) {
	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	templates, err := api.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	router := gin.New()
	router.SetHTMLTemplate(templates)
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.CORS(deps.CORSAllowedOrigins))

	limit := deps.Limiter.RateLimitMiddleware()

	healthHandler := api.NewHealthHandler(deps.HealthChecks, log)
	cookbookHandler := api.NewCookbookHandler(deps.Cookbook, deps.Metrics, log)
	exportHandler := api.NewExportHandler(deps.Exporter, deps.Metrics, log)
	boardHandler := api.NewBoardHandler(deps.Board, log)
	pageHandler := api.NewPageHandler(deps.Board, cookbookHandler, exportHandler, log)

	router.GET("/health", healthHandler.HealthCheck)
	if deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))
	}

	// HTML board. Browser forms cannot send a bearer token, so these routes
	// are not behind AuthMiddleware.
	pageHandler.RegisterRoutes(router, limit)

	// API v1 routes
	v1 := router.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(deps.TokenValidator))
	{
		boardHandler.RegisterRoutes(v1, limit)
		cookbookHandler.RegisterRoutes(v1)
		exportHandler.RegisterRoutes(v1)
	}

	return router, nil
}
