package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/pageza/recipe-remix/backend/config"
	"github.com/pageza/recipe-remix/backend/internal/api"
	"github.com/pageza/recipe-remix/backend/internal/database"
	"github.com/pageza/recipe-remix/backend/internal/metrics"
	"github.com/pageza/recipe-remix/backend/internal/middleware"
	"github.com/pageza/recipe-remix/backend/internal/router"
	"github.com/pageza/recipe-remix/backend/internal/service"
)

// Server represents the HTTP server
type Server struct {
	router  *gin.Engine
	http    *http.Server
	logger  *zap.Logger
	closers []func() error
}

// New opens the backends selected by cfg and wires them into a server
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Server, error) {
	if cfg.Environment.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	var (
		closers []func() error
		checks  = make(map[string]api.HealthCheckFunc)
		rdb     *redis.Client
		db      *database.DB
		err     error
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i]()
		}
	}

	if cfg.NeedsRedis() {
		rdb, err = database.NewRedisClient(cfg, log)
		if err != nil {
			return nil, err
		}
		closers = append(closers, rdb.Close)
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	if cfg.CookbookStore == config.CookbookDatabase {
		db, err = database.New(cfg, log)
		if err != nil {
			cleanup()
			return nil, err
		}
		closers = append(closers, db.Close)
		checks["database"] = db.HealthCheck
		if err := database.RunMigrations(db.DB); err != nil {
			cleanup()
			return nil, err
		}
	}

	deps := router.Dependencies{
		HealthChecks:       checks,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
		Logger:             log,
		Metrics:            metrics.New(),
	}

	var gdb *gorm.DB
	if db != nil {
		gdb = db.DB
	}
	deps.Cookbook, err = service.NewCookbookStore(cfg.CookbookStore, rdb, gdb, cfg.CookbookKey)
	if err != nil {
		cleanup()
		return nil, err
	}

	deps.Board = service.NewBoard(service.NewRecipeClient(cfg, log), deps.Metrics, log)

	var store service.ObjectStore
	if cfg.S3BucketName != "" {
		s3Config, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			cleanup()
			return nil, fmt.Errorf("failed to configure export storage: %w", err)
		}
		store = s3Config
		log.Info("Export publishing enabled", zap.String("bucket", cfg.S3BucketName))
	}
	deps.Exporter = service.NewExporter(store, cfg.ExportURLTTL, log)

	if cfg.RateLimitPerHour > 0 {
		deps.Limiter = middleware.NewFetchRateLimiter(rdb, cfg.RateLimitPerHour, log)
	}

	if cfg.APIToken != "" {
		validator, err := middleware.NewStaticTokenValidator(cfg.APIToken)
		if err != nil {
			cleanup()
			return nil, err
		}
		deps.TokenValidator = validator
	}

	srv, err := NewWithDependencies(cfg, deps)
	if err != nil {
		cleanup()
		return nil, err
	}
	srv.closers = closers
	return srv, nil
}

// NewWithDependencies builds a server around already constructed components
func NewWithDependencies(cfg *config.Config, deps router.Dependencies) (*Server, error) {
	engine, err := router.SetupRouter(deps)
	if err != nil {
		return nil, err
	}

	log := deps.Logger
	if log == nil {
		log = zap.NewNop()
	}

	return &Server{
		router: engine,
		logger: log,
		http: &http.Server{
			Addr:              cfg.Address(),
			Handler:           middleware.ErrorHandler(log, engine),
			ReadHeaderTimeout: 10 * time.Second,
		},
	}, nil
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Start serves HTTP until Shutdown is called
func (s *Server) Start() error {
	s.logger.Info("Starting server", zap.String("addr", s.http.Addr))
	if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown gracefully stops the HTTP server and releases the backends
func (s *Server) Shutdown(ctx context.Context) error {
	err := s.http.Shutdown(ctx)
	for i := len(s.closers) - 1; i >= 0; i-- {
		if cerr := s.closers[i](); cerr != nil {
			s.logger.Warn("Failed to close backend", zap.Error(cerr))
		}
	}
	s.closers = nil
	return err
}
