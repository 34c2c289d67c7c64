package http

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/bbquotes/internal/adapters/http/dto"
	"github.com/jsamuelsen/bbquotes/internal/adapters/http/handlers"
	"github.com/jsamuelsen/bbquotes/internal/adapters/http/middleware"
	"github.com/jsamuelsen/bbquotes/internal/platform/config"
	"github.com/jsamuelsen/bbquotes/internal/platform/telemetry"
)

// DefaultRequestTimeout is the default timeout for API requests.
const DefaultRequestTimeout = 30 * time.Second

// RouterConfig contains configuration for setting up the router.
type RouterConfig struct {
	// Logger is the structured logger for request logging.
	Logger *slog.Logger

	// AppConfig contains application configuration.
	AppConfig *config.AppConfig

	// HealthHandler handles health check endpoints.
	HealthHandler *handlers.HealthHandler

	// ShowsHandler serves the per-show screens.
	ShowsHandler *handlers.ShowsHandler

	// QuoteHandler serves the synchronous quote flow.
	QuoteHandler *handlers.QuoteHandler

	// Timeout is the deadline for API requests. Zero disables it.
	Timeout time.Duration
}

// SetupRouter configures all routes and middleware on the Gin engine.
// Middleware is applied in the following order (first to last):
//  1. Recovery - catch panics first
//  2. Context logger, request ID, correlation ID
//  3. OpenTelemetry - tracing and metrics
//  4. Logging - request logging (skips health endpoints)
//  5. Timeout - /api/v1 only
//
// Route groups:
//   - /-/ (internal): health, build info and metrics
//   - /api/v1/: shows and quotes
func SetupRouter(engine *gin.Engine, cfg RouterConfig) {
	engine.Use(
		middleware.Recovery(cfg.Logger),
		middleware.ContextLogger(cfg.Logger),
		middleware.RequestID(),
		middleware.CorrelationID(),
	)
	engine.Use(telemetry.Middleware(cfg.AppConfig.Name)...)
	engine.Use(middleware.Logging(cfg.Logger))

	engine.HandleMethodNotAllowed = true
	engine.NoRoute(func(c *gin.Context) {
		dto.RespondWithErrorCode(c, dto.ErrorCodeNotFound, "route not found")
	})
	engine.NoMethod(func(c *gin.Context) {
		dto.RespondWithErrorCode(c, dto.ErrorCodeMethodNotAllowed, "method not allowed")
	})

	if cfg.HealthHandler != nil {
		cfg.HealthHandler.RegisterRoutes(engine)
	}

	apiV1 := engine.Group("/api/v1")
	if cfg.Timeout > 0 {
		apiV1.Use(middleware.Timeout(cfg.Timeout))
	}

	if cfg.ShowsHandler != nil {
		cfg.ShowsHandler.RegisterRoutes(apiV1)
	}

	if cfg.QuoteHandler != nil {
		cfg.QuoteHandler.RegisterRoutes(apiV1)
	}
}

// NewDefaultRouterConfig creates a RouterConfig with sensible defaults.
func NewDefaultRouterConfig(
	logger *slog.Logger,
	appCfg *config.AppConfig,
	healthHandler *handlers.HealthHandler,
	showsHandler *handlers.ShowsHandler,
	quoteHandler *handlers.QuoteHandler,
) RouterConfig {
	return RouterConfig{
		Logger:        logger,
		AppConfig:     appCfg,
		HealthHandler: healthHandler,
		ShowsHandler:  showsHandler,
		QuoteHandler:  quoteHandler,
		Timeout:       DefaultRequestTimeout,
	}
}
