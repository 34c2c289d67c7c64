// Package main is the entry point for the bbquotes HTTP service.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/bbquotes/internal/adapters/clients"
	"github.com/jsamuelsen/bbquotes/internal/adapters/clients/acl"
	"github.com/jsamuelsen/bbquotes/internal/adapters/http"
	"github.com/jsamuelsen/bbquotes/internal/adapters/http/handlers"
	"github.com/jsamuelsen/bbquotes/internal/app"
	"github.com/jsamuelsen/bbquotes/internal/platform/config"
	"github.com/jsamuelsen/bbquotes/internal/platform/logging"
	"github.com/jsamuelsen/bbquotes/internal/platform/telemetry"
	"github.com/jsamuelsen/bbquotes/internal/ports"
)

// Build-time variables, injected via ldflags.
// Example: go build -ldflags "-X main.Version=1.0.0 -X main.Commit=$(git rev-parse HEAD) -X main.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	// Version is the semantic version of the service.
	Version = "dev"

	// Commit is the git commit SHA.
	Commit = "unknown"

	// BuildTime is the timestamp when the binary was built.
	BuildTime = "unknown"
)

// readinessCacheTTL keeps frequent health checks from each calling the quotes API.
const readinessCacheTTL = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	// 1. Determine profile from environment
	profile := os.Getenv("APP_ENVIRONMENT")
	if profile == "" {
		profile = "local"
	}

	// 2. Load and validate configuration (fail fast)
	cfg, err := config.Load(profile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	// 3. Initialize logging
	logger := logging.New(&logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: cfg.App.Name,
		Version: cfg.App.Version,
		File: logging.FileConfig{
			Enabled:    cfg.Log.File.Enabled,
			Path:       cfg.Log.File.Path,
			MaxSizeMB:  cfg.Log.File.MaxSizeMB,
			MaxBackups: cfg.Log.File.MaxBackups,
			MaxAgeDays: cfg.Log.File.MaxAgeDays,
			Compress:   cfg.Log.File.Compress,
		},
	})
	slog.SetDefault(logger)

	logger.Info("starting service",
		slog.String("version", Version),
		slog.String("commit", Commit),
		slog.String("environment", cfg.App.Environment),
	)

	// 4. Initialize telemetry (noop if disabled)
	telProvider, err := telemetry.New(ctx, &telemetry.Config{
		Enabled:      cfg.Telemetry.Enabled,
		Endpoint:     cfg.Telemetry.Endpoint,
		ServiceName:  cfg.Telemetry.ServiceName,
		Version:      cfg.App.Version,
		Environment:  cfg.App.Environment,
		Upstream:     cfg.Services.BreakingBad.BaseURL,
		SamplingRate: cfg.Telemetry.SamplingRate,
	})
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}

	defer func() {
		if shutdownErr := telProvider.Shutdown(ctx); shutdownErr != nil {
			logger.Error("telemetry shutdown error", slog.Any("error", shutdownErr))
		}
	}()

	fetchMetrics, err := telemetry.NewFetchMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("registering fetch metrics: %w", err)
	}

	// 5. Create health registry
	healthRegistry := ports.NewHealthRegistry()

	// 6. Create HTTP client for the quotes API
	httpClient, err := clients.New(clients.ConfigFor(
		cfg.Services.BreakingBad,
		cfg.Client,
		cfg.App.Name+"/"+Version,
		logger,
	))
	if err != nil {
		return fmt.Errorf("creating HTTP client: %w", err)
	}

	// 7. Create the quotes API adapter (ACL pattern)
	quoteAPI := acl.NewBreakingBadAdapter(acl.BreakingBadConfig{
		Client: httpClient,
		Logger: logger,
	})

	if err := healthRegistry.Register(quoteAPI); err != nil {
		return fmt.Errorf("registering quotes API health check: %w", err)
	}

	// 8. Create the fetch service and one screen per show (application layer)
	fetchService := app.NewFetchService(app.FetchServiceConfig{
		API:    quoteAPI,
		Flags:  ports.StaticFlags(cfg.Features),
		Logger: logger,
	})

	screens, err := app.NewScreens(app.ScreensConfig{
		Shows:   showsFromConfig(cfg.Shows),
		Fetcher: fetchService,
		Metrics: fetchMetrics,
		Logger:  logger,
	})
	if err != nil {
		return fmt.Errorf("creating screens: %w", err)
	}
	defer screens.Close()

	// 9. Create handlers
	buildInfo := handlers.NewBuildInfo(Version, Commit, BuildTime)
	buildInfo.Upstream = cfg.Services.BreakingBad.BaseURL
	healthHandler := handlers.NewHealthHandler(healthRegistry, buildInfo,
		handlers.WithReadinessCache(readinessCacheTTL),
	)

	// 10. Create HTTP server
	server := http.New(&cfg.Server, logger)

	// 11. Setup router with all middleware and routes
	http.SetupRouter(server.Engine(), http.NewDefaultRouterConfig(
		logger,
		&cfg.App,
		healthHandler,
		handlers.NewShowsHandler(screens),
		handlers.NewQuoteHandler(fetchService),
	))

	// 12. Start server (non-blocking once bound)
	serverErr, err := server.Start()
	if err != nil {
		return err
	}

	// 13. Wait for shutdown signal
	return waitForShutdown(ctx, logger, server, serverErr, cfg.Server.ShutdownTimeout)
}

func showsFromConfig(shows []config.ShowConfig) []app.Show {
	out := make([]app.Show, 0, len(shows))
	for _, s := range shows {
		out = append(out, app.Show{Slug: s.Slug, Name: s.Name})
	}

	return out
}

// waitForShutdown blocks until a shutdown signal is received or server error occurs.
// It then performs graceful shutdown of the HTTP server.
func waitForShutdown(
	ctx context.Context,
	logger *slog.Logger,
	server *http.Server,
	serverErr <-chan error,
	shutdownTimeout time.Duration,
) error {
	// Listen for OS signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		// Server error during startup or runtime
		return fmt.Errorf("server error: %w", err)

	case sig := <-quit:
		logger.Info("received shutdown signal", slog.String("signal", sig.String()))
	}

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	// Graceful shutdown sequence
	logger.Info("initiating graceful shutdown",
		slog.Duration("timeout", shutdownTimeout),
	)

	// Stop accepting new requests, drain in-flight
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("shutdown complete")

	return nil
}
