package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/currency_swapper/internal/adapters/pricefeed"
	portsrepo "github.com/SscSPs/currency_swapper/internal/core/ports/repositories"
	"github.com/SscSPs/currency_swapper/internal/core/services"
	"github.com/SscSPs/currency_swapper/internal/handlers"
	"github.com/SscSPs/currency_swapper/internal/middleware"
	"github.com/SscSPs/currency_swapper/internal/notifications"
	"github.com/SscSPs/currency_swapper/internal/platform/config"
	"github.com/SscSPs/currency_swapper/internal/platform/logger"
	"github.com/SscSPs/currency_swapper/internal/platform/metrics"
	"github.com/SscSPs/currency_swapper/internal/repositories/database/pgsql"
	"github.com/SscSPs/currency_swapper/internal/utils"
	"github.com/SscSPs/currency_swapper/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// @title Currency Swapper API
// @version 1.0
// @description Backend for the currency swap form: price catalog, quotes and settlement notifications.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the session token.
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log, logCloser := logger.New(logger.Options{
		Service: "swapper_backend",
		Env:     cfg.AppEnv,
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg, log)
	stop()
	if err != nil {
		log.Error("Server exited with error", slog.String("error", err.Error()))
	}
	_ = logCloser.Close()
	if err != nil {
		os.Exit(1)
	}
}

// run serves the API until ctx is done or the listener fails. Every resource
// it opens is released before it returns.
func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	submitLimiter, err := middleware.NewRateLimiter(cfg.RateLimit)
	if err != nil {
		return fmt.Errorf("failed to create rate limiter: %w", err)
	}

	m := metrics.New()

	feed, cleanup, err := buildPriceFeed(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize price feed: %w", err)
	}
	defer cleanup()

	posthogClient := utils.InitializePosthogClient(cfg.PosthogAPIKey, log)
	defer func() {
		if cerr := posthogClient.Close(); cerr != nil {
			log.Error("Failed to close posthog client", slog.String("error", cerr.Error()))
		}
	}()

	hub := notifications.NewHub(log)
	serviceContainer, registry := services.NewServiceContainer(cfg, services.ContainerDeps{
		Feed:     feed,
		Notifier: notifications.NewFanout(hub, notifications.NewPosthogNotifier(posthogClient)),
		Events:   hub,
		Logger:   log,
		Metrics:  m,
	})

	// The form is usable while prices load; the catalog reports Loading until then.
	go func() {
		if _, err := serviceContainer.Catalog.Load(ctx); err != nil {
			log.Error("Initial price catalog load failed", slog.String("error", err.Error()))
		}
	}()
	go registry.RunJanitor(ctx, cfg.SessionTTL/2, cfg.SessionTTL)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery)
	r.Use(
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORSAllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
			ExposeHeaders:    []string{"X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset", middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.StructuredLoggingMiddleware(log),
		gin.Recovery(),
		middleware.MetricsMiddleware(m),
		middleware.PosthogMiddleware(posthogClient),
	)

	if err := r.SetTrustedProxies(nil); err != nil {
		return fmt.Errorf("failed to set trusted proxies: %w", err)
	}

	handlers.RegisterRoutes(r, cfg, serviceContainer, m, submitLimiter)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			cancel(fmt.Errorf("server failed to run: %w", err))
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down server")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shut down", slog.String("error", err.Error()))
	}

	if cause := context.Cause(ctx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}
	return nil
}

// buildPriceFeed returns the configured price source and a function releasing it.
func buildPriceFeed(ctx context.Context, cfg *config.Config, log *slog.Logger) (portsrepo.PriceFeedReader, func(), error) {
	switch cfg.PriceFeedSource {
	case config.PriceFeedPgSQL:
		dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
		if err != nil {
			return nil, nil, err
		}
		log.Info("Database connection pool established.")

		log.Info("Running database migrations...")
		if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			database.ClosePgxPool(dbPool)
			return nil, nil, err
		}
		repos := pgsql.NewRepositoryProvider(dbPool)
		return repos.PriceRepo, func() { database.ClosePgxPool(dbPool) }, nil
	default:
		log.Info("Using HTTP price feed", slog.String("url", cfg.PriceFeedURL))
		return pricefeed.NewHTTPPriceFeed(cfg.PriceFeedURL, cfg.PriceFeedTimeout, log), func() {}, nil
	}
}
