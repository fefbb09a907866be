package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/SscSPs/bizledger/internal/app"
	"github.com/SscSPs/bizledger/internal/handlers"
	"github.com/SscSPs/bizledger/internal/middleware"
	"github.com/SscSPs/bizledger/internal/platform/config"
	"github.com/SscSPs/bizledger/internal/platform/telemetry"
	"github.com/SscSPs/bizledger/internal/scheduler"
	"github.com/SscSPs/bizledger/pkg/database"
)

// @title BizLedger API
// @version 1.0
// @description Multi-tenant ledger for small businesses: accounts, transactions, goals, budgets and alerts.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	if err := run(logger); err != nil {
		logger.Error("Server exited with error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.OTelEnabled,
		CollectorEndpoint: cfg.OTelCollectorEndpoint,
		SamplingRatio:     cfg.OTelSamplingRatio,
		ServiceName:       cfg.OTelServiceName,
		Insecure:          !cfg.IsProduction,
	}, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			logger.Error("Failed to shutdown tracer provider", slog.String("error", err.Error()))
		}
	}()

	logger.Info("Running database migrations...")
	if err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, logger); err != nil {
		return err
	}

	infra, err := app.Open(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer infra.Close()
	logger.Info("Database connection pool established.")

	services := infra.Services(cfg)

	apiLimiter, err := middleware.NewLimiter(cfg.RateLimit, infra.Redis, "bizledger:api")
	if err != nil {
		return err
	}
	loginLimiter, err := middleware.NewLimiter(cfg.LoginRateLimit, infra.Redis, "bizledger:login")
	if err != nil {
		return err
	}

	router, err := handlers.NewRouter(cfg, logger, services, handlers.Limiters{API: apiLimiter, Login: loginLimiter})
	if err != nil {
		return err
	}

	var sweeper *scheduler.AlertSweeper
	if cfg.AlertSweepEnabled {
		sweeper = scheduler.NewAlertSweeper(scheduler.AlertSweeperConfig{
			Interval:    cfg.AlertSweepInterval,
			Concurrency: cfg.AlertSweepConcurrency,
		}, services.Company, services.Alert, logger)
		sweeper.Start(ctx)
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Server starting", slog.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if sweeper != nil {
		if err := sweeper.Stop(shutdownCtx); err != nil {
			logger.Error("Alert sweeper did not stop in time", slog.String("error", err.Error()))
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("Server exited gracefully")
	return nil
}
