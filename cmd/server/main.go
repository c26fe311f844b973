package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/recon/internal/config"
	"github.com/JonMunkholm/recon/internal/core"
	"github.com/JonMunkholm/recon/internal/logging"
	"github.com/JonMunkholm/recon/internal/metrics"
	"github.com/JonMunkholm/recon/internal/store"
	"github.com/JonMunkholm/recon/internal/web"
	"github.com/joho/godotenv"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("configuration loaded", "config", cfg.String())

	ctx := context.Background()
	reports, err := store.Open(ctx, cfg.Store)
	if err != nil {
		slog.Error("failed to open report store", "driver", cfg.Store.Driver, "error", err)
		os.Exit(1)
	}
	defer reports.Close()
	slog.Info("report store ready", "driver", cfg.Store.Driver)

	recorder := metrics.New()
	limiter := core.NewJobLimiter(cfg.Upload.MaxConcurrent, cfg.Upload.MaxWaitTime)

	service := core.NewService(reports,
		core.WithLimiter(limiter),
		core.WithObserver(recorder),
		core.WithPreviewLimit(cfg.Report.PreviewLimit),
		core.WithRetryDelay(cfg.Store.RetryDelay),
	)

	opts := []web.Option{web.WithMetrics(recorder)}
	if hc, ok := reports.(web.HealthChecker); ok {
		opts = append(opts, web.WithHealthCheck(hc))
	}
	server := web.NewServer(service, cfg, opts...)

	// Graceful shutdown
	done := make(chan struct{})
	go func() {
		defer close(done)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Let running jobs finish before the listener goes away.
		if status := limiter.Status(); status.Active > 0 {
			slog.Info("waiting for jobs to complete", "active", status.Active)
			if err := limiter.WaitForDrain(shutdownCtx); err != nil {
				slog.Warn("jobs did not complete in time", "error", err)
			} else {
				slog.Info("all jobs completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
	<-done
	slog.Info("server stopped")
}
