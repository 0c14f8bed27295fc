package main

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/couchcryptid/dsr-impact-service/internal/adapter/dashboard"
	httpadapter "github.com/couchcryptid/dsr-impact-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/dsr-impact-service/internal/adapter/kafka"
	"github.com/couchcryptid/dsr-impact-service/internal/config"
	"github.com/couchcryptid/dsr-impact-service/internal/domain"
	"github.com/couchcryptid/dsr-impact-service/internal/observability"
	"github.com/couchcryptid/dsr-impact-service/internal/pipeline"
)

func main() {
	// A .env file is optional; real environment variables take precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		slog.Error("failed to read .env", "error", err)
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	rates, err := domain.LoadRateTable(cfg.RateTablePath)
	if err != nil {
		logger.Error("failed to load rate table", "error", err, "path", cfg.RateTablePath)
		os.Exit(1)
	}

	// Initialize the dashboard source (feature-flagged via DASHBOARD_ENABLED / DASHBOARD_BASE_URL).
	var source domain.ImpactSource
	if cfg.DashboardEnabled {
		client := dashboard.NewClient(cfg.DashboardBaseURL, cfg.DashboardTimeout, metrics, logger)
		source = dashboard.NewCachedSource(client, cfg.DashboardCacheSize, cfg.DashboardCacheTTL, nil, metrics)
		metrics.CompensationEnabled.Set(1)
		logger.Info("compensation estimates enabled",
			"dashboard", cfg.DashboardBaseURL, "cache_size", cfg.DashboardCacheSize, "cache_ttl", cfg.DashboardCacheTTL, "timeout", cfg.DashboardTimeout)
	} else {
		logger.Info("compensation estimates disabled")
	}

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	transformer := pipeline.NewTransformer(source, rates, cfg.SeverityWeights, logger)

	p := pipeline.New(reader, transformer, writer, logger, metrics, cfg.BatchSize)

	api := httpadapter.NewAPI(rates, cfg.SeverityWeights, logger)
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, api, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start impact pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}

	logger.Info("shutdown complete")
}
