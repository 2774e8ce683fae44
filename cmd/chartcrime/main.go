package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/chartcrime/chartcrime-go/internal/config"
	"github.com/chartcrime/chartcrime-go/internal/fred"
	"github.com/chartcrime/chartcrime-go/internal/logging"
	"github.com/chartcrime/chartcrime-go/internal/services"
	"github.com/chartcrime/chartcrime-go/internal/store"
)

func main() {
	// Load .env if present; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.Environment)

	if cfg.FRED.APIKey == "" {
		logger.Fatal("FRED_API_KEY is not set")
	}

	repo, err := store.NewFileSeriesRepository(cfg.Storage.CacheDir, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to open series cache")
	}

	client := fred.NewClient(&cfg.FRED, logger)
	usage := store.NewUsageTracker(cfg.Storage.UsageHistoryPath, cfg.Rotation.RetentionDays, logger)
	exclusions := store.NewExclusionStore(cfg.Storage.ExclusionPath, logger)
	runner := services.NewRunner(cfg, client, repo, usage, exclusions, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	payload, err := runner.Run(ctx)
	if err != nil {
		logger.WithError(err).Fatal("Run failed, nothing published")
	}

	logger.WithField("output", cfg.Storage.OutputPath).Infof(
		"Selected %s (r=%.4f, rank %d of %d)",
		payload.ID, payload.Correlation, payload.Rank, payload.TotalSeries)
}
