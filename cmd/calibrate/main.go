// Command calibrate recomputes intensity weights from the classified quote
// corpus and stores them as a new versioned artifact. Run it after enough
// fresh data has accumulated; the report pipeline picks up the latest
// artifact on its next cycle.
package main

import (
	"context"
	"flag"

	chclient "barometer/internal/adapters/clickhouse"
	"barometer/internal/adapters/config"
	pgclient "barometer/internal/adapters/postgres"
	chrepo "barometer/internal/repository/clickhouse"
	pgrepo "barometer/internal/repository/postgres"
	calibrationsvc "barometer/internal/services/calibration"
	"barometer/pkg/logger"
)

func main() {
	// Parse flags
	window := flag.Int("window", 0, "Calibration window in days (0 = full corpus)")
	flag.Parse()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize logger
	if err := logger.Init(cfg.App.LogLevel, cfg.App.Env); err != nil {
		panic("failed to init logger: " + err.Error())
	}
	defer logger.Sync()

	log := logger.Get()
	log.Infow("Starting calibration",
		"window_days", *window,
		"min_corpus", cfg.Analytics.Calibration.MinCorpusSize,
	)

	// Connect to stores
	ch, err := chclient.NewClient(cfg.ClickHouse)
	if err != nil {
		log.Fatalf("Failed to connect to ClickHouse: %v", err)
	}
	defer ch.Close()

	pg, err := pgclient.NewClient(cfg.Postgres)
	if err != nil {
		log.Fatalf("Failed to connect to PostgreSQL: %v", err)
	}
	defer pg.Close()

	ctx := context.Background()

	quotes := chrepo.NewQuoteRepository(ch.Conn())
	artifacts := pgrepo.NewCalibrationRepository(pg.DB())

	// A fresh environment has no artifact table yet
	if err := artifacts.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure artifact schema: %v", err)
	}

	svc := calibrationsvc.NewService(cfg.Analytics.Calibration, quotes, artifacts)

	artifact, err := svc.Run(ctx, *window)
	if err != nil {
		log.Fatalf("Calibration failed: %v", err)
	}

	log.Infow("✅ Calibration artifact stored",
		"version", artifact.Version,
		"range_start", artifact.DataRangeStart.String(),
		"range_end", artifact.DataRangeEnd.String(),
		"total_quotes", artifact.TotalQuotes,
		"mild", artifact.Weights.Mild,
		"moderate", artifact.Weights.Moderate,
		"strong", artifact.Weights.Strong,
		"degraded", artifact.Degraded,
	)
}
