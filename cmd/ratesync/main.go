// cmd/ratesync/main.go
//
// Offline batch job that backfills the historical_exchange_rates table from
// the Bank of Israel rate source. Meant for cron; it needs no coordination
// with the API server.
package main

import (
	"context"
	"os"
	"time"

	"currency-wallet/internal/config"
	"currency-wallet/internal/rates"
	"currency-wallet/internal/repository/postgres"
	"currency-wallet/internal/service"
	"currency-wallet/internal/util"
	"currency-wallet/pkg/db"
)

func main() {
	util.InitLogger()
	logger := util.GetLogger()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	database, err := db.NewPostgresDB(cfg.DB)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer database.Close()

	source := rates.NewBOIClient(cfg.Rates.BaseURL, cfg.Rates.Timeout, cfg.Rates.LookbackDays)
	rateService := service.NewRateService(database, postgres.NewRateRepository(database), source, logger)

	// Generous ceiling: three currencies, one upstream call each.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	logger.Info("Starting rate history sync", "days", cfg.Rates.SyncDays)
	if err := rateService.SyncHistory(ctx, cfg.Rates.SyncDays); err != nil {
		logger.Error("Rate history sync failed", "error", err)
		os.Exit(1)
	}
}
