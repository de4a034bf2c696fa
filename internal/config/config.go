// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"currency-wallet/internal/rates"
	"currency-wallet/pkg/db"
)

// RatesConfig holds rate source configuration.
type RatesConfig struct {
	BaseURL      string        // SDMX endpoint base; empty means the BOI default
	Timeout      time.Duration // Per-call ceiling for upstream requests
	LookbackDays int           // Backward scan window for recent rate lookups
	SyncDays     int           // History window for the offline sync job
}

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort string
	DB         db.Config
	Rates      RatesConfig
}

// LoadConfig loads configuration from environment variables, with a .env file
// as a fallback for local development. It returns an AppConfig instance or an
// error if a variable is malformed.
func LoadConfig() (*AppConfig, error) {
	// Missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	serverPort := envOrDefault("SERVER_PORT", "8080")

	dbPort, err := strconv.Atoi(envOrDefault("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	timeoutSec, err := strconv.Atoi(envOrDefault("RATES_TIMEOUT_SECONDS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATES_TIMEOUT_SECONDS: %w", err)
	}
	lookbackDays, err := strconv.Atoi(envOrDefault("RATES_LOOKBACK_DAYS", strconv.Itoa(rates.DefaultLookbackDays)))
	if err != nil {
		return nil, fmt.Errorf("invalid RATES_LOOKBACK_DAYS: %w", err)
	}
	syncDays, err := strconv.Atoi(envOrDefault("RATES_SYNC_DAYS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATES_SYNC_DAYS: %w", err)
	}

	return &AppConfig{
		ServerPort: serverPort,
		DB: db.Config{
			Host:     envOrDefault("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     envOrDefault("DB_USER", "user"),
			Password: envOrDefault("DB_PASSWORD", "password"),
			DBName:   envOrDefault("DB_NAME", "walletdb"),
			SSLMode:  envOrDefault("DB_SSLMODE", "disable"),
		},
		Rates: RatesConfig{
			BaseURL:      os.Getenv("RATES_BASE_URL"),
			Timeout:      time.Duration(timeoutSec) * time.Second,
			LookbackDays: lookbackDays,
			SyncDays:     syncDays,
		},
	}, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
