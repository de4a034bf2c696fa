// internal/service/rate_service.go
package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"currency-wallet/internal/domain"
	"currency-wallet/internal/rates"
	"currency-wallet/internal/repository"
	"currency-wallet/internal/util"

	"github.com/shopspring/decimal"
)

// RateService exposes exchange rate reads and the historical table sync.
type RateService interface {
	// LatestRates returns the most recent available rate per supported
	// currency against the base unit. Currencies whose lookup fails are
	// omitted; the base currency is always present at 1.0.
	LatestRates(ctx context.Context) (map[string]decimal.Decimal, error)
	// HistoricalRates returns the stored series for a currency within
	// [from, to], ascending.
	HistoricalRates(ctx context.Context, currency string, from, to time.Time) ([]domain.RateObservation, error)
	// SyncHistory fetches the last `days` of observations for every foreign
	// currency from the rate source and upserts them into the historical
	// table. Per-currency failures are logged and skipped.
	SyncHistory(ctx context.Context, days int) error
}

type rateService struct {
	dbExecutor repository.DBExecutor
	rateRepo   repository.RateRepository
	rateSource rates.Source
	logger     *slog.Logger

	// syncDelay spaces out upstream calls during SyncHistory to stay under
	// the provider's rate limit.
	syncDelay time.Duration
}

// NewRateService creates a new instance of RateService.
func NewRateService(
	dbExecutor repository.DBExecutor,
	rateRepo repository.RateRepository,
	rateSource rates.Source,
	logger *slog.Logger,
) RateService {
	return &rateService{
		dbExecutor: dbExecutor,
		rateRepo:   rateRepo,
		rateSource: rateSource,
		logger:     logger,
		syncDelay:  200 * time.Millisecond,
	}
}

func (s *rateService) LatestRates(ctx context.Context) (map[string]decimal.Decimal, error) {
	now := time.Now().UTC()
	result := make(map[string]decimal.Decimal, len(domain.SupportedCurrencies))

	for _, currency := range domain.ForeignCurrencies {
		obs, err := s.rateSource.FetchRate(ctx, currency, now)
		if err != nil {
			// A single unavailable series should not empty the whole
			// response; the dashboard renders what it gets.
			s.logger.Warn("Skipping currency with no recent rate", "currency", currency, "error", err)
			continue
		}
		result[currency] = obs.RateToILS
	}
	result[domain.BaseCurrency] = decimal.NewFromInt(1)
	return result, nil
}

func (s *rateService) HistoricalRates(ctx context.Context, currency string, from, to time.Time) ([]domain.RateObservation, error) {
	if currency == "" || from.IsZero() || to.IsZero() {
		return nil, util.ErrInvalidInput
	}
	if !domain.IsSupportedCurrency(currency) {
		return nil, fmt.Errorf("currency '%s': %w", currency, util.ErrUnsupportedCurrency)
	}
	if to.Before(from) {
		return nil, fmt.Errorf("end date precedes start date: %w", util.ErrInvalidInput)
	}

	observations, err := s.rateRepo.GetSeries(ctx, s.dbExecutor, currency, from, to)
	if err != nil {
		return nil, fmt.Errorf("historical rates: %w", err)
	}
	return observations, nil
}

func (s *rateService) SyncHistory(ctx context.Context, days int) error {
	if days <= 0 {
		return util.ErrInvalidInput
	}

	to := time.Now().UTC()
	from := to.AddDate(0, 0, -days)
	var synced, failed int

	for i, currency := range domain.ForeignCurrencies {
		if i > 0 && s.syncDelay > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(s.syncDelay):
			}
		}

		observations, err := s.rateSource.FetchSeries(ctx, currency, from, to)
		if err != nil {
			failed++
			s.logger.Error("Failed to fetch rate series", "currency", currency, "error", err)
			continue
		}
		for i := range observations {
			if err := s.rateRepo.UpsertObservation(ctx, s.dbExecutor, &observations[i]); err != nil {
				failed++
				s.logger.Error("Failed to store rate observation",
					"currency", currency, "date", observations[i].Date, "error", err)
				continue
			}
			synced++
		}
	}

	s.logger.Info("Rate history sync finished", "synced", synced, "failed", failed, "days", days)
	if synced == 0 && failed > 0 {
		return fmt.Errorf("rate sync: all %d currencies failed", len(domain.ForeignCurrencies))
	}
	return nil
}
