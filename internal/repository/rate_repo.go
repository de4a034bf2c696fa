// internal/repository/rate_repo.go
package repository

import (
	"context"
	"time"

	"currency-wallet/internal/domain"
)

// RateRepository defines the interface for the historical exchange rate side
// table. The table only serves charting and the offline sync job; conversion
// pricing always goes to the live rate source.
type RateRepository interface {
	// UpsertObservation inserts or replaces the rate for (currency, date).
	UpsertObservation(ctx context.Context, q DBExecutor, obs *domain.RateObservation) error
	// GetSeries retrieves observations for a currency within [from, to],
	// ordered by date ascending.
	GetSeries(ctx context.Context, q DBExecutor, currency string, from, to time.Time) ([]domain.RateObservation, error)
}
