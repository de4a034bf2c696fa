// internal/repository/postgres/rate_pg.go
package postgres

import (
	"context"
	"fmt"
	"time"

	"currency-wallet/internal/domain"
	"currency-wallet/internal/repository"

	"github.com/jmoiron/sqlx"
)

// RateRepository implements repository.RateRepository for PostgreSQL.
type RateRepository struct {
}

// NewRateRepository creates a new RateRepository.
func NewRateRepository(db *sqlx.DB) repository.RateRepository {
	return &RateRepository{}
}

// UpsertObservation inserts or replaces the rate for (currency, date).
// The sync job may re-fetch overlapping windows, so conflicts are expected.
func (r *RateRepository) UpsertObservation(ctx context.Context, q repository.DBExecutor, obs *domain.RateObservation) error {
	query := `INSERT INTO historical_exchange_rates (currency, date, rate_to_ils)
              VALUES ($1, $2, $3)
              ON CONFLICT (currency, date) DO UPDATE SET rate_to_ils = EXCLUDED.rate_to_ils`
	if _, err := q.ExecContext(ctx, query, obs.Currency, obs.Date, obs.RateToILS); err != nil {
		return fmt.Errorf("failed to upsert rate for %s on %s: %w",
			obs.Currency, obs.Date.Format("2006-01-02"), err)
	}
	return nil
}

// GetSeries retrieves observations for a currency within [from, to],
// ordered by date ascending.
func (r *RateRepository) GetSeries(ctx context.Context, q repository.DBExecutor, currency string, from, to time.Time) ([]domain.RateObservation, error) {
	observations := []domain.RateObservation{}
	query := `SELECT currency, date, rate_to_ils
              FROM historical_exchange_rates
              WHERE currency = $1 AND date BETWEEN $2 AND $3
              ORDER BY date ASC`
	if err := q.SelectContext(ctx, &observations, query, currency, from, to); err != nil {
		return nil, fmt.Errorf("failed to fetch rate series for %s: %w", currency, err)
	}
	return observations, nil
}
