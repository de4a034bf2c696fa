// internal/domain/rate.go
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateObservation is one dated exchange rate quote against the base unit:
// 1 unit of Currency = RateToILS ILS. Observations are used for conversion
// pricing and historical charting, never for balances.
type RateObservation struct {
	Currency  string          `db:"currency" json:"currency"`
	Date      time.Time       `db:"date" json:"date"`
	RateToILS decimal.Decimal `db:"rate_to_ils" json:"rate_to_ils"`
}
