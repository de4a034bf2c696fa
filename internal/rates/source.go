// internal/rates/source.go
package rates

import (
	"context"
	"fmt"
	"time"

	"currency-wallet/internal/domain"
	"currency-wallet/internal/util"

	"github.com/shopspring/decimal"
)

// Source is the exchange rate capability the wallet core consumes. The core
// never speaks the upstream wire protocol itself; it only requires dated
// currency-to-ILS observations.
type Source interface {
	// FetchRate returns the most recent observation for currency at or
	// before asOf, scanning backward over the lookback window. It returns
	// an error wrapping util.ErrRateUnavailable when no observation exists
	// in that window. For the base currency the rate is 1.0 as of asOf.
	FetchRate(ctx context.Context, currency string, asOf time.Time) (*domain.RateObservation, error)
	// FetchSeries returns all observations for currency within [from, to],
	// ordered by date ascending.
	FetchSeries(ctx context.Context, currency string, from, to time.Time) ([]domain.RateObservation, error)
}

// ResolvePair derives the source→target conversion rate from base-quoted
// observations:
//
//	ILS → X : 1 / rate(X→ILS), dated by X's observation
//	X → ILS : rate(X→ILS)
//	X → Y   : rate(X→ILS) / rate(Y→ILS), dated by X's observation
//
// The cross-rate case assumes both observations carry the same date; the
// source's date wins when they differ.
func ResolvePair(ctx context.Context, src Source, sourceCurrency, targetCurrency string, asOf time.Time) (decimal.Decimal, time.Time, error) {
	var rate decimal.Decimal
	var rateDate time.Time

	switch {
	case sourceCurrency == domain.BaseCurrency:
		target, err := src.FetchRate(ctx, targetCurrency, asOf)
		if err != nil {
			return decimal.Zero, time.Time{}, err
		}
		rate = decimal.NewFromInt(1).Div(target.RateToILS)
		rateDate = target.Date
	case targetCurrency == domain.BaseCurrency:
		source, err := src.FetchRate(ctx, sourceCurrency, asOf)
		if err != nil {
			return decimal.Zero, time.Time{}, err
		}
		rate = source.RateToILS
		rateDate = source.Date
	default:
		source, err := src.FetchRate(ctx, sourceCurrency, asOf)
		if err != nil {
			return decimal.Zero, time.Time{}, err
		}
		target, err := src.FetchRate(ctx, targetCurrency, asOf)
		if err != nil {
			return decimal.Zero, time.Time{}, err
		}
		rate = source.RateToILS.Div(target.RateToILS)
		rateDate = source.Date
	}

	if rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, time.Time{}, fmt.Errorf("non-positive rate %s for %s->%s: %w",
			rate, sourceCurrency, targetCurrency, util.ErrRateUnavailable)
	}
	return rate, rateDate, nil
}
