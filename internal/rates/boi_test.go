// internal/rates/boi_test.go
package rates

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"currency-wallet/internal/domain"
	"currency-wallet/internal/util"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

// sdmxBody renders a minimal SDMX-ML payload carrying the given observations.
// The real BOI response nests Obs inside Series/DataSet; depth must not
// matter to the parser.
func sdmxBody(obs map[string]string) string {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="utf-8"?><message:StructureSpecificData><DataSet><Series>`)
	for date, value := range obs {
		fmt.Fprintf(&b, `<Obs TIME_PERIOD="%s" OBS_VALUE="%s"/>`, date, value)
	}
	b.WriteString(`</Series></DataSet></message:StructureSpecificData>`)
	return b.String()
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *BOIClient {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewBOIClient(server.URL, 5*time.Second, DefaultLookbackDays)
}

func TestFetchRatePicksMostRecentObservation(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "RER_USD_ILS")
		assert.Equal(t, "CurrencyWallet/1.0", r.Header.Get("User-Agent"))
		fmt.Fprint(w, sdmxBody(map[string]string{
			"2026-08-27": "3.65",
			"2026-08-28": "3.70",
		}))
	})

	obs, err := client.FetchRate(context.Background(), domain.CurrencyUSD, day("2026-08-30"))
	require.NoError(t, err)
	assert.Equal(t, domain.CurrencyUSD, obs.Currency)
	assert.True(t, obs.RateToILS.Equal(decimal.RequireFromString("3.70")))
	assert.Equal(t, day("2026-08-28"), obs.Date)
}

func TestFetchRateScansBackwardThroughGaps(t *testing.T) {
	// Only the oldest day of the window has an observation.
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sdmxBody(map[string]string{"2026-08-26": "3.61"}))
	})

	obs, err := client.FetchRate(context.Background(), domain.CurrencyUSD, day("2026-08-30"))
	require.NoError(t, err)
	assert.Equal(t, day("2026-08-26"), obs.Date)
	assert.True(t, obs.RateToILS.Equal(decimal.RequireFromString("3.61")))
}

func TestFetchRateNoObservationInWindow(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sdmxBody(nil))
	})

	_, err := client.FetchRate(context.Background(), domain.CurrencyUSD, day("2026-08-30"))
	assert.ErrorIs(t, err, util.ErrRateUnavailable)
}

func TestFetchRateSkipsNonPositiveValues(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, sdmxBody(map[string]string{
			"2026-08-29": "0",
			"2026-08-30": "-1.5",
		}))
	})

	_, err := client.FetchRate(context.Background(), domain.CurrencyUSD, day("2026-08-30"))
	assert.ErrorIs(t, err, util.ErrRateUnavailable)
}

func TestFetchRateBaseCurrencyShortCircuits(t *testing.T) {
	// Must not hit the network at all.
	client := NewBOIClient("http://127.0.0.1:1", time.Second, DefaultLookbackDays)

	obs, err := client.FetchRate(context.Background(), domain.CurrencyILS, day("2026-08-30"))
	require.NoError(t, err)
	assert.True(t, obs.RateToILS.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, day("2026-08-30"), obs.Date)
}

func TestFetchRateUnsupportedCurrency(t *testing.T) {
	client := NewBOIClient("http://127.0.0.1:1", time.Second, DefaultLookbackDays)

	_, err := client.FetchRate(context.Background(), "JPY", day("2026-08-30"))
	assert.ErrorIs(t, err, util.ErrUnsupportedCurrency)
}

func TestFetchRateUpstreamFailure(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.FetchRate(context.Background(), domain.CurrencyEUR, day("2026-08-30"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, util.ErrRateUnavailable)
}

func TestFetchSeriesOrdersAscending(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "2026-08-01", r.URL.Query().Get("startperiod"))
		assert.Equal(t, "2026-08-30", r.URL.Query().Get("endperiod"))
		fmt.Fprint(w, sdmxBody(map[string]string{
			"2026-08-20": "3.70",
			"2026-08-05": "3.60",
			"2026-08-12": "3.65",
		}))
	})

	series, err := client.FetchSeries(context.Background(), domain.CurrencyUSD, day("2026-08-01"), day("2026-08-30"))
	require.NoError(t, err)
	require.Len(t, series, 3)
	assert.Equal(t, day("2026-08-05"), series[0].Date)
	assert.Equal(t, day("2026-08-12"), series[1].Date)
	assert.Equal(t, day("2026-08-20"), series[2].Date)
}

// stubSource serves canned observations for ResolvePair tests.
type stubSource struct {
	rates map[string]string
	date  time.Time
}

func (s *stubSource) FetchRate(ctx context.Context, currency string, asOf time.Time) (*domain.RateObservation, error) {
	if currency == domain.BaseCurrency {
		return &domain.RateObservation{Currency: currency, Date: asOf, RateToILS: decimal.NewFromInt(1)}, nil
	}
	rate, ok := s.rates[currency]
	if !ok {
		return nil, fmt.Errorf("no observation for %s: %w", currency, util.ErrRateUnavailable)
	}
	return &domain.RateObservation{Currency: currency, Date: s.date, RateToILS: decimal.RequireFromString(rate)}, nil
}

func (s *stubSource) FetchSeries(ctx context.Context, currency string, from, to time.Time) ([]domain.RateObservation, error) {
	return nil, nil
}

func TestResolvePair(t *testing.T) {
	src := &stubSource{
		rates: map[string]string{
			domain.CurrencyUSD: "3.70",
			domain.CurrencyEUR: "4.00",
		},
		date: day("2026-08-28"),
	}
	asOf := day("2026-08-30")

	t.Run("foreign to base", func(t *testing.T) {
		rate, rateDate, err := ResolvePair(context.Background(), src, domain.CurrencyUSD, domain.CurrencyILS, asOf)
		require.NoError(t, err)
		assert.True(t, rate.Equal(decimal.RequireFromString("3.70")))
		assert.Equal(t, day("2026-08-28"), rateDate)
	})

	t.Run("base to foreign inverts", func(t *testing.T) {
		rate, rateDate, err := ResolvePair(context.Background(), src, domain.CurrencyILS, domain.CurrencyEUR, asOf)
		require.NoError(t, err)
		assert.True(t, rate.Equal(decimal.NewFromInt(1).Div(decimal.RequireFromString("4.00"))))
		assert.Equal(t, day("2026-08-28"), rateDate)
	})

	t.Run("cross rate divides base quotes", func(t *testing.T) {
		rate, rateDate, err := ResolvePair(context.Background(), src, domain.CurrencyUSD, domain.CurrencyEUR, asOf)
		require.NoError(t, err)
		want := decimal.RequireFromString("3.70").Div(decimal.RequireFromString("4.00"))
		assert.True(t, rate.Equal(want))
		assert.Equal(t, day("2026-08-28"), rateDate)
	})

	t.Run("propagates unavailable rate", func(t *testing.T) {
		_, _, err := ResolvePair(context.Background(), src, domain.CurrencyGBP, domain.CurrencyILS, asOf)
		assert.ErrorIs(t, err, util.ErrRateUnavailable)
	})

	t.Run("round trip within a cent per leg", func(t *testing.T) {
		amount := decimal.RequireFromString("123.45")
		forward, _, err := ResolvePair(context.Background(), src, domain.CurrencyUSD, domain.CurrencyEUR, asOf)
		require.NoError(t, err)
		back, _, err := ResolvePair(context.Background(), src, domain.CurrencyEUR, domain.CurrencyUSD, asOf)
		require.NoError(t, err)

		converted := amount.Mul(forward).Round(2)
		returned := converted.Mul(back).Round(2)
		diff := returned.Sub(amount).Abs()
		assert.True(t, diff.LessThanOrEqual(decimal.RequireFromString("0.02")),
			"round trip drifted by %s", diff)
	})
}
