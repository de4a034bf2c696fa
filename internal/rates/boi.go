// internal/rates/boi.go
package rates

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"time"

	"currency-wallet/internal/domain"
	"currency-wallet/internal/util"

	"github.com/shopspring/decimal"
)

// DefaultBaseURL is the Bank of Israel SDMX v2 exchange rate dataflow.
const DefaultBaseURL = "https://edge.boi.gov.il/FusionEdgeServer/sdmx/v2/data/dataflow/BOI.STATISTICS/EXR/1.0"

// DefaultLookbackDays is how many calendar days a rate lookup scans backward
// from asOf (inclusive) for the most recent available observation. Weekends
// and holidays leave gaps in the series, so a few days of slack are needed.
const DefaultLookbackDays = 5

const userAgent = "CurrencyWallet/1.0"

const dateLayout = "2006-01-02"

// seriesByCurrency maps currency codes to BOI representative-rate series ids.
var seriesByCurrency = map[string]string{
	domain.CurrencyUSD: "RER_USD_ILS",
	domain.CurrencyEUR: "RER_EUR_ILS",
	domain.CurrencyGBP: "RER_GBP_ILS",
}

// BOIClient fetches currency-to-ILS exchange rates from the Bank of Israel
// SDMX API. It implements Source.
type BOIClient struct {
	baseURL      string
	lookbackDays int
	httpClient   *http.Client
}

// NewBOIClient creates a BOI rate source. timeout bounds every upstream call;
// the upstream itself responds within ~30s, so that is the sensible ceiling.
func NewBOIClient(baseURL string, timeout time.Duration, lookbackDays int) *BOIClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if lookbackDays <= 0 {
		lookbackDays = DefaultLookbackDays
	}
	return &BOIClient{
		baseURL:      baseURL,
		lookbackDays: lookbackDays,
		httpClient:   &http.Client{Timeout: timeout},
	}
}

// FetchRate returns the most recent observation for currency within the
// lookback window ending at asOf.
func (c *BOIClient) FetchRate(ctx context.Context, currency string, asOf time.Time) (*domain.RateObservation, error) {
	if currency == domain.BaseCurrency {
		return &domain.RateObservation{
			Currency:  currency,
			Date:      truncateToDay(asOf),
			RateToILS: decimal.NewFromInt(1),
		}, nil
	}

	end := truncateToDay(asOf)
	start := end.AddDate(0, 0, -(c.lookbackDays - 1))
	observations, err := c.fetchWindow(ctx, currency, start, end)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]domain.RateObservation, len(observations))
	for _, obs := range observations {
		byDate[obs.Date.Format(dateLayout)] = obs
	}

	// Walk backward from asOf, most recent observation wins.
	for i := 0; i < c.lookbackDays; i++ {
		day := end.AddDate(0, 0, -i).Format(dateLayout)
		if obs, ok := byDate[day]; ok {
			return &obs, nil
		}
	}
	return nil, fmt.Errorf("no %s observation in the last %d days: %w",
		currency, c.lookbackDays, util.ErrRateUnavailable)
}

// FetchSeries returns all observations for currency within [from, to],
// ordered by date ascending.
func (c *BOIClient) FetchSeries(ctx context.Context, currency string, from, to time.Time) ([]domain.RateObservation, error) {
	observations, err := c.fetchWindow(ctx, currency, truncateToDay(from), truncateToDay(to))
	if err != nil {
		return nil, err
	}
	sort.Slice(observations, func(i, j int) bool {
		return observations[i].Date.Before(observations[j].Date)
	})
	return observations, nil
}

func (c *BOIClient) fetchWindow(ctx context.Context, currency string, start, end time.Time) ([]domain.RateObservation, error) {
	series, ok := seriesByCurrency[currency]
	if !ok {
		return nil, fmt.Errorf("no BOI series for currency '%s': %w", currency, util.ErrUnsupportedCurrency)
	}

	query := url.Values{}
	query.Set("startperiod", start.Format(dateLayout))
	query.Set("endperiod", end.Format(dateLayout))
	requestURL := fmt.Sprintf("%s/%s?%s", c.baseURL, series, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build BOI request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch from Bank of Israel API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("Bank of Israel API returned status %d", resp.StatusCode)
	}

	observations, err := parseSDMXObservations(resp.Body, currency)
	if err != nil {
		return nil, fmt.Errorf("failed to parse BOI response for %s: %w", currency, err)
	}
	return observations, nil
}

// parseSDMXObservations scans an SDMX-ML document for Obs elements. The
// elements are nested at varying depths depending on the message flavor, so
// the decoder walks the token stream instead of unmarshalling a fixed
// structure. Observations with missing or non-positive values are skipped.
func parseSDMXObservations(r io.Reader, currency string) ([]domain.RateObservation, error) {
	decoder := xml.NewDecoder(r)
	var observations []domain.RateObservation

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("invalid XML: %w", err)
		}
		start, ok := token.(xml.StartElement)
		if !ok || start.Name.Local != "Obs" {
			continue
		}

		var period, value string
		for _, attr := range start.Attr {
			switch attr.Name.Local {
			case "TIME_PERIOD":
				period = attr.Value
			case "OBS_VALUE":
				value = attr.Value
			}
		}
		if period == "" || value == "" {
			continue
		}

		date, err := time.Parse(dateLayout, period)
		if err != nil {
			continue
		}
		rate, err := decimal.NewFromString(value)
		if err != nil || rate.LessThanOrEqual(decimal.Zero) {
			continue
		}
		observations = append(observations, domain.RateObservation{
			Currency:  currency,
			Date:      date,
			RateToILS: rate,
		})
	}
	return observations, nil
}

func truncateToDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
