// internal/api/handler/rates.go
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"currency-wallet/internal/domain"
	"currency-wallet/internal/service"
	"currency-wallet/internal/util"
)

// RatesHandler handles HTTP requests for exchange rate data.
type RatesHandler struct {
	service service.RateService
	logger  *slog.Logger
}

// NewRatesHandler creates a new RatesHandler.
func NewRatesHandler(svc service.RateService, logger *slog.Logger) *RatesHandler {
	return &RatesHandler{
		service: svc,
		logger:  logger,
	}
}

// GetLatestRates returns the latest available rate per supported currency.
// GET /rates
func (h *RatesHandler) GetLatestRates(w http.ResponseWriter, r *http.Request) {
	rates, err := h.service.LatestRates(r.Context())
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"rates": rates,
		"base":  domain.BaseCurrency,
	})
}

// GetHistoricalRates returns the stored rate series for one currency.
// GET /rates/{currency}/history?start_date=YYYY-MM-DD&end_date=YYYY-MM-DD
func (h *RatesHandler) GetHistoricalRates(w http.ResponseWriter, r *http.Request) {
	currency := chi.URLParam(r, "currency")
	startStr := r.URL.Query().Get("start_date")
	endStr := r.URL.Query().Get("end_date")
	if currency == "" || startStr == "" || endStr == "" {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	from, err := time.Parse("2006-01-02", startStr)
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	to, err := time.Parse("2006-01-02", endStr)
	if err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	observations, err := h.service.HistoricalRates(r.Context(), currency, from, to)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"currency": currency,
		"rates":    observations,
	})
}
