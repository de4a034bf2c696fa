// internal/api/router.go
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"currency-wallet/internal/api/handler"
)

// NewRouter sets up and returns a new HTTP router.
func NewRouter(walletHandler *handler.WalletHandler, ratesHandler *handler.RatesHandler, logger *slog.Logger) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(handler.DefaultTimeout))
	r.Use(metricsMiddleware)

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	// User and ledger routes
	r.Post("/users", walletHandler.Register)
	r.Route("/users/{userID}", func(r chi.Router) {
		r.Get("/balances", walletHandler.GetBalances)
		r.Post("/deposit", walletHandler.Deposit)
		r.Post("/convert", walletHandler.Convert)
		r.Get("/transactions", walletHandler.GetTransactionHistory)
	})

	// Transfer is a separate top-level endpoint as it involves two users
	r.Post("/transfers", walletHandler.Transfer)

	// Exchange rate routes
	r.Route("/rates", func(r chi.Router) {
		r.Get("/", ratesHandler.GetLatestRates)
		r.Get("/{currency}/history", ratesHandler.GetHistoricalRates)
	})

	return r
}
