// internal/api/handler/respond.go
package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"currency-wallet/internal/util"
)

// DefaultTimeout is the request deadline applied by the router. Conversion
// requests wait on the upstream rate source, which itself can take up to 30s,
// so the ceiling sits above that.
const DefaultTimeout = 60 * time.Second

// respondWithJSON sends payload as a JSON response with the given status.
func respondWithJSON(w http.ResponseWriter, logger *slog.Logger, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		logger.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// respondWithError maps a service error onto the error taxonomy's status
// codes. Validation failures, missing resources and insufficient funds are
// caller mistakes; conflicts and unavailable rates are retryable; everything
// else is a 500.
func respondWithError(w http.ResponseWriter, logger *slog.Logger, err error) {
	statusCode := http.StatusInternalServerError
	message := "Internal server error"

	switch {
	case util.IsError(err, util.ErrInvalidInput),
		util.IsError(err, util.ErrUnsupportedCurrency),
		util.IsError(err, util.ErrSelfTransfer),
		util.IsError(err, util.ErrDuplicateEntry):
		statusCode = http.StatusBadRequest
		message = err.Error()
	case util.IsError(err, util.ErrNotFound), util.IsError(err, util.ErrUserNotFound):
		statusCode = http.StatusNotFound
		message = err.Error()
	case util.IsError(err, util.ErrInsufficientFunds):
		statusCode = http.StatusPaymentRequired // 402 Payment Required
		message = "Insufficient funds"
	case util.IsError(err, util.ErrConflict):
		statusCode = http.StatusConflict
		message = "Operation conflicted with a concurrent update, retry"
	case util.IsError(err, util.ErrRateUnavailable):
		statusCode = http.StatusServiceUnavailable
		message = "Exchange rate temporarily unavailable"
	default:
		logger.Error("Unhandled service error", "error", err)
	}

	respondWithJSON(w, logger, statusCode, map[string]string{"error": message})
}
