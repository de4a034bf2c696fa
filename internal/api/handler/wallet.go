// internal/api/handler/wallet.go
package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"currency-wallet/internal/api/types"
	"currency-wallet/internal/domain"
	"currency-wallet/internal/service"
	"currency-wallet/internal/util"
)

// WalletHandler handles HTTP requests for the wallet ledger operations.
type WalletHandler struct {
	service service.WalletService
	logger  *slog.Logger
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(svc service.WalletService, logger *slog.Logger) *WalletHandler {
	return &WalletHandler{
		service: svc,
		logger:  logger,
	}
}

func userIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		return 0, util.ErrInvalidInput
	}
	return id, nil
}

// RegisterRequest represents the request body for user registration.
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Register handles user registration.
// POST /users
func (h *WalletHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	result, err := h.service.RegisterUser(r.Context(), req.Email, req.Name, req.Password)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusCreated, map[string]interface{}{
		"user_id":            result.User.ID,
		"email":              result.User.Email,
		"verification_token": result.VerificationToken,
	})
}

// GetBalances handles the balances query.
// GET /users/{userID}/balances
func (h *WalletHandler) GetBalances(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	balances, err := h.service.GetBalances(r.Context(), userID)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"balances": balances,
	})
}

// DepositRequest represents the request body for deposit.
type DepositRequest struct {
	Amount   decimal.Decimal `json:"amount"`
	Currency string          `json:"currency"`
}

// Deposit handles the deposit money request.
// POST /users/{userID}/deposit
func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	var req DepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	if req.Amount.IsNegative() || req.Amount.IsZero() || req.Currency == "" {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	entry, err := h.service.Deposit(r.Context(), userID, req.Amount, req.Currency)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"success":  true,
		"entry_id": entry.ID,
	})
}

// TransferRequest represents the request body for transfer.
type TransferRequest struct {
	SenderUserID   int64           `json:"sender_user_id"`
	RecipientEmail string          `json:"recipient_email"`
	Amount         decimal.Decimal `json:"amount"`
	Currency       string          `json:"currency"`
	Rate           decimal.Decimal `json:"rate"`
}

// Transfer handles moving money between users.
// POST /transfers
func (h *WalletHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	if req.SenderUserID == 0 || req.RecipientEmail == "" || req.Currency == "" {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	if req.Amount.IsNegative() || req.Amount.IsZero() {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	converted, err := h.service.Transfer(r.Context(), req.SenderUserID, req.RecipientEmail, req.Amount, req.Currency, req.Rate)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"success":          true,
		"converted_amount": converted,
	})
}

// ConvertRequest represents the request body for currency conversion.
type ConvertRequest struct {
	SourceCurrency string          `json:"source_currency"`
	TargetCurrency string          `json:"target_currency"`
	Amount         decimal.Decimal `json:"amount"`
}

// Convert handles converting between currencies within one user's wallet.
// POST /users/{userID}/convert
func (h *WalletHandler) Convert(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	var req ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	if req.SourceCurrency == "" || req.TargetCurrency == "" {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}
	if req.Amount.IsNegative() || req.Amount.IsZero() {
		respondWithError(w, h.logger, util.ErrInvalidInput)
		return
	}

	result, err := h.service.Convert(r.Context(), userID, req.SourceCurrency, req.TargetCurrency, req.Amount)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	rateDate := result.RateDate.Format("2006-01-02")
	respondWithJSON(w, h.logger, http.StatusOK, map[string]interface{}{
		"success":          true,
		"source_currency":  result.SourceCurrency,
		"target_currency":  result.TargetCurrency,
		"amount":           result.Amount,
		"converted_amount": result.ConvertedAmount,
		"rate":             result.Rate,
		"rate_date":        rateDate,
		"summary": fmt.Sprintf("You are converting %s %s to %s %s using the exchange rate from %s: 1 %s = %s %s",
			result.Amount, result.SourceCurrency, result.ConvertedAmount, result.TargetCurrency,
			rateDate, result.SourceCurrency, result.Rate, result.TargetCurrency),
	})
}

// GetTransactionHistory handles the transaction history request.
// GET /users/{userID}/transactions
func (h *WalletHandler) GetTransactionHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := userIDParam(r)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	limit, err := strconv.Atoi(r.URL.Query().Get("limit"))
	if err != nil || limit <= 0 {
		limit = 50
	}
	offset, err := strconv.Atoi(r.URL.Query().Get("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}

	entries, totalCount, err := h.service.ListTransactions(r.Context(), userID, limit, offset)
	if err != nil {
		respondWithError(w, h.logger, err)
		return
	}

	respondWithJSON(w, h.logger, http.StatusOK, types.PaginatedResponse[domain.LedgerEntry]{
		Data:       entries,
		Limit:      limit,
		Offset:     offset,
		TotalCount: totalCount,
	})
}
