// internal/service/wallet_service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"currency-wallet/internal/domain"
	"currency-wallet/internal/rates"
	"currency-wallet/internal/repository"
	"currency-wallet/internal/util"
	"currency-wallet/pkg/db"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
)

// ConversionResult reports the outcome of a currency conversion.
type ConversionResult struct {
	SourceCurrency  string
	TargetCurrency  string
	Amount          decimal.Decimal
	ConvertedAmount decimal.Decimal
	Rate            decimal.Decimal
	RateDate        time.Time
}

// RegistrationResult reports a freshly registered user together with the
// verification token a mailer would deliver. No mail is sent here.
type RegistrationResult struct {
	User              *domain.User
	VerificationToken string
}

// WalletService defines the interface for wallet-related business logic.
type WalletService interface {
	RegisterUser(ctx context.Context, email, name, password string) (*RegistrationResult, error)
	GetBalances(ctx context.Context, userID int64) (map[string]decimal.Decimal, error)
	Deposit(ctx context.Context, userID int64, amount decimal.Decimal, currency string) (*domain.LedgerEntry, error)
	Transfer(ctx context.Context, senderID int64, recipientEmail string, amount decimal.Decimal, currency string, rate decimal.Decimal) (decimal.Decimal, error)
	Convert(ctx context.Context, userID int64, sourceCurrency, targetCurrency string, amount decimal.Decimal) (*ConversionResult, error)
	ListTransactions(ctx context.Context, userID int64, limit, offset int) ([]domain.LedgerEntry, int64, error)
}

// walletService implements the WalletService interface. Balance checks and
// the ledger appends that depend on them run inside a single SERIALIZABLE
// transaction, so two concurrent spends of the same balance cannot both
// commit; the loser surfaces as util.ErrConflict.
type walletService struct {
	dbBeginner db.DBTxBeginner       // For starting transactions (e.g., *sqlx.DB)
	dbExecutor repository.DBExecutor // For non-transactional reads (e.g., *sqlx.DB)
	userRepo   repository.UserRepository
	ledgerRepo repository.LedgerRepository
	rateSource rates.Source
	beginTx    db.BeginTxFunc
	commitTx   db.CommitTxFunc
	rollbackTx db.RollbackTxFunc
}

// NewWalletService creates a new instance of WalletService.
func NewWalletService(
	dbBeginner db.DBTxBeginner,
	dbExecutor repository.DBExecutor,
	userRepo repository.UserRepository,
	ledgerRepo repository.LedgerRepository,
	rateSource rates.Source,
	beginTx db.BeginTxFunc,
	commitTx db.CommitTxFunc,
	rollbackTx db.RollbackTxFunc,
) WalletService {
	return &walletService{
		dbBeginner: dbBeginner,
		dbExecutor: dbExecutor,
		userRepo:   userRepo,
		ledgerRepo: ledgerRepo,
		rateSource: rateSource,
		beginTx:    beginTx,
		commitTx:   commitTx,
		rollbackTx: rollbackTx,
	}
}

// txError maps a failed transactional step to a service error. Serialization
// failures become ErrConflict so clients know a retry may succeed.
func txError(op string, err error) error {
	if db.IsSerializationFailure(err) {
		return fmt.Errorf("%s: %w", op, util.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// RegisterUser creates a user record with a bcrypt password hash and a
// pending verification token. Delivering the token is the mailer's problem.
func (s *walletService) RegisterUser(ctx context.Context, email, name, password string) (*RegistrationResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || name == "" || password == "" {
		return nil, util.ErrInvalidInput
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("malformed email '%s': %w", email, util.ErrInvalidInput)
	}

	if _, err := s.userRepo.GetUserByEmail(ctx, s.dbExecutor, email); err == nil {
		return nil, fmt.Errorf("email '%s' already registered: %w", email, util.ErrDuplicateEntry)
	} else if !errors.Is(err, util.ErrNotFound) {
		return nil, fmt.Errorf("register: failed to check existing user: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("register: failed to hash password: %w", err)
	}

	token := uuid.NewString()
	user := domain.NewUser(email, name, string(hash), token)
	if err := s.userRepo.CreateUser(ctx, s.dbExecutor, user); err != nil {
		// The existence check above races with concurrent registrations;
		// the unique index on email is authoritative.
		if db.IsUniqueViolation(err) {
			return nil, fmt.Errorf("email '%s' already registered: %w", email, util.ErrDuplicateEntry)
		}
		return nil, fmt.Errorf("register: failed to create user: %w", err)
	}

	return &RegistrationResult{User: user, VerificationToken: token}, nil
}

// GetBalances folds the user's ledger into a per-currency balance map.
// A user with no entries gets an empty map, not an error.
func (s *walletService) GetBalances(ctx context.Context, userID int64) (map[string]decimal.Decimal, error) {
	if _, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, userID); err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, fmt.Errorf("get balances: failed to check user %d: %w", userID, err)
	}

	balances, err := s.ledgerRepo.GetBalances(ctx, s.dbExecutor, userID)
	if err != nil {
		return nil, fmt.Errorf("get balances: %w", err)
	}
	return balances, nil
}

// Deposit appends one unconditional credit entry. Deposits carry no
// idempotency key; a retried submission deposits again.
func (s *walletService) Deposit(ctx context.Context, userID int64, amount decimal.Decimal, currency string) (*domain.LedgerEntry, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, util.ErrInvalidInput
	}
	if currency == "" {
		return nil, util.ErrInvalidInput
	}
	if !domain.IsSupportedCurrency(currency) {
		return nil, fmt.Errorf("currency '%s': %w", currency, util.ErrUnsupportedCurrency)
	}

	txController, err := s.beginTx(ctx, s.dbBeginner, nil)
	if err != nil {
		return nil, fmt.Errorf("deposit: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("deposit: transaction controller does not implement DBExecutor")
	}

	if _, err := s.userRepo.GetUserByID(ctx, txExecutor, userID); err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, fmt.Errorf("deposit: failed to check user %d: %w", userID, err)
	}

	entry := domain.NewLedgerEntry(userID, uuid.New(), domain.EntryTypeDeposit, amount, currency, "Deposit")
	if err := s.ledgerRepo.CreateEntry(ctx, txExecutor, entry); err != nil {
		return nil, txError("deposit: failed to create ledger entry", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, txError("deposit: failed to commit transaction", err)
	}
	return entry, nil
}

// Transfer moves value from the sender to the user addressed by email. The
// sender is debited amount in currency; the recipient is credited
// round(amount*rate, 2) under the same currency label. The rate arrives from
// the caller and is only checked for positivity, not re-derived from the
// rate source.
func (s *walletService) Transfer(ctx context.Context, senderID int64, recipientEmail string, amount decimal.Decimal, currency string, rate decimal.Decimal) (decimal.Decimal, error) {
	if amount.LessThanOrEqual(decimal.Zero) || recipientEmail == "" || currency == "" {
		return decimal.Zero, util.ErrInvalidInput
	}
	if rate.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, fmt.Errorf("non-positive rate: %w", util.ErrInvalidInput)
	}
	if !domain.IsSupportedCurrency(currency) {
		return decimal.Zero, fmt.Errorf("currency '%s': %w", currency, util.ErrUnsupportedCurrency)
	}

	txController, err := s.beginTx(ctx, s.dbBeginner, db.Serializable)
	if err != nil {
		return decimal.Zero, fmt.Errorf("transfer: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return decimal.Zero, fmt.Errorf("transfer: transaction controller does not implement DBExecutor")
	}

	sender, err := s.userRepo.GetUserByID(ctx, txExecutor, senderID)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return decimal.Zero, fmt.Errorf("sender: %w", util.ErrUserNotFound)
		}
		return decimal.Zero, fmt.Errorf("transfer: failed to get sender %d: %w", senderID, err)
	}

	if strings.EqualFold(sender.Email, recipientEmail) {
		return decimal.Zero, util.ErrSelfTransfer
	}

	recipient, err := s.userRepo.GetUserByEmail(ctx, txExecutor, recipientEmail)
	if err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return decimal.Zero, fmt.Errorf("recipient: %w", util.ErrUserNotFound)
		}
		return decimal.Zero, fmt.Errorf("transfer: failed to get recipient '%s': %w", recipientEmail, err)
	}

	balance, err := s.ledgerRepo.GetBalance(ctx, txExecutor, senderID, currency)
	if err != nil {
		return decimal.Zero, fmt.Errorf("transfer: failed to fold sender balance: %w", err)
	}
	if balance.LessThan(amount) {
		return decimal.Zero, util.ErrInsufficientFunds
	}

	converted := amount.Mul(rate).Round(2)
	operationID := uuid.New()

	out := domain.NewLedgerEntry(senderID, operationID, domain.EntryTypeTransferOut,
		amount, currency, fmt.Sprintf("Transfer to %s", recipient.Email))
	if err := s.ledgerRepo.CreateEntry(ctx, txExecutor, out); err != nil {
		return decimal.Zero, txError("transfer: failed to create debit entry", err)
	}

	in := domain.NewLedgerEntry(recipient.ID, operationID, domain.EntryTypeTransferIn,
		converted, currency, fmt.Sprintf("Transfer from user %d", senderID))
	if err := s.ledgerRepo.CreateEntry(ctx, txExecutor, in); err != nil {
		return decimal.Zero, txError("transfer: failed to create credit entry", err)
	}

	if err := s.commitTx(txController); err != nil {
		return decimal.Zero, txError("transfer: failed to commit transaction", err)
	}
	return converted, nil
}

// Convert exchanges amount of sourceCurrency into targetCurrency for the same
// user. The rate is resolved from the rate source before the database
// transaction opens, so a slow or failing upstream never holds locks and
// never mutates the ledger.
func (s *walletService) Convert(ctx context.Context, userID int64, sourceCurrency, targetCurrency string, amount decimal.Decimal) (*ConversionResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) || sourceCurrency == "" || targetCurrency == "" {
		return nil, util.ErrInvalidInput
	}
	if sourceCurrency == targetCurrency {
		return nil, fmt.Errorf("source and target currencies must differ: %w", util.ErrInvalidInput)
	}
	if !domain.IsSupportedCurrency(sourceCurrency) {
		return nil, fmt.Errorf("currency '%s': %w", sourceCurrency, util.ErrUnsupportedCurrency)
	}
	if !domain.IsSupportedCurrency(targetCurrency) {
		return nil, fmt.Errorf("currency '%s': %w", targetCurrency, util.ErrUnsupportedCurrency)
	}

	rate, rateDate, err := rates.ResolvePair(ctx, s.rateSource, sourceCurrency, targetCurrency, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("convert: %w", err)
	}

	// Round half away from zero, matching the 2-decimal minor unit of every
	// supported currency.
	converted := amount.Mul(rate).Round(2)

	txController, err := s.beginTx(ctx, s.dbBeginner, db.Serializable)
	if err != nil {
		return nil, fmt.Errorf("convert: failed to begin transaction: %w", err)
	}
	defer s.rollbackTx(txController)

	txExecutor, ok := txController.(repository.DBExecutor)
	if !ok {
		return nil, fmt.Errorf("convert: transaction controller does not implement DBExecutor")
	}

	if _, err := s.userRepo.GetUserByID(ctx, txExecutor, userID); err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, fmt.Errorf("convert: failed to check user %d: %w", userID, err)
	}

	balance, err := s.ledgerRepo.GetBalance(ctx, txExecutor, userID, sourceCurrency)
	if err != nil {
		return nil, fmt.Errorf("convert: failed to fold source balance: %w", err)
	}
	if balance.LessThan(amount) {
		return nil, util.ErrInsufficientFunds
	}

	operationID := uuid.New()
	out := domain.NewLedgerEntry(userID, operationID, domain.EntryTypeConversionOut,
		amount, sourceCurrency,
		fmt.Sprintf("Converted %s %s to %s %s", amount, sourceCurrency, converted, targetCurrency))
	if err := s.ledgerRepo.CreateEntry(ctx, txExecutor, out); err != nil {
		return nil, txError("convert: failed to create debit entry", err)
	}

	in := domain.NewLedgerEntry(userID, operationID, domain.EntryTypeConversionIn,
		converted, targetCurrency,
		fmt.Sprintf("Converted from %s %s to %s %s", amount, sourceCurrency, converted, targetCurrency))
	if err := s.ledgerRepo.CreateEntry(ctx, txExecutor, in); err != nil {
		return nil, txError("convert: failed to create credit entry", err)
	}

	if err := s.commitTx(txController); err != nil {
		return nil, txError("convert: failed to commit transaction", err)
	}

	return &ConversionResult{
		SourceCurrency:  sourceCurrency,
		TargetCurrency:  targetCurrency,
		Amount:          amount,
		ConvertedAmount: converted,
		Rate:            rate,
		RateDate:        rateDate,
	}, nil
}

// ListTransactions retrieves a paginated slice of the user's ledger entries,
// newest first, with the total entry count.
func (s *walletService) ListTransactions(ctx context.Context, userID int64, limit, offset int) ([]domain.LedgerEntry, int64, error) {
	if _, err := s.userRepo.GetUserByID(ctx, s.dbExecutor, userID); err != nil {
		if errors.Is(err, util.ErrNotFound) {
			return nil, 0, util.ErrUserNotFound
		}
		return nil, 0, fmt.Errorf("list transactions: failed to check user %d: %w", userID, err)
	}

	entries, totalCount, err := s.ledgerRepo.ListByUser(ctx, s.dbExecutor, userID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list transactions: %w", err)
	}
	return entries, totalCount, nil
}
