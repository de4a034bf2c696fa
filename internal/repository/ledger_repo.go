// internal/repository/ledger_repo.go
package repository

import (
	"context"

	"currency-wallet/internal/domain"

	"github.com/shopspring/decimal"
)

// LedgerRepository defines the interface for ledger entry data operations.
// The ledger is append-only: entries are created, never updated or deleted.
type LedgerRepository interface {
	// CreateEntry appends a new ledger entry using the provided DBExecutor.
	CreateEntry(ctx context.Context, q DBExecutor, entry *domain.LedgerEntry) error
	// GetBalances folds all entries for a user into a per-currency balance
	// map. A currency is present iff at least one entry exists for it.
	GetBalances(ctx context.Context, q DBExecutor, userID int64) (map[string]decimal.Decimal, error)
	// GetBalance folds all entries for one (user, currency) pair. Returns
	// zero, not an error, when no entries exist.
	GetBalance(ctx context.Context, q DBExecutor, userID int64, currency string) (decimal.Decimal, error)
	// ListByUser retrieves the user's entries newest first, paginated,
	// along with the total entry count.
	ListByUser(ctx context.Context, q DBExecutor, userID int64, limit, offset int) ([]domain.LedgerEntry, int64, error)
}
