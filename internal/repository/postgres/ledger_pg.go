// internal/repository/postgres/ledger_pg.go
package postgres

import (
	"context"
	"fmt"

	"currency-wallet/internal/domain"
	"currency-wallet/internal/repository"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

// LedgerRepository implements repository.LedgerRepository for PostgreSQL.
// Balances are never stored: every balance read folds the signed entries in
// SQL, with the sign derived from the entry type.
type LedgerRepository struct {
}

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(db *sqlx.DB) repository.LedgerRepository {
	return &LedgerRepository{}
}

// signedAmountExpr maps the direction-encoding entry type to a signed amount.
// Amounts are stored as positive magnitudes; this is the only place SQL needs
// to know the sign table.
const signedAmountExpr = `CASE WHEN type IN ('deposit', 'transfer_in', 'conversion_in')
                               THEN amount ELSE -amount END`

// CreateEntry appends a new ledger entry using the provided DBExecutor.
func (r *LedgerRepository) CreateEntry(ctx context.Context, q repository.DBExecutor, entry *domain.LedgerEntry) error {
	query := `INSERT INTO ledger_entries (user_id, operation_id, type, amount, currency, description, created_at)
              VALUES ($1, $2, $3, $4, $5, $6, $7) RETURNING id`
	err := q.QueryRowContext(ctx, query,
		entry.UserID,
		entry.OperationID,
		entry.Type,
		entry.Amount,
		entry.Currency,
		entry.Description,
		entry.CreatedAt,
	).Scan(&entry.ID)
	if err != nil {
		return fmt.Errorf("failed to create ledger entry: %w", err)
	}
	return nil
}

// GetBalances folds all entries for a user into a per-currency balance map.
func (r *LedgerRepository) GetBalances(ctx context.Context, q repository.DBExecutor, userID int64) (map[string]decimal.Decimal, error) {
	rows := []struct {
		Currency string          `db:"currency"`
		Balance  decimal.Decimal `db:"balance"`
	}{}
	query := `SELECT currency, SUM(` + signedAmountExpr + `) AS balance
              FROM ledger_entries
              WHERE user_id = $1
              GROUP BY currency`
	if err := q.SelectContext(ctx, &rows, query, userID); err != nil {
		return nil, fmt.Errorf("failed to fold balances for user %d: %w", userID, err)
	}

	balances := make(map[string]decimal.Decimal, len(rows))
	for _, row := range rows {
		balances[row.Currency] = row.Balance
	}
	return balances, nil
}

// GetBalance folds all entries for one (user, currency) pair.
func (r *LedgerRepository) GetBalance(ctx context.Context, q repository.DBExecutor, userID int64, currency string) (decimal.Decimal, error) {
	var balance decimal.Decimal
	query := `SELECT COALESCE(SUM(` + signedAmountExpr + `), 0) AS balance
              FROM ledger_entries
              WHERE user_id = $1 AND currency = $2`
	if err := q.GetContext(ctx, &balance, query, userID, currency); err != nil {
		return decimal.Zero, fmt.Errorf("failed to fold %s balance for user %d: %w", currency, userID, err)
	}
	return balance, nil
}

// ListByUser retrieves a paginated list of entries for a user, newest first.
// It performs two queries: one for the data and one for the total count.
func (r *LedgerRepository) ListByUser(ctx context.Context, q repository.DBExecutor, userID int64, limit, offset int) ([]domain.LedgerEntry, int64, error) {
	entries := []domain.LedgerEntry{}
	query := `SELECT id, user_id, operation_id, type, amount, currency, description, created_at
              FROM ledger_entries
              WHERE user_id = $1
              ORDER BY created_at DESC, id DESC
              LIMIT $2 OFFSET $3`
	if err := q.SelectContext(ctx, &entries, query, userID, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to fetch ledger entries for user %d: %w", userID, err)
	}

	var totalCount int64
	countQuery := `SELECT COUNT(*) FROM ledger_entries WHERE user_id = $1`
	if err := q.GetContext(ctx, &totalCount, countQuery, userID); err != nil {
		return nil, 0, fmt.Errorf("failed to count ledger entries for user %d: %w", userID, err)
	}

	return entries, totalCount, nil
}
