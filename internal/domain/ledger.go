// internal/domain/ledger.go
package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal" // For precise monetary calculations
)

// EntryType defines the kind of ledger entry. The type, not the sign of the
// amount, encodes the direction of the monetary event: amounts are always
// stored as positive magnitudes.
type EntryType string

const (
	EntryTypeDeposit       EntryType = "deposit"        // external funds added
	EntryTypeTransferIn    EntryType = "transfer_in"    // received from another user
	EntryTypeTransferOut   EntryType = "transfer_out"   // sent to another user
	EntryTypeConversionIn  EntryType = "conversion_in"  // currency produced by a conversion
	EntryTypeConversionOut EntryType = "conversion_out" // currency consumed by a conversion
)

// IsValid reports whether t is one of the known entry types.
func (t EntryType) IsValid() bool {
	switch t {
	case EntryTypeDeposit, EntryTypeTransferIn, EntryTypeTransferOut,
		EntryTypeConversionIn, EntryTypeConversionOut:
		return true
	}
	return false
}

// IsCredit reports whether entries of this type increase the balance.
func (t EntryType) IsCredit() bool {
	switch t {
	case EntryTypeDeposit, EntryTypeTransferIn, EntryTypeConversionIn:
		return true
	}
	return false
}

// Signed returns amount with the sign this entry type contributes to a
// balance fold.
func (t EntryType) Signed(amount decimal.Decimal) decimal.Decimal {
	if t.IsCredit() {
		return amount
	}
	return amount.Neg()
}

// LedgerEntry represents one immutable signed monetary event. Entries are
// created exactly once, never updated or deleted; a balance is always a fold
// over all entries for a (user, currency) pair.
type LedgerEntry struct {
	ID          int64           `db:"id" json:"id"`                     // Primary key, BIGSERIAL in DB
	UserID      int64           `db:"user_id" json:"user_id"`           // Owning user
	OperationID uuid.UUID       `db:"operation_id" json:"operation_id"` // Groups the two entries of one transfer/conversion
	Type        EntryType       `db:"type" json:"type"`                 // Direction-encoding entry type
	Amount      decimal.Decimal `db:"amount" json:"amount"`             // Positive magnitude, NUMERIC(20, 2) in DB
	Currency    string          `db:"currency" json:"currency"`         // ISO-like code: USD/EUR/GBP/ILS
	Description string          `db:"description" json:"description"`   // Free text
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`     // Timestamp of record creation
}

// NewLedgerEntry creates a new LedgerEntry instance.
func NewLedgerEntry(userID int64, operationID uuid.UUID, entryType EntryType, amount decimal.Decimal, currency, description string) *LedgerEntry {
	return &LedgerEntry{
		UserID:      userID,
		OperationID: operationID,
		Type:        entryType,
		Amount:      amount,
		Currency:    currency,
		Description: description,
		CreatedAt:   time.Now().UTC(),
	}
}

// FoldBalances computes per-currency balances from a sequence of entries by
// summing signed amounts. The database does the same fold in SQL; this is
// the reference accumulator.
func FoldBalances(entries []LedgerEntry) map[string]decimal.Decimal {
	balances := make(map[string]decimal.Decimal)
	for _, e := range entries {
		balances[e.Currency] = balances[e.Currency].Add(e.Type.Signed(e.Amount))
	}
	return balances
}
