// internal/domain/ledger_test.go
package domain

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestEntryTypeSigned(t *testing.T) {
	amount := dec("42.50")

	credits := []EntryType{EntryTypeDeposit, EntryTypeTransferIn, EntryTypeConversionIn}
	for _, et := range credits {
		assert.True(t, et.IsCredit(), "%s should be a credit", et)
		assert.True(t, et.Signed(amount).Equal(amount), "%s should keep the amount positive", et)
	}

	debits := []EntryType{EntryTypeTransferOut, EntryTypeConversionOut}
	for _, et := range debits {
		assert.False(t, et.IsCredit(), "%s should be a debit", et)
		assert.True(t, et.Signed(amount).Equal(amount.Neg()), "%s should negate the amount", et)
	}
}

func TestEntryTypeIsValid(t *testing.T) {
	for _, et := range []EntryType{EntryTypeDeposit, EntryTypeTransferIn, EntryTypeTransferOut, EntryTypeConversionIn, EntryTypeConversionOut} {
		assert.True(t, et.IsValid())
	}
	assert.False(t, EntryType("withdrawal").IsValid())
	assert.False(t, EntryType("").IsValid())
}

func TestFoldBalances(t *testing.T) {
	opID := uuid.New()
	tests := []struct {
		name    string
		entries []LedgerEntry
		want    map[string]string
	}{
		{
			name:    "no entries yields empty map",
			entries: nil,
			want:    map[string]string{},
		},
		{
			name: "single deposit",
			entries: []LedgerEntry{
				{UserID: 1, OperationID: opID, Type: EntryTypeDeposit, Amount: dec("100"), Currency: CurrencyUSD},
			},
			want: map[string]string{CurrencyUSD: "100"},
		},
		{
			name: "conversion pair splits across currencies",
			entries: []LedgerEntry{
				{Type: EntryTypeDeposit, Amount: dec("100"), Currency: CurrencyUSD},
				{Type: EntryTypeConversionOut, Amount: dec("50"), Currency: CurrencyUSD},
				{Type: EntryTypeConversionIn, Amount: dec("185.00"), Currency: CurrencyILS},
			},
			want: map[string]string{CurrencyUSD: "50", CurrencyILS: "185.00"},
		},
		{
			name: "mixed history nets out per currency",
			entries: []LedgerEntry{
				{Type: EntryTypeDeposit, Amount: dec("10.25"), Currency: CurrencyEUR},
				{Type: EntryTypeTransferIn, Amount: dec("4.75"), Currency: CurrencyEUR},
				{Type: EntryTypeTransferOut, Amount: dec("15.00"), Currency: CurrencyEUR},
				{Type: EntryTypeDeposit, Amount: dec("1"), Currency: CurrencyGBP},
			},
			want: map[string]string{CurrencyEUR: "0", CurrencyGBP: "1"},
		},
		{
			name: "overdraw shows as negative balance in the fold",
			entries: []LedgerEntry{
				{Type: EntryTypeTransferOut, Amount: dec("3"), Currency: CurrencyUSD},
			},
			want: map[string]string{CurrencyUSD: "-3"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FoldBalances(tt.entries)
			assert.Len(t, got, len(tt.want))
			for currency, want := range tt.want {
				assert.True(t, got[currency].Equal(dec(want)),
					"%s: want %s, got %s", currency, want, got[currency])
			}
		})
	}
}

func TestFoldBalancesMatchesReferenceAccumulator(t *testing.T) {
	// Deterministic pseudo-random entry sequence checked against a
	// straightforward signed accumulator.
	types := []EntryType{EntryTypeDeposit, EntryTypeTransferIn, EntryTypeTransferOut, EntryTypeConversionIn, EntryTypeConversionOut}
	currencies := []string{CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyILS}

	var entries []LedgerEntry
	reference := map[string]decimal.Decimal{}
	for i := 0; i < 200; i++ {
		et := types[(i*7)%len(types)]
		currency := currencies[(i*3)%len(currencies)]
		amount := decimal.NewFromInt(int64(i%17 + 1)).Div(decimal.NewFromInt(4))
		entries = append(entries, LedgerEntry{Type: et, Amount: amount, Currency: currency})

		if et.IsCredit() {
			reference[currency] = reference[currency].Add(amount)
		} else {
			reference[currency] = reference[currency].Sub(amount)
		}
	}

	got := FoldBalances(entries)
	assert.Len(t, got, len(reference))
	for currency, want := range reference {
		assert.True(t, got[currency].Equal(want), "%s: want %s, got %s", currency, want, got[currency])
	}
}

func TestIsSupportedCurrency(t *testing.T) {
	for _, c := range SupportedCurrencies {
		assert.True(t, IsSupportedCurrency(c))
	}
	assert.False(t, IsSupportedCurrency("JPY"))
	assert.False(t, IsSupportedCurrency("usd"))
	assert.False(t, IsSupportedCurrency(""))
}
