// internal/domain/currency.go
package domain

// BaseCurrency is the wallet's base unit. All exchange rates are quoted
// against it (1 unit of foreign currency = rate ILS).
const BaseCurrency = "ILS"

// Supported currency codes.
const (
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
	CurrencyGBP = "GBP"
	CurrencyILS = BaseCurrency
)

// SupportedCurrencies lists every currency the wallet accepts, base included.
var SupportedCurrencies = []string{CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyILS}

// ForeignCurrencies lists the currencies that have an exchange rate against
// the base unit.
var ForeignCurrencies = []string{CurrencyUSD, CurrencyEUR, CurrencyGBP}

// IsSupportedCurrency reports whether code is in the supported set.
func IsSupportedCurrency(code string) bool {
	for _, c := range SupportedCurrencies {
		if c == code {
			return true
		}
	}
	return false
}
