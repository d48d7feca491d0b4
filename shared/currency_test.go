package shared

import (
	"testing"

	"github.com/peterldowns/testy/assert"
)

func TestCurrencySymbol(t *testing.T) {
	tests := []struct {
		name     string
		currency Currency
		symbol   string
		before   bool
	}{
		{"dollar", "USD", "$", true},
		{"euro", "EUR", "€", false},
		{"pound", "GBP", "£", true},
		{"rupee", "INR", "₹", true},
		{"yen", "JPY", "¥", true},
		{"yuan", "CNY", "¥", true},
		{"won", "KRW", "₩", true},
		{"ruble", "RUB", "₽", false},
		{"unknown", UnknownCurrency, "", false},
		{"unlisted", "CHF", "CHF", false},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.currency.Symbol(), test.symbol)
			assert.Equal(t, test.currency.SymbolBefore(), test.before)
		})
	}
}

func TestNewCurrency(t *testing.T) {
	// Ensure blank codes normalize to the unknown currency.
	assert.Equal(t, NewCurrency(""), Currency(UnknownCurrency))
	assert.Equal(t, NewCurrency("   "), Currency(UnknownCurrency))

	// Ensure codes are trimmed.
	assert.Equal(t, NewCurrency(" USD "), Currency("USD"))
}

func TestAmountFormat(t *testing.T) {
	tests := []struct {
		name   string
		amount Amount
		want   string
	}{
		{"symbol before", NewAmount(12.5, "USD", 2), "$\u202f12.50"},
		{"symbol after", NewAmount(12.5, "EUR", 2), "12.50\u202f€"},
		{"unlisted code", NewAmount(12.5, "XYZ", 2), "12.50\u202fXYZ"},
		{"unknown currency", NewAmount(12.5, "", 2), "12.50"},
		{"three decimals", NewAmount(12.3456, "", 3), "12.346"},
		{"no decimals", NewAmount(99.4, "", 0), "99"},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			assert.Equal(t, test.amount.String(), test.want)
		})
	}

	// Ensure the currency can be excluded.
	amt := NewAmount(1, "USD", 2)
	assert.Equal(t, amt.FormatPrice(3.14159, false), "3.14")
}
