package shared

import (
	"github.com/shopspring/decimal"
)

const (
	// DefaultDecimals is the number of decimals used when the vendor provides no price hint.
	DefaultDecimals = 2
)

// Amount represents a price with its currency and display precision.
type Amount struct {
	Price    float64
	Currency Currency
	Decimals int
}

// NewAmount initializes a new amount.
func NewAmount(price float64, code string, decimals int) Amount {
	return Amount{
		Price:    price,
		Currency: NewCurrency(code),
		Decimals: decimals,
	}
}

// FormatPrice renders the provided price using the amount's precision, optionally
// including the currency symbol.
func (a *Amount) FormatPrice(price float64, includeCurrency bool) string {
	decimals := a.Decimals
	if decimals < 0 {
		decimals = 0
	}

	str := decimal.NewFromFloat(price).StringFixed(int32(decimals))
	if !includeCurrency {
		return str
	}

	return a.Currency.Format(str)
}

// String renders the amount with its currency symbol.
func (a Amount) String() string {
	return a.FormatPrice(a.Price, true)
}
