package shared

import (
	"strings"
)

const (
	// UnknownCurrency is the currency code used when the vendor reports none.
	UnknownCurrency = "Unknown"
	// narrowSpace separates a price from its currency symbol.
	narrowSpace = "\u202f"
)

// Currency represents an ISO 4217 currency code.
type Currency string

// NewCurrency normalizes the provided currency code. Blank codes map to the unknown
// currency.
func NewCurrency(code string) Currency {
	code = strings.TrimSpace(code)
	if code == "" {
		return UnknownCurrency
	}

	return Currency(code)
}

// Symbol returns the display symbol of the currency.
func (c Currency) Symbol() string {
	switch c {
	case "USD":
		return "$"
	case "EUR":
		return "€"
	case "GBP":
		return "£"
	case "INR":
		return "₹"
	case "JPY", "CNY":
		return "¥"
	case "KRW":
		return "₩"
	case "RUB":
		return "₽"
	case UnknownCurrency:
		return ""
	default:
		return string(c)
	}
}

// SymbolBefore checks whether the currency symbol is placed before the price.
func (c Currency) SymbolBefore() bool {
	switch c {
	case "USD", "GBP", "INR", "JPY", "CNY", "KRW":
		return true
	default:
		return false
	}
}

// Format renders the provided price with the currency symbol.
func (c Currency) Format(price string) string {
	symbol := c.Symbol()
	switch {
	case symbol == "":
		return price
	case c.SymbolBefore():
		return symbol + narrowSpace + price
	default:
		return price + narrowSpace + symbol
	}
}
