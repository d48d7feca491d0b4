package shared

import (
	"fmt"
)

// ChangeKind represents the variant of a percentage change.
type ChangeKind int

const (
	BetweenTwoPrices ChangeKind = iota
	FromPreviousClose
)

// String stringifies the provided change kind.
func (k ChangeKind) String() string {
	switch k {
	case BetweenTwoPrices:
		return "between two prices"
	case FromPreviousClose:
		return "from previous close"
	default:
		return "unknown"
	}
}

// PercentageChange represents a relative price movement from Start to End.
type PercentageChange struct {
	Kind  ChangeKind
	Start float64
	End   float64
}

// NewChangeBetweenTwoPrices initializes a percentage change between two observed prices.
func NewChangeBetweenTwoPrices(start float64, end float64) PercentageChange {
	return PercentageChange{
		Kind:  BetweenTwoPrices,
		Start: start,
		End:   end,
	}
}

// NewChangeFromPreviousClose initializes a percentage change of the current price
// relative to the previous close.
func NewChangeFromPreviousClose(current float64, previousClose float64) PercentageChange {
	return PercentageChange{
		Kind:  FromPreviousClose,
		Start: previousClose,
		End:   current,
	}
}

// Percentage returns the change in percent. A zero start yields +Inf or NaN.
func (c *PercentageChange) Percentage() float64 {
	return (c.End - c.Start) / c.Start * 100
}

// IsPositive checks whether the change is non-negative.
func (c *PercentageChange) IsPositive() bool {
	return c.Percentage() >= 0
}

// String renders the change with two decimals.
func (c PercentageChange) String() string {
	return fmt.Sprintf("%.2f %%", c.Percentage())
}
