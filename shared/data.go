package shared

import (
	"time"
)

// DataPoint represents a single OHLCV sample of a series.
type DataPoint struct {
	Timestamp time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    int64
}

// TickerData represents a normalized series for a range along with its derived amounts.
type TickerData struct {
	Range            Range
	PreviousClose    float64
	MarketPrice      Amount
	MarketDayHigh    Amount
	MarketDayLow     Amount
	MarketDayOpen    Amount
	PercentageChange PercentageChange
	Points           []DataPoint
}

// IsPositive checks whether the series change is non-negative.
func (d *TickerData) IsPositive() bool {
	return d.PercentageChange.IsPositive()
}

// First returns the earliest data point of the series.
func (d *TickerData) First() *DataPoint {
	if len(d.Points) == 0 {
		return nil
	}

	return &d.Points[0]
}

// Last returns the latest data point of the series.
func (d *TickerData) Last() *DataPoint {
	if len(d.Points) == 0 {
		return nil
	}

	return &d.Points[len(d.Points)-1]
}

// Span returns the duration covered by the series.
func (d *TickerData) Span() time.Duration {
	if len(d.Points) < 2 {
		return 0
	}

	return d.Last().Timestamp.Sub(d.First().Timestamp)
}
