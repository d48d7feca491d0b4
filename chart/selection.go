package chart

import (
	"math"

	"github.com/dnldd/stocks/shared"
)

// Selection represents a dragged range of points.
type Selection struct {
	MinX     float64
	MaxX     float64
	MinIndex int
	MaxIndex int
	// Positive is set when the close at MinIndex does not exceed the close at MaxIndex.
	Positive bool
}

// NewSelection resolves the range selected by dragging from startX to currentX on a
// chart of the provided width. Positions are clamped to the interactive area, which
// starts at half the line width. It reports false when the series cannot be selected.
func NewSelection(data *shared.TickerData, width float64, lineWidth float64, startX float64, currentX float64) (Selection, bool) {
	if data == nil || len(data.Points) < 2 {
		return Selection{}, false
	}

	pointWidth := PointWidth(data, width)
	if pointWidth <= 0 {
		return Selection{}, false
	}

	minLimit := lineWidth / 2
	maxLimit := math.Max(minLimit, InteractiveWidth(data, width))
	start := math.Max(minLimit, math.Min(startX, maxLimit))
	current := math.Max(minLimit, math.Min(currentX, maxLimit))

	sel := Selection{
		MinX: math.Min(start, current),
		MaxX: math.Max(start, current),
	}
	sel.MinIndex = indexFor(sel.MinX, pointWidth, len(data.Points))
	sel.MaxIndex = indexFor(sel.MaxX, pointWidth, len(data.Points))
	sel.Positive = data.Points[sel.MinIndex].Close <= data.Points[sel.MaxIndex].Close

	return sel, true
}

// Points returns the first and last selected points.
func (s Selection) Points(data *shared.TickerData) (*shared.DataPoint, *shared.DataPoint) {
	return &data.Points[s.MinIndex], &data.Points[s.MaxIndex]
}

// Change returns the percentage change across the selection.
func (s Selection) Change(data *shared.TickerData) shared.PercentageChange {
	first, last := s.Points(data)
	return shared.NewChangeBetweenTwoPrices(first.Close, last.Close)
}
