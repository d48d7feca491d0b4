package chart

import (
	"math"
	"time"

	"github.com/dnldd/stocks/shared"
	"github.com/shopspring/decimal"
)

const (
	// compressedPointThreshold is the point count below which a day chart may be drawn
	// on a compressed scale.
	compressedPointThreshold = 120
	// compressedVirtualSpan is the session span a compressed day chart is scaled against.
	compressedVirtualSpan = time.Hour * 6
	// minValueSpan is the smallest span of a value range.
	minValueSpan = 1e-7
	// ScaleXCount is the default number of time markers on the x axis.
	ScaleXCount = 5
	// ScaleYCount is the default number of value ticks on the y axis.
	ScaleYCount = 4
)

// UseCompressedDayScale checks whether the provided data is a partial day drawn on a
// compressed scale.
func UseCompressedDayScale(data *shared.TickerData) bool {
	return data != nil && data.Range == shared.Day && len(data.Points) < compressedPointThreshold
}

// PointWidth returns the horizontal pixel distance between adjacent points for the
// provided chart width. Series with fewer than two points have no point width.
func PointWidth(data *shared.TickerData, width float64) float64 {
	if data == nil || len(data.Points) < 2 || width <= 0 {
		return 0
	}

	pointWidth := width / float64(len(data.Points)-1)
	if !UseCompressedDayScale(data) {
		return pointWidth
	}

	span := data.Span()
	if span <= 0 || span >= compressedVirtualSpan {
		return pointWidth
	}

	return pointWidth * (span.Seconds() / compressedVirtualSpan.Seconds())
}

// DataWidth returns the pixel width occupied by the plotted series.
func DataWidth(data *shared.TickerData, width float64) float64 {
	pointWidth := PointWidth(data, width)
	if pointWidth <= 0 {
		return 0
	}

	return pointWidth * float64(len(data.Points)-1)
}

// InteractiveWidth returns the pixel width that responds to dragging.
func InteractiveWidth(data *shared.TickerData, width float64) float64 {
	if UseCompressedDayScale(data) {
		return math.Min(width, DataWidth(data, width))
	}

	return width
}

// HoverWidth returns the pixel width that responds to hovering.
func HoverWidth(data *shared.TickerData, width float64) float64 {
	interactive := InteractiveWidth(data, width)
	if interactive > 0 {
		return interactive
	}

	return width
}

// PointX returns the x position of the point at the provided index.
func PointX(data *shared.TickerData, width float64, index int) float64 {
	return float64(index) * PointWidth(data, width)
}

// indexFor maps the provided x position to a point index clamped to the series.
func indexFor(x float64, pointWidth float64, n int) int {
	idx := int(math.RoundToEven(x / pointWidth))
	return max(0, min(idx, n-1))
}

// IndexAt returns the index of the point at the provided x position. It reports false
// when no point can be resolved, in which case the index is zero.
func IndexAt(data *shared.TickerData, width float64, x float64) (int, bool) {
	if data == nil || len(data.Points) == 0 {
		return 0, false
	}

	if len(data.Points) == 1 {
		return 0, true
	}

	pointWidth := PointWidth(data, width)
	if pointWidth <= 0 {
		return 0, false
	}

	return indexFor(x, pointWidth, len(data.Points)), true
}

// PointAt returns the point at the provided x position.
func PointAt(data *shared.TickerData, width float64, x float64) *shared.DataPoint {
	idx, ok := IndexAt(data, width, x)
	if !ok {
		return nil
	}

	return &data.Points[idx]
}

// ValueRange represents the closing price bounds of a chart.
type ValueRange struct {
	Min float64
	Max float64
}

// NewValueRange returns the value range of the provided data, optionally including
// the previous close.
func NewValueRange(data *shared.TickerData, showPreviousClose bool) ValueRange {
	if data == nil {
		return ValueRange{}
	}

	var r ValueRange
	switch {
	case len(data.Points) > 0:
		r = ValueRange{Min: data.Points[0].Close, Max: data.Points[0].Close}
		for _, p := range data.Points[1:] {
			r.Min = math.Min(r.Min, p.Close)
			r.Max = math.Max(r.Max, p.Close)
		}
		if showPreviousClose {
			r.Min = math.Min(r.Min, data.PreviousClose)
			r.Max = math.Max(r.Max, data.PreviousClose)
		}
	case showPreviousClose:
		r = ValueRange{Min: data.PreviousClose, Max: data.PreviousClose}
	}

	return r
}

// Span returns the extent of the range, never smaller than a minimum epsilon.
func (r ValueRange) Span() float64 {
	return math.Max(minValueSpan, r.Max-r.Min)
}

// Y maps the provided value to a y position on a chart of the provided height.
func (r ValueRange) Y(value float64, height float64) float64 {
	return height - (value-r.Min)/r.Span()*height
}

// Tick represents a labelled value on the y axis.
type Tick struct {
	Y     float64
	Value float64
	Label string
}

// formatTickValue renders the provided tick value. Values below one keep four
// decimals, larger values are rounded to integers.
func formatTickValue(value float64) string {
	d := decimal.NewFromFloat(value)
	if value < 1 {
		return d.Round(4).String()
	}

	return d.StringFixed(0)
}

// YTicks returns count evenly spaced value ticks from the top to the bottom of a chart
// of the provided height.
func YTicks(r ValueRange, height float64, count int) []Tick {
	if count < 2 || height <= 0 {
		return nil
	}

	steps := float64(count - 1)
	ticks := make([]Tick, 0, count)
	for i := range count {
		value := r.Max + float64(i)*(r.Min-r.Max)/steps
		ticks = append(ticks, Tick{
			Y:     float64(i) * height / steps,
			Value: value,
			Label: formatTickValue(value),
		})
	}

	return ticks
}
