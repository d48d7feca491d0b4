package series

import (
	"slices"
	"time"

	"github.com/dnldd/stocks/shared"
	"github.com/guregu/null/v6"
)

// Parse normalizes the provided raw quote into ticker data for the range. Parsing never
// fails: a quote without a usable series yields a single point derived from its metadata.
func Parse(raw *shared.RawQuote, rng shared.Range) *shared.TickerData {
	return parse(raw, rng, time.Now)
}

// parse normalizes the raw quote using the provided clock for the fallback point.
func parse(raw *shared.RawQuote, rng shared.Range, now func() time.Time) *shared.TickerData {
	meta := &raw.Meta
	decimals := shared.DefaultDecimals
	if meta.PriceHint.Valid {
		decimals = int(meta.PriceHint.Int64)
	}

	startPrice, endPrice := closeBounds(raw.Close, meta.RegularMarketPrice)

	points := buildPoints(raw)
	if len(points) == 0 {
		points = []shared.DataPoint{fallbackPoint(meta, now)}
	}

	var change shared.PercentageChange
	switch {
	case rng.IsShort():
		change = shared.NewChangeFromPreviousClose(meta.RegularMarketPrice, meta.ChartPreviousClose)
	default:
		change = shared.NewChangeBetweenTwoPrices(startPrice, endPrice)
	}

	var dayOpen float64
	if len(raw.Open) > 0 {
		dayOpen = raw.Open[0].ValueOrZero()
	}

	return &shared.TickerData{
		Range:            rng,
		PreviousClose:    meta.ChartPreviousClose,
		MarketPrice:      shared.NewAmount(meta.RegularMarketPrice, meta.Currency, decimals),
		MarketDayHigh:    shared.NewAmount(meta.RegularMarketDayHigh, meta.Currency, decimals),
		MarketDayLow:     shared.NewAmount(meta.RegularMarketDayLow, meta.Currency, decimals),
		MarketDayOpen:    shared.NewAmount(dayOpen, meta.Currency, decimals),
		PercentageChange: change,
		Points:           points,
	}
}

// closeBounds returns the first and last non-null closes, or the fallback price when
// the close channel has no values.
func closeBounds(closes []null.Float, fallback float64) (float64, float64) {
	first := slices.IndexFunc(closes, func(v null.Float) bool { return v.Valid })
	if first == -1 {
		return fallback, fallback
	}

	last := first
	for i := len(closes) - 1; i > first; i-- {
		if closes[i].Valid {
			last = i
			break
		}
	}

	return closes[first].Float64, closes[last].Float64
}

// usableLength returns the minimum non-zero length across the series channels. A quote
// without timestamps has no usable series.
func usableLength(raw *shared.RawQuote) int {
	if len(raw.Timestamps) == 0 {
		return 0
	}

	lengths := []int{len(raw.Timestamps), len(raw.Open), len(raw.High), len(raw.Low),
		len(raw.Close), len(raw.Volume)}
	n := 0
	for _, l := range lengths {
		if l == 0 {
			continue
		}
		if n == 0 || l < n {
			n = l
		}
	}

	return n
}

// forwardFill returns the first n values of the channel with holes replaced by the last
// seen value. Leading holes and indices past the channel's end are filled the same way,
// starting from zero.
func forwardFill(channel []null.Float, n int) []float64 {
	filled := make([]float64, n)
	var last float64
	for i := range n {
		if i < len(channel) && channel[i].Valid {
			last = channel[i].Float64
		}
		filled[i] = last
	}

	return filled
}

// buildPoints zips the raw channels into timestamp-ascending data points.
func buildPoints(raw *shared.RawQuote) []shared.DataPoint {
	n := usableLength(raw)
	if n == 0 {
		return nil
	}

	open := forwardFill(raw.Open, n)
	high := forwardFill(raw.High, n)
	low := forwardFill(raw.Low, n)
	closes := forwardFill(raw.Close, n)

	points := make([]shared.DataPoint, n)
	for i := range n {
		var volume int64
		if i < len(raw.Volume) {
			volume = raw.Volume[i].ValueOrZero()
		}

		points[i] = shared.DataPoint{
			Timestamp: time.Unix(raw.Timestamps[i], 0).UTC(),
			Open:      open[i],
			High:      high[i],
			Low:       low[i],
			Close:     closes[i],
			Volume:    volume,
		}
	}

	sorted := slices.IsSortedFunc(points, func(a, b shared.DataPoint) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	if !sorted {
		slices.SortStableFunc(points, func(a, b shared.DataPoint) int {
			return a.Timestamp.Compare(b.Timestamp)
		})
	}

	return points
}

// fallbackPoint synthesizes a single data point from the quote metadata.
func fallbackPoint(meta *shared.QuoteMeta, now func() time.Time) shared.DataPoint {
	timestamp := now().UTC()
	if meta.RegularMarketTime.Valid {
		timestamp = time.Unix(meta.RegularMarketTime.Int64, 0).UTC()
	}

	return shared.DataPoint{
		Timestamp: timestamp,
		Open:      meta.ChartPreviousClose,
		High:      meta.RegularMarketDayHigh,
		Low:       meta.RegularMarketDayLow,
		Close:     meta.RegularMarketPrice,
		Volume:    meta.RegularMarketVolume.ValueOrZero(),
	}
}
