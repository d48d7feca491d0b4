package series

import (
	"math"
	"testing"
	"time"

	"github.com/dnldd/stocks/shared"
	"github.com/google/go-cmp/cmp"
	"github.com/guregu/null/v6"
	"github.com/peterldowns/testy/assert"
)

var fixedNow = time.Date(2025, time.April, 2, 15, 0, 0, 0, time.UTC)

func clock() time.Time { return fixedNow }

func floats(values ...any) []null.Float {
	out := make([]null.Float, len(values))
	for i, v := range values {
		if v == nil {
			continue
		}
		out[i] = null.FloatFrom(v.(float64))
	}
	return out
}

func ints(values ...int64) []null.Int {
	out := make([]null.Int, len(values))
	for i, v := range values {
		out[i] = null.IntFrom(v)
	}
	return out
}

func sampleQuote() *shared.RawQuote {
	start := fixedNow.Add(-time.Hour).Unix()
	return &shared.RawQuote{
		Meta: shared.QuoteMeta{
			Currency:             "USD",
			Symbol:               "AAPL",
			RegularMarketPrice:   12,
			ChartPreviousClose:   9,
			RegularMarketDayHigh: 13,
			RegularMarketDayLow:  8,
			PriceHint:            null.IntFrom(2),
		},
		Timestamps: []int64{start, start + 60, start + 120},
		Open:       floats(9.5, 10.0, 11.0),
		High:       floats(10.5, 11.0, 12.5),
		Low:        floats(9.0, 9.5, 10.5),
		Close:      floats(10.0, nil, 12.0),
		Volume:     ints(100, 200, 300),
	}
}

func closes(data *shared.TickerData) []float64 {
	out := make([]float64, len(data.Points))
	for i, p := range data.Points {
		out[i] = p.Close
	}
	return out
}

func TestParse(t *testing.T) {
	// Ensure a day quote forward fills holes and measures change from the previous close.
	data := parse(sampleQuote(), shared.Day, clock)
	assert.Equal(t, len(data.Points), 3)
	if diff := cmp.Diff([]float64{10, 10, 12}, closes(data)); diff != "" {
		t.Fatalf("unexpected closes (-want +got):\n%s", diff)
	}
	assert.Equal(t, data.PercentageChange.Kind, shared.FromPreviousClose)
	assert.True(t, math.Abs(data.PercentageChange.Percentage()-33.333333) < 0.0001)
	assert.Equal(t, data.PreviousClose, float64(9))
	assert.Equal(t, data.MarketPrice, shared.NewAmount(12, "USD", 2))
	assert.Equal(t, data.MarketDayHigh.Price, float64(13))
	assert.Equal(t, data.MarketDayLow.Price, float64(8))
	assert.Equal(t, data.MarketDayOpen.Price, 9.5)
	assert.Equal(t, data.Points[2].Volume, int64(300))

	// Ensure longer ranges measure change between the first and last close.
	data = parse(sampleQuote(), shared.Year, clock)
	assert.Equal(t, data.PercentageChange, shared.NewChangeBetweenTwoPrices(10, 12))
	assert.Equal(t, data.Range, shared.Year)
}

func TestForwardFill(t *testing.T) {
	tests := []struct {
		name    string
		channel []null.Float
		n       int
		want    []float64
	}{
		{"interior holes", floats(5.0, nil, nil, 8.0), 4, []float64{5, 5, 5, 8}},
		{"leading hole", floats(nil, 3.0, nil), 3, []float64{0, 3, 3}},
		{"all holes", floats(nil, nil), 2, []float64{0, 0}},
		{"truncated", floats(1.0, 2.0, 3.0), 2, []float64{1, 2}},
		{"short channel", floats(4.0), 3, []float64{4, 4, 4}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if diff := cmp.Diff(test.want, forwardFill(test.channel, test.n)); diff != "" {
				t.Fatalf("unexpected fill (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseTruncatesToShortestChannel(t *testing.T) {
	raw := sampleQuote()
	raw.Volume = ints(1, 2)

	// Ensure the series is truncated to the minimum non-zero channel length.
	data := parse(raw, shared.Day, clock)
	assert.Equal(t, len(data.Points), 2)

	// Ensure empty channels do not truncate the series.
	raw = sampleQuote()
	raw.Volume = nil
	data = parse(raw, shared.Day, clock)
	assert.Equal(t, len(data.Points), 3)
	assert.Equal(t, data.Points[1].Volume, int64(0))
}

func TestParseFallback(t *testing.T) {
	raw := &shared.RawQuote{
		Meta: shared.QuoteMeta{
			Currency:             "EUR",
			RegularMarketPrice:   50,
			ChartPreviousClose:   40,
			RegularMarketDayHigh: 55,
			RegularMarketDayLow:  45,
			RegularMarketVolume:  null.IntFrom(1000),
			RegularMarketTime:    null.IntFrom(fixedNow.Add(-time.Minute).Unix()),
		},
	}

	// Ensure an empty series yields a single point derived from the metadata.
	data := parse(raw, shared.Month, clock)
	assert.Equal(t, len(data.Points), 1)
	want := shared.DataPoint{
		Timestamp: fixedNow.Add(-time.Minute),
		Open:      40,
		High:      55,
		Low:       45,
		Close:     50,
		Volume:    1000,
	}
	assert.Equal(t, data.Points[0], want)
	assert.Equal(t, data.MarketPrice.Decimals, shared.DefaultDecimals)
	assert.Equal(t, data.MarketDayOpen.Price, float64(0))

	// Ensure change falls back to the market price when there are no closes.
	assert.Equal(t, data.PercentageChange, shared.NewChangeBetweenTwoPrices(50, 50))

	// Ensure the fallback uses the clock when the market time is absent.
	raw.Meta.RegularMarketTime = null.Int{}
	raw.Meta.RegularMarketVolume = null.Int{}
	data = parse(raw, shared.Month, clock)
	assert.Equal(t, data.Points[0].Timestamp, fixedNow)
	assert.Equal(t, data.Points[0].Volume, int64(0))

	// Ensure channels without timestamps are not usable.
	raw.Close = floats(1.0, 2.0)
	data = parse(raw, shared.Month, clock)
	assert.Equal(t, len(data.Points), 1)
	assert.Equal(t, data.PercentageChange, shared.NewChangeBetweenTwoPrices(1, 2))
}

func TestParseSortsPoints(t *testing.T) {
	raw := sampleQuote()
	raw.Timestamps[0], raw.Timestamps[2] = raw.Timestamps[2], raw.Timestamps[0]

	// Ensure points are timestamp ascending.
	data := parse(raw, shared.Day, clock)
	for i := 1; i < len(data.Points); i++ {
		assert.False(t, data.Points[i].Timestamp.Before(data.Points[i-1].Timestamp))
	}
	assert.Equal(t, data.Points[0].Close, float64(12))
}

func TestParseEmptyCurrency(t *testing.T) {
	raw := sampleQuote()
	raw.Meta.Currency = ""
	raw.Meta.PriceHint = null.IntFrom(4)

	// Ensure blank currencies normalize to unknown and the price hint sets decimals.
	data := Parse(raw, shared.Day)
	assert.Equal(t, data.MarketPrice.Currency, shared.Currency(shared.UnknownCurrency))
	assert.Equal(t, data.MarketPrice.Decimals, 4)
}
