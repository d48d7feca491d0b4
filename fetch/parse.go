package fetch

import (
	"fmt"

	"github.com/dnldd/stocks/shared"
	"github.com/guregu/null/v6"
	"github.com/tidwall/gjson"
)

// isNull checks whether the provided result is missing or null.
func isNull(r gjson.Result) bool {
	return !r.Exists() || r.Type == gjson.Null
}

// nullInt decodes an optional integer.
func nullInt(r gjson.Result) null.Int {
	if isNull(r) {
		return null.Int{}
	}

	return null.IntFrom(r.Int())
}

// nullFloat decodes an optional float.
func nullFloat(r gjson.Result) null.Float {
	if isNull(r) {
		return null.Float{}
	}

	return null.FloatFrom(r.Float())
}

// nullString decodes an optional string.
func nullString(r gjson.Result) null.String {
	if isNull(r) {
		return null.String{}
	}

	return null.StringFrom(r.String())
}

// floatChannel decodes a price channel, keeping nulls as holes.
func floatChannel(r gjson.Result) []null.Float {
	data := r.Array()
	channel := make([]null.Float, 0, len(data))
	for idx := range data {
		channel = append(channel, nullFloat(data[idx]))
	}

	return channel
}

// intChannel decodes a volume channel, keeping nulls as holes.
func intChannel(r gjson.Result) []null.Int {
	data := r.Array()
	channel := make([]null.Int, 0, len(data))
	for idx := range data {
		channel = append(channel, nullInt(data[idx]))
	}

	return channel
}

// parseTradingPeriod decodes a trading period, returning nil when absent.
func parseTradingPeriod(r gjson.Result) *shared.TradingPeriod {
	if isNull(r) || !r.IsObject() {
		return nil
	}

	return &shared.TradingPeriod{
		Timezone:  r.Get("timezone").String(),
		Start:     r.Get("start").Int(),
		End:       r.Get("end").Int(),
		GMTOffset: nullInt(r.Get("gmtoffset")),
	}
}

// parseMeta decodes the metadata block of a chart result.
func parseMeta(r gjson.Result) shared.QuoteMeta {
	meta := shared.QuoteMeta{
		Currency:             r.Get("currency").String(),
		Symbol:               r.Get("symbol").String(),
		ExchangeName:         r.Get("exchangeName").String(),
		FullExchangeName:     r.Get("fullExchangeName").String(),
		InstrumentType:       r.Get("instrumentType").String(),
		FirstTradeDate:       nullInt(r.Get("firstTradeDate")),
		RegularMarketTime:    nullInt(r.Get("regularMarketTime")),
		GMTOffset:            nullInt(r.Get("gmtoffset")),
		Timezone:             r.Get("timezone").String(),
		ExchangeTimezoneName: nullString(r.Get("exchangeTimezoneName")),
		RegularMarketPrice:   r.Get("regularMarketPrice").Float(),
		PreviousClose:        nullFloat(r.Get("previousClose")),
		ChartPreviousClose:   r.Get("chartPreviousClose").Float(),
		RegularMarketDayHigh: r.Get("regularMarketDayHigh").Float(),
		RegularMarketDayLow:  r.Get("regularMarketDayLow").Float(),
		RegularMarketVolume:  nullInt(r.Get("regularMarketVolume")),
		LongName:             nullString(r.Get("longName")),
		ShortName:            nullString(r.Get("shortName")),
		PriceHint:            nullInt(r.Get("priceHint")),
	}

	current := r.Get("currentTradingPeriod")
	if !isNull(current) {
		meta.CurrentTradingPeriod = &shared.CurrentTradingPeriod{
			Pre:     parseTradingPeriod(current.Get("pre")),
			Regular: parseTradingPeriod(current.Get("regular")),
			Post:    parseTradingPeriod(current.Get("post")),
		}
	}

	periods := r.Get("tradingPeriods")
	if periods.IsArray() {
		for _, day := range periods.Array() {
			var dayPeriods []shared.TradingPeriod
			for _, p := range day.Array() {
				period := parseTradingPeriod(p)
				if period != nil {
					dayPeriods = append(dayPeriods, *period)
				}
			}
			meta.TradingPeriods = append(meta.TradingPeriods, dayPeriods)
		}
	}

	for _, rng := range r.Get("validRanges").Array() {
		meta.ValidRanges = append(meta.ValidRanges, rng.String())
	}

	return meta
}

// ParseChart decodes a vendor chart response. A payload without a result is a failure.
func ParseChart(body []byte) (*shared.RawQuote, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid chart payload", ErrFetchFailed)
	}

	result := gjson.GetBytes(body, "chart.result.0")
	if isNull(result) {
		desc := gjson.GetBytes(body, "chart.error.description").String()
		if desc == "" {
			desc = "no chart result"
		}
		return nil, fmt.Errorf("%w: %s", ErrFetchFailed, desc)
	}

	meta := result.Get("meta")
	if isNull(meta) {
		return nil, fmt.Errorf("%w: no chart metadata", ErrFetchFailed)
	}

	quote := &shared.RawQuote{Meta: parseMeta(meta)}

	timestamps := result.Get("timestamp").Array()
	quote.Timestamps = make([]int64, 0, len(timestamps))
	for idx := range timestamps {
		quote.Timestamps = append(quote.Timestamps, timestamps[idx].Int())
	}

	channels := result.Get("indicators.quote.0")
	quote.Open = floatChannel(channels.Get("open"))
	quote.High = floatChannel(channels.Get("high"))
	quote.Low = floatChannel(channels.Get("low"))
	quote.Close = floatChannel(channels.Get("close"))
	quote.Volume = intChannel(channels.Get("volume"))

	return quote, nil
}

// ParseSearchResults decodes a vendor search response. A payload without quotes has
// no results.
func ParseSearchResults(body []byte) ([]shared.SearchResult, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid search payload", ErrFetchFailed)
	}

	quotes := gjson.GetBytes(body, "quotes").Array()
	results := make([]shared.SearchResult, 0, len(quotes))
	for idx := range quotes {
		results = append(results, shared.SearchResult{
			Symbol:          quotes[idx].Get("symbol").String(),
			ShortName:       quotes[idx].Get("shortname").String(),
			LongName:        quotes[idx].Get("longname").String(),
			ExchangeDisplay: quotes[idx].Get("exchDisp").String(),
		})
	}

	return results, nil
}
