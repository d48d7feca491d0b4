package shared

import (
	"github.com/guregu/null/v6"
)

// TradingPeriod represents an exchange trading window in unix seconds.
type TradingPeriod struct {
	Timezone  string
	Start     int64
	End       int64
	GMTOffset null.Int
}

// CurrentTradingPeriod groups the pre-market, regular and post-market periods of the
// current trading day.
type CurrentTradingPeriod struct {
	Pre     *TradingPeriod
	Regular *TradingPeriod
	Post    *TradingPeriod
}

// QuoteMeta represents the metadata block of a vendor chart response.
type QuoteMeta struct {
	Currency             string
	Symbol               string
	ExchangeName         string
	FullExchangeName     string
	InstrumentType       string
	FirstTradeDate       null.Int
	RegularMarketTime    null.Int
	GMTOffset            null.Int
	Timezone             string
	ExchangeTimezoneName null.String
	RegularMarketPrice   float64
	PreviousClose        null.Float
	ChartPreviousClose   float64
	RegularMarketDayHigh float64
	RegularMarketDayLow  float64
	RegularMarketVolume  null.Int
	LongName             null.String
	ShortName            null.String
	PriceHint            null.Int
	CurrentTradingPeriod *CurrentTradingPeriod
	TradingPeriods       [][]TradingPeriod
	ValidRanges          []string
}

// RawQuote represents a deserialized vendor chart response. Channels are parallel to
// Timestamps but may differ in length or contain holes.
type RawQuote struct {
	Meta       QuoteMeta
	Timestamps []int64
	Open       []null.Float
	High       []null.Float
	Low        []null.Float
	Close      []null.Float
	Volume     []null.Int
}

// SearchResult represents a symbol search hit.
type SearchResult struct {
	Symbol          string
	ShortName       string
	LongName        string
	ExchangeDisplay string
}
