package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dnldd/stocks/shared"
	"github.com/google/go-cmp/cmp"
	"github.com/guregu/null/v6"
	"github.com/peterldowns/testy/assert"
)

const testUserAgent = "Mozilla/4.0 (stocks tests)"

var fixedNow = time.Date(2025, time.April, 2, 15, 0, 0, 0, time.UTC)

// vendorStub serves canned chart and search responses and records requests.
type vendorStub struct {
	chart    []byte
	search   []byte
	status   int
	requests []*http.Request
	mtx      sync.Mutex
}

func (s *vendorStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mtx.Lock()
	s.requests = append(s.requests, r)
	s.mtx.Unlock()

	if s.status != 0 {
		w.WriteHeader(s.status)
		return
	}

	switch {
	case strings.HasPrefix(r.URL.Path, "/v8/finance/chart/"):
		_, _ = w.Write(s.chart)
	case r.URL.Path == "/v1/finance/search":
		_, _ = w.Write(s.search)
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (s *vendorStub) lastRequest() *http.Request {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if len(s.requests) == 0 {
		return nil
	}

	return s.requests[len(s.requests)-1]
}

func setupClient(t *testing.T, stub *vendorStub) *YahooClient {
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	client, err := NewYahooClient(&YahooConfig{
		ChartURL:          srv.URL + "/v8/finance/chart/",
		SearchURL:         srv.URL + "/v1/finance/search?q=",
		UserAgent:         testUserAgent,
		RequestsPerSecond: 100,
		Now:               func() time.Time { return fixedNow },
	})
	assert.NoError(t, err)

	return client
}

func loadChart(t *testing.T) []byte {
	data, err := os.ReadFile("testdata/chart.json")
	assert.NoError(t, err)

	return data
}

func TestYahooConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(cfg *YahooConfig)
		wantErr     bool
		errContains string
	}{
		{
			name:    "valid config",
			modify:  func(cfg *YahooConfig) {},
			wantErr: false,
		},
		{
			name:        "empty chart url",
			modify:      func(cfg *YahooConfig) { cfg.ChartURL = " " },
			wantErr:     true,
			errContains: "chart url cannot be empty",
		},
		{
			name:        "empty search url",
			modify:      func(cfg *YahooConfig) { cfg.SearchURL = "" },
			wantErr:     true,
			errContains: "search url cannot be empty",
		},
		{
			name:        "empty user agent",
			modify:      func(cfg *YahooConfig) { cfg.UserAgent = "" },
			wantErr:     true,
			errContains: "user agent cannot be empty",
		},
		{
			name:        "non-positive request rate",
			modify:      func(cfg *YahooConfig) { cfg.RequestsPerSecond = 0 },
			wantErr:     true,
			errContains: "requests per second must be positive",
		},
		{
			name:        "nil clock",
			modify:      func(cfg *YahooConfig) { cfg.Now = nil },
			wantErr:     true,
			errContains: "clock cannot be nil",
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := &YahooConfig{
				ChartURL:          DefaultChartURL,
				SearchURL:         DefaultSearchURL,
				UserAgent:         testUserAgent,
				RequestsPerSecond: DefaultRequestsPerSecond,
				Now:               time.Now,
			}
			test.modify(cfg)

			err := cfg.Validate()
			if test.wantErr {
				assert.Error(t, err)
				assert.True(t, strings.Contains(err.Error(), test.errContains))
				_, err = NewYahooClient(cfg)
				assert.Error(t, err)
				return
			}

			assert.NoError(t, err)
		})
	}
}

func TestURLs(t *testing.T) {
	client, err := NewYahooClient(&YahooConfig{
		ChartURL:          DefaultChartURL,
		SearchURL:         DefaultSearchURL,
		UserAgent:         testUserAgent,
		RequestsPerSecond: DefaultRequestsPerSecond,
		Now:               func() time.Time { return fixedNow },
	})
	assert.NoError(t, err)

	assert.Equal(t, client.chartURL("SXR8.DE", shared.Day),
		"https://query1.finance.yahoo.com/v8/finance/chart/SXR8.DE?range=1d&interval=2m")
	assert.Equal(t, client.chartURL("AAPL", shared.FiveYears),
		"https://query1.finance.yahoo.com/v8/finance/chart/AAPL?range=5y&interval=1wk")
	assert.Equal(t, client.searchURL("AAPL two words"),
		"https://query2.finance.yahoo.com/v1/finance/search?q=AAPL%20two%20words")
	assert.Equal(t, client.searchURL("S&P"),
		"https://query2.finance.yahoo.com/v1/finance/search?q=S%26P")
}

func TestFetchQuote(t *testing.T) {
	stub := &vendorStub{chart: loadChart(t)}
	client := setupClient(t, stub)

	// Ensure the chart request is formed with the range parameters and user agent.
	quote, err := client.FetchQuote(context.Background(), "AAPL", shared.Day)
	assert.NoError(t, err)

	req := stub.lastRequest()
	assert.NotNil(t, req)
	assert.Equal(t, req.URL.Path, "/v8/finance/chart/AAPL")
	assert.Equal(t, req.URL.Query().Get("range"), "1d")
	assert.Equal(t, req.URL.Query().Get("interval"), "2m")
	assert.Equal(t, req.Header.Get("User-Agent"), testUserAgent)

	// Ensure the metadata is decoded.
	assert.Equal(t, quote.Meta.Symbol, "AAPL")
	assert.Equal(t, quote.Meta.Currency, "USD")
	assert.Equal(t, quote.Meta.FullExchangeName, "NasdaqGS")
	assert.Equal(t, quote.Meta.ExchangeTimezoneName, null.StringFrom("America/New_York"))
	assert.Equal(t, quote.Meta.GMTOffset, null.IntFrom(-14400))
	assert.Equal(t, quote.Meta.RegularMarketPrice, 223.89)
	assert.Equal(t, quote.Meta.ChartPreviousClose, 223.19)
	assert.Equal(t, quote.Meta.PriceHint, null.IntFrom(2))
	assert.Equal(t, quote.Meta.LongName, null.StringFrom("Apple Inc."))
	assert.Equal(t, len(quote.Meta.ValidRanges), 11)
	assert.NotNil(t, quote.Meta.CurrentTradingPeriod)
	assert.NotNil(t, quote.Meta.CurrentTradingPeriod.Regular)
	assert.Equal(t, quote.Meta.CurrentTradingPeriod.Regular.Start, int64(1743600600))
	assert.Equal(t, quote.Meta.CurrentTradingPeriod.Regular.GMTOffset, null.IntFrom(-14400))
	assert.Equal(t, len(quote.Meta.TradingPeriods), 1)

	// Ensure channels keep their holes.
	assert.Equal(t, quote.Timestamps, []int64{1743600600, 1743600720, 1743600840, 1743600960})
	wantClose := []null.Float{
		null.FloatFrom(222.2), null.FloatFrom(222.6), {}, null.FloatFrom(223.4),
	}
	if diff := cmp.Diff(wantClose, quote.Close); diff != "" {
		t.Errorf("close mismatch (-want +got):\n%s", diff)
	}
	assert.False(t, quote.Volume[2].Valid)
	assert.Equal(t, quote.Volume[0].Int64, int64(1210384))
}

func TestFetchQuoteFailures(t *testing.T) {
	tests := []struct {
		name string
		stub *vendorStub
	}{
		{
			name: "server error",
			stub: &vendorStub{status: http.StatusInternalServerError},
		},
		{
			name: "invalid payload",
			stub: &vendorStub{chart: []byte(`{"chart":`)},
		},
		{
			name: "missing result",
			stub: &vendorStub{chart: []byte(`{"chart":{"result":null,"error":null}}`)},
		},
		{
			name: "vendor error",
			stub: &vendorStub{chart: []byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`)},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			client := setupClient(t, test.stub)

			quote, err := client.FetchQuote(context.Background(), "NOPE", shared.Day)
			assert.Error(t, err)
			assert.True(t, errors.Is(err, ErrFetchFailed))
			assert.Nil(t, quote)
		})
	}
}

func TestFetchQuoteCancelled(t *testing.T) {
	stub := &vendorStub{chart: loadChart(t)}
	client := setupClient(t, stub)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.FetchQuote(ctx, "AAPL", shared.Day)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrFetchFailed))
}

func TestSearchTickers(t *testing.T) {
	stub := &vendorStub{search: []byte(`{
		"quotes": [
			{"exchange":"NMS","shortname":"Tesla, Inc.","quoteType":"EQUITY","symbol":"TSLA","longname":"Tesla, Inc.","exchDisp":"NASDAQ"},
			{"exchange":"GER","shortname":"TESLA INC","symbol":"TL0.DE","exchDisp":"XETRA"}
		]
	}`)}
	client := setupClient(t, stub)

	results, err := client.SearchTickers(context.Background(), "Tesla motors")
	assert.NoError(t, err)

	req := stub.lastRequest()
	assert.Equal(t, req.URL.Query().Get("q"), "Tesla motors")
	assert.Equal(t, req.Header.Get("User-Agent"), testUserAgent)

	want := []shared.SearchResult{
		{Symbol: "TSLA", ShortName: "Tesla, Inc.", LongName: "Tesla, Inc.", ExchangeDisplay: "NASDAQ"},
		{Symbol: "TL0.DE", ShortName: "TESLA INC", ExchangeDisplay: "XETRA"},
	}
	if diff := cmp.Diff(want, results); diff != "" {
		t.Errorf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSearchResults(t *testing.T) {
	// Ensure a payload without quotes has no results.
	results, err := ParseSearchResults([]byte(`{"quotes":null}`))
	assert.NoError(t, err)
	assert.Equal(t, len(results), 0)

	results, err = ParseSearchResults([]byte(`{}`))
	assert.NoError(t, err)
	assert.Equal(t, len(results), 0)

	// Ensure an invalid payload fails.
	_, err = ParseSearchResults([]byte(`not json`))
	assert.Error(t, err)
	assert.True(t, errors.Is(err, ErrFetchFailed))
}
