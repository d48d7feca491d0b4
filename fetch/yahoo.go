package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dnldd/stocks/shared"
	"golang.org/x/time/rate"
)

const (
	// DefaultChartURL is the vendor chart endpoint, the symbol is appended to it.
	DefaultChartURL = "https://query1.finance.yahoo.com/v8/finance/chart/"
	// DefaultSearchURL is the vendor search endpoint, the escaped term is appended to it.
	DefaultSearchURL = "https://query2.finance.yahoo.com/v1/finance/search?q="
	// DefaultRequestsPerSecond is the default vendor request rate.
	DefaultRequestsPerSecond = 4
	// requestBurst is the number of requests allowed to exceed the rate.
	requestBurst = 2
)

// ErrFetchFailed is returned for every transport or decoding failure.
var ErrFetchFailed = errors.New("fetch failed")

// YahooConfig represents the configuration for the Yahoo client.
type YahooConfig struct {
	// ChartURL is the chart endpoint.
	ChartURL string
	// SearchURL is the search endpoint.
	SearchURL string
	// UserAgent is sent with every request.
	UserAgent string
	// RequestsPerSecond limits the vendor request rate.
	RequestsPerSecond float64
	// Now returns the current time.
	Now func() time.Time
}

// Validate asserts the config sane inputs.
func (cfg *YahooConfig) Validate() error {
	var errs error

	if strings.TrimSpace(cfg.ChartURL) == "" {
		errs = errors.Join(errs, fmt.Errorf("chart url cannot be empty"))
	}
	if strings.TrimSpace(cfg.SearchURL) == "" {
		errs = errors.Join(errs, fmt.Errorf("search url cannot be empty"))
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		errs = errors.Join(errs, fmt.Errorf("user agent cannot be empty"))
	}
	if cfg.RequestsPerSecond <= 0 {
		errs = errors.Join(errs, fmt.Errorf("requests per second must be positive"))
	}
	if cfg.Now == nil {
		errs = errors.Join(errs, fmt.Errorf("clock cannot be nil"))
	}

	return errs
}

// YahooClient represents the Yahoo finance chart and search client.
type YahooClient struct {
	cfg     *YahooConfig
	httpc   http.Client
	limiter *rate.Limiter
}

// Ensure the YahooClient implements the QuoteFetcher and TickerSearcher interfaces.
var _ shared.QuoteFetcher = (*YahooClient)(nil)
var _ shared.TickerSearcher = (*YahooClient)(nil)

// NewYahooClient instantiates a new Yahoo client.
func NewYahooClient(cfg *YahooConfig) (*YahooClient, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating yahoo client config: %w", err)
	}

	return &YahooClient{
		cfg:     cfg,
		httpc:   http.Client{Timeout: shared.TimeoutDuration},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), requestBurst),
	}, nil
}

// chartURL creates the chart url of the provided symbol and range.
func (c *YahooClient) chartURL(symbol string, rng shared.Range) string {
	vendorRange, interval := rng.QueryParams(c.cfg.Now())

	var sb strings.Builder
	sb.WriteString(c.cfg.ChartURL)
	sb.WriteString(url.PathEscape(symbol))
	sb.WriteString("?range=")
	sb.WriteString(vendorRange)
	sb.WriteString("&interval=")
	sb.WriteString(interval)

	return sb.String()
}

// searchURL creates the search url of the provided term. Spaces are percent encoded.
func (c *YahooClient) searchURL(term string) string {
	return c.cfg.SearchURL + strings.ReplaceAll(url.QueryEscape(term), "+", "%20")
}

// get performs a rate limited request and returns the response body.
func (c *YahooClient) get(ctx context.Context, target string) ([]byte, error) {
	err := c.limiter.Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("waiting on rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("User-Agent", c.cfg.UserAgent)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", target, err)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d from %s", resp.StatusCode, target)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return body, nil
}

// FetchQuote fetches the chart data of the provided symbol for a range.
func (c *YahooClient) FetchQuote(ctx context.Context, symbol string, rng shared.Range) (*shared.RawQuote, error) {
	target := c.chartURL(symbol, rng)

	body, err := c.get(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	quote, err := ParseChart(body)
	if err != nil {
		return nil, fmt.Errorf("parsing chart from %s: %w", target, err)
	}

	return quote, nil
}

// SearchTickers returns symbols matching the provided term.
func (c *YahooClient) SearchTickers(ctx context.Context, term string) ([]shared.SearchResult, error) {
	body, err := c.get(ctx, c.searchURL(term))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFetchFailed, err)
	}

	results, err := ParseSearchResults(body)
	if err != nil {
		return nil, fmt.Errorf("parsing search results for %q: %w", term, err)
	}

	return results, nil
}
