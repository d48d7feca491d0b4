package ticker

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dnldd/stocks/series"
	"github.com/dnldd/stocks/shared"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Session defines the requirements of a ticker's trading session tracker.
type Session interface {
	// Update refreshes the session with the provided quote metadata.
	Update(meta *shared.QuoteMeta)
	// Status returns the current market status.
	Status() shared.MarketStatus
}

// FetchResult represents the outcome of a ticker data fetch.
type FetchResult struct {
	Ticker *Ticker
	Range  shared.Range
	Quote  *shared.RawQuote
	Err    error
}

// TickerConfig represents the configuration of a ticker.
type TickerConfig struct {
	// Symbol is the vendor symbol of the ticker.
	Symbol string
	// Fetcher fetches the ticker's chart data.
	Fetcher shared.QuoteFetcher
	// Session tracks the ticker's exchange session.
	Session Session
	// Now returns the current time.
	Now func() time.Time
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *TickerConfig) Validate() error {
	var errs error

	if strings.TrimSpace(cfg.Symbol) == "" {
		errs = errors.Join(errs, fmt.Errorf("symbol cannot be an empty string"))
	}
	if cfg.Fetcher == nil {
		errs = errors.Join(errs, fmt.Errorf("fetcher cannot be nil"))
	}
	if cfg.Session == nil {
		errs = errors.Join(errs, fmt.Errorf("session cannot be nil"))
	}
	if cfg.Now == nil {
		errs = errors.Join(errs, fmt.Errorf("clock cannot be nil"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// subscriber represents a registered ticker update observer.
type subscriber struct {
	id     string
	notify func(t *Ticker)
}

// Ticker tracks a symbol's cached range data and refresh state.
type Ticker struct {
	cfg             *TickerConfig
	data            map[shared.Range]*shared.TickerData
	decimals        int
	alias           string
	name            string
	exchangeName    string
	dataFetchFailed bool
	availableRanges []shared.Range
	lastUpdated     time.Time
	removed         bool
	subscribers     []subscriber
	mtx             sync.RWMutex
}

// NewTicker initializes a new ticker.
func NewTicker(cfg *TickerConfig) (*Ticker, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating ticker config: %w", err)
	}

	return &Ticker{
		cfg:      cfg,
		data:     make(map[shared.Range]*shared.TickerData),
		decimals: shared.DefaultDecimals,
	}, nil
}

// Symbol returns the ticker's vendor symbol.
func (t *Ticker) Symbol() string {
	return t.cfg.Symbol
}

// Alias returns the user given alias of the ticker.
func (t *Ticker) Alias() string {
	t.mtx.RLock()
	defer t.mtx.RUnlock()

	return t.alias
}

// DisplayName returns the alias of the ticker if set, otherwise its symbol.
func (t *Ticker) DisplayName() string {
	t.mtx.RLock()
	defer t.mtx.RUnlock()

	if t.alias == "" {
		return t.cfg.Symbol
	}

	return t.alias
}

// Name returns the instrument name of the ticker.
func (t *Ticker) Name() string {
	t.mtx.RLock()
	defer t.mtx.RUnlock()

	return t.name
}

// ExchangeName returns the full name of the ticker's exchange.
func (t *Ticker) ExchangeName() string {
	t.mtx.RLock()
	defer t.mtx.RUnlock()

	return t.exchangeName
}

// DataFetchFailed checks whether the latest fetch failed, in which case cached data
// may be stale.
func (t *Ticker) DataFetchFailed() bool {
	t.mtx.RLock()
	defer t.mtx.RUnlock()

	return t.dataFetchFailed
}

// AvailableRanges returns the ranges the vendor supports for the ticker.
func (t *Ticker) AvailableRanges() []shared.Range {
	t.mtx.RLock()
	defer t.mtx.RUnlock()

	return slices.Clone(t.availableRanges)
}

// LastUpdated returns the time of the last successful fetch.
func (t *Ticker) LastUpdated() time.Time {
	t.mtx.RLock()
	defer t.mtx.RUnlock()

	return t.lastUpdated
}

// MarketStatus returns the current status of the ticker's market.
func (t *Ticker) MarketStatus() shared.MarketStatus {
	return t.cfg.Session.Status()
}

// Subscribe registers the provided function for ticker updates and returns the
// subscription id.
func (t *Ticker) Subscribe(notify func(t *Ticker)) string {
	id := uuid.New().String()

	t.mtx.Lock()
	t.subscribers = append(t.subscribers, subscriber{id: id, notify: notify})
	t.mtx.Unlock()

	return id
}

// Unsubscribe deregisters the subscription with the provided id.
func (t *Ticker) Unsubscribe(id string) {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	t.subscribers = slices.DeleteFunc(t.subscribers, func(s subscriber) bool {
		return s.id == id
	})
}

// release deregisters all subscribers and marks the ticker as removed.
func (t *Ticker) release() {
	t.mtx.Lock()
	defer t.mtx.Unlock()

	t.subscribers = nil
	t.removed = true
}

// isRemoved checks whether the ticker was removed from the watch-list.
func (t *Ticker) isRemoved() bool {
	t.mtx.RLock()
	defer t.mtx.RUnlock()

	return t.removed
}

// notify invokes all subscribers with the ticker.
func (t *Ticker) notify() {
	t.mtx.RLock()
	subs := slices.Clone(t.subscribers)
	t.mtx.RUnlock()

	for _, sub := range subs {
		sub.notify(t)
	}
}

// SetAlias sets the user given alias of the ticker and notifies subscribers.
func (t *Ticker) SetAlias(alias string) {
	t.mtx.Lock()
	t.alias = strings.TrimSpace(alias)
	t.mtx.Unlock()

	t.notify()
}

// TryGetData returns the cached data for the provided range.
func (t *Ticker) TryGetData(rng shared.Range) (*shared.TickerData, bool) {
	t.mtx.RLock()
	defer t.mtx.RUnlock()

	data, ok := t.data[rng]
	return data, ok
}

// ShouldFetch checks whether refreshing the provided range requires a network fetch.
// Cached data is reused while the market is not open.
func (t *Ticker) ShouldFetch(rng shared.Range, force bool) bool {
	if force {
		return true
	}

	if t.cfg.Session.Status() == shared.StatusOpen {
		return true
	}

	_, ok := t.TryGetData(rng)
	return !ok
}

// fetch requests the raw chart data of the ticker for the provided range.
func (t *Ticker) fetch(ctx context.Context, rng shared.Range) FetchResult {
	quote, err := t.cfg.Fetcher.FetchQuote(ctx, t.cfg.Symbol, rng)
	return FetchResult{
		Ticker: t,
		Range:  rng,
		Quote:  quote,
		Err:    err,
	}
}

// Apply updates the ticker state with the provided fetch result and notifies
// subscribers exactly once.
func (t *Ticker) Apply(res FetchResult) {
	defer t.notify()

	if res.Err != nil || res.Quote == nil {
		err := res.Err
		if err == nil {
			err = fmt.Errorf("no quote returned")
		}

		t.cfg.Logger.Error().Msgf("fetching %s data for %s: %v", res.Range, t.cfg.Symbol, err)

		t.mtx.Lock()
		t.dataFetchFailed = true
		t.mtx.Unlock()
		return
	}

	meta := &res.Quote.Meta
	t.cfg.Session.Update(meta)
	data := series.Parse(res.Quote, res.Range)

	decimals := shared.DefaultDecimals
	if meta.PriceHint.Valid {
		decimals = int(meta.PriceHint.Int64)
	}

	name := strings.TrimSpace(meta.LongName.ValueOrZero())
	if !meta.LongName.Valid {
		name = strings.TrimSpace(meta.ShortName.ValueOrZero())
	}

	ranges := make([]shared.Range, 0, len(meta.ValidRanges))
	for _, code := range meta.ValidRanges {
		ranges = append(ranges, shared.ParseRange(code))
	}

	t.mtx.Lock()
	t.decimals = decimals
	t.name = name
	t.exchangeName = meta.FullExchangeName
	t.availableRanges = ranges
	t.lastUpdated = t.cfg.Now()
	t.data[res.Range] = data
	t.dataFetchFailed = false
	t.mtx.Unlock()
}

// Refresh refreshes the provided range, fetching from the network only when required,
// and notifies subscribers exactly once.
func (t *Ticker) Refresh(ctx context.Context, rng shared.Range, force bool) {
	if !t.ShouldFetch(rng, force) {
		t.notify()
		return
	}

	t.Apply(t.fetch(ctx, rng))
}

// AmountAndChangeFor returns the price and percentage change to display for the
// provided range given zero, one or two selected data points.
func (t *Ticker) AmountAndChangeFor(rng shared.Range, p1 *shared.DataPoint, p2 *shared.DataPoint) (*shared.Amount, *shared.PercentageChange) {
	t.mtx.RLock()
	data, ok := t.data[rng]
	decimals := t.decimals
	t.mtx.RUnlock()

	if !ok {
		placeholder := shared.NewChangeFromPreviousClose(1, 1)
		return nil, &placeholder
	}

	switch {
	case p1 != nil && p2 != nil:
		start, end := p1, p2
		if start.Timestamp.After(end.Timestamp) {
			start, end = end, start
		}

		change := shared.NewChangeBetweenTwoPrices(start.Close, end.Close)
		return nil, &change

	case p1 != nil || p2 != nil:
		point := p1
		if point == nil {
			point = p2
		}

		var change shared.PercentageChange
		switch {
		case data.Range.IsShort():
			change = shared.NewChangeFromPreviousClose(point.Close, data.PreviousClose)
		default:
			change = shared.NewChangeBetweenTwoPrices(data.First().Close, point.Close)
		}

		amount := shared.Amount{
			Price:    point.Close,
			Currency: data.MarketPrice.Currency,
			Decimals: decimals,
		}
		return &amount, &change

	default:
		return &data.MarketPrice, &data.PercentageChange
	}
}
