package ticker

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dnldd/stocks/market"
	"github.com/dnldd/stocks/shared"
	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

const (
	// bufferSize is the default buffer size for channels.
	bufferSize = 64
	// maxWorkers is the maximum number of concurrent fetch workers.
	maxWorkers = 8
	// minSearchTermLength is the minimum length of a searchable term.
	minSearchTermLength = 2
	// refreshAllTag tags the periodic refresh job.
	refreshAllTag = "refreshall"
)

// refreshJob represents a pending refresh of a ticker's range.
type refreshJob struct {
	ticker *Ticker
	rng    shared.Range
	force  bool
}

// ManagerConfig represents the watch-list manager configuration.
type ManagerConfig struct {
	// Fetcher fetches ticker chart data.
	Fetcher shared.QuoteFetcher
	// Searcher searches for symbols.
	Searcher shared.TickerSearcher
	// Store persists the watch-list.
	Store shared.SymbolStorer
	// UpdateInterval is the interval between periodic refreshes of all tickers.
	UpdateInterval time.Duration
	// JobScheduler schedules the periodic refresh.
	JobScheduler *gocron.Scheduler
	// NotifyTickerUpdated is invoked on the manager's loop whenever a tracked ticker is
	// refreshed or renamed. Optional.
	NotifyTickerUpdated func(t *Ticker)
	// NotifyTickerAdded is invoked when a ticker is added to the watch-list. Optional.
	NotifyTickerAdded func(t *Ticker)
	// NotifyTickerRemoved is invoked when a ticker is removed from the watch-list. Optional.
	NotifyTickerRemoved func(t *Ticker)
	// NotifyActiveTickerChanged is invoked when the selected ticker changes. Optional.
	NotifyActiveTickerChanged func(previous *Ticker, current *Ticker)
	// NotifyActiveRangeChanged is invoked when the selected range changes. Optional.
	NotifyActiveRangeChanged func(rng shared.Range)
	// Now returns the current time.
	Now func() time.Time
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *ManagerConfig) Validate() error {
	var errs error

	if cfg.Fetcher == nil {
		errs = errors.Join(errs, fmt.Errorf("fetcher cannot be nil"))
	}
	if cfg.Searcher == nil {
		errs = errors.Join(errs, fmt.Errorf("searcher cannot be nil"))
	}
	if cfg.Store == nil {
		errs = errors.Join(errs, fmt.Errorf("store cannot be nil"))
	}
	if cfg.UpdateInterval <= 0 {
		errs = errors.Join(errs, fmt.Errorf("update interval must be positive"))
	}
	if cfg.JobScheduler == nil {
		errs = errors.Join(errs, fmt.Errorf("job scheduler cannot be nil"))
	}
	if cfg.Now == nil {
		errs = errors.Join(errs, fmt.Errorf("clock cannot be nil"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Manager manages the watch-list and owns all ticker state mutations.
type Manager struct {
	cfg             *ManagerConfig
	tickers         []*Ticker
	subscriptions   map[*Ticker]string
	selected        *Ticker
	activeRange     shared.Range
	tickersMtx      sync.RWMutex
	refreshRequests chan refreshJob
	refreshAll      chan bool
	searchRequests  chan *shared.SearchRequest
	fetchResults    chan FetchResult
	workers         chan struct{}
}

// NewManager initializes a new watch-list manager.
func NewManager(cfg *ManagerConfig) (*Manager, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating manager config: %w", err)
	}

	return &Manager{
		cfg:             cfg,
		tickers:         make([]*Ticker, 0),
		subscriptions:   make(map[*Ticker]string),
		activeRange:     shared.Day,
		refreshRequests: make(chan refreshJob, bufferSize),
		refreshAll:      make(chan bool, bufferSize),
		searchRequests:  make(chan *shared.SearchRequest, bufferSize),
		fetchResults:    make(chan FetchResult, bufferSize),
		workers:         make(chan struct{}, maxWorkers),
	}, nil
}

// normalizeSymbol trims and upper-cases the provided symbol.
func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// newTicker creates a ticker for the provided symbol backed by its own session clock.
func (m *Manager) newTicker(symbol string) (*Ticker, error) {
	logger := m.cfg.Logger.With().Str("ticker", symbol).Logger()

	session, err := market.NewSessionClock(&market.SessionClockConfig{
		Now:    m.cfg.Now,
		Logger: &logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating session clock: %w", err)
	}

	return NewTicker(&TickerConfig{
		Symbol:  symbol,
		Fetcher: m.cfg.Fetcher,
		Session: session,
		Now:     m.cfg.Now,
		Logger:  &logger,
	})
}

// track appends the provided ticker to the watch-list and subscribes to its updates.
// The caller must hold the tickers lock.
func (m *Manager) track(t *Ticker) {
	m.tickers = append(m.tickers, t)
	if m.cfg.NotifyTickerUpdated != nil {
		m.subscriptions[t] = t.Subscribe(m.cfg.NotifyTickerUpdated)
	}
}

// Load populates the watch-list with the persisted symbols and aliases.
func (m *Manager) Load(ctx context.Context) error {
	symbols, err := m.cfg.Store.FetchSymbols(ctx)
	if err != nil {
		return fmt.Errorf("fetching symbols: %w", err)
	}

	aliases, err := m.cfg.Store.FetchAliases(ctx)
	if err != nil {
		return fmt.Errorf("fetching aliases: %w", err)
	}

	m.tickersMtx.Lock()
	defer m.tickersMtx.Unlock()

	for _, symbol := range symbols {
		if m.find(symbol) != nil {
			continue
		}

		t, err := m.newTicker(symbol)
		if err != nil {
			return fmt.Errorf("creating ticker for %s: %w", symbol, err)
		}

		if alias := strings.TrimSpace(aliases[normalizeSymbol(symbol)]); alias != "" {
			t.mtx.Lock()
			t.alias = alias
			t.mtx.Unlock()
		}

		m.track(t)
	}

	return nil
}

// find returns the tracked ticker for the provided symbol. The caller must hold the
// tickers lock.
func (m *Manager) find(symbol string) *Ticker {
	idx := slices.IndexFunc(m.tickers, func(t *Ticker) bool {
		return t.Symbol() == symbol
	})
	if idx == -1 {
		return nil
	}

	return m.tickers[idx]
}

// Ticker returns the tracked ticker for the provided symbol.
func (m *Manager) Ticker(symbol string) (*Ticker, bool) {
	m.tickersMtx.RLock()
	defer m.tickersMtx.RUnlock()

	t := m.find(symbol)
	return t, t != nil
}

// Tickers returns the tracked tickers in watch-list order.
func (m *Manager) Tickers() []*Ticker {
	m.tickersMtx.RLock()
	defer m.tickersMtx.RUnlock()

	return slices.Clone(m.tickers)
}

// Selected returns the selected ticker, if any.
func (m *Manager) Selected() *Ticker {
	m.tickersMtx.RLock()
	defer m.tickersMtx.RUnlock()

	return m.selected
}

// ActiveRange returns the selected range.
func (m *Manager) ActiveRange() shared.Range {
	m.tickersMtx.RLock()
	defer m.tickersMtx.RUnlock()

	return m.activeRange
}

// Add adds the provided symbol to the watch-list and requests its day data. Duplicate
// symbols are ignored.
func (m *Manager) Add(ctx context.Context, symbol string) (*Ticker, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("symbol cannot be an empty string")
	}

	m.tickersMtx.Lock()
	if existing := m.find(symbol); existing != nil {
		m.tickersMtx.Unlock()
		return existing, nil
	}

	t, err := m.newTicker(symbol)
	if err != nil {
		m.tickersMtx.Unlock()
		return nil, fmt.Errorf("creating ticker for %s: %w", symbol, err)
	}

	m.track(t)
	m.tickersMtx.Unlock()

	err = m.cfg.Store.AddSymbol(ctx, symbol)
	if err != nil {
		m.cfg.Logger.Error().Msgf("persisting %s: %v", symbol, err)
	}

	m.sendRefreshJob(refreshJob{ticker: t, rng: shared.Day})

	if m.cfg.NotifyTickerAdded != nil {
		m.cfg.NotifyTickerAdded(t)
	}

	return t, nil
}

// Remove removes the provided symbol from the watch-list along with its alias.
func (m *Manager) Remove(ctx context.Context, symbol string) bool {
	m.tickersMtx.Lock()
	t := m.find(symbol)
	if t == nil {
		m.tickersMtx.Unlock()
		return false
	}

	m.tickers = slices.DeleteFunc(m.tickers, func(c *Ticker) bool { return c == t })
	if id, ok := m.subscriptions[t]; ok {
		t.Unsubscribe(id)
		delete(m.subscriptions, t)
	}
	if m.selected == t {
		m.selected = nil
	}
	m.tickersMtx.Unlock()

	t.release()

	err := m.cfg.Store.RemoveSymbol(ctx, symbol)
	if err != nil {
		m.cfg.Logger.Error().Msgf("removing persisted %s: %v", symbol, err)
	}

	err = m.cfg.Store.RemoveAlias(ctx, symbol)
	if err != nil {
		m.cfg.Logger.Error().Msgf("removing persisted alias of %s: %v", symbol, err)
	}

	if m.cfg.NotifyTickerRemoved != nil {
		m.cfg.NotifyTickerRemoved(t)
	}

	return true
}

// Move moves the provided symbol to the provided watch-list position.
func (m *Manager) Move(ctx context.Context, symbol string, position int) bool {
	m.tickersMtx.Lock()
	t := m.find(symbol)
	if t == nil {
		m.tickersMtx.Unlock()
		return false
	}

	m.tickers = slices.DeleteFunc(m.tickers, func(c *Ticker) bool { return c == t })
	position = max(0, min(position, len(m.tickers)))
	m.tickers = slices.Insert(m.tickers, position, t)
	m.tickersMtx.Unlock()

	err := m.cfg.Store.MoveSymbol(ctx, symbol, position)
	if err != nil {
		m.cfg.Logger.Error().Msgf("persisting move of %s: %v", symbol, err)
	}

	return true
}

// SetAlias sets and persists the alias of a tracked ticker.
func (m *Manager) SetAlias(ctx context.Context, symbol string, alias string) bool {
	t, ok := m.Ticker(symbol)
	if !ok {
		return false
	}

	alias = strings.TrimSpace(alias)
	err := m.cfg.Store.SetAlias(ctx, symbol, alias)
	if err != nil {
		m.cfg.Logger.Error().Msgf("persisting alias of %s: %v", symbol, err)
	}

	t.SetAlias(alias)

	return true
}

// SetActive selects the provided tracked ticker.
func (m *Manager) SetActive(symbol string) bool {
	m.tickersMtx.Lock()
	t := m.find(symbol)
	if t == nil {
		m.tickersMtx.Unlock()
		return false
	}

	previous := m.selected
	m.selected = t
	m.tickersMtx.Unlock()

	if m.cfg.NotifyActiveTickerChanged != nil {
		m.cfg.NotifyActiveTickerChanged(previous, t)
	}

	return true
}

// SetActiveRange selects the provided range.
func (m *Manager) SetActiveRange(rng shared.Range) {
	m.tickersMtx.Lock()
	m.activeRange = rng
	m.tickersMtx.Unlock()

	if m.cfg.NotifyActiveRangeChanged != nil {
		m.cfg.NotifyActiveRangeChanged(rng)
	}
}

// EphemeralTicker creates a ticker outside of the watch-list and requests its day data.
// Ephemeral tickers are not persisted.
func (m *Manager) EphemeralTicker(symbol string) (*Ticker, error) {
	t, err := m.newTicker(strings.TrimSpace(symbol))
	if err != nil {
		return nil, fmt.Errorf("creating ephemeral ticker: %w", err)
	}

	m.sendRefreshJob(refreshJob{ticker: t, rng: shared.Day})

	return t, nil
}

// Search returns the symbols matching the provided term. Short terms and failed
// searches yield no results.
func (m *Manager) Search(ctx context.Context, term string) []shared.SearchResult {
	term = strings.TrimSpace(term)
	if len([]rune(term)) < minSearchTermLength {
		return []shared.SearchResult{}
	}

	results, err := m.cfg.Searcher.SearchTickers(ctx, term)
	if err != nil {
		m.cfg.Logger.Error().Msgf("searching for %q: %v", term, err)
		return []shared.SearchResult{}
	}

	return results
}

// SendSearchRequest relays the provided search request for processing. Results are
// delivered on the request's response channel.
func (m *Manager) SendSearchRequest(req *shared.SearchRequest) {
	select {
	case m.searchRequests <- req:
		// do nothing.
	default:
		m.cfg.Logger.Error().Msgf("search request channel at capacity: %d/%d",
			len(m.searchRequests), bufferSize)
	}
}

// handleSearchRequest searches on a worker so slow searches never stall the loop.
func (m *Manager) handleSearchRequest(ctx context.Context, req *shared.SearchRequest) {
	go func() {
		select {
		case m.workers <- struct{}{}:
		case <-ctx.Done():
			req.Response <- []shared.SearchResult{}
			return
		}
		defer func() { <-m.workers }()

		searchCtx, cancel := context.WithTimeout(ctx, shared.TimeoutDuration)
		defer cancel()

		req.Response <- m.Search(searchCtx, req.Term)
	}()
}

// SendRefreshRequest relays the provided refresh request for processing.
func (m *Manager) SendRefreshRequest(req shared.RefreshRequest) {
	t, ok := m.Ticker(req.Symbol)
	if !ok {
		m.cfg.Logger.Error().Msgf("no ticker found with symbol %s for refresh", req.Symbol)
		return
	}

	m.sendRefreshJob(refreshJob{ticker: t, rng: req.Range, force: req.Force})
}

// sendRefreshJob relays the provided refresh job for processing.
func (m *Manager) sendRefreshJob(job refreshJob) {
	select {
	case m.refreshRequests <- job:
		// do nothing.
	default:
		m.cfg.Logger.Error().Msgf("refresh request channel at capacity: %d/%d",
			len(m.refreshRequests), bufferSize)
	}
}

// RefreshAll requests day data for every tracked ticker, and the active range for the
// selected ticker when it is not a day. The request is expanded on the manager's loop
// so the watch-list size is not bounded by the refresh request buffer.
func (m *Manager) RefreshAll(force bool) {
	select {
	case m.refreshAll <- force:
		// do nothing.
	default:
		m.cfg.Logger.Error().Msgf("refresh all channel at capacity: %d/%d",
			len(m.refreshAll), bufferSize)
	}
}

// refreshAllJobs returns the refresh jobs covering every tracked ticker.
func (m *Manager) refreshAllJobs(force bool) []refreshJob {
	m.tickersMtx.RLock()
	defer m.tickersMtx.RUnlock()

	jobs := make([]refreshJob, 0, len(m.tickers)+1)
	for _, t := range m.tickers {
		jobs = append(jobs, refreshJob{ticker: t, rng: shared.Day, force: force})
	}

	if m.selected != nil && m.activeRange != shared.Day {
		jobs = append(jobs, refreshJob{ticker: m.selected, rng: m.activeRange, force: force})
	}

	return jobs
}

// refreshAllJob is the periodic refresh job. It never fails.
func (m *Manager) refreshAllJob() {
	defer func() {
		if r := recover(); r != nil {
			m.cfg.Logger.Error().Msgf("recovered from periodic refresh panic: %v", r)
		}
	}()

	m.RefreshAll(false)
}

// handleRefreshJob processes the provided refresh job. Network fetches are delegated
// to workers whose results are applied back on the manager's loop.
func (m *Manager) handleRefreshJob(ctx context.Context, job refreshJob) {
	if job.ticker.isRemoved() {
		return
	}

	if !job.ticker.ShouldFetch(job.rng, job.force) {
		job.ticker.notify()
		return
	}

	go func(job refreshJob) {
		select {
		case m.workers <- struct{}{}:
		case <-ctx.Done():
			return
		}
		defer func() { <-m.workers }()

		// In-flight fetches are not cancelled, their results are discarded on teardown.
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shared.TimeoutDuration)
		res := job.ticker.fetch(fetchCtx, job.rng)
		cancel()

		select {
		case m.fetchResults <- res:
		case <-ctx.Done():
		}
	}(job)
}

// handleFetchResult applies the provided fetch result to its ticker.
func (m *Manager) handleFetchResult(res FetchResult) {
	if res.Ticker.isRemoved() {
		m.cfg.Logger.Debug().Msgf("discarding %s result for removed ticker %s",
			res.Range, res.Ticker.Symbol())
		return
	}

	res.Ticker.Apply(res)
}

// Run manages the lifecycle processes of the watch-list manager.
func (m *Manager) Run(ctx context.Context) {
	_, err := m.cfg.JobScheduler.Every(m.cfg.UpdateInterval).Tag(refreshAllTag).Do(m.refreshAllJob)
	if err != nil {
		m.cfg.Logger.Error().Msgf("scheduling periodic refresh: %v", err)
	}
	m.cfg.JobScheduler.StartAsync()

	for {
		select {
		case <-ctx.Done():
			m.cfg.JobScheduler.Stop()
			err := m.cfg.JobScheduler.RemoveByTag(refreshAllTag)
			if err != nil {
				m.cfg.Logger.Error().Msgf("removing periodic refresh: %v", err)
			}
			return
		case job := <-m.refreshRequests:
			m.handleRefreshJob(ctx, job)
		case force := <-m.refreshAll:
			for _, job := range m.refreshAllJobs(force) {
				m.handleRefreshJob(ctx, job)
			}
		case req := <-m.searchRequests:
			m.handleSearchRequest(ctx, req)
		case res := <-m.fetchResults:
			m.handleFetchResult(res)
		}
	}
}
