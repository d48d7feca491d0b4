package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dnldd/stocks/database"
	"github.com/dnldd/stocks/fetch"
	"github.com/dnldd/stocks/shared"
	"github.com/dnldd/stocks/ticker"
	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// WatchConfig represents the configuration struct for the watch service.
type WatchConfig struct {
	// Symbols seeds an empty watch-list.
	Symbols []string
	// UpdateInterval is the interval between periodic refreshes.
	UpdateInterval time.Duration
	// UserAgent is sent with every vendor request.
	UserAgent string
	// ChartURL is the vendor chart endpoint.
	ChartURL string
	// SearchURL is the vendor search endpoint.
	SearchURL string
	// RequestsPerSecond limits the vendor request rate.
	RequestsPerSecond float64
	// DBEndpoint is the rqlite endpoint. The watch-list is kept in memory when empty.
	DBEndpoint string
	// DBUser is the database user.
	DBUser string
	// DBPass is the database user pass.
	DBPass string
	// Logger represents the application logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *WatchConfig) Validate() error {
	var errs error

	if cfg.UpdateInterval <= 0 {
		errs = errors.Join(errs, fmt.Errorf("update interval must be positive"))
	}
	if strings.TrimSpace(cfg.UserAgent) == "" {
		errs = errors.Join(errs, fmt.Errorf("user agent cannot be an empty string"))
	}
	if cfg.RequestsPerSecond <= 0 {
		errs = errors.Join(errs, fmt.Errorf("requests per second must be positive"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Watch represents the stock watch-list service.
type Watch struct {
	cfg     *WatchConfig
	store   shared.SymbolStorer
	client  *fetch.YahooClient
	manager *ticker.Manager
	logger  *zerolog.Logger
	wg      sync.WaitGroup
}

// NewWatch initializes a new watch service.
func NewWatch(ctx context.Context, cfg *WatchConfig) (*Watch, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating watch config: %w", err)
	}

	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	logger := cfg.Logger.With().Str("service", "watch").Logger()

	var store shared.SymbolStorer
	switch cfg.DBEndpoint {
	case "":
		store = database.NewMemoryStore()
	default:
		dbLogger := logger.With().Str("component", "database").Logger()
		store, err = database.NewDatabase(ctx, &database.DatabaseConfig{
			Endpoint: cfg.DBEndpoint,
			User:     cfg.DBUser,
			Pass:     cfg.DBPass,
			Logger:   &dbLogger,
		})
		if err != nil {
			return nil, fmt.Errorf("creating database: %w", err)
		}
	}

	chartURL := cfg.ChartURL
	if chartURL == "" {
		chartURL = fetch.DefaultChartURL
	}
	searchURL := cfg.SearchURL
	if searchURL == "" {
		searchURL = fetch.DefaultSearchURL
	}

	client, err := fetch.NewYahooClient(&fetch.YahooConfig{
		ChartURL:          chartURL,
		SearchURL:         searchURL,
		UserAgent:         cfg.UserAgent,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Now:               time.Now,
	})
	if err != nil {
		return nil, fmt.Errorf("creating yahoo client: %w", err)
	}

	w := &Watch{
		cfg:    cfg,
		store:  store,
		client: client,
		logger: &logger,
	}

	managerLogger := logger.With().Str("component", "tickermanager").Logger()
	w.manager, err = ticker.NewManager(&ticker.ManagerConfig{
		Fetcher:             client,
		Searcher:            client,
		Store:               store,
		UpdateInterval:      cfg.UpdateInterval,
		JobScheduler:        gocron.NewScheduler(time.Local),
		NotifyTickerUpdated: w.reportTicker,
		NotifyTickerAdded: func(t *ticker.Ticker) {
			w.logger.Info().Msgf("added %s to the watch-list", t.Symbol())
		},
		NotifyTickerRemoved: func(t *ticker.Ticker) {
			w.logger.Info().Msgf("removed %s from the watch-list", t.Symbol())
		},
		Now:    time.Now,
		Logger: &managerLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating ticker manager: %w", err)
	}

	return w, nil
}

// Manager returns the watch-list manager.
func (w *Watch) Manager() *ticker.Manager {
	return w.manager
}

// reportTicker logs the latest day quote of the provided ticker.
func (w *Watch) reportTicker(t *ticker.Ticker) {
	if t.DataFetchFailed() {
		w.logger.Warn().Msgf("%s: fetching data failed", t.DisplayName())
		return
	}

	amount, change := t.AmountAndChangeFor(shared.Day, nil, nil)
	if amount == nil || change == nil {
		return
	}

	w.logger.Info().
		Str("status", t.MarketStatus().String()).
		Msgf("%s %s (%s)", t.DisplayName(), amount.String(), change.String())
}

// seed adds the configured symbols to an empty watch-list.
func (w *Watch) seed(ctx context.Context) error {
	symbols, err := w.store.FetchSymbols(ctx)
	if err != nil {
		return fmt.Errorf("fetching symbols: %w", err)
	}

	if len(symbols) > 0 {
		return nil
	}

	for _, symbol := range w.cfg.Symbols {
		symbol = strings.TrimSpace(symbol)
		if symbol == "" {
			continue
		}

		err := w.store.AddSymbol(ctx, symbol)
		if err != nil {
			return fmt.Errorf("adding %s: %w", symbol, err)
		}
	}

	return nil
}

// Run handles the lifecycle processes of the watch service.
func (w *Watch) Run(ctx context.Context) {
	err := w.seed(ctx)
	if err != nil {
		w.logger.Error().Msgf("seeding watch-list: %v", err)
	}

	err = w.manager.Load(ctx)
	if err != nil {
		w.logger.Error().Msgf("loading watch-list: %v", err)
	}

	w.wg.Add(1)
	go func() {
		w.manager.Run(ctx)
		w.wg.Done()
	}()

	w.wg.Wait()
}
