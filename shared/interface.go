package shared

import (
	"context"
)

// QuoteFetcher defines the requirements for fetching a symbol's chart data.
type QuoteFetcher interface {
	// FetchQuote fetches the raw chart data of the provided symbol for a range.
	FetchQuote(ctx context.Context, symbol string, rng Range) (*RawQuote, error)
}

// TickerSearcher defines the requirements for searching symbols.
type TickerSearcher interface {
	// SearchTickers returns symbols matching the provided term.
	SearchTickers(ctx context.Context, term string) ([]SearchResult, error)
}

// SymbolStorer defines the requirements for persisting the watch-list.
type SymbolStorer interface {
	// FetchSymbols returns the persisted symbols in watch-list order.
	FetchSymbols(ctx context.Context) ([]string, error)
	// AddSymbol appends the provided symbol to the watch-list.
	AddSymbol(ctx context.Context, symbol string) error
	// MoveSymbol moves the provided symbol to the provided position.
	MoveSymbol(ctx context.Context, symbol string, position int) error
	// RemoveSymbol removes the provided symbol from the watch-list.
	RemoveSymbol(ctx context.Context, symbol string) error
	// FetchAliases returns the persisted symbol aliases.
	FetchAliases(ctx context.Context) (map[string]string, error)
	// SetAlias persists the alias of the provided symbol.
	SetAlias(ctx context.Context, symbol string, alias string) error
	// RemoveAlias removes the alias of the provided symbol.
	RemoveAlias(ctx context.Context, symbol string) error
}
