package database

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strings"
	"sync"

	"github.com/dnldd/stocks/shared"
)

// MemoryStore is a non-durable watch-list store.
type MemoryStore struct {
	symbols []string
	aliases map[string]string
	mtx     sync.RWMutex
}

// Ensure the memory store implements the SymbolStorer interface.
var _ shared.SymbolStorer = (*MemoryStore)(nil)

// NewMemoryStore initializes a new memory store seeded with the provided symbols.
func NewMemoryStore(symbols ...string) *MemoryStore {
	s := &MemoryStore{
		symbols: make([]string, 0, len(symbols)),
		aliases: make(map[string]string),
	}

	for _, symbol := range symbols {
		symbol = strings.TrimSpace(symbol)
		if symbol == "" || slices.Contains(s.symbols, symbol) {
			continue
		}
		s.symbols = append(s.symbols, symbol)
	}

	return s
}

// FetchSymbols returns the stored symbols in watch-list order.
func (s *MemoryStore) FetchSymbols(ctx context.Context) ([]string, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return slices.Clone(s.symbols), nil
}

// AddSymbol appends the provided symbol to the watch-list.
func (s *MemoryStore) AddSymbol(ctx context.Context, symbol string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if !slices.Contains(s.symbols, symbol) {
		s.symbols = append(s.symbols, symbol)
	}

	return nil
}

// MoveSymbol moves the provided symbol to the provided position.
func (s *MemoryStore) MoveSymbol(ctx context.Context, symbol string, position int) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	ordered, ok := moveSymbol(s.symbols, symbol, position)
	if !ok {
		return fmt.Errorf("no symbol found with name %s to move", symbol)
	}

	s.symbols = ordered

	return nil
}

// RemoveSymbol removes the provided symbol from the watch-list.
func (s *MemoryStore) RemoveSymbol(ctx context.Context, symbol string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.symbols = slices.DeleteFunc(s.symbols, func(v string) bool { return v == symbol })

	return nil
}

// FetchAliases returns the stored aliases keyed by normalized symbol.
func (s *MemoryStore) FetchAliases(ctx context.Context) (map[string]string, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	return maps.Clone(s.aliases), nil
}

// SetAlias stores the alias of the provided symbol. An empty alias removes it.
func (s *MemoryStore) SetAlias(ctx context.Context, symbol string, alias string) error {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return s.RemoveAlias(ctx, symbol)
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.aliases[normalizeSymbol(symbol)] = alias

	return nil
}

// RemoveAlias removes the alias of the provided symbol.
func (s *MemoryStore) RemoveAlias(ctx context.Context, symbol string) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	delete(s.aliases, normalizeSymbol(symbol))

	return nil
}
