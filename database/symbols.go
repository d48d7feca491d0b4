package database

import (
	"slices"
	"strings"
)

// normalizeSymbol trims and upper-cases the provided symbol for use as an alias key.
func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}

// moveSymbol returns a copy of the provided symbols with the symbol moved to the
// provided position. Out of range positions are clamped.
func moveSymbol(symbols []string, symbol string, position int) ([]string, bool) {
	idx := slices.Index(symbols, symbol)
	if idx == -1 {
		return nil, false
	}

	moved := slices.Delete(slices.Clone(symbols), idx, idx+1)
	position = max(0, min(position, len(moved)))

	return slices.Insert(moved, position, symbol), true
}
