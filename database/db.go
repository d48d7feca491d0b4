package database

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/davecgh/go-spew/spew"
	"github.com/dnldd/stocks/shared"
	rqlitehttp "github.com/rqlite/rqlite-go-http"
	"github.com/rs/zerolog"
)

const (
	// SQL statements.
	createSymbolTableSQL = "CREATE TABLE IF NOT EXISTS symbol (symbol TEXT PRIMARY KEY, position INTEGER NOT NULL)"
	createAliasTableSQL  = "CREATE TABLE IF NOT EXISTS alias (symbol TEXT PRIMARY KEY, alias TEXT NOT NULL)"
	fetchSymbolsSQL      = "SELECT symbol, position FROM symbol ORDER BY position ASC"
	addSymbolSQL         = "INSERT OR IGNORE INTO symbol(symbol, position) VALUES(?, (SELECT COALESCE(MAX(position), -1) + 1 FROM symbol))"
	updatePositionSQL    = "UPDATE symbol SET position = ? WHERE symbol = ?"
	removeSymbolSQL      = "DELETE FROM symbol WHERE symbol = ?"
	fetchAliasesSQL      = "SELECT symbol, alias FROM alias"
	setAliasSQL          = "INSERT OR REPLACE INTO alias(symbol, alias) VALUES(?, ?)"
	removeAliasSQL       = "DELETE FROM alias WHERE symbol = ?"

	// clientTimeout is the timeout of database requests.
	clientTimeout = time.Second * 5
)

// DatabaseConfig is the configuration for the database.
type DatabaseConfig struct {
	// Endpoint represents the database connection endpoint.
	Endpoint string
	// User is the database user.
	User string
	// Pass is the database user pass.
	Pass string
	// Logger is the database logger.
	Logger *zerolog.Logger
}

// Validate asserts the config sane inputs.
func (cfg *DatabaseConfig) Validate() error {
	var errs error

	if cfg.Endpoint == "" {
		errs = errors.Join(errs, fmt.Errorf("endpoint cannot be an empty string"))
	}
	if cfg.Logger == nil {
		errs = errors.Join(errs, fmt.Errorf("logger cannot be nil"))
	}

	return errs
}

// Database represents the database connection.
type Database struct {
	cfg    *DatabaseConfig
	client *rqlitehttp.Client
}

// Ensure the database implements the SymbolStorer interface.
var _ shared.SymbolStorer = (*Database)(nil)

// NewDatabase initializes a new database connection.
func NewDatabase(ctx context.Context, cfg *DatabaseConfig) (*Database, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("validating database config: %w", err)
	}

	httpc := &http.Client{Timeout: clientTimeout}
	client, err := rqlitehttp.NewClient(cfg.Endpoint, httpc)
	if err != nil {
		return nil, fmt.Errorf("creating database client: %w", err)
	}

	if cfg.User != "" {
		client.SetBasicAuth(cfg.User, cfg.Pass)
	}

	db := &Database{
		cfg:    cfg,
		client: client,
	}

	err = db.bootstrap(ctx)
	if err != nil {
		return nil, fmt.Errorf("bootstrapping database: %w", err)
	}

	return db, nil
}

// bootstrap initializes the database.
func (db *Database) bootstrap(ctx context.Context) error {
	return db.execute(ctx, "creating tables", rqlitehttp.SQLStatements{
		{SQL: createSymbolTableSQL},
		{SQL: createAliasTableSQL},
	})
}

// execute runs the provided statements in a transaction.
func (db *Database) execute(ctx context.Context, action string, stmts rqlitehttp.SQLStatements) error {
	resp, err := db.client.Execute(ctx, stmts,
		&rqlitehttp.ExecuteOptions{Transaction: true, Timings: true})
	if err != nil {
		return fmt.Errorf("%s: %w", action, err)
	}

	has, idx, errStr := resp.HasError()
	if has {
		return fmt.Errorf("%s: %d -> %s", action, idx, errStr)
	}

	return nil
}

// query runs the provided query and returns its rows.
func (db *Database) query(ctx context.Context, sql string, args ...any) ([]map[string]any, error) {
	resp, err := db.client.Query(ctx, rqlitehttp.SQLStatements{
		{SQL: sql, PositionalParams: args},
	}, &rqlitehttp.QueryOptions{Associative: true, Timings: true})
	if err != nil {
		return nil, err
	}

	results := resp.GetQueryResultsAssoc()
	if len(results) == 0 {
		return nil, nil
	}

	if results[0].Error != "" {
		return nil, errors.New(results[0].Error)
	}

	return results[0].Rows, nil
}

// stringColumn returns the string value of the provided row column.
func (db *Database) stringColumn(row map[string]any, column string) (string, bool) {
	v, ok := row[column].(string)
	if !ok {
		db.cfg.Logger.Error().Msgf("unexpected %s column in row: %s", column, spew.Sdump(row))
	}

	return v, ok
}

// FetchSymbols returns the persisted symbols in watch-list order.
func (db *Database) FetchSymbols(ctx context.Context) ([]string, error) {
	rows, err := db.query(ctx, fetchSymbolsSQL)
	if err != nil {
		return nil, fmt.Errorf("fetching symbols: %w", err)
	}

	symbols := make([]string, 0, len(rows))
	for _, row := range rows {
		symbol, ok := db.stringColumn(row, "symbol")
		if !ok {
			continue
		}
		symbols = append(symbols, symbol)
	}

	return symbols, nil
}

// AddSymbol appends the provided symbol to the watch-list.
func (db *Database) AddSymbol(ctx context.Context, symbol string) error {
	return db.execute(ctx, fmt.Sprintf("adding symbol %s", symbol),
		rqlitehttp.SQLStatements{{SQL: addSymbolSQL, PositionalParams: []any{symbol}}})
}

// MoveSymbol moves the provided symbol to the provided position.
func (db *Database) MoveSymbol(ctx context.Context, symbol string, position int) error {
	symbols, err := db.FetchSymbols(ctx)
	if err != nil {
		return err
	}

	ordered, ok := moveSymbol(symbols, symbol, position)
	if !ok {
		return fmt.Errorf("no symbol found with name %s to move", symbol)
	}

	stmts := rqlitehttp.SQLStatements{}
	for idx, s := range ordered {
		stmts = append(stmts, rqlitehttp.SQLStatements{{
			SQL:              updatePositionSQL,
			PositionalParams: []any{idx, s},
		}}...)
	}

	return db.execute(ctx, fmt.Sprintf("moving symbol %s", symbol), stmts)
}

// RemoveSymbol removes the provided symbol from the watch-list.
func (db *Database) RemoveSymbol(ctx context.Context, symbol string) error {
	return db.execute(ctx, fmt.Sprintf("removing symbol %s", symbol),
		rqlitehttp.SQLStatements{{SQL: removeSymbolSQL, PositionalParams: []any{symbol}}})
}

// FetchAliases returns the persisted symbol aliases keyed by normalized symbol.
func (db *Database) FetchAliases(ctx context.Context) (map[string]string, error) {
	rows, err := db.query(ctx, fetchAliasesSQL)
	if err != nil {
		return nil, fmt.Errorf("fetching aliases: %w", err)
	}

	aliases := make(map[string]string, len(rows))
	for _, row := range rows {
		symbol, ok := db.stringColumn(row, "symbol")
		if !ok {
			continue
		}
		alias, ok := db.stringColumn(row, "alias")
		if !ok {
			continue
		}
		aliases[symbol] = alias
	}

	return aliases, nil
}

// SetAlias persists the alias of the provided symbol. An empty alias removes it.
func (db *Database) SetAlias(ctx context.Context, symbol string, alias string) error {
	alias = strings.TrimSpace(alias)
	if alias == "" {
		return db.RemoveAlias(ctx, symbol)
	}

	return db.execute(ctx, fmt.Sprintf("setting alias of %s", symbol),
		rqlitehttp.SQLStatements{{SQL: setAliasSQL, PositionalParams: []any{normalizeSymbol(symbol), alias}}})
}

// RemoveAlias removes the alias of the provided symbol.
func (db *Database) RemoveAlias(ctx context.Context, symbol string) error {
	return db.execute(ctx, fmt.Sprintf("removing alias of %s", symbol),
		rqlitehttp.SQLStatements{{SQL: removeAliasSQL, PositionalParams: []any{normalizeSymbol(symbol)}}})
}
