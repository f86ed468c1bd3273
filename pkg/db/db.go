package db

import (
	"context"
	"database/sql"
	"log/slog"
	"slices"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DefaultMaxQueries bounds the statement history when Config.MaxQueries is
// not set.
const DefaultMaxQueries = 100

// DB wraps a database/sql handle and records every statement it runs.
type DB struct {
	sql        *sql.DB
	pool       *pgxpool.Pool
	logger     *slog.Logger
	dialect    string
	key        string
	queries    []string
	maxQueries int
	mu         sync.Mutex
}

// Querier is implemented by DB and Tx.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) *sql.Row
	Exec(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (d *DB) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	d.record(ctx, query, args)
	return d.sql.QueryContext(ctx, query, args...)
}

func (d *DB) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	d.record(ctx, query, args)
	return d.sql.QueryRowContext(ctx, query, args...)
}

func (d *DB) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	d.record(ctx, query, args)
	return d.sql.ExecContext(ctx, query, args...)
}

// Queries returns the recorded statements, oldest first.
func (d *DB) Queries() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return slices.Clone(d.queries)
}

// LastQuery returns the most recent statement.
func (d *DB) LastQuery() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.queries) == 0 {
		return ""
	}
	return d.queries[len(d.queries)-1]
}

// SQL returns the underlying handle.
func (d *DB) SQL() *sql.DB { return d.sql }

// Pool returns the pgx pool, or nil for non-postgres databases.
func (d *DB) Pool() *pgxpool.Pool { return d.pool }

// Dialect returns "postgres" or "sqlite".
func (d *DB) Dialect() string { return d.dialect }

// Key returns the "host:port" the DB is registered under.
func (d *DB) Key() string { return d.key }

// Close closes the handle and the pgx pool.
func (d *DB) Close() error {
	err := d.sql.Close()
	if d.pool != nil {
		d.pool.Close()
	}
	return err
}

func (d *DB) record(ctx context.Context, query string, args []any) {
	d.logger.LogAttrs(ctx, slog.LevelDebug, "sql",
		slog.String("sql", query),
		slog.Any("args", args),
		slog.String("db", d.key),
	)

	limit := d.maxQueries
	if limit <= 0 {
		limit = DefaultMaxQueries
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.queries) >= limit {
		d.queries = slices.Delete(d.queries, 0, len(d.queries)-limit+1)
	}
	d.queries = append(d.queries, query)
}

var _ Querier = (*DB)(nil)
