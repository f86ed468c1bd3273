package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/dmitrymomot/kotori/pkg/logger"
)

// Option configures Open.
type Option func(*DB)

// WithLogger sets the logger receiving executed statements at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(d *DB) {
		if l != nil {
			d.logger = l
		}
	}
}

// Open connects to the database described by cfg and verifies it with a
// ping. An empty cfg.Type yields ErrNotConfigured.
func Open(ctx context.Context, cfg Config, opts ...Option) (*DB, error) {
	d := &DB{
		logger:     logger.NewNope(),
		dialect:    cfg.Dialect(),
		key:        cfg.Key(),
		maxQueries: cfg.MaxQueries,
	}
	for _, opt := range opts {
		opt(d)
	}

	switch d.dialect {
	case "":
		return nil, ErrNotConfigured
	case TypePostgres:
		pool, err := Connect(ctx, cfg)
		if err != nil {
			return nil, err
		}
		d.pool = pool
		d.sql = stdlib.OpenDBFromPool(pool)
	case TypeSQLite:
		conn, err := openSQLite(ctx, cfg)
		if err != nil {
			return nil, err
		}
		d.sql = conn
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, cfg.Type)
	}

	d.logger.DebugContext(ctx, "database connected",
		slog.String("type", d.dialect),
		slog.String("server", d.key),
	)
	return d, nil
}

// Connect opens a PostgreSQL pool and pings it, retrying with a growing
// interval.
func Connect(ctx context.Context, cfg Config) (*pgxpool.Pool, error) {
	pc, err := pgxpool.ParseConfig(cfg.DSN())
	if err != nil {
		return nil, errors.Join(ErrFailedToParseDBConfig, err)
	}
	if cfg.MaxOpenConns > 0 {
		pc.MaxConns = cfg.MaxOpenConns
	}
	pc.MinConns = cfg.MinConns
	if cfg.HealthCheckPeriod > 0 {
		pc.HealthCheckPeriod = cfg.HealthCheckPeriod
	}
	if cfg.MaxConnIdleTime > 0 {
		pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	}
	if cfg.MaxConnLifetime > 0 {
		pc.MaxConnLifetime = cfg.MaxConnLifetime
	}

	var pool *pgxpool.Pool
	err = retry(ctx, cfg, func() error {
		p, err := pgxpool.NewWithConfig(ctx, pc)
		if err != nil {
			return err
		}
		if err := p.Ping(ctx); err != nil {
			p.Close()
			return err
		}
		pool = p
		return nil
	})
	return pool, err
}

func openSQLite(ctx context.Context, cfg Config) (*sql.DB, error) {
	dsn := cfg.DSN()
	if dsn == "" {
		return nil, fmt.Errorf("%w: empty sqlite database name", ErrFailedToParseDBConfig)
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, errors.Join(ErrFailedToParseDBConfig, err)
	}
	// SQLite allows one writer; an in-memory database also lives and dies
	// with its single connection.
	conn.SetMaxOpenConns(1)
	conn.SetConnMaxIdleTime(0)
	conn.SetConnMaxLifetime(0)

	if err := retry(ctx, cfg, func() error { return conn.PingContext(ctx) }); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return conn, nil
}

func retry(ctx context.Context, cfg Config, fn func() error) error {
	attempts := max(cfg.RetryAttempts, 1)

	var lastErr error
	for i := range attempts {
		if lastErr = fn(); lastErr == nil {
			return nil
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return errors.Join(ErrFailedToOpenDBConnection, lastErr, ctx.Err())
		case <-time.After(time.Duration(i+1) * cfg.RetryInterval):
		}
	}
	return errors.Join(ErrFailedToOpenDBConnection, lastErr)
}
