package db_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/kotori/pkg/db"
)

var migrations = fstest.MapFS{
	"00001_create_news.sql": {Data: []byte(`-- +goose Up
CREATE TABLE news (
    id INTEGER PRIMARY KEY,
    title TEXT NOT NULL
);

-- +goose Down
DROP TABLE news;
`)},
}

func openMemory(t *testing.T, opts ...db.Option) *db.DB {
	t.Helper()

	d, err := db.Open(context.Background(), db.Config{Type: db.TypeSQLite, Name: ":memory:", MaxQueries: 3}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	require.NoError(t, db.Migrate(context.Background(), d, migrations, "", nil))
	return d
}

func TestOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("not configured", func(t *testing.T) {
		t.Parallel()

		_, err := db.Open(ctx, db.Config{})
		require.ErrorIs(t, err, db.ErrNotConfigured)
	})

	t.Run("unsupported type", func(t *testing.T) {
		t.Parallel()

		_, err := db.Open(ctx, db.Config{Type: "mssql"})
		require.ErrorIs(t, err, db.ErrUnsupportedType)
	})

	t.Run("bad postgres url", func(t *testing.T) {
		t.Parallel()

		_, err := db.Open(ctx, db.Config{Type: "postgres", URL: "postgres://%zz"})
		require.ErrorIs(t, err, db.ErrFailedToParseDBConfig)
	})

	t.Run("empty sqlite name", func(t *testing.T) {
		t.Parallel()

		_, err := db.Open(ctx, db.Config{Type: "sqlite"})
		require.ErrorIs(t, err, db.ErrFailedToParseDBConfig)
	})

	t.Run("sqlite", func(t *testing.T) {
		t.Parallel()

		d := openMemory(t)
		require.Equal(t, db.TypeSQLite, d.Dialect())
		require.Nil(t, d.Pool())
		require.NoError(t, db.Healthcheck(d)(ctx))
	})
}

func TestDB_RecordsStatements(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	var logs bytes.Buffer
	d := openMemory(t, db.WithLogger(slog.New(slog.NewJSONHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))))

	require.Empty(t, d.LastQuery())

	_, err := d.Exec(ctx, "INSERT INTO news (id, title) VALUES (?, ?)", 1, "hello")
	require.NoError(t, err)
	require.Equal(t, "INSERT INTO news (id, title) VALUES (?, ?)", d.LastQuery())

	var title string
	require.NoError(t, d.QueryRow(ctx, "SELECT title FROM news WHERE id = ?", 1).Scan(&title))
	require.Equal(t, "hello", title)

	rows, err := d.Query(ctx, "SELECT id FROM news")
	require.NoError(t, err)
	require.NoError(t, rows.Close())

	require.Equal(t, []string{
		"INSERT INTO news (id, title) VALUES (?, ?)",
		"SELECT title FROM news WHERE id = ?",
		"SELECT id FROM news",
	}, d.Queries())

	_, err = d.Exec(ctx, "DELETE FROM news WHERE id = 2")
	require.NoError(t, err)
	require.Len(t, d.Queries(), 3, "history is bounded")
	require.Equal(t, "SELECT title FROM news WHERE id = ?", d.Queries()[0])

	require.Contains(t, logs.String(), `"sql":"SELECT id FROM news"`)
	require.Contains(t, logs.String(), `"level":"DEBUG"`)
}

func TestDB_Tx(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	d := openMemory(t)

	count := func() int {
		var n int
		require.NoError(t, d.QueryRow(ctx, "SELECT COUNT(*) FROM news").Scan(&n))
		return n
	}

	err := d.Tx(ctx, func(tx *db.Tx) error {
		_, err := tx.Exec(ctx, "INSERT INTO news (id, title) VALUES (1, 'a')")
		return err
	})
	require.NoError(t, err)
	require.Equal(t, 1, count())

	boom := errors.New("boom")
	err = d.Tx(ctx, func(tx *db.Tx) error {
		if _, err := tx.Exec(ctx, "INSERT INTO news (id, title) VALUES (2, 'b')"); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, count(), "rolled back")

	require.Panics(t, func() {
		_ = d.Tx(ctx, func(tx *db.Tx) error {
			_, _ = tx.Exec(ctx, "INSERT INTO news (id, title) VALUES (3, 'c')")
			panic("boom")
		})
	})
	require.Equal(t, 1, count(), "rolled back on panic")
}

func TestMigrate_Idempotent(t *testing.T) {
	t.Parallel()

	d := openMemory(t)
	require.NoError(t, db.Migrate(context.Background(), d, migrations, "", nil))

	var n int
	require.NoError(t, d.QueryRow(context.Background(), "SELECT COUNT(*) FROM schema_migrations WHERE version_id = 1").Scan(&n))
	require.Equal(t, 1, n)
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	r := db.NewRegistry()

	_, err := r.Get(ctx, db.Config{})
	require.ErrorIs(t, err, db.ErrNotConfigured)

	a, err := r.Get(ctx, db.Config{Type: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	b, err := r.Get(ctx, db.Config{Type: "sqlite", Name: ":memory:"})
	require.NoError(t, err)
	require.Same(t, a, b)
	require.Equal(t, 1, r.Len())

	c, err := r.Get(ctx, db.Config{Type: "SQLite", Name: ":memory:"})
	require.NoError(t, err)
	require.Same(t, a, c)
	require.Equal(t, db.TypeSQLite, c.Dialect())

	d, err := r.Get(ctx, db.Config{Type: "sqlite3", Name: filepath.Join(t.TempDir(), "alias.db")})
	require.NoError(t, err)
	require.NotSame(t, a, d)
	require.Equal(t, 2, r.Len())

	require.NoError(t, db.Shutdown(r)(ctx))
	require.Zero(t, r.Len())
}

func TestConfig(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     db.Config
		wantDSN string
		wantKey string
	}{
		{
			name:    "postgres fields",
			cfg:     db.Config{Type: "postgres", Host: "db", Port: 5433, Name: "kotori", User: "app", Password: "pw", Charset: "utf8"},
			wantDSN: "postgres://app:pw@db:5433/kotori?client_encoding=UTF8",
			wantKey: "db:5433",
		},
		{
			name:    "default port",
			cfg:     db.Config{Type: "postgres", Host: "db", Name: "kotori"},
			wantDSN: "postgres://db:5432/kotori",
			wantKey: "db:5432",
		},
		{
			name:    "url",
			cfg:     db.Config{Type: "postgres", URL: "postgres://u@pg.internal/app", Host: "ignored"},
			wantDSN: "postgres://u@pg.internal/app",
			wantKey: "pg.internal:5432",
		},
		{
			name:    "sqlite",
			cfg:     db.Config{Type: "sqlite", Name: "data/app.db"},
			wantDSN: "data/app.db",
			wantKey: "sqlite:data/app.db",
		},
		{
			name:    "sqlite3 alias",
			cfg:     db.Config{Type: "sqlite3", Name: "data/one.db"},
			wantDSN: "data/one.db",
			wantKey: "sqlite:data/one.db",
		},
		{
			name:    "mixed case sqlite",
			cfg:     db.Config{Type: "SQLite", Name: "data/two.db"},
			wantDSN: "data/two.db",
			wantKey: "sqlite:data/two.db",
		},
		{
			name:    "postgresql alias",
			cfg:     db.Config{Type: "PostgreSQL", Host: "db", Name: "kotori"},
			wantDSN: "postgres://db:5432/kotori",
			wantKey: "db:5432",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.wantDSN, tt.cfg.DSN())
			require.Equal(t, tt.wantKey, tt.cfg.Key())
		})
	}
}
