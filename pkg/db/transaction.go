package db

import (
	"context"
	"database/sql"
)

// Tx is a transaction whose statements are recorded on the parent DB.
type Tx struct {
	tx *sql.Tx
	db *DB
}

func (t *Tx) Query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	t.db.record(ctx, query, args)
	return t.tx.QueryContext(ctx, query, args...)
}

func (t *Tx) QueryRow(ctx context.Context, query string, args ...any) *sql.Row {
	t.db.record(ctx, query, args)
	return t.tx.QueryRowContext(ctx, query, args...)
}

func (t *Tx) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	t.db.record(ctx, query, args)
	return t.tx.ExecContext(ctx, query, args...)
}

// Tx runs fn in a transaction. It rolls back when fn returns an error or
// panics (the panic is re-raised) and commits otherwise.
func (d *DB) Tx(ctx context.Context, fn func(tx *Tx) error) error {
	stx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	tx := &Tx{tx: stx, db: d}

	defer func() {
		if p := recover(); p != nil {
			_ = stx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		_ = stx.Rollback()
		return err
	}
	return stx.Commit()
}

var _ Querier = (*Tx)(nil)
