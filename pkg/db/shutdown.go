package db

import (
	"context"
	"errors"
	"io"
)

// Shutdown returns a shutdown hook closing c, a *DB or *Registry.
//
//	app := kotori.New(kotori.WithShutdownHook(db.Shutdown(database)))
func Shutdown(c io.Closer) func(ctx context.Context) error {
	return func(context.Context) error {
		return c.Close()
	}
}

// Healthcheck returns a readiness check pinging d.
func Healthcheck(d *DB) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if d == nil {
			return ErrHealthcheckFailed
		}
		if err := d.SQL().PingContext(ctx); err != nil {
			return errors.Join(ErrHealthcheckFailed, err)
		}
		return nil
	}
}
