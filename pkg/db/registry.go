package db

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Registry keeps one DB per server, keyed by "host:port".
type Registry struct {
	dbs  map[string]*DB
	opts []Option
	mu   sync.Mutex
}

// NewRegistry creates a Registry; opts apply to every DB it opens.
func NewRegistry(opts ...Option) *Registry {
	return &Registry{dbs: make(map[string]*DB), opts: opts}
}

// Get returns the DB for cfg's server, opening it on first use.
func (r *Registry) Get(ctx context.Context, cfg Config) (*DB, error) {
	if cfg.Dialect() == "" {
		return nil, ErrNotConfigured
	}
	key := cfg.Key()

	r.mu.Lock()
	defer r.mu.Unlock()

	if d, ok := r.dbs[key]; ok {
		return d, nil
	}
	d, err := Open(ctx, cfg, r.opts...)
	if err != nil {
		return nil, err
	}
	r.dbs[key] = d
	return d, nil
}

// Len returns the number of open databases.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.dbs)
}

// Close closes every database and empties the registry.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for key, d := range r.dbs {
		if err := d.Close(); err != nil {
			d.logger.Error("close database", slog.String("server", key), slog.Any("error", err))
			errs = append(errs, err)
		}
	}
	clear(r.dbs)
	return errors.Join(errs...)
}
