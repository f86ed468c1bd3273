package cache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/kotori/pkg/logger"
	"github.com/dmitrymomot/kotori/pkg/redis"
)

// DefaultTTL applies to Store.Set calls with a zero TTL.
const DefaultTTL = 60 * time.Second

// Config selects and configures the Store backend.
type Config struct {
	Adapter          string        `env:"CACHE_ADAPTER" envDefault:"memcached"`
	Prefix           string        `env:"CACHE_PREFIX"`
	RedisURL         string        `env:"REDIS_URL" envDefault:"redis://127.0.0.1:6379/0"`
	MemcachedServers []string      `env:"MEMCACHED_SERVERS" envDefault:"127.0.0.1:11211" envSeparator:","`
	DefaultTTL       time.Duration `env:"CACHE_DEFAULT_TTL" envDefault:"60s"`
}

// StoreOption configures New.
type StoreOption func(*storeOptions)

type storeOptions struct {
	logger    *slog.Logger
	adapter   Adapter
	redis     goredis.UniversalClient
	memcached MemcacheClient
	redisOpts []redis.Option
}

// WithAdapter uses a ready adapter and ignores Config.Adapter.
func WithAdapter(a Adapter) StoreOption {
	return func(o *storeOptions) {
		o.adapter = a
	}
}

// WithRedisClient reuses an open Redis client for the redis adapter.
// The Store does not close it.
func WithRedisClient(c goredis.UniversalClient) StoreOption {
	return func(o *storeOptions) {
		o.redis = c
	}
}

// WithRedisOptions passes connection options to redis.Open.
func WithRedisOptions(opts ...redis.Option) StoreOption {
	return func(o *storeOptions) {
		o.redisOpts = append(o.redisOpts, opts...)
	}
}

// WithMemcachedClient uses c for the memcached adapter.
func WithMemcachedClient(c MemcacheClient) StoreOption {
	return func(o *storeOptions) {
		o.memcached = c
	}
}

// WithStoreLogger sets the logger for adapter selection and failures.
func WithStoreLogger(l *slog.Logger) StoreOption {
	return func(o *storeOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// Store is the application cache. It forwards every call to the adapter
// chosen by configuration and prefixes every key.
type Store struct {
	adapter    Adapter
	logger     *slog.Logger
	closer     func() error
	name       string
	prefix     string
	defaultTTL time.Duration

	supportOnce sync.Once
	supported   bool
}

// New builds a Store for cfg.Adapter ("memory", "redis" or "memcached";
// empty means memcached). The adapter must answer a ping, otherwise
// ErrAdapterUnavailable is returned.
func New(ctx context.Context, cfg Config, opts ...StoreOption) (*Store, error) {
	o := storeOptions{logger: logger.NewNope()}
	for _, opt := range opts {
		opt(&o)
	}

	name := strings.ToLower(strings.TrimSpace(cfg.Adapter))
	if name == "" {
		name = AdapterMemcached
	}
	ttl := cfg.DefaultTTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	s := &Store{
		logger:     o.logger,
		name:       name,
		prefix:     cfg.Prefix,
		defaultTTL: ttl,
		closer:     func() error { return nil },
	}

	switch {
	case o.adapter != nil:
		s.adapter = o.adapter
		s.closer = o.adapter.Close
	case name == AdapterMemory:
		m := NewMemoryAdapter(WithDefaultTTL(ttl))
		s.adapter, s.closer = m, m.Close
	case name == AdapterRedis:
		client := o.redis
		if client == nil {
			c, err := redis.Open(ctx, cfg.RedisURL, o.redisOpts...)
			if err != nil {
				return nil, errors.Join(fmt.Errorf("%w: %q", ErrAdapterUnavailable, name), err)
			}
			client, s.closer = c, c.Close
		}
		s.adapter = NewRedis[[]byte](client, RawMarshaler{}, WithRedisDefaultTTL(ttl))
	case name == AdapterMemcached:
		client := o.memcached
		if client == nil {
			client = memcache.New(cfg.MemcachedServers...)
		}
		s.adapter = NewMemcached[[]byte](client, RawMarshaler{},
			WithMemcachedDefaultTTL(ttl),
			WithMemcachedServers(cfg.MemcachedServers...),
		)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAdapter, cfg.Adapter)
	}

	if !s.IsSupported(ctx) {
		_ = s.closer()
		return nil, fmt.Errorf("%w: %q", ErrAdapterUnavailable, name)
	}

	s.logger.DebugContext(ctx, "cache adapter ready",
		slog.String("adapter", name),
		slog.String("prefix", cfg.Prefix),
	)
	return s, nil
}

// Adapter returns the name of the backend in use.
func (s *Store) Adapter() string {
	return s.name
}

// Prefix returns the key prefix.
func (s *Store) Prefix() string {
	return s.prefix
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	return s.adapter.Get(ctx, s.prefix+key)
}

// Set stores value. A zero ttl means DefaultTTL, a negative one never
// expires.
func (s *Store) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl == 0 {
		ttl = s.defaultTTL
	}
	return s.adapter.Set(ctx, s.prefix+key, value, ttl)
}

func (s *Store) Delete(ctx context.Context, key string) error {
	return s.adapter.Delete(ctx, s.prefix+key)
}

func (s *Store) Has(ctx context.Context, key string) (bool, error) {
	return s.adapter.Has(ctx, s.prefix+key)
}

// Increment adds offset to a raw integer entry and returns the new value.
func (s *Store) Increment(ctx context.Context, key string, offset int64) (int64, error) {
	return s.adapter.Increment(ctx, s.prefix+key, offset)
}

// Decrement subtracts offset from a raw integer entry.
func (s *Store) Decrement(ctx context.Context, key string, offset int64) (int64, error) {
	return s.adapter.Increment(ctx, s.prefix+key, -offset)
}

// Clean empties the backend.
func (s *Store) Clean(ctx context.Context) error {
	return s.adapter.Clear(ctx)
}

// Clear is Clean; it makes Store a Cache.
func (s *Store) Clear(ctx context.Context) error {
	return s.Clean(ctx)
}

// Info describes the backend.
func (s *Store) Info(ctx context.Context) (Info, error) {
	return s.adapter.Info(ctx)
}

// Metadata describes a single entry.
func (s *Store) Metadata(ctx context.Context, key string) (Metadata, error) {
	md, err := s.adapter.Metadata(ctx, s.prefix+key)
	if err != nil {
		return Metadata{}, err
	}
	md.Key = key
	return md, nil
}

// IsSupported reports whether the backend answered a ping. The first
// result is remembered for the life of the Store.
func (s *Store) IsSupported(ctx context.Context) bool {
	s.supportOnce.Do(func() {
		err := s.adapter.Ping(ctx)
		if err != nil {
			s.logger.WarnContext(ctx, "cache adapter unavailable",
				slog.String("adapter", s.name),
				slog.Any("error", err),
			)
		}
		s.supported = err == nil
	})
	return s.supported
}

// Remember returns the entry for key or stores the result of fn for ttl.
func (s *Store) Remember(ctx context.Context, key string, ttl time.Duration, fn func(ctx context.Context) ([]byte, error)) ([]byte, error) {
	return GetOrSet(ctx, Cache[[]byte](s), key, func(ctx context.Context) ([]byte, time.Duration, error) {
		v, err := fn(ctx)
		return v, ttl, err
	})
}

// Healthcheck pings the backend on every call.
func (s *Store) Healthcheck(ctx context.Context) error {
	if err := s.adapter.Ping(ctx); err != nil {
		return errors.Join(ErrAdapterUnavailable, err)
	}
	return nil
}

// Close releases the adapter and any client the Store opened itself.
func (s *Store) Close() error {
	return s.closer()
}

var _ Cache[[]byte] = (*Store)(nil)
