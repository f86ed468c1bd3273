package cache

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// maxRelativeExpiration is the longest expiration memcached accepts as a
// number of seconds; longer ones must be sent as a unix timestamp.
const maxRelativeExpiration = 30 * 24 * time.Hour

// probeKey is read by Ping. A miss still proves the servers answer.
const probeKey = "kotori:ping"

// MemcacheClient is the subset of *memcache.Client used by Memcached.
type MemcacheClient interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
	Add(item *memcache.Item) error
	Delete(key string) error
	Increment(key string, delta uint64) (uint64, error)
	Decrement(key string, delta uint64) (uint64, error)
	DeleteAll() error
}

// MemcachedOption configures a Memcached cache.
type MemcachedOption func(*memcachedOptions)

type memcachedOptions struct {
	prefix     string
	servers    []string
	defaultTTL time.Duration
}

// WithMemcachedDefaultTTL sets the TTL used when Set gets a zero TTL.
// Default 1h.
func WithMemcachedDefaultTTL(d time.Duration) MemcachedOption {
	return func(o *memcachedOptions) {
		o.defaultTTL = d
	}
}

// WithMemcachedPrefix namespaces keys as "{prefix}:{key}".
func WithMemcachedPrefix(prefix string) MemcachedOption {
	return func(o *memcachedOptions) {
		o.prefix = prefix
	}
}

// WithMemcachedServers records the server list reported by Info.
func WithMemcachedServers(servers ...string) MemcachedOption {
	return func(o *memcachedOptions) {
		o.servers = servers
	}
}

// Memcached is a cache stored in memcached.
type Memcached[V any] struct {
	client    MemcacheClient
	marshaler Marshaler[V]
	opts      memcachedOptions
}

// NewMemcached creates a Memcached cache over client, usually a
// *memcache.Client from memcache.New. A nil marshaler means JSON.
func NewMemcached[V any](client MemcacheClient, m Marshaler[V], opts ...MemcachedOption) *Memcached[V] {
	o := memcachedOptions{defaultTTL: time.Hour}
	for _, opt := range opts {
		opt(&o)
	}
	if m == nil {
		m = jsonMarshaler[V]{}
	}
	return &Memcached[V]{client: client, marshaler: m, opts: o}
}

func (c *Memcached[V]) Get(_ context.Context, key string) (V, error) {
	var zero V
	item, err := c.client.Get(c.key(key))
	if errors.Is(err, memcache.ErrCacheMiss) {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, err
	}
	return c.marshaler.Unmarshal(item.Value)
}

func (c *Memcached[V]) Set(_ context.Context, key string, value V, ttl time.Duration) error {
	data, err := c.marshaler.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(&memcache.Item{
		Key:        c.key(key),
		Value:      data,
		Expiration: c.expiration(ttl),
	})
}

func (c *Memcached[V]) Delete(_ context.Context, key string) error {
	err := c.client.Delete(c.key(key))
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil
	}
	return err
}

func (c *Memcached[V]) Has(_ context.Context, key string) (bool, error) {
	_, err := c.client.Get(c.key(key))
	if errors.Is(err, memcache.ErrCacheMiss) {
		return false, nil
	}
	return err == nil, err
}

// Increment adds delta to the integer stored at key. Missing keys are
// created with the default TTL. Memcached never goes below zero.
func (c *Memcached[V]) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	n, err := c.incr(key, delta)
	if !errors.Is(err, memcache.ErrCacheMiss) {
		return n, err
	}

	start := max(delta, 0)
	err = c.client.Add(&memcache.Item{
		Key:        c.key(key),
		Value:      []byte(strconv.FormatInt(start, 10)),
		Expiration: c.expiration(0),
	})
	if errors.Is(err, memcache.ErrNotStored) {
		// Created concurrently; apply the delta to it.
		return c.incr(key, delta)
	}
	if err != nil {
		return 0, err
	}
	return start, nil
}

func (c *Memcached[V]) incr(key string, delta int64) (int64, error) {
	var (
		n   uint64
		err error
	)
	if delta >= 0 {
		n, err = c.client.Increment(c.key(key), uint64(delta))
	} else {
		n, err = c.client.Decrement(c.key(key), uint64(-delta))
	}
	if err != nil {
		if strings.Contains(err.Error(), "non-numeric") {
			return 0, errors.Join(ErrNotInteger, err)
		}
		return 0, err
	}
	if n > math.MaxInt64 {
		return 0, ErrNotInteger
	}
	return int64(n), nil
}

// Ping reads a probe key; a miss still counts as reachable.
func (c *Memcached[V]) Ping(_ context.Context) error {
	_, err := c.client.Get(probeKey)
	if err == nil || errors.Is(err, memcache.ErrCacheMiss) {
		return nil
	}
	return err
}

// Info reports the configured servers. Memcached does not expose a key
// count through the client, so Entries is -1.
func (c *Memcached[V]) Info(_ context.Context) (Info, error) {
	return Info{
		Adapter: AdapterMemcached,
		Entries: -1,
		Details: map[string]string{"servers": strings.Join(c.opts.servers, ",")},
	}, nil
}

// Metadata returns the size of key. Memcached does not report expiration.
func (c *Memcached[V]) Metadata(_ context.Context, key string) (Metadata, error) {
	item, err := c.client.Get(c.key(key))
	if errors.Is(err, memcache.ErrCacheMiss) {
		return Metadata{}, ErrNotFound
	}
	if err != nil {
		return Metadata{}, err
	}
	return Metadata{Key: key, Size: len(item.Value)}, nil
}

// Clear flushes every server, including keys outside the prefix.
func (c *Memcached[V]) Clear(_ context.Context) error {
	return c.client.DeleteAll()
}

// Close does nothing; memcache clients hold no resources worth releasing.
func (c *Memcached[V]) Close() error {
	return nil
}

func (c *Memcached[V]) key(key string) string {
	if c.opts.prefix == "" {
		return key
	}
	return c.opts.prefix + ":" + key
}

func (c *Memcached[V]) expiration(ttl time.Duration) int32 {
	if ttl == 0 {
		ttl = c.opts.defaultTTL
	}
	if ttl < 0 {
		return 0
	}
	if ttl > maxRelativeExpiration {
		return int32(time.Now().Add(ttl).Unix())
	}
	return int32(max((ttl+time.Second-1)/time.Second, 1))
}

var (
	_ Cache[any] = (*Memcached[any])(nil)
	_ Adapter    = (*Memcached[[]byte])(nil)
)
