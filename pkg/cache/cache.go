package cache

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"
)

// Cache is a key-value cache with per-entry TTL.
//
// TTL passed to Set:
//   - positive: the entry expires after ttl
//   - zero: the implementation's default TTL applies
//   - negative: the entry never expires
type Cache[V any] interface {
	// Get returns ErrNotFound for missing or expired keys.
	Get(ctx context.Context, key string) (V, error)
	Set(ctx context.Context, key string, value V, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Has(ctx context.Context, key string) (bool, error)
	Clear(ctx context.Context) error
	Close() error
}

// Counter is implemented by caches that can atomically add to an integer
// entry. A missing key counts from zero.
type Counter interface {
	Increment(ctx context.Context, key string, delta int64) (int64, error)
}

// Info describes the state of a cache backend.
type Info struct {
	Details map[string]string
	Adapter string
	Entries int64
}

// Metadata describes a single cache entry.
// A zero ExpiresAt means the entry never expires or the backend cannot tell.
type Metadata struct {
	ExpiresAt time.Time
	Key       string
	Size      int
}

// Marshaler converts values to bytes for byte-oriented backends.
type Marshaler[V any] interface {
	Marshal(v V) ([]byte, error)
	Unmarshal(data []byte) (V, error)
}

type jsonMarshaler[V any] struct{}

func (jsonMarshaler[V]) Marshal(v V) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Join(ErrMarshal, err)
	}
	return data, nil
}

func (jsonMarshaler[V]) Unmarshal(data []byte) (V, error) {
	var v V
	if err := json.Unmarshal(data, &v); err != nil {
		return v, errors.Join(ErrUnmarshal, err)
	}
	return v, nil
}

// RawMarshaler stores byte slices as they are.
type RawMarshaler struct{}

func (RawMarshaler) Marshal(v []byte) ([]byte, error)    { return v, nil }
func (RawMarshaler) Unmarshal(data []byte) ([]byte, error) { return data, nil }

// GetJSON reads a JSON-encoded value from a byte cache.
func GetJSON[V any](ctx context.Context, c Cache[[]byte], key string) (V, error) {
	var zero V
	data, err := c.Get(ctx, key)
	if err != nil {
		return zero, err
	}
	return jsonMarshaler[V]{}.Unmarshal(data)
}

// SetJSON stores v JSON-encoded in a byte cache.
func SetJSON[V any](ctx context.Context, c Cache[[]byte], key string, v V, ttl time.Duration) error {
	data, err := jsonMarshaler[V]{}.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, key, data, ttl)
}

var sfGroup singleflight.Group

type loaded[V any] struct {
	val V
	ttl time.Duration
}

// GetOrSet returns the cached value for key or computes it with fn.
// Concurrent misses for the same key share a single fn call.
// Values are not cached when fn fails.
func GetOrSet[V any](ctx context.Context, c Cache[V], key string, fn func(ctx context.Context) (V, time.Duration, error)) (V, error) {
	if v, err := c.Get(ctx, key); err == nil {
		return v, nil
	}

	res, err, _ := sfGroup.Do(flightKey(c, key), func() (any, error) {
		val, ttl, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return loaded[V]{val: val, ttl: ttl}, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}

	r := res.(loaded[V])
	_ = c.Set(ctx, key, r.val, r.ttl)
	return r.val, nil
}

// flightKey scopes a singleflight call to the cache instance, its value
// type and the stored key, including the cache prefix when there is one.
func flightKey[V any](c Cache[V], key string) string {
	if p, ok := c.(interface{ Prefix() string }); ok {
		key = p.Prefix() + key
	}
	id := "-"
	if v := reflect.ValueOf(c); v.Kind() == reflect.Pointer {
		id = strconv.FormatUint(uint64(v.Pointer()), 16)
	}
	return id + "|" + reflect.TypeFor[V]().String() + "|" + key
}
