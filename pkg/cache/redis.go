package cache

import (
	"bufio"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a cache stored in Redis. Values are encoded with the Marshaler
// given to NewRedis, JSON by default.
type Redis[V any] struct {
	client    redis.UniversalClient
	marshaler Marshaler[V]
	opts      redisOptions
}

// NewRedis creates a Redis cache over client. A nil marshaler means JSON.
//
//	client := redis.MustOpen(ctx, cfg.RedisURL)
//	users := cache.NewRedis[User](client, nil, cache.WithPrefix("users"))
func NewRedis[V any](client redis.UniversalClient, m Marshaler[V], opts ...RedisOption) *Redis[V] {
	o := redisOptions{defaultTTL: time.Hour}
	for _, opt := range opts {
		opt(&o)
	}
	if m == nil {
		m = jsonMarshaler[V]{}
	}
	return &Redis[V]{client: client, marshaler: m, opts: o}
}

func (r *Redis[V]) Get(ctx context.Context, key string) (V, error) {
	var zero V
	data, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return zero, ErrNotFound
	}
	if err != nil {
		return zero, err
	}
	return r.marshaler.Unmarshal(data)
}

func (r *Redis[V]) Set(ctx context.Context, key string, value V, ttl time.Duration) error {
	data, err := r.marshaler.Marshal(value)
	if err != nil {
		return err
	}
	if ttl == 0 {
		ttl = r.opts.defaultTTL
	}
	// Redis treats 0 as "no expiration".
	return r.client.Set(ctx, r.key(key), data, max(ttl, 0)).Err()
}

func (r *Redis[V]) Delete(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.key(key)).Err()
}

func (r *Redis[V]) Has(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Exists(ctx, r.key(key)).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Increment adds delta to the integer stored at key with INCRBY.
func (r *Redis[V]) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	n, err := r.client.IncrBy(ctx, r.key(key), delta).Result()
	if err != nil && strings.Contains(err.Error(), "not an integer") {
		return 0, errors.Join(ErrNotInteger, err)
	}
	return n, err
}

// Ping checks that the server answers.
func (r *Redis[V]) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Info reports the key count of the current database and the server
// section of INFO.
func (r *Redis[V]) Info(ctx context.Context) (Info, error) {
	n, err := r.client.DBSize(ctx).Result()
	if err != nil {
		return Info{}, err
	}
	raw, err := r.client.Info(ctx, "server").Result()
	if err != nil {
		return Info{}, err
	}
	return Info{Adapter: AdapterRedis, Entries: n, Details: parseRedisInfo(raw)}, nil
}

// Metadata returns the size and expiration of key.
func (r *Redis[V]) Metadata(ctx context.Context, key string) (Metadata, error) {
	k := r.key(key)
	size, err := r.client.StrLen(ctx, k).Result()
	if err != nil {
		return Metadata{}, err
	}
	ttl, err := r.client.PTTL(ctx, k).Result()
	if err != nil {
		return Metadata{}, err
	}
	// PTTL reports -2 for missing keys and -1 for keys without expiry.
	if ttl == -2 {
		return Metadata{}, ErrNotFound
	}
	md := Metadata{Key: key, Size: int(size)}
	if ttl > 0 {
		md.ExpiresAt = time.Now().Add(ttl)
	}
	return md, nil
}

// Clear deletes the prefixed keys with SCAN, or flushes the database when
// no prefix is set.
func (r *Redis[V]) Clear(ctx context.Context) error {
	if r.opts.prefix == "" {
		return r.client.FlushDB(ctx).Err()
	}

	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, r.opts.prefix+":*", 100).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if cursor = next; cursor == 0 {
			return nil
		}
	}
}

// Close does nothing; the client is closed by its owner.
func (r *Redis[V]) Close() error {
	return nil
}

func (r *Redis[V]) key(key string) string {
	if r.opts.prefix == "" {
		return key
	}
	return r.opts.prefix + ":" + key
}

func parseRedisInfo(raw string) map[string]string {
	out := make(map[string]string)
	sc := bufio.NewScanner(strings.NewReader(raw))
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if k, v, ok := strings.Cut(line, ":"); ok {
			out[k] = v
		}
	}
	return out
}

var (
	_ Cache[any] = (*Redis[any])(nil)
	_ Adapter    = (*Redis[[]byte])(nil)
)
