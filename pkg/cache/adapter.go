package cache

import (
	"context"
	"strconv"
)

// Adapter names accepted by Config.Adapter.
const (
	AdapterMemory    = "memory"
	AdapterRedis     = "redis"
	AdapterMemcached = "memcached"
)

// Adapter is a byte cache backend usable by Store.
type Adapter interface {
	Cache[[]byte]
	Counter
	Ping(ctx context.Context) error
	Info(ctx context.Context) (Info, error)
	Metadata(ctx context.Context, key string) (Metadata, error)
}

// MemoryAdapter adapts a Memory byte cache to Adapter.
type MemoryAdapter struct {
	*Memory[[]byte]
}

// NewMemoryAdapter creates an in-process Adapter.
func NewMemoryAdapter(opts ...MemoryOption) *MemoryAdapter {
	return &MemoryAdapter{Memory: NewMemory[[]byte](opts...)}
}

// Increment adds delta to the decimal integer stored at key.
func (a *MemoryAdapter) Increment(ctx context.Context, key string, delta int64) (int64, error) {
	var n int64
	_, err := a.Update(ctx, key, func(old []byte, ok bool) ([]byte, error) {
		var cur int64
		if ok {
			v, err := strconv.ParseInt(string(old), 10, 64)
			if err != nil {
				return nil, ErrNotInteger
			}
			cur = v
		}
		n = cur + delta
		return []byte(strconv.FormatInt(n, 10)), nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Ping fails only once the cache is closed.
func (a *MemoryAdapter) Ping(_ context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return ErrClosed
	}
	return nil
}

func (a *MemoryAdapter) Info(_ context.Context) (Info, error) {
	return Info{
		Adapter: AdapterMemory,
		Entries: int64(a.Len()),
		Details: map[string]string{"max_entries": strconv.Itoa(a.opts.maxEntries)},
	}, nil
}

func (a *MemoryAdapter) Metadata(ctx context.Context, key string) (Metadata, error) {
	v, err := a.Get(ctx, key)
	if err != nil {
		return Metadata{}, err
	}
	exp, _ := a.Expiry(key)
	return Metadata{Key: key, Size: len(v), ExpiresAt: exp}, nil
}

var _ Adapter = (*MemoryAdapter)(nil)
