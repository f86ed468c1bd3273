// Package cache provides the application cache and the generic caches it
// is built from.
//
// # Store
//
// [Store] is the facade handlers use. The backend is chosen by a
// configuration string and every key gets the configured prefix:
//
//	store, err := cache.New(ctx, cache.Config{
//	    Adapter: "redis", // "memory", "redis" or "memcached" (default)
//	    Prefix:  "shop:",
//	    RedisURL: os.Getenv("REDIS_URL"),
//	})
//
//	_ = store.Set(ctx, "greeting", []byte("hello"), 0) // 60s default TTL
//	n, _ := store.Increment(ctx, "visits", 1)
//	page, _ := store.Remember(ctx, "home", time.Minute, renderHome)
//
// New fails with [ErrUnsupportedAdapter] for unknown names and
// [ErrAdapterUnavailable] when the backend does not answer.
//
// # Generic caches
//
// [Memory], [Redis] and [Memcached] implement [Cache] for any value type.
// Memory keeps entries in process with LRU eviction and a sweeper
// goroutine; Redis and Memcached encode values with a [Marshaler], JSON by
// default:
//
//	users := cache.NewRedis[User](client, nil, cache.WithPrefix("users"))
//	u, err := cache.GetOrSet(ctx, users, id, func(ctx context.Context) (User, time.Duration, error) {
//	    u, err := repo.FindUser(ctx, id)
//	    return u, 5 * time.Minute, err
//	})
//
// GetOrSet runs one loader per key at a time. Missing entries are reported
// as [ErrNotFound].
package cache
