// Package session holds server-side session state and its persistence.
//
// A [Session] is identified by an ID and carried by a separate cookie
// token that can be rotated. Values written with SetValue mark the session
// dirty; the application saves dirty sessions before the response is
// written.
//
// [CacheStore] persists sessions through any cache backend, so sessions
// live in memcached, Redis or process memory depending on the cache
// configuration:
//
//	c, _ := cache.New(ctx, cfg.Cache)
//	store := session.NewCacheStore(c, session.WithPrefix("sess_"))
//
// CacheStore also exposes the raw Read/Write/Destroy/GC handler operations
// for data that is not a Session value.
package session
