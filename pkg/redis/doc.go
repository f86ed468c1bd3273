// Package redis opens go-redis clients with pooling, startup retries and
// lifecycle hooks.
//
// A client is opened from a URL or from an env-parsed [Config]:
//
//	client, err := redis.Open(ctx, "redis://127.0.0.1:6379/0", redis.WithPoolSize(20))
//
//	var cfg redis.Config // REDIS_URL or REDIS_HOST, REDIS_PORT, REDIS_PASSWORD, REDIS_DB
//	client, err := redis.OpenConfig(ctx, cfg)
//
// Open pings the server and retries with a growing interval until the
// attempts run out, then fails with [ErrConnectionFailed].
//
// [Healthcheck] and [Shutdown] plug the client into the application's
// readiness checks and shutdown hooks:
//
//	app := kotori.New(
//	    kotori.WithHealthChecks(kotori.Checks{"redis": redis.Healthcheck(client)}),
//	    kotori.WithShutdownHook(redis.Shutdown(client)),
//	)
package redis
