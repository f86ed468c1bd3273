// Package health provides liveness and readiness probes.
//
// [LivenessHandler] always answers OK while the process runs.
// [ReadinessHandler] runs a set of named [Checks] concurrently and answers
// 503 when any of them fails. Checks share the func(context.Context) error
// signature returned by db.Healthcheck, redis.Healthcheck and
// cache.Store.Healthcheck:
//
//	r.Get("/health/ready", health.ReadinessHandler(health.Checks{
//	    "db":    db.Healthcheck(conn),
//	    "cache": store.Healthcheck,
//	}))
//
// Responses are plain text unless the client sends Accept: application/json
// or ?format=json, in which case every check is reported individually:
//
//	{"status":"unhealthy","checks":{"db":{"status":"healthy"},"cache":{"status":"unhealthy","error":"..."}}}
//
// [Run] exposes the same aggregation for non-HTTP callers such as the
// kotori health command.
package health
