package internal

import (
	"maps"

	"github.com/dmitrymomot/kotori/pkg/db"
	"github.com/dmitrymomot/kotori/pkg/health"
)

// Default health check paths.
const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// healthConfig holds health check endpoint configuration.
type healthConfig struct {
	checks        health.Checks
	livenessPath  string
	readinessPath string
	skipBuiltin   bool
}

// HealthOption configures health check endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithReadinessCheck adds a named readiness check.
// Checks run in parallel during readiness probe.
//
// Example:
//
//	kotori.WithReadinessCheck("redis", redis.Healthcheck(client))
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return func(c *healthConfig) {
		if name != "" && fn != nil {
			c.checks[name] = fn
		}
	}
}

// WithoutBuiltinChecks disables the "cache" and "db" readiness checks
// added for the App's own cache and database.
func WithoutBuiltinChecks() HealthOption {
	return func(c *healthConfig) {
		c.skipBuiltin = true
	}
}

func newHealthConfig(opts ...HealthOption) *healthConfig {
	cfg := &healthConfig{
		livenessPath:  defaultLivenessPath,
		readinessPath: defaultReadinessPath,
		checks:        make(health.Checks),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// allChecks returns the configured checks plus the built-in ones for the
// App's cache and database. Configured checks win on name clashes.
func (c *healthConfig) allChecks(a *App) health.Checks {
	checks := make(health.Checks, len(c.checks)+2)
	if !c.skipBuiltin {
		if a.cache != nil {
			checks["cache"] = a.cache.Healthcheck
		}
		if a.db != nil {
			checks["db"] = db.Healthcheck(a.db)
		}
	}
	maps.Copy(checks, c.checks)
	return checks
}
