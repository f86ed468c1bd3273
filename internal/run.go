package internal

import (
	"errors"
	"io"
	"net/http"

	"github.com/dmitrymomot/kotori/pkg/hostrouter"
)

// ErrNoApps is returned by Run when neither domains nor a fallback are set.
var ErrNoApps = errors.New("kotori: no domains or fallback configured")

// Run starts a multi-domain HTTP server and blocks until shutdown.
// Use this for composing multiple Apps under different domain patterns.
// Resources shared by several Apps are closed once.
//
// Example:
//
//	err := kotori.Run(
//	    kotori.Domain("api.acme.com", api),
//	    kotori.Domain("*.acme.com", website),
//	    kotori.Address(":8080"),
//	    kotori.Logger(log),
//	)
func Run(opts ...RunOption) error {
	cfg := buildRunConfig(opts...)

	var (
		handler http.Handler
		allApps []*App
	)

	switch {
	case len(cfg.domains) > 0:
		routes := make(hostrouter.Routes)
		for pattern, app := range cfg.domains {
			routes[pattern] = app.Router()
			allApps = append(allApps, app)
		}

		var fallback http.Handler
		if cfg.fallback != nil {
			fallback = cfg.fallback.Router()
			allApps = append(allApps, cfg.fallback)
		}
		handler = hostrouter.New(routes, fallback)
	case cfg.fallback != nil:
		handler = cfg.fallback.Router()
		allApps = append(allApps, cfg.fallback)
	default:
		return ErrNoApps
	}

	shutdownHooks := cfg.shutdownHooks
	seen := make(map[io.Closer]bool)
	for _, app := range allApps {
		for _, c := range app.Closers() {
			if seen[c] {
				continue
			}
			seen[c] = true
			shutdownHooks = append(shutdownHooks, closeHook(c))
		}
	}

	return runServer(runtimeConfig{
		handler:         handler,
		address:         cfg.address,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    cfg.startupHooks,
		shutdownHooks:   shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}
