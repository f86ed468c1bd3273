package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"

	"github.com/dmitrymomot/kotori"
	"github.com/dmitrymomot/kotori/middlewares"
	"github.com/dmitrymomot/kotori/pkg/cache"
	"github.com/dmitrymomot/kotori/pkg/config"
	"github.com/dmitrymomot/kotori/pkg/cookie"
	"github.com/dmitrymomot/kotori/pkg/db"
	"github.com/dmitrymomot/kotori/pkg/health"
	"github.com/dmitrymomot/kotori/pkg/route"
	"github.com/dmitrymomot/kotori/pkg/session"
)

// services holds the optional backends of the app. Either may be nil.
type services struct {
	cache *cache.Store
	db    *db.DB
}

func (s *services) Close() {
	if s.cache != nil {
		_ = s.cache.Close()
	}
	if s.db != nil {
		_ = s.db.Close()
	}
}

func (s *services) checks() health.Checks {
	checks := health.Checks{}
	if s.cache != nil {
		checks["cache"] = s.cache.Healthcheck
	}
	if s.db != nil {
		checks["db"] = db.Healthcheck(s.db)
	}
	return checks
}

// openServices connects the configured cache and database. A cache that
// cannot be reached is skipped with a warning; a configured database that
// cannot be reached is an error.
func openServices(ctx context.Context, cfg *config.Config, log *slog.Logger) (*services, error) {
	svc := &services{}

	store, err := cache.New(ctx, cfg.Cache, cache.WithStoreLogger(log))
	switch {
	case err == nil:
		svc.cache = store
	case errors.Is(err, cache.ErrAdapterUnavailable):
		log.WarnContext(ctx, "cache disabled", slog.String("adapter", cfg.Cache.Adapter), slog.Any("error", err))
	default:
		return nil, err
	}

	d, err := db.Open(ctx, cfg.DB, db.WithLogger(log))
	switch {
	case err == nil:
		svc.db = d
	case errors.Is(err, db.ErrNotConfigured):
	default:
		svc.Close()
		return nil, err
	}

	return svc, nil
}

func loadRoutes(path string) (*route.Table, error) {
	if path != "" {
		return route.LoadFile(path)
	}
	return route.LoadYAML(bytes.NewReader(defaultRoutes))
}

// buildApp wires configuration, backends and controllers into an App.
// The App owns the returned services and closes them when Run returns.
func buildApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*kotori.App, *services, error) {
	table, err := loadRoutes(cfg.App.RoutesFile)
	if err != nil {
		return nil, nil, err
	}

	svc, err := openServices(ctx, cfg, log)
	if err != nil {
		return nil, nil, err
	}

	cookies, err := cookie.NewFromConfig(cfg.Cookie)
	if err != nil {
		svc.Close()
		return nil, nil, err
	}

	loc, err := cfg.Location()
	if err != nil {
		svc.Close()
		return nil, nil, err
	}

	var errorPage []kotori.ErrorPageOption
	if cfg.App.ErrorTemplate != "" {
		errorPage = append(errorPage, kotori.WithErrorTemplateFile(cfg.App.ErrorTemplate))
	}

	opts := []kotori.Option{
		kotori.WithCustomLogger(log),
		kotori.WithDebug(cfg.App.Debug),
		kotori.WithErrorPage(errorPage...),
		kotori.WithRoutes(table),
		kotori.WithURLMode(cfg.App.URLMode),
		kotori.WithRouteParam(cfg.App.RouteParam),
		kotori.WithTimeZone(loc),
		kotori.WithCookieManager(cookies),
		kotori.WithController("Hello", newHello(svc.db)),
		kotori.WithMiddleware(
			middlewares.RequestID(),
			middlewares.AccessLog(),
			middlewares.Recover(),
			middlewares.Filter(),
		),
		kotori.WithHealthChecks(),
	}
	if svc.cache != nil {
		opts = append(opts, kotori.WithCache(svc.cache))
		if cfg.Session.Enabled {
			store := session.NewCacheStore(svc.cache,
				session.WithPrefix(cfg.Session.Prefix),
				session.WithExpire(cfg.Session.Expire),
			)
			opts = append(opts, kotori.WithSession(store,
				kotori.WithSessionCookieName(cfg.Session.CookieName),
				kotori.WithSessionMaxAge(int(cfg.Session.Expire.Seconds())),
				kotori.WithSessionSecure(cfg.Cookie.Secure),
				kotori.WithSessionSigned(cfg.Session.Signed),
			))
		}
	}
	if svc.db != nil {
		opts = append(opts, kotori.WithDB(svc.db))
	}

	return kotori.New(opts...), svc, nil
}
