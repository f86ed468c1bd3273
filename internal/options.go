package internal

import (
	"io/fs"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/kotori/pkg/cache"
	"github.com/dmitrymomot/kotori/pkg/cookie"
	"github.com/dmitrymomot/kotori/pkg/db"
	"github.com/dmitrymomot/kotori/pkg/handle"
	"github.com/dmitrymomot/kotori/pkg/logger"
	"github.com/dmitrymomot/kotori/pkg/route"
	"github.com/dmitrymomot/kotori/pkg/session"
)

// Option configures the application.
type Option func(*App)

// WithMiddleware adds global middleware to the application.
// Middleware is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHandlers registers handlers that declare routes.
// Each handler's Routes method is called during setup.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithStaticFiles mounts a static file handler at the given pattern.
// Directory listings are disabled. Files are served with default cache headers.
//
// Example:
//
//	//go:embed public
//	var assets embed.FS
//
//	kotori.New(
//	    kotori.WithStaticFiles("/static/", assets, "public"),
//	)
func WithStaticFiles(pattern string, fsys fs.FS, subDir string) Option {
	return func(a *App) {
		subFS, err := fs.Sub(fsys, subDir)
		if err != nil {
			panic(err)
		}

		fileServer := http.FileServerFS(subFS)

		handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// Block directory listings
			if strings.HasSuffix(r.URL.Path, "/") {
				http.NotFound(w, r)
				return
			}

			w.Header().Set("Cache-Control", "public, max-age=3600")
			w.Header().Set("X-Content-Type-Options", "nosniff")

			fileServer.ServeHTTP(w, r)
		})

		a.staticRoutes = append(a.staticRoutes, staticRoute{handler, pattern})
	}
}

// WithErrorHandler sets a custom error handler for handler errors and
// recovered panics. When it returns an error without writing a response,
// that error is rendered by the built-in error page.
//
// Example:
//
//	kotori.WithErrorHandler(func(c kotori.Context, err error) error {
//	    if c.Header("Accept") != "application/json" {
//	        return err
//	    }
//	    return c.JSON(http.StatusInternalServerError, map[string]string{
//	        "error": err.Error(),
//	    })
//	})
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithNotFoundHandler sets a custom 404 handler.
//
// Example:
//
//	kotori.WithNotFoundHandler(func(c kotori.Context) error {
//	    return c.String(http.StatusNotFound, "Page not found")
//	})
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.notFoundHandler = h
	}
}

// WithMethodNotAllowedHandler sets a custom 405 handler.
//
// Example:
//
//	kotori.WithMethodNotAllowedHandler(func(c kotori.Context) error {
//	    return c.String(http.StatusMethodNotAllowed, "Method not allowed")
//	})
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.methodNotAllowedHandler = h
	}
}

// WithHealthChecks enables health check endpoints with optional configuration.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs all configured checks, plus "cache" and
// "db" when the App has them.
//
// Example:
//
//	kotori.WithHealthChecks(
//	    kotori.WithReadinessCheck("redis", redis.Healthcheck(client)),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		a.healthConfig = newHealthConfig(opts...)
	}
}

// WithLogger creates a logger with a component name and optional extractors.
// The component name is added to every log entry for easy filtering.
// Extractors pull values from context (e.g., request_id, user_id).
//
// Example:
//
//	kotori.New(
//	    kotori.WithLogger("api", requestIDExtractor, userIDExtractor),
//	)
func WithLogger(component string, extractors ...logger.ContextExtractor) Option {
	return func(a *App) {
		a.logger = logger.New(extractors...).With("component", component)
	}
}

// WithCustomLogger sets a fully custom logger.
// Use this when you need complete control over logging configuration.
//
// Example:
//
//	customLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
//	kotori.New(
//	    kotori.WithCustomLogger(customLogger),
//	)
func WithCustomLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithCookieOptions configures the cookie manager.
//
// Example:
//
//	kotori.New(
//	    kotori.WithCookieOptions(
//	        kotori.WithCookieSecret(os.Getenv("COOKIE_SECRET")),
//	        kotori.WithCookieSecure(true),
//	    ),
//	)
func WithCookieOptions(opts ...cookie.Option) Option {
	return func(a *App) {
		a.cookieManager = cookie.New(opts...)
	}
}

// WithCookieManager sets a prebuilt cookie manager, such as one from
// cookie.NewFromConfig.
func WithCookieManager(m *cookie.Manager) Option {
	return func(a *App) {
		if m != nil {
			a.cookieManager = m
		}
	}
}

// WithSession enables server-side session management.
// Sessions are loaded lazily and saved automatically before the response is written.
//
// Example:
//
//	store := session.NewCacheStore(cache.NewMemoryAdapter())
//	kotori.New(
//	    kotori.WithSession(store,
//	        kotori.WithSessionCookieName("__sid"),
//	        kotori.WithSessionMaxAge(86400 * 30),
//	        kotori.WithSessionSecure(true),
//	    ),
//	)
func WithSession(store session.Store, opts ...SessionOption) Option {
	return func(a *App) {
		a.sessionManager = NewSessionManager(store, opts...)
	}
}

// WithRoutes sets the route table the dispatcher resolves requests and
// CLI calls through. Paths no handler claims are dispatched to
// controllers registered with WithController.
//
// Example:
//
//	table, err := route.LoadFile("config/routes.yaml")
//	kotori.New(kotori.WithRoutes(table))
func WithRoutes(t *route.Table) Option {
	return func(a *App) {
		a.routes = t
	}
}

// WithController registers a controller under name. Names are matched
// against route targets without regard to case.
//
// Example:
//
//	kotori.WithController("News", &controllers.News{Repo: repo})
func WithController(name string, c Controller) Option {
	return func(a *App) {
		if name != "" && c != nil {
			a.controllers[name] = c
		}
	}
}

// WithControllers registers several controllers at once.
func WithControllers(cs map[string]Controller) Option {
	return func(a *App) {
		for name, c := range cs {
			if name != "" && c != nil {
				a.controllers[name] = c
			}
		}
	}
}

// WithURLMode selects where the dispatcher reads the route path:
// URLModePathInfo (the request path, default) or URLModeQueryString (a
// query parameter, see WithRouteParam). Unknown modes are ignored.
func WithURLMode(mode string) Option {
	return func(a *App) {
		switch mode {
		case URLModePathInfo, URLModeQueryString:
			a.urlMode = mode
		}
	}
}

// WithRouteParam sets the query parameter used in query_string mode.
// Defaults to "_route".
func WithRouteParam(name string) Option {
	return func(a *App) {
		if name != "" {
			a.routeParam = name
		}
	}
}

// WithDebug switches the error page between the diagnostic view with
// highlighted source and the sanitized production page.
func WithDebug(debug bool) Option {
	return func(a *App) {
		a.debug = debug
	}
}

// WithErrorPage configures the error display pipeline.
//
// Example:
//
//	kotori.WithErrorPage(
//	    handle.WithTemplateFile("views/error.html"),
//	    handle.WithDebugHeader("X-Debug"),
//	)
func WithErrorPage(opts ...handle.Option) Option {
	return func(a *App) {
		a.errorOpts = append(a.errorOpts, opts...)
	}
}

// WithCache sets the application cache returned by Context.Cache.
// The store is closed when the server shuts down.
//
// Example:
//
//	store, err := cache.New(ctx, cache.Config{Adapter: "redis", Prefix: "app:"})
//	kotori.New(kotori.WithCache(store))
func WithCache(s *cache.Store) Option {
	return func(a *App) {
		if s != nil {
			a.cache = s
			a.closers = append(a.closers, s)
		}
	}
}

// WithDB sets the application database returned by Context.DB.
// The handle is closed when the server shuts down.
func WithDB(d *db.DB) Option {
	return func(a *App) {
		if d != nil {
			a.db = d
			a.closers = append(a.closers, d)
		}
	}
}

// WithTimeZone sets the location used by Context.Now.
// Defaults to time.Local.
func WithTimeZone(loc *time.Location) Option {
	return func(a *App) {
		if loc != nil {
			a.location = loc
		}
	}
}
