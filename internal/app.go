package internal

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/kotori/pkg/cache"
	"github.com/dmitrymomot/kotori/pkg/cookie"
	"github.com/dmitrymomot/kotori/pkg/db"
	"github.com/dmitrymomot/kotori/pkg/handle"
	"github.com/dmitrymomot/kotori/pkg/health"
	"github.com/dmitrymomot/kotori/pkg/logger"
	"github.com/dmitrymomot/kotori/pkg/route"
)

// Default server timeouts (hardcoded, opinionated).
const (
	defaultReadTimeout       = 15 * time.Second
	defaultWriteTimeout      = 30 * time.Second
	defaultIdleTimeout       = 120 * time.Second
	defaultReadHeaderTimeout = 5 * time.Second
	defaultMaxHeaderBytes    = 1 << 20 // 1MB
	defaultShutdownTimeout   = 30 * time.Second
)

// URL modes select where the dispatcher reads the route path from.
const (
	URLModePathInfo    = "path_info"
	URLModeQueryString = "query_string"
)

// DefaultRouteParam is the query parameter holding the route path in
// query_string mode.
const DefaultRouteParam = "_route"

// App orchestrates the application lifecycle.
// It manages HTTP routing, controller dispatch, the error pipeline and
// graceful shutdown. App is immutable after creation.
type App struct {
	router                  chi.Router
	errorHandler            ErrorHandler
	notFoundHandler         HandlerFunc
	methodNotAllowedHandler HandlerFunc
	healthConfig            *healthConfig
	logger                  *slog.Logger
	errors                  *handle.Handler
	errorOpts               []handle.Option
	debug                   bool
	cookieManager           *cookie.Manager
	sessionManager          *SessionManager
	cache                   *cache.Store
	db                      *db.DB
	routes                  *route.Table
	controllers             map[string]Controller
	urlMode                 string
	routeParam              string
	location                *time.Location
	closers                 []io.Closer
	middlewares             []Middleware
	handlers                []Handler
	staticRoutes            []staticRoute
}

// staticRoute represents a static file handler mount point.
type staticRoute struct {
	handler http.Handler
	pattern string
}

// New creates a new application with the given options.
//
// Example:
//
//	app := kotori.New(
//	    kotori.WithRoutes(table),
//	    kotori.WithController("News", news),
//	    kotori.WithDebug(true),
//	)
func New(opts ...Option) *App {
	a := &App{
		router:        chi.NewRouter(),
		logger:        logger.NewNope(),
		cookieManager: cookie.New(),
		controllers:   make(map[string]Controller),
		urlMode:       URLModePathInfo,
		routeParam:    DefaultRouteParam,
		location:      time.Local,
	}

	for _, opt := range opts {
		opt(a)
	}

	a.errors = handle.New(append([]handle.Option{
		handle.WithDebug(a.debug),
		handle.WithLogger(a.logger),
	}, a.errorOpts...)...)

	if a.sessionManager != nil {
		a.sessionManager.bind(a.logger, a.cookieManager)
	}

	a.setupRoutes()
	return a
}

// Router returns the underlying chi.Router for the App.
// This is used internally for composing multi-domain routing.
func (a *App) Router() chi.Router {
	return a.router
}

// ServeHTTP makes App an http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// NewContext creates a Context for w and r outside the router, for
// example to test middleware.
func (a *App) NewContext(w http.ResponseWriter, r *http.Request) Context {
	return newContext(w, r, a)
}

// Routes returns the route table, or nil when none is configured.
func (a *App) Routes() *route.Table {
	return a.routes
}

// Errors returns the error display pipeline.
func (a *App) Errors() *handle.Handler {
	return a.errors
}

// Location returns the application time zone.
func (a *App) Location() *time.Location {
	return a.location
}

// Closers returns the resources closed on shutdown.
// This is used internally for multi-domain runs.
func (a *App) Closers() []io.Closer {
	return a.closers
}

// Run starts a single-domain HTTP server and blocks until shutdown.
// Cache and database handles given to the App are closed after the
// server stops.
//
// Example:
//
//	err := app.Run(":8080", kotori.Logger(log))
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)

	shutdownHooks := cfg.shutdownHooks
	for _, c := range a.closers {
		shutdownHooks = append(shutdownHooks, closeHook(c))
	}

	return runServer(runtimeConfig{
		handler:         a.router,
		address:         addr,
		logger:          cfg.logger,
		shutdownTimeout: cfg.shutdownTimeout,
		startupHooks:    cfg.startupHooks,
		shutdownHooks:   shutdownHooks,
		baseCtx:         cfg.baseCtx,
	})
}

// setupRoutes configures the router with middleware and handlers.
func (a *App) setupRoutes() {
	if a.notFoundHandler != nil {
		a.router.NotFound(a.wrapHandler(a.notFoundHandler))
	} else {
		a.router.NotFound(a.wrapHandler(func(c Context) error {
			return ErrNotFound("Page not found")
		}))
	}
	if a.methodNotAllowedHandler != nil {
		a.router.MethodNotAllowed(a.wrapHandler(a.methodNotAllowedHandler))
	} else {
		a.router.MethodNotAllowed(a.wrapHandler(func(c Context) error {
			return ErrMethodNotAllowed("Method not allowed")
		}))
	}

	for _, mw := range a.middlewares {
		a.router.Use(a.adaptMiddleware(mw))
	}

	for _, sr := range a.staticRoutes {
		a.router.Mount(sr.pattern, sr.handler)
	}

	if a.healthConfig != nil {
		checks := a.healthConfig.allChecks(a)
		a.router.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.router.Get(a.healthConfig.readinessPath, health.ReadinessHandler(checks, health.WithLogger(a.logger)))
	}

	r := &routerAdapter{router: a.router, app: a}
	for _, h := range a.handlers {
		h.Routes(r)
	}

	if a.routes != nil {
		a.router.HandleFunc("/*", a.wrapHandler(a.dispatch))
	}
}

// wrapHandler converts a HandlerFunc to http.HandlerFunc. Returned errors
// and panics go through the error pipeline.
func (a *App) wrapHandler(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := newContext(w, r, a)
		defer a.recoverPanic(c)
		if err := h(c); err != nil {
			a.handleError(c, err)
		}
	}
}

// recoverPanic turns a panic into a fatal report. It must be deferred.
func (a *App) recoverPanic(c *requestContext) {
	p := recover()
	if p == nil {
		return
	}
	if p == http.ErrAbortHandler {
		panic(p)
	}
	a.handleError(c, &panicError{value: p, stack: debug.Stack()})
}

// handleError routes err to the custom error handler, then to the error
// page. Errors after the response is written are only recorded.
func (a *App) handleError(c *requestContext, err error) {
	if c.Written() {
		rep := reportOf(err)
		a.errors.Error(c.Context(), nil, rep)
		return
	}
	if a.errorHandler != nil {
		herr := a.errorHandler(c, err)
		if herr == nil || c.Written() {
			return
		}
		err = herr
	}

	var pv PanicValue
	if errors.As(err, &pv) {
		a.errors.Fatal(c.Response(), c.Request(), pv.PanicValue(), pv.PanicStack())
		return
	}
	a.errors.Exception(c.Response(), c.Request(), err)
}

// PanicValue is implemented by errors carrying a recovered panic.
type PanicValue interface {
	PanicValue() any
	PanicStack() []byte
}

// panicError carries a panic recovered by the App itself.
type panicError struct {
	value any
	stack []byte
}

func (e *panicError) Error() string {
	return handle.FromPanic(e.value, e.stack).Message
}

func (e *panicError) PanicValue() any    { return e.value }
func (e *panicError) PanicStack() []byte { return e.stack }

// reportOf builds the report for err, treating carried panics as fatal.
func reportOf(err error) handle.Report {
	var pv PanicValue
	if errors.As(err, &pv) {
		return handle.FromPanic(pv.PanicValue(), pv.PanicStack())
	}
	return handle.FromError(err)
}

func closeHook(c io.Closer) func(context.Context) error {
	return func(context.Context) error {
		return c.Close()
	}
}

// lookupController finds a controller by name, ignoring case.
func (a *App) lookupController(name string) (Controller, bool) {
	if c, ok := a.controllers[name]; ok {
		return c, true
	}
	for k, c := range a.controllers {
		if strings.EqualFold(k, name) {
			return c, true
		}
	}
	return nil, false
}
