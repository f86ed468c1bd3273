package kotori

import (
	"context"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/dmitrymomot/kotori/internal"
	"github.com/dmitrymomot/kotori/pkg/cache"
	"github.com/dmitrymomot/kotori/pkg/cookie"
	"github.com/dmitrymomot/kotori/pkg/db"
	"github.com/dmitrymomot/kotori/pkg/handle"
	"github.com/dmitrymomot/kotori/pkg/health"
	"github.com/dmitrymomot/kotori/pkg/logger"
	"github.com/dmitrymomot/kotori/pkg/route"
	"github.com/dmitrymomot/kotori/pkg/session"
)

// Type aliases - public API
type (
	// App orchestrates the application lifecycle.
	// It manages routing, controller dispatch, error display and graceful shutdown.
	App = internal.App

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Context provides request/response access and helper methods.
	Context = internal.Context

	// Handler declares routes on a router.
	Handler = internal.Handler

	// HandlerFunc is the signature for route handlers and controller actions.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// ErrorHandler handles errors returned from handlers.
	ErrorHandler = internal.ErrorHandler

	// Controller resolves action names to handlers.
	Controller = internal.Controller

	// ControllerFunc is a controller with a single action.
	ControllerFunc = internal.ControllerFunc

	// Actions is a Controller backed by a map of action names.
	Actions = internal.Actions

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// HTTPError is an error with an HTTP status code.
	HTTPError = internal.HTTPError

	// HTTPErrorOption configures an HTTPError.
	HTTPErrorOption = internal.HTTPErrorOption

	// ContextExtractor extracts a slog attribute from context.
	// Used with WithLogger to add request-scoped values to logs.
	ContextExtractor = logger.ContextExtractor

	// CookieOption configures the cookie manager.
	CookieOption = cookie.Option

	// SessionOption configures the session manager.
	SessionOption = internal.SessionOption

	// Session represents a user session.
	Session = session.Session

	// SessionStore defines the interface for session persistence.
	SessionStore = session.Store

	// ResponseWriter wraps http.ResponseWriter with write hooks.
	ResponseWriter = internal.ResponseWriter

	// RouteTable maps request paths to controller targets.
	RouteTable = route.Table

	// RouteTarget is a resolved controller/action with arguments.
	RouteTarget = route.Target

	// ErrorPageOption configures the error display pipeline.
	ErrorPageOption = handle.Option

	// ErrorKind classifies reported problems.
	ErrorKind = handle.Kind
)

// URL modes for route resolution.
const (
	// URLModePathInfo matches the request path. This is the default.
	URLModePathInfo = internal.URLModePathInfo
	// URLModeQueryString matches the value of the route query parameter.
	URLModeQueryString = internal.URLModeQueryString
)

// Report kinds accepted by Context.Report.
const (
	KindError       = handle.KindError
	KindWarning     = handle.KindWarning
	KindNotice      = handle.KindNotice
	KindUserError   = handle.KindUserError
	KindUserWarning = handle.KindUserWarning
	KindUserNotice  = handle.KindUserNotice
	KindDeprecated  = handle.KindDeprecated
)

// Constructors

// New creates a new application with the given options.
// The App is immutable after creation.
//
// Example:
//
//	app := kotori.New(
//	    kotori.WithRoutes(table),
//	    kotori.WithController("Hello", controllers.NewHello(repo)),
//	    kotori.WithMiddleware(middlewares.RequestID()),
//	)
//
//	err := app.Run(":8080", kotori.Logger(log))
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// Run starts a multi-domain HTTP server and blocks until shutdown.
// Each domain pattern selects its own App, with its own route table and
// controllers.
//
// Example:
//
//	err := kotori.Run(
//	    kotori.Domain("admin.acme.com", admin),
//	    kotori.Fallback(site),
//	    kotori.Address(":8080"),
//	)
func Run(opts ...RunOption) error {
	return internal.Run(opts...)
}

// Errors returned by the App.
var (
	ErrNoApps   = internal.ErrNoApps
	ErrNoRoutes = internal.ErrNoRoutes
	ErrStartup  = internal.ErrStartup
)

// App options

// WithMiddleware adds global middleware to the application.
// The first middleware is the outermost.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithHandlers registers handlers that declare routes in code.
// They take precedence over the route table.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithRoutes sets the route table resolved by the catch-all dispatcher.
func WithRoutes(t *RouteTable) Option {
	return internal.WithRoutes(t)
}

// WithController registers a controller under name. Lookup ignores case.
func WithController(name string, c Controller) Option {
	return internal.WithController(name, c)
}

// WithControllers registers several controllers at once.
func WithControllers(cs map[string]Controller) Option {
	return internal.WithControllers(cs)
}

// WithURLMode selects URLModePathInfo or URLModeQueryString.
func WithURLMode(mode string) Option {
	return internal.WithURLMode(mode)
}

// WithRouteParam sets the query parameter read in query string mode.
// Defaults to "_route".
func WithRouteParam(name string) Option {
	return internal.WithRouteParam(name)
}

// WithDebug toggles the detailed error page and the debug header.
func WithDebug(debug bool) Option {
	return internal.WithDebug(debug)
}

// WithErrorPage configures the error display pipeline.
//
// Example:
//
//	kotori.WithErrorPage(
//	    kotori.WithErrorTemplateFile("views/error.html"),
//	    kotori.WithErrorMinify(true),
//	)
func WithErrorPage(opts ...ErrorPageOption) Option {
	return internal.WithErrorPage(opts...)
}

// WithErrorTemplateFile renders error pages with the template at path.
func WithErrorTemplateFile(path string) ErrorPageOption {
	return handle.WithTemplateFile(path)
}

// WithErrorMinify toggles HTML compression of error pages.
func WithErrorMinify(enabled bool) ErrorPageOption {
	return handle.WithMinify(enabled)
}

// WithErrorDebugHeader renames the debug response header.
func WithErrorDebugHeader(name string) ErrorPageOption {
	return handle.WithDebugHeader(name)
}

// WithCache attaches a cache store, available via c.Cache().
// The store is closed on shutdown.
func WithCache(s *cache.Store) Option {
	return internal.WithCache(s)
}

// WithDB attaches a database, available via c.DB().
// The handle is closed on shutdown.
func WithDB(d *db.DB) Option {
	return internal.WithDB(d)
}

// WithTimeZone sets the location used by c.Now().
func WithTimeZone(loc *time.Location) Option {
	return internal.WithTimeZone(loc)
}

// WithStaticFiles mounts a static file handler at the given pattern.
// Directory listings are disabled.
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
	return internal.WithStaticFiles(pattern, fsys, subDir)
}

// WithErrorHandler sets a custom error handler for handler errors.
// Returning nil or writing a response ends error handling; a returned
// error is rendered by the error page.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

// WithMethodNotAllowedHandler sets a custom 405 handler.
func WithMethodNotAllowedHandler(h HandlerFunc) Option {
	return internal.WithMethodNotAllowedHandler(h)
}

// WithHealthChecks enables health check endpoints with optional configuration.
// Liveness (/health/live): Always returns OK if process is running.
// Readiness (/health/ready): Runs the configured checks plus cache and db.
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithLogger creates a logger with a component name and optional extractors.
//
// Example:
//
//	kotori.New(
//	    kotori.WithLogger("web", middlewares.RequestIDExtractor()),
//	)
func WithLogger(component string, extractors ...ContextExtractor) Option {
	return internal.WithLogger(component, extractors...)
}

// WithCustomLogger sets a fully custom logger.
func WithCustomLogger(l *slog.Logger) Option {
	return internal.WithCustomLogger(l)
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
func WithCookieOptions(opts ...CookieOption) Option {
	return internal.WithCookieOptions(opts...)
}

// WithCookieManager uses a prepared cookie manager.
func WithCookieManager(m *cookie.Manager) Option {
	return internal.WithCookieManager(m)
}

// Health check options

// WithLivenessPath sets a custom liveness endpoint path.
// Defaults to "/health/live".
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath sets a custom readiness endpoint path.
// Defaults to "/health/ready".
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// WithReadinessCheck adds a named readiness check.
func WithReadinessCheck(name string, fn health.CheckFunc) HealthOption {
	return internal.WithReadinessCheck(name, fn)
}

// WithoutBuiltinChecks drops the cache and db readiness checks.
func WithoutBuiltinChecks() HealthOption {
	return internal.WithoutBuiltinChecks()
}

// Run options

// Address sets the HTTP server address.
// Defaults to ":8080".
func Address(addr string) RunOption {
	return internal.Address(addr)
}

// Logger sets the server logger.
// If nil, logging is disabled.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout sets the timeout for graceful shutdown.
// Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// StartupHook registers a function run after the port is bound and before
// serving requests. A failing hook stops the server.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook registers a cleanup function to run during shutdown.
//
// Example:
//
//	kotori.ShutdownHook(redis.Shutdown(client))
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// Domain maps a host pattern to an App.
// Patterns: "api.example.com" (exact) or "*.example.com" (wildcard)
func Domain(pattern string, app *App) RunOption {
	return internal.Domain(pattern, app)
}

// Fallback sets the App for requests that match no domain.
func Fallback(app *App) RunOption {
	return internal.Fallback(app)
}

// WithContext sets a custom base context for signal handling.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// Context helpers

// ContextValue retrieves a typed value from the context.
// Returns the zero value of T if the key is not found or type assertion fails.
func ContextValue[T any](c Context, key any) T {
	return internal.ContextValue[T](c, key)
}

// Param returns a typed chi URL parameter.
func Param[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) T {
	return internal.Param[T](c, name)
}

// Query returns a typed query parameter.
func Query[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string) T {
	return internal.Query[T](c, name)
}

// QueryDefault returns a typed query parameter or defaultValue.
func QueryDefault[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, name string, defaultValue T) T {
	return internal.QueryDefault(c, name, defaultValue)
}

// Arg returns the i-th route target argument converted to T.
//
// Example:
//
//	// route "news/:num" => "News/show/$1"
//	id := kotori.Arg[int64](c, 0)
func Arg[T ~string | ~int | ~int64 | ~float64 | ~bool](c Context, i int) T {
	return internal.Arg[T](c, i)
}

// HTTP errors

// NewHTTPError creates an HTTPError with the given status.
func NewHTTPError(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return internal.NewHTTPError(code, message, opts...)
}

// ErrNotFound creates a 404 HTTPError.
func ErrNotFound(message string) *HTTPError {
	return internal.ErrNotFound(message)
}

// ErrForbidden creates a 403 HTTPError.
func ErrForbidden(message string) *HTTPError {
	return internal.ErrForbidden(message)
}

// ErrBadRequest creates a 400 HTTPError.
func ErrBadRequest(message string) *HTTPError {
	return internal.ErrBadRequest(message)
}

// WithCause attaches the underlying error to an HTTPError.
func WithCause(err error) HTTPErrorOption {
	return internal.WithError(err)
}

// AsHTTPError returns the HTTPError in err's chain, or nil.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}

// Cookie options

// WithCookieSecret sets the secret for signing.
// Must be at least 32 bytes.
func WithCookieSecret(secret string) CookieOption {
	return cookie.WithSecret(secret)
}

// WithCookieDomain sets the cookie domain.
func WithCookieDomain(domain string) CookieOption {
	return cookie.WithDomain(domain)
}

// WithCookiePath sets the cookie path.
func WithCookiePath(path string) CookieOption {
	return cookie.WithPath(path)
}

// WithCookieSecure sets the Secure flag.
func WithCookieSecure(secure bool) CookieOption {
	return cookie.WithSecure(secure)
}

// WithCookieHTTPOnly sets the HttpOnly flag.
func WithCookieHTTPOnly(httpOnly bool) CookieOption {
	return cookie.WithHTTPOnly(httpOnly)
}

// WithCookieSameSite sets the SameSite attribute.
func WithCookieSameSite(ss http.SameSite) CookieOption {
	return cookie.WithSameSite(ss)
}

// Cookie errors for checking return values.
var (
	ErrCookieNotFound  = cookie.ErrNotFound
	ErrCookieNoSecret  = cookie.ErrNoSecret
	ErrCookieBadSecret = cookie.ErrBadSecret
	ErrCookieBadSig    = cookie.ErrBadSig
)

// Session options

// WithSession enables server-side sessions backed by store.
// Sessions are loaded lazily and saved before the response is written.
//
// Example:
//
//	store := session.NewCacheStore(cache.NewRedis[[]byte](client, cache.RawMarshaler{}))
//	kotori.New(
//	    kotori.WithSession(store,
//	        kotori.WithSessionMaxAge(3600),
//	    ),
//	)
func WithSession(store SessionStore, opts ...SessionOption) Option {
	return internal.WithSession(store, opts...)
}

// WithSessionCookieName sets the session cookie name.
// Defaults to "KOTORI_SESSID".
func WithSessionCookieName(name string) SessionOption {
	return internal.WithSessionCookieName(name)
}

// WithSessionMaxAge sets the session max age in seconds.
func WithSessionMaxAge(seconds int) SessionOption {
	return internal.WithSessionMaxAge(seconds)
}

// WithSessionDomain sets the session cookie domain.
func WithSessionDomain(domain string) SessionOption {
	return internal.WithSessionDomain(domain)
}

// WithSessionPath sets the session cookie path.
func WithSessionPath(path string) SessionOption {
	return internal.WithSessionPath(path)
}

// WithSessionSecure sets the session cookie Secure flag.
func WithSessionSecure(secure bool) SessionOption {
	return internal.WithSessionSecure(secure)
}

// WithSessionHTTPOnly sets the session cookie HttpOnly flag.
func WithSessionHTTPOnly(httpOnly bool) SessionOption {
	return internal.WithSessionHTTPOnly(httpOnly)
}

// WithSessionSameSite sets the session cookie SameSite attribute.
func WithSessionSameSite(sameSite http.SameSite) SessionOption {
	return internal.WithSessionSameSite(sameSite)
}

// WithSessionSigned signs the session cookie with the cookie secret.
func WithSessionSigned(signed bool) SessionOption {
	return internal.WithSessionSigned(signed)
}

// WithSessionTouchInterval limits how often the expiry is extended.
func WithSessionTouchInterval(d time.Duration) SessionOption {
	return internal.WithSessionTouchInterval(d)
}

// Session errors for checking return values.
var (
	ErrSessionNotConfigured = session.ErrNotConfigured
	ErrSessionNotFound      = session.ErrNotFound
	ErrSessionExpired       = session.ErrExpired
	ErrSessionInvalidToken  = session.ErrInvalidToken
)

// SessionValue is a typed helper to retrieve session values.
// Returns an error if the key doesn't exist or type assertion fails.
//
// Example:
//
//	theme, err := kotori.SessionValue[string](sess, "theme")
func SessionValue[T any](sess *Session, key string) (T, error) {
	return session.Value[T](sess, key)
}

// SessionValueOr returns defaultVal if the key doesn't exist or type
// assertion fails.
func SessionValueOr[T any](sess *Session, key string, defaultVal T) T {
	return session.ValueOr(sess, key, defaultVal)
}
