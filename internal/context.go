package internal

import (
	"context"
	"encoding/json"
	"html/template"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/kotori/pkg/cache"
	"github.com/dmitrymomot/kotori/pkg/db"
	"github.com/dmitrymomot/kotori/pkg/handle"
	"github.com/dmitrymomot/kotori/pkg/hostrouter"
	"github.com/dmitrymomot/kotori/pkg/route"
	"github.com/dmitrymomot/kotori/pkg/session"
)

// Context provides request/response access and helper methods.
// It also implements context.Context by delegating to the underlying request context.
type Context interface {
	context.Context

	// Request returns the underlying *http.Request.
	Request() *http.Request

	// Response returns the underlying http.ResponseWriter.
	Response() http.ResponseWriter

	// Context returns the request's context.Context.
	Context() context.Context

	// Param returns a chi URL parameter by name, or "".
	Param(name string) string

	// Query returns the query parameter value by name.
	Query(name string) string

	// QueryDefault returns the query parameter value or a default.
	QueryDefault(name, defaultValue string) string

	// Form returns the form value by name.
	Form(name string) string

	// FormFile returns the first file for the given form key.
	FormFile(name string) (multipart.File, *multipart.FileHeader, error)

	// Target returns the route table match that selected the running
	// controller action. It is zero for handlers registered in code.
	Target() route.Target

	// Args returns the arguments of the matched target.
	Args() []string

	// Arg returns the i-th target argument, or "" when out of range.
	Arg(i int) string

	// IsCLI reports whether the request came from App.Call.
	IsCLI() bool

	// Domain returns the request host without port, lowercased.
	Domain() string

	// Header returns the request header value by name.
	Header(name string) string

	// SetHeader sets a response header.
	SetHeader(name, value string)

	// JSON writes a JSON response with the given status code.
	JSON(code int, v any) error

	// String writes a plain text response with the given status code.
	String(code int, s string) error

	// HTML writes an HTML response with the given status code.
	HTML(code int, html string) error

	// NoContent writes a response with no body.
	NoContent(code int) error

	// Redirect redirects to the given URL with the given status code.
	Redirect(code int, url string) error

	// Error creates an HTTPError without writing a response. Return it from
	// the handler to render the error page with that status.
	Error(code int, message string, opts ...HTTPErrorOption) *HTTPError

	// Halt writes the error page for code immediately. In debug mode the
	// message is shown, otherwise only the status line.
	Halt(code int, message string) error

	// Notice records a non-fatal problem at the caller's position: it is
	// logged, added to the request trace and exposed in the debug header.
	Notice(err error)

	// Report records a problem of the given kind like Notice.
	Report(kind handle.Kind, err error)

	// Trace returns the problems recorded so far in this request.
	Trace() []string

	// Written returns true if a response has already been written.
	Written() bool

	// Logger returns the logger for advanced usage.
	Logger() *slog.Logger

	LogDebug(msg string, attrs ...any)
	LogInfo(msg string, attrs ...any)
	LogWarn(msg string, attrs ...any)
	LogError(msg string, attrs ...any)

	// Set stores a value in the request context.
	Set(key any, value any)

	// Get retrieves a value from the request context, or nil.
	Get(key any) any

	// Now returns the current time in the application time zone.
	Now() time.Time

	// Cookie returns a plain cookie value.
	Cookie(name string) (string, error)

	// SetCookie sets a plain cookie.
	SetCookie(name, value string, maxAge int)

	// DeleteCookie removes a cookie.
	DeleteCookie(name string)

	// CookieSigned returns a signed cookie value.
	// Returns cookie.ErrNoSecret if no secret is configured.
	CookieSigned(name string) (string, error)

	// SetCookieSigned sets a signed cookie.
	// Returns cookie.ErrNoSecret if no secret is configured.
	SetCookieSigned(name, value string, maxAge int) error

	// Flash reads and deletes a flash message.
	Flash(key string, dest any) error

	// SetFlash sets a flash message for the next request.
	SetFlash(key string, value any) error

	// Session returns the current session, loading it lazily.
	// Returns session.ErrNotConfigured if WithSession was not called and
	// nil, nil when the request carries no session.
	Session() (*session.Session, error)

	// InitSession creates a new session for this request.
	InitSession() error

	// AuthenticateSession attaches a user to the session, creating it if
	// needed, and rotates the token.
	AuthenticateSession(userID string) error

	// UserID returns the user attached to the session, or "".
	UserID() string

	// IsAuthenticated reports whether a user is attached to the session.
	IsAuthenticated() bool

	// SessionValue returns a session value, or nil when unset.
	// Returns session.ErrNotFound if no session exists.
	SessionValue(key string) (any, error)

	// SetSessionValue stores a value in the session.
	SetSessionValue(key string, val any) error

	// DeleteSessionValue removes a value from the session.
	DeleteSessionValue(key string) error

	// DestroySession removes the session and clears the cookie.
	DestroySession() error

	// Cache returns the application cache.
	// Returns cache.ErrNotConfigured if WithCache was not called.
	Cache() (*cache.Store, error)

	// DB returns the application database.
	// Returns db.ErrNotConfigured if WithDB was not called.
	DB() (*db.DB, error)

	// ResponseWriter returns the wrapped response writer.
	ResponseWriter() *ResponseWriter
}

// requestState is shared by every Context created for the same request,
// so middleware and handlers see one session and one trace.
type requestState struct {
	trace                 *handle.Trace
	session               *session.Session
	target                route.Target
	cli                   bool
	sessionLoaded         bool
	sessionHookRegistered bool
}

type stateKey struct{}

// requestContext implements the Context interface.
type requestContext struct {
	app            *App
	request        *http.Request
	response       http.ResponseWriter
	responseWriter *ResponseWriter
	state          *requestState
}

// newContext wraps w and r. A writer that is already a *ResponseWriter and
// state already attached to r are reused.
func newContext(w http.ResponseWriter, r *http.Request, app *App) *requestContext {
	rw, ok := w.(*ResponseWriter)
	if !ok {
		rw = NewResponseWriter(w)
	}

	st, ok := r.Context().Value(stateKey{}).(*requestState)
	if !ok {
		ctx, tr := handle.WithTrace(r.Context())
		st = &requestState{trace: tr}
		r = r.WithContext(context.WithValue(ctx, stateKey{}, st))
	}

	return &requestContext{
		app:            app,
		request:        r,
		response:       rw,
		responseWriter: rw,
		state:          st,
	}
}

func (c *requestContext) Request() *http.Request {
	return c.request
}

func (c *requestContext) Response() http.ResponseWriter {
	return c.response
}

func (c *requestContext) Context() context.Context {
	return c.request.Context()
}

func (c *requestContext) Deadline() (time.Time, bool) {
	return c.request.Context().Deadline()
}

func (c *requestContext) Done() <-chan struct{} {
	return c.request.Context().Done()
}

func (c *requestContext) Err() error {
	return c.request.Context().Err()
}

func (c *requestContext) Value(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Param(name string) string {
	return chi.URLParam(c.request, name)
}

func (c *requestContext) Query(name string) string {
	return c.request.URL.Query().Get(name)
}

func (c *requestContext) QueryDefault(name, defaultValue string) string {
	if v := c.Query(name); v != "" {
		return v
	}
	return defaultValue
}

func (c *requestContext) Form(name string) string {
	return c.request.FormValue(name)
}

func (c *requestContext) FormFile(name string) (multipart.File, *multipart.FileHeader, error) {
	return c.request.FormFile(name)
}

func (c *requestContext) Target() route.Target {
	return c.state.target
}

func (c *requestContext) Args() []string {
	return c.state.target.Args
}

func (c *requestContext) Arg(i int) string {
	args := c.state.target.Args
	if i < 0 || i >= len(args) {
		return ""
	}
	return args[i]
}

func (c *requestContext) IsCLI() bool {
	return c.state.cli
}

func (c *requestContext) Domain() string {
	return hostrouter.GetDomain(c.request)
}

func (c *requestContext) Header(name string) string {
	return c.request.Header.Get(name)
}

func (c *requestContext) SetHeader(name, value string) {
	c.response.Header().Set(name, value)
}

func (c *requestContext) JSON(code int, v any) error {
	c.response.Header().Set("Content-Type", "application/json; charset=utf-8")
	c.response.WriteHeader(code)
	return json.NewEncoder(c.response).Encode(v)
}

func (c *requestContext) String(code int, s string) error {
	c.response.Header().Set("Content-Type", "text/plain; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := c.response.Write([]byte(s))
	return err
}

func (c *requestContext) HTML(code int, html string) error {
	c.response.Header().Set("Content-Type", "text/html; charset=utf-8")
	c.response.WriteHeader(code)
	_, err := c.response.Write([]byte(html))
	return err
}

func (c *requestContext) NoContent(code int) error {
	c.response.WriteHeader(code)
	return nil
}

func (c *requestContext) Redirect(code int, url string) error {
	http.Redirect(c.response, c.request, url, code)
	return nil
}

func (c *requestContext) Error(code int, message string, opts ...HTTPErrorOption) *HTTPError {
	return NewHTTPError(code, message, opts...)
}

func (c *requestContext) Halt(code int, message string) error {
	if c.state.cli {
		_, err := c.response.Write([]byte(strconv.Itoa(code) + " " + message + "\n"))
		return err
	}
	c.app.errors.Halt(c.response, c.request, template.HTML(template.HTMLEscapeString(message)), code)
	return nil
}

func (c *requestContext) Notice(err error) {
	c.report(handle.KindNotice, err)
}

func (c *requestContext) Report(kind handle.Kind, err error) {
	c.report(kind, err)
}

// report records err at the position of the caller of Notice or Report.
func (c *requestContext) report(kind handle.Kind, err error) {
	if err == nil {
		return
	}
	rep := handle.FromError(err).WithKind(kind)
	if rep.File == "" {
		rep.File, rep.Line = handle.Caller(2)
	}
	var w http.ResponseWriter
	if !c.responseWriter.Written() {
		w = c.response
	}
	c.app.errors.Error(c.Context(), w, rep)
}

func (c *requestContext) Trace() []string {
	return c.state.trace.Entries()
}

func (c *requestContext) Written() bool {
	return c.responseWriter.Written()
}

func (c *requestContext) Logger() *slog.Logger {
	return c.app.logger
}

func (c *requestContext) LogDebug(msg string, attrs ...any) {
	c.app.logger.DebugContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogInfo(msg string, attrs ...any) {
	c.app.logger.InfoContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogWarn(msg string, attrs ...any) {
	c.app.logger.WarnContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) LogError(msg string, attrs ...any) {
	c.app.logger.ErrorContext(c.request.Context(), msg, attrs...)
}

func (c *requestContext) Set(key, value any) {
	ctx := context.WithValue(c.request.Context(), key, value)
	c.request = c.request.WithContext(ctx)
}

func (c *requestContext) Get(key any) any {
	return c.request.Context().Value(key)
}

func (c *requestContext) Now() time.Time {
	return time.Now().In(c.app.Location())
}

func (c *requestContext) Cookie(name string) (string, error) {
	return c.app.cookieManager.Get(c.request, name)
}

func (c *requestContext) SetCookie(name, value string, maxAge int) {
	c.app.cookieManager.Set(c.response, name, value, maxAge)
}

func (c *requestContext) DeleteCookie(name string) {
	c.app.cookieManager.Delete(c.response, name)
}

func (c *requestContext) CookieSigned(name string) (string, error) {
	return c.app.cookieManager.GetSigned(c.request, name)
}

func (c *requestContext) SetCookieSigned(name, value string, maxAge int) error {
	return c.app.cookieManager.SetSigned(c.response, name, value, maxAge)
}

func (c *requestContext) Flash(key string, dest any) error {
	return c.app.cookieManager.Flash(c.response, c.request, key, dest)
}

func (c *requestContext) SetFlash(key string, value any) error {
	return c.app.cookieManager.SetFlash(c.response, key, value)
}

func (c *requestContext) Cache() (*cache.Store, error) {
	if c.app.cache == nil {
		return nil, cache.ErrNotConfigured
	}
	return c.app.cache, nil
}

func (c *requestContext) DB() (*db.DB, error) {
	if c.app.db == nil {
		return nil, db.ErrNotConfigured
	}
	return c.app.db, nil
}

func (c *requestContext) ResponseWriter() *ResponseWriter {
	return c.responseWriter
}
