package handle

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"os"

	"github.com/tdewolff/minify/v2"
	minifycss "github.com/tdewolff/minify/v2/css"
	minifyhtml "github.com/tdewolff/minify/v2/html"

	"github.com/dmitrymomot/kotori/pkg/logger"
)

// DefaultDebugHeader is the response header carrying the log body in debug mode.
const DefaultDebugHeader = "Kotori-Debug"

// Handler turns errors, notices and panics into error pages and log lines.
// It is safe for concurrent use once built.
type Handler struct {
	logger      *slog.Logger
	template    *template.Template
	minifier    *minify.M
	debugHeader string
	before      int
	total       int
	debug       bool
}

// Option configures a Handler.
type Option func(*Handler)

// WithDebug enables the diagnostic page with request details and
// highlighted source.
func WithDebug(debug bool) Option {
	return func(h *Handler) {
		h.debug = debug
	}
}

// WithLogger sets the logger for reports.
func WithLogger(l *slog.Logger) Option {
	return func(h *Handler) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithTemplate replaces the built-in page with a custom html/template.
// The template receives PageData; the message is {{.Message}}.
func WithTemplate(t *template.Template) Option {
	return func(h *Handler) {
		if t != nil {
			h.template = t
		}
	}
}

// WithTemplateFile loads a custom page template from path.
// A missing or invalid file keeps the built-in page.
func WithTemplateFile(path string) Option {
	return func(h *Handler) {
		if path == "" {
			return
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return
		}
		t, err := template.New("custom").Parse(string(data))
		if err != nil {
			return
		}
		h.template = t
	}
}

// WithDebugHeader sets the name of the debug response header.
// An empty name disables the header.
func WithDebugHeader(name string) Option {
	return func(h *Handler) {
		h.debugHeader = name
	}
}

// WithMinify toggles HTML compression of error pages. Enabled by default.
func WithMinify(enabled bool) Option {
	return func(h *Handler) {
		if !enabled {
			h.minifier = nil
			return
		}
		if h.minifier == nil {
			h.minifier = newMinifier()
		}
	}
}

// WithContextLines sets how many source lines are shown before the failing
// line and in total.
func WithContextLines(before, total int) Option {
	return func(h *Handler) {
		if before >= 0 && total > 0 {
			h.before = before
			h.total = total
		}
	}
}

// New creates a Handler. Production mode is the default.
func New(opts ...Option) *Handler {
	h := &Handler{
		logger:      logger.NewNope(),
		template:    pageTemplate,
		minifier:    newMinifier(),
		debugHeader: DefaultDebugHeader,
		before:      DefaultLinesBefore,
		total:       DefaultLinesTotal,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func newMinifier() *minify.M {
	m := minify.New()
	m.AddFunc("text/html", minifyhtml.Minify)
	m.AddFunc("text/css", minifycss.Minify)
	return m
}

// Debug reports whether the handler renders diagnostic pages.
func (h *Handler) Debug() bool {
	return h.debug
}

// Logger returns the handler's logger.
func (h *Handler) Logger() *slog.Logger {
	return h.logger
}

// Halt writes the error page with the given status code.
// In debug mode the message is shown with the request method and URL.
// Otherwise the message is replaced with "<code> <status text>.".
func (h *Handler) Halt(w http.ResponseWriter, r *http.Request, message template.HTML, code int) {
	if code < 100 || code > 999 {
		code = http.StatusInternalServerError
	}

	data := PageData{
		Title: fmt.Sprintf("%d %s", code, http.StatusText(code)),
		Code:  code,
		Debug: h.debug,
		CSS:   template.CSS(baseCSS) + StyleCSS(),
	}
	if h.debug {
		data.Message = message
		if r != nil {
			data.Method = r.Method
			data.URL = requestURL(r)
		}
	} else {
		data.Message = template.HTML(template.HTMLEscapeString(data.Title + "."))
	}

	body := h.render(data)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(code)
	_, _ = w.Write(body)
}

// Error records a non-fatal problem: it logs the report, exposes it in the
// debug header and appends its text form to the request trace in ctx.
// The response is not written. w may be nil.
func (h *Handler) Error(ctx context.Context, w http.ResponseWriter, rep Report) {
	if rep.Kind == 0 {
		rep = rep.WithKind(KindNotice)
	}
	h.log(ctx, rep, http.StatusInternalServerError)

	if tr := TraceFrom(ctx); tr != nil {
		tr.Add(RenderText(rep))
	}
	if w != nil {
		h.setDebugHeader(w, rep)
	}
}

// Exception renders the page for an error returned by a handler.
// The status is taken from the error when it reports one via
// StatusCode() int, otherwise 500.
func (h *Handler) Exception(w http.ResponseWriter, r *http.Request, err error) {
	rep := FromError(err)
	h.Report(w, r, rep, statusOf(err))
}

// Fatal renders the page for a recovered panic. The location is taken
// from the first non-runtime frame below the panic in stack.
func (h *Handler) Fatal(w http.ResponseWriter, r *http.Request, recovered any, stack []byte) {
	h.Report(w, r, FromPanic(recovered, stack), http.StatusInternalServerError)
}

// Report logs rep and halts with its diagnostic body and the given code.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request, rep Report, code int) {
	ctx := context.Background()
	if r != nil {
		ctx = r.Context()
	}
	h.log(ctx, rep, code)
	h.setDebugHeader(w, rep)

	var body template.HTML
	if h.debug {
		body = h.RenderBody(ctx, rep)
	}
	h.Halt(w, r, body, code)
}

// RenderBody returns the diagnostic HTML for rep: type, message, line,
// file, highlighted source and the trace collected in ctx.
func (h *Handler) RenderBody(ctx context.Context, rep Report) template.HTML {
	snippet, err := ReadSource(rep.File, rep.Line, h.before, h.total)
	if err != nil {
		snippet = Snippet{}
	}
	var trace []string
	if tr := TraceFrom(ctx); tr != nil {
		trace = tr.Entries()
	}
	return renderBody(rep, snippet, trace)
}

func (h *Handler) render(data PageData) []byte {
	var buf bytes.Buffer
	if err := h.template.Execute(&buf, data); err != nil {
		h.logger.Error("render error page", slog.Any("error", err))
		buf.Reset()
		_ = pageTemplate.Execute(&buf, data)
	}
	if h.minifier == nil {
		return buf.Bytes()
	}
	out, err := h.minifier.Bytes("text/html", buf.Bytes())
	if err != nil {
		return buf.Bytes()
	}
	return out
}

// log writes rep at error level when it is fatal and answered with a 5xx
// code. Client errors and non-fatal kinds are warnings.
func (h *Handler) log(ctx context.Context, rep Report, code int) {
	level := slog.LevelWarn
	if rep.Kind.Fatal() && code >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	attrs := []slog.Attr{
		slog.String("type", rep.Title()),
		slog.String("info", rep.Message),
		slog.Int("line", rep.Line),
		slog.String("file", rep.File),
	}
	if rep.Err != nil {
		attrs = append(attrs, slog.Any("error", rep.Err))
	}
	h.logger.LogAttrs(ctx, level, rep.Kind.String(), attrs...)
}

func (h *Handler) setDebugHeader(w http.ResponseWriter, rep Report) {
	if !h.debug || h.debugHeader == "" || w == nil {
		return
	}
	w.Header().Set(h.debugHeader, headerValue(rep))
}

func statusOf(err error) int {
	var sc interface{ StatusCode() int }
	if errors.As(err, &sc) {
		if code := sc.StatusCode(); code >= 400 {
			return code
		}
	}
	return http.StatusInternalServerError
}

func requestURL(r *http.Request) string {
	if r.URL == nil {
		return ""
	}
	if r.URL.IsAbs() {
		return r.URL.String()
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
