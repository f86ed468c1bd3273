package handle_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/kotori/pkg/handle"
)

type statusError struct {
	code int
}

func (e statusError) Error() string   { return http.StatusText(e.code) }
func (e statusError) StatusCode() int { return e.code }

func TestHandler_HaltProduction(t *testing.T) {
	t.Parallel()

	h := handle.New()
	req := httptest.NewRequest(http.MethodGet, "/missing", nil)
	rec := httptest.NewRecorder()

	h.Halt(rec, req, "Request controller Missing is not found", http.StatusNotFound)

	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	body := rec.Body.String()
	require.Contains(t, body, "404 Not Found.")
	require.NotContains(t, body, "Missing")
	require.NotContains(t, body, "Request Method")
}

func TestHandler_HaltDebug(t *testing.T) {
	t.Parallel()

	h := handle.New(handle.WithDebug(true), handle.WithMinify(false))
	req := httptest.NewRequest(http.MethodPost, "/news/1?x=1", nil)
	rec := httptest.NewRecorder()

	h.Halt(rec, req, "Request action <b>foo</b> is not found", http.StatusNotFound)

	require.Equal(t, http.StatusNotFound, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "Request action <b>foo</b> is not found")
	require.Contains(t, body, "<strong>Request Method:</strong> POST")
	require.Contains(t, body, "http://example.com/news/1?x=1")
	require.Contains(t, body, "debug mode is enabled")
}

func TestHandler_HaltInvalidCode(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	handle.New().Halt(rec, nil, "x", 42)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Contains(t, rec.Body.String(), "500 Internal Server Error.")
}

func TestHandler_Minify(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", nil)

	raw := httptest.NewRecorder()
	handle.New(handle.WithMinify(false)).Halt(raw, req, "", http.StatusBadRequest)

	minified := httptest.NewRecorder()
	handle.New().Halt(minified, req, "", http.StatusBadRequest)

	require.Less(t, minified.Body.Len(), raw.Body.Len())
	require.Contains(t, minified.Body.String(), "400 Bad Request.")
}

func TestHandler_CustomTemplate(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "error.html")
	require.NoError(t, os.WriteFile(path, []byte(`<main class="custom">{{.Message}}</main>`), 0o600))

	t.Run("file template", func(t *testing.T) {
		t.Parallel()

		h := handle.New(handle.WithTemplateFile(path), handle.WithMinify(false))
		rec := httptest.NewRecorder()
		h.Halt(rec, httptest.NewRequest(http.MethodGet, "/", nil), "ignored", http.StatusForbidden)

		require.Equal(t, `<main class="custom">403 Forbidden.</main>`, rec.Body.String())
	})

	t.Run("missing file keeps built-in page", func(t *testing.T) {
		t.Parallel()

		h := handle.New(handle.WithTemplateFile(filepath.Join(dir, "nope.html")))
		rec := httptest.NewRecorder()
		h.Halt(rec, httptest.NewRequest(http.MethodGet, "/", nil), "", http.StatusForbidden)

		require.Contains(t, rec.Body.String(), "kotori-halt")
	})

	t.Run("parsed template", func(t *testing.T) {
		t.Parallel()

		tpl := template.Must(template.New("x").Parse(`[{{.Code}}] {{.Message}}`))
		h := handle.New(handle.WithTemplate(tpl), handle.WithMinify(false), handle.WithDebug(true))
		rec := httptest.NewRecorder()
		h.Halt(rec, httptest.NewRequest(http.MethodGet, "/", nil), "<em>hi</em>", http.StatusTeapot)

		require.Equal(t, "[418] <em>hi</em>", rec.Body.String())
	})
}

func TestHandler_ExceptionDebug(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&logs, nil))
	h := handle.New(handle.WithDebug(true), handle.WithMinify(false), handle.WithLogger(log))

	_, _, line, _ := runtime.Caller(0)
	err := handle.Errorf("news %d failed", 7)
	line++

	req := httptest.NewRequest(http.MethodGet, "/news/7", nil)
	rec := httptest.NewRecorder()
	h.Exception(rec, req, err)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "<strong>Type:</strong> *errors.errorString")
	require.Contains(t, body, "news 7 failed")
	require.Contains(t, body, fmt.Sprintf("<strong>Line:</strong> %d", line))
	require.Contains(t, body, "handle_test.go")
	require.Contains(t, body, fmt.Sprintf(`class="line-%d line-error"`, line))
	require.Contains(t, body, fmt.Sprintf(`start="%d"`, line-handle.DefaultLinesBefore))

	header := rec.Header().Get(handle.DefaultDebugHeader)
	require.Contains(t, header, "[Info] news 7 failed")
	require.Contains(t, header, fmt.Sprintf("[Line] %d", line))
	require.NotContains(t, header, "\n")

	require.Contains(t, logs.String(), `"level":"ERROR"`)
	require.Contains(t, logs.String(), `"info":"news 7 failed"`)
}

func TestHandler_ExceptionProduction(t *testing.T) {
	t.Parallel()

	h := handle.New()
	rec := httptest.NewRecorder()
	h.Exception(rec, httptest.NewRequest(http.MethodGet, "/", nil), handle.Wrap(errors.New("secret failure")))

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.NotContains(t, rec.Body.String(), "secret failure")
	require.Contains(t, rec.Body.String(), "500 Internal Server Error.")
	require.Empty(t, rec.Header().Get(handle.DefaultDebugHeader))
}

func TestHandler_ExceptionStatus(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	h := handle.New(handle.WithMinify(false), handle.WithLogger(slog.New(slog.NewJSONHandler(&logs, nil))))
	rec := httptest.NewRecorder()
	err := fmt.Errorf("lookup: %w", statusError{code: http.StatusTeapot})
	h.Exception(rec, httptest.NewRequest(http.MethodGet, "/", nil), err)

	require.Equal(t, http.StatusTeapot, rec.Code)
	require.Contains(t, rec.Body.String(), "418 I&#39;m a teapot.")
	require.Contains(t, logs.String(), `"level":"WARN"`, "client errors are warnings")
	require.NotContains(t, logs.String(), `"level":"ERROR"`)
}

func TestHandler_Fatal(t *testing.T) {
	t.Parallel()

	var (
		recovered any
		stack     []byte
		line      int
	)
	func() {
		defer func() {
			recovered = recover()
			stack = debug.Stack()
		}()
		_, _, line, _ = runtime.Caller(0)
		panic("boom")
	}()
	line++

	h := handle.New(handle.WithDebug(true), handle.WithMinify(false))
	rec := httptest.NewRecorder()
	h.Fatal(rec, httptest.NewRequest(http.MethodGet, "/", nil), recovered, stack)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	body := rec.Body.String()
	require.Contains(t, body, "<strong>Type:</strong> Panic")
	require.Contains(t, body, "boom")
	require.Contains(t, body, fmt.Sprintf(`class="line-%d line-error"`, line))
}

func TestHandler_ErrorCollectsTrace(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	h := handle.New(
		handle.WithDebug(true),
		handle.WithMinify(false),
		handle.WithLogger(slog.New(slog.NewJSONHandler(&logs, nil))),
	)

	ctx, tr := handle.WithTrace(context.Background())
	rec := httptest.NewRecorder()

	rep := handle.NewReport(handle.KindNotice, errors.New("undefined index: id"))
	h.Error(ctx, rec, rep)

	require.Equal(t, 1, tr.Len())
	require.Equal(t, handle.RenderText(rep), tr.Entries()[0])
	require.True(t, strings.HasPrefix(tr.Entries()[0], "undefined index: id in "))
	require.Contains(t, rec.Header().Get(handle.DefaultDebugHeader), "[Type] "+handle.KindNotice.Describe())
	require.Contains(t, logs.String(), `"level":"WARN"`)
	require.Equal(t, 0, rec.Body.Len())

	req := httptest.NewRequest(http.MethodGet, "/", nil).WithContext(ctx)
	page := httptest.NewRecorder()
	h.Exception(page, req, errors.New("final"))
	require.Contains(t, page.Body.String(), "undefined index: id in ")
	require.Contains(t, page.Body.String(), `class="trace"`)
}

func TestHandler_ErrorWithoutWriter(t *testing.T) {
	t.Parallel()

	h := handle.New(handle.WithDebug(true))
	require.NotPanics(t, func() {
		h.Error(context.Background(), nil, handle.Report{Message: "cli notice"})
	})
}

func TestHandler_DebugHeaderDisabled(t *testing.T) {
	t.Parallel()

	h := handle.New(handle.WithDebug(true), handle.WithDebugHeader(""))
	rec := httptest.NewRecorder()
	h.Exception(rec, httptest.NewRequest(http.MethodGet, "/", nil), errors.New("x"))
	require.Empty(t, rec.Header().Get(handle.DefaultDebugHeader))
}
