package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"runtime/debug"
	"strings"

	"github.com/dmitrymomot/kotori/pkg/handle"
)

// ErrNoRoutes is returned by Call when the App has no route table.
var ErrNoRoutes = errors.New("kotori: route table is not configured")

// Call dispatches uri through the route table with the "cli" verb and
// writes the action output to w. The query part of uri is available via
// Context.Query. Errors and panics are logged, written to w in the log
// format and returned.
//
// Example:
//
//	err := app.Call(ctx, "cliTest/hello/world", os.Stdout)
func (a *App) Call(ctx context.Context, uri string, w io.Writer) (err error) {
	if a.routes == nil {
		return ErrNoRoutes
	}

	u, err := url.Parse("/" + strings.TrimLeft(uri, "/"))
	if err != nil {
		return errors.Join(ErrBadRequest("Invalid command"), err)
	}
	r, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return err
	}

	c := newContext(&cliWriter{out: w, header: make(http.Header)}, r, a)
	c.state.cli = true

	defer func() {
		if p := recover(); p != nil {
			err = &panicError{value: p, stack: debug.Stack()}
		}
		if err != nil {
			a.reportCLI(c, w, err)
		}
	}()

	return chain(a.dispatch, a.middlewares...)(c)
}

func (a *App) reportCLI(c *requestContext, w io.Writer, err error) {
	rep := reportOf(err)
	a.errors.Error(c.Context(), nil, rep)
	_, _ = fmt.Fprintln(w, handle.RenderLog(rep))
}

// cliWriter is the response writer for Call. Headers are kept but never
// printed.
type cliWriter struct {
	out    io.Writer
	header http.Header
	status int
}

func (w *cliWriter) Header() http.Header {
	return w.header
}

func (w *cliWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
}

func (w *cliWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.out.Write(b)
}
