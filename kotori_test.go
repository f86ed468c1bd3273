package kotori_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/kotori"
	"github.com/dmitrymomot/kotori/middlewares"
	"github.com/dmitrymomot/kotori/pkg/cache"
	"github.com/dmitrymomot/kotori/pkg/route"
	"github.com/dmitrymomot/kotori/pkg/session"
)

const routesYAML = `
default_controller: Hello
routes:
  /: Hello/index
  news/([0-9]+): Hello/showNews/$1
  add:
    get: Hello/addNews
    post: Hello/insertNews
  visit: Hello/visit
  cron/(.*):
    cli: Hello/cron/$1
`

type hello struct{}

func (hello) Actions() kotori.Actions {
	return kotori.Actions{
		"index": func(c kotori.Context) error {
			return c.String(http.StatusOK, "index")
		},
		"showNews": func(c kotori.Context) error {
			id := kotori.Arg[int](c, 0)
			if id > 100 {
				return kotori.ErrNotFound("no such news")
			}
			return c.JSON(http.StatusOK, map[string]int{"id": id})
		},
		"addNews": func(c kotori.Context) error {
			return c.HTML(http.StatusOK, "<form></form>")
		},
		"insertNews": func(c kotori.Context) error {
			return c.String(http.StatusCreated, c.Form("title"))
		},
		"visit": func(c kotori.Context) error {
			sess, err := c.Session()
			if err != nil {
				return err
			}
			if sess == nil {
				if err := c.InitSession(); err != nil {
					return err
				}
			}
			v, err := c.SessionValue("visits")
			if err != nil {
				return err
			}
			n := 0
			if f, ok := v.(float64); ok {
				n = int(f)
			}
			n++
			if err := c.SetSessionValue("visits", n); err != nil {
				return err
			}
			return c.JSON(http.StatusOK, map[string]int{"visits": n})
		},
		"cron": func(c kotori.Context) error {
			return c.String(http.StatusOK, "ran "+c.Arg(0))
		},
	}
}

func newApp(t *testing.T, opts ...kotori.Option) *kotori.App {
	t.Helper()

	table, err := route.LoadYAML(strings.NewReader(routesYAML))
	require.NoError(t, err)

	store, err := cache.New(context.Background(), cache.Config{Adapter: cache.AdapterMemory})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	base := []kotori.Option{
		kotori.WithRoutes(table),
		kotori.WithController("Hello", hello{}),
		kotori.WithCache(store),
		kotori.WithSession(session.NewCacheStore(store)),
		kotori.WithMiddleware(
			middlewares.RequestID(),
			middlewares.Recover(),
			middlewares.Filter(),
		),
	}
	return kotori.New(append(base, opts...)...)
}

func TestApp(t *testing.T) {
	t.Parallel()

	app := newApp(t)

	tests := []struct {
		name   string
		method string
		target string
		body   url.Values
		status int
		want   string
	}{
		{name: "root", method: http.MethodGet, target: "/", status: http.StatusOK, want: "index"},
		{name: "args", method: http.MethodGet, target: "/news/7", status: http.StatusOK, want: `{"id":7}`},
		{name: "not found from action", method: http.MethodGet, target: "/news/700", status: http.StatusNotFound},
		{name: "verb get", method: http.MethodGet, target: "/add", status: http.StatusOK, want: "<form></form>"},
		{
			name:   "verb post with filtered form",
			method: http.MethodPost,
			target: "/add",
			body:   url.Values{"title": {"<script>x</script>Tea"}},
			status: http.StatusCreated,
			want:   "Tea",
		},
		{name: "verb not allowed", method: http.MethodDelete, target: "/add", status: http.StatusMethodNotAllowed},
		{name: "cli only", method: http.MethodGet, target: "/cron/daily", status: http.StatusMethodNotAllowed},
		{name: "default rule", method: http.MethodGet, target: "/hello/index", status: http.StatusOK, want: "index"},
		{name: "unknown action", method: http.MethodGet, target: "/hello/missing", status: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var req *http.Request
			if tt.body != nil {
				req = httptest.NewRequest(tt.method, tt.target, strings.NewReader(tt.body.Encode()))
				req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
			} else {
				req = httptest.NewRequest(tt.method, tt.target, nil)
			}
			rec := httptest.NewRecorder()
			app.ServeHTTP(rec, req)

			require.Equal(t, tt.status, rec.Code)
			require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
			if tt.want != "" {
				require.Equal(t, tt.want, strings.TrimSpace(rec.Body.String()))
			}
		})
	}
}

func TestApp_SessionThroughCache(t *testing.T) {
	t.Parallel()

	app := newApp(t)

	visit := func(cookies []*http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/visit", nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req)
		return rec
	}

	first := visit(nil)
	require.Equal(t, http.StatusOK, first.Code)
	require.JSONEq(t, `{"visits":1}`, first.Body.String())

	cookies := first.Result().Cookies()
	require.NotEmpty(t, cookies)

	second := visit(cookies)
	require.JSONEq(t, `{"visits":2}`, second.Body.String())
}

func TestApp_Call(t *testing.T) {
	t.Parallel()

	app := newApp(t)

	var out bytes.Buffer
	require.NoError(t, app.Call(context.Background(), "cron/daily", &out))
	require.Equal(t, "ran daily", strings.TrimSpace(out.String()))

	out.Reset()
	require.Error(t, app.Call(context.Background(), "hello/missing", &out))
	require.Contains(t, out.String(), "missing")
}

func TestApp_Debug(t *testing.T) {
	t.Parallel()

	prod := newApp(t)
	debug := newApp(t, kotori.WithDebug(true))

	for name, app := range map[string]*kotori.App{"prod": prod, "debug": debug} {
		req := httptest.NewRequest(http.MethodGet, "/news/700", nil)
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusNotFound, rec.Code, name)
		if name == "debug" {
			require.Contains(t, rec.Body.String(), "no such news")
		} else {
			require.NotContains(t, rec.Body.String(), "no such news")
		}
	}
}
