package middlewares_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/kotori/internal"
	"github.com/dmitrymomot/kotori/middlewares"
)

func TestFilter(t *testing.T) {
	t.Parallel()

	t.Run("strips html from query", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/news?q="+url.QueryEscape("<script>x</script>hello")+"&page=2", nil)
		c := newTestContext(httptest.NewRecorder(), r)

		var got url.Values
		err := middlewares.Filter()(func(c internal.Context) error {
			got = c.Request().URL.Query()
			return nil
		})(c)

		require.NoError(t, err)
		require.Equal(t, "hello", got.Get("q"))
		require.Equal(t, "2", got.Get("page"))
	})

	t.Run("strips html from form", func(t *testing.T) {
		t.Parallel()

		body := url.Values{"title": {"<b>Breaking</b> news"}}.Encode()
		r := httptest.NewRequest(http.MethodPost, "/news/add", strings.NewReader(body))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		c := newTestContext(httptest.NewRecorder(), r)

		var got string
		err := middlewares.Filter()(func(c internal.Context) error {
			got = c.Form("title")
			return nil
		})(c)

		require.NoError(t, err)
		require.Equal(t, "Breaking news", got)
	})

	t.Run("query only leaves body", func(t *testing.T) {
		t.Parallel()

		body := url.Values{"title": {"<b>x</b>"}}.Encode()
		r := httptest.NewRequest(http.MethodPost, "/?q=%3Ci%3Ey%3C%2Fi%3E", strings.NewReader(body))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		c := newTestContext(httptest.NewRecorder(), r)

		var title, q string
		err := middlewares.Filter(middlewares.WithFilterQueryOnly())(func(c internal.Context) error {
			title = c.Form("title")
			q = c.Query("q")
			return nil
		})(c)

		require.NoError(t, err)
		require.Equal(t, "<b>x</b>", title)
		require.Equal(t, "y", q)
	})

	t.Run("custom filter func", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodGet, "/?q=Hello", nil)
		c := newTestContext(httptest.NewRecorder(), r)

		var q string
		err := middlewares.Filter(middlewares.WithFilterFunc(strings.ToUpper))(func(c internal.Context) error {
			q = c.Query("q")
			return nil
		})(c)

		require.NoError(t, err)
		require.Equal(t, "HELLO", q)
	})

	t.Run("malformed form", func(t *testing.T) {
		t.Parallel()

		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader("a=%zz"))
		r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		c := newTestContext(httptest.NewRecorder(), r)

		called := false
		err := middlewares.Filter()(func(c internal.Context) error {
			called = true
			return nil
		})(c)

		require.False(t, called)
		httpErr := internal.AsHTTPError(err)
		require.NotNil(t, httpErr)
		require.Equal(t, http.StatusBadRequest, httpErr.Code)
	})
}
