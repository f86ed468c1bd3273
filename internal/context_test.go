package internal_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/kotori/internal"
	"github.com/dmitrymomot/kotori/pkg/cache"
	"github.com/dmitrymomot/kotori/pkg/cookie"
	"github.com/dmitrymomot/kotori/pkg/route"
	"github.com/dmitrymomot/kotori/pkg/session"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type sessionHandler struct{}

func (sessionHandler) Routes(r internal.Router) {
	r.POST("/login", func(c internal.Context) error {
		if err := c.AuthenticateSession(c.Form("user")); err != nil {
			return err
		}
		if err := c.SetSessionValue("theme", "dark"); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	})
	r.GET("/me", func(c internal.Context) error {
		theme, err := c.SessionValue("theme")
		if err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}
		s, _ := theme.(string)
		return c.String(http.StatusOK, c.UserID()+":"+s)
	})
	r.POST("/logout", func(c internal.Context) error {
		if err := c.DestroySession(); err != nil {
			return err
		}
		return c.NoContent(http.StatusNoContent)
	})
}

func sessionCookie(t *testing.T, rec *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()

	var last *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "KOTORI_SESSID" {
			last = c
		}
	}
	require.NotNil(t, last, "session cookie not set")
	return last
}

func TestContext_Session(t *testing.T) {
	t.Parallel()

	app := internal.New(
		internal.WithCookieOptions(cookie.WithSecret(testSecret)),
		internal.WithSession(session.NewCacheStore(cache.NewMemoryAdapter()), internal.WithSessionSigned(true)),
		internal.WithHandlers(sessionHandler{}),
	)

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader("user=u1"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	sid := sessionCookie(t, rec)
	require.Contains(t, sid.Value, ".", "signed token")

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(sid)
	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "u1:dark", rec.Body.String())

	t.Run("tampered cookie has no session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.AddCookie(&http.Cookie{Name: sid.Name, Value: sid.Value + "x"})
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, req)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	req = httptest.NewRequest(http.MethodPost, "/logout", nil)
	req.AddCookie(sid)
	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNoContent, rec.Code)
	require.Equal(t, -1, sessionCookie(t, rec).MaxAge)

	req = httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(sid)
	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestContext_SessionNotConfigured(t *testing.T) {
	t.Parallel()

	c := internal.NewTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil), nil, route.Target{})

	_, err := c.Session()
	require.ErrorIs(t, err, session.ErrNotConfigured)
	require.ErrorIs(t, c.InitSession(), session.ErrNotConfigured)
	require.ErrorIs(t, c.AuthenticateSession("u1"), session.ErrNotConfigured)
	require.ErrorIs(t, c.DestroySession(), session.ErrNotConfigured)
	require.Empty(t, c.UserID())
	require.False(t, c.IsAuthenticated())
}

func TestContext_Cookies(t *testing.T) {
	t.Parallel()

	app := internal.New(internal.WithCookieOptions(cookie.WithSecret(testSecret)))

	rec := httptest.NewRecorder()
	c := internal.NewTestContext(rec, httptest.NewRequest(http.MethodGet, "/", nil), app, route.Target{})
	c.SetCookie("plain", "v1", 60)
	require.NoError(t, c.SetCookieSigned("signed", "v2", 60))
	require.NoError(t, c.SetFlash("notice", "saved"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	for _, ck := range rec.Result().Cookies() {
		req.AddCookie(ck)
	}
	rec = httptest.NewRecorder()
	c = internal.NewTestContext(rec, req, app, route.Target{})

	v, err := c.Cookie("plain")
	require.NoError(t, err)
	require.Equal(t, "v1", v)

	v, err = c.CookieSigned("signed")
	require.NoError(t, err)
	require.Equal(t, "v2", v)

	var msg string
	require.NoError(t, c.Flash("notice", &msg))
	require.Equal(t, "saved", msg)

	_, err = c.Cookie("missing")
	require.ErrorIs(t, err, cookie.ErrNotFound)
}

func TestContext_Values(t *testing.T) {
	t.Parallel()

	tokyo, err := time.LoadLocation("Asia/Tokyo")
	if err != nil {
		t.Skip("tzdata not available")
	}
	app := internal.New(internal.WithTimeZone(tokyo))

	req := httptest.NewRequest(http.MethodGet, "http://Example.COM:8080/?q=go", nil)
	req.Header.Set("X-Test", "yes")
	rec := httptest.NewRecorder()
	c := internal.NewTestContext(rec, req, app, route.Target{Controller: "Hello", Action: "index"})

	type key struct{}
	c.Set(key{}, 42)
	require.Equal(t, 42, c.Get(key{}))
	require.Equal(t, 42, c.Value(key{}), "values are visible through context.Context")

	require.Equal(t, "example.com", c.Domain())
	require.Equal(t, "go", c.Query("q"))
	require.Equal(t, "fallback", c.QueryDefault("missing", "fallback"))
	require.Equal(t, "yes", c.Header("X-Test"))
	require.Equal(t, "Hello", c.Target().Controller)
	require.False(t, c.IsCLI())
	require.Equal(t, tokyo, c.Now().Location())

	require.False(t, c.Written())
	require.NoError(t, c.JSON(http.StatusAccepted, map[string]int{"n": 1}))
	require.True(t, c.Written())
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.JSONEq(t, `{"n":1}`, rec.Body.String())
	require.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
}

func TestContext_Redirect(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	c := internal.NewTestContext(rec, httptest.NewRequest(http.MethodGet, "/old", nil), nil, route.Target{})
	require.NoError(t, c.Redirect(http.StatusFound, "/new"))
	require.Equal(t, http.StatusFound, rec.Code)
	require.Equal(t, "/new", rec.Header().Get("Location"))
}
