package main

import (
	"bytes"
	"context"
	"io/fs"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/kotori"
	"github.com/dmitrymomot/kotori/pkg/config"
	"github.com/dmitrymomot/kotori/pkg/db"
	"github.com/dmitrymomot/kotori/pkg/logger"
)

func newTestApp(t *testing.T, vars map[string]string) (*kotori.App, *services) {
	t.Helper()

	env := map[string]string{
		"CACHE_ADAPTER": "memory",
		"DB_TYPE":       "sqlite",
		"DB_NAME":       ":memory:",
		"TIME_ZONE":     "UTC",
	}
	for k, v := range vars {
		env[k] = v
	}
	cfg, err := config.LoadFrom(env)
	require.NoError(t, err)

	ctx := context.Background()
	app, svc, err := buildApp(ctx, cfg, logger.NewNope())
	require.NoError(t, err)
	t.Cleanup(svc.Close)

	if svc.db != nil {
		sub, err := fs.Sub(migrations, "migrations")
		require.NoError(t, err)
		require.NoError(t, db.Migrate(ctx, svc.db, sub, "", nil))
	}
	return app, svc
}

func TestDemo_News(t *testing.T) {
	t.Parallel()

	app, svc := newTestApp(t, nil)
	require.NotNil(t, svc.cache)
	require.NotNil(t, svc.db)

	form := url.Values{"title": {"<i>Tea</i> time"}}.Encode()
	req := httptest.NewRequest(http.MethodPost, "/add", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, req)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "INSERT INTO news (title) VALUES ($1)", svc.db.LastQuery())

	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/news/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"title":"Tea time"`)

	rec = httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/news/42", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDemo_Index(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(t, nil)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"visits":1`)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestDemo_Call(t *testing.T) {
	t.Parallel()

	app, _ := newTestApp(t, nil)

	var out bytes.Buffer
	require.NoError(t, app.Call(context.Background(), "cron/report", &out))
	require.Equal(t, "ran report", strings.TrimSpace(out.String()))

	out.Reset()
	require.NoError(t, app.Call(context.Background(), "cron/cleanup", &out))
	require.Equal(t, "removed 0", strings.TrimSpace(out.String()))

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cron/report", nil))
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestDemo_WithoutDB(t *testing.T) {
	t.Parallel()

	app, svc := newTestApp(t, map[string]string{"DB_TYPE": ""})
	require.Nil(t, svc.db)
	require.Len(t, svc.checks(), 1)

	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/news/1", nil))
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestPrintRoutes(t *testing.T) {
	t.Parallel()

	table, err := loadRoutes("")
	require.NoError(t, err)

	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	require.NoError(t, printRoutes(cmd, table))

	got := out.String()
	require.Contains(t, got, "PATTERN")
	require.Contains(t, got, "Hello/showNews/$1")
	require.Contains(t, got, "cli")
	require.Contains(t, got, "Hello/index")
}
