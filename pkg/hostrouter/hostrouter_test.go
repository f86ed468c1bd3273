package hostrouter_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/kotori/pkg/hostrouter"
)

func named(name string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(name))
	})
}

func TestRouter(t *testing.T) {
	t.Parallel()

	router := hostrouter.New(hostrouter.Routes{
		"example.com":      named("root"),
		"api.example.com":  named("api"),
		"*.example.com":    named("tenant"),
		"*.eu.example.com": named("eu"),
		"":                 named("ignored"),
	}, named("fallback"))

	tests := []struct {
		host string
		want string
	}{
		{"example.com", "root"},
		{"Example.COM:8080", "root"},
		{"api.example.com", "api"},
		{"acme.example.com", "tenant"},
		{"a.b.example.com", "tenant"},
		{"shop.eu.example.com", "eu"},
		{"other.com", "fallback"},
		{"localhost", "fallback"},
		{"[::1]:8080", "fallback"},
	}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Host = tt.host
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			require.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestRouter_NilFallback(t *testing.T) {
	t.Parallel()

	router := hostrouter.New(nil, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "example.com"
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusNotFound, rec.Code)

	_, ok := router.Lookup("example.com")
	require.False(t, ok)
}

func TestGetDomain(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"example.com":      "example.com",
		"Example.COM:8080": "example.com",
		"192.168.1.1:80":   "192.168.1.1",
		"[::1]:8080":       "[::1]",
		"[2001:db8::1]":    "[2001:db8::1]",
	}
	for host, want := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Host = host
		require.Equal(t, want, hostrouter.GetDomain(req), host)
	}
}
