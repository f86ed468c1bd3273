package middlewares_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/kotori/internal"
	"github.com/dmitrymomot/kotori/middlewares"
)

func TestRequestID(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		opts       []middlewares.RequestIDOption
		headers    map[string]string
		respHeader string
		want       string
	}{
		{
			name:       "existing header is kept",
			headers:    map[string]string{"X-Request-ID": "existing-123"},
			respHeader: "X-Request-ID",
			want:       "existing-123",
		},
		{
			name:       "correlation header is a fallback",
			headers:    map[string]string{"X-Correlation-ID": "corr-1"},
			respHeader: "X-Request-ID",
			want:       "corr-1",
		},
		{
			name:       "custom headers in priority order",
			opts:       []middlewares.RequestIDOption{middlewares.WithRequestIDHeaders("X-Custom-ID", "X-Trace-ID")},
			headers:    map[string]string{"X-Custom-ID": "custom-123", "X-Trace-ID": "trace-456"},
			respHeader: "X-Request-ID",
			want:       "custom-123",
		},
		{
			name:       "second custom header when first is missing",
			opts:       []middlewares.RequestIDOption{middlewares.WithRequestIDHeaders("X-Custom-ID", "X-Trace-ID")},
			headers:    map[string]string{"X-Trace-ID": "trace-456"},
			respHeader: "X-Request-ID",
			want:       "trace-456",
		},
		{
			name: "generator and response header",
			opts: []middlewares.RequestIDOption{
				middlewares.WithRequestIDGenerator(func() string { return "generated" }),
				middlewares.WithRequestIDResponseHeader("X-Response-ID"),
			},
			respHeader: "X-Response-ID",
			want:       "generated",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			rec := httptest.NewRecorder()
			ctx := newTestContext(rec, req)

			var seen string
			err := middlewares.RequestID(tt.opts...)(func(c internal.Context) error {
				seen = middlewares.GetRequestID(c)
				return nil
			})(ctx)
			require.NoError(t, err)
			require.Equal(t, tt.want, rec.Header().Get(tt.respHeader))
			require.Equal(t, tt.want, seen)
		})
	}

	t.Run("generates a uuid by default", func(t *testing.T) {
		t.Parallel()

		rec := httptest.NewRecorder()
		ctx := newTestContext(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		require.NoError(t, middlewares.RequestID()(func(internal.Context) error { return nil })(ctx))
		_, err := uuid.Parse(rec.Header().Get("X-Request-ID"))
		require.NoError(t, err)
	})
}

func TestGetRequestID(t *testing.T) {
	t.Parallel()

	type requestIDKey struct{}

	ctx := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.Empty(t, middlewares.GetRequestID(ctx))

	ctx.Set(requestIDKey{}, 42)
	require.Empty(t, middlewares.GetRequestID(ctx), "foreign key of the same name is ignored")
}

func TestRequestIDExtractor(t *testing.T) {
	t.Parallel()

	extractor := middlewares.RequestIDExtractor()

	_, ok := extractor(context.Background())
	require.False(t, ok)

	ctx := newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	err := middlewares.RequestID(
		middlewares.WithRequestIDGenerator(func() string { return "req-1" }),
	)(func(internal.Context) error { return nil })(ctx)
	require.NoError(t, err)

	attr, ok := extractor(ctx)
	require.True(t, ok)
	require.Equal(t, "request_id", attr.Key)
	require.Equal(t, "req-1", attr.Value.String())

	empty := middlewares.RequestID(
		middlewares.WithRequestIDGenerator(func() string { return "" }),
	)
	ctx = newTestContext(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, empty(func(internal.Context) error { return nil })(ctx))
	_, ok = extractor(ctx)
	require.False(t, ok, "empty id is not logged")
}
