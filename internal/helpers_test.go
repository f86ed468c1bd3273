package internal_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/kotori/internal"
	"github.com/dmitrymomot/kotori/pkg/route"
)

func newParamContext(params map[string]string, queryString string) internal.Context {
	url := "/"
	if queryString != "" {
		url = "/?" + queryString
	}
	r := httptest.NewRequest(http.MethodGet, url, nil)

	rctx := chi.NewRouteContext()
	for k, v := range params {
		rctx.URLParams.Add(k, v)
	}
	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))

	return internal.NewTestContext(httptest.NewRecorder(), r, nil, route.Target{})
}

func TestParam(t *testing.T) {
	t.Parallel()

	t.Run("string", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			raw  string
			want string
		}{
			{"non-empty", "hello", "hello"},
			{"empty", "", ""},
			{"with spaces", "hello world", "hello world"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()
				c := newParamContext(map[string]string{"val": tt.raw}, "")
				require.Equal(t, tt.want, internal.Param[string](c, "val"))
			})
		}
	})

	t.Run("int", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			raw  string
			want int
		}{
			{"positive", "42", 42},
			{"negative", "-7", -7},
			{"zero", "0", 0},
			{"empty returns zero", "", 0},
			{"invalid returns zero", "abc", 0},
			{"float string returns zero", "3.14", 0},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()
				c := newParamContext(map[string]string{"val": tt.raw}, "")
				require.Equal(t, tt.want, internal.Param[int](c, "val"))
			})
		}
	})

	t.Run("int64", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			raw  string
			want int64
		}{
			{"positive", "9999999999", 9999999999},
			{"negative", "-100", -100},
			{"zero", "0", 0},
			{"empty returns zero", "", 0},
			{"invalid returns zero", "not-a-number", 0},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()
				c := newParamContext(map[string]string{"val": tt.raw}, "")
				require.Equal(t, tt.want, internal.Param[int64](c, "val"))
			})
		}
	})

	t.Run("float64", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			raw  string
			want float64
		}{
			{"positive", "3.14", 3.14},
			{"negative", "-2.5", -2.5},
			{"integer string", "42", 42.0},
			{"zero", "0", 0.0},
			{"empty returns zero", "", 0.0},
			{"invalid returns zero", "abc", 0.0},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()
				c := newParamContext(map[string]string{"val": tt.raw}, "")
				require.InDelta(t, tt.want, internal.Param[float64](c, "val"), 0.001)
			})
		}
	})

	t.Run("bool", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			raw  string
			want bool
		}{
			{"true", "true", true},
			{"1", "1", true},
			{"false", "false", false},
			{"0", "0", false},
			{"TRUE", "TRUE", true},
			{"empty returns false", "", false},
			{"invalid returns false", "maybe", false},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()
				c := newParamContext(map[string]string{"val": tt.raw}, "")
				require.Equal(t, tt.want, internal.Param[bool](c, "val"))
			})
		}
	})

	t.Run("missing param returns zero value", func(t *testing.T) {
		t.Parallel()

		c := newParamContext(map[string]string{}, "")
		require.Equal(t, "", internal.Param[string](c, "missing"))
		require.Equal(t, 0, internal.Param[int](c, "missing"))
		require.Equal(t, int64(0), internal.Param[int64](c, "missing"))
		require.InDelta(t, 0.0, internal.Param[float64](c, "missing"), 0.001)
		require.Equal(t, false, internal.Param[bool](c, "missing"))
	})
}

func TestQuery(t *testing.T) {
	t.Parallel()

	t.Run("string", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name  string
			query string
			want  string
		}{
			{"non-empty", "val=hello", "hello"},
			{"missing key", "", ""},
			{"empty value", "val=", ""},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()
				c := newParamContext(nil, tt.query)
				require.Equal(t, tt.want, internal.Query[string](c, "val"))
			})
		}
	})

	t.Run("int", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name  string
			query string
			want  int
		}{
			{"positive", "page=5", 5},
			{"zero", "page=0", 0},
			{"negative", "page=-1", -1},
			{"missing returns zero", "", 0},
			{"invalid returns zero", "page=abc", 0},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()
				c := newParamContext(nil, tt.query)
				require.Equal(t, tt.want, internal.Query[int](c, "page"))
			})
		}
	})

	t.Run("int64", func(t *testing.T) {
		t.Parallel()

		c := newParamContext(nil, "id=9876543210")
		require.Equal(t, int64(9876543210), internal.Query[int64](c, "id"))
	})

	t.Run("float64", func(t *testing.T) {
		t.Parallel()

		c := newParamContext(nil, "price=19.99")
		require.InDelta(t, 19.99, internal.Query[float64](c, "price"), 0.001)
	})

	t.Run("bool", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name  string
			query string
			want  bool
		}{
			{"true", "verbose=true", true},
			{"1", "verbose=1", true},
			{"false", "verbose=false", false},
			{"missing returns false", "", false},
			{"invalid returns false", "verbose=yes", false},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()
				c := newParamContext(nil, tt.query)
				require.Equal(t, tt.want, internal.Query[bool](c, "verbose"))
			})
		}
	})
}

func TestQueryDefault(t *testing.T) {
	t.Parallel()

	t.Run("returns default when missing", func(t *testing.T) {
		t.Parallel()

		c := newParamContext(nil, "")
		require.Equal(t, 1, internal.QueryDefault[int](c, "page", 1))
		require.Equal(t, "default", internal.QueryDefault[string](c, "name", "default"))
		require.Equal(t, int64(100), internal.QueryDefault[int64](c, "id", 100))
		require.InDelta(t, 9.99, internal.QueryDefault[float64](c, "price", 9.99), 0.001)
		require.Equal(t, true, internal.QueryDefault[bool](c, "flag", true))
	})

	t.Run("returns parsed value when present", func(t *testing.T) {
		t.Parallel()

		c := newParamContext(nil, "page=5&name=hello&id=200&price=19.99&flag=false")
		require.Equal(t, 5, internal.QueryDefault[int](c, "page", 1))
		require.Equal(t, "hello", internal.QueryDefault[string](c, "name", "default"))
		require.Equal(t, int64(200), internal.QueryDefault[int64](c, "id", 100))
		require.InDelta(t, 19.99, internal.QueryDefault[float64](c, "price", 9.99), 0.001)
		require.Equal(t, false, internal.QueryDefault[bool](c, "flag", true))
	})

	t.Run("returns default when empty value", func(t *testing.T) {
		t.Parallel()

		c := newParamContext(nil, "page=")
		require.Equal(t, 1, internal.QueryDefault[int](c, "page", 1))
	})

	t.Run("returns default on invalid when present", func(t *testing.T) {
		t.Parallel()

		// When the query param is present but unparseable, QueryDefault
		// returns the default value.
		c := newParamContext(nil, "page=abc")
		require.Equal(t, 1, internal.QueryDefault[int](c, "page", 1))
	})
}

func TestContextValue(t *testing.T) {
	t.Parallel()

	t.Run("returns correct typed value when key exists", func(t *testing.T) {
		t.Parallel()

		type key struct{}
		c := newParamContext(nil, "")
		c.Set(key{}, "hello")

		require.Equal(t, "hello", internal.ContextValue[string](c, key{}))
	})

	t.Run("returns zero value for wrong type", func(t *testing.T) {
		t.Parallel()

		type key struct{}
		c := newParamContext(nil, "")
		c.Set(key{}, 42) // stored as int

		require.Equal(t, "", internal.ContextValue[string](c, key{}))
	})

	t.Run("returns zero value for missing key", func(t *testing.T) {
		t.Parallel()

		type key struct{}
		c := newParamContext(nil, "")

		require.Equal(t, "", internal.ContextValue[string](c, key{}))
		require.Equal(t, 0, internal.ContextValue[int](c, key{}))
		require.Equal(t, false, internal.ContextValue[bool](c, key{}))
	})

	t.Run("works with custom struct types", func(t *testing.T) {
		t.Parallel()

		type key struct{}
		type user struct {
			Name string
			Age  int
		}

		c := newParamContext(nil, "")
		c.Set(key{}, user{Name: "Alice", Age: 30})

		got := internal.ContextValue[user](c, key{})
		require.Equal(t, "Alice", got.Name)
		require.Equal(t, 30, got.Age)
	})

	t.Run("returns zero struct for missing custom type", func(t *testing.T) {
		t.Parallel()

		type key struct{}
		type user struct {
			Name string
			Age  int
		}

		c := newParamContext(nil, "")

		got := internal.ContextValue[user](c, key{})
		require.Equal(t, user{}, got)
	})
}

func TestArg(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodGet, "/news/show/42/true", nil)
	c := internal.NewTestContext(httptest.NewRecorder(), r, nil, route.Target{
		Controller: "news",
		Action:     "show",
		Args:       []string{"42", "true", "ten"},
	})

	require.Equal(t, 42, internal.Arg[int](c, 0))
	require.Equal(t, "42", internal.Arg[string](c, 0))
	require.True(t, internal.Arg[bool](c, 1))
	require.Zero(t, internal.Arg[int](c, 2), "unparseable")
	require.Zero(t, internal.Arg[int](c, 3), "out of range")
	require.Zero(t, internal.Arg[int](c, -1), "negative index")
	require.Equal(t, []string{"42", "true", "ten"}, c.Args())
	require.Equal(t, "ten", c.Arg(2))
	require.Empty(t, c.Arg(5))
}
