package middlewares

import (
	"net/http"
	"strings"

	"github.com/dmitrymomot/kotori/internal"
	"github.com/dmitrymomot/kotori/pkg/sanitizer"
)

// FilterConfig configures the input filter middleware.
type FilterConfig struct {
	Clean func(string) string // Applied to every value (default: sanitizer.StripHTML)
	Query bool                // Filter query parameters (default: true)
	Form  bool                // Filter url-encoded form bodies (default: true)
}

// FilterOption configures FilterConfig.
type FilterOption func(*FilterConfig)

// WithFilterFunc replaces the cleaning function, e.g. sanitizer.SanitizeHTML
// to keep safe markup.
func WithFilterFunc(fn func(string) string) FilterOption {
	return func(cfg *FilterConfig) {
		if fn != nil {
			cfg.Clean = fn
		}
	}
}

// WithFilterQueryOnly leaves request bodies untouched.
func WithFilterQueryOnly() FilterOption {
	return func(cfg *FilterConfig) {
		cfg.Form = false
	}
}

// Filter returns middleware that strips HTML from query parameters and
// url-encoded form values before the handler reads them. Multipart bodies
// are not touched.
func Filter(opts ...FilterOption) internal.Middleware {
	cfg := &FilterConfig{
		Clean: sanitizer.StripHTML,
		Query: true,
		Form:  true,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			r := c.Request()

			if cfg.Query && r.URL.RawQuery != "" {
				q := r.URL.Query()
				if n := sanitizer.Values(q, cfg.Clean); n > 0 {
					r.URL.RawQuery = q.Encode()
					c.LogDebug("query filtered", "values", n)
				}
			}

			if cfg.Form && hasFormBody(r) {
				if err := r.ParseForm(); err != nil {
					return internal.ErrBadRequest("Malformed form data", internal.WithError(err))
				}
				n := sanitizer.Values(r.PostForm, cfg.Clean)
				sanitizer.Values(r.Form, cfg.Clean)
				if n > 0 {
					c.LogDebug("form filtered", "values", n)
				}
			}

			return next(c)
		}
	}
}

func hasFormBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
	default:
		return false
	}
	ct := r.Header.Get("Content-Type")
	return strings.HasPrefix(ct, "application/x-www-form-urlencoded")
}
