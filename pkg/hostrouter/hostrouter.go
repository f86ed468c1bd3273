package hostrouter

import (
	"net"
	"net/http"
	"strings"
)

// Routes maps host patterns to handlers.
// Exact: "api.example.com". Wildcard: "*.example.com".
type Routes map[string]http.Handler

// Router picks a handler by the request Host header.
type Router struct {
	exact    map[string]http.Handler
	wildcard map[string]http.Handler // keyed by the suffix after "*."
	fallback http.Handler
}

// New creates a host router. Requests matching no pattern go to fallback,
// or get a 404 when fallback is nil.
func New(routes Routes, fallback http.Handler) *Router {
	if fallback == nil {
		fallback = http.NotFoundHandler()
	}
	r := &Router{
		exact:    make(map[string]http.Handler),
		wildcard: make(map[string]http.Handler),
		fallback: fallback,
	}
	for pattern, h := range routes {
		pattern = strings.ToLower(strings.TrimSpace(pattern))
		switch {
		case pattern == "" || h == nil:
		case strings.HasPrefix(pattern, "*."):
			r.wildcard[pattern[2:]] = h
		default:
			r.exact[pattern] = h
		}
	}
	return r
}

// Lookup returns the handler registered for host. An exact pattern wins over
// a wildcard; among wildcards the longest suffix wins, so "*.b.example.com"
// beats "*.example.com" for "a.b.example.com".
func (r *Router) Lookup(host string) (http.Handler, bool) {
	host = normalizeHost(host)
	if h, ok := r.exact[host]; ok {
		return h, true
	}
	for rest := host; ; {
		_, suffix, ok := strings.Cut(rest, ".")
		if !ok {
			return nil, false
		}
		if h, ok := r.wildcard[suffix]; ok {
			return h, true
		}
		rest = suffix
	}
}

// ServeHTTP dispatches to the handler for the request host.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if h, ok := r.Lookup(req.Host); ok {
		h.ServeHTTP(w, req)
		return
	}
	r.fallback.ServeHTTP(w, req)
}

// normalizeHost strips the port and lowercases. IPv6 literals keep their
// brackets.
func normalizeHost(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		if strings.Contains(h, ":") {
			h = "[" + h + "]"
		}
		host = h
	}
	return strings.ToLower(host)
}
