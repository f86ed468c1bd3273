package hostrouter

import "net/http"

// GetDomain returns the request host without port, lowercased.
//
//	"example.com:8080" -> "example.com"
//	"[::1]:8080"       -> "[::1]"
func GetDomain(r *http.Request) string {
	return normalizeHost(r.Host)
}
