// Package middlewares provides HTTP middleware for Kotori applications.
//
// # Request ID
//
// RequestID assigns a unique ID to each request. It reuses an incoming
// X-Request-ID (or X-Correlation-ID) header and generates a UUID otherwise.
// Pair it with RequestIDExtractor to get request_id in every log line:
//
//	app := kotori.New(
//	    kotori.WithLogger("web", middlewares.RequestIDExtractor()),
//	    kotori.WithMiddleware(middlewares.RequestID()),
//	)
//
// # Recover
//
// Recover converts panics into *PanicError. The application renders it
// through the fatal error page, with the stack trace in debug mode.
//
// # Timeout
//
// Timeout enforces a deadline and returns *TimeoutError, rendered as 503.
// The handler goroutine keeps running after the deadline; handlers should
// watch c.Done().
//
// # Filter
//
// Filter strips HTML from query parameters and url-encoded form values
// before controllers read them.
//
// # Access log
//
// AccessLog writes one line per request with status, size and duration.
//
// # Order
//
//	kotori.WithMiddleware(
//	    middlewares.RequestID(),
//	    middlewares.AccessLog(),
//	    middlewares.Recover(),
//	    middlewares.Filter(),
//	    middlewares.Timeout(5*time.Second),
//	)
package middlewares
