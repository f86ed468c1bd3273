package route

import "errors"

// Sentinel errors for the route package.
var (
	// ErrInvalidPattern is returned when a rule pattern is not a valid regular expression.
	ErrInvalidPattern = errors.New("route: invalid pattern")

	// ErrInvalidTarget is returned when a rule has no targets or a target is not a string.
	ErrInvalidTarget = errors.New("route: invalid target")

	// ErrMethodNotAllowed is returned by Match when a pattern matched the path
	// but no rule declares a target for the request verb.
	ErrMethodNotAllowed = errors.New("route: method not allowed")

	// ErrNotFound is returned by Match when no rule matched and the default
	// rule is disabled.
	ErrNotFound = errors.New("route: no route matched")

	// ErrReadFile is returned when a route file cannot be read or decoded.
	ErrReadFile = errors.New("route: failed to read route file")
)
