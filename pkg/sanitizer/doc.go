// Package sanitizer cleans untrusted input with bluemonday policies.
//
// StripHTML removes all markup, SanitizeHTML keeps a small formatting
// subset, and Values applies either to a whole url.Values set. The Filter
// middleware uses Values on query and form input before handlers run.
package sanitizer
