package cache

import "errors"

var (
	ErrNotConfigured      = errors.New("cache: cache is not configured")
	ErrNotFound           = errors.New("cache: entry not found")
	ErrClosed             = errors.New("cache: closed")
	ErrMarshal            = errors.New("cache: failed to marshal value")
	ErrUnmarshal          = errors.New("cache: failed to unmarshal value")
	ErrNotInteger         = errors.New("cache: value is not an integer")
	ErrUnsupportedAdapter = errors.New("cache: unsupported adapter")
	ErrAdapterUnavailable = errors.New("cache: adapter is unavailable")
)
