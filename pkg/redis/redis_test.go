package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOpen_Validation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	tests := []struct {
		name    string
		url     string
		wantErr error
	}{
		{"empty", "", ErrEmptyConnectionURL},
		{"http scheme", "http://localhost:6379", ErrFailedToParseURL},
		{"no scheme", "localhost:6379", ErrFailedToParseURL},
		{"invalid port", "redis://localhost:notaport", ErrFailedToParseURL},
		{"invalid database", "redis://localhost:6379/notanumber", ErrFailedToParseURL},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			client, err := Open(ctx, tt.url)
			require.ErrorIs(t, err, tt.wantErr)
			require.Nil(t, client)
		})
	}
}

func TestOpen_Unreachable(t *testing.T) {
	t.Parallel()

	start := time.Now()
	_, err := Open(context.Background(), "redis://127.0.0.1:1/0",
		WithRetry(2, 10*time.Millisecond),
		WithDialTimeout(100*time.Millisecond),
	)
	require.ErrorIs(t, err, ErrConnectionFailed)
	require.Less(t, time.Since(start), 2*time.Second)
}

func TestConfig_ConnectionURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"defaults", Config{}, "redis://127.0.0.1:6379/0"},
		{"discrete fields", Config{Host: "cache", Port: 6380, Database: 2}, "redis://cache:6380/2"},
		{"password", Config{Host: "cache", Port: 6379, Password: "s3cret"}, "redis://:s3cret@cache:6379/0"},
		{"url wins", Config{URL: "rediss://example.com:6379/1", Host: "ignored"}, "rediss://example.com:6379/1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.want, tt.cfg.ConnectionURL())
		})
	}
}

func TestConfig_Options(t *testing.T) {
	t.Parallel()

	o := defaultOptions()
	for _, opt := range (Config{PoolSize: 20, RetryAttempts: 1, RetryInterval: time.Second, Timeout: time.Second}).Options() {
		opt(o)
	}
	require.Equal(t, 20, o.poolSize)
	require.Equal(t, 5, o.minIdleConns, "zero keeps the default")
	require.Equal(t, 1, o.retryAttempts)
	require.Equal(t, time.Second, o.readTimeout)
	require.Equal(t, time.Second, o.writeTimeout)
	require.Equal(t, 5*time.Second, o.dialTimeout)
}

func TestHealthcheck_NilClient(t *testing.T) {
	t.Parallel()

	err := Healthcheck(nil)(context.Background())
	require.ErrorIs(t, err, ErrHealthcheckFailed)
}

type closer struct {
	err    error
	closed bool
}

func (c *closer) Close() error {
	c.closed = true
	return c.err
}

func TestShutdown(t *testing.T) {
	t.Parallel()

	c := &closer{}
	require.NoError(t, Shutdown(c)(context.Background()))
	require.True(t, c.closed)

	boom := errors.New("boom")
	require.ErrorIs(t, Shutdown(&closer{err: boom})(context.Background()), boom)
}

func TestWait(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, wait(ctx, 10*time.Second), context.Canceled)

	require.NoError(t, wait(context.Background(), time.Millisecond))
}
