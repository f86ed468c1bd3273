package logger_test

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/kotori/pkg/logger"
)

type traceKey struct{}

func traceExtractor(ctx context.Context) (slog.Attr, bool) {
	id, ok := ctx.Value(traceKey{}).(string)
	return slog.String("trace_id", id), ok
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	require.Equal(t, slog.LevelDebug, logger.ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, logger.ParseLevel("warning"))
	require.Equal(t, slog.LevelWarn, logger.ParseLevel(" warn "))
	require.Equal(t, slog.LevelError, logger.ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, logger.ParseLevel(""))
	require.Equal(t, slog.LevelInfo, logger.ParseLevel("verbose"))
}

func TestNewWithConfig(t *testing.T) {
	t.Parallel()

	t.Run("json respects level", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.NewWithConfig(logger.Config{Level: "warn", Format: "json"}, &buf)
		log.Info("hidden")
		log.Warn("shown", "k", "v")

		require.NotContains(t, buf.String(), "hidden")
		require.Contains(t, buf.String(), `"msg":"shown"`)
		require.Contains(t, buf.String(), `"k":"v"`)
	})

	t.Run("text format", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.NewWithConfig(logger.Config{Level: "debug", Format: "text"}, &buf)
		log.Debug("hello", "k", "v")

		require.Contains(t, buf.String(), "level=DEBUG")
		require.Contains(t, buf.String(), "msg=hello")
	})

	t.Run("extractors", func(t *testing.T) {
		t.Parallel()

		var buf bytes.Buffer
		log := logger.NewWithConfig(logger.Config{}, &buf, traceExtractor, nil)
		ctx := context.WithValue(context.Background(), traceKey{}, "abc")
		log.InfoContext(ctx, "with trace")
		log.Info("without trace")

		require.Contains(t, buf.String(), `"trace_id":"abc"`)
		require.Equal(t, 1, bytes.Count(buf.Bytes(), []byte("trace_id")))
	})
}

func TestNewNope(t *testing.T) {
	t.Parallel()

	log := logger.NewNope()
	require.NotNil(t, log)
	log.Error("discarded")
}
