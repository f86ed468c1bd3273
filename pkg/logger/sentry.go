package logger

import (
	"context"
	"log/slog"
	"os"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// SentryConfig holds Sentry integration configuration.
type SentryConfig struct {
	DSN         string `env:"SENTRY_DSN"`
	Environment string `env:"SENTRY_ENVIRONMENT" envDefault:"production"`
	// MinLevel determines which log levels are sent to Sentry as logs.
	MinLevel slog.Level
}

// NewWithSentry creates a logger that sends logs to both stdout and Sentry.
// If DSN is empty, only stdout logging is enabled.
func NewWithSentry(cfg SentryConfig, extractors ...ContextExtractor) *slog.Logger {
	stream := newStreamHandler(os.Stdout, FormatJSON, slog.LevelInfo)
	if cfg.DSN == "" {
		return slog.New(NewLogHandlerDecorator(stream, extractors...))
	}
	return slog.New(NewLogHandlerDecorator(withSentry(stream, cfg), extractors...))
}

// withSentry initializes the Sentry SDK and fans records out to both
// handlers. On init failure the stream handler is returned alone.
func withSentry(stream slog.Handler, cfg SentryConfig) slog.Handler {
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		EnableLogs:  true,
	}); err != nil {
		slog.New(stream).Error("failed to initialize Sentry", slog.String("error", err.Error()))
		return stream
	}

	// Errors become Sentry issues; warnings are kept as searchable logs.
	logLevel := []slog.Level{slog.LevelWarn, slog.LevelError}
	if cfg.MinLevel == slog.LevelError {
		logLevel = []slog.Level{slog.LevelError}
	}
	sentryHandler := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   logLevel,
	}.NewSentryHandler(context.Background())

	return newMultiHandler(stream, sentryHandler)
}
