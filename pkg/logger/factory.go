package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// Output formats accepted by Config.Format.
const (
	FormatJSON = "json"
	FormatText = "text"
)

// Config selects the level, format and optional Sentry sink of a logger.
type Config struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
	Sentry SentryConfig
}

// New creates a JSON-formatted logger with optional context extractors.
func New(extractors ...ContextExtractor) *slog.Logger {
	return slog.New(NewLogHandlerDecorator(newStreamHandler(os.Stdout, FormatJSON, slog.LevelInfo), extractors...))
}

// NewWithConfig creates a logger writing to w (stdout when nil) in the
// configured format and level. A non-empty Sentry DSN adds a Sentry sink.
func NewWithConfig(cfg Config, w io.Writer, extractors ...ContextExtractor) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	stream := newStreamHandler(w, cfg.Format, ParseLevel(cfg.Level))
	if cfg.Sentry.DSN == "" {
		return slog.New(NewLogHandlerDecorator(stream, extractors...))
	}
	return slog.New(NewLogHandlerDecorator(withSentry(stream, cfg.Sentry), extractors...))
}

// ParseLevel maps debug, info, warn(ing) and error to slog levels.
// Anything else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func newStreamHandler(w io.Writer, format string, level slog.Level) slog.Handler {
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(format, FormatText) {
		return slog.NewTextHandler(w, opts)
	}
	return slog.NewJSONHandler(w, opts)
}
