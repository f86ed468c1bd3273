// Package logger builds the slog loggers used across kotori.
//
// A logger is created from Config, normally filled from LOG_LEVEL,
// LOG_FORMAT and the SENTRY_* variables:
//
//	log := logger.NewWithConfig(cfg.Log, os.Stderr, requestIDExtractor)
//
// Format is "json" (default) or "text". When SENTRY_DSN is set, records are
// also sent to Sentry: errors become issues, warnings are stored as logs. A
// failed Sentry init only disables the Sentry sink.
//
// # Context Extractors
//
// A ContextExtractor pulls one attribute out of the request context on every
// log call. Returning false skips the attribute:
//
//	requestID := func(ctx context.Context) (slog.Attr, bool) {
//		id, ok := ctx.Value(requestIDKey{}).(string)
//		return slog.String("request_id", id), ok
//	}
//
// NewLogHandlerDecorator applies extractors to any slog.Handler.
//
// NewNope returns a logger that discards everything. Packages use it as the
// default until a real logger is injected.
package logger
