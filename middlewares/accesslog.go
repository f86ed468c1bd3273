package middlewares

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/kotori/internal"
)

// AccessLog returns middleware that logs one line per request with the
// method, path, status, response size and duration. Server errors are
// logged at error level, client errors at warn, the rest at info.
func AccessLog() internal.Middleware {
	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			start := time.Now()
			err := next(c)

			rw := c.ResponseWriter()
			status := rw.Status()
			if !rw.Written() {
				status = 0
			}

			level := slog.LevelInfo
			switch {
			case err != nil || status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}

			attrs := []slog.Attr{
				slog.String("method", c.Request().Method),
				slog.String("path", c.Request().URL.Path),
				slog.Int("status", status),
				slog.Int64("size", rw.Size()),
				slog.Duration("duration", time.Since(start)),
			}
			if t := c.Target(); t.Controller != "" {
				attrs = append(attrs, slog.String("target", t.Controller+"/"+t.Action))
			}
			if err != nil {
				attrs = append(attrs, slog.Any("error", err))
			}
			c.Logger().LogAttrs(c, level, "request", attrs...)

			return err
		}
	}
}
