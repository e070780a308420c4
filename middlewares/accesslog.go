package middlewares

import (
	"log/slog"
	"strings"
	"time"

	"github.com/dmitrymomot/objgate/internal"
)

// AccessLogConfig configures the access log middleware.
type AccessLogConfig struct {
	SkipPaths []string
	Level     slog.Level
}

// AccessLogOption configures AccessLogConfig.
type AccessLogOption func(*AccessLogConfig)

// WithAccessLogSkipPaths omits requests whose path starts with one of prefixes.
func WithAccessLogSkipPaths(prefixes ...string) AccessLogOption {
	return func(cfg *AccessLogConfig) {
		cfg.SkipPaths = append(cfg.SkipPaths, prefixes...)
	}
}

// WithAccessLogLevel sets the level for successful requests.
// 4xx responses are logged at warn and 5xx at error regardless.
func WithAccessLogLevel(level slog.Level) AccessLogOption {
	return func(cfg *AccessLogConfig) {
		cfg.Level = level
	}
}

// AccessLog writes one record per request after the response completes.
// Register it before Recover so recovered panics are logged with their final status.
func AccessLog(opts ...AccessLogOption) internal.Middleware {
	cfg := &AccessLogConfig{Level: slog.LevelInfo}
	for _, opt := range opts {
		opt(cfg)
	}

	return func(next internal.HandlerFunc) internal.HandlerFunc {
		return func(c internal.Context) error {
			path := c.Request().URL.Path
			for _, p := range cfg.SkipPaths {
				if strings.HasPrefix(path, p) {
					return next(c)
				}
			}

			start := time.Now()
			err := next(c)

			rw := c.ResponseWriter()
			status := rw.Status()
			level := cfg.Level
			switch {
			case status >= 500:
				level = slog.LevelError
			case status >= 400:
				level = slog.LevelWarn
			}

			attrs := []slog.Attr{
				slog.String("method", c.Request().Method),
				slog.String("path", path),
				slog.Int("status", status),
				slog.Int64("bytes", rw.Size()),
				slog.Duration("duration", time.Since(start)),
				slog.String("remote_addr", c.Request().RemoteAddr),
			}
			if err != nil {
				attrs = append(attrs, slog.String("error", err.Error()))
			}
			c.Logger().LogAttrs(c.Context(), level, "request", attrs...)

			return err
		}
	}
}
