package logger

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	sentryslog "github.com/getsentry/sentry-go/slog"
)

// Config describes the process logger.
type Config struct {
	// Output defaults to os.Stdout.
	Output io.Writer
	// Level is debug, info, warn or error. Default: info
	Level string
	// Format is json or text. Default: json
	Format string
	// SentryDSN enables Sentry reporting when set.
	SentryDSN   string
	Environment string
	// SentryMinLevel selects which records Sentry keeps as logs. Errors always become events.
	// Default: warn
	SentryMinLevel slog.Level
}

// ParseLevel maps a level name to slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("%w: %q", ErrUnknownLevel, s)
	}
}

// New builds the process logger and a shutdown hook that flushes Sentry.
// Sentry failures degrade to local output only.
func New(cfg Config, extractors ...ContextExtractor) (*slog.Logger, func(context.Context) error, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, nil, err
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}

	opts := &slog.HandlerOptions{Level: level}
	var local slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "", "json":
		local = slog.NewJSONHandler(out, opts)
	case "text":
		local = slog.NewTextHandler(out, opts)
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownFormat, cfg.Format)
	}

	noop := func(context.Context) error { return nil }
	if cfg.SentryDSN == "" {
		return slog.New(NewLogHandlerDecorator(local, extractors...)), noop, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.SentryDSN,
		Environment: cfg.Environment,
		EnableLogs:  true,
	}); err != nil {
		slog.New(local).Error("sentry disabled", slog.String("error", err.Error()))
		return slog.New(NewLogHandlerDecorator(local, extractors...)), noop, nil
	}

	logLevels := []slog.Level{slog.LevelWarn, slog.LevelError}
	if cfg.SentryMinLevel >= slog.LevelError {
		logLevels = []slog.Level{slog.LevelError}
	}
	remote := sentryslog.Option{
		EventLevel: []slog.Level{slog.LevelError},
		LogLevel:   logLevels,
	}.NewSentryHandler(context.Background())

	flush := func(ctx context.Context) error {
		timeout := 2 * time.Second
		if deadline, ok := ctx.Deadline(); ok {
			timeout = time.Until(deadline)
		}
		if !sentry.Flush(timeout) {
			return ErrFlushTimeout
		}
		return nil
	}
	return slog.New(NewLogHandlerDecorator(newMultiHandler(local, remote), extractors...)), flush, nil
}
