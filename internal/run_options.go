package internal

import (
	"context"
	"log/slog"
	"net"
	"time"
)

// RunOption configures the server runtime.
type RunOption func(*runConfig)

type runConfig struct {
	logger            *slog.Logger
	baseCtx           context.Context
	listener          net.Listener
	startupHooks      []func(context.Context) error
	shutdownHooks     []func(context.Context) error
	shutdownTimeout   time.Duration
	readHeaderTimeout time.Duration
	idleTimeout       time.Duration
}

func buildRunConfig(opts ...RunOption) *runConfig {
	cfg := &runConfig{
		shutdownTimeout:   defaultShutdownTimeout,
		readHeaderTimeout: defaultReadHeaderTimeout,
		idleTimeout:       defaultIdleTimeout,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Logger sets the runtime logger. Defaults to the app logger.
func Logger(l *slog.Logger) RunOption {
	return func(c *runConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// ShutdownTimeout bounds the HTTP drain and the shutdown hooks together.
// Defaults to 30 seconds.
func ShutdownTimeout(d time.Duration) RunOption {
	return func(c *runConfig) {
		if d > 0 {
			c.shutdownTimeout = d
		}
	}
}

// ServerTimeouts sets the header read and keep-alive idle timeouts.
// There is no write timeout: responses stream for as long as the client reads.
func ServerTimeouts(readHeader, idle time.Duration) RunOption {
	return func(c *runConfig) {
		if readHeader > 0 {
			c.readHeaderTimeout = readHeader
		}
		if idle > 0 {
			c.idleTimeout = idle
		}
	}
}

// StartupHook runs before the listener accepts requests.
// A failing hook aborts Run.
//
// Example:
//
//	objgate.StartupHook(func(ctx context.Context) error {
//	    monitor.Start()
//	    return nil
//	})
func StartupHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.startupHooks = append(c.startupHooks, fn)
		}
	}
}

// ShutdownHook registers a cleanup function, run in registration order
// after the HTTP server has drained.
//
// Example:
//
//	objgate.ShutdownHook(monitor.Shutdown())
func ShutdownHook(fn func(context.Context) error) RunOption {
	return func(c *runConfig) {
		if fn != nil {
			c.shutdownHooks = append(c.shutdownHooks, fn)
		}
	}
}

// WithContext sets the base context for signal handling.
// Cancelling it triggers a graceful shutdown.
func WithContext(ctx context.Context) RunOption {
	return func(c *runConfig) {
		if ctx != nil {
			c.baseCtx = ctx
		}
	}
}

// WithListener serves on an existing listener instead of dialing addr.
func WithListener(ln net.Listener) RunOption {
	return func(c *runConfig) {
		if ln != nil {
			c.listener = ln
		}
	}
}
