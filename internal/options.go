package internal

import (
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/objgate/pkg/health"
)

// Option configures the application.
type Option func(*App)

// WithMiddleware adds global middleware, applied in the order given.
func WithMiddleware(mw ...Middleware) Option {
	return func(a *App) {
		a.middlewares = append(a.middlewares, mw...)
	}
}

// WithHTTPMiddleware adds chi-style middleware.
// It runs before any Middleware added with WithMiddleware.
func WithHTTPMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return func(a *App) {
		a.httpMiddlewares = append(a.httpMiddlewares, mw...)
	}
}

// WithHandlers registers handlers that declare routes.
func WithHandlers(h ...Handler) Option {
	return func(a *App) {
		a.handlers = append(a.handlers, h...)
	}
}

// WithMount attaches a plain http.Handler, e.g. the metrics endpoint.
// Mounted handlers still pass through global middleware.
func WithMount(pattern string, h http.Handler) Option {
	return func(a *App) {
		if pattern != "" && h != nil {
			a.mounts = append(a.mounts, mount{pattern: pattern, handler: h})
		}
	}
}

// WithErrorHandler sets the handler for errors returned from handlers.
//
// Example:
//
//	objgate.WithErrorHandler(func(c objgate.Context, err error) error {
//	    return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal error"})
//	})
func WithErrorHandler(h ErrorHandler) Option {
	return func(a *App) {
		a.errorHandler = h
	}
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return func(a *App) {
		a.notFoundHandler = h
	}
}

// WithHealthChecks enables the probe endpoints.
// Liveness (/health/live) answers OK while the process runs.
// Readiness (/health/ready) fails while a required pool key has no healthy instance.
//
// Example:
//
//	objgate.WithHealthChecks(
//	    objgate.WithRequiredPools(storagePools),
//	    objgate.WithOptionalPools(sessionPools),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return func(a *App) {
		cfg := &healthConfig{
			livenessPath:  defaultLivenessPath,
			readinessPath: defaultReadinessPath,
		}
		for _, opt := range opts {
			opt(cfg)
		}
		a.healthConfig = cfg
	}
}

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *App) {
		if l != nil {
			a.logger = l
		}
	}
}

type healthConfig struct {
	livenessPath  string
	readinessPath string
	required      []health.Source
	optional      []health.Source
}

const (
	defaultLivenessPath  = "/health/live"
	defaultReadinessPath = "/health/ready"
)

// HealthOption configures the probe endpoints.
type HealthOption func(*healthConfig)

// WithLivenessPath overrides /health/live.
func WithLivenessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.livenessPath = path
		}
	}
}

// WithReadinessPath overrides /health/ready.
func WithReadinessPath(path string) HealthOption {
	return func(c *healthConfig) {
		if path != "" {
			c.readinessPath = path
		}
	}
}

// WithRequiredPools adds pool registries that gate readiness.
func WithRequiredPools(sources ...health.Source) HealthOption {
	return func(c *healthConfig) {
		c.required = append(c.required, sources...)
	}
}

// WithOptionalPools adds pool registries that are reported but never fail readiness.
func WithOptionalPools(sources ...health.Source) HealthOption {
	return func(c *healthConfig) {
		c.optional = append(c.optional, sources...)
	}
}
