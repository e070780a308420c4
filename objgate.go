package objgate

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/dmitrymomot/objgate/internal"
	"github.com/dmitrymomot/objgate/pkg/health"
	"github.com/dmitrymomot/objgate/pkg/logger"
)

// Type aliases - public API
type (
	// App owns the HTTP router, middleware and server lifecycle.
	App = internal.App

	// Router is the interface handlers use to declare routes.
	Router = internal.Router

	// Context provides request/response access and helper methods.
	Context = internal.Context

	// Handler declares routes on a router.
	Handler = internal.Handler

	// HandlerFunc is the signature for route handlers.
	HandlerFunc = internal.HandlerFunc

	// Middleware wraps a HandlerFunc to add cross-cutting concerns.
	Middleware = internal.Middleware

	// ErrorHandler handles errors returned from handlers.
	ErrorHandler = internal.ErrorHandler

	// Option configures the application.
	Option = internal.Option

	// RunOption configures the server runtime.
	RunOption = internal.RunOption

	// HealthOption configures health check endpoints.
	HealthOption = internal.HealthOption

	// HealthSource is a pool registry the readiness check inspects.
	HealthSource = health.Source

	// HTTPError is an error with a status code and a client-facing message.
	HTTPError = internal.HTTPError

	// ResponseWriter records the status and size of a response.
	ResponseWriter = internal.ResponseWriter

	// ContextExtractor extracts a slog attribute from context.
	ContextExtractor = logger.ContextExtractor
)

// New creates an application with the given options.
// The App is immutable after creation.
//
// Example:
//
//	app := objgate.New(
//	    objgate.WithMiddleware(middlewares.RequestID()),
//	    objgate.WithHandlers(proxy),
//	)
//
//	err := app.Run(":8080", objgate.Logger(log))
func New(opts ...Option) *App {
	return internal.New(opts...)
}

// App options

// WithMiddleware adds global middleware. It is applied in the order provided.
func WithMiddleware(mw ...Middleware) Option {
	return internal.WithMiddleware(mw...)
}

// WithHTTPMiddleware adds net/http middleware that runs before any Middleware.
// Use it for handlers that must answer before routing, such as CORS preflight.
func WithHTTPMiddleware(mw ...func(http.Handler) http.Handler) Option {
	return internal.WithHTTPMiddleware(mw...)
}

// WithHandlers registers handlers that declare routes.
func WithHandlers(h ...Handler) Option {
	return internal.WithHandlers(h...)
}

// WithMount mounts a plain http.Handler at pattern.
func WithMount(pattern string, h http.Handler) Option {
	return internal.WithMount(pattern, h)
}

// WithErrorHandler sets the handler called when a route returns an error.
func WithErrorHandler(h ErrorHandler) Option {
	return internal.WithErrorHandler(h)
}

// WithNotFoundHandler sets a custom 404 handler.
func WithNotFoundHandler(h HandlerFunc) Option {
	return internal.WithNotFoundHandler(h)
}

// WithHealthChecks enables /health/live and /health/ready.
//
// Example:
//
//	objgate.WithHealthChecks(
//	    objgate.WithRequiredPools(pools.Storage),
//	    objgate.WithOptionalPools(pools.Sessions),
//	)
func WithHealthChecks(opts ...HealthOption) Option {
	return internal.WithHealthChecks(opts...)
}

// WithLogger sets the application logger.
func WithLogger(l *slog.Logger) Option {
	return internal.WithLogger(l)
}

// Health options

// WithRequiredPools gates readiness on every key of the given registries.
func WithRequiredPools(sources ...HealthSource) HealthOption {
	return internal.WithRequiredPools(sources...)
}

// WithOptionalPools reports the given registries without gating readiness.
func WithOptionalPools(sources ...HealthSource) HealthOption {
	return internal.WithOptionalPools(sources...)
}

// WithLivenessPath overrides the liveness path.
func WithLivenessPath(path string) HealthOption {
	return internal.WithLivenessPath(path)
}

// WithReadinessPath overrides the readiness path.
func WithReadinessPath(path string) HealthOption {
	return internal.WithReadinessPath(path)
}

// Run options

// Logger sets the logger used for server lifecycle events.
func Logger(l *slog.Logger) RunOption {
	return internal.Logger(l)
}

// ShutdownTimeout bounds graceful shutdown.
func ShutdownTimeout(d time.Duration) RunOption {
	return internal.ShutdownTimeout(d)
}

// ServerTimeouts sets the read-header and idle timeouts.
func ServerTimeouts(readHeader, idle time.Duration) RunOption {
	return internal.ServerTimeouts(readHeader, idle)
}

// StartupHook runs fn before the server accepts requests. An error aborts Run.
func StartupHook(fn func(context.Context) error) RunOption {
	return internal.StartupHook(fn)
}

// ShutdownHook runs fn after the server stops accepting requests.
func ShutdownHook(fn func(context.Context) error) RunOption {
	return internal.ShutdownHook(fn)
}

// WithContext sets the base context; cancelling it triggers shutdown.
func WithContext(ctx context.Context) RunOption {
	return internal.WithContext(ctx)
}

// WithListener serves on ln instead of binding addr.
func WithListener(ln net.Listener) RunOption {
	return internal.WithListener(ln)
}

// Errors

// NewHTTPError creates an HTTPError.
func NewHTTPError(code int, message string) *HTTPError {
	return internal.NewHTTPError(code, message)
}

// ErrBadRequest creates a 400 HTTPError.
func ErrBadRequest(message string) *HTTPError {
	return internal.ErrBadRequest(message)
}

// ErrUnauthorized creates a 401 HTTPError.
func ErrUnauthorized(message string) *HTTPError {
	return internal.ErrUnauthorized(message)
}

// ErrNotFound creates a 404 HTTPError.
func ErrNotFound(message string) *HTTPError {
	return internal.ErrNotFound(message)
}

// ErrBadGateway creates a 502 HTTPError.
func ErrBadGateway(message string) *HTTPError {
	return internal.ErrBadGateway(message)
}

// ErrServiceUnavailable creates a 503 HTTPError.
func ErrServiceUnavailable(message string) *HTTPError {
	return internal.ErrServiceUnavailable(message)
}

// AsHTTPError returns the HTTPError in err's chain, or nil.
func AsHTTPError(err error) *HTTPError {
	return internal.AsHTTPError(err)
}
