package middlewares

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/cors"
)

// DefaultCORSMaxAge is the default preflight cache duration.
const DefaultCORSMaxAge = 12 * time.Hour

// CORSConfig configures the CORS middleware.
type CORSConfig struct {
	// AllowOriginFunc overrides AllowOrigins when set.
	AllowOriginFunc func(origin string) bool
	Logger          *slog.Logger

	// AllowOrigins supports "*" and single-wildcard patterns like "https://*.example.com".
	AllowOrigins     []string
	AllowMethods     []string
	AllowHeaders     []string
	ExposeHeaders    []string
	MaxAge           time.Duration
	AllowCredentials bool
}

// CORSOption configures CORSConfig.
type CORSOption func(*CORSConfig)

// WithAllowOrigins sets the allowed origins.
func WithAllowOrigins(origins ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowOrigins = origins
	}
}

// WithAllowOriginFunc sets a dynamic origin validator.
func WithAllowOriginFunc(fn func(origin string) bool) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowOriginFunc = fn
	}
}

// WithAllowMethods sets the allowed HTTP methods.
func WithAllowMethods(methods ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowMethods = methods
	}
}

// WithAllowHeaders sets the allowed request headers.
func WithAllowHeaders(headers ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowHeaders = headers
	}
}

// WithExposeHeaders sets the headers readable by browser clients.
func WithExposeHeaders(headers ...string) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.ExposeHeaders = headers
	}
}

// WithAllowCredentials allows cookies and authorization headers.
func WithAllowCredentials() CORSOption {
	return func(cfg *CORSConfig) {
		cfg.AllowCredentials = true
	}
}

// WithMaxAge sets how long preflight responses may be cached.
func WithMaxAge(d time.Duration) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.MaxAge = d
	}
}

// WithCORSLogger logs CORS decisions at debug level.
func WithCORSLogger(l *slog.Logger) CORSOption {
	return func(cfg *CORSConfig) {
		cfg.Logger = l
	}
}

// CORS returns chi-style middleware. Register it with WithHTTPMiddleware so
// preflight requests are answered before any route matching.
//
// Browsers downloading objects need Range on the way in and the content
// headers on the way out, so both are allowed by default.
func CORS(opts ...CORSOption) func(http.Handler) http.Handler {
	cfg := &CORSConfig{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowHeaders:  []string{"Accept", "Authorization", "Content-Type", "Range", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "Content-Range", "Content-Disposition", "Accept-Ranges", "ETag", "X-Request-ID"},
		MaxAge:        DefaultCORSMaxAge,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	options := cors.Options{
		AllowedOrigins:   cfg.AllowOrigins,
		AllowedMethods:   cfg.AllowMethods,
		AllowedHeaders:   cfg.AllowHeaders,
		ExposedHeaders:   cfg.ExposeHeaders,
		AllowCredentials: cfg.AllowCredentials,
		MaxAge:           int(cfg.MaxAge / time.Second),
	}
	if fn := cfg.AllowOriginFunc; fn != nil {
		options.AllowedOrigins = nil
		options.AllowOriginFunc = func(_ *http.Request, origin string) bool {
			return fn(origin)
		}
	}

	c := cors.New(options)
	if cfg.Logger != nil {
		c.Log = slog.NewLogLogger(cfg.Logger.Handler(), slog.LevelDebug)
	}
	return c.Handler
}
