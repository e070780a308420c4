package internal

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/objgate/pkg/health"
	"github.com/dmitrymomot/objgate/pkg/logger"
)

// App owns the router and its middleware. It is immutable after New.
type App struct {
	router          chi.Router
	errorHandler    ErrorHandler
	notFoundHandler HandlerFunc
	healthConfig    *healthConfig
	logger          *slog.Logger
	httpMiddlewares []func(http.Handler) http.Handler
	middlewares     []Middleware
	handlers        []Handler
	mounts          []mount
}

type mount struct {
	handler http.Handler
	pattern string
}

// New creates an application.
//
// Example:
//
//	app := objgate.New(
//	    objgate.WithLogger(log),
//	    objgate.WithMiddleware(middlewares.RequestID(), middlewares.Recover()),
//	    objgate.WithHandlers(gateway.NewHandler(streamer)),
//	)
func New(opts ...Option) *App {
	a := &App{
		router: chi.NewRouter(),
		logger: logger.NewNope(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.setupRoutes()
	return a
}

// Router returns the underlying chi.Router.
func (a *App) Router() chi.Router {
	return a.router
}

// ServeHTTP makes App an http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Run serves on addr and blocks until SIGINT/SIGTERM or a server error.
func (a *App) Run(addr string, opts ...RunOption) error {
	cfg := buildRunConfig(opts...)
	if cfg.logger == nil {
		cfg.logger = a.logger
	}
	return runServer(runtimeConfig{
		handler:           a.router,
		address:           addr,
		logger:            cfg.logger,
		shutdownTimeout:   cfg.shutdownTimeout,
		readHeaderTimeout: cfg.readHeaderTimeout,
		idleTimeout:       cfg.idleTimeout,
		startupHooks:      cfg.startupHooks,
		shutdownHooks:     cfg.shutdownHooks,
		baseCtx:           cfg.baseCtx,
		listener:          cfg.listener,
	})
}

func (a *App) setupRoutes() {
	if a.notFoundHandler != nil {
		a.router.NotFound(a.wrapHandler(a.notFoundHandler))
	}

	a.router.Use(a.httpMiddlewares...)
	for _, mw := range a.middlewares {
		a.router.Use(a.adaptMiddleware(mw))
	}

	if a.healthConfig != nil {
		a.router.Get(a.healthConfig.livenessPath, health.LivenessHandler())
		a.router.Get(a.healthConfig.readinessPath, health.ReadinessHandler(
			a.healthConfig.required,
			health.WithOptional(a.healthConfig.optional...),
			health.WithLogger(a.logger),
		))
	}

	for _, m := range a.mounts {
		a.router.Mount(m.pattern, m.handler)
	}

	r := &routerAdapter{router: a.router, app: a}
	for _, h := range a.handlers {
		h.Routes(r)
	}
}

func (a *App) wrapHandler(h HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := newContext(w, r, a.logger)
		if err := h(c); err != nil {
			a.handleError(c, err)
		}
	}
}

// handleError renders err unless the response already started.
func (a *App) handleError(c Context, err error) {
	if c.Written() {
		c.LogWarn("error after response started", slog.String("error", err.Error()))
		return
	}
	if a.errorHandler != nil {
		if herr := a.errorHandler(c, err); herr != nil {
			c.LogError("error handler failed", slog.String("error", herr.Error()))
		}
		return
	}
	if httpErr := AsHTTPError(err); httpErr != nil {
		http.Error(c.Response(), httpErr.Message, httpErr.Code)
		return
	}
	http.Error(c.Response(), "Internal Server Error", http.StatusInternalServerError)
}
