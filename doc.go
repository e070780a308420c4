// Package objgate is a gatekeeping reverse proxy for S3-compatible object
// storage shared by many tenants.
//
// A request for <match-prefix>/<configKey>/<objectKey> is authenticated,
// turned into a presigned GET against a healthy backend of the tenant and
// streamed back to the caller. Tenants come from the YAML configuration or,
// when unknown, from a JSON record in the session store.
//
// This package is the HTTP application shell. The gateway itself lives in
// internal/gateway and the binary in cmd/objgate.
//
// # Quick Start
//
//	cfg, err := config.Load(config.ResolvePath(""))
//	if err != nil {
//	    return err
//	}
//
//	svc, err := gateway.New(ctx, cfg, gateway.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//
//	app := objgate.New(svc.AppOptions()...)
//	return app.Run(svc.Addr(), svc.RunOptions()...)
//
// # Handlers
//
// Handlers implement the [Handler] interface to declare routes:
//
//	type Files struct{ store *Store }
//
//	func (h *Files) Routes(r objgate.Router) {
//	    r.GET("/files/*", h.get)
//	}
//
//	func (h *Files) get(c objgate.Context) error {
//	    return c.String(http.StatusOK, c.Param("*"))
//	}
//
// A handler that returns an error hands it to the [ErrorHandler]. Returning an
// [HTTPError] controls the status code and message the default handler renders.
//
// # Middleware
//
// [WithHTTPMiddleware] takes net/http middleware that runs before routing.
// [WithMiddleware] takes [Middleware] that sees the [Context]:
//
//	objgate.New(
//	    objgate.WithHTTPMiddleware(middlewares.CORS()),
//	    objgate.WithMiddleware(
//	        middlewares.RequestID(),
//	        middlewares.AccessLog(),
//	        middlewares.Recover(),
//	    ),
//	)
//
// # Health Checks
//
// [WithHealthChecks] mounts /health/live and /health/ready. Readiness fails
// while any key of a required pool registry has no healthy instance.
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM, drains in-flight requests and then runs
// the shutdown hooks in registration order within [ShutdownTimeout].
package objgate
