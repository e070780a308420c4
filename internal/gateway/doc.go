// Package gateway implements the request path of the object gateway.
//
// A request to <match-prefix>/<configKey>/<objectKey> is authenticated by an
// auth.Gate, whose bearer lookups go through the session pools. A
// LinkResolver then presigns a GET on a healthy storage instance for the
// tenant, and the Proxy streams the upstream response back with the
// Content-Type and Content-Disposition rewrites applied.
//
// Service assembles everything from a config.Config:
//
//	svc, err := gateway.New(ctx, cfg, gateway.WithLogger(log))
//	if err != nil {
//	    return err
//	}
//	app := objgate.New(svc.AppOptions()...)
//	return app.Run(svc.Addr(), svc.RunOptions()...)
//
// Pools that fail to build are logged and left out; the affected tenant gets
// 503 Backend unavailable instead of stopping the process. Tenants not present
// in the file can be loaded at runtime from the default session store when
// tenant-lookup-prefix is set.
package gateway
