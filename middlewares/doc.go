// Package middlewares provides the HTTP middleware used by the gateway.
//
// RequestID tags each request with an ID taken from the incoming headers or
// generated as a UUID. Pair it with RequestIDExtractor so every log record
// made with the request context carries request_id:
//
//	log, flush, err := logger.New(cfg, middlewares.RequestIDExtractor())
//
// AccessLog writes one record per request once the response is complete.
//
// Recover converts panics into *PanicError so the error handler can render a 500.
//
// CORS wraps github.com/go-chi/cors. It is chi-style middleware and is
// registered with WithHTTPMiddleware so preflight requests never reach auth.
//
// Recommended order:
//
//	app := objgate.New(
//	    objgate.WithHTTPMiddleware(middlewares.CORS(middlewares.WithAllowOrigins(cfg.CORS.AllowOrigins...))),
//	    objgate.WithMiddleware(
//	        middlewares.RequestID(),
//	        middlewares.AccessLog(middlewares.WithAccessLogSkipPaths("/health", "/metrics")),
//	        middlewares.Recover(),
//	    ),
//	)
package middlewares
