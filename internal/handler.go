package internal

// Handler declares routes on a router.
//
// Example:
//
//	type ProxyHandler struct{ streamer *gateway.Streamer }
//
//	func (h *ProxyHandler) Routes(r objgate.Router) {
//	    r.Any("/minio/*", h.serve)
//	}
type Handler interface {
	Routes(r Router)
}

// HandlerFunc is the signature for route handlers.
// A non-nil error is passed to the app's error handler unless a response
// was already started.
type HandlerFunc func(c Context) error

// Middleware wraps a HandlerFunc.
type Middleware func(next HandlerFunc) HandlerFunc

// ErrorHandler renders errors returned from handlers.
type ErrorHandler func(Context, error) error
