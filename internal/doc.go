// Package internal implements the HTTP application shell behind the root
// objgate package: a chi router wrapped in a small handler and middleware
// model, request Context, HTTPError, and a runtime with graceful shutdown.
//
// Handlers return errors instead of writing failure responses themselves.
// The App passes them to its ErrorHandler unless the response already
// started, which matters for streamed bodies.
//
// The server has no write timeout. Streaming handlers rely on the request
// context to stop when the client goes away.
package internal
