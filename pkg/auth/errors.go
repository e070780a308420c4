package auth

import "errors"

var (
	// ErrUnauthorized wraps every denial returned by Gate.Check.
	ErrUnauthorized = errors.New("auth: unauthorized")

	ErrMissingHeader   = errors.New("auth: missing header")
	ErrMalformedHeader = errors.New("auth: malformed authorization header")
	ErrTokenNotFound   = errors.New("auth: session token not found")
	ErrLookupFailed    = errors.New("auth: session lookup failed")
	ErrValueMismatch   = errors.New("auth: header value mismatch")

	ErrNoSessionStore = errors.New("auth: bearer policy requires a session store")
	ErrUnknownPolicy  = errors.New("auth: unknown policy")
)
