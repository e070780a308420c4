package pool

import "errors"

var (
	ErrInit            = errors.New("pool: initialization failed")
	ErrConnect         = errors.New("pool: failed to open connection")
	ErrCheckoutTimeout = errors.New("pool: timed out waiting for a connection")
	ErrClosed          = errors.New("pool: closed")
	ErrNoInstances     = errors.New("pool: no instances registered for key")
	ErrUnavailable     = errors.New("pool: no healthy instance available")
	ErrInvalidInterval = errors.New("pool: health interval must be positive")
)
