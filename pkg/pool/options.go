package pool

import "time"

// Default pool settings.
const (
	DefaultMaxSize         = 8
	DefaultCheckoutTimeout = 5 * time.Second
)

// Option configures a Pool.
type Option func(*options)

type options struct {
	maxSize         int
	minIdle         int
	checkoutTimeout time.Duration
	testOnCheckout  bool
}

func defaultOptions() *options {
	return &options{
		maxSize:         DefaultMaxSize,
		checkoutTimeout: DefaultCheckoutTimeout,
		testOnCheckout:  true,
	}
}

// WithMaxSize sets the maximum number of connections the pool may hold,
// idle and checked out combined. Non-positive values are ignored.
// Default: 8
func WithMaxSize(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.maxSize = n
		}
	}
}

// WithMinIdle sets the number of connections opened when the pool is built.
// Idle connections are never closed proactively, so the pool stays at or
// above this count unless connections break.
// Default: 0
func WithMinIdle(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.minIdle = n
		}
	}
}

// WithCheckoutTimeout bounds how long Get waits for a free connection.
// Default: 5 seconds
func WithCheckoutTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.checkoutTimeout = d
		}
	}
}

// WithTestOnCheckout toggles the Manager.IsValid call on idle connections
// before they are handed out.
// Default: true
func WithTestOnCheckout(enabled bool) Option {
	return func(o *options) {
		o.testOnCheckout = enabled
	}
}
