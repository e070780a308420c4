package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultPoolSize bounds the sockets one session-store client keeps open.
const DefaultPoolSize = 50

// Option tunes the go-redis client behind a Manager.
type Option func(*clientOptions)

type clientOptions struct {
	poolSize      int
	minIdleConns  int
	maxIdleTime   time.Duration
	retryAttempts int
	retryInterval time.Duration
	dialTimeout   time.Duration
	readTimeout   time.Duration
	writeTimeout  time.Duration
}

func defaultOptions() *clientOptions {
	return &clientOptions{
		poolSize:      DefaultPoolSize,
		maxIdleTime:   10 * time.Minute,
		retryAttempts: 3,
		retryInterval: 5 * time.Second,
		dialTimeout:   5 * time.Second,
		readTimeout:   3 * time.Second,
		writeTimeout:  3 * time.Second,
	}
}

// WithPoolSize caps the client's sockets. Values below 1 are ignored.
func WithPoolSize(n int) Option {
	return func(o *clientOptions) {
		if n > 0 {
			o.poolSize = n
		}
	}
}

// WithMinIdleConns keeps n sockets open between requests.
func WithMinIdleConns(n int) Option {
	return func(o *clientOptions) {
		if n >= 0 {
			o.minIdleConns = n
		}
	}
}

// WithMaxIdleTime closes sockets idle for longer than d.
func WithMaxIdleTime(d time.Duration) Option {
	return func(o *clientOptions) {
		o.maxIdleTime = d
	}
}

// WithRetry sets how many times Open pings before giving up, waiting
// interval, 2*interval, ... between attempts. WithRetry(1, 0) fails fast.
func WithRetry(attempts int, interval time.Duration) Option {
	return func(o *clientOptions) {
		o.retryAttempts = attempts
		o.retryInterval = interval
	}
}

// WithTimeouts sets dial, read and write timeouts. Zero keeps the default.
func WithTimeouts(dial, read, write time.Duration) Option {
	return func(o *clientOptions) {
		if dial > 0 {
			o.dialTimeout = dial
		}
		if read > 0 {
			o.readTimeout = read
		}
		if write > 0 {
			o.writeTimeout = write
		}
	}
}

// Open creates a client for ep and verifies it with PING.
func Open(ctx context.Context, ep Endpoint, opts ...Option) (*redis.Client, error) {
	if ep.Host == "" {
		return nil, ErrEmptyHost
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	return connect(ctx, &redis.Options{
		Addr:            ep.Addr(),
		Username:        ep.Username,
		Password:        ep.Password,
		DB:              ep.DB,
		PoolSize:        o.poolSize,
		MinIdleConns:    o.minIdleConns,
		ConnMaxIdleTime: o.maxIdleTime,
		DialTimeout:     o.dialTimeout,
		ReadTimeout:     o.readTimeout,
		WriteTimeout:    o.writeTimeout,
	}, o.retryAttempts, o.retryInterval)
}

// connect pings with linear backoff. The last attempt does not wait.
func connect(ctx context.Context, opts *redis.Options, attempts int, interval time.Duration) (*redis.Client, error) {
	attempts = max(attempts, 1)

	var lastErr error
	for i := range attempts {
		client := redis.NewClient(opts)
		if lastErr = client.Ping(ctx).Err(); lastErr == nil {
			return client, nil
		}
		_ = client.Close()

		if i == attempts-1 {
			break
		}
		if err := wait(ctx, time.Duration(i+1)*interval); err != nil {
			return nil, errors.Join(ErrConnectionFailed, err)
		}
	}
	return nil, errors.Join(ErrConnectionFailed, lastErr)
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
