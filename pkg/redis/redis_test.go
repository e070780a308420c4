package redis

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestOpen(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("empty host", func(t *testing.T) {
		t.Parallel()

		client, err := Open(ctx, Endpoint{Port: 6379})
		require.Nil(t, client)
		require.ErrorIs(t, err, ErrEmptyHost)
	})

	t.Run("applies endpoint and options", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		ep := endpointFor(t, mr)
		ep.DB = 1

		client, err := Open(ctx, ep,
			WithPoolSize(4),
			WithMinIdleConns(-1),
			WithTimeouts(time.Second, 0, 0),
			WithRetry(1, 0),
		)
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })

		opts := client.Options()
		require.Equal(t, ep.Addr(), opts.Addr)
		require.Equal(t, 1, opts.DB)
		require.Equal(t, 4, opts.PoolSize)
		require.Equal(t, 0, opts.MinIdleConns)
		require.Equal(t, time.Second, opts.DialTimeout)
		require.Equal(t, 3*time.Second, opts.ReadTimeout)
	})

	t.Run("retries until the context ends", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		ep := endpointFor(t, mr)
		mr.Close()

		ctx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
		defer cancel()

		start := time.Now()
		client, err := Open(ctx, ep, WithRetry(5, time.Second))
		require.Nil(t, client)
		require.ErrorIs(t, err, ErrConnectionFailed)
		require.Less(t, time.Since(start), time.Second)
	})
}

func TestProbe(t *testing.T) {
	t.Parallel()

	t.Run("nil connection", func(t *testing.T) {
		t.Parallel()

		require.ErrorIs(t, Probe(context.Background(), nil), ErrHealthcheckFailed)
	})
}

type mockCloser struct {
	closed bool
	err    error
}

func (m *mockCloser) Close() error {
	m.closed = true
	return m.err
}

var _ io.Closer = (*mockCloser)(nil)

func TestShutdown(t *testing.T) {
	t.Parallel()

	t.Run("closes the client", func(t *testing.T) {
		t.Parallel()

		c := &mockCloser{}
		require.NoError(t, Shutdown(c)(context.Background()))
		require.True(t, c.closed)
	})

	t.Run("propagates close errors", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("close error")
		require.ErrorIs(t, Shutdown(&mockCloser{err: boom})(context.Background()), boom)
	})

	t.Run("already closed client is not an error", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, Shutdown(&mockCloser{err: redis.ErrClosed})(context.Background()))
	})

	t.Run("nil client", func(t *testing.T) {
		t.Parallel()

		require.NoError(t, Shutdown(nil)(context.Background()))
	})
}

func TestWait(t *testing.T) {
	t.Parallel()

	t.Run("cancelled context returns immediately", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		start := time.Now()
		require.ErrorIs(t, wait(ctx, 10*time.Second), context.Canceled)
		require.Less(t, time.Since(start), time.Second)
	})

	t.Run("waits the full duration", func(t *testing.T) {
		t.Parallel()

		start := time.Now()
		require.NoError(t, wait(context.Background(), 50*time.Millisecond))
		require.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
	})
}

func TestOptions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		opts  []Option
		check func(t *testing.T, o *clientOptions)
	}{
		{
			name: "defaults",
			check: func(t *testing.T, o *clientOptions) {
				require.Equal(t, DefaultPoolSize, o.poolSize)
				require.Equal(t, 3, o.retryAttempts)
				require.Equal(t, 5*time.Second, o.retryInterval)
				require.Equal(t, 5*time.Second, o.dialTimeout)
			},
		},
		{
			name: "non-positive pool size is ignored",
			opts: []Option{WithPoolSize(0), WithPoolSize(-3)},
			check: func(t *testing.T, o *clientOptions) {
				require.Equal(t, DefaultPoolSize, o.poolSize)
			},
		},
		{
			name: "later options win",
			opts: []Option{WithRetry(5, time.Second), WithRetry(1, 0), WithMaxIdleTime(time.Minute)},
			check: func(t *testing.T, o *clientOptions) {
				require.Equal(t, 1, o.retryAttempts)
				require.Zero(t, o.retryInterval)
				require.Equal(t, time.Minute, o.maxIdleTime)
			},
		},
		{
			name: "timeouts keep defaults for zero",
			opts: []Option{WithTimeouts(0, 7*time.Second, 0)},
			check: func(t *testing.T, o *clientOptions) {
				require.Equal(t, 5*time.Second, o.dialTimeout)
				require.Equal(t, 7*time.Second, o.readTimeout)
				require.Equal(t, 3*time.Second, o.writeTimeout)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			o := defaultOptions()
			for _, opt := range tt.opts {
				opt(o)
			}
			tt.check(t, o)
		})
	}
}
