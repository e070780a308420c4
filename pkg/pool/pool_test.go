package pool

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	id     int
	broken bool
}

type fakeManager struct {
	connectErr error
	invalid    func(*fakeConn) bool
	nextID     atomic.Int64
	connects   atomic.Int64
	closes     atomic.Int64
}

func (m *fakeManager) Connect(ctx context.Context) (*fakeConn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.connectErr != nil {
		return nil, m.connectErr
	}
	m.connects.Add(1)
	return &fakeConn{id: int(m.nextID.Add(1))}, nil
}

func (m *fakeManager) IsValid(_ context.Context, c *fakeConn) error {
	if m.invalid != nil && m.invalid(c) {
		return errors.New("invalid")
	}
	return nil
}

func (m *fakeManager) HasBroken(c *fakeConn) bool { return c.broken }

func (m *fakeManager) Close(*fakeConn) error {
	m.closes.Add(1)
	return nil
}

func TestNew(t *testing.T) {
	t.Parallel()

	t.Run("opens min idle connections", func(t *testing.T) {
		t.Parallel()

		m := &fakeManager{}
		p, err := New(context.Background(), m, WithMaxSize(4), WithMinIdle(2))
		require.NoError(t, err)
		t.Cleanup(func() { _ = p.Close() })

		require.Equal(t, Stats{Open: 2, Idle: 2, InUse: 0, MaxSize: 4}, p.Stats())
		require.EqualValues(t, 2, m.connects.Load())
	})

	t.Run("min idle is capped at max size", func(t *testing.T) {
		t.Parallel()

		p, err := New(context.Background(), &fakeManager{}, WithMaxSize(2), WithMinIdle(10))
		require.NoError(t, err)
		t.Cleanup(func() { _ = p.Close() })

		require.Equal(t, 2, p.Stats().Idle)
	})

	t.Run("connect failure returns ErrInit", func(t *testing.T) {
		t.Parallel()

		m := &fakeManager{connectErr: errors.New("dial refused")}
		p, err := New(context.Background(), m, WithMinIdle(1))
		require.Nil(t, p)
		require.ErrorIs(t, err, ErrInit)
	})

	t.Run("nil manager returns ErrInit", func(t *testing.T) {
		t.Parallel()

		p, err := New[*fakeConn](context.Background(), nil)
		require.Nil(t, p)
		require.ErrorIs(t, err, ErrInit)
	})

	t.Run("lazy pool opens nothing", func(t *testing.T) {
		t.Parallel()

		m := &fakeManager{}
		p, err := New(context.Background(), m)
		require.NoError(t, err)
		require.Equal(t, 0, p.Stats().Open)
		require.Equal(t, DefaultMaxSize, p.Stats().MaxSize)
	})
}

func TestPool_GetPut(t *testing.T) {
	t.Parallel()

	t.Run("reuses idle connection", func(t *testing.T) {
		t.Parallel()

		m := &fakeManager{}
		p, err := New(context.Background(), m, WithMaxSize(2))
		require.NoError(t, err)

		c1, err := p.Get(context.Background())
		require.NoError(t, err)
		p.Put(c1)

		c2, err := p.Get(context.Background())
		require.NoError(t, err)
		require.Same(t, c1, c2)
		require.EqualValues(t, 1, m.connects.Load())
		p.Put(c2)
	})

	t.Run("broken connection is closed on put", func(t *testing.T) {
		t.Parallel()

		m := &fakeManager{}
		p, err := New(context.Background(), m)
		require.NoError(t, err)

		c, err := p.Get(context.Background())
		require.NoError(t, err)
		c.broken = true
		p.Put(c)

		require.Equal(t, 0, p.Stats().Open)
		require.EqualValues(t, 1, m.closes.Load())
	})

	t.Run("invalid idle connection is replaced", func(t *testing.T) {
		t.Parallel()

		m := &fakeManager{invalid: func(c *fakeConn) bool { return c.id == 1 }}
		p, err := New(context.Background(), m, WithMinIdle(1))
		require.NoError(t, err)

		c, err := p.Get(context.Background())
		require.NoError(t, err)
		require.Equal(t, 2, c.id)
		require.EqualValues(t, 1, m.closes.Load())
		p.Put(c)
	})

	t.Run("validation skipped when disabled", func(t *testing.T) {
		t.Parallel()

		m := &fakeManager{invalid: func(*fakeConn) bool { return true }}
		p, err := New(context.Background(), m, WithMinIdle(1), WithTestOnCheckout(false))
		require.NoError(t, err)

		c, err := p.Get(context.Background())
		require.NoError(t, err)
		require.Equal(t, 1, c.id)
		p.Put(c)
	})

	t.Run("discard frees the slot", func(t *testing.T) {
		t.Parallel()

		p, err := New(context.Background(), &fakeManager{}, WithMaxSize(1))
		require.NoError(t, err)

		c, err := p.Get(context.Background())
		require.NoError(t, err)
		p.Discard(c)

		c, err = p.Get(context.Background())
		require.NoError(t, err)
		p.Put(c)
	})

	t.Run("connect error returns ErrConnect and frees the slot", func(t *testing.T) {
		t.Parallel()

		m := &fakeManager{connectErr: errors.New("refused")}
		p, err := New(context.Background(), m, WithMaxSize(1))
		require.NoError(t, err)

		_, err = p.Get(context.Background())
		require.ErrorIs(t, err, ErrConnect)

		m.connectErr = nil
		c, err := p.Get(context.Background())
		require.NoError(t, err)
		p.Put(c)
	})
}

func TestPool_Bounded(t *testing.T) {
	t.Parallel()

	p, err := New(context.Background(), &fakeManager{},
		WithMaxSize(1),
		WithCheckoutTimeout(30*time.Millisecond),
	)
	require.NoError(t, err)

	c, err := p.Get(context.Background())
	require.NoError(t, err)

	_, err = p.Get(context.Background())
	require.ErrorIs(t, err, ErrCheckoutTimeout)

	p.Put(c)

	c, err = p.Get(context.Background())
	require.NoError(t, err)
	p.Put(c)
}

func TestPool_Concurrent(t *testing.T) {
	t.Parallel()

	const maxSize = 3
	m := &fakeManager{}
	p, err := New(context.Background(), m, WithMaxSize(maxSize))
	require.NoError(t, err)

	var inUse, peak atomic.Int64
	var wg sync.WaitGroup
	for range 20 {
		wg.Go(func() {
			c, err := p.Get(context.Background())
			if err != nil {
				return
			}
			n := inUse.Add(1)
			for {
				cur := peak.Load()
				if n <= cur || peak.CompareAndSwap(cur, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			inUse.Add(-1)
			p.Put(c)
		})
	}
	wg.Wait()

	require.LessOrEqual(t, peak.Load(), int64(maxSize))
	require.LessOrEqual(t, m.connects.Load(), int64(maxSize))
}

func TestPool_Close(t *testing.T) {
	t.Parallel()

	m := &fakeManager{}
	p, err := New(context.Background(), m, WithMinIdle(2))
	require.NoError(t, err)

	out, err := p.Get(context.Background())
	require.NoError(t, err)

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	require.EqualValues(t, 1, m.closes.Load())

	_, err = p.Get(context.Background())
	require.ErrorIs(t, err, ErrClosed)

	p.Put(out)
	require.EqualValues(t, 2, m.closes.Load())
	require.Equal(t, 0, p.Stats().Open)
}
