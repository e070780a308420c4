package pool

import (
	"context"
	"errors"
	"sync"

	"golang.org/x/sync/semaphore"
)

// Manager opens, validates and closes connections of type C.
type Manager[C any] interface {
	// Connect opens a new connection.
	Connect(ctx context.Context) (C, error)

	// IsValid checks an idle connection before it is handed out.
	IsValid(ctx context.Context, conn C) error

	// HasBroken reports whether a connection is known to be unusable.
	// It must not block.
	HasBroken(conn C) bool

	// Close releases the resources held by a connection.
	Close(conn C) error
}

// Pool is a bounded set of reusable connections for one endpoint.
// It is safe for concurrent use.
type Pool[C any] struct {
	manager Manager[C]
	sem     *semaphore.Weighted
	opts    *options
	idle    []C
	open    int
	mu      sync.Mutex
	closed  bool
}

// Stats is a point-in-time snapshot of pool usage.
type Stats struct {
	Open    int
	Idle    int
	InUse   int
	MaxSize int
}

// New builds a pool and opens the configured number of idle connections.
// Any failure while opening them closes what was opened and returns ErrInit.
func New[C any](ctx context.Context, m Manager[C], opts ...Option) (*Pool[C], error) {
	if m == nil {
		return nil, errors.Join(ErrInit, errors.New("nil manager"))
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	o.minIdle = min(o.minIdle, o.maxSize)

	p := &Pool[C]{
		manager: m,
		sem:     semaphore.NewWeighted(int64(o.maxSize)),
		opts:    o,
		idle:    make([]C, 0, o.maxSize),
	}

	for range o.minIdle {
		conn, err := m.Connect(ctx)
		if err != nil {
			_ = p.Close()
			return nil, errors.Join(ErrInit, err)
		}
		p.idle = append(p.idle, conn)
		p.open++
	}

	return p, nil
}

// Get checks out a connection, reusing an idle one when possible.
// It blocks until a slot frees up, ctx is done, or the checkout timeout
// elapses. Every successful Get must be paired with exactly one Put or Discard.
func (p *Pool[C]) Get(ctx context.Context) (C, error) {
	var zero C

	ctx, cancel := context.WithTimeout(ctx, p.opts.checkoutTimeout)
	defer cancel()

	if err := p.sem.Acquire(ctx, 1); err != nil {
		return zero, errors.Join(ErrCheckoutTimeout, err)
	}

	for {
		conn, ok, err := p.popIdle()
		if err != nil {
			p.sem.Release(1)
			return zero, err
		}
		if !ok {
			break
		}
		if p.manager.HasBroken(conn) {
			p.closeConn(conn)
			continue
		}
		if p.opts.testOnCheckout {
			if err := p.manager.IsValid(ctx, conn); err != nil {
				p.closeConn(conn)
				continue
			}
		}
		return conn, nil
	}

	conn, err := p.manager.Connect(ctx)
	if err != nil {
		p.sem.Release(1)
		return zero, errors.Join(ErrConnect, err)
	}

	p.mu.Lock()
	p.open++
	p.mu.Unlock()

	return conn, nil
}

// Put returns a connection to the idle set.
// Broken connections and connections returned after Close are closed instead.
func (p *Pool[C]) Put(conn C) {
	defer p.sem.Release(1)

	if p.manager.HasBroken(conn) {
		p.closeConn(conn)
		return
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.closeConn(conn)
		return
	}
	p.idle = append(p.idle, conn)
	p.mu.Unlock()
}

// Discard closes a checked-out connection instead of returning it.
// Use it when the caller saw an error that leaves the connection unusable.
func (p *Pool[C]) Discard(conn C) {
	defer p.sem.Release(1)
	p.closeConn(conn)
}

// Stats returns current usage counters.
func (p *Pool[C]) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Stats{
		Open:    p.open,
		Idle:    len(p.idle),
		InUse:   p.open - len(p.idle),
		MaxSize: p.opts.maxSize,
	}
}

// Close closes all idle connections and rejects further checkouts.
// Connections still checked out are closed when they are returned.
func (p *Pool[C]) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.open -= len(idle)
	p.mu.Unlock()

	var errs []error
	for _, conn := range idle {
		if err := p.manager.Close(conn); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (p *Pool[C]) popIdle() (C, bool, error) {
	var zero C

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return zero, false, ErrClosed
	}
	n := len(p.idle)
	if n == 0 {
		return zero, false, nil
	}
	conn := p.idle[n-1]
	p.idle[n-1] = zero
	p.idle = p.idle[:n-1]
	return conn, true, nil
}

func (p *Pool[C]) closeConn(conn C) {
	_ = p.manager.Close(conn)
	p.mu.Lock()
	p.open--
	p.mu.Unlock()
}
