package redis

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Manager hands out dedicated connections from one go-redis client.
// It satisfies pool.Manager[*redis.Conn].
type Manager struct {
	client   *redis.Client
	endpoint Endpoint
}

// NewManager opens a client for ep and verifies it with PING.
// Pass WithRetry(1, 0) to fail fast when building pools at request time.
func NewManager(ctx context.Context, ep Endpoint, opts ...Option) (*Manager, error) {
	client, err := Open(ctx, ep, opts...)
	if err != nil {
		return nil, err
	}
	return &Manager{client: client, endpoint: ep}, nil
}

// Endpoint returns the endpoint the manager is bound to.
func (m *Manager) Endpoint() Endpoint {
	return m.endpoint
}

// Connect reserves a dedicated connection. The socket is taken from the
// client pool on first use, so Connect itself does not dial.
func (m *Manager) Connect(ctx context.Context) (*redis.Conn, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return m.client.Conn(), nil
}

// IsValid pings the connection.
func (m *Manager) IsValid(ctx context.Context, conn *redis.Conn) error {
	return conn.Ping(ctx).Err()
}

// HasBroken reports false; go-redis discards bad sockets on its own and
// IsValid catches the rest on checkout.
func (m *Manager) HasBroken(*redis.Conn) bool { return false }

// Close releases the dedicated connection back to the client.
func (m *Manager) Close(conn *redis.Conn) error {
	err := conn.Close()
	if errors.Is(err, redis.ErrClosed) {
		return nil
	}
	return err
}

// Shutdown returns a hook that closes the underlying client.
// Run it after the pools built on this manager are closed.
func (m *Manager) Shutdown() func(context.Context) error {
	return Shutdown(m.client)
}
