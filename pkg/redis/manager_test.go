package redis

import (
	"context"
	"errors"
	"net"
	"strconv"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func endpointFor(t *testing.T, mr *miniredis.Miniredis) Endpoint {
	t.Helper()
	host, portStr, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)
	port, err := strconv.Atoi(portStr)
	require.NoError(t, err)
	return Endpoint{Host: host, Port: port}
}

func TestEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		ep      Endpoint
		wantKey string
	}{
		{
			name:    "host only uses default port",
			ep:      Endpoint{Host: "cache"},
			wantKey: "cache:6379",
		},
		{
			name:    "db and password",
			ep:      Endpoint{Host: "10.0.0.1", Port: 6380, DB: 2, Password: "p@ss"},
			wantKey: "10.0.0.1:6380/2",
		},
		{
			name:    "acl user",
			ep:      Endpoint{Host: "cache", Port: 6379, Username: "app", Password: "secret"},
			wantKey: "cache:6379",
		},
		{
			name:    "ipv6",
			ep:      Endpoint{Host: "::1", Port: 7000},
			wantKey: "[::1]:7000",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			require.Equal(t, tt.wantKey, tt.ep.Key())
			require.Equal(t, tt.wantKey, tt.ep.String())
		})
	}
}

func TestManager(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("connect, validate and read keys", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		require.NoError(t, mr.Set("auth:token:abc", "1"))

		m, err := NewManager(ctx, endpointFor(t, mr), WithRetry(1, 0))
		require.NoError(t, err)
		t.Cleanup(func() { _ = m.Shutdown()(ctx) })

		conn, err := m.Connect(ctx)
		require.NoError(t, err)
		require.NoError(t, m.IsValid(ctx, conn))
		require.False(t, m.HasBroken(conn))
		require.NoError(t, Probe(ctx, conn))

		v, found, err := Get(ctx, conn, "auth:token:abc")
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, "1", v)

		v, found, err = Get(ctx, conn, "auth:token:missing")
		require.NoError(t, err)
		require.False(t, found)
		require.Empty(t, v)

		require.NoError(t, m.Close(conn))
	})

	t.Run("selects configured db", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		mr.Select(3)
		require.NoError(t, mr.Set("k", "in-db-3"))

		ep := endpointFor(t, mr)
		ep.DB = 3
		m, err := NewManager(ctx, ep, WithRetry(1, 0))
		require.NoError(t, err)
		t.Cleanup(func() { _ = m.Shutdown()(ctx) })

		conn, err := m.Connect(ctx)
		require.NoError(t, err)
		defer m.Close(conn)

		v, found, err := Get(ctx, conn, "k")
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, "in-db-3", v)
	})

	t.Run("password is sent", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		mr.RequireAuth("secret")

		ep := endpointFor(t, mr)
		_, err := NewManager(ctx, ep, WithRetry(1, 0))
		require.ErrorIs(t, err, ErrConnectionFailed)

		ep.Password = "secret"
		m, err := NewManager(ctx, ep, WithRetry(1, 0))
		require.NoError(t, err)
		require.NoError(t, m.Shutdown()(ctx))
	})

	t.Run("unreachable server fails fast", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		ep := endpointFor(t, mr)
		mr.Close()

		m, err := NewManager(ctx, ep, WithRetry(1, 0))
		require.Nil(t, m)
		require.ErrorIs(t, err, ErrConnectionFailed)
	})

	t.Run("empty host", func(t *testing.T) {
		t.Parallel()

		m, err := NewManager(ctx, Endpoint{})
		require.Nil(t, m)
		require.ErrorIs(t, err, ErrEmptyHost)
	})

	t.Run("probe fails after server stops", func(t *testing.T) {
		t.Parallel()

		mr := miniredis.RunT(t)
		m, err := NewManager(ctx, endpointFor(t, mr), WithRetry(1, 0))
		require.NoError(t, err)
		t.Cleanup(func() { _ = m.Shutdown()(ctx) })

		conn, err := m.Connect(ctx)
		require.NoError(t, err)
		defer m.Close(conn)

		mr.Close()
		err = Probe(ctx, conn)
		require.True(t, errors.Is(err, ErrHealthcheckFailed))

		_, _, err = Get(ctx, conn, "any")
		require.ErrorIs(t, err, ErrCommandFailed)
	})
}
