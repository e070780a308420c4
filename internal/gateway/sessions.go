package gateway

import (
	"context"

	"github.com/dmitrymomot/objgate/internal/config"
	"github.com/dmitrymomot/objgate/pkg/auth"
	"github.com/dmitrymomot/objgate/pkg/metrics"
	"github.com/dmitrymomot/objgate/pkg/redis"
)

// SessionStore reads keys from the session store chosen for a tenant.
// It satisfies auth.SessionStore.
type SessionStore struct {
	registry *config.Registry
	pools    *Pools
	metrics  *metrics.Metrics
}

var _ auth.SessionStore = (*SessionStore)(nil)

// NewSessionStore creates a SessionStore over the session pools.
func NewSessionStore(reg *config.Registry, pools *Pools, m *metrics.Metrics) *SessionStore {
	return &SessionStore{registry: reg, pools: pools, metrics: m}
}

// Exists reports whether key is present in the tenant's session store.
func (s *SessionStore) Exists(ctx context.Context, configKey, key string) (bool, error) {
	ep, err := s.registry.ChooseSessionEndpoint(configKey)
	if err != nil {
		return false, err
	}
	_, found, err := s.get(ctx, ep, key)
	return found, err
}

// GetDefault reads key from one of the default session endpoints.
func (s *SessionStore) GetDefault(ctx context.Context, key string) (string, bool, error) {
	ep, err := s.registry.DefaultSessionEndpoint()
	if err != nil {
		return "", false, err
	}
	return s.get(ctx, ep, key)
}

// get builds the endpoint's pool on first use, then reads key on a pooled connection.
func (s *SessionStore) get(ctx context.Context, ep config.SessionEndpoint, key string) (string, bool, error) {
	if err := s.pools.EnsureSession(ctx, ep); err != nil {
		return "", false, err
	}
	inst, err := s.pools.Sessions.Select(ep.Key())
	if err != nil {
		return "", false, err
	}

	conn, err := checkout(ctx, s.metrics, SessionRegistry, inst)
	if err != nil {
		return "", false, err
	}

	value, found, err := redis.Get(ctx, conn, key)
	if err != nil {
		// A failed or canceled command may leave unread replies on the socket.
		inst.Pool().Discard(conn)
		return "", false, err
	}
	inst.Pool().Put(conn)
	return value, found, nil
}
