package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// SessionStore answers whether a session key exists for a tenant.
// Implementations pick the backing server from the tenant's configuration.
type SessionStore interface {
	Exists(ctx context.Context, configKey, key string) (bool, error)
}

// SessionStoreFunc adapts a function to SessionStore.
type SessionStoreFunc func(ctx context.Context, configKey, key string) (bool, error)

// Exists calls f.
func (f SessionStoreFunc) Exists(ctx context.Context, configKey, key string) (bool, error) {
	return f(ctx, configKey, key)
}

// Gate evaluates one Policy for every request. It holds no mutable state.
type Gate struct {
	policy   Policy
	sessions SessionStore
}

// NewGate builds a gate. A nil policy means Disabled.
// Bearer needs a session store.
func NewGate(p Policy, sessions SessionStore) (*Gate, error) {
	switch p := p.(type) {
	case nil:
		return &Gate{policy: Disabled{}}, nil
	case Bearer:
		if sessions == nil {
			return nil, ErrNoSessionStore
		}
	case Basic:
		if p.Header == "" {
			return nil, fmt.Errorf("%w: basic policy without header name", ErrUnknownPolicy)
		}
	case Disabled:
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownPolicy, p)
	}
	return &Gate{policy: p, sessions: sessions}, nil
}

// Policy returns the active policy.
func (g *Gate) Policy() Policy {
	return g.policy
}

// Check returns nil when the request is authorized.
// Every denial, including a failed session lookup, wraps ErrUnauthorized.
func (g *Gate) Check(ctx context.Context, h http.Header, configKey string) error {
	var err error
	switch p := g.policy.(type) {
	case Disabled:
		return nil
	case Bearer:
		err = g.checkBearer(ctx, p, h, configKey)
	case Basic:
		err = checkBasic(p, h)
	default:
		err = ErrUnknownPolicy
	}
	if err != nil {
		return errors.Join(ErrUnauthorized, err)
	}
	return nil
}

func (g *Gate) checkBearer(ctx context.Context, p Bearer, h http.Header, configKey string) error {
	raw := h.Get("Authorization")
	if raw == "" {
		return ErrMissingHeader
	}
	token, ok := strings.CutPrefix(raw, BearerPrefix)
	if !ok || token == "" {
		return ErrMalformedHeader
	}

	found, err := g.sessions.Exists(ctx, configKey, p.SessionKeyPrefix+token)
	if err != nil {
		return errors.Join(ErrLookupFailed, err)
	}
	if !found {
		return ErrTokenNotFound
	}
	return nil
}

func checkBasic(p Basic, h http.Header) error {
	values := h.Values(p.Header)
	if len(values) == 0 {
		return ErrMissingHeader
	}
	if values[0] != p.Value {
		return ErrValueMismatch
	}
	return nil
}
