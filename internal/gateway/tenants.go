package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/objgate/internal/config"
	"github.com/dmitrymomot/objgate/pkg/storage"
)

// TenantLoader makes sure a tenant is known and has storage pools before a
// link is resolved. Tenants missing from the config file are looked up in the
// default session store under <prefix><configKey> when a prefix is set.
type TenantLoader struct {
	registry *config.Registry
	pools    *Pools
	sessions *SessionStore
	logger   *slog.Logger
	prefix   string
	group    singleflight.Group
}

// NewTenantLoader creates a loader. An empty prefix disables the store lookup.
func NewTenantLoader(reg *config.Registry, pools *Pools, sessions *SessionStore, prefix string, logger *slog.Logger) *TenantLoader {
	return &TenantLoader{
		registry: reg,
		pools:    pools,
		sessions: sessions,
		logger:   logger,
		prefix:   prefix,
	}
}

// Load resolves configKey, fetching it from the session store on a miss.
// Concurrent misses for one key share a single lookup.
func (l *TenantLoader) Load(ctx context.Context, configKey string) (config.TenantConfig, error) {
	if t, ok := l.registry.ResolveTenant(configKey); ok {
		if t.Dynamic {
			// A previous build may have failed; Ensure retries it.
			if err := l.pools.EnsureStorage(ctx, t); err != nil {
				return t, storageBuildError(err)
			}
		}
		return t, nil
	}
	if l.prefix == "" || configKey == "" {
		return config.TenantConfig{}, fmt.Errorf("%w: %w", ErrConfig, config.ErrUnknownTenant)
	}

	v, err, _ := l.group.Do(configKey, func() (any, error) {
		return l.fetch(context.WithoutCancel(ctx), configKey)
	})
	if err != nil {
		return config.TenantConfig{}, err
	}
	return v.(config.TenantConfig), nil
}

func (l *TenantLoader) fetch(ctx context.Context, configKey string) (config.TenantConfig, error) {
	raw, found, err := l.sessions.GetDefault(ctx, l.prefix+configKey)
	switch {
	case errors.Is(err, config.ErrNoSessionEndpoint):
		return config.TenantConfig{}, fmt.Errorf("%w: %w", ErrConfig, err)
	case err != nil:
		return config.TenantConfig{}, fmt.Errorf("%w: tenant lookup: %w", ErrBackendUnavailable, err)
	case !found:
		return config.TenantConfig{}, fmt.Errorf("%w: %w", ErrConfig, config.ErrUnknownTenant)
	}

	t, err := config.ParseTenantRecord(configKey, raw)
	if err != nil {
		return config.TenantConfig{}, fmt.Errorf("%w: %w", ErrConfig, err)
	}
	if l.registry.Remember(t) {
		l.logger.InfoContext(ctx, "tenant loaded from session store", slog.String("tenant", configKey))
	}

	t, _ = l.registry.ResolveTenant(configKey)
	if err := l.pools.EnsureStorage(ctx, t); err != nil {
		return t, storageBuildError(err)
	}
	return t, nil
}

// storageBuildError treats a stored endpoint that cannot be parsed as a
// configuration problem and anything else as an unavailable backend.
func storageBuildError(err error) error {
	if errors.Is(err, storage.ErrInvalidConfig) {
		return fmt.Errorf("%w: %w", ErrConfig, err)
	}
	return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
}
