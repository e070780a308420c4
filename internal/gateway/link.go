package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrymomot/objgate/internal/config"
	"github.com/dmitrymomot/objgate/pkg/metrics"
	"github.com/dmitrymomot/objgate/pkg/pool"
	"github.com/dmitrymomot/objgate/pkg/storage"
)

// Resolver turns a tenant and object key into a download URL.
type Resolver interface {
	Resolve(ctx context.Context, configKey, objectKey string) (string, error)
}

// LinkResolver mints presigned GET URLs on a healthy storage backend.
type LinkResolver struct {
	registry *config.Registry
	tenants  *TenantLoader
	storage  *pool.Registry[*storage.Client]
	metrics  *metrics.Metrics
}

var _ Resolver = (*LinkResolver)(nil)

// NewLinkResolver creates a LinkResolver. tenants may be nil when only
// statically configured tenants are served.
func NewLinkResolver(reg *config.Registry, tenants *TenantLoader, pools *Pools, m *metrics.Metrics) *LinkResolver {
	return &LinkResolver{
		registry: reg,
		tenants:  tenants,
		storage:  pools.Storage,
		metrics:  m,
	}
}

// Resolve returns a presigned URL for objectKey in the tenant's bucket.
//
// Errors wrap ErrConfig when the tenant or its bucket cannot be resolved,
// ErrBackendUnavailable when no healthy instance is left after one pass,
// and ErrLinkGeneration when presigning fails.
func (l *LinkResolver) Resolve(ctx context.Context, configKey, objectKey string) (string, error) {
	if l.tenants != nil {
		if _, err := l.tenants.Load(ctx, configKey); err != nil {
			return "", err
		}
	}

	bucket, err := l.registry.ResolveBucket(configKey)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrConfig, err)
	}

	inst, err := l.storage.Select(configKey)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
	}

	client, err := checkout(ctx, l.metrics, StorageRegistry, inst)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrBackendUnavailable, inst.Endpoint(), err)
	}
	defer inst.Pool().Put(client)

	link, err := client.PresignGet(ctx, bucket, objectKey)
	if err != nil {
		if errors.Is(err, storage.ErrEmptyKey) {
			return "", fmt.Errorf("%w: %w", ErrMissingObjectKey, err)
		}
		return "", fmt.Errorf("%w: %w", ErrLinkGeneration, err)
	}
	return link, nil
}
