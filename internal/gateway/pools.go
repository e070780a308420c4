package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	goredis "github.com/redis/go-redis/v9"

	"github.com/dmitrymomot/objgate/internal/config"
	"github.com/dmitrymomot/objgate/pkg/metrics"
	"github.com/dmitrymomot/objgate/pkg/pool"
	"github.com/dmitrymomot/objgate/pkg/redis"
	"github.com/dmitrymomot/objgate/pkg/storage"
)

// Registry names, used as the registry label in logs and metrics.
const (
	StorageRegistry = "storage"
	SessionRegistry = "session"
)

// Pools owns both pool registries and the redis clients behind the session pools.
// Storage pools are keyed by tenant; session pools by endpoint key.
type Pools struct {
	Storage  *pool.Registry[*storage.Client]
	Sessions *pool.Registry[*goredis.Conn]

	logger    *slog.Logger
	metrics   *metrics.Metrics
	s3Opts    []func(*s3.Options)
	redisOpts []redis.Option
	managers  []*redis.Manager
	mu        sync.Mutex
}

// PoolsConfig configures NewPools.
type PoolsConfig struct {
	Logger       *slog.Logger
	Metrics      *metrics.Metrics
	S3Options    []func(*s3.Options)
	RedisOptions []redis.Option
	ProbeTimeout time.Duration
}

// NewPools creates empty registries whose probe results feed cfg.Metrics.
func NewPools(cfg PoolsConfig) *Pools {
	onStatus := func(registry string, s pool.Status) {
		cfg.Metrics.PoolStatus(registry, s)
	}
	return &Pools{
		Storage: pool.NewRegistry(pool.RegistryConfig{
			Name:         StorageRegistry,
			Logger:       cfg.Logger,
			OnStatus:     onStatus,
			ProbeTimeout: cfg.ProbeTimeout,
		}, storage.Probe),
		Sessions: pool.NewRegistry(pool.RegistryConfig{
			Name:         SessionRegistry,
			Logger:       cfg.Logger,
			OnStatus:     onStatus,
			ProbeTimeout: cfg.ProbeTimeout,
		}, redis.Probe),
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		s3Opts:    cfg.S3Options,
		redisOpts: cfg.RedisOptions,
	}
}

// Build registers storage pools for every tenant and session pools for every
// configured session endpoint. Failures are logged and skipped: the affected
// tenant or endpoint is simply absent and fails at selection time.
func (p *Pools) Build(ctx context.Context, reg *config.Registry) {
	for _, t := range reg.Tenants() {
		if err := p.Storage.Ensure(ctx, t.Key, p.storageBuilder(t)); err != nil {
			p.logger.ErrorContext(ctx, "storage pool not built",
				slog.String("tenant", t.Key),
				slog.String("error", err.Error()),
			)
		}
	}
	for _, ep := range reg.SessionEndpoints() {
		if err := p.EnsureSession(ctx, ep); err != nil {
			p.logger.ErrorContext(ctx, "session pool not built",
				slog.String("endpoint", ep.String()),
				slog.String("error", err.Error()),
			)
		}
	}
}

// EnsureStorage builds the tenant's storage pools unless they exist.
func (p *Pools) EnsureStorage(ctx context.Context, t config.TenantConfig) error {
	return p.Storage.Ensure(ctx, t.Key, p.storageBuilder(t))
}

// EnsureSession builds the pool for ep unless it exists.
func (p *Pools) EnsureSession(ctx context.Context, ep config.SessionEndpoint) error {
	return p.Sessions.Ensure(ctx, ep.Key(), p.sessionBuilder(ep))
}

// storageBuilder creates one instance per storage endpoint. A bad endpoint
// is skipped; the tenant keeps whatever endpoints did build.
func (p *Pools) storageBuilder(t config.TenantConfig) pool.BuildFunc[*storage.Client] {
	return func(ctx context.Context) ([]*pool.Instance[*storage.Client], error) {
		var (
			out  []*pool.Instance[*storage.Client]
			errs []error
		)
		for _, ep := range t.Storage {
			m, err := storage.NewManager(ep.Config, p.s3Opts...)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", ep.Endpoint, err))
				continue
			}
			pl, err := pool.New(ctx, m,
				pool.WithMaxSize(ep.MaxSize),
				pool.WithMinIdle(ep.MinIdle),
			)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", m.Endpoint(), err))
				continue
			}
			out = append(out, pool.NewInstance(m.Endpoint(), pl))
		}
		return out, errors.Join(errs...)
	}
}

func (p *Pools) sessionBuilder(ep config.SessionEndpoint) pool.BuildFunc[*goredis.Conn] {
	return func(ctx context.Context) ([]*pool.Instance[*goredis.Conn], error) {
		opts := append([]redis.Option{redis.WithRetry(1, 0), redis.WithPoolSize(ep.MaxSize)}, p.redisOpts...)
		m, err := redis.NewManager(ctx, ep.Endpoint, opts...)
		if err != nil {
			return nil, err
		}
		pl, err := pool.New(ctx, m,
			pool.WithMaxSize(ep.MaxSize),
			pool.WithMinIdle(ep.MinIdle),
		)
		if err != nil {
			_ = m.Shutdown()(ctx)
			return nil, err
		}

		p.mu.Lock()
		p.managers = append(p.managers, m)
		p.mu.Unlock()

		return []*pool.Instance[*goredis.Conn]{pool.NewInstance(ep.String(), pl)}, nil
	}
}

// checkout takes a connection from inst and records the wait.
func checkout[C any](ctx context.Context, m *metrics.Metrics, registry string, inst *pool.Instance[C]) (C, error) {
	start := time.Now()
	conn, err := inst.Pool().Get(ctx)
	m.ObserveCheckout(registry, time.Since(start))
	return conn, err
}

// Checkers returns both registries for the health monitor.
func (p *Pools) Checkers() []pool.Checker {
	return []pool.Checker{p.Storage, p.Sessions}
}

// Close closes every pool, then the redis clients behind the session pools.
func (p *Pools) Close(ctx context.Context) error {
	errs := []error{p.Storage.Close(), p.Sessions.Close()}

	p.mu.Lock()
	managers := p.managers
	p.managers = nil
	p.mu.Unlock()

	for _, m := range managers {
		errs = append(errs, m.Shutdown()(ctx))
	}
	return errors.Join(errs...)
}

// Shutdown adapts Close to a shutdown hook.
func (p *Pools) Shutdown() func(context.Context) error {
	return p.Close
}
