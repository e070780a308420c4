package config

import (
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/dmitrymomot/objgate/pkg/redis"
	"github.com/dmitrymomot/objgate/pkg/storage"
)

// StorageEndpoint is one storage endpoint with its pool sizing.
type StorageEndpoint struct {
	storage.Config
	MaxSize int
	MinIdle int
}

// SessionEndpoint is one session-store server with its pool sizing.
type SessionEndpoint struct {
	redis.Endpoint
	MaxSize int
	MinIdle int
}

// TenantConfig is the resolved view of one tenant.
type TenantConfig struct {
	Key      string
	Bucket   string
	Storage  []StorageEndpoint
	Sessions []SessionEndpoint
	// Dynamic marks tenants loaded from the session store at runtime.
	Dynamic bool
}

// Registry resolves tenants, buckets and session endpoints.
// Static tenants never change; dynamic ones are only ever added.
type Registry struct {
	intN          func(n int) int
	tenants       map[string]TenantConfig
	buckets       map[string]string
	defaults      []SessionEndpoint
	presignExpiry time.Duration
	mu            sync.RWMutex
	bucketMu      sync.RWMutex
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithRandom replaces the source used for endpoint choice.
// intN must return a value in [0, n).
func WithRandom(intN func(n int) int) RegistryOption {
	return func(r *Registry) {
		if intN != nil {
			r.intN = intN
		}
	}
}

// NewRegistry builds the registry from a loaded Config.
// A default section carrying both a bucket and storage is exposed as tenant "default".
func NewRegistry(cfg *Config, opts ...RegistryOption) *Registry {
	r := &Registry{
		intN:          rand.IntN,
		tenants:       make(map[string]TenantConfig, len(cfg.Power)+1),
		buckets:       make(map[string]string, len(cfg.Power)+1),
		defaults:      sessionEndpoints(cfg.Default.Redis),
		presignExpiry: cfg.PresignExpiry,
	}
	for _, opt := range opts {
		opt(r)
	}

	if cfg.Default.BucketName != "" && len(cfg.Default.Minio) > 0 {
		r.tenants[DefaultTenantKey] = r.tenant(DefaultTenantKey, cfg.Default)
	}
	for key, t := range cfg.Power {
		r.tenants[key] = r.tenant(key, t)
	}
	return r
}

func (r *Registry) tenant(key string, t Tenant) TenantConfig {
	tc := TenantConfig{
		Key:      key,
		Bucket:   t.BucketName,
		Sessions: sessionEndpoints(t.Redis),
	}
	for _, m := range t.Minio {
		tc.Storage = append(tc.Storage, StorageEndpoint{
			Config: storage.Config{
				Endpoint:      m.Endpoint,
				AccessKey:     m.AccessKey,
				SecretKey:     m.SecretKey,
				Region:        m.Region,
				PresignExpiry: r.presignExpiry,
				VirtualHost:   m.VirtualHost,
			},
			MaxSize: sizeOr(m.MaxPoolIdle, DefaultStorageMaxSize),
			MinIdle: m.IdlePoolSize,
		})
	}
	return tc
}

func sessionEndpoints(entries []RedisEntry) []SessionEndpoint {
	out := make([]SessionEndpoint, 0, len(entries))
	for _, e := range entries {
		out = append(out, SessionEndpoint{
			Endpoint: redis.Endpoint{
				Host:     e.Host,
				Username: e.Username,
				Password: e.Password,
				Port:     e.Port,
				DB:       e.DB,
			},
			MaxSize: sizeOr(e.MaxPoolIdle, DefaultSessionMaxSize),
			MinIdle: e.IdlePoolSize,
		})
	}
	return out
}

func sizeOr(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

// ResolveTenant looks a tenant up without I/O.
func (r *Registry) ResolveTenant(configKey string) (TenantConfig, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tenants[configKey]
	return t, ok
}

// ResolveBucket returns the tenant's bucket, caching it on first use.
// An unknown tenant or an empty bucket is an error, never an empty name.
func (r *Registry) ResolveBucket(configKey string) (string, error) {
	r.bucketMu.RLock()
	bucket, ok := r.buckets[configKey]
	r.bucketMu.RUnlock()
	if ok {
		return bucket, nil
	}

	t, ok := r.ResolveTenant(configKey)
	if !ok {
		return "", ErrUnknownTenant
	}
	if t.Bucket == "" {
		return "", ErrNoBucket
	}

	r.bucketMu.Lock()
	r.buckets[configKey] = t.Bucket
	r.bucketMu.Unlock()
	return t.Bucket, nil
}

// ChooseSessionEndpoint picks one of the tenant's session endpoints uniformly
// at random. Unknown tenants and tenants without endpoints use the default list.
func (r *Registry) ChooseSessionEndpoint(configKey string) (SessionEndpoint, error) {
	if t, ok := r.ResolveTenant(configKey); ok && len(t.Sessions) > 0 {
		return t.Sessions[r.intN(len(t.Sessions))], nil
	}
	return r.DefaultSessionEndpoint()
}

// DefaultSessionEndpoint picks one of the default session endpoints.
func (r *Registry) DefaultSessionEndpoint() (SessionEndpoint, error) {
	if len(r.defaults) == 0 {
		return SessionEndpoint{}, ErrNoSessionEndpoint
	}
	return r.defaults[r.intN(len(r.defaults))], nil
}

// Remember adds a tenant discovered at runtime. It never replaces an existing one.
func (r *Registry) Remember(t TenantConfig) bool {
	if t.Key == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tenants[t.Key]; exists {
		return false
	}
	t.Dynamic = true
	for i := range t.Storage {
		if t.Storage[i].PresignExpiry <= 0 {
			t.Storage[i].PresignExpiry = r.presignExpiry
		}
		if t.Storage[i].MaxSize <= 0 {
			t.Storage[i].MaxSize = DefaultStorageMaxSize
		}
	}
	r.tenants[t.Key] = t
	return true
}

// Tenants returns every known tenant ordered by key.
func (r *Registry) Tenants() []TenantConfig {
	r.mu.RLock()
	out := make([]TenantConfig, 0, len(r.tenants))
	for _, t := range r.tenants {
		out = append(out, t)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b TenantConfig) int { return strings.Compare(a.Key, b.Key) })
	return out
}

// SessionEndpoints returns every distinct session endpoint, default list included,
// ordered by pool key. The first entry seen for a key wins.
func (r *Registry) SessionEndpoints() []SessionEndpoint {
	seen := make(map[string]struct{})
	var out []SessionEndpoint
	add := func(eps []SessionEndpoint) {
		for _, ep := range eps {
			if _, ok := seen[ep.Key()]; ok {
				continue
			}
			seen[ep.Key()] = struct{}{}
			out = append(out, ep)
		}
	}
	add(r.defaults)
	for _, t := range r.Tenants() {
		add(t.Sessions)
	}
	slices.SortFunc(out, func(a, b SessionEndpoint) int { return strings.Compare(a.Key(), b.Key()) })
	return out
}
