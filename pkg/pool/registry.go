package pool

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const (
	defaultProbeTimeout     = 10 * time.Second
	defaultProbeConcurrency = 8
)

// ProbeFunc issues a cheap backend call on a checked-out connection.
// A nil ProbeFunc means a successful checkout is enough.
type ProbeFunc[C any] func(ctx context.Context, conn C) error

// BuildFunc creates the instances for a key that is not registered yet.
type BuildFunc[C any] func(ctx context.Context) ([]*Instance[C], error)

// Instance is one physical pool plus its health record.
// The health fields are guarded by the owning Registry.
type Instance[C any] struct {
	lastProbe time.Time
	pool      *Pool[C]
	endpoint  string
	lastError string
	failures  int
	healthy   bool
}

// NewInstance wraps a pool. New instances start healthy.
func NewInstance[C any](endpoint string, p *Pool[C]) *Instance[C] {
	return &Instance[C]{endpoint: endpoint, pool: p, healthy: true}
}

// Pool returns the underlying connection pool.
func (i *Instance[C]) Pool() *Pool[C] {
	return i.pool
}

// Endpoint returns the physical endpoint the instance connects to.
func (i *Instance[C]) Endpoint() string {
	return i.endpoint
}

// Status describes the health of one instance.
type Status struct {
	LastProbe           time.Time `json:"last_probe,omitzero"`
	Key                 string    `json:"key"`
	Endpoint            string    `json:"endpoint"`
	LastError           string    `json:"last_error,omitempty"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	Healthy             bool      `json:"healthy"`
}

// RegistryConfig configures a Registry.
type RegistryConfig struct {
	// Logger receives pool health transitions. Defaults to a discarding logger.
	Logger *slog.Logger

	// OnStatus is called after every probe with the instance's new status.
	// It runs outside the registry lock.
	OnStatus func(registry string, s Status)

	// Name identifies the registry in logs and metrics (e.g. "storage").
	Name string

	// ProbeTimeout bounds a single health probe, checkout included.
	// Default: 10 seconds
	ProbeTimeout time.Duration

	// ProbeConcurrency caps parallel probes per tick.
	// Default: 8
	ProbeConcurrency int
}

type entry[C any] struct {
	instances []*Instance[C]
	cursor    atomic.Uint64
}

// Registry maps pool keys to ordered, non-empty instance lists.
// Reads take a shared lock; only insertion and health updates take the
// exclusive lock, and no I/O happens while it is held.
type Registry[C any] struct {
	entries map[string]*entry[C]
	probe   ProbeFunc[C]
	cfg     RegistryConfig
	builds  singleflight.Group
	mu      sync.RWMutex
}

// NewRegistry creates an empty registry.
func NewRegistry[C any](cfg RegistryConfig, probe ProbeFunc[C]) *Registry[C] {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = defaultProbeTimeout
	}
	if cfg.ProbeConcurrency <= 0 {
		cfg.ProbeConcurrency = defaultProbeConcurrency
	}
	return &Registry[C]{
		entries: make(map[string]*entry[C]),
		probe:   probe,
		cfg:     cfg,
	}
}

// Name returns the registry name.
func (r *Registry[C]) Name() string {
	return r.cfg.Name
}

// Insert registers instances under key, replacing nothing: an existing key
// is left untouched and false is returned. Empty lists are ignored.
func (r *Registry[C]) Insert(key string, instances ...*Instance[C]) bool {
	if len(instances) == 0 {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.entries[key]; ok {
		return false
	}
	r.entries[key] = &entry[C]{instances: slices.Clone(instances)}
	return true
}

// Ensure registers the instances produced by build if key is absent.
// Concurrent calls for the same key share a single build. A build that
// returns no instances leaves the key unregistered so a later call retries.
func (r *Registry[C]) Ensure(ctx context.Context, key string, build BuildFunc[C]) error {
	if r.Has(key) {
		return nil
	}

	_, err, _ := r.builds.Do(key, func() (any, error) {
		if r.Has(key) {
			return nil, nil
		}
		instances, err := build(ctx)
		if len(instances) == 0 {
			if err == nil {
				err = ErrNoInstances
			}
			return nil, err
		}
		if !r.Insert(key, instances...) {
			// Lost a race with a startup insert; drop the duplicate pools.
			for _, inst := range instances {
				_ = inst.pool.Close()
			}
		}
		if err != nil {
			r.cfg.Logger.Warn("pool partially built",
				slog.String("registry", r.cfg.Name),
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return nil, nil
	})
	return err
}

// Has reports whether key has registered instances.
func (r *Registry[C]) Has(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.entries[key]
	return ok
}

// Keys returns all registered keys in sorted order.
func (r *Registry[C]) Keys() []string {
	r.mu.RLock()
	keys := make([]string, 0, len(r.entries))
	for k := range r.entries {
		keys = append(keys, k)
	}
	r.mu.RUnlock()
	slices.Sort(keys)
	return keys
}

// Select returns a healthy instance for key using round-robin with skip.
// The scan starts at the key's cursor and covers the list exactly once;
// the cursor then points just past the returned instance.
func (r *Registry[C]) Select(key string) (*Instance[C], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[key]
	if !ok {
		return nil, ErrNoInstances
	}

	n := uint64(len(e.instances))
	start := e.cursor.Load() % n
	for i := range n {
		idx := (start + i) % n
		inst := e.instances[idx]
		if inst.healthy {
			e.cursor.Store((idx + 1) % n)
			return inst, nil
		}
	}

	e.cursor.Store((start + 1) % n)
	return nil, ErrUnavailable
}

// Healthy reports whether key has at least one healthy instance.
func (r *Registry[C]) Healthy(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[key]
	if !ok {
		return false
	}
	return slices.ContainsFunc(e.instances, func(inst *Instance[C]) bool { return inst.healthy })
}

// Statuses returns the health record of every instance, ordered by key.
func (r *Registry[C]) Statuses() []Status {
	keys := r.Keys()

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Status
	for _, key := range keys {
		e, ok := r.entries[key]
		if !ok {
			continue
		}
		for _, inst := range e.instances {
			out = append(out, inst.status(key))
		}
	}
	return out
}

type probeTarget[C any] struct {
	inst *Instance[C]
	err  error
	key  string
}

// CheckHealth probes every registered instance once and records the results.
// Probes run concurrently without holding the registry lock.
func (r *Registry[C]) CheckHealth(ctx context.Context) {
	r.mu.RLock()
	var targets []*probeTarget[C]
	for key, e := range r.entries {
		for _, inst := range e.instances {
			targets = append(targets, &probeTarget[C]{key: key, inst: inst})
		}
	}
	r.mu.RUnlock()

	if len(targets) == 0 {
		return
	}

	var g errgroup.Group
	g.SetLimit(r.cfg.ProbeConcurrency)
	for _, t := range targets {
		g.Go(func() error {
			t.err = r.probeInstance(ctx, t.inst)
			return nil
		})
	}
	_ = g.Wait()

	now := time.Now()
	statuses := make([]Status, 0, len(targets))
	var flipped []*probeTarget[C]

	r.mu.Lock()
	for _, t := range targets {
		wasHealthy := t.inst.healthy
		t.inst.healthy = t.err == nil
		t.inst.lastProbe = now
		if t.err != nil {
			t.inst.failures++
			t.inst.lastError = t.err.Error()
		} else {
			t.inst.failures = 0
			t.inst.lastError = ""
		}
		if wasHealthy != t.inst.healthy {
			flipped = append(flipped, t)
		}
		statuses = append(statuses, t.inst.status(t.key))
	}
	r.mu.Unlock()

	for _, t := range flipped {
		if t.err != nil {
			r.cfg.Logger.WarnContext(ctx, "pool instance unhealthy",
				slog.String("registry", r.cfg.Name),
				slog.String("key", t.key),
				slog.String("endpoint", t.inst.endpoint),
				slog.String("error", t.err.Error()),
			)
		} else {
			r.cfg.Logger.InfoContext(ctx, "pool instance recovered",
				slog.String("registry", r.cfg.Name),
				slog.String("key", t.key),
				slog.String("endpoint", t.inst.endpoint),
			)
		}
	}

	if r.cfg.OnStatus != nil {
		for _, s := range statuses {
			r.cfg.OnStatus(r.cfg.Name, s)
		}
	}
}

func (r *Registry[C]) probeInstance(ctx context.Context, inst *Instance[C]) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ProbeTimeout)
	defer cancel()

	conn, err := inst.pool.Get(ctx)
	if err != nil {
		return err
	}
	if r.probe == nil {
		inst.pool.Put(conn)
		return nil
	}

	err = r.probe(ctx, conn)
	inst.pool.Put(conn)
	return err
}

// Close closes every registered pool.
func (r *Registry[C]) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, e := range r.entries {
		for _, inst := range e.instances {
			if err := inst.pool.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (i *Instance[C]) status(key string) Status {
	return Status{
		Key:                 key,
		Endpoint:            i.endpoint,
		Healthy:             i.healthy,
		LastProbe:           i.lastProbe,
		ConsecutiveFailures: i.failures,
		LastError:           i.lastError,
	}
}
