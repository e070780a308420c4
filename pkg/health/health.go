package health

import (
	"log/slog"

	"github.com/dmitrymomot/objgate/pkg/logger"
	"github.com/dmitrymomot/objgate/pkg/pool"
)

const (
	// StatusHealthy means every required key has a healthy instance.
	StatusHealthy = "healthy"
	// StatusUnhealthy means at least one required key has none.
	StatusUnhealthy = "unhealthy"
)

// Source is a pool registry as seen by the readiness probe.
// *pool.Registry satisfies it for any connection type.
type Source interface {
	Name() string
	Keys() []string
	Healthy(key string) bool
	Statuses() []pool.Status
}

// Response is the JSON body of both probes.
type Response struct {
	Registries map[string]Report `json:"registries,omitempty"`
	Status     string            `json:"status"`
}

// Report describes one registry.
type Report struct {
	UnhealthyKeys []string      `json:"unhealthy_keys,omitempty"`
	Instances     []pool.Status `json:"instances"`
	Required      bool          `json:"required"`
}

type config struct {
	logger   *slog.Logger
	optional []Source
}

// Option configures the readiness handler.
type Option func(*config)

// WithLogger logs readiness failures.
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithOptional reports sources without letting them fail readiness.
func WithOptional(sources ...Source) Option {
	return func(c *config) {
		c.optional = append(c.optional, sources...)
	}
}

func newConfig(opts ...Option) *config {
	cfg := &config{logger: logger.NewNope()}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// evaluate reads the cached health flags. It performs no I/O; probing is the
// pool monitor's job. A required source without keys does not fail readiness.
func evaluate(required, optional []Source) *Response {
	resp := &Response{
		Status:     StatusHealthy,
		Registries: make(map[string]Report, len(required)+len(optional)),
	}
	add := func(src Source, gate bool) {
		rep := Report{Required: gate, Instances: src.Statuses()}
		if rep.Instances == nil {
			rep.Instances = []pool.Status{}
		}
		for _, key := range src.Keys() {
			if !src.Healthy(key) {
				rep.UnhealthyKeys = append(rep.UnhealthyKeys, key)
			}
		}
		if gate && len(rep.UnhealthyKeys) > 0 {
			resp.Status = StatusUnhealthy
		}
		resp.Registries[src.Name()] = rep
	}
	for _, src := range required {
		add(src, true)
	}
	for _, src := range optional {
		add(src, false)
	}
	return resp
}
