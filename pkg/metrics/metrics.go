package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dmitrymomot/objgate/pkg/pool"
)

// Namespace prefixes every metric name.
const Namespace = "objgate"

// Request outcomes used as the outcome label.
const (
	OutcomeOK             = "ok"
	OutcomeBadPath        = "bad_path"
	OutcomeUnauthorized   = "unauthorized"
	OutcomeConfigError    = "config_error"
	OutcomeUnavailable    = "backend_unavailable"
	OutcomeLinkFailed     = "link_failed"
	OutcomeUpstreamFailed = "upstream_failed"
	OutcomeInternal       = "internal_error"
)

// Metrics owns a private Prometheus registry and the gateway collectors.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry        *prometheus.Registry
	requests        *prometheus.CounterVec
	requestSeconds  *prometheus.HistogramVec
	authDenied      *prometheus.CounterVec
	instanceHealthy *prometheus.GaugeVec
	checkoutSeconds *prometheus.HistogramVec
}

// Option configures Metrics.
type Option func(*options)

type options struct {
	buckets        []float64
	runtimeMetrics bool
}

// WithBuckets sets the request latency histogram buckets.
func WithBuckets(b []float64) Option {
	return func(o *options) {
		if len(b) > 0 {
			o.buckets = b
		}
	}
}

// WithoutRuntimeMetrics skips the Go runtime and process collectors.
func WithoutRuntimeMetrics() Option {
	return func(o *options) {
		o.runtimeMetrics = false
	}
}

// New registers all collectors on a fresh registry.
func New(opts ...Option) *Metrics {
	o := &options{
		buckets:        prometheus.DefBuckets,
		runtimeMetrics: true,
	}
	for _, opt := range opts {
		opt(o)
	}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "proxy",
				Name:      "requests_total",
				Help:      "Gateway requests by outcome.",
			}, []string{"outcome"}),
		requestSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "proxy",
				Name:      "request_seconds",
				Help:      "Gateway request duration, streaming included.",
				Buckets:   o.buckets,
			}, []string{"outcome"}),
		authDenied: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: Namespace,
				Subsystem: "auth",
				Name:      "denied_total",
				Help:      "Denied requests by auth policy.",
			}, []string{"policy"}),
		instanceHealthy: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: Namespace,
				Subsystem: "pool",
				Name:      "instance_healthy",
				Help:      "1 when the last probe of a pool instance succeeded.",
			}, []string{"registry", "key", "endpoint"}),
		checkoutSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: Namespace,
				Subsystem: "pool",
				Name:      "checkout_seconds",
				Help:      "Time spent waiting for a pooled connection.",
				Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
			}, []string{"registry"}),
	}

	m.registry.MustRegister(m.requests, m.requestSeconds, m.authDenied, m.instanceHealthy, m.checkoutSeconds)
	if o.runtimeMetrics {
		m.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	return m
}

// Registry exposes the underlying registry, mostly for tests.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveRequest counts one finished request.
func (m *Metrics) ObserveRequest(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(outcome).Inc()
	m.requestSeconds.WithLabelValues(outcome).Observe(d.Seconds())
}

// AuthDenied counts one denial.
func (m *Metrics) AuthDenied(policy string) {
	if m == nil {
		return
	}
	m.authDenied.WithLabelValues(policy).Inc()
}

// ObserveCheckout records how long a pool checkout took.
func (m *Metrics) ObserveCheckout(registry string, d time.Duration) {
	if m == nil {
		return
	}
	m.checkoutSeconds.WithLabelValues(registry).Observe(d.Seconds())
}

// PoolStatus sets the health gauge. Its signature matches pool.RegistryConfig.OnStatus.
func (m *Metrics) PoolStatus(registry string, s pool.Status) {
	if m == nil {
		return
	}
	v := 0.0
	if s.Healthy {
		v = 1
	}
	m.instanceHealthy.WithLabelValues(registry, s.Key, s.Endpoint).Set(v)
}
