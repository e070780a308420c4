package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/dmitrymomot/objgate/internal"
	"github.com/dmitrymomot/objgate/internal/config"
	"github.com/dmitrymomot/objgate/middlewares"
	"github.com/dmitrymomot/objgate/pkg/auth"
	"github.com/dmitrymomot/objgate/pkg/logger"
	"github.com/dmitrymomot/objgate/pkg/metrics"
	"github.com/dmitrymomot/objgate/pkg/pool"
	"github.com/dmitrymomot/objgate/pkg/redis"
)

// MetricsPath is where the Prometheus handler is mounted.
const MetricsPath = "/metrics"

// Service is the assembled gateway: registries, pools, health monitor and proxy.
// It is built once at startup and shared by request handling and health checks.
type Service struct {
	Config   *config.Config
	Registry *config.Registry
	Pools    *Pools
	Monitor  *pool.Monitor
	Proxy    *Proxy
	Metrics  *metrics.Metrics
	logger   *slog.Logger
}

type serviceOptions struct {
	logger     *slog.Logger
	metrics    *metrics.Metrics
	httpClient *http.Client
	s3Opts     []func(*s3.Options)
	redisOpts  []redis.Option
}

// Option configures New.
type Option func(*serviceOptions)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *serviceOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics replaces the default collector set.
func WithMetrics(m *metrics.Metrics) Option {
	return func(o *serviceOptions) {
		o.metrics = m
	}
}

// WithUpstreamClient sets the client used to fetch presigned links.
func WithUpstreamClient(c *http.Client) Option {
	return func(o *serviceOptions) {
		o.httpClient = c
	}
}

// WithS3Options adds options to every storage client.
func WithS3Options(fns ...func(*s3.Options)) Option {
	return func(o *serviceOptions) {
		o.s3Opts = append(o.s3Opts, fns...)
	}
}

// WithRedisOptions adds options to every session-store client.
func WithRedisOptions(opts ...redis.Option) Option {
	return func(o *serviceOptions) {
		o.redisOpts = append(o.redisOpts, opts...)
	}
}

// New assembles the gateway from a validated config and builds the pools.
// Unreachable or malformed backends are logged and skipped; only an invalid
// auth policy or health interval fails construction.
func New(ctx context.Context, cfg *config.Config, opts ...Option) (*Service, error) {
	o := &serviceOptions{logger: logger.NewNope()}
	for _, opt := range opts {
		opt(o)
	}
	if o.metrics == nil {
		o.metrics = metrics.New()
	}

	reg := config.NewRegistry(cfg)
	pools := NewPools(PoolsConfig{
		Logger:       o.logger,
		Metrics:      o.metrics,
		S3Options:    o.s3Opts,
		RedisOptions: o.redisOpts,
		ProbeTimeout: cfg.Health.ProbeTimeout,
	})
	pools.Build(ctx, reg)

	sessions := NewSessionStore(reg, pools, o.metrics)
	gate, err := auth.NewGate(cfg.AuthType.Policy(), sessions)
	if err != nil {
		_ = pools.Close(ctx)
		return nil, err
	}

	monitor, err := pool.NewMonitor(pools.Checkers(),
		pool.WithInterval(cfg.Health.Interval),
		pool.WithMonitorLogger(o.logger),
	)
	if err != nil {
		_ = pools.Close(ctx)
		return nil, err
	}

	tenants := NewTenantLoader(reg, pools, sessions, cfg.TenantLookupPrefix, o.logger)
	proxy := NewProxy(cfg.MatchPrefix, gate,
		NewLinkResolver(reg, tenants, pools, o.metrics),
		WithContentTypeRewrite(cfg.ParsingContentType),
		WithProxyMetrics(o.metrics),
		WithHTTPClient(o.httpClient),
	)

	o.logger.InfoContext(ctx, "gateway ready",
		slog.String("auth", gate.Policy().Name()),
		slog.String("match_prefix", cfg.MatchPrefix),
		slog.Int("tenants", len(reg.Tenants())),
		slog.Int("storage_pools", len(pools.Storage.Keys())),
		slog.Int("session_pools", len(pools.Sessions.Keys())),
	)

	return &Service{
		Config:   cfg,
		Registry: reg,
		Pools:    pools,
		Monitor:  monitor,
		Proxy:    proxy,
		Metrics:  o.metrics,
		logger:   o.logger,
	}, nil
}

// Addr is the listen address for the configured port.
func (s *Service) Addr() string {
	return fmt.Sprintf(":%d", s.Config.ServerPort)
}

// AppOptions wires the service into an internal.App: middleware, probes,
// metrics endpoint, error rendering and the proxy route.
func (s *Service) AppOptions() []internal.Option {
	return []internal.Option{
		internal.WithLogger(s.logger),
		internal.WithHTTPMiddleware(middlewares.CORS(
			middlewares.WithAllowOrigins(s.Config.CORS.AllowOrigins...),
			middlewares.WithCORSLogger(s.logger),
		)),
		internal.WithMiddleware(
			middlewares.RequestID(),
			middlewares.AccessLog(middlewares.WithAccessLogSkipPaths("/health/", MetricsPath)),
			middlewares.Recover(),
		),
		internal.WithErrorHandler(ErrorHandler),
		internal.WithHealthChecks(
			internal.WithRequiredPools(s.Pools.Storage),
			internal.WithOptionalPools(s.Pools.Sessions),
		),
		internal.WithMount(MetricsPath, s.Metrics.Handler()),
		internal.WithHandlers(s.Proxy),
	}
}

// RunOptions starts the health monitor with the server and stops it,
// then closes every pool, on shutdown.
func (s *Service) RunOptions() []internal.RunOption {
	return []internal.RunOption{
		internal.Logger(s.logger),
		internal.ShutdownTimeout(s.Config.Server.ShutdownTimeout),
		internal.ServerTimeouts(s.Config.Server.ReadHeaderTimeout, s.Config.Server.IdleTimeout),
		internal.StartupHook(func(context.Context) error {
			s.Monitor.Start()
			return nil
		}),
		internal.ShutdownHook(s.Monitor.Shutdown()),
		internal.ShutdownHook(s.Pools.Shutdown()),
	}
}

// Close stops the monitor and closes the pools without a running server.
func (s *Service) Close(ctx context.Context) error {
	_ = s.Monitor.Stop(ctx)
	return s.Pools.Close(ctx)
}
