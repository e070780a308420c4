package pool

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultInterval is the default delay between health ticks.
const DefaultInterval = 60 * time.Second

// Checker is implemented by anything the Monitor can probe.
// *Registry[C] satisfies it for every C.
type Checker interface {
	Name() string
	CheckHealth(ctx context.Context)
}

// Monitor runs CheckHealth on a set of registries at a fixed interval.
// A tick that is still running when the next one is due is skipped.
type Monitor struct {
	logger   *slog.Logger
	cron     *cron.Cron
	ctx      context.Context
	cancel   context.CancelFunc
	checkers []Checker
	interval time.Duration
	mu       sync.Mutex
	started  bool
}

// MonitorOption configures a Monitor.
type MonitorOption func(*Monitor)

// WithInterval sets the tick interval. Default: 60 seconds.
func WithInterval(d time.Duration) MonitorOption {
	return func(m *Monitor) {
		m.interval = d
	}
}

// WithMonitorLogger sets the logger for tick events.
func WithMonitorLogger(l *slog.Logger) MonitorOption {
	return func(m *Monitor) {
		if l != nil {
			m.logger = l
		}
	}
}

// NewMonitor creates a monitor for the given checkers. Call Start to begin ticking.
func NewMonitor(checkers []Checker, opts ...MonitorOption) (*Monitor, error) {
	m := &Monitor{
		checkers: checkers,
		interval: DefaultInterval,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.interval <= 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInterval, m.interval)
	}

	cl := cronLogger{logger: m.logger}
	m.cron = cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)
	m.ctx, m.cancel = context.WithCancel(context.Background())

	if _, err := m.cron.AddFunc("@every "+m.interval.String(), func() { m.Tick(m.ctx) }); err != nil {
		m.cancel()
		return nil, fmt.Errorf("%w: %w", ErrInvalidInterval, err)
	}
	return m, nil
}

// Tick runs one health round across all checkers, in parallel, and waits for it.
func (m *Monitor) Tick(ctx context.Context) {
	start := time.Now()

	var wg sync.WaitGroup
	for _, c := range m.checkers {
		wg.Go(func() {
			c.CheckHealth(ctx)
		})
	}
	wg.Wait()

	m.logger.DebugContext(ctx, "health tick finished",
		slog.Int("registries", len(m.checkers)),
		slog.Duration("duration", time.Since(start)),
	)
}

// Start begins periodic ticking. The first tick fires after one interval;
// instances are considered healthy until then.
func (m *Monitor) Start() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.started {
		return
	}
	m.started = true
	m.cron.Start()
	m.logger.Info("health monitor started", slog.Duration("interval", m.interval))
}

// Stop halts ticking, cancels an in-flight tick and waits for it to return
// or for ctx to be done.
func (m *Monitor) Stop(ctx context.Context) error {
	m.mu.Lock()
	started := m.started
	m.started = false
	m.mu.Unlock()

	m.cancel()
	if !started {
		return nil
	}

	done := m.cron.Stop().Done()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Shutdown returns a shutdown function for use with graceful shutdown hooks.
func (m *Monitor) Shutdown() func(context.Context) error {
	return m.Stop
}

// cronLogger adapts slog to cron.Logger.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug("cron: "+msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error("cron: "+msg, append(keysAndValues, slog.String("error", err.Error()))...)
}
