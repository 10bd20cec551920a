package monitor

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/cuemby/lookout/pkg/events"
	"github.com/cuemby/lookout/pkg/log"
	"github.com/cuemby/lookout/pkg/metrics"
	"github.com/cuemby/lookout/pkg/probe"
	"github.com/cuemby/lookout/pkg/reconciler"
	"github.com/cuemby/lookout/pkg/resolver"
	"github.com/cuemby/lookout/pkg/scheduler"
	"github.com/cuemby/lookout/pkg/status"
	"github.com/cuemby/lookout/pkg/types"
)

// ConfigProvider returns the current monitoring view of the configuration
type ConfigProvider interface {
	Snapshot(ctx context.Context) (types.MonitorSnapshot, error)
}

// ConfigProviderFunc adapts a function to the ConfigProvider interface
type ConfigProviderFunc func(ctx context.Context) (types.MonitorSnapshot, error)

// Snapshot calls f
func (f ConfigProviderFunc) Snapshot(ctx context.Context) (types.MonitorSnapshot, error) {
	return f(ctx)
}

// Monitor is the host monitoring service. It resolves targets from the
// configuration, keeps one probe task per target and exposes the cached
// statuses.
type Monitor struct {
	cache      *status.Cache
	scheduler  *scheduler.Scheduler
	resolver   *resolver.Resolver
	reconciler *reconciler.Reconciler
	logger     zerolog.Logger

	// mu serialises Start, Stop and Reconcile
	mu        sync.Mutex
	running   atomic.Bool
	provider  ConfigProvider
	collector *metrics.Collector
}

// NewMonitor creates a stopped monitor that probes with prober
func NewMonitor(prober probe.Prober) *Monitor {
	cache := status.NewCache()
	sched := scheduler.NewScheduler(prober, cache)

	return &Monitor{
		cache:      cache,
		scheduler:  sched,
		resolver:   resolver.NewResolver(),
		reconciler: reconciler.NewReconciler(sched, cache),
		logger:     log.WithComponent("monitor"),
	}
}

// WithBroker publishes status and target events to broker
func (m *Monitor) WithBroker(broker *events.Broker) *Monitor {
	m.scheduler.WithPublisher(broker)
	m.reconciler.WithPublisher(broker)
	return m
}

// WithTestTimeout sets the timeout of TestHost probes
func (m *Monitor) WithTestTimeout(timeout time.Duration) *Monitor {
	m.scheduler.WithTestTimeout(timeout)
	return m
}

// Start loads the configuration from provider and schedules every target.
// Calling Start on a running monitor is a no-op.
func (m *Monitor) Start(ctx context.Context, provider ConfigProvider) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running.Load() {
		return nil
	}

	snapshot, err := provider.Snapshot(ctx)
	if err != nil {
		metrics.UpdateComponent(metrics.ComponentMonitor, false, err.Error())
		return fmt.Errorf("failed to load monitoring configuration: %w", err)
	}

	m.provider = provider
	summary := m.reconciler.Reconcile(m.resolver.Resolve(snapshot))

	m.collector = metrics.NewCollector(m)
	m.collector.Start()

	m.running.Store(true)
	metrics.UpdateComponent(metrics.ComponentMonitor, true, "")

	m.logger.Info().
		Int("targets", len(summary.Added)).
		Msg("Monitor started")

	return nil
}

// Stop cancels every probe task and clears the status cache. When Stop
// returns no task writes to the cache anymore.
func (m *Monitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running.Load() {
		return
	}

	m.reconciler.Reset()
	m.scheduler.Stop()
	m.cache.Clear()

	if m.collector != nil {
		m.collector.Stop()
		m.collector = nil
	}

	m.provider = nil
	m.running.Store(false)
	metrics.UpdateComponent(metrics.ComponentMonitor, false, "stopped")

	m.logger.Info().Msg("Monitor stopped")
}

// Reconcile re-reads the configuration and brings the scheduled targets in
// line with it. It is a no-op when the monitor is not running.
func (m *Monitor) Reconcile(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running.Load() {
		return nil
	}

	snapshot, err := m.provider.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to load monitoring configuration: %w", err)
	}

	m.reconciler.Reconcile(m.resolver.Resolve(snapshot))
	return nil
}

// Running reports whether the monitor is started
func (m *Monitor) Running() bool {
	return m.running.Load()
}

// GetAllStatuses returns a snapshot of every cached status keyed by target id
func (m *Monitor) GetAllStatuses() map[string]types.StatusRecord {
	return m.cache.All()
}

// GetStatus returns the cached status of one target
func (m *Monitor) GetStatus(id string) (types.StatusRecord, bool) {
	return m.cache.Get(id)
}

// ForceCheck checks a scheduled target immediately with its current
// parameters. It returns false for targets that are not scheduled.
func (m *Monitor) ForceCheck(ctx context.Context, id string) (types.StatusRecord, bool) {
	return m.scheduler.ForceCheck(ctx, id)
}

// TestHost probes an arbitrary host once. The result is not cached and the
// monitor does not need to be running.
func (m *Monitor) TestHost(ctx context.Context, host string, port int) types.TestResult {
	return m.scheduler.TestAdHoc(ctx, host, port)
}

// Targets returns the scheduled targets sorted by id
func (m *Monitor) Targets() []types.MonitorTarget {
	return m.reconciler.Targets()
}

// Resolve returns the targets snapshot would produce, without scheduling them
func (m *Monitor) Resolve(snapshot types.MonitorSnapshot) []types.MonitorTarget {
	return m.resolver.Resolve(snapshot)
}
