package scheduler

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/cuemby/lookout/pkg/events"
	"github.com/cuemby/lookout/pkg/log"
	"github.com/cuemby/lookout/pkg/metrics"
	"github.com/cuemby/lookout/pkg/probe"
	"github.com/cuemby/lookout/pkg/status"
	"github.com/cuemby/lookout/pkg/types"
)

// Publisher receives status transition events
type Publisher interface {
	Publish(event *events.Event)
}

// Check cycle triggers, used as metric labels
const (
	triggerInitial = "initial"
	triggerTick    = "tick"
	triggerForce   = "force"
)

// Scheduler owns one recurring monitoring task per target id
type Scheduler struct {
	prober      probe.Prober
	cache       *status.Cache
	publisher   Publisher
	logger      zerolog.Logger
	now         func() time.Time
	testTimeout time.Duration

	// opMu serialises Schedule, Cancel and Stop so that replacing a task is
	// always cancel-then-start
	opMu sync.Mutex

	mu    sync.RWMutex
	tasks map[string]*task
}

// task is the monitoring state of a single target
type task struct {
	target types.MonitorTarget
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	logger zerolog.Logger

	// cycleMu serialises check cycles (ticks and forced checks) so that at
	// most one probe cycle per target runs at a time
	cycleMu sync.Mutex
}

// NewScheduler creates a scheduler that probes with prober and records into cache
func NewScheduler(prober probe.Prober, cache *status.Cache) *Scheduler {
	return &Scheduler{
		prober:      prober,
		cache:       cache,
		logger:      log.WithComponent("scheduler"),
		now:         time.Now,
		testTimeout: probe.DefaultTimeout,
		tasks:       make(map[string]*task),
	}
}

// WithPublisher publishes status transitions to p
func (s *Scheduler) WithPublisher(p Publisher) *Scheduler {
	s.publisher = p
	return s
}

// WithTestTimeout sets the timeout used by TestAdHoc
func (s *Scheduler) WithTestTimeout(timeout time.Duration) *Scheduler {
	if timeout > 0 {
		s.testTimeout = timeout
	}
	return s
}

// Schedule starts monitoring target. An existing task for the same id is
// cancelled first. The first check runs immediately, then every Interval.
func (s *Scheduler) Schedule(target types.MonitorTarget) {
	target = normalize(target)

	s.opMu.Lock()
	defer s.opMu.Unlock()

	if old := s.detach(target.ID); old != nil {
		old.stop()
	}

	ctx, cancel := context.WithCancel(context.Background())
	t := &task{
		target: target,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
		logger: log.WithTarget("scheduler", target.ID, target.Host, target.Port),
	}

	s.mu.Lock()
	s.tasks[target.ID] = t
	count := len(s.tasks)
	s.mu.Unlock()

	metrics.TargetsScheduled.Set(float64(count))

	t.logger.Debug().
		Dur("interval", target.Interval).
		Int("retries", target.Retries).
		Msg("Target scheduled")

	go s.run(t)
}

// Cancel stops the task for id. It is a no-op for unknown ids. When Cancel
// returns, the task will not write to the status cache again.
func (s *Scheduler) Cancel(id string) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	t := s.detach(id)
	if t == nil {
		return
	}
	t.stop()

	s.logger.Debug().Str("target_id", id).Msg("Target cancelled")
}

// Stop cancels every task with the same guarantee as Cancel
func (s *Scheduler) Stop() {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	s.mu.Lock()
	tasks := s.tasks
	s.tasks = make(map[string]*task)
	s.mu.Unlock()

	var wg sync.WaitGroup
	for _, t := range tasks {
		wg.Add(1)
		go func(t *task) {
			defer wg.Done()
			t.stop()
		}(t)
	}
	wg.Wait()

	metrics.TargetsScheduled.Set(0)
}

// ForceCheck runs one retry-wrapped check for a scheduled target outside its
// normal cadence, records it and returns it. The recurring schedule is not
// affected. It returns false when id is not scheduled, or when the task was
// cancelled or ctx ended before a result could be recorded.
func (s *Scheduler) ForceCheck(ctx context.Context, id string) (types.StatusRecord, bool) {
	s.mu.RLock()
	t, ok := s.tasks[id]
	s.mu.RUnlock()
	if !ok {
		return types.StatusRecord{}, false
	}

	checkCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	stopLink := context.AfterFunc(t.ctx, cancel)
	defer stopLink()

	return s.cycle(checkCtx, t, triggerForce)
}

// TestAdHoc probes host once, without retries, and returns the raw result.
// It never reads or writes the status cache or any task state.
func (s *Scheduler) TestAdHoc(ctx context.Context, host string, port int) types.TestResult {
	attemptCtx, cancel := context.WithTimeout(ctx, s.testTimeout)
	defer cancel()

	result := s.prober.Probe(attemptCtx, host, port, s.testTimeout)

	out := types.TestResult{
		Host:      host,
		Port:      types.PortPtr(port),
		Status:    types.HostOffline,
		Error:     result.Error,
		CheckedAt: s.now(),
		Method:    string(probe.MethodFor(port)),
	}
	if result.Alive && result.LatencyMs != nil {
		latency := *result.LatencyMs
		out.Status = types.HostOnline
		out.LatencyMs = &latency
		out.Error = ""
	}
	return out
}

// Target returns the parameters a scheduled target is being probed with
func (s *Scheduler) Target(id string) (types.MonitorTarget, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return types.MonitorTarget{}, false
	}
	return t.target, true
}

// Scheduled returns the sorted ids of all scheduled targets
func (s *Scheduler) Scheduled() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.tasks))
	for id := range s.tasks {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of scheduled targets
func (s *Scheduler) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.tasks)
}

// detach removes and returns the task for id. Callers hold opMu.
func (s *Scheduler) detach(id string) *task {
	s.mu.Lock()
	t, ok := s.tasks[id]
	if ok {
		delete(s.tasks, id)
	}
	count := len(s.tasks)
	s.mu.Unlock()

	if ok {
		metrics.TargetsScheduled.Set(float64(count))
	}
	return t
}

// run is the recurring loop of a single task
func (s *Scheduler) run(t *task) {
	defer close(t.done)

	s.cycle(t.ctx, t, triggerInitial)

	ticker := time.NewTicker(t.target.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cycle(t.ctx, t, triggerTick)
		case <-t.ctx.Done():
			return
		}
	}
}

// cycle probes the target with retries and records the last attempt. The
// result is discarded when the task was cancelled while probing.
func (s *Scheduler) cycle(ctx context.Context, t *task, trigger string) (types.StatusRecord, bool) {
	t.cycleMu.Lock()
	defer t.cycleMu.Unlock()

	if t.ctx.Err() != nil || ctx.Err() != nil {
		return types.StatusRecord{}, false
	}

	result := s.attempt(ctx, t)

	if t.ctx.Err() != nil || ctx.Err() != nil {
		return types.StatusRecord{}, false
	}

	var prev *types.StatusRecord
	if p, ok := s.cache.Get(t.target.ID); ok {
		prev = &p
	}

	rec := status.Next(prev, t.target, result, s.now())
	s.cache.Write(t.target.ID, rec)

	metrics.CheckCyclesTotal.WithLabelValues(trigger).Inc()

	if status.Changed(prev, rec) {
		metrics.StatusTransitionsTotal.WithLabelValues(string(rec.Status)).Inc()
		t.logger.Info().
			Str("status", string(rec.Status)).
			Str("error", rec.Error).
			Msg("Target status changed")

		if s.publisher != nil {
			snapshot := rec
			s.publisher.Publish(&events.Event{
				Type:     events.EventStatusChanged,
				TargetID: rec.ID,
				Status:   &snapshot,
			})
		}
	}

	return rec, true
}

// attempt runs up to Retries+1 probes, stopping at the first alive result,
// and returns the last one
func (s *Scheduler) attempt(ctx context.Context, t *task) probe.Result {
	target := t.target
	attempts := target.Retries + 1

	var result probe.Result
	for i := 1; i <= attempts; i++ {
		attemptCtx, cancel := context.WithTimeout(ctx, target.Timeout)
		result = s.prober.Probe(attemptCtx, target.Host, target.Port, target.Timeout)
		cancel()

		if result.Alive || ctx.Err() != nil {
			break
		}

		t.logger.Debug().
			Int("attempt", i).
			Int("attempts", attempts).
			Str("error", result.Error).
			Msg("Probe failed")
	}
	return result
}

// stop cancels the task, waits for an in-flight cycle to finish or discard
// its result, and waits for the loop to exit
func (t *task) stop() {
	t.cancel()

	t.cycleMu.Lock()
	//lint:ignore SA2001 acquiring the lock is the barrier
	t.cycleMu.Unlock()

	<-t.done
}

// normalize fills in defaults for zero or invalid target parameters
func normalize(target types.MonitorTarget) types.MonitorTarget {
	if target.Interval <= 0 {
		target.Interval = types.DefaultMonitorInterval
	}
	if target.Timeout <= 0 {
		target.Timeout = types.DefaultMonitorTimeout
	}
	if target.Retries < 0 {
		target.Retries = 0
	}
	return target
}
