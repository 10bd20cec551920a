package reconciler

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/cuemby/lookout/pkg/events"
	"github.com/cuemby/lookout/pkg/log"
	"github.com/cuemby/lookout/pkg/metrics"
	"github.com/cuemby/lookout/pkg/types"
)

// Scheduler is the part of the scheduler the reconciler drives
type Scheduler interface {
	Schedule(target types.MonitorTarget)
	Cancel(id string)
}

// Cache is the part of the status cache the reconciler clears
type Cache interface {
	Remove(id string)
}

// Publisher receives target added and removed events
type Publisher interface {
	Publish(event *events.Event)
}

// Summary describes the changes made by one reconciliation
type Summary struct {
	Added       []string `json:"added"`
	Removed     []string `json:"removed"`
	Rescheduled []string `json:"rescheduled"`
}

// Empty reports whether the reconciliation changed nothing
func (s Summary) Empty() bool {
	return len(s.Added) == 0 && len(s.Removed) == 0 && len(s.Rescheduled) == 0
}

// Reconciler ensures the scheduled targets match the desired set
type Reconciler struct {
	scheduler Scheduler
	cache     Cache
	publisher Publisher
	logger    zerolog.Logger

	mu        sync.Mutex
	scheduled map[string]types.MonitorTarget
}

// NewReconciler creates a new reconciler
func NewReconciler(scheduler Scheduler, cache Cache) *Reconciler {
	return &Reconciler{
		scheduler: scheduler,
		cache:     cache,
		logger:    log.WithComponent("reconciler"),
		scheduled: make(map[string]types.MonitorTarget),
	}
}

// WithPublisher publishes target changes to p
func (r *Reconciler) WithPublisher(p Publisher) *Reconciler {
	r.publisher = p
	return r
}

// Reconcile diffs desired against the currently scheduled targets:
//
//   - ids no longer desired are cancelled and their status removed
//   - new ids are scheduled
//   - ids whose probe parameters changed are rescheduled
//
// Unchanged targets are left alone, so calling Reconcile twice with the same
// input makes no scheduling calls the second time. When desired contains the
// same id more than once, the last entry wins.
func (r *Reconciler) Reconcile(desired []types.MonitorTarget) Summary {
	timer := metrics.NewTimer()
	defer func() {
		timer.ObserveDuration(metrics.ReconciliationDuration)
		metrics.ReconciliationCyclesTotal.Inc()
	}()

	r.mu.Lock()
	defer r.mu.Unlock()

	want := make(map[string]types.MonitorTarget, len(desired))
	for _, target := range desired {
		want[target.ID] = target
	}

	var summary Summary

	for _, id := range sortedKeys(r.scheduled) {
		if _, ok := want[id]; ok {
			continue
		}
		r.scheduler.Cancel(id)
		r.cache.Remove(id)
		delete(r.scheduled, id)
		summary.Removed = append(summary.Removed, id)
	}

	for _, id := range sortedKeys(want) {
		target := want[id]
		current, ok := r.scheduled[id]
		switch {
		case !ok:
			summary.Added = append(summary.Added, id)
		case !current.SameParams(target):
			summary.Rescheduled = append(summary.Rescheduled, id)
		default:
			// Keep the latest name and origin without touching the task
			r.scheduled[id] = target
			continue
		}
		r.scheduler.Schedule(target)
		r.scheduled[id] = target
	}

	r.record(summary)
	return summary
}

// Reset cancels every scheduled target and forgets them
func (r *Reconciler) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range sortedKeys(r.scheduled) {
		r.scheduler.Cancel(id)
	}
	r.scheduled = make(map[string]types.MonitorTarget)
}

// Targets returns the scheduled targets sorted by id
func (r *Reconciler) Targets() []types.MonitorTarget {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]types.MonitorTarget, 0, len(r.scheduled))
	for _, id := range sortedKeys(r.scheduled) {
		out = append(out, r.scheduled[id])
	}
	return out
}

// Lookup returns the scheduled target for id
func (r *Reconciler) Lookup(id string) (types.MonitorTarget, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	target, ok := r.scheduled[id]
	return target, ok
}

func (r *Reconciler) record(summary Summary) {
	metrics.ReconciliationChangesTotal.WithLabelValues("added").Add(float64(len(summary.Added)))
	metrics.ReconciliationChangesTotal.WithLabelValues("removed").Add(float64(len(summary.Removed)))
	metrics.ReconciliationChangesTotal.WithLabelValues("rescheduled").Add(float64(len(summary.Rescheduled)))

	if summary.Empty() {
		r.logger.Debug().Int("targets", len(r.scheduled)).Msg("Reconciled, no changes")
		return
	}

	r.logger.Info().
		Int("targets", len(r.scheduled)).
		Int("added", len(summary.Added)).
		Int("removed", len(summary.Removed)).
		Int("rescheduled", len(summary.Rescheduled)).
		Msg("Reconciled monitor targets")

	if r.publisher == nil {
		return
	}
	for _, id := range append(append([]string{}, summary.Added...), summary.Rescheduled...) {
		r.publisher.Publish(&events.Event{Type: events.EventTargetScheduled, TargetID: id})
	}
	for _, id := range summary.Removed {
		r.publisher.Publish(&events.Event{Type: events.EventTargetRemoved, TargetID: id})
	}
}

func sortedKeys(m map[string]types.MonitorTarget) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
