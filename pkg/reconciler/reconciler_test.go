package reconciler

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/lookout/pkg/events"
	"github.com/cuemby/lookout/pkg/types"
)

// fakeScheduler records the calls made by the reconciler
type fakeScheduler struct {
	mu        sync.Mutex
	scheduled []types.MonitorTarget
	cancelled []string
	calls     []string
}

func (f *fakeScheduler) Schedule(target types.MonitorTarget) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled = append(f.scheduled, target)
	f.calls = append(f.calls, "schedule:"+target.ID)
}

func (f *fakeScheduler) Cancel(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, id)
	f.calls = append(f.calls, "cancel:"+id)
}

func (f *fakeScheduler) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.scheduled = nil
	f.cancelled = nil
	f.calls = nil
}

// fakeCache records removals
type fakeCache struct {
	removed []string
	sched   *fakeScheduler
}

func (f *fakeCache) Remove(id string) {
	f.removed = append(f.removed, id)
	f.sched.mu.Lock()
	f.sched.calls = append(f.sched.calls, "remove:"+id)
	f.sched.mu.Unlock()
}

type fakePublisher struct {
	events []*events.Event
}

func (f *fakePublisher) Publish(ev *events.Event) {
	f.events = append(f.events, ev)
}

func newFixture() (*Reconciler, *fakeScheduler, *fakeCache) {
	sched := &fakeScheduler{}
	cache := &fakeCache{sched: sched}
	return NewReconciler(sched, cache), sched, cache
}

func tgt(id string) types.MonitorTarget {
	return types.MonitorTarget{
		ID:       id,
		Host:     id + ".local",
		Interval: time.Minute,
		Timeout:  5 * time.Second,
		Retries:  2,
	}
}

func TestReconcileAddsTargets(t *testing.T) {
	r, sched, _ := newFixture()

	summary := r.Reconcile([]types.MonitorTarget{tgt("a"), tgt("b")})

	assert.Equal(t, []string{"a", "b"}, summary.Added)
	assert.Empty(t, summary.Removed)
	assert.Empty(t, summary.Rescheduled)
	assert.Len(t, sched.scheduled, 2)
	assert.Empty(t, sched.cancelled)
}

func TestReconcileIsIdempotent(t *testing.T) {
	r, sched, cache := newFixture()
	targets := []types.MonitorTarget{tgt("a"), tgt("b")}

	r.Reconcile(targets)
	sched.reset()

	summary := r.Reconcile(targets)
	assert.True(t, summary.Empty())
	assert.Empty(t, sched.calls)
	assert.Empty(t, cache.removed)
}

func TestReconcileReplacesSet(t *testing.T) {
	r, sched, cache := newFixture()

	r.Reconcile([]types.MonitorTarget{tgt("a"), tgt("b")})
	sched.reset()

	summary := r.Reconcile([]types.MonitorTarget{tgt("b"), tgt("c")})

	assert.Equal(t, []string{"c"}, summary.Added)
	assert.Equal(t, []string{"a"}, summary.Removed)
	assert.Empty(t, summary.Rescheduled)

	assert.Equal(t, []string{"a"}, sched.cancelled)
	require.Len(t, sched.scheduled, 1)
	assert.Equal(t, "c", sched.scheduled[0].ID)
	assert.Equal(t, []string{"a"}, cache.removed)

	// status is removed only after the task is cancelled
	assert.Equal(t, []string{"cancel:a", "remove:a", "schedule:c"}, sched.calls)
}

func TestReconcileReschedulesOnParamChange(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*types.MonitorTarget)
	}{
		{"interval", func(t *types.MonitorTarget) { t.Interval = 30 * time.Second }},
		{"host", func(t *types.MonitorTarget) { t.Host = "other.local" }},
		{"port", func(t *types.MonitorTarget) { t.Port = 22 }},
		{"timeout", func(t *types.MonitorTarget) { t.Timeout = time.Second }},
		{"retries", func(t *types.MonitorTarget) { t.Retries = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, sched, cache := newFixture()
			r.Reconcile([]types.MonitorTarget{tgt("a")})
			sched.reset()

			changed := tgt("a")
			tt.modify(&changed)
			summary := r.Reconcile([]types.MonitorTarget{changed})

			assert.Equal(t, []string{"a"}, summary.Rescheduled)
			require.Len(t, sched.scheduled, 1)
			assert.Equal(t, changed, sched.scheduled[0])
			assert.Empty(t, sched.cancelled, "Schedule replaces the task itself")
			assert.Empty(t, cache.removed, "rescheduling keeps the status")

			current, ok := r.Lookup("a")
			require.True(t, ok)
			assert.Equal(t, changed, current)
		})
	}
}

func TestReconcileNameChangeDoesNotReschedule(t *testing.T) {
	r, sched, _ := newFixture()
	r.Reconcile([]types.MonitorTarget{tgt("a")})
	sched.reset()

	renamed := tgt("a")
	renamed.Name = "Renamed"
	summary := r.Reconcile([]types.MonitorTarget{renamed})

	assert.True(t, summary.Empty())
	assert.Empty(t, sched.calls)
	current, _ := r.Lookup("a")
	assert.Equal(t, "Renamed", current.Name)
}

func TestReconcileDuplicateLastWins(t *testing.T) {
	r, sched, _ := newFixture()

	first := tgt("a")
	second := tgt("a")
	second.Port = 8080

	summary := r.Reconcile([]types.MonitorTarget{first, second})
	assert.Equal(t, []string{"a"}, summary.Added)
	require.Len(t, sched.scheduled, 1)
	assert.Equal(t, 8080, sched.scheduled[0].Port)
}

func TestReconcileEmptyRemovesAll(t *testing.T) {
	r, sched, cache := newFixture()
	r.Reconcile([]types.MonitorTarget{tgt("a"), tgt("b")})

	summary := r.Reconcile(nil)
	assert.Equal(t, []string{"a", "b"}, summary.Removed)
	assert.ElementsMatch(t, []string{"a", "b"}, sched.cancelled)
	assert.ElementsMatch(t, []string{"a", "b"}, cache.removed)
	assert.Empty(t, r.Targets())
}

func TestReset(t *testing.T) {
	r, sched, _ := newFixture()
	r.Reconcile([]types.MonitorTarget{tgt("a"), tgt("b")})
	sched.reset()

	r.Reset()
	assert.Equal(t, []string{"a", "b"}, sched.cancelled)
	assert.Empty(t, r.Targets())

	// after a reset everything is new again
	summary := r.Reconcile([]types.MonitorTarget{tgt("a")})
	assert.Equal(t, []string{"a"}, summary.Added)
}

func TestReconcilePublishesEvents(t *testing.T) {
	r, _, _ := newFixture()
	pub := &fakePublisher{}
	r.WithPublisher(pub)

	r.Reconcile([]types.MonitorTarget{tgt("a")})
	r.Reconcile(nil)

	require.Len(t, pub.events, 2)
	assert.Equal(t, events.EventTargetScheduled, pub.events[0].Type)
	assert.Equal(t, "a", pub.events[0].TargetID)
	assert.Equal(t, events.EventTargetRemoved, pub.events[1].Type)
}

func TestTargetsSorted(t *testing.T) {
	r, _, _ := newFixture()
	r.Reconcile([]types.MonitorTarget{tgt("c"), tgt("a"), tgt("b")})

	var ids []string
	for _, target := range r.Targets() {
		ids = append(ids, target.ID)
	}
	assert.Equal(t, []string{"a", "b", "c"}, ids)
}
