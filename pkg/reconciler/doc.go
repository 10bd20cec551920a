/*
Package reconciler keeps the scheduled monitor targets in line with the
configuration.

The reconciler owns the map of currently scheduled targets and their probe
parameters. Given the desired target set it computes a diff and applies it to
the scheduler and the status cache:

	desired targets ──► index by id (last wins)
	                         │
	     ┌───────────────────┼─────────────────────┐
	     ▼                   ▼                     ▼
	  removed              added           params changed
	Cancel(id)          Schedule(t)         Schedule(t)
	cache.Remove(id)                     (cancels old task)

Scheduling parameters are host, port, interval, timeout and retries. A change
to any of them reschedules the target; a change to the display name alone does
not. Because Cancel guarantees no further cache writes, removing the status
right after it cannot race with a late probe result.

Reconcile is safe to call concurrently; calls are serialised. Each call records
its duration and the number of changes in the reconciliation metrics and emits
target.scheduled and target.removed events when a publisher is set.
*/
package reconciler
