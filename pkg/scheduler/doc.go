/*
Package scheduler runs the recurring probe tasks for Lookout's monitored
targets.

Each scheduled target gets its own goroutine. The first check runs immediately,
then the task ticks every target Interval until it is cancelled:

	Schedule(target)
	      │
	      ▼
	┌────────────────────────────────────────────┐
	│  check cycle (initial)                     │
	│    attempt 1 .. Retries+1                  │
	│    stop at first alive result              │
	│    status.Next(prev, last attempt) ──► cache
	│    publish status.changed on a flip        │
	└──────────────┬─────────────────────────────┘
	               │ every Interval
	               ▼
	         check cycle (tick) ... until Cancel/Stop

# Guarantees

  - At most one task per target id. Schedule on an existing id cancels the old
    task before starting the new one.
  - Cycles of one target never overlap. Ticks that fire while a cycle is still
    running are dropped, and ForceCheck waits for the running cycle.
  - After Cancel or Stop returns, the cancelled task never writes to the cache.
    An in-flight probe is aborted through its context and its result discarded.
  - Every probe attempt runs with its own Timeout.

# Ad-hoc checks

ForceCheck runs one extra cycle for a scheduled target and records it without
touching the schedule. TestAdHoc probes an arbitrary host once, without retries,
and never touches the cache.
*/
package scheduler
