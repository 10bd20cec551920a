/*
Package events provides an in-memory event broker for Lookout.

The broker fans monitoring events out to any number of subscribers. The
scheduler publishes status transitions, the reconciler publishes target
additions and removals, and the API's websocket stream subscribes to forward
them to browsers.

# Architecture

	Publisher ──► event channel (buffer 100) ──► broadcast loop ──► subscriber channels (buffer 50 each)

Both hops are non-blocking: Publish drops the event when the queue is full, and
the broadcast loop skips subscribers whose buffer is full. A slow websocket
client therefore never stalls a probe cycle.

# Event Types

  - status.changed: a target flipped between online and offline, or got its
    first record. Status carries the new record.
  - target.scheduled: a target was added or rescheduled.
  - target.removed: a target left the configuration and its status was dropped.
  - config.changed: the dashboard document was modified through the admin API.

# Usage

	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	for ev := range sub {
		fmt.Println(ev.Type, ev.TargetID)
	}

# Limitations

Events are not persisted and delivery is best effort. Consumers that need the
full picture should take a snapshot (monitor.GetAllStatuses) and then apply
events on top of it.
*/
package events
