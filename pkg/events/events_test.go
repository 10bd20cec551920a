package events

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBrokerBroadcast(t *testing.T) {
	b := NewBroker()
	b.Start()
	defer b.Stop()

	sub1 := b.Subscribe()
	sub2 := b.Subscribe()
	assert.Equal(t, 2, b.SubscriberCount())

	b.Publish(&Event{Type: EventStatusChanged, TargetID: "link-1"})

	for _, sub := range []Subscriber{sub1, sub2} {
		select {
		case ev := <-sub:
			assert.Equal(t, EventStatusChanged, ev.Type)
			assert.Equal(t, "link-1", ev.TargetID)
			assert.NotEmpty(t, ev.ID)
			assert.False(t, ev.Timestamp.IsZero())
		case <-time.After(time.Second):
			t.Fatal("event not delivered")
		}
	}
}

func TestBrokerUnsubscribe(t *testing.T) {
	b := NewBroker()
	sub := b.Subscribe()

	b.Unsubscribe(sub)
	assert.Equal(t, 0, b.SubscriberCount())

	_, open := <-sub
	assert.False(t, open)

	// Second unsubscribe must not panic on the closed channel
	b.Unsubscribe(sub)
}

func TestBrokerPublishNeverBlocks(t *testing.T) {
	b := NewBroker() // not started, queue fills up

	done := make(chan struct{})
	go func() {
		for i := 0; i < 500; i++ {
			b.Publish(&Event{Type: EventTargetScheduled})
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Publish blocked")
	}

	b.Stop()
	b.Stop()
	b.Publish(&Event{Type: EventTargetRemoved})
}

func TestBrokerKeepsExplicitIDAndTimestamp(t *testing.T) {
	b := NewBroker()
	b.Start()
	defer b.Stop()

	sub := b.Subscribe()
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	b.Publish(&Event{ID: "fixed", Type: EventConfigChanged, Timestamp: ts})

	select {
	case ev := <-sub:
		require.NotNil(t, ev)
		assert.Equal(t, "fixed", ev.ID)
		assert.Equal(t, ts, ev.Timestamp)
	case <-time.After(time.Second):
		t.Fatal("event not delivered")
	}
}
