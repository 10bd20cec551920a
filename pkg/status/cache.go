package status

import (
	"sync"
	"time"

	"github.com/cuemby/lookout/pkg/probe"
	"github.com/cuemby/lookout/pkg/types"
)

// Cache maps target ids to their last known status.
//
// Records are immutable once written: Write swaps the stored pointer for a
// new record, so readers never observe a partially updated record.
type Cache struct {
	mu      sync.RWMutex
	records map[string]*types.StatusRecord
}

// NewCache creates an empty status cache
func NewCache() *Cache {
	return &Cache{
		records: make(map[string]*types.StatusRecord),
	}
}

// Write replaces the record for id
func (c *Cache) Write(id string, rec types.StatusRecord) {
	rec.ID = id

	c.mu.Lock()
	c.records[id] = &rec
	c.mu.Unlock()
}

// Get returns the record for id
func (c *Cache) Get(id string) (types.StatusRecord, bool) {
	c.mu.RLock()
	rec, ok := c.records[id]
	c.mu.RUnlock()

	if !ok {
		return types.StatusRecord{}, false
	}
	return *rec, true
}

// All returns a snapshot of every record keyed by id
func (c *Cache) All() map[string]types.StatusRecord {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]types.StatusRecord, len(c.records))
	for id, rec := range c.records {
		out[id] = *rec
	}
	return out
}

// Remove deletes the record for id
func (c *Cache) Remove(id string) {
	c.mu.Lock()
	delete(c.records, id)
	c.mu.Unlock()
}

// Clear deletes every record
func (c *Cache) Clear() {
	c.mu.Lock()
	c.records = make(map[string]*types.StatusRecord)
	c.mu.Unlock()
}

// Len returns the number of cached records
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.records)
}

// Next computes the record that follows prev after a probe result.
//
//   - online iff the result is alive; latency is carried only when online
//   - LastStatusChangeAt moves to now on the first record and on every
//     online/offline flip, and is carried over otherwise
//   - ConsecutiveFailures resets on online and grows by one on offline
func Next(prev *types.StatusRecord, target types.MonitorTarget, result probe.Result, now time.Time) types.StatusRecord {
	rec := types.StatusRecord{
		ID:            target.ID,
		Host:          target.Host,
		Port:          types.PortPtr(target.Port),
		Status:        types.HostOffline,
		LastCheckedAt: now,
		Error:         result.Error,
	}

	if result.Alive && result.LatencyMs != nil {
		latency := *result.LatencyMs
		rec.Status = types.HostOnline
		rec.LatencyMs = &latency
		rec.Error = ""
	}

	if rec.Status == types.HostOffline {
		rec.ConsecutiveFailures = 1
		if prev != nil {
			rec.ConsecutiveFailures = prev.ConsecutiveFailures + 1
		}
		if rec.Error == "" {
			rec.Error = "unreachable"
		}
	}

	if prev == nil || prev.Status != rec.Status {
		rec.LastStatusChangeAt = now
	} else {
		rec.LastStatusChangeAt = prev.LastStatusChangeAt
	}

	return rec
}

// Changed reports whether rec flips the status of prev, or is the first record
func Changed(prev *types.StatusRecord, rec types.StatusRecord) bool {
	return prev == nil || prev.Status != rec.Status
}
