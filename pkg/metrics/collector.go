package metrics

import (
	"sync"
	"time"

	"github.com/cuemby/lookout/pkg/types"
)

// StatusSource exposes the cached statuses the collector summarises
type StatusSource interface {
	GetAllStatuses() map[string]types.StatusRecord
}

// Collector periodically turns the status cache into gauges
type Collector struct {
	source   StatusSource
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewCollector creates a new metrics collector
func NewCollector(source StatusSource) *Collector {
	return &Collector{
		source:   source,
		interval: 15 * time.Second,
		stopCh:   make(chan struct{}),
	}
}

// Start begins collecting metrics
func (c *Collector) Start() {
	ticker := time.NewTicker(c.interval)
	go func() {
		defer ticker.Stop()

		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *Collector) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopCh)
	})
}

func (c *Collector) collect() {
	counts := map[types.HostStatus]int{
		types.HostOnline:  0,
		types.HostOffline: 0,
	}
	for _, rec := range c.source.GetAllStatuses() {
		counts[rec.Status]++
	}

	for status, count := range counts {
		TargetsByStatus.WithLabelValues(string(status)).Set(float64(count))
	}
}
