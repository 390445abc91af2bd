package metrics

import (
	"time"
)

// Stats is a point-in-time summary of the daemon's worker table.
type Stats struct {
	// AliveByType counts live workers keyed by worker type.
	AliveByType map[string]int
	// Blocked counts workers parked waiting on a dependency.
	Blocked int
}

// StatsFunc produces a Stats snapshot. The daemon supplies one; keeping it
// a function avoids coupling the collector to the worker table.
type StatsFunc func() Stats

// Collector periodically publishes worker table gauges.
type Collector struct {
	snapshot StatsFunc
	interval time.Duration
	stopCh   chan struct{}

	// seen tracks types published before, so a type that drops to zero is
	// reset instead of left at its last value.
	seen map[string]bool
}

// NewCollector creates a collector polling the given snapshot function.
func NewCollector(snapshot StatsFunc, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	return &Collector{
		snapshot: snapshot,
		interval: interval,
		stopCh:   make(chan struct{}),
		seen:     make(map[string]bool),
	}
}

// Start begins collecting metrics
func (c *Collector) Start() {
	ticker := time.NewTicker(c.interval)
	go func() {
		// Collect immediately on start
		c.collect()

		for {
			select {
			case <-ticker.C:
				c.collect()
			case <-c.stopCh:
				ticker.Stop()
				return
			}
		}
	}()
}

// Stop stops the collector
func (c *Collector) Stop() {
	close(c.stopCh)
}

func (c *Collector) collect() {
	stats := c.snapshot()

	for typ := range c.seen {
		if _, ok := stats.AliveByType[typ]; !ok {
			WorkersAlive.WithLabelValues(typ).Set(0)
		}
	}
	for typ, n := range stats.AliveByType {
		WorkersAlive.WithLabelValues(typ).Set(float64(n))
		c.seen[typ] = true
	}

	WorkersBlocked.Set(float64(stats.Blocked))
}
