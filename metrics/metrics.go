// Package metrics exposes the two named histograms required by the miner
// (forge-block-time, forge-microblock-time, both in milliseconds) plus a
// small counter type for auxiliary tallies (e.g. rejection reasons).
//
// The reference corpus's go.mod carries prometheus/prometheus,
// prometheus/tsdb, and influxdata/influxdb, but those are full metrics
// storage/query servers pulled in by the corpus's (not retrieved) metrics
// reporter package. No component in this module stands up such a server, so
// wiring a client for them here would be dead weight. This registry is built
// on sync/atomic (plus a mutex for histogram min/max) instead.
package metrics

import (
	"sync"
	"sync/atomic"
)

// Histogram accumulates a running count/sum/min/max of observed values. It
// is safe for concurrent use.
type Histogram struct {
	count int64
	sum   int64

	// mu guards seeded, min and max, which must change together.
	mu     sync.Mutex
	seeded bool
	min    int64
	max    int64
}

// NewHistogram returns an empty Histogram.
func NewHistogram() *Histogram {
	return &Histogram{}
}

// Update records a single observation.
func (h *Histogram) Update(v int64) {
	atomic.AddInt64(&h.count, 1)
	atomic.AddInt64(&h.sum, v)
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.seeded || v < h.min {
		h.min = v
	}
	if !h.seeded || v > h.max {
		h.max = v
	}
	h.seeded = true
}

// Snapshot is a point-in-time read of a Histogram's accumulators.
type Snapshot struct {
	Count      int64
	Sum        int64
	Min        int64
	Max        int64
}

// Mean returns Sum/Count, or 0 if Count is 0.
func (s Snapshot) Mean() float64 {
	if s.Count == 0 {
		return 0
	}
	return float64(s.Sum) / float64(s.Count)
}

// Snapshot reads h's accumulators.
func (h *Histogram) Snapshot() Snapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	return Snapshot{
		Count: atomic.LoadInt64(&h.count),
		Sum:   atomic.LoadInt64(&h.sum),
		Min:   h.min,
		Max:   h.max,
	}
}

// Counter is a monotonically incrementing tally.
type Counter struct {
	value int64
}

// Inc increments the counter by delta.
func (c *Counter) Inc(delta int64) { atomic.AddInt64(&c.value, delta) }

// Get returns the current count.
func (c *Counter) Get() int64 { return atomic.LoadInt64(&c.value) }

// Registry holds the node's named histograms/counters. The forging path is
// the only component with a named observability requirement, so it is the
// only pre-wired set of metrics.
type Registry struct {
	ForgeBlockTime      *Histogram
	ForgeMicroBlockTime *Histogram
}

// NewRegistry returns a Registry with both named miner histograms allocated.
func NewRegistry() *Registry {
	return &Registry{
		ForgeBlockTime:      NewHistogram(),
		ForgeMicroBlockTime: NewHistogram(),
	}
}
