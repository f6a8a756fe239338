// Package metrics records in-memory timings for the fund-trail pipeline
// (load, sanitize, layer assignment, path finding, hold filtering) and hit/miss
// counters for the branch cache. Collection is on unless FUNDTRAIL_METRICS=0.
//
//	defer metrics.Timer(metrics.Sanitize)()
package metrics

import (
	"os"
	"slices"
	"sync"
	"sync/atomic"
	"time"
)

var enabled atomic.Bool

func init() {
	enabled.Store(os.Getenv("FUNDTRAIL_METRICS") != "0")
}

// Enabled returns whether metrics collection is enabled.
func Enabled() bool {
	return enabled.Load()
}

// SetEnabled turns collection on or off.
func SetEnabled(e bool) {
	enabled.Store(e)
}

// sampleWindow is how many recent durations feed the percentile.
const sampleWindow = 256

// TimingMetric aggregates durations of one pipeline stage. It keeps running
// totals plus the most recent samples for a p95.
type TimingMetric struct {
	name string

	mu      sync.Mutex
	count   int64
	total   time.Duration
	min     time.Duration
	max     time.Duration
	samples []time.Duration // ring, len <= sampleWindow
	next    int
}

func newTimingMetric(name string) *TimingMetric {
	return &TimingMetric{name: name}
}

// Record adds one measurement.
func (m *TimingMetric) Record(d time.Duration) {
	if !Enabled() {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.count == 0 || d < m.min {
		m.min = d
	}
	if d > m.max {
		m.max = d
	}
	m.count++
	m.total += d

	if len(m.samples) < sampleWindow {
		m.samples = append(m.samples, d)
		return
	}
	m.samples[m.next] = d
	m.next = (m.next + 1) % sampleWindow
}

func (m *TimingMetric) Name() string {
	return m.name
}

func (m *TimingMetric) Count() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count
}

// Stats returns a consistent snapshot.
func (m *TimingMetric) Stats() TimingStats {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := TimingStats{
		Name:    m.name,
		Count:   m.count,
		TotalMs: ms(m.total),
		MaxMs:   ms(m.max),
		MinMs:   ms(m.min),
	}
	if m.count > 0 {
		s.AvgMs = ms(m.total / time.Duration(m.count))
	}
	if len(m.samples) > 0 {
		sorted := slices.Clone(m.samples)
		slices.Sort(sorted)
		s.P95Ms = ms(sorted[(len(sorted)*95-1)/100])
	}
	return s
}

// Reset clears all recorded measurements.
func (m *TimingMetric) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count, m.total, m.min, m.max = 0, 0, 0, 0
	m.samples = m.samples[:0]
	m.next = 0
}

func ms(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// TimingStats holds a snapshot of timing statistics.
type TimingStats struct {
	Name    string  `json:"name"`
	Count   int64   `json:"count"`
	TotalMs float64 `json:"total_ms"`
	AvgMs   float64 `json:"avg_ms"`
	P95Ms   float64 `json:"p95_ms"`
	MaxMs   float64 `json:"max_ms"`
	MinMs   float64 `json:"min_ms,omitempty"`
}

// Timer starts a measurement and returns the func that records it.
func Timer(m *TimingMetric) func() {
	if m == nil || !Enabled() {
		return func() {}
	}
	start := time.Now()
	return func() {
		m.Record(time.Since(start))
	}
}

// Pipeline stages, in the order a load runs them, then the UI.
var (
	GraphLoad    = newTimingMetric("graph_load")
	Sanitize     = newTimingMetric("sanitize")
	LayerAssign  = newTimingMetric("layer_assign")
	PathFind     = newTimingMetric("path_find")
	HoldFilter   = newTimingMetric("hold_filter")
	BranchLookup = newTimingMetric("branch_lookup")
	UIRender     = newTimingMetric("ui_render")

	stages = []*TimingMetric{GraphLoad, Sanitize, LayerAssign, PathFind, HoldFilter, BranchLookup, UIRender}
)

// AllTimingMetrics returns the pipeline stage metrics.
func AllTimingMetrics() []*TimingMetric {
	return slices.Clone(stages)
}

// ResetAll resets all timing and cache metrics.
func ResetAll() {
	for _, m := range stages {
		m.Reset()
	}
	for _, c := range AllCacheMetrics() {
		c.Reset()
	}
}

// AllTimingStats returns stats for the stages that have data.
func AllTimingStats() []TimingStats {
	var out []TimingStats
	for _, m := range stages {
		if s := m.Stats(); s.Count > 0 {
			out = append(out, s)
		}
	}
	return out
}
