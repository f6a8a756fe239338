package metrics

import (
	"fmt"
	"io"
	"sync/atomic"
)

// CacheMetric counts hits and misses for a lookup cache.
type CacheMetric struct {
	name   string
	hits   atomic.Int64
	misses atomic.Int64
}

func newCacheMetric(name string) *CacheMetric {
	return &CacheMetric{name: name}
}

func (c *CacheMetric) Hit() {
	if Enabled() {
		c.hits.Add(1)
	}
}

func (c *CacheMetric) Miss() {
	if Enabled() {
		c.misses.Add(1)
	}
}

// Stats returns a snapshot of the counters.
func (c *CacheMetric) Stats() CacheStats {
	hits, misses := c.hits.Load(), c.misses.Load()
	var ratio float64
	if total := hits + misses; total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return CacheStats{Name: c.name, Hits: hits, Misses: misses, HitRatio: ratio}
}

func (c *CacheMetric) Reset() {
	c.hits.Store(0)
	c.misses.Store(0)
}

// CacheStats holds a snapshot of cache counters.
type CacheStats struct {
	Name     string  `json:"name"`
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	HitRatio float64 `json:"hit_ratio"`
}

// BranchCache counts IFSC branch-name cache hits and misses.
var BranchCache = newCacheMetric("branch_cache")

// AllCacheMetrics returns all registered cache metrics.
func AllCacheMetrics() []*CacheMetric {
	return []*CacheMetric{BranchCache}
}

// WriteReport prints every metric with data as aligned text.
func WriteReport(w io.Writer) {
	for _, s := range AllTimingStats() {
		fmt.Fprintf(w, "%-14s n=%-5d avg=%.3fms p95=%.3fms max=%.3fms total=%.3fms\n",
			s.Name, s.Count, s.AvgMs, s.P95Ms, s.MaxMs, s.TotalMs)
	}
	for _, c := range AllCacheMetrics() {
		s := c.Stats()
		if s.Hits+s.Misses == 0 {
			continue
		}
		fmt.Fprintf(w, "%-14s hits=%d misses=%d ratio=%.2f\n", s.Name, s.Hits, s.Misses, s.HitRatio)
	}
}
