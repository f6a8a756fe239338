package branch

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/vanderheijden86/fundtrail/pkg/debug"
	"github.com/vanderheijden86/fundtrail/pkg/metrics"
)

// Unknown is returned for codes that could not be resolved.
const Unknown = "Unknown"

// DefaultConcurrency bounds parallel lookups in ResolveAll.
const DefaultConcurrency = 8

// DefaultLookupTimeout bounds one shared lookup. The lookup outlives the
// caller that started it, so every caller waiting on it gets its answer.
const DefaultLookupTimeout = 15 * time.Second

// Cache maps IFSC codes to branch names. Entries, including Unknown for
// failed lookups, are never evicted. Concurrent requests for one uncached
// code share a single lookup. A Cache is safe for concurrent use.
type Cache struct {
	lookup      Lookup
	concurrency int
	timeout     time.Duration

	mu     sync.RWMutex
	names  map[string]string
	flight singleflight.Group
}

// NewCache returns an empty cache backed by lookup.
func NewCache(lookup Lookup) *Cache {
	return &Cache{
		lookup:      lookup,
		concurrency: DefaultConcurrency,
		timeout:     DefaultLookupTimeout,
		names:       make(map[string]string),
	}
}

// SetConcurrency bounds parallel lookups in ResolveAll.
func (c *Cache) SetConcurrency(n int) {
	if n > 0 {
		c.concurrency = n
	}
}

// SetLookupTimeout bounds each external lookup.
func (c *Cache) SetLookupTimeout(d time.Duration) {
	if d > 0 {
		c.timeout = d
	}
}

// Cached returns a stored name without looking it up.
func (c *Cache) Cached(code string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	name, ok := c.names[normalize(code)]
	return name, ok
}

// Len returns the number of cached codes.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.names)
}

// Resolve returns the branch name for code, or Unknown. A blank code is
// Unknown without a lookup. A caller whose ctx ends gets Unknown right away;
// the lookup it joined or started carries on for the other callers and is
// cached when it completes.
func (c *Cache) Resolve(ctx context.Context, code string) string {
	key := normalize(code)
	if key == "" {
		return Unknown
	}
	if name, ok := c.Cached(key); ok {
		metrics.BranchCache.Hit()
		return name
	}
	if ctx.Err() != nil {
		return Unknown
	}
	metrics.BranchCache.Miss()

	ch := c.flight.DoChan(key, func() (any, error) {
		if name, ok := c.Cached(key); ok {
			return name, nil
		}
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()

		done := metrics.Timer(metrics.BranchLookup)
		name, err := c.lookup.Branch(lctx, key)
		done()
		name = strings.TrimSpace(name)
		if err != nil || name == "" {
			debug.Log("branch lookup %s failed: %v", key, err)
			name = Unknown
		}
		c.mu.Lock()
		c.names[key] = name
		c.mu.Unlock()
		return name, nil
	})
	select {
	case res := <-ch:
		return res.Val.(string)
	case <-ctx.Done():
		return Unknown
	}
}

// ResolveAll resolves every distinct code once and returns code -> name.
// Blank codes map to Unknown.
func (c *Cache) ResolveAll(ctx context.Context, codes []string) map[string]string {
	out := make(map[string]string, len(codes))
	seen := make(map[string]bool, len(codes))
	var pending []string
	for _, code := range codes {
		key := normalize(code)
		if seen[key] {
			continue
		}
		seen[key] = true
		pending = append(pending, key)
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.concurrency)
	for _, key := range pending {
		g.Go(func() error {
			name := c.Resolve(gctx, key)
			mu.Lock()
			out[key] = name
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	for _, code := range codes {
		out[code] = out[normalize(code)]
	}
	return out
}

func normalize(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
