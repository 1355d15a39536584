package rank

import (
	"fmt"
	"sync"
)

// resultCache memoizes ranked result lists for identical (query, limit, now)
// triples. Any engine mutation bumps the generation counter, which lazily
// invalidates everything cached before it. Size 0 disables the cache.
type resultCache struct {
	mu      sync.Mutex
	size    int
	gen     uint64
	entries map[string]cachedResult
}

type cachedResult struct {
	gen uint64
	ids []string
}

func newResultCache(size int) *resultCache {
	return &resultCache{
		size:    size,
		entries: make(map[string]cachedResult),
	}
}

func cacheKey(query string, limit int, now int64) string {
	return fmt.Sprintf("%s\x00%d\x00%d", query, limit, now)
}

func (c *resultCache) get(query string, limit int, now int64) ([]string, bool) {
	if c.size <= 0 {
		return nil, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[cacheKey(query, limit, now)]
	if !ok || entry.gen != c.gen {
		return nil, false
	}
	return entry.ids, true
}

func (c *resultCache) put(query string, limit int, now int64, ids []string) {
	if c.size <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.entries) >= c.size {
		c.entries = make(map[string]cachedResult, c.size)
	}
	c.entries[cacheKey(query, limit, now)] = cachedResult{gen: c.gen, ids: ids}
}

// invalidate marks all cached results stale.
func (c *resultCache) invalidate() {
	if c.size <= 0 {
		return
	}
	c.mu.Lock()
	c.gen++
	c.mu.Unlock()
}
