package ai

import (
	"hash/fnv"
	"strconv"
	"sync"
	"time"

	"github.com/sells-group/lead-intake/internal/model"
)

// cacheEntry holds one previously computed result with its creation time.
type cacheEntry struct {
	result  model.ParseResult
	created time.Time
}

// ResultCache makes repeated identical submissions free and deterministic.
// Keys are a non-cryptographic hash of the normalized input; entries expire
// after a fixed TTL and are evicted lazily on each write. Safe for
// concurrent use.
type ResultCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewResultCache creates a cache with the given TTL.
func NewResultCache(ttl time.Duration) *ResultCache {
	return &ResultCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// SetClock overrides the cache's clock for deterministic eviction tests.
func (c *ResultCache) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Key hashes normalized input text to a cache key.
func Key(text string) string {
	h := fnv.New64a()
	_, _ = h.Write([]byte(text))
	return strconv.FormatUint(h.Sum64(), 16)
}

// Get returns a copy of the cached result for text, if present and fresh.
func (c *ResultCache) Get(text string) (*model.ParseResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[Key(text)]
	if !ok || c.now().Sub(entry.created) > c.ttl {
		return nil, false
	}
	result := entry.result
	return &result, true
}

// Put stores a result and evicts every expired entry while holding the lock.
func (c *ResultCache) Put(text string, result *model.ParseResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, e := range c.entries {
		if now.Sub(e.created) > c.ttl {
			delete(c.entries, k)
		}
	}
	c.entries[Key(text)] = cacheEntry{result: *result, created: now}
}

// Len returns the current entry count.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
