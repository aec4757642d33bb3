package dashboard

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// RenderCache memoizes rendered chart HTML.
type RenderCache interface {
	GetOrRender(key string, render func() (string, error)) (string, error)
}

// CacheStats is a point-in-time view of a ChartCache.
type CacheStats struct {
	Entries int
	Hits    uint64
	Misses  uint64
}

// ChartCache keeps rendered charts for a fixed TTL. Concurrent misses for the
// same key share a single render.
type ChartCache struct {
	ttl   time.Duration
	clock func() time.Time
	group singleflight.Group

	mu      sync.Mutex
	entries map[string]chartEntry
	hits    uint64
	misses  uint64
}

type chartEntry struct {
	html    string
	expires time.Time
}

// CacheOption customizes a ChartCache.
type CacheOption func(*ChartCache)

// WithCacheClock overrides time.Now.
func WithCacheClock(clock func() time.Time) CacheOption {
	return func(c *ChartCache) {
		if clock != nil {
			c.clock = clock
		}
	}
}

// NewChartCache builds a cache. A ttl <= 0 renders every time.
func NewChartCache(ttl time.Duration, options ...CacheOption) *ChartCache {
	c := &ChartCache{
		ttl:     ttl,
		clock:   time.Now,
		entries: make(map[string]chartEntry),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// GetOrRender returns the cached HTML for key or renders and stores it.
// Render errors are not cached.
func (c *ChartCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	if c == nil || c.ttl <= 0 {
		return render()
	}
	if html, ok := c.lookup(key); ok {
		return html, nil
	}
	v, err, _ := c.group.Do(key, func() (any, error) {
		html, err := render()
		if err != nil {
			return "", err
		}
		c.mu.Lock()
		c.entries[key] = chartEntry{html: html, expires: c.clock().Add(c.ttl)}
		c.mu.Unlock()
		return html, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (c *ChartCache) lookup(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if ok && !c.clock().After(entry.expires) {
		c.hits++
		return entry.html, true
	}
	if ok {
		delete(c.entries, key)
	}
	c.misses++
	return "", false
}

// Purge drops expired entries and returns how many were removed.
func (c *ChartCache) Purge() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.clock()
	removed := 0
	for key, entry := range c.entries {
		if now.After(entry.expires) {
			delete(c.entries, key)
			removed++
		}
	}
	return removed
}

// Len reports the number of stored entries, expired ones included.
func (c *ChartCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Stats reports entries and hit counters.
func (c *ChartCache) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return CacheStats{Entries: len(c.entries), Hits: c.hits, Misses: c.misses}
}

// seriesHash fingerprints a series so identical data reuses its render.
func seriesHash(series TimeSeries) string {
	if len(series.Series) == 0 {
		return "empty"
	}
	b, err := json.Marshal(series)
	if err != nil {
		return "invalid"
	}
	sum := sha1.Sum(b)
	return hex.EncodeToString(sum[:])
}
