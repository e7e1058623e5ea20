package analytics

import (
	"sync"
	"time"
)

// ReportCache keeps recently built reports per company until they expire or
// the company's ledger changes.
type ReportCache struct {
	data    map[string]*cacheEntry
	ttl     time.Duration
	mu      sync.RWMutex
	cleanup *time.Ticker
	done    chan struct{}
	now     func() time.Time

	statsMu sync.Mutex
	hits    int64
	misses  int64
}

type cacheEntry struct {
	report     *Report
	expiration time.Time
}

// CacheStats reports cache usage
type CacheStats struct {
	Size    int     `json:"size"`
	Hits    int64   `json:"hits"`
	Misses  int64   `json:"misses"`
	HitRate float64 `json:"hit_rate"`
}

// NewReportCache creates a cache and starts its cleanup loop. Call Stop to
// release it.
func NewReportCache(ttl time.Duration) *ReportCache {
	cache := &ReportCache{
		data:    make(map[string]*cacheEntry),
		ttl:     ttl,
		cleanup: time.NewTicker(time.Minute),
		done:    make(chan struct{}),
		now:     time.Now,
	}

	go cache.cleanupLoop()

	return cache
}

// Get returns the cached report for a company
func (c *ReportCache) Get(companyID string) (*Report, bool) {
	c.mu.RLock()
	entry, ok := c.data[companyID]
	c.mu.RUnlock()

	if ok && c.now().After(entry.expiration) {
		ok = false
	}
	c.record(ok)
	if !ok {
		return nil, false
	}
	return entry.report, true
}

// Set stores a report for a company
func (c *ReportCache) Set(companyID string, report *Report) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[companyID] = &cacheEntry{
		report:     report,
		expiration: c.now().Add(c.ttl),
	}
}

// Invalidate drops the cached report of a company
func (c *ReportCache) Invalidate(companyID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.data, companyID)
}

// Clear drops every cached report
func (c *ReportCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = make(map[string]*cacheEntry)
}

// GetOrBuild returns the cached report, or builds and stores it
func (c *ReportCache) GetOrBuild(companyID string, build func() (*Report, error)) (*Report, error) {
	if report, ok := c.Get(companyID); ok {
		return report, nil
	}

	report, err := build()
	if err != nil {
		return nil, err
	}

	c.Set(companyID, report)
	return report, nil
}

// Stats returns hit and miss counters
func (c *ReportCache) Stats() CacheStats {
	c.mu.RLock()
	size := len(c.data)
	c.mu.RUnlock()

	c.statsMu.Lock()
	defer c.statsMu.Unlock()

	stats := CacheStats{Size: size, Hits: c.hits, Misses: c.misses}
	if total := c.hits + c.misses; total > 0 {
		stats.HitRate = float64(c.hits) / float64(total)
	}
	return stats
}

// Stop stops the cleanup goroutine
func (c *ReportCache) Stop() {
	c.cleanup.Stop()
	close(c.done)
}

func (c *ReportCache) record(hit bool) {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()

	if hit {
		c.hits++
	} else {
		c.misses++
	}
}

func (c *ReportCache) cleanupLoop() {
	for {
		select {
		case <-c.cleanup.C:
			c.removeExpired()
		case <-c.done:
			return
		}
	}
}

func (c *ReportCache) removeExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for key, entry := range c.data {
		if now.After(entry.expiration) {
			delete(c.data, key)
		}
	}
}
