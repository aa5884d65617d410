package news

import (
	"sync"
	"time"

	"finsight/api/models"
)

// Cache is an explicit time-boxed cache for news lookups. The clock is
// injected so tests can advance time deterministically. Expiry is evaluated
// lazily on read; a refresh replaces the entry wholesale.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

type cacheEntry struct {
	articles  []models.NewsArticle
	fetchedAt time.Time
}

func NewCache(ttl time.Duration, now func() time.Time) *Cache {
	if now == nil {
		now = time.Now
	}
	return &Cache{ttl: ttl, now: now, entries: map[string]cacheEntry{}}
}

// Get returns the cached payload when it is still inside the freshness
// window.
func (c *Cache) Get(key string) ([]models.NewsArticle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.fetchedAt) >= c.ttl {
		return nil, false
	}
	return entry.articles, true
}

// GetStale returns the payload regardless of freshness. Used when the
// upstream budget is exhausted: stale news beats no news.
func (c *Cache) GetStale(key string) ([]models.NewsArticle, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	return entry.articles, true
}

// Put replaces the entry for the key.
func (c *Cache) Put(key string, articles []models.NewsArticle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{articles: articles, fetchedAt: c.now()}
}

// Budget caps outbound calls to the news provider per clock hour. The
// counter resets when the hour rolls over; there is no background timer.
type Budget struct {
	mu    sync.Mutex
	cap   int
	now   func() time.Time
	hour  time.Time
	spent int
}

func NewBudget(cap int, now func() time.Time) *Budget {
	if now == nil {
		now = time.Now
	}
	return &Budget{cap: cap, now: now}
}

// Spend consumes one call from the current hour's budget. It returns false
// when the budget is exhausted.
func (b *Budget) Spend() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	hour := b.now().Truncate(time.Hour)
	if !hour.Equal(b.hour) {
		b.hour = hour
		b.spent = 0
	}
	if b.spent >= b.cap {
		return false
	}
	b.spent++
	return true
}

// Spent reports the calls consumed in the current hour.
func (b *Budget) Spent() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.now().Truncate(time.Hour).Equal(b.hour) {
		return 0
	}
	return b.spent
}
