package feecache

import (
	"fmt"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/swapstats/revenue-api/internal/fees"
)

const (
	// Rough per-entry cost used for the byte budget: the fee structs plus
	// map/list overhead. Matches the sizing the cache was tuned with in
	// production, not an exact accounting.
	bytesPerFee   = 200
	bytesPerEntry = 100
)

type entry struct {
	fees      []fees.Fee
	size      int64
	expiresAt time.Time
}

// Cache memoizes the fee list for one (service, chain, day) key. Eviction is
// LRU under both an entry-count bound and a cumulative byte budget. Every
// entry additionally expires on a fixed TTL from the time it was written,
// regardless of access, so stale days eventually pick up corrected prices.
type Cache struct {
	mu         sync.Mutex
	lru        *lru.Cache[string, *entry]
	maxBytes   int64
	totalBytes int64
	ttl        time.Duration

	now func() time.Time
}

// NewCache builds a fee cache bounded by maxEntries and maxBytes with the
// given fixed TTL.
func NewCache(maxEntries int, maxBytes int64, ttl time.Duration) (*Cache, error) {
	c := &Cache{
		maxBytes: maxBytes,
		ttl:      ttl,
		now:      time.Now,
	}

	inner, err := lru.NewWithEvict(maxEntries, func(_ string, e *entry) {
		c.totalBytes -= e.size
	})
	if err != nil {
		return nil, err
	}
	c.lru = inner
	return c, nil
}

func cacheKey(service, chainID, date string) string {
	return fmt.Sprintf("%s:%s:%s", service, chainID, date)
}

// Get returns the cached fee list for the key, or false on a miss. Expired
// entries count as misses and are dropped.
func (c *Cache) Get(service, chainID, date string) ([]fees.Fee, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(service, chainID, date)
	e, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		c.lru.Remove(key)
		return nil, false
	}
	return e.fees, true
}

// Set stores the complete fee list for one day. A day's entry is written
// atomically: it is either the full list or absent.
func (c *Cache) Set(service, chainID, date string, list []fees.Fee) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(service, chainID, date)
	e := &entry{
		fees:      list,
		size:      int64(len(list))*bytesPerFee + bytesPerEntry,
		expiresAt: c.now().Add(c.ttl),
	}

	if prev, ok := c.lru.Peek(key); ok {
		c.totalBytes -= prev.size
	}
	c.lru.Add(key, e)
	c.totalBytes += e.size

	for c.totalBytes > c.maxBytes && c.lru.Len() > 0 {
		c.lru.RemoveOldest()
	}
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// SizeBytes returns the current estimated byte usage.
func (c *Cache) SizeBytes() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.totalBytes
}
