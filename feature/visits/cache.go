package visits

import (
	"context"
	"sync"
	"time"

	"visit-tracker/core/reconcile"

	"golang.org/x/sync/singleflight"
)

type cacheEntry struct {
	visits []reconcile.Visit
	built  time.Time
}

// Cache keeps read projections of users' visits for a short TTL.
// Concurrent misses for one user share a single load.
type Cache struct {
	ttl time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry
	// gens is bumped on every invalidation so a load that raced a write is not stored.
	gens map[string]uint64
	sf   singleflight.Group
}

// NewCache creates a cache. A zero TTL disables caching; loads still coalesce.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
		gens:    make(map[string]uint64),
	}
}

// Get returns the cached visits of userID or loads them.
func (c *Cache) Get(ctx context.Context, userID string, load func(context.Context) ([]reconcile.Visit, error)) ([]reconcile.Visit, error) {
	if c.ttl > 0 {
		c.mu.RLock()
		e, ok := c.entries[userID]
		c.mu.RUnlock()
		if ok && time.Since(e.built) <= c.ttl {
			return e.visits, nil
		}
	}

	result, err, _ := c.sf.Do(userID, func() (interface{}, error) {
		c.mu.RLock()
		gen := c.gens[userID]
		c.mu.RUnlock()

		visits, err := load(ctx)
		if err != nil {
			return nil, err
		}

		if c.ttl > 0 {
			c.mu.Lock()
			if c.gens[userID] == gen {
				c.entries[userID] = cacheEntry{visits: visits, built: time.Now()}
			}
			c.mu.Unlock()
		}
		return visits, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]reconcile.Visit), nil
}

// Invalidate drops the entry of userID.
func (c *Cache) Invalidate(userID string) {
	c.mu.Lock()
	delete(c.entries, userID)
	c.gens[userID]++
	c.mu.Unlock()
}

// Len returns the number of cached users.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
