package service

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	cache "github.com/patrickmn/go-cache"
	"github.com/yourusername/backtest-viewer/internal/metrics"
)

// ViewKey identifies one cached derived view.
type ViewKey struct {
	RunID  uuid.UUID
	View   string
	Filter string
}

// String returns string representation of the cache key
func (k ViewKey) String() string {
	return fmt.Sprintf("%s:%s:%s", k.RunID, k.View, k.Filter)
}

// ViewCache provides in-memory caching for derived views. Derivations are
// pure, so a cached view never goes stale for a given run; the TTL only
// bounds memory for runs nobody is looking at anymore.
type ViewCache struct {
	cache   *cache.Cache
	ttl     time.Duration
	maxSize int

	mu        sync.RWMutex
	hitCount  uint64
	missCount uint64
}

// NewViewCache creates a new derived-view cache
func NewViewCache(ttl time.Duration, maxSize int) *ViewCache {
	return &ViewCache{
		cache:   cache.New(ttl, ttl*2),
		ttl:     ttl,
		maxSize: maxSize,
	}
}

// Get retrieves a cached view
func (vc *ViewCache) Get(key ViewKey) (interface{}, bool) {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	if value, found := vc.cache.Get(key.String()); found {
		vc.hitCount++
		metrics.RecordCacheLookup("hit")
		return value, true
	}

	vc.missCount++
	metrics.RecordCacheLookup("miss")
	return nil, false
}

// Set stores a view in cache
func (vc *ViewCache) Set(key ViewKey, value interface{}) {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	if vc.cache.ItemCount() >= vc.maxSize {
		vc.cache.DeleteExpired()
	}

	vc.cache.Set(key.String(), value, vc.ttl)
	metrics.UpdateViewCacheEntries(float64(vc.cache.ItemCount()))
}

// InvalidateRun removes all cached views for one run
func (vc *ViewCache) InvalidateRun(runID uuid.UUID) {
	vc.mu.Lock()
	defer vc.mu.Unlock()

	prefix := runID.String() + ":"
	for k := range vc.cache.Items() {
		if len(k) >= len(prefix) && k[:len(prefix)] == prefix {
			vc.cache.Delete(k)
		}
	}
	metrics.UpdateViewCacheEntries(float64(vc.cache.ItemCount()))
}

// Stats returns cache statistics
func (vc *ViewCache) Stats() (hits, misses uint64, ratio float64) {
	vc.mu.RLock()
	defer vc.mu.RUnlock()

	hits = vc.hitCount
	misses = vc.missCount
	total := hits + misses
	if total > 0 {
		ratio = float64(hits) / float64(total)
	}
	return
}

// ItemCount returns the number of cached views
func (vc *ViewCache) ItemCount() int {
	return vc.cache.ItemCount()
}
