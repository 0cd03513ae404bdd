package cache

import (
	"time"

	"github.com/dgraph-io/ristretto/v2"
)

// Cache is a typed ristretto cache keyed by string.
type Cache[T any] struct {
	impl *ristretto.Cache[string, T]
	name string
	ttl  time.Duration
}

// New creates a cache holding up to maxEntries values that live for ttl.
func New[T any](name string, maxEntries int64, ttl time.Duration) (*Cache[T], error) {
	impl, err := ristretto.NewCache(&ristretto.Config[string, T]{
		NumCounters:        maxEntries * 10,
		MaxCost:            maxEntries,
		BufferItems:        64,
		Metrics:            true,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, err
	}
	return &Cache[T]{impl: impl, name: name, ttl: ttl}, nil
}

func (c *Cache[T]) Get(key string) (T, bool) {
	return c.impl.Get(key)
}

// Set stores value with the cache's default TTL. Writes are buffered; call
// Wait when a following Get must observe them.
func (c *Cache[T]) Set(key string, value T) bool {
	return c.impl.SetWithTTL(key, value, 1, c.ttl)
}

func (c *Cache[T]) Wait() {
	c.impl.Wait()
}

func (c *Cache[T]) Clear() {
	c.impl.Clear()
}

func (c *Cache[T]) Close() {
	c.impl.Close()
}

// Stats reports hit/miss counters for monitoring.
func (c *Cache[T]) Stats() map[string]any {
	m := c.impl.Metrics
	total := m.Hits() + m.Misses()
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(m.Hits()) / float64(total) * 100
	}
	return map[string]any{
		"cache":          c.name,
		"hits":           m.Hits(),
		"misses":         m.Misses(),
		"sets":           m.KeysAdded(),
		"evicted":        m.KeysEvicted(),
		"total_requests": total,
		"hit_rate":       hitRate,
	}
}
