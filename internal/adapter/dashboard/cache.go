package dashboard

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/dsr-impact-service/internal/domain"
	"github.com/couchcryptid/dsr-impact-service/internal/observability"
)

// CachedSource wraps an ImpactSource with in-memory LRU caches keyed by date.
// Entries expire after ttl because the dashboard revises a day's figures
// while the day is still being reported.
type CachedSource struct {
	inner   domain.ImpactSource
	gis     *lruCache[expiring[[]domain.GISDistrict]]
	totals  *lruCache[expiring[domain.CanonicalTotals]]
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics
}

// expiring pairs a cached value with the time it stops being served.
type expiring[V any] struct {
	value   V
	expires time.Time
}

// NewCachedSource creates a cache decorator around an impact source. A nil
// clock uses real time.
func NewCachedSource(inner domain.ImpactSource, maxEntries int, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedSource {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &CachedSource{
		inner:   inner,
		gis:     newLRUCache[expiring[[]domain.GISDistrict]](maxEntries),
		totals:  newLRUCache[expiring[domain.CanonicalTotals]](maxEntries),
		ttl:     ttl,
		clock:   clock,
		metrics: metrics,
	}
}

func (c *CachedSource) GISDistricts(ctx context.Context, date string) ([]domain.GISDistrict, error) {
	if e, ok := c.gis.get(date); ok && c.clock.Now().Before(e.expires) {
		c.metrics.DashboardCache.WithLabelValues(resourceGIS, "hit").Inc()
		return e.value, nil
	}
	c.metrics.DashboardCache.WithLabelValues(resourceGIS, "miss").Inc()

	districts, err := c.inner.GISDistricts(ctx, date)
	if err != nil {
		return nil, err
	}
	// Only cache non-empty collections so a date the dashboard has not
	// published yet is fetched again.
	if len(districts) > 0 {
		c.gis.put(date, expiring[[]domain.GISDistrict]{value: districts, expires: c.clock.Now().Add(c.ttl)})
	}
	return districts, nil
}

func (c *CachedSource) CanonicalTotals(ctx context.Context, date string) (domain.CanonicalTotals, error) {
	if e, ok := c.totals.get(date); ok && c.clock.Now().Before(e.expires) {
		c.metrics.DashboardCache.WithLabelValues(resourceTotals, "hit").Inc()
		return e.value, nil
	}
	c.metrics.DashboardCache.WithLabelValues(resourceTotals, "miss").Inc()

	totals, err := c.inner.CanonicalTotals(ctx, date)
	if err != nil {
		return totals, err
	}
	if totals != (domain.CanonicalTotals{}) {
		c.totals.put(date, expiring[domain.CanonicalTotals]{value: totals, expires: c.clock.Now().Add(c.ttl)})
	}
	return totals, nil
}

// lruCache is a simple thread-safe LRU cache.
type lruCache[V any] struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*entry[V]
	head       *entry[V] // most recently used
	tail       *entry[V] // least recently used
}

type entry[V any] struct {
	key   string
	value V
	prev  *entry[V]
	next  *entry[V]
}

func newLRUCache[V any](maxEntries int) *lruCache[V] {
	return &lruCache[V]{
		maxEntries: maxEntries,
		entries:    make(map[string]*entry[V]),
	}
}

func (c *lruCache[V]) get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.moveToFront(e)
	return e.value, true
}

func (c *lruCache[V]) put(key string, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.value = value
		c.moveToFront(e)
		return
	}

	e := &entry[V]{key: key, value: value}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache[V]) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache[V]) moveToFront(e *entry[V]) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *lruCache[V]) addToFront(e *entry[V]) {
	e.next = c.head
	e.prev = nil
	if c.head != nil {
		c.head.prev = e
	}
	c.head = e
	if c.tail == nil {
		c.tail = e
	}
}

func (c *lruCache[V]) remove(e *entry[V]) {
	if e.prev != nil {
		e.prev.next = e.next
	} else {
		c.head = e.next
	}
	if e.next != nil {
		e.next.prev = e.prev
	} else {
		c.tail = e.prev
	}
}

func (c *lruCache[V]) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
