// Package cache provides the deduplicating TTL+LRU response cache.
package cache

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/puzpuzpuz/xsync/v4"

	"github.com/irongraph/irongraph/pkg/metrics"
)

// Computer produces the encoded payload for a cache key.
type Computer func(ctx context.Context) ([]byte, error)

// entry is one cached payload.
type entry struct {
	key      uint64
	payload  []byte
	storedAt time.Time
	elem     *list.Element
}

// pending marks a compute in flight. Joiners block on done; the owner
// fills payload/err before closing it.
type pending struct {
	done    chan struct{}
	payload []byte
	err     error
}

// Cache stores encoded analytics responses keyed by request fingerprint.
//
// Guarantees:
//   - a fresh entry is served without recomputing
//   - at most one compute runs per key at a time; concurrent requests for
//     the same key join the in-flight compute instead of starting another
//   - stale entries are dropped by TTL sweeps first, then LRU when the
//     entry cap is hit
//
// The compute itself runs outside the cache lock, so a slow compute for
// one key never blocks hits on other keys.
type Cache struct {
	ttl        time.Duration
	maxEntries int

	mu      sync.Mutex
	entries map[uint64]*entry
	lru     *list.List // front = most recently used

	inflight *xsync.Map[uint64, *pending]

	hits   atomic.Uint64
	misses atomic.Uint64

	closed chan struct{}
	once   sync.Once
}

// Stats is a point-in-time view of cache effectiveness.
type Stats struct {
	Entries int
	Hits    uint64
	Misses  uint64
}

// New creates an empty response cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		ttl:        5 * time.Minute,
		maxEntries: 4096,
		entries:    make(map[uint64]*entry),
		lru:        list.New(),
		inflight:   xsync.NewMap[uint64, *pending](),
		closed:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetOrCompute returns the cached payload for key, or runs compute to
// produce and store it. The returned bool reports whether the payload
// came from the cache (a fresh entry or a joined in-flight compute).
//
// Context rules: a joiner that is cancelled while waiting detaches and
// returns its own ctx error; the owning compute keeps running so late
// arrivals and the cache itself still get the result.
func (c *Cache) GetOrCompute(ctx context.Context, key uint64, compute Computer) ([]byte, bool, error) {
	select {
	case <-c.closed:
		return nil, false, ErrUnavailable
	default:
	}

	if payload, ok := c.lookup(key); ok {
		c.hits.Add(1)
		metrics.RecordCacheHit()
		return payload, true, nil
	}

	p, loaded := c.inflight.LoadOrCompute(key, func() (*pending, bool) {
		return &pending{done: make(chan struct{})}, false
	})

	if loaded {
		// Someone else owns the compute. Join it.
		metrics.RecordComputeJoin()
		select {
		case <-p.done:
			return p.payload, true, p.err
		case <-ctx.Done():
			return nil, false, ctx.Err()
		}
	}

	c.misses.Add(1)
	metrics.RecordCacheMiss()

	// Owner path. The compute is detached from the caller's cancellation
	// so that joiners and the cache still get the result if this caller
	// walks away mid-compute.
	payload, err := compute(context.WithoutCancel(ctx))
	if err == nil {
		c.store(key, payload)
	}

	p.payload = payload
	p.err = err
	close(p.done)
	c.inflight.Delete(key)

	return payload, false, err
}

// lookup returns a fresh cached payload, refreshing its LRU position.
// Expired entries are removed on sight.
func (c *Cache) lookup(key uint64) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if time.Since(e.storedAt) >= c.ttl {
		c.remove(e)
		metrics.RecordCacheEviction()
		return nil, false
	}
	c.lru.MoveToFront(e.elem)
	return e.payload, true
}

// store inserts or refreshes an entry, evicting as needed.
func (c *Cache) store(key uint64, payload []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.payload = payload
		e.storedAt = time.Now()
		c.lru.MoveToFront(e.elem)
		return
	}

	e := &entry{key: key, payload: payload, storedAt: time.Now()}
	e.elem = c.lru.PushFront(e)
	c.entries[key] = e

	for len(c.entries) > c.maxEntries {
		c.evictOne()
	}
	metrics.UpdateCacheEntries(len(c.entries))
}

// evictOne drops an expired entry if any exists, otherwise the LRU tail.
// Caller holds c.mu.
func (c *Cache) evictOne() {
	for el := c.lru.Back(); el != nil; el = el.Prev() {
		e := el.Value.(*entry)
		if time.Since(e.storedAt) >= c.ttl {
			c.remove(e)
			metrics.RecordCacheEviction()
			return
		}
	}
	if el := c.lru.Back(); el != nil {
		c.remove(el.Value.(*entry))
		metrics.RecordCacheEviction()
	}
}

// remove deletes an entry. Caller holds c.mu.
func (c *Cache) remove(e *entry) {
	c.lru.Remove(e.elem)
	delete(c.entries, e.key)
}

// Sweep drops every expired entry and returns how many were removed.
// Meant to run on a schedule so stale entries do not linger until the
// next lookup touches them.
func (c *Cache) Sweep() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for el := c.lru.Back(); el != nil; {
		prev := el.Prev()
		e := el.Value.(*entry)
		if time.Since(e.storedAt) >= c.ttl {
			c.remove(e)
			metrics.RecordCacheEviction()
			removed++
		}
		el = prev
	}
	metrics.UpdateCacheEntries(len(c.entries))
	return removed
}

// Len returns the current entry count.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// GetStats reports size and hit/miss totals without mutating anything.
func (c *Cache) GetStats() Stats {
	return Stats{
		Entries: c.Len(),
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
	}
}

// Close marks the cache unavailable. Subsequent GetOrCompute calls
// return ErrUnavailable so callers can fall back to direct computes.
func (c *Cache) Close() error {
	c.once.Do(func() { close(c.closed) })
	return nil
}
