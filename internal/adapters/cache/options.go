package cache

import "time"

// Option applies a configuration option to the Cache.
type Option func(*Cache)

// WithTTL sets the freshness window for cached payloads.
func WithTTL(ttl time.Duration) Option {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithMaxEntries caps the cache size before LRU eviction kicks in.
func WithMaxEntries(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.maxEntries = n
		}
	}
}
