// Package readcache suppresses duplicate read events within a time window.
package readcache

import (
	"fmt"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	// DefaultSize bounds the cache; the least-recently-used entry is
	// evicted on overflow.
	DefaultSize = 5000
	// DefaultTTL is the read lifetime, measured from insertion.
	DefaultTTL = time.Hour
)

// Cache is a presence cache over read identifiers. A hit means the read
// was already persisted within the TTL window. Expiry and eviction are
// the only ways entries leave; a false negative just causes one extra
// event, which is acceptable. Safe for concurrent use.
type Cache struct {
	lru *expirable.LRU[string, struct{}]
}

// New builds a cache with the default bounds.
func New() *Cache {
	return NewWithTTL(DefaultSize, DefaultTTL)
}

// NewWithTTL builds a cache with explicit bounds, used by tests to
// simulate expiry without waiting an hour.
func NewWithTTL(size int, ttl time.Duration) *Cache {
	return &Cache{lru: expirable.NewLRU[string, struct{}](size, nil, ttl)}
}

// Key builds the composite identifier for a read of an entity by a user.
// Raw concatenation matches the upstream contract; identifiers are not
// expected to contain the separator.
func Key(entityID, userID string) string {
	return fmt.Sprintf("%s-%s", entityID, userID)
}

// Has reports whether the identifier was marked within the TTL window.
// Get is used rather than Contains so expired entries read as absent
// immediately instead of after the next purge cycle.
func (c *Cache) Has(identifier string) bool {
	_, ok := c.lru.Get(identifier)
	return ok
}

// Set marks the identifier as seen. Call only after the corresponding
// event was successfully persisted, otherwise a failed write would
// suppress the retry.
func (c *Cache) Set(identifier string) {
	c.lru.Add(identifier, struct{}{})
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}
