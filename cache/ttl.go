package cache

import (
	"container/list"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
)

// TTLCache is a bounded in-memory cache with lazy expiry and
// insertion-order eviction.
type TTLCache struct {
	mu      sync.Mutex
	entries map[string]*list.Element
	order   *list.List // front = oldest insertion
	policy  Policy
	clock   clock.Clock

	hits      uint64
	misses    uint64
	evictions uint64
}

type ttlEntry struct {
	key       string
	value     any
	expiresAt time.Time
}

// TTLOption configures a TTLCache.
type TTLOption func(*TTLCache)

// WithClock sets the time source. Tests pass a *clock.Mock.
func WithClock(c clock.Clock) TTLOption {
	return func(tc *TTLCache) {
		if c != nil {
			tc.clock = c
		}
	}
}

// NewTTLCache creates a cache with the given policy.
func NewTTLCache(policy Policy, opts ...TTLOption) *TTLCache {
	c := &TTLCache{
		entries: make(map[string]*list.Element),
		order:   list.New(),
		policy:  policy.withDefaults(),
		clock:   clock.New(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the value for key if it is present and not yet expired.
// Expired entries are dropped on the way out.
func (c *TTLCache) Get(key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.entries[key]
	if !ok {
		c.misses++
		return nil, false
	}

	entry := elem.Value.(*ttlEntry)
	if !c.clock.Now().Before(entry.expiresAt) {
		c.removeLocked(elem)
		c.misses++
		return nil, false
	}

	c.hits++
	return entry.value, true
}

// Set inserts or overwrites key. A new key at capacity evicts the
// oldest-inserted entry first; an existing key keeps its position.
func (c *TTLCache) Set(key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := c.clock.Now().Add(c.policy.TTL)

	if elem, ok := c.entries[key]; ok {
		entry := elem.Value.(*ttlEntry)
		entry.value = value
		entry.expiresAt = expiresAt
		return
	}

	for c.order.Len() >= c.policy.MaxSize {
		oldest := c.order.Front()
		if oldest == nil {
			break
		}
		c.removeLocked(oldest)
		c.evictions++
	}

	c.entries[key] = c.order.PushBack(&ttlEntry{
		key:       key,
		value:     value,
		expiresAt: expiresAt,
	})
}

// Delete removes key. Idempotent.
func (c *TTLCache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.entries[key]; ok {
		c.removeLocked(elem)
	}
}

// Len returns the number of stored entries, including expired entries that
// have not been read since they expired.
func (c *TTLCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// Stats returns hit/miss counters and the current size.
func (c *TTLCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Size:      c.order.Len(),
		MaxSize:   c.policy.MaxSize,
		Evictions: c.evictions,
	}
}

// Policy returns the effective policy.
func (c *TTLCache) Policy() Policy {
	return c.policy
}

func (c *TTLCache) removeLocked(elem *list.Element) {
	entry := elem.Value.(*ttlEntry)
	delete(c.entries, entry.key)
	c.order.Remove(elem)
}

// Ensure TTLCache implements Store
var _ Store = (*TTLCache)(nil)
