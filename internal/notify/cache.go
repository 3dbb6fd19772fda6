package notify

import (
	"sync"
	"time"
)

type entry struct {
	value   any
	expires time.Time
}

// Cache memoizes query results per collection and key until they expire or
// a Change touching their collection is applied.
type Cache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[Collection]map[string]entry
}

// NewCache returns a cache whose entries live for ttl. A non-positive ttl
// disables expiry.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl, now: time.Now, entries: make(map[Collection]map[string]entry)}
}

// Get returns a live entry.
func (c *Cache) Get(col Collection, key string) (any, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[col][key]
	if !ok {
		return nil, false
	}
	if c.ttl > 0 && !c.now().Before(e.expires) {
		delete(c.entries[col], key)
		return nil, false
	}
	return e.value, true
}

// Put stores value under col and key.
func (c *Cache) Put(col Collection, key string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.entries[col]
	if !ok {
		m = make(map[string]entry)
		c.entries[col] = m
	}
	m[key] = entry{value: value, expires: c.now().Add(c.ttl)}
}

// Invalidate drops every entry whose collection is touched by ch.
func (c *Cache) Invalidate(ch Change) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for col := range c.entries {
		if ch.Touches(col) {
			delete(c.entries, col)
		}
	}
}

// Len returns the number of stored entries, expired ones included.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, m := range c.entries {
		n += len(m)
	}
	return n
}

// Follow invalidates the cache for every change published on hub until the
// returned stop func is called.
func (c *Cache) Follow(hub *Hub) (stop func()) {
	ch, cancel := hub.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for change := range ch {
			c.Invalidate(change)
		}
	}()
	return func() {
		cancel()
		<-done
	}
}

// GetOrLoad returns the cached value or calls load and caches its result.
// Errors are not cached.
func GetOrLoad[T any](c *Cache, col Collection, key string, load func() (T, error)) (T, error) {
	if v, ok := c.Get(col, key); ok {
		if t, ok := v.(T); ok {
			return t, nil
		}
	}
	v, err := load()
	if err != nil {
		var zero T
		return zero, err
	}
	c.Put(col, key, v)
	return v, nil
}
