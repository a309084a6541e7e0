package orchestrator

import (
	"sync"

	"github.com/couchcryptid/hazard-animation-service/internal/domain"
)

// Cache is a thread-safe LRU over named event datasets. It replaces the
// module-level dataset maps the map UI would otherwise accumulate: the
// orchestrator owns exactly one, and sessions receive resolved slices, never
// the cache itself.
type Cache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*cacheEntry
	head       *cacheEntry // most recently used
	tail       *cacheEntry // least recently used
}

type cacheEntry struct {
	key    string
	events []domain.HazardEvent
	tracks []domain.TrackPosition
	prev   *cacheEntry
	next   *cacheEntry
}

// NewCache creates an empty dataset cache holding at most maxEntries
// datasets.
func NewCache(maxEntries int) *Cache {
	return &Cache{
		maxEntries: maxEntries,
		entries:    make(map[string]*cacheEntry),
	}
}

// Events returns the event dataset under key.
func (c *Cache) Events(key string) ([]domain.HazardEvent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.moveToFront(e)
	return e.events, true
}

// Tracks returns the storm-track dataset under key.
func (c *Cache) Tracks(key string) ([]domain.TrackPosition, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok || e.tracks == nil {
		return nil, false
	}
	c.moveToFront(e)
	return e.tracks, true
}

// PutEvents stores an event dataset, replacing any previous entry.
func (c *Cache) PutEvents(key string, events []domain.HazardEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.upsert(key)
	e.events = events
}

// PutTracks stores a storm-track dataset, replacing any previous entry.
func (c *Cache) PutTracks(key string, tracks []domain.TrackPosition) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.upsert(key)
	e.tracks = tracks
}

// Append adds events to an existing dataset, creating it if absent. The
// live feed grows datasets this way as records arrive.
func (c *Cache) Append(key string, events ...domain.HazardEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.upsert(key)
	e.events = append(e.events, events...)
}

// Keys returns the cached dataset names, most recently used first.
func (c *Cache) Keys() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.entries))
	for e := c.head; e != nil; e = e.next {
		keys = append(keys, e.key)
	}
	return keys
}

// Len returns the number of cached datasets.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// upsert returns the entry for key, creating and evicting as needed.
// Caller holds c.mu.
func (c *Cache) upsert(key string) *cacheEntry {
	if e, ok := c.entries[key]; ok {
		c.moveToFront(e)
		return e
	}
	e := &cacheEntry{key: key}
	c.entries[key] = e
	c.addToFront(e)
	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
	return e
}

func (c *Cache) moveToFront(e *cacheEntry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *Cache) addToFront(e *cacheEntry) {
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

func (c *Cache) remove(e *cacheEntry) {
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

func (c *Cache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
