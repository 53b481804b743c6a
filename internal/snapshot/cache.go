// Package snapshot caches processed results keyed by the time their input was
// fetched. It is the only state the serving layer keeps between runs.
package snapshot

import (
	"sync"
	"time"

	"github.com/couchcryptid/firemap-service/internal/domain"
)

// DefaultCapacity is the number of snapshots retained when no size is configured.
const DefaultCapacity = 4

// Cache is a thread-safe LRU of snapshots. Keys are fetch times truncated to
// the second, so a refetch of the same upstream batch replaces its entry.
type Cache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[int64]*entry
	head       *entry // most recently used
	tail       *entry // least recently used
}

type entry struct {
	key   int64
	value domain.Snapshot
	prev  *entry
	next  *entry
}

// New returns an empty cache holding at most maxEntries snapshots.
func New(maxEntries int) *Cache {
	if maxEntries <= 0 {
		maxEntries = DefaultCapacity
	}
	return &Cache{
		maxEntries: maxEntries,
		entries:    make(map[int64]*entry),
	}
}

func keyOf(fetchedAt time.Time) int64 {
	return fetchedAt.Unix()
}

// Put stores snap under its fetch time and evicts the least recently used
// entry when the cache is full.
func (c *Cache) Put(snap domain.Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := keyOf(snap.FetchedAt)
	if e, ok := c.entries[key]; ok {
		e.value = snap
		c.moveToFront(e)
		return
	}

	e := &entry{key: key, value: snap}
	c.entries[key] = e
	c.addToFront(e)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

// Get returns the snapshot fetched at fetchedAt.
func (c *Cache) Get(fetchedAt time.Time) (domain.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[keyOf(fetchedAt)]
	if !ok {
		return domain.Snapshot{}, false
	}
	c.moveToFront(e)
	return e.value, true
}

// Latest returns the snapshot with the newest fetch time, regardless of use order.
func (c *Cache) Latest() (domain.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var newest *entry
	for e := c.head; e != nil; e = e.next {
		if newest == nil || e.key > newest.key {
			newest = e
		}
	}
	if newest == nil {
		return domain.Snapshot{}, false
	}
	return newest.value, true
}

// Invalidate drops the snapshot fetched at fetchedAt and reports whether it existed.
func (c *Cache) Invalidate(fetchedAt time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[keyOf(fetchedAt)]
	if !ok {
		return false
	}
	delete(c.entries, e.key)
	c.remove(e)
	return true
}

// Purge drops every snapshot.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[int64]*entry)
	c.head, c.tail = nil, nil
}

// Len returns the number of cached snapshots.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *Cache) moveToFront(e *entry) {
	if e == c.head {
		return
	}
	c.remove(e)
	c.addToFront(e)
}

func (c *Cache) addToFront(e *entry) {
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

func (c *Cache) remove(e *entry) {
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
	e.prev, e.next = nil, nil
}

func (c *Cache) evictTail() {
	if c.tail == nil {
		return
	}
	delete(c.entries, c.tail.key)
	c.remove(c.tail)
}
