// This module implements an expirable LRU cache. Entries are ordered by recency in a linked list; a full cache evicts
// its least recently used entry. Expired entries are dropped lazily: Get treats them as missing and Add prefers them
// as eviction victims, so no background goroutine is needed.

package cache

import (
	"sync"
	"time"

	"github.com/nobletooth/octa/pkg/utils"
)

type lruEntry[K comparable, V any] struct {
	key       K
	value     V
	expiresAt time.Time
}

// LRU is a thread-safe, fixed-capacity, in-memory cache with a per-entry TTL.
type LRU[K comparable, V any] struct {
	capacity int
	recency  linkedList[*lruEntry[K, V]] // Most recently used entry first.
	index    map[K]*linkedListNode[*lruEntry[K, V]]
	now      func() time.Time // Overridden in tests.
	mux      sync.Mutex       // Get reorders the recency list, so it needs the write lock as well.
}

var _ Layer[string, string] = (*LRU[string, string])(nil)

// NewLRU returns an empty LRU cache holding at most `capacity` entries.
func NewLRU[K comparable, V any](capacity int) *LRU[K, V] {
	if capacity <= 0 {
		utils.RaiseInvariant("lru", "non_positive_cache_capacity",
			"Invalid capacity has been given to LRU cache.", "capacity", capacity)
		capacity = 1
	}
	return &LRU[K, V]{
		capacity: capacity,
		index:    make(map[K]*linkedListNode[*lruEntry[K, V]], capacity),
		now:      time.Now,
	}
}

// Get returns the value of a live entry and marks it as recently used.
func (c *LRU[K, V]) Get(key K) (V, bool /*found*/) {
	c.mux.Lock()
	defer c.mux.Unlock()

	entry, keyExists := c.index[key]
	if !keyExists {
		return *new(V), false
	}
	if c.now().After(entry.Value.expiresAt) {
		c.removeNode(entry)
		return *new(V), false
	}
	c.recency.MoveToFront(entry)
	return entry.Value.value, true
}

// Add inserts or updates a key-value pair. It returns true when a live entry had to be evicted to make room.
func (c *LRU[K, V]) Add(key K, value V, ttl time.Duration) /*evictionOccurred*/ bool {
	c.mux.Lock()
	defer c.mux.Unlock()

	now := c.now()
	if entry, keyExists := c.index[key]; keyExists {
		entry.Value.value = value
		entry.Value.expiresAt = now.Add(ttl)
		c.recency.MoveToFront(entry)
		return false
	}

	evicted := false
	if c.recency.Len() >= c.capacity {
		victim := c.recency.Back()
		// Expired entries anywhere in the list go first; they would never be served again.
		for node := c.recency.Back(); node != nil; node = node.Prev() {
			if now.After(node.Value.expiresAt) {
				victim = node
				break
			}
		}
		evicted = !now.After(victim.Value.expiresAt)
		c.removeNode(victim)
	}
	c.index[key] = c.recency.PushFront(&lruEntry[K, V]{key: key, value: value, expiresAt: now.Add(ttl)})
	return evicted
}

// Keys returns the keys of live entries, most recently used first.
func (c *LRU[K, V]) Keys() []K {
	c.mux.Lock()
	defer c.mux.Unlock()

	now := c.now()
	keys := make([]K, 0, c.recency.Len())
	for node := c.recency.Front(); node != nil; node = node.Next() {
		if !now.After(node.Value.expiresAt) {
			keys = append(keys, node.Value.key)
		}
	}
	return keys
}

func (c *LRU[K, V]) Purge() {
	c.mux.Lock()
	defer c.mux.Unlock()

	c.recency.Clear()
	clear(c.index)
}

// removeNode drops an entry from both the recency list and the index. Callers hold the lock.
func (c *LRU[K, V]) removeNode(node *linkedListNode[*lruEntry[K, V]]) {
	c.recency.Remove(node)
	delete(c.index, node.Value.key)
}
