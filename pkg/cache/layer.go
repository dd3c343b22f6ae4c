// Octa caches decimal renderings of stored numbers in memory, since turning a long digit list into base 10 is the
// costliest read a client can ask for. This module provides an interface on caching, making single shard caches and
// multi shard caches have the same API.

package cache

import "time"

// Layer defines the interface for a generic key-value cache, so that a single LRU and a Sharded set of them are
// interchangeable.
type Layer[K comparable, V any] interface {
	// Get returns value from cache for given key and a boolean indicating whether key was found.
	Get(key K) (V, bool)
	// Add inserts a key-value pair into the cache with the given TTL. It returns true if an item was evicted.
	Add(key K, value V, ttl time.Duration) bool
	Keys() []K // Returns a slice of all keys currently in the cache.
	Purge()    // Removes all items from the cache.
}

// NoOp is a cache layer that doesn't store any items. It is used when cache is disabled.
type NoOp[K comparable, V any] struct { // Implements Layer.
}

var _ Layer[string, string] = (*NoOp[string, string])(nil)

func NewNoOp[K comparable, V any]() *NoOp[K, V] {
	return &NoOp[K, V]{}
}

func (n *NoOp[K, V]) Get(K) (V, bool) {
	var zero V
	return zero, false
}

func (n *NoOp[K, V]) Add(K, V, time.Duration) bool { return false }
func (n *NoOp[K, V]) Keys() []K                    { return nil }
func (n *NoOp[K, V]) Purge()                       {}
