// Octa keeps named numbers in a store. The in-memory store orders keys in a skip list, so listing keys needs no
// sorting, and puts a bloom filter in front of it so lookups of keys that were never written skip the list walk.

package storage

import (
	"cmp"
	"errors"
	"flag"
	"fmt"
	"iter"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/nobletooth/octa/pkg/numlist"
	"github.com/nobletooth/octa/pkg/utils"
)

const defaultBloomRate = 0.01

var (
	ErrKeyNotFound = errors.New("key was not found")
	ErrStoreClosed = errors.New("store is closed")

	bloomCapacity = flag.Uint("store_bloom_capacity", 100_000,
		"The number of keys the store's bloom filter is sized for.")
	bloomFalsePositiveRate = flag.Float64("store_bloom_false_positive_rate", defaultBloomRate,
		"The target false positive rate of the store's bloom filter.")
)

// NumberStore holds digit lists by key. Implementations are not safe for concurrent use.
type NumberStore interface {
	// Get returns the stored list itself, not a copy; changes to it are visible to later reads.
	Get(key string) (*numlist.List, error)
	Set(key string, list *numlist.List) error
	Delete(key string) error
	Keys() iter.Seq[string] // Keys in ascending order.
	Len() int
	Close() error
}

var _ NumberStore = (*InMemoryNumberStore)(nil)

type InMemoryNumberStore struct { // Implements NumberStore.
	numbers *SkipList[string, *numlist.List]
	// written has every key that was ever set. Deleted keys stay in it and fall through to the skip list.
	written *bloom.BloomFilter
	closed  bool
}

// NewInMemoryNumberStore builds an empty store with a bloom filter sized by the store_bloom_* flags.
func NewInMemoryNumberStore() *InMemoryNumberStore {
	rate := *bloomFalsePositiveRate
	if !(rate > 0 && rate < 1) { // Rates at 0 size the filter past what can be allocated.
		utils.RaiseInvariant("store", "invalid_bloom_false_positive_rate",
			"Bloom filter false positive rate must be within (0, 1).", "rate", rate, "fallback", defaultBloomRate)
		rate = defaultBloomRate
	}
	return &InMemoryNumberStore{
		numbers: NewSkipList[string, *numlist.List](cmp.Compare[string]),
		written: bloom.NewWithEstimates(max(*bloomCapacity, 1), rate),
	}
}

func (s *InMemoryNumberStore) Get(key string) (*numlist.List, error) {
	if s.closed {
		return nil, ErrStoreClosed
	}
	if !s.written.TestString(key) {
		return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
	}
	list, err := s.numbers.Get(key)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", err, key)
	}
	return list, nil
}

func (s *InMemoryNumberStore) Set(key string, list *numlist.List) error {
	if s.closed {
		return ErrStoreClosed
	}
	if list == nil {
		return errors.New("cannot store a nil list")
	}
	if _, err := s.numbers.Set(key, list); err != nil {
		return fmt.Errorf("failed to store %s: %w", key, err)
	}
	s.written.AddString(key)
	return nil
}

func (s *InMemoryNumberStore) Delete(key string) error {
	if s.closed {
		return ErrStoreClosed
	}
	if err := s.numbers.Delete(key); err != nil {
		return fmt.Errorf("%w: %s", err, key)
	}
	return nil
}

func (s *InMemoryNumberStore) Keys() iter.Seq[string] {
	return func(yield func(string) bool) {
		if s.closed {
			return
		}
		for pair := range s.numbers.Iterate() {
			if !yield(pair.Key) {
				return
			}
		}
	}
}

func (s *InMemoryNumberStore) Len() int {
	if s.closed {
		return 0
	}
	return s.numbers.Len()
}

// Close drops every number; the store rejects all later calls.
func (s *InMemoryNumberStore) Close() error {
	if s.closed {
		return ErrStoreClosed
	}
	s.closed = true
	s.numbers.Clear()
	s.written.ClearAll()
	return s.numbers.Close()
}
