// This file implements a generic SkipList. A skip list maintains multiple forward-pointer layers over a sorted linked
// list. Each key may be promoted to higher levels with probability p, forming express lanes that let searches skip
// over large ranges. Operations start at the highest populated level and descend when advancing would overshoot the
// target key.
//
// Properties
// - Expected time complexity for Get/Set/Delete: O(log n)
// - Space complexity: O(n)
// - Probabilistic balancing controlled by promotion probability p (default 0.25)
// - Deterministic iteration order by key using the level 0 forward pointers

package storage

import (
	"iter"
	"math/rand"
	"time"

	"github.com/nobletooth/octa/pkg/utils"
)

// Pair is a key/value entry yielded while iterating over a skip list.
type Pair[K any, V any] = utils.Pair[K, V]

type skipListNode[K any, V any] struct {
	key      K
	value    V
	forwards []*skipListNode[K, V] // Forward pointers per level (0..level-1).
}

// SkipList is a probabilistically balanced ordered map. Keys are ordered by the compare function it was built with.
type SkipList[K any, V any] struct {
	head            *skipListNode[K, V]
	level, maxLevel int
	size            int
	p               float64 // Probability that a node is promoted to the next level.
	rnd             *rand.Rand
	compare         utils.CompareFn[K]
}

// NewSkipList creates a new empty skip list. Defaults: maxLevel=16, p=0.25.
func NewSkipList[K any, V any](compare utils.CompareFn[K]) *SkipList[K, V] {
	const defaultMaxLevel = 16
	const defaultP = 0.25
	return &SkipList[K, V]{
		head:     &skipListNode[K, V]{forwards: make([]*skipListNode[K, V], defaultMaxLevel)},
		level:    1,
		maxLevel: defaultMaxLevel,
		p:        defaultP,
		rnd:      rand.New(rand.NewSource(time.Now().UnixNano())),
		compare:  compare,
	}
}

func (s *SkipList[K, V]) randomLevel() int {
	lvl := 1
	for lvl < s.maxLevel && s.rnd.Float64() < s.p {
		lvl++
	}
	return lvl
}

// findPredecessors returns the last node before `key` on every level, filling `update` when it is non-nil.
func (s *SkipList[K, V]) findPredecessors(key K, update []*skipListNode[K, V]) *skipListNode[K, V] {
	node := s.head
	for lvl := s.level - 1; lvl >= 0; lvl-- {
		for next := node.forwards[lvl]; next != nil && s.compare(next.key, key) < 0; next = node.forwards[lvl] {
			node = next
		}
		if update != nil {
			update[lvl] = node
		}
	}
	return node
}

// Get returns the value for key or ErrKeyNotFound if the key is absent.
func (s *SkipList[K, V]) Get(key K) (V, error) {
	candidate := s.findPredecessors(key, nil).forwards[0]
	if candidate != nil && s.compare(candidate.key, key) == 0 {
		return candidate.value, nil
	}
	var zero V
	return zero, ErrKeyNotFound
}

// Set inserts a new key/value or updates an existing one, reporting whether the key was already present.
func (s *SkipList[K, V]) Set(key K, value V) (alreadyExists bool, err error) {
	update := make([]*skipListNode[K, V], s.maxLevel)
	node := s.findPredecessors(key, update)
	if next := node.forwards[0]; next != nil && s.compare(next.key, key) == 0 {
		next.value = value
		return true, nil
	}
	lvl := s.randomLevel()
	if lvl > s.level {
		for i := s.level; i < lvl; i++ {
			update[i] = s.head
		}
		s.level = lvl
	}
	newNode := &skipListNode[K, V]{key: key, value: value, forwards: make([]*skipListNode[K, V], lvl)}
	for i := range lvl {
		newNode.forwards[i] = update[i].forwards[i]
		update[i].forwards[i] = newNode
	}
	s.size++
	return false, nil
}

// Delete removes key from the list or returns ErrKeyNotFound.
func (s *SkipList[K, V]) Delete(key K) error {
	update := make([]*skipListNode[K, V], s.maxLevel)
	target := s.findPredecessors(key, update).forwards[0]
	if target == nil || s.compare(target.key, key) != 0 {
		return ErrKeyNotFound
	}
	for i := range s.level {
		if update[i].forwards[i] == target {
			update[i].forwards[i] = target.forwards[i]
		}
	}
	// Decrease level if the top levels are now empty.
	for s.level > 1 && s.head.forwards[s.level-1] == nil {
		s.level--
	}
	s.size--
	return nil
}

func (s *SkipList[K, V]) Len() int { return s.size }

// Iterate yields every entry in ascending key order.
func (s *SkipList[K, V]) Iterate() iter.Seq[Pair[K, V]] {
	return func(yield func(Pair[K, V]) bool) {
		for node := s.head.forwards[0]; node != nil; node = node.forwards[0] {
			if !yield(Pair[K, V]{Key: node.key, Value: node.value}) {
				return
			}
		}
	}
}

// Clear drops every entry.
func (s *SkipList[K, V]) Clear() {
	clear(s.head.forwards)
	s.level, s.size = 1, 0
}

// Close releases no resources to free for now.
func (s *SkipList[K, V]) Close() error {
	return nil
}
