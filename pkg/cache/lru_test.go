package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

// fakeClock lets tests move time forward without sleeping.
type fakeClock struct{ now time.Time }

func (f *fakeClock) Now() time.Time          { return f.now }
func (f *fakeClock) Advance(d time.Duration) { f.now = f.now.Add(d) }

func newTestLRU[K comparable, V any](capacity int) (*LRU[K, V], *fakeClock) {
	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	lru := NewLRU[K, V](capacity)
	lru.now = clock.Now
	return lru, clock
}

func TestLRU_AddAndGet(t *testing.T) {
	lru, _ := newTestLRU[string, string](2)
	assert.False(t, lru.Add("a", "64", time.Minute))
	got, found := lru.Get("a")
	assert.True(t, found)
	assert.Equal(t, "64", got)

	_, found = lru.Get("missing")
	assert.False(t, found)

	assert.False(t, lru.Add("a", "65", time.Minute), "Updates never evict")
	got, _ = lru.Get("a")
	assert.Equal(t, "65", got)
}

func TestLRU_EvictsLeastRecentlyUsed(t *testing.T) {
	lru, _ := newTestLRU[int, string](2)
	lru.Add(1, "one", time.Minute)
	lru.Add(2, "two", time.Minute)
	_, _ = lru.Get(1) // 2 becomes the least recently used.

	assert.True(t, lru.Add(3, "three", time.Minute))
	_, found := lru.Get(2)
	assert.False(t, found, "Item 2 should have been evicted")
	assert.Equal(t, []int{3, 1}, lru.Keys())
}

func TestLRU_Expiration(t *testing.T) {
	lru, clock := newTestLRU[string, int](2)
	lru.Add("short", 1, time.Second)
	lru.Add("long", 2, time.Hour)

	clock.Advance(2 * time.Second)
	_, found := lru.Get("short")
	assert.False(t, found, "Expired entries are not served")
	assert.Equal(t, []string{"long"}, lru.Keys())

	// An expired entry is the preferred victim even when it was used recently.
	lru.Add("short", 1, time.Second)
	clock.Advance(2 * time.Second)
	assert.False(t, lru.Add("new", 3, time.Hour), "Dropping an expired entry isn't an eviction")
	_, found = lru.Get("long")
	assert.True(t, found)
}

func TestLRU_Purge(t *testing.T) {
	lru, _ := newTestLRU[string, int](4)
	for i, key := range []string{"a", "b", "c"} {
		lru.Add(key, i, time.Minute)
	}
	assert.Equal(t, []string{"c", "b", "a"}, lru.Keys())

	lru.Purge()
	assert.Empty(t, lru.Keys())
	_, found := lru.Get("a")
	assert.False(t, found)
	lru.Add("d", 4, time.Minute)
	assert.Equal(t, []string{"d"}, lru.Keys())
}

func TestLRU_Concurrency(t *testing.T) {
	lru := NewLRU[string, int](64)
	var wg sync.WaitGroup
	for worker := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range 1_000 {
				key := fmt.Sprintf("key-%d", (worker*i)%100)
				lru.Add(key, i, time.Minute)
				_, _ = lru.Get(key)
				if i%100 == 0 {
					_ = lru.Keys()
				}
			}
		}()
	}
	wg.Wait()
	assert.LessOrEqual(t, len(lru.Keys()), 64)
}

func TestNoOp(t *testing.T) {
	var layer Layer[string, string] = NewNoOp[string, string]()
	assert.False(t, layer.Add("a", "b", time.Minute))
	_, found := layer.Get("a")
	assert.False(t, found)
	assert.Empty(t, layer.Keys())
	layer.Purge()
}
