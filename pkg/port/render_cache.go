// Octa caches decimal renderings of numbers, since converting a long digit list to base 10 costs far more than
// reading it. Entries are keyed by the digits themselves, so a changed number simply misses the cache and no entry
// ever needs invalidation. The cache is enabled by default but users may disable it or adjust its capacity.

package port

import (
	"flag"
	"runtime"
	"strconv"
	"time"

	"github.com/nobletooth/octa/pkg/cache"
	"github.com/nobletooth/octa/pkg/numlist"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	renderCacheEnabled  = flag.Bool("enable_render_cache", true, "Enable the decimal rendering cache.")
	renderCacheCapacity = flag.Int("render_cache_capacity", 1024,
		"The maximum number of renderings to keep per cache shard; 0 or negative disables the cache.")
	renderCacheShardCount = flag.Int("render_cache_shard_count", runtime.NumCPU(),
		"The number of shards in the rendering cache; 0 or negative disables the cache.")
	renderCacheTtl = flag.Duration("render_cache_ttl", 5*time.Minute,
		"The TTL for each entry in the rendering cache.")

	renderCacheLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "render_cache_lookups_total",
		Help: "Total number of decimal rendering cache lookups.",
	}, []string{"status" /* hit | miss */})
)

// renderCache maps a digit sequence to its decimal rendering.
type renderCache struct {
	layer cache.Layer[string, string]
}

// newRenderCache builds a rendering cache according to the configured flags.
func newRenderCache() *renderCache {
	newShard := func() cache.Layer[string, string] { return cache.NewLRU[string, string](*renderCacheCapacity) }

	var layer cache.Layer[string, string] = cache.NewNoOp[string, string]()
	if *renderCacheEnabled && *renderCacheCapacity > 0 && *renderCacheShardCount > 0 {
		if *renderCacheShardCount > 1 {
			layer = cache.NewSharded(newShard, *renderCacheShardCount)
		} else {
			layer = newShard()
		}
	}
	return &renderCache{layer: layer}
}

// renderKey identifies a list by radix and digits; two lists with the same key have the same value.
func renderKey(list *numlist.List) string {
	return strconv.Itoa(list.Radix()) + ":" + list.String()
}

// decimal returns the decimal rendering of `list`, computing and caching it on a miss.
func (rc *renderCache) decimal(list *numlist.List) string {
	key := renderKey(list)
	if rendered, found := rc.layer.Get(key); found {
		renderCacheLookups.WithLabelValues("hit").Inc()
		return rendered
	}
	renderCacheLookups.WithLabelValues("miss").Inc()
	rendered := list.ToDecimalString()
	rc.layer.Add(key, rendered, *renderCacheTtl)
	return rendered
}
