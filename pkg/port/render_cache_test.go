package port

import (
	"testing"

	"github.com/nobletooth/octa/pkg/cache"
	"github.com/nobletooth/octa/pkg/numlist"
	"github.com/nobletooth/octa/pkg/utils"
	"github.com/prometheus/client_golang/prometheus"
	promclient "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterValue reads the current value of a prometheus counter.
func counterValue(t *testing.T, counter prometheus.Counter) float64 {
	t.Helper()
	metric := &promclient.Metric{}
	require.NoError(t, counter.Write(metric))
	return metric.GetCounter().GetValue()
}

func TestNewRenderCache(t *testing.T) {
	t.Run("single_shard", func(t *testing.T) {
		utils.SetTestFlag(t, "render_cache_shard_count", "1")
		_, isSingleShard := newRenderCache().layer.(*cache.LRU[string, string])
		assert.True(t, isSingleShard, "Expected single shard cache")
	})
	t.Run("multi_shard", func(t *testing.T) {
		utils.SetTestFlag(t, "render_cache_shard_count", "10")
		_, isMultiShard := newRenderCache().layer.(*cache.Sharded[string, string])
		assert.True(t, isMultiShard, "Expected multi shard cache")
	})
	t.Run("disabled", func(t *testing.T) {
		utils.SetTestFlag(t, "enable_render_cache", "false")
		_, isNoOp := newRenderCache().layer.(*cache.NoOp[string, string])
		assert.True(t, isNoOp, "Expected no-op cache")
	})
	t.Run("zero_capacity", func(t *testing.T) {
		utils.SetTestFlag(t, "render_cache_capacity", "0")
		_, isNoOp := newRenderCache().layer.(*cache.NoOp[string, string])
		assert.True(t, isNoOp, "Expected no-op cache")
	})
}

func TestRenderCache_Decimal(t *testing.T) {
	utils.SetTestFlag(t, "render_cache_shard_count", "2")
	rc := newRenderCache()
	list, err := numlist.Parse("123456789")
	require.NoError(t, err)

	hits := counterValue(t, renderCacheLookups.WithLabelValues("hit"))
	misses := counterValue(t, renderCacheLookups.WithLabelValues("miss"))
	assert.Equal(t, "123456789", rc.decimal(list))
	assert.Equal(t, "123456789", rc.decimal(list))
	assert.Equal(t, hits+1, counterValue(t, renderCacheLookups.WithLabelValues("hit")))
	assert.Equal(t, misses+1, counterValue(t, renderCacheLookups.WithLabelValues("miss")))

	// A changed list gets a fresh rendering.
	require.NoError(t, list.Add(0))
	assert.Equal(t, "987654312", rc.decimal(list))

	// Same digits in another radix are another value.
	decimalDigits, err := numlist.FromDigits(10, 1, 0)
	require.NoError(t, err)
	octalDigits, err := numlist.FromDigits(8, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, "10", rc.decimal(decimalDigits))
	assert.Equal(t, "8", rc.decimal(octalDigits))
}
