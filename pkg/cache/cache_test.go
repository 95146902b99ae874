package cache

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// looseConfig disables the pressure thresholds so tests can assert exact
// eviction behavior at the hard entry limit.
func looseConfig(name string, maxEntries int, policy Policy) Config {
	return Config{
		Name:               name,
		MaxEntries:         maxEntries,
		Policy:             policy,
		PressureThreshold:  1.0,
		EmergencyThreshold: 2.0,
	}
}

func TestCacheSetGet(t *testing.T) {
	c := New[string](looseConfig("test", 10, PolicyLRU))
	defer c.Close()

	require.NoError(t, c.Set("a", "alpha"))

	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Equal(t, "alpha", got)

	_, ok = c.Get("missing")
	assert.False(t, ok)
}

func TestCacheMaxEntriesNeverExceeded(t *testing.T) {
	const n = 8
	c := New[int](Config{Name: "bounded", MaxEntries: n, Policy: PolicyLRU})
	defer c.Close()

	for i := 0; i < n+1; i++ {
		require.NoError(t, c.Set(fmt.Sprintf("key%d", i), i))
		assert.LessOrEqual(t, c.Size(), n)
	}

	assert.GreaterOrEqual(t, c.Stats().Evictions(), int64(1))
}

func TestCacheTTLExpiry(t *testing.T) {
	c := New[string](looseConfig("ttl", 10, PolicyTTL))
	defer c.Close()

	require.NoError(t, c.SetWithTTL("ephemeral", "gone soon", 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get("ephemeral")
	assert.False(t, ok, "expired entry must not be returned")
}

func TestCacheLRUEvictsOldest(t *testing.T) {
	c := New[int](looseConfig("lru", 3, PolicyLRU))
	defer c.Close()

	require.NoError(t, c.Set("a", 1))
	require.NoError(t, c.Set("b", 2))
	require.NoError(t, c.Set("c", 3))

	// Touch "a" so "b" becomes the least recently used
	_, ok := c.Get("a")
	require.True(t, ok)

	require.NoError(t, c.Set("d", 4))

	_, ok = c.Get("b")
	assert.False(t, ok, "least recently used entry should have been evicted")
	_, ok = c.Get("a")
	assert.True(t, ok)
	_, ok = c.Get("d")
	assert.True(t, ok)
}

func TestCacheLFUEvictsColdest(t *testing.T) {
	c := New[int](looseConfig("lfu", 3, PolicyLFU))
	defer c.Close()

	require.NoError(t, c.Set("hot", 1))
	require.NoError(t, c.Set("warm", 2))
	require.NoError(t, c.Set("cold", 3))

	for i := 0; i < 5; i++ {
		c.Get("hot")
	}
	c.Get("warm")

	require.NoError(t, c.Set("new", 4))

	_, ok := c.Get("cold")
	assert.False(t, ok, "least frequently used entry should have been evicted")
	_, ok = c.Get("hot")
	assert.True(t, ok)
}

func TestCacheSizeBasedEvictsLargest(t *testing.T) {
	sizer := func(v string) int64 { return int64(len(v)) }
	c := New[string](looseConfig("size", 3, PolicySizeBased), WithSizer(sizer))
	defer c.Close()

	require.NoError(t, c.Set("small", "x"))
	require.NoError(t, c.Set("big", string(make([]byte, 4096))))
	require.NoError(t, c.Set("medium", string(make([]byte, 64))))

	require.NoError(t, c.Set("next", "y"))

	_, ok := c.Get("big")
	assert.False(t, ok, "largest entry should have been evicted")
	_, ok = c.Get("small")
	assert.True(t, ok)
}

func TestCacheDeleteAndClear(t *testing.T) {
	c := New[int](looseConfig("del", 10, PolicyLRU))
	defer c.Close()

	require.NoError(t, c.Set("a", 1))
	require.NoError(t, c.Set("b", 2))

	assert.True(t, c.Delete("a"))
	assert.False(t, c.Delete("a"))

	c.Clear()
	assert.Equal(t, 0, c.Size())
}

func TestCacheSetDefaultTTLAppliesToLaterInserts(t *testing.T) {
	c := New[string](looseConfig("retune", 10, PolicyLRU))
	defer c.Close()

	require.NoError(t, c.Set("persist", "stays"))
	c.SetDefaultTTL(10 * time.Millisecond)
	require.NoError(t, c.Set("ephemeral", "gone soon"))

	time.Sleep(20 * time.Millisecond)

	_, ok := c.Get("ephemeral")
	assert.False(t, ok, "entries stored after the retune must carry the new TTL")
	_, ok = c.Get("persist")
	assert.True(t, ok, "entries stored before the retune keep their original TTL")
}

func TestCacheUpdateRespectsMemoryBudget(t *testing.T) {
	sizer := func(v string) int64 { return int64(len(v)) }
	cfg := Config{
		Name:               "budget",
		MaxEntries:         10,
		MaxMemoryBytes:     1000,
		Policy:             PolicyLRU,
		PressureThreshold:  1.0,
		EmergencyThreshold: 2.0,
	}
	c := New[string](cfg, WithSizer(sizer))
	defer c.Close()

	require.NoError(t, c.Set("a", string(make([]byte, 100))))
	require.NoError(t, c.Set("b", string(make([]byte, 100))))

	// Growing "a" far past its old footprint must evict rather than blow
	// through the memory limit.
	require.NoError(t, c.Set("a", string(make([]byte, 800))))

	_, ok := c.Get("b")
	assert.False(t, ok, "the grown entry must make headroom like a fresh insert")
	got, ok := c.Get("a")
	require.True(t, ok)
	assert.Len(t, got, 800)
	assert.Equal(t, 1, c.Size())
	assert.GreaterOrEqual(t, c.Stats().Evictions(), int64(1))
}

func TestCacheUpdateExistingKeyKeepsSize(t *testing.T) {
	c := New[int](looseConfig("upd", 5, PolicyLRU))
	defer c.Close()

	require.NoError(t, c.Set("k", 1))
	require.NoError(t, c.Set("k", 2))

	assert.Equal(t, 1, c.Size())
	got, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, 2, got)
}

func TestCacheStatsTracking(t *testing.T) {
	c := New[int](looseConfig("stats", 10, PolicyLRU))
	defer c.Close()

	require.NoError(t, c.Set("a", 1))
	c.Get("a")
	c.Get("a")
	c.Get("missing")

	stats := c.Stats().Summary()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
	assert.InDelta(t, 2.0/3.0, stats.HitRate, 0.01)
}

func TestCacheConcurrentAccess(t *testing.T) {
	c := New[int](looseConfig("conc", 128, PolicyLRU))
	defer c.Close()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				key := fmt.Sprintf("key%d", i%50)
				if i%3 == 0 {
					_ = c.Set(key, i)
				} else {
					c.Get(key)
				}
			}
		}(g)
	}
	wg.Wait()

	assert.LessOrEqual(t, c.Size(), 128)
}

func TestPresetConfigs(t *testing.T) {
	paths := PathCacheConfig()
	prices := PriceCacheConfig()
	inventory := InventoryCacheConfig()

	assert.Equal(t, 5*time.Minute, paths.DefaultTTL)
	assert.Less(t, inventory.DefaultTTL, prices.DefaultTTL,
		"inventory is the most volatile data and must carry the shortest TTL")
	assert.Less(t, prices.DefaultTTL, paths.DefaultTTL)
}
