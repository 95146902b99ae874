package resilience

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"supplynet-backend/domain/core/entities"
	"supplynet-backend/pkg/cache"
)

type fakeCatalog struct {
	prices map[entities.Level]float64
	err    error
	calls  atomic.Int64
}

func (f *fakeCatalog) GetPrice(ctx context.Context, level entities.Level, productID string) (float64, error) {
	f.calls.Add(1)
	if f.err != nil {
		return 0, f.err
	}
	price, ok := f.prices[level]
	if !ok {
		return 0, errors.New("no price")
	}
	return price, nil
}

func (f *fakeCatalog) GetPrices(ctx context.Context, productID string, levels []entities.Level) (map[entities.Level]float64, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[entities.Level]float64)
	for _, level := range levels {
		if price, ok := f.prices[level]; ok {
			out[level] = price
		}
	}
	return out, nil
}

type fakeStock struct {
	stock map[string]int
	err   error
	calls atomic.Int64
}

func (f *fakeStock) GetStock(ctx context.Context, userID, productID string) (int, error) {
	f.calls.Add(1)
	if f.err != nil {
		return 0, f.err
	}
	return f.stock[userID], nil
}

func (f *fakeStock) GetStockBatch(ctx context.Context, userIDs []string, productID string) (map[string]int, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]int)
	for _, id := range userIDs {
		if qty, ok := f.stock[id]; ok {
			out[id] = qty
		}
	}
	return out, nil
}

// touchyBreaker trips on the first failure so tests can open it quickly
func touchyBreaker(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      1,
		Interval:         time.Minute,
		Timeout:          time.Minute,
		FailureThreshold: 0.5,
		MinRequests:      1,
	}
}

func newPriceCache(t *testing.T) cache.Cache[float64] {
	t.Helper()
	c := cache.New[float64](cache.Config{Name: "prices-test", MaxEntries: 64, DefaultTTL: time.Minute})
	t.Cleanup(func() { c.Close() })
	return c
}

func newStockCache(t *testing.T) cache.Cache[int] {
	t.Helper()
	c := cache.New[int](cache.Config{Name: "stock-test", MaxEntries: 64, DefaultTTL: time.Minute})
	t.Cleanup(func() { c.Close() })
	return c
}

func TestResilientPriceCatalogCachesLookups(t *testing.T) {
	inner := &fakeCatalog{prices: map[entities.Level]float64{
		entities.LevelStar1: 80,
		entities.LevelStar3: 60,
	}}
	catalog := NewResilientPriceCatalog(inner, newPriceCache(t), DefaultBreakerConfig("prices"), zap.NewNop())

	levels := []entities.Level{entities.LevelStar1, entities.LevelStar3}
	first, err := catalog.GetPrices(context.Background(), "prod-1", levels)
	require.NoError(t, err)
	assert.Equal(t, map[entities.Level]float64{entities.LevelStar1: 80, entities.LevelStar3: 60}, first)

	second, err := catalog.GetPrices(context.Background(), "prod-1", levels)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), inner.calls.Load())
}

func TestResilientPriceCatalogServesCachedSubsetOnFailure(t *testing.T) {
	inner := &fakeCatalog{prices: map[entities.Level]float64{entities.LevelStar1: 80}}
	catalog := NewResilientPriceCatalog(inner, newPriceCache(t), touchyBreaker("prices"), zap.NewNop())

	// Warm one level into the cache
	_, err := catalog.GetPrices(context.Background(), "prod-1", []entities.Level{entities.LevelStar1})
	require.NoError(t, err)

	inner.err = errors.New("catalog down")
	out, err := catalog.GetPrices(context.Background(), "prod-1",
		[]entities.Level{entities.LevelStar1, entities.LevelStar3})
	require.NoError(t, err)
	assert.Equal(t, map[entities.Level]float64{entities.LevelStar1: 80}, out)
}

func TestResilientPriceCatalogFailsWithNothingCached(t *testing.T) {
	inner := &fakeCatalog{err: errors.New("catalog down")}
	catalog := NewResilientPriceCatalog(inner, newPriceCache(t), touchyBreaker("prices"), zap.NewNop())

	_, err := catalog.GetPrices(context.Background(), "prod-1", []entities.Level{entities.LevelStar1})
	assert.Error(t, err)
}

func TestResilientPriceCatalogBreakerOpensAndRecovers(t *testing.T) {
	inner := &fakeCatalog{err: errors.New("catalog down")}
	catalog := NewResilientPriceCatalog(inner, newPriceCache(t), touchyBreaker("prices"), zap.NewNop())
	assert.Equal(t, "closed", catalog.State())

	_, err := catalog.GetPrice(context.Background(), entities.LevelStar1, "prod-1")
	assert.Error(t, err)
	assert.Equal(t, "open", catalog.State())

	// While open, the inner catalog is never reached
	before := inner.calls.Load()
	_, err = catalog.GetPrice(context.Background(), entities.LevelStar1, "prod-1")
	assert.Error(t, err)
	assert.Equal(t, before, inner.calls.Load())
}

func TestResilientInventoryCachesLookups(t *testing.T) {
	inner := &fakeStock{stock: map[string]int{"dist-a": 500, "dist-b": 50}}
	inventory := NewResilientInventory(inner, newStockCache(t), DefaultBreakerConfig("inventory"), zap.NewNop())

	first, err := inventory.GetStockBatch(context.Background(), []string{"dist-a", "dist-b"}, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"dist-a": 500, "dist-b": 50}, first)

	second, err := inventory.GetStockBatch(context.Background(), []string{"dist-a", "dist-b"}, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), inner.calls.Load())
}

func TestResilientInventoryServesCachedSubsetOnFailure(t *testing.T) {
	inner := &fakeStock{stock: map[string]int{"dist-a": 500}}
	inventory := NewResilientInventory(inner, newStockCache(t), touchyBreaker("inventory"), zap.NewNop())

	qty, err := inventory.GetStock(context.Background(), "dist-a", "prod-1")
	require.NoError(t, err)
	assert.Equal(t, 500, qty)

	inner.err = errors.New("inventory down")
	out, err := inventory.GetStockBatch(context.Background(), []string{"dist-a", "dist-b"}, "prod-1")
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"dist-a": 500}, out)
}

func TestResilientInventorySingleLookupUsesCache(t *testing.T) {
	inner := &fakeStock{stock: map[string]int{"dist-a": 500}}
	inventory := NewResilientInventory(inner, newStockCache(t), DefaultBreakerConfig("inventory"), zap.NewNop())

	_, err := inventory.GetStock(context.Background(), "dist-a", "prod-1")
	require.NoError(t, err)
	_, err = inventory.GetStock(context.Background(), "dist-a", "prod-1")
	require.NoError(t, err)
	assert.Equal(t, int64(1), inner.calls.Load())
}
