package resilience

import (
	"context"
	"fmt"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"supplynet-backend/application/ports"
	"supplynet-backend/pkg/cache"
)

// ResilientInventory decorates an InventoryService with a circuit breaker
// and a read-through cache. Stock figures go stale fast, so the cache TTL
// is expected to be short; stale-but-present beats nothing when the
// inventory service is down.
type ResilientInventory struct {
	inner   ports.InventoryService
	breaker *gobreaker.CircuitBreaker
	stock   cache.Cache[int]
	logger  *zap.Logger
}

// NewResilientInventory decorates the given inventory service
func NewResilientInventory(inner ports.InventoryService, stock cache.Cache[int], config BreakerConfig, logger *zap.Logger) *ResilientInventory {
	return &ResilientInventory{
		inner:   inner,
		breaker: newBreaker(config, logger),
		stock:   stock,
		logger:  logger,
	}
}

// State reports the breaker's current state
func (i *ResilientInventory) State() string {
	return i.breaker.State().String()
}

func stockKey(userID, productID string) string {
	return "stock:" + userID + ":" + productID
}

// GetStock resolves one supplier's stock through the cache and breaker
func (i *ResilientInventory) GetStock(ctx context.Context, userID, productID string) (int, error) {
	if qty, ok := i.stock.Get(stockKey(userID, productID)); ok {
		return qty, nil
	}

	result, err := i.breaker.Execute(func() (any, error) {
		return i.inner.GetStock(ctx, userID, productID)
	})
	if err != nil {
		return 0, fmt.Errorf("stock lookup for %s/%s: %w", userID, productID, err)
	}

	qty := result.(int)
	if err := i.stock.Set(stockKey(userID, productID), qty); err != nil {
		i.logger.Warn("Failed to cache stock", zap.Error(err))
	}
	return qty, nil
}

// GetStockBatch batches stock lookups. Suppliers already cached skip the
// inventory call; when the call fails with some suppliers cached, the
// cached subset is returned so the search can still consider them.
func (i *ResilientInventory) GetStockBatch(ctx context.Context, userIDs []string, productID string) (map[string]int, error) {
	out := make(map[string]int, len(userIDs))
	var missing []string
	for _, userID := range userIDs {
		if qty, ok := i.stock.Get(stockKey(userID, productID)); ok {
			out[userID] = qty
			continue
		}
		missing = append(missing, userID)
	}
	if len(missing) == 0 {
		return out, nil
	}

	result, err := i.breaker.Execute(func() (any, error) {
		return i.inner.GetStockBatch(ctx, missing, productID)
	})
	if err != nil {
		if len(out) > 0 {
			i.logger.Warn("Inventory service unavailable, serving cached subset",
				zap.String("productId", productID),
				zap.Int("cached", len(out)),
				zap.Int("missing", len(missing)),
				zap.Error(err),
			)
			return out, nil
		}
		return nil, fmt.Errorf("stock lookup for %s: %w", productID, err)
	}

	for userID, qty := range result.(map[string]int) {
		out[userID] = qty
		if err := i.stock.Set(stockKey(userID, productID), qty); err != nil {
			i.logger.Warn("Failed to cache stock", zap.Error(err))
		}
	}
	return out, nil
}
