package resilience

import (
	"context"
	"fmt"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"supplynet-backend/application/ports"
	"supplynet-backend/domain/core/entities"
	"supplynet-backend/pkg/cache"
)

// ResilientPriceCatalog decorates a PriceCatalog with a circuit breaker
// and a read-through cache. Cached prices keep serving while the breaker
// is open; only levels with neither cache nor catalog data drop out.
type ResilientPriceCatalog struct {
	inner   ports.PriceCatalog
	breaker *gobreaker.CircuitBreaker
	prices  cache.Cache[float64]
	logger  *zap.Logger
}

// NewResilientPriceCatalog decorates the given catalog
func NewResilientPriceCatalog(inner ports.PriceCatalog, prices cache.Cache[float64], config BreakerConfig, logger *zap.Logger) *ResilientPriceCatalog {
	return &ResilientPriceCatalog{
		inner:   inner,
		breaker: newBreaker(config, logger),
		prices:  prices,
		logger:  logger,
	}
}

// State reports the breaker's current state
func (c *ResilientPriceCatalog) State() string {
	return c.breaker.State().String()
}

func priceKey(productID string, level entities.Level) string {
	return "price:" + productID + ":" + string(level)
}

// GetPrice resolves one level's unit price through the cache and breaker
func (c *ResilientPriceCatalog) GetPrice(ctx context.Context, level entities.Level, productID string) (float64, error) {
	if price, ok := c.prices.Get(priceKey(productID, level)); ok {
		return price, nil
	}

	result, err := c.breaker.Execute(func() (any, error) {
		return c.inner.GetPrice(ctx, level, productID)
	})
	if err != nil {
		return 0, fmt.Errorf("price lookup for %s@%s: %w", productID, level, err)
	}

	price := result.(float64)
	if err := c.prices.Set(priceKey(productID, level), price); err != nil {
		c.logger.Warn("Failed to cache price", zap.Error(err))
	}
	return price, nil
}

// GetPrices batches price lookups. Levels already cached skip the catalog
// call entirely; when the catalog fails with some levels cached, the
// cached subset is returned so callers can skip the rest.
func (c *ResilientPriceCatalog) GetPrices(ctx context.Context, productID string, levels []entities.Level) (map[entities.Level]float64, error) {
	out := make(map[entities.Level]float64, len(levels))
	var missing []entities.Level
	for _, level := range levels {
		if price, ok := c.prices.Get(priceKey(productID, level)); ok {
			out[level] = price
			continue
		}
		missing = append(missing, level)
	}
	if len(missing) == 0 {
		return out, nil
	}

	result, err := c.breaker.Execute(func() (any, error) {
		return c.inner.GetPrices(ctx, productID, missing)
	})
	if err != nil {
		if len(out) > 0 {
			c.logger.Warn("Price catalog unavailable, serving cached subset",
				zap.String("productId", productID),
				zap.Int("cached", len(out)),
				zap.Int("missing", len(missing)),
				zap.Error(err),
			)
			return out, nil
		}
		return nil, fmt.Errorf("price lookup for %s: %w", productID, err)
	}

	for level, price := range result.(map[entities.Level]float64) {
		out[level] = price
		if err := c.prices.Set(priceKey(productID, level), price); err != nil {
			c.logger.Warn("Failed to cache price", zap.Error(err))
		}
	}
	return out, nil
}
