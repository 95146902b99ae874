package di

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"supplynet-backend/application/ports"
	"supplynet-backend/application/services"
	"supplynet-backend/domain/core/valueobjects"
	"supplynet-backend/infrastructure/config"
	"supplynet-backend/infrastructure/resilience"
	"supplynet-backend/pkg/auth"
	"supplynet-backend/pkg/cache"
	"supplynet-backend/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config         *config.Config
	Logger         *zap.Logger
	Tuning         *config.Tuning
	Registry       *prometheus.Registry
	Metrics        *observability.Metrics
	Tracer         *observability.Tracer
	PathCache      cache.Cache[[]*valueobjects.ProcurementPath]
	PriceCache     cache.Cache[float64]
	InventoryCache cache.Cache[int]
	Directory      ports.DistributorDirectory
	Orders         ports.OrderService
	Authorizer     ports.PurchaseAuthorizer
	EventBus       ports.EventBus
	PriceCatalog   *resilience.ResilientPriceCatalog
	Inventory      *resilience.ResilientInventory
	NetworkBuilder *services.NetworkBuilder
	PathFinder     *services.PathFinder
	Procurement    *services.ProcurementService
	JWTService     *auth.JWTService
}

// Close releases container-held resources
func (c *Container) Close() {
	c.PathCache.Close()
	c.PriceCache.Close()
	c.InventoryCache.Close()
	c.Tuning.Stop()
}
