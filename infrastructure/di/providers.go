// Package di wires the application together. wire.go holds the injector
// definition; wire_gen.go is the generated output.
package di

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awseventbridge "github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"supplynet-backend/application/ports"
	"supplynet-backend/application/services"
	"supplynet-backend/domain/core/valueobjects"
	"supplynet-backend/infrastructure/config"
	"supplynet-backend/infrastructure/messaging/eventbridge"
	"supplynet-backend/infrastructure/persistence/dynamodb"
	"supplynet-backend/infrastructure/resilience"
	"supplynet-backend/pkg/auth"
	"supplynet-backend/pkg/cache"
	"supplynet-backend/pkg/observability"
)

// ProvideLogger creates the process logger
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideAWSConfig loads the ambient AWS configuration
func ProvideAWSConfig(ctx context.Context, cfg *config.Config) (aws.Config, error) {
	return awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.AWSRegion),
	)
}

// ProvideDynamoDBClient creates a DynamoDB client
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideEventBridgeClient creates an EventBridge client
func ProvideEventBridgeClient(awsCfg aws.Config) *awseventbridge.Client {
	return awseventbridge.NewFromConfig(awsCfg)
}

// ProvideTuning creates the hot-reloaded tuning source
func ProvideTuning(cfg *config.Config, logger *zap.Logger) (*config.Tuning, error) {
	return config.NewTuning(cfg.TuningFile, logger)
}

// ProvideRegistry creates the Prometheus registry, or nil when metrics
// are disabled.
func ProvideRegistry(cfg *config.Config) *prometheus.Registry {
	if !cfg.EnableMetrics {
		return nil
	}
	return prometheus.NewRegistry()
}

// ProvideMetrics creates the metrics instance
func ProvideMetrics(registry *prometheus.Registry) *observability.Metrics {
	if registry == nil {
		return nil
	}
	return observability.NewMetrics(registry)
}

// ProvideTracer creates the tracer
func ProvideTracer(cfg *config.Config, logger *zap.Logger) *observability.Tracer {
	return observability.NewTracer(cfg.EnableTracing, logger)
}

// ProvidePathCache creates the procurement path cache. The default TTL
// comes from tuning and follows tuning reloads.
func ProvidePathCache(registry *prometheus.Registry, tuning *config.Tuning) cache.Cache[[]*valueobjects.ProcurementPath] {
	cfg := cache.PathCacheConfig()
	if ttl := tuning.Current().Cache.PathTTL.Std(); ttl > 0 {
		cfg.DefaultTTL = ttl
	}

	var c cache.Cache[[]*valueobjects.ProcurementPath]
	if registry != nil {
		c = cache.New[[]*valueobjects.ProcurementPath](cfg,
			cache.WithMetrics[[]*valueobjects.ProcurementPath](registry, "supplynet", cfg.Name))
	} else {
		c = cache.New[[]*valueobjects.ProcurementPath](cfg)
	}

	tuning.OnChange(func(values config.TuningValues) {
		if ttl := values.Cache.PathTTL.Std(); ttl > 0 {
			c.SetDefaultTTL(ttl)
		}
	})
	return c
}

// ProvidePriceCache creates the unit price cache
func ProvidePriceCache(registry *prometheus.Registry, tuning *config.Tuning) cache.Cache[float64] {
	cfg := cache.PriceCacheConfig()
	if ttl := tuning.Current().Cache.PriceTTL.Std(); ttl > 0 {
		cfg.DefaultTTL = ttl
	}

	var c cache.Cache[float64]
	if registry != nil {
		c = cache.New[float64](cfg, cache.WithMetrics[float64](registry, "supplynet", cfg.Name))
	} else {
		c = cache.New[float64](cfg)
	}

	tuning.OnChange(func(values config.TuningValues) {
		if ttl := values.Cache.PriceTTL.Std(); ttl > 0 {
			c.SetDefaultTTL(ttl)
		}
	})
	return c
}

// ProvideInventoryCache creates the stock level cache
func ProvideInventoryCache(registry *prometheus.Registry, tuning *config.Tuning) cache.Cache[int] {
	cfg := cache.InventoryCacheConfig()
	if ttl := tuning.Current().Cache.InventoryTTL.Std(); ttl > 0 {
		cfg.DefaultTTL = ttl
	}

	var c cache.Cache[int]
	if registry != nil {
		c = cache.New[int](cfg, cache.WithMetrics[int](registry, "supplynet", cfg.Name))
	} else {
		c = cache.New[int](cfg)
	}

	tuning.OnChange(func(values config.TuningValues) {
		if ttl := values.Cache.InventoryTTL.Std(); ttl > 0 {
			c.SetDefaultTTL(ttl)
		}
	})
	return c
}

// ProvideDirectory creates the distributor directory adapter
func ProvideDirectory(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.DistributorDirectory {
	return dynamodb.NewDirectoryRepository(client, cfg.DistributorsTable, cfg.StatusIndexName, logger)
}

// ProvideOrderService creates the order adapter
func ProvideOrderService(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.OrderService {
	return dynamodb.NewOrderRepository(client, cfg.OrdersTable, logger)
}

// ProvideAuthorizer creates the purchase authorizer adapter
func ProvideAuthorizer(client *awsdynamodb.Client, cfg *config.Config, logger *zap.Logger) ports.PurchaseAuthorizer {
	return dynamodb.NewAuthorizer(client, cfg.DistributorsTable, logger)
}

// ProvideEventBus creates the EventBridge event bus
func ProvideEventBus(client *awseventbridge.Client, cfg *config.Config, logger *zap.Logger) ports.EventBus {
	return eventbridge.NewPublisher(client, cfg.EventBusName, logger)
}

// ProvidePriceCatalog wraps the DynamoDB catalog with its breaker and cache
func ProvidePriceCatalog(client *awsdynamodb.Client, prices cache.Cache[float64], cfg *config.Config, logger *zap.Logger) *resilience.ResilientPriceCatalog {
	inner := dynamodb.NewCatalogRepository(client, cfg.DistributorsTable, logger)
	return resilience.NewResilientPriceCatalog(inner, prices, resilience.DefaultBreakerConfig("prices"), logger)
}

// ProvideInventoryService wraps the DynamoDB inventory with its breaker and cache
func ProvideInventoryService(client *awsdynamodb.Client, stock cache.Cache[int], cfg *config.Config, logger *zap.Logger) *resilience.ResilientInventory {
	inner := dynamodb.NewInventoryRepository(client, cfg.DistributorsTable, logger)
	return resilience.NewResilientInventory(inner, stock, resilience.DefaultBreakerConfig("inventory"), logger)
}

// ProvideNetworkBuilder creates the network builder
func ProvideNetworkBuilder(directory ports.DistributorDirectory, eventBus ports.EventBus, cfg *config.Config, logger *zap.Logger) *services.NetworkBuilder {
	return services.NewNetworkBuilder(directory, eventBus, services.NetworkBuilderConfig{
		StalenessWindow: cfg.StalenessWindow,
		BuildTimeout:    cfg.BuildTimeout,
	}, logger)
}

// ProvidePathFinder creates the path finder
func ProvidePathFinder(
	builder *services.NetworkBuilder,
	catalog *resilience.ResilientPriceCatalog,
	inventory *resilience.ResilientInventory,
	pathCache cache.Cache[[]*valueobjects.ProcurementPath],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *services.PathFinder {
	return services.NewPathFinder(builder, catalog, inventory, pathCache, metrics, logger)
}

// ProvideProcurementService creates the procurement orchestrator
func ProvideProcurementService(
	finder *services.PathFinder,
	builder *services.NetworkBuilder,
	authorizer ports.PurchaseAuthorizer,
	orders ports.OrderService,
	eventBus ports.EventBus,
	catalog *resilience.ResilientPriceCatalog,
	inventory *resilience.ResilientInventory,
	pathCache cache.Cache[[]*valueobjects.ProcurementPath],
	priceCache cache.Cache[float64],
	stockCache cache.Cache[int],
	tuning *config.Tuning,
	metrics *observability.Metrics,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *services.ProcurementService {
	values := tuning.Current()
	svc := services.NewProcurementService(
		finder,
		builder,
		authorizer,
		orders,
		eventBus,
		map[string]services.CacheStatsSource{
			"paths":     pathCache,
			"prices":    priceCache,
			"inventory": stockCache,
		},
		map[string]services.BreakerStateSource{
			"prices":    catalog,
			"inventory": inventory,
		},
		services.BatchConfig{
			BatchSize:       values.Batch.Size,
			Workers:         values.Batch.Workers,
			InterBatchPause: values.Batch.InterBatchPause.Std(),
		},
		metrics,
		tracer,
		logger,
	)

	tuning.OnChange(func(values config.TuningValues) {
		svc.UpdateBatchConfig(services.BatchConfig{
			BatchSize:       values.Batch.Size,
			Workers:         values.Batch.Workers,
			InterBatchPause: values.Batch.InterBatchPause.Std(),
		})
	})
	return svc
}

// ProvideJWTService creates the token validator
func ProvideJWTService(cfg *config.Config) *auth.JWTService {
	return auth.NewJWTService(cfg.JWTSecret, cfg.JWTIssuer, 24*time.Hour)
}
