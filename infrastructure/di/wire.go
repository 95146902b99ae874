//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"github.com/google/wire"

	"supplynet-backend/infrastructure/config"
)

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideAWSConfig,
	ProvideDynamoDBClient,
	ProvideEventBridgeClient,
	ProvideTuning,
	ProvideRegistry,
	ProvideMetrics,
	ProvideTracer,
	ProvidePathCache,
	ProvidePriceCache,
	ProvideInventoryCache,
	ProvideDirectory,
	ProvideOrderService,
	ProvideAuthorizer,
	ProvideEventBus,
	ProvidePriceCatalog,
	ProvideInventoryService,
	ProvideNetworkBuilder,
	ProvidePathFinder,
	ProvideProcurementService,
	ProvideJWTService,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(ctx context.Context, cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
