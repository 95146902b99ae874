package dynamodb

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"supplynet-backend/application/ports"
	"supplynet-backend/domain/core/entities"
)

// CatalogRepository reads per-level product prices from the catalog table.
// Items are keyed PRODUCT#<id> / PRICE#<level>.
type CatalogRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewCatalogRepository creates a price catalog repository
func NewCatalogRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.PriceCatalog {
	return &CatalogRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

type priceItem struct {
	PK        string  `dynamodbav:"PK"`
	SK        string  `dynamodbav:"SK"`
	ProductID string  `dynamodbav:"ProductID"`
	Level     string  `dynamodbav:"Level"`
	UnitPrice float64 `dynamodbav:"UnitPrice"`
}

// GetPrice reads one level's unit price for a product
func (r *CatalogRepository) GetPrice(ctx context.Context, level entities.Level, productID string) (float64, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: "PRODUCT#" + productID},
			"SK": &types.AttributeValueMemberS{Value: "PRICE#" + string(level)},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get price for %s@%s: %w", productID, level, err)
	}
	if out.Item == nil {
		return 0, fmt.Errorf("no price for %s@%s", productID, level)
	}

	var item priceItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return 0, fmt.Errorf("failed to unmarshal price item: %w", err)
	}
	return item.UnitPrice, nil
}

// GetPrices batch-gets the price items for the given levels. Levels with
// no price row are absent from the result, not an error.
func (r *CatalogRepository) GetPrices(ctx context.Context, productID string, levels []entities.Level) (map[entities.Level]float64, error) {
	if len(levels) == 0 {
		return map[entities.Level]float64{}, nil
	}

	keys := make([]map[string]types.AttributeValue, 0, len(levels))
	for _, level := range levels {
		keys = append(keys, map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: "PRODUCT#" + productID},
			"SK": &types.AttributeValueMemberS{Value: "PRICE#" + string(level)},
		})
	}

	prices := make(map[entities.Level]float64, len(levels))
	request := map[string]types.KeysAndAttributes{
		r.tableName: {Keys: keys},
	}

	for len(request) > 0 {
		out, err := r.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
			RequestItems: request,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to batch get prices for %s: %w", productID, err)
		}

		var items []priceItem
		if err := attributevalue.UnmarshalListOfMaps(out.Responses[r.tableName], &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal price items: %w", err)
		}
		for _, item := range items {
			prices[entities.Level(item.Level)] = item.UnitPrice
		}

		request = out.UnprocessedKeys
	}

	r.logger.Debug("Fetched product prices",
		zap.String("productId", productID),
		zap.Int("requested", len(levels)),
		zap.Int("found", len(prices)),
	)
	return prices, nil
}
