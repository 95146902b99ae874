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
)

// InventoryRepository reads per-distributor stock rows. Items are keyed
// PRODUCT#<id> / STOCK#<userId>.
type InventoryRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewInventoryRepository creates an inventory repository
func NewInventoryRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.InventoryService {
	return &InventoryRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

type stockItem struct {
	PK        string `dynamodbav:"PK"`
	SK        string `dynamodbav:"SK"`
	ProductID string `dynamodbav:"ProductID"`
	UserID    string `dynamodbav:"UserID"`
	Quantity  int    `dynamodbav:"Quantity"`
}

// GetStock reads one distributor's stock for a product. A missing row
// means zero stock, not an error.
func (r *InventoryRepository) GetStock(ctx context.Context, userID, productID string) (int, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: "PRODUCT#" + productID},
			"SK": &types.AttributeValueMemberS{Value: "STOCK#" + userID},
		},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to get stock for %s/%s: %w", userID, productID, err)
	}
	if out.Item == nil {
		return 0, nil
	}

	var item stockItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return 0, fmt.Errorf("failed to unmarshal stock item: %w", err)
	}
	return item.Quantity, nil
}

// GetStockBatch batch-gets stock rows for the given distributors,
// chunking to DynamoDB's item cap. Distributors without a row are absent
// from the result.
func (r *InventoryRepository) GetStockBatch(ctx context.Context, userIDs []string, productID string) (map[string]int, error) {
	stock := make(map[string]int, len(userIDs))

	for offset := 0; offset < len(userIDs); offset += batchGetLimit {
		end := offset + batchGetLimit
		if end > len(userIDs) {
			end = len(userIDs)
		}

		keys := make([]map[string]types.AttributeValue, 0, end-offset)
		for _, userID := range userIDs[offset:end] {
			keys = append(keys, map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: "PRODUCT#" + productID},
				"SK": &types.AttributeValueMemberS{Value: "STOCK#" + userID},
			})
		}

		request := map[string]types.KeysAndAttributes{
			r.tableName: {Keys: keys},
		}

		for len(request) > 0 {
			out, err := r.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
				RequestItems: request,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to batch get stock for %s: %w", productID, err)
			}

			var items []stockItem
			if err := attributevalue.UnmarshalListOfMaps(out.Responses[r.tableName], &items); err != nil {
				return nil, fmt.Errorf("failed to unmarshal stock items: %w", err)
			}
			for _, item := range items {
				stock[item.UserID] = item.Quantity
			}

			request = out.UnprocessedKeys
		}
	}

	r.logger.Debug("Fetched stock levels",
		zap.String("productId", productID),
		zap.Int("requested", len(userIDs)),
		zap.Int("found", len(stock)),
	)
	return stock, nil
}
