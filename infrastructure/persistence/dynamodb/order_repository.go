package dynamodb

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"supplynet-backend/application/ports"
	"supplynet-backend/domain/core/valueobjects"
)

// OrderRepository creates purchase orders in the orders table
type OrderRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewOrderRepository creates an order repository
func NewOrderRepository(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.OrderService {
	return &OrderRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

// orderItem is the DynamoDB item structure for a purchase order
type orderItem struct {
	PK         string  `dynamodbav:"PK"`
	SK         string  `dynamodbav:"SK"`
	EntityType string  `dynamodbav:"EntityType"`
	OrderID    string  `dynamodbav:"OrderID"`
	BuyerID    string  `dynamodbav:"BuyerID"`
	SellerID   string  `dynamodbav:"SellerID"`
	ProductID  string  `dynamodbav:"ProductID"`
	Quantity   int     `dynamodbav:"Quantity"`
	UnitPrice  float64 `dynamodbav:"UnitPrice"`
	TotalPrice float64 `dynamodbav:"TotalPrice"`
	Status     string  `dynamodbav:"Status"`
	CreatedAt  string  `dynamodbav:"CreatedAt"`
}

// CreatePurchaseOrder writes a new order item. The write is conditional on
// the order id not existing, so retries never double-create.
func (r *OrderRepository) CreatePurchaseOrder(ctx context.Context, buyerID, sellerID, productID string, quantity int) (*ports.Order, error) {
	order := &ports.Order{
		ID:        uuid.New().String(),
		BuyerID:   buyerID,
		SellerID:  sellerID,
		ProductID: productID,
		Quantity:  quantity,
		Status:    "CREATED",
		CreatedAt: time.Now(),
	}

	item := orderItem{
		PK:         "ORDER#" + order.ID,
		SK:         "METADATA",
		EntityType: "ORDER",
		OrderID:    order.ID,
		BuyerID:    order.BuyerID,
		SellerID:   order.SellerID,
		ProductID:  order.ProductID,
		Quantity:   order.Quantity,
		Status:     order.Status,
		CreatedAt:  order.CreatedAt.Format(time.RFC3339Nano),
	}

	av, err := attributevalue.MarshalMap(item)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order: %w", err)
	}

	cond := expression.AttributeNotExists(expression.Name("PK"))
	expr, err := expression.NewBuilder().WithCondition(cond).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build order condition: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.tableName),
		Item:                      av,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	r.logger.Info("Created purchase order",
		zap.String("orderId", order.ID),
		zap.String("buyerId", buyerID),
		zap.String("sellerId", sellerID),
		zap.Int("quantity", quantity),
	)
	return order, nil
}

// AttachPathMetadata stores the chosen procurement path on the order item
func (r *OrderRepository) AttachPathMetadata(ctx context.Context, orderID string, path *valueobjects.ProcurementPath) error {
	pathAttr, err := attributevalue.Marshal(path)
	if err != nil {
		return fmt.Errorf("failed to marshal path metadata: %w", err)
	}

	_, err = r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: "ORDER#" + orderID},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
		UpdateExpression: aws.String("SET PathMetadata = :path, UpdatedAt = :now"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":path": pathAttr,
			":now":  &types.AttributeValueMemberS{Value: time.Now().Format(time.RFC3339Nano)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to attach path metadata to order %s: %w", orderID, err)
	}
	return nil
}
