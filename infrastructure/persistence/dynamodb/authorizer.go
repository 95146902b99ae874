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

// Authorizer checks purchase restrictions stored in the directory table.
// A RESTRICTION item under the buyer's partition blocks a specific seller
// or caps the buyer's per-order quantity; absence of items means allowed.
type Authorizer struct {
	client    *dynamodb.Client
	tableName string
	logger    *zap.Logger
}

// NewAuthorizer creates a purchase authorizer backed by the directory table
func NewAuthorizer(client *dynamodb.Client, tableName string, logger *zap.Logger) ports.PurchaseAuthorizer {
	return &Authorizer{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

type restrictionItem struct {
	PK          string `dynamodbav:"PK"`
	SK          string `dynamodbav:"SK"`
	SellerID    string `dynamodbav:"SellerID,omitempty"`
	ProductID   string `dynamodbav:"ProductID,omitempty"`
	MaxQuantity int    `dynamodbav:"MaxQuantity,omitempty"`
	Reason      string `dynamodbav:"Reason,omitempty"`
}

// ValidatePurchasePermission queries the buyer's restriction items and
// applies each one that matches the seller or product.
func (a *Authorizer) ValidatePurchasePermission(ctx context.Context, buyerID, sellerID, productID string, quantity int) (ports.PermissionDecision, error) {
	out, err := a.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(a.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :sk)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk": &types.AttributeValueMemberS{Value: "DIST#" + buyerID},
			":sk": &types.AttributeValueMemberS{Value: "RESTRICTION#"},
		},
	})
	if err != nil {
		return ports.PermissionDecision{}, fmt.Errorf("failed to query restrictions for %s: %w", buyerID, err)
	}

	var items []restrictionItem
	if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
		return ports.PermissionDecision{}, fmt.Errorf("failed to unmarshal restriction items: %w", err)
	}

	var reasons []string
	for _, item := range items {
		if item.SellerID != "" && item.SellerID != sellerID {
			continue
		}
		if item.ProductID != "" && item.ProductID != productID {
			continue
		}
		if item.MaxQuantity > 0 {
			if quantity > item.MaxQuantity {
				reasons = append(reasons, fmt.Sprintf("quantity %d exceeds limit %d", quantity, item.MaxQuantity))
			}
			continue
		}
		reason := item.Reason
		if reason == "" {
			reason = fmt.Sprintf("purchases from %s are restricted", sellerID)
		}
		reasons = append(reasons, reason)
	}

	if len(reasons) > 0 {
		a.logger.Info("Purchase denied by restriction",
			zap.String("buyerId", buyerID),
			zap.String("sellerId", sellerID),
			zap.Strings("reasons", reasons),
		)
		return ports.PermissionDecision{Allowed: false, Reasons: reasons}, nil
	}
	return ports.PermissionDecision{Allowed: true}, nil
}
