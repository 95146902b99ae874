// Package dynamodb implements the external collaborator ports against
// DynamoDB tables.
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
	"go.uber.org/zap"

	"supplynet-backend/application/ports"
	"supplynet-backend/domain/core/entities"
)

// batchGetLimit is DynamoDB's BatchGetItem item cap per request
const batchGetLimit = 100

// DirectoryRepository reads the distributor directory table
type DirectoryRepository struct {
	client    *dynamodb.Client
	tableName string
	indexName string
	logger    *zap.Logger
}

// NewDirectoryRepository creates a directory repository
func NewDirectoryRepository(client *dynamodb.Client, tableName, indexName string, logger *zap.Logger) ports.DistributorDirectory {
	return &DirectoryRepository{
		client:    client,
		tableName: tableName,
		indexName: indexName,
		logger:    logger,
	}
}

// distributorItem is the DynamoDB item structure for a distributor
type distributorItem struct {
	PK         string  `dynamodbav:"PK"`
	SK         string  `dynamodbav:"SK"`
	EntityType string  `dynamodbav:"EntityType"`
	UserID     string  `dynamodbav:"UserID"`
	Level      string  `dynamodbav:"Level"`
	Status     string  `dynamodbav:"Status"`
	ParentID   string  `dynamodbav:"ParentID,omitempty"`
	TeamPath   string  `dynamodbav:"TeamPath,omitempty"`
	TotalSales float64 `dynamodbav:"TotalSales"`
	TeamSize   int     `dynamodbav:"TeamSize"`
	JoinDate   string  `dynamodbav:"JoinDate,omitempty"`
	LastActive string  `dynamodbav:"LastActive,omitempty"`
}

func (i distributorItem) toRecord() ports.DirectoryRecord {
	record := ports.DirectoryRecord{
		ID:         i.UserID,
		Level:      i.Level,
		Status:     i.Status,
		ParentID:   i.ParentID,
		TeamPath:   i.TeamPath,
		TotalSales: i.TotalSales,
		TeamSize:   i.TeamSize,
	}
	if t, err := time.Parse(time.RFC3339, i.JoinDate); err == nil {
		record.JoinDate = t
	}
	if t, err := time.Parse(time.RFC3339, i.LastActive); err == nil {
		record.LastActive = t
	}
	return record
}

// FetchActiveDistributors scans the status index for every ACTIVE
// distributor, following pagination until exhausted.
func (r *DirectoryRepository) FetchActiveDistributors(ctx context.Context) ([]ports.DirectoryRecord, error) {
	filter := expression.Name("EntityType").Equal(expression.Value("DISTRIBUTOR")).
		And(expression.Name("Status").Equal(expression.Value(string(entities.StatusActive))))
	expr, err := expression.NewBuilder().WithFilter(filter).Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build directory scan expression: %w", err)
	}

	var records []ports.DirectoryRecord
	var startKey map[string]types.AttributeValue

	for {
		out, err := r.client.Scan(ctx, &dynamodb.ScanInput{
			TableName:                 aws.String(r.tableName),
			IndexName:                 aws.String(r.indexName),
			FilterExpression:          expr.Filter(),
			ExpressionAttributeNames:  expr.Names(),
			ExpressionAttributeValues: expr.Values(),
			ExclusiveStartKey:         startKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan distributor directory: %w", err)
		}

		var items []distributorItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal distributor items: %w", err)
		}
		for _, item := range items {
			records = append(records, item.toRecord())
		}

		if out.LastEvaluatedKey == nil {
			break
		}
		startKey = out.LastEvaluatedKey
	}

	r.logger.Debug("Fetched active distributors",
		zap.Int("count", len(records)),
		zap.String("table", r.tableName),
	)
	return records, nil
}

// FetchDistributors batch-gets the given ids, active or not. Missing ids
// are simply absent from the result.
func (r *DirectoryRepository) FetchDistributors(ctx context.Context, ids []string) ([]ports.DirectoryRecord, error) {
	records := make([]ports.DirectoryRecord, 0, len(ids))

	for offset := 0; offset < len(ids); offset += batchGetLimit {
		end := offset + batchGetLimit
		if end > len(ids) {
			end = len(ids)
		}

		keys := make([]map[string]types.AttributeValue, 0, end-offset)
		for _, id := range ids[offset:end] {
			keys = append(keys, map[string]types.AttributeValue{
				"PK": &types.AttributeValueMemberS{Value: "DIST#" + id},
				"SK": &types.AttributeValueMemberS{Value: "PROFILE"},
			})
		}

		request := map[string]types.KeysAndAttributes{
			r.tableName: {Keys: keys},
		}

		// Follow UnprocessedKeys until the batch drains
		for len(request) > 0 {
			out, err := r.client.BatchGetItem(ctx, &dynamodb.BatchGetItemInput{
				RequestItems: request,
			})
			if err != nil {
				return nil, fmt.Errorf("failed to batch get distributors: %w", err)
			}

			var items []distributorItem
			if err := attributevalue.UnmarshalListOfMaps(out.Responses[r.tableName], &items); err != nil {
				return nil, fmt.Errorf("failed to unmarshal distributor items: %w", err)
			}
			for _, item := range items {
				records = append(records, item.toRecord())
			}

			request = out.UnprocessedKeys
		}
	}

	return records, nil
}
