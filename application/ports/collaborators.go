// Package ports defines the collaborator interfaces the optimizer consumes.
// Implementations live in infrastructure; tests substitute in-memory fakes.
package ports

import (
	"context"
	"time"

	"supplynet-backend/domain/core/entities"
	"supplynet-backend/domain/core/valueobjects"
	"supplynet-backend/domain/events"
)

// DirectoryRecord is the raw distributor row returned by the external
// directory. The network builder converts records into domain nodes.
type DirectoryRecord struct {
	ID         string    `json:"id"`
	Level      string    `json:"level"`
	Status     string    `json:"status"`
	ParentID   string    `json:"parentId,omitempty"`
	TeamPath   string    `json:"teamPath,omitempty"`
	TotalSales float64   `json:"totalSales"`
	TeamSize   int       `json:"teamSize"`
	JoinDate   time.Time `json:"joinDate"`
	LastActive time.Time `json:"lastActive"`
}

// DistributorDirectory is the network builder's sole data source
type DistributorDirectory interface {
	// FetchActiveDistributors returns every ACTIVE distributor record
	FetchActiveDistributors(ctx context.Context) ([]DirectoryRecord, error)

	// FetchDistributors returns the records for the given ids, active or not.
	// Used by incremental updates to re-fetch a node and its neighbors.
	FetchDistributors(ctx context.Context, ids []string) ([]DirectoryRecord, error)
}

// PriceCatalog resolves per-level unit prices for a product
type PriceCatalog interface {
	// GetPrice returns the unit price a supplier at the given level charges
	GetPrice(ctx context.Context, level entities.Level, productID string) (float64, error)

	// GetPrices batches price lookups across candidate supplier levels
	GetPrices(ctx context.Context, productID string, levels []entities.Level) (map[entities.Level]float64, error)
}

// InventoryService resolves per-distributor stock for a product
type InventoryService interface {
	// GetStock returns the quantity a distributor holds for a product
	GetStock(ctx context.Context, userID, productID string) (int, error)

	// GetStockBatch batches stock lookups across candidate suppliers
	GetStockBatch(ctx context.Context, userIDs []string, productID string) (map[string]int, error)
}

// PermissionDecision is the external rule authority's verdict
type PermissionDecision struct {
	Allowed bool     `json:"allowed"`
	Reasons []string `json:"reasons,omitempty"`
}

// PurchaseAuthorizer is the external business-rule authority
// (team membership, blacklists, quota rules live behind it)
type PurchaseAuthorizer interface {
	ValidatePurchasePermission(ctx context.Context, buyerID, sellerID, productID string, quantity int) (PermissionDecision, error)
}

// Order is the external order collaborator's result
type Order struct {
	ID         string    `json:"id"`
	BuyerID    string    `json:"buyerId"`
	SellerID   string    `json:"sellerId"`
	ProductID  string    `json:"productId"`
	Quantity   int       `json:"quantity"`
	UnitPrice  float64   `json:"unitPrice"`
	TotalPrice float64   `json:"totalPrice"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// OrderService creates purchase orders and attaches path metadata
type OrderService interface {
	CreatePurchaseOrder(ctx context.Context, buyerID, sellerID, productID string, quantity int) (*Order, error)

	// AttachPathMetadata stores the chosen procurement path on the order
	// after creation; failures here must not fail the purchase.
	AttachPathMetadata(ctx context.Context, orderID string, path *valueobjects.ProcurementPath) error
}

// EventBus publishes domain events to downstream consumers
type EventBus interface {
	Publish(ctx context.Context, event events.DomainEvent) error
	PublishBatch(ctx context.Context, batch []events.DomainEvent) error
}
