package events

import (
	"time"
)

// SourceBackend identifies this service as the event source
const SourceBackend = "supplynet.optimizer"

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// Network events

// NetworkRebuilt is raised after a new graph snapshot is published
type NetworkRebuilt struct {
	BaseEvent
	SnapshotVersion int64 `json:"snapshot_version"`
	NodeCount       int   `json:"node_count"`
	EdgeCount       int   `json:"edge_count"`
	Forced          bool  `json:"forced"`
}

// NewNetworkRebuilt creates a NetworkRebuilt event
func NewNetworkRebuilt(version int64, nodeCount, edgeCount int, forced bool) NetworkRebuilt {
	return NetworkRebuilt{
		BaseEvent: BaseEvent{
			AggregateID: "network",
			EventType:   "network.rebuilt",
			Timestamp:   time.Now(),
			Version:     1,
		},
		SnapshotVersion: version,
		NodeCount:       nodeCount,
		EdgeCount:       edgeCount,
		Forced:          forced,
	}
}

// NetworkBuildFailed is raised when a rebuild aborts on validation
type NetworkBuildFailed struct {
	BaseEvent
	Reason string `json:"reason"`
}

// NewNetworkBuildFailed creates a NetworkBuildFailed event
func NewNetworkBuildFailed(reason string) NetworkBuildFailed {
	return NetworkBuildFailed{
		BaseEvent: BaseEvent{
			AggregateID: "network",
			EventType:   "network.build_failed",
			Timestamp:   time.Now(),
			Version:     1,
		},
		Reason: reason,
	}
}

// Purchase events

// PurchaseCompleted is raised after an intelligent purchase creates an order
type PurchaseCompleted struct {
	BaseEvent
	OrderID    string  `json:"order_id"`
	BuyerID    string  `json:"buyer_id"`
	SupplierID string  `json:"supplier_id"`
	ProductID  string  `json:"product_id"`
	Quantity   int     `json:"quantity"`
	TotalPrice float64 `json:"total_price"`
	PathLength int     `json:"path_length"`
}

// NewPurchaseCompleted creates a PurchaseCompleted event
func NewPurchaseCompleted(orderID, buyerID, supplierID, productID string, quantity int, totalPrice float64, pathLength int) PurchaseCompleted {
	return PurchaseCompleted{
		BaseEvent: BaseEvent{
			AggregateID: orderID,
			EventType:   "purchase.completed",
			Timestamp:   time.Now(),
			Version:     1,
		},
		OrderID:    orderID,
		BuyerID:    buyerID,
		SupplierID: supplierID,
		ProductID:  productID,
		Quantity:   quantity,
		TotalPrice: totalPrice,
		PathLength: pathLength,
	}
}
