package entities

import (
	"fmt"
	"time"
)

// Level represents a distributor's position in the hierarchy.
// Levels form a strict order; purchases must always ascend rank.
type Level string

const (
	LevelNormal   Level = "NORMAL"
	LevelVIP      Level = "VIP"
	LevelStar1    Level = "STAR_1"
	LevelStar2    Level = "STAR_2"
	LevelStar3    Level = "STAR_3"
	LevelStar4    Level = "STAR_4"
	LevelStar5    Level = "STAR_5"
	LevelDirector Level = "DIRECTOR"
)

// levelRanks maps each level to its ordered rank
var levelRanks = map[Level]int{
	LevelNormal:   0,
	LevelVIP:      1,
	LevelStar1:    2,
	LevelStar2:    3,
	LevelStar3:    4,
	LevelStar4:    5,
	LevelStar5:    6,
	LevelDirector: 7,
}

// Rank returns the ordinal rank of the level, or -1 for unknown levels
func (l Level) Rank() int {
	if rank, ok := levelRanks[l]; ok {
		return rank
	}
	return -1
}

// IsValid reports whether the level is a known hierarchy level
func (l Level) IsValid() bool {
	_, ok := levelRanks[l]
	return ok
}

// Above reports whether l outranks other
func (l Level) Above(other Level) bool {
	return l.Rank() > other.Rank()
}

// ParseLevel converts a raw string into a Level
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if !l.IsValid() {
		return "", fmt.Errorf("unknown distributor level %q", s)
	}
	return l, nil
}

// Status represents a distributor account's lifecycle state
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusInactive  Status = "INACTIVE"
	StatusSuspended Status = "SUSPENDED"
)

// DistributorMetadata carries aggregate figures attached to a node
type DistributorMetadata struct {
	TotalSales float64   `json:"totalSales"`
	TeamSize   int       `json:"teamSize"`
	JoinDate   time.Time `json:"joinDate"`
	LastActive time.Time `json:"lastActive"`
}

// Distributor is a node in the distributor hierarchy.
// It is a read-only projection of the external directory: the network
// snapshot owns it wholesale and never mutates it after publication.
type Distributor struct {
	ID       string              `json:"id"`
	Level    Level               `json:"level"`
	Status   Status              `json:"status"`
	ParentID string              `json:"parentId,omitempty"` // empty for roots
	Children []string            `json:"children,omitempty"`
	Metadata DistributorMetadata `json:"metadata"`
}

// IsRoot reports whether the distributor has no parent
func (d *Distributor) IsRoot() bool {
	return d.ParentID == ""
}

// IsActive reports whether the distributor can participate in procurement
func (d *Distributor) IsActive() bool {
	return d.Status == StatusActive
}

// CanSupply reports whether this node may act as a supplier for a buyer
// at the given level. Same-level or lower-level supply is never allowed.
func (d *Distributor) CanSupply(buyerLevel Level) bool {
	return d.Level.Above(buyerLevel)
}

// Validate checks structural invariants on a single node
func (d *Distributor) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("distributor id is required")
	}
	if !d.Level.IsValid() {
		return fmt.Errorf("distributor %s has unknown level %q", d.ID, d.Level)
	}
	if d.ParentID == d.ID {
		return fmt.Errorf("distributor %s references itself as parent", d.ID)
	}
	return nil
}

// SupplyEdgeMetadata carries relationship statistics on an edge
type SupplyEdgeMetadata struct {
	TransactionCount    int           `json:"transactionCount"`
	TotalVolume         float64       `json:"totalVolume"`
	AverageResponseTime time.Duration `json:"averageResponseTime"`
}

// SupplyEdge is the directed supplier->buyer relation derived from a
// child node's ParentID. Edges are never edited independently of nodes.
type SupplyEdge struct {
	SupplierID string             `json:"supplierId"`
	BuyerID    string             `json:"buyerId"`
	Metadata   SupplyEdgeMetadata `json:"metadata"`
}

// Key returns the canonical identifier for the edge
func (e *SupplyEdge) Key() string {
	return e.SupplierID + "->" + e.BuyerID
}
