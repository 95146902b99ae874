package valueobjects

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"supplynet-backend/domain/core/entities"
)

// PathRole identifies a hop's function within a procurement path
type PathRole string

const (
	RoleBuyer        PathRole = "buyer"
	RoleIntermediate PathRole = "intermediate"
	RoleSupplier     PathRole = "supplier"
)

// PathNode is a single step in a candidate procurement path
type PathNode struct {
	UserID         string         `json:"userId"`
	Level          entities.Level `json:"level"`
	Role           PathRole       `json:"role"`
	UnitPrice      float64        `json:"unitPrice"`
	AvailableStock int            `json:"availableStock"`
	Distance       int            `json:"distance"`    // hops from the buyer
	Reliability    float64        `json:"reliability"` // 0..1
}

// PathScores holds the four normalized component scores plus the
// weighted overall score. Every component lives in [0,1], higher is better.
type PathScores struct {
	Price       float64 `json:"price"`
	Inventory   float64 `json:"inventory"`
	Length      float64 `json:"length"`
	Reliability float64 `json:"reliability"`
	Overall     float64 `json:"overall"`
}

// PathMetadata records how a path was produced
type PathMetadata struct {
	Algorithm   string              `json:"algorithm"`
	Weights     OptimizationWeights `json:"weights"`
	SearchDepth int                 `json:"searchDepth"`
	ComputedAt  time.Time           `json:"computedAt"`
}

// ProcurementPath is an ordered chain of hops from a buyer up the
// hierarchy to a qualified supplier. Paths are immutable once computed;
// they live only as long as a caller or a cache entry holds them.
type ProcurementPath struct {
	Nodes          []PathNode   `json:"nodes"`
	TotalPrice     float64      `json:"totalPrice"`
	TotalLength    int          `json:"totalLength"`
	AvailableStock int          `json:"availableStock"`
	Scores         PathScores   `json:"scores"`
	Metadata       PathMetadata `json:"metadata"`
}

// Buyer returns the first hop of the path
func (p *ProcurementPath) Buyer() (PathNode, bool) {
	if len(p.Nodes) == 0 {
		return PathNode{}, false
	}
	return p.Nodes[0], true
}

// Supplier returns the last hop of the path
func (p *ProcurementPath) Supplier() (PathNode, bool) {
	if len(p.Nodes) == 0 {
		return PathNode{}, false
	}
	return p.Nodes[len(p.Nodes)-1], true
}

// Equal reports whether two paths traverse the same nodes in the same order
func (p *ProcurementPath) Equal(other *ProcurementPath) bool {
	if other == nil || len(p.Nodes) != len(other.Nodes) {
		return false
	}
	for i := range p.Nodes {
		if p.Nodes[i].UserID != other.Nodes[i].UserID {
			return false
		}
	}
	return true
}

// Dominates reports whether p is at least as good as other on every score
// dimension and strictly better on at least one. Used for Pareto filtering.
func (p *ProcurementPath) Dominates(other *ProcurementPath) bool {
	a, b := p.Scores, other.Scores
	if a.Price < b.Price || a.Inventory < b.Inventory ||
		a.Length < b.Length || a.Reliability < b.Reliability {
		return false
	}
	return a.Price > b.Price || a.Inventory > b.Inventory ||
		a.Length > b.Length || a.Reliability > b.Reliability
}

// SearchKey builds the deterministic cache key for a path lookup.
// Options that influence the result are folded into the hash so distinct
// searches never alias.
func SearchKey(buyerID, productID string, quantity int, optionsFingerprint string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s|%s|%d|%s", buyerID, productID, quantity, optionsFingerprint)))
	return "path:" + hex.EncodeToString(sum[:16])
}
