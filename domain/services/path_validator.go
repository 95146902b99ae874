package services

import (
	"fmt"
	"time"

	"supplynet-backend/domain/core/aggregates"
	"supplynet-backend/domain/core/valueobjects"
)

// ValidationReport is the structured result of validating a procurement
// path. IsValid is the conjunction of the four blocking checks; warnings
// are informational and never block.
type ValidationReport struct {
	IsValid             bool          `json:"isValid"`
	IsComplete          bool          `json:"isComplete"`
	HasValidPermissions bool          `json:"hasValidPermissions"`
	HasSufficientStock  bool          `json:"hasSufficientStock"`
	HasValidPrice       bool          `json:"hasValidPrice"`
	Reasons             []string      `json:"reasons,omitempty"`
	Warnings            []string      `json:"warnings,omitempty"`
	ValidatedAt         time.Time     `json:"validatedAt"`
	Duration            time.Duration `json:"duration"`
}

// PathValidator enforces the level-ordering, stock-sufficiency, and
// connectivity invariants on candidate paths.
type PathValidator struct{}

// NewPathValidator creates a path validator
func NewPathValidator() *PathValidator {
	return &PathValidator{}
}

// ValidatePath checks a path for the given buyer and quantity against the
// current network snapshot. A nil network skips only the continuity check.
func (v *PathValidator) ValidatePath(network *aggregates.Network, path *valueobjects.ProcurementPath, buyerID string, quantity int) ValidationReport {
	start := time.Now()
	report := ValidationReport{ValidatedAt: start}

	report.IsComplete = v.checkCompleteness(path, buyerID, &report)
	report.HasValidPermissions = v.checkLevelOrdering(path, &report)
	report.HasSufficientStock = v.checkStock(path, quantity, &report)
	report.HasValidPrice = v.checkPrice(path, &report)
	v.checkContinuity(network, path, &report)

	report.IsValid = report.IsComplete && report.HasValidPermissions &&
		report.HasSufficientStock && report.HasValidPrice
	report.Duration = time.Since(start)
	return report
}

// checkCompleteness verifies the path starts at the buyer and ends at a
// supplier-role hop.
func (v *PathValidator) checkCompleteness(path *valueobjects.ProcurementPath, buyerID string, report *ValidationReport) bool {
	first, ok := path.Buyer()
	if !ok {
		report.Reasons = append(report.Reasons, "path has no hops")
		return false
	}
	if first.UserID != buyerID {
		report.Reasons = append(report.Reasons, fmt.Sprintf("path starts at %q, expected buyer %q", first.UserID, buyerID))
		return false
	}
	if first.Role != valueobjects.RoleBuyer {
		report.Reasons = append(report.Reasons, "first hop does not carry the buyer role")
		return false
	}
	last, _ := path.Supplier()
	if last.Role != valueobjects.RoleSupplier {
		report.Reasons = append(report.Reasons, "last hop does not carry the supplier role")
		return false
	}
	return true
}

// checkLevelOrdering verifies level rank strictly increases at every hop.
// Same-level or lower-level purchase is always invalid.
func (v *PathValidator) checkLevelOrdering(path *valueobjects.ProcurementPath, report *ValidationReport) bool {
	for i := 1; i < len(path.Nodes); i++ {
		prev, curr := path.Nodes[i-1], path.Nodes[i]
		if curr.Level.Rank() <= prev.Level.Rank() {
			report.Reasons = append(report.Reasons, fmt.Sprintf(
				"hop %s(%s) -> %s(%s) does not ascend level rank",
				prev.UserID, prev.Level, curr.UserID, curr.Level))
			return false
		}
	}
	return len(path.Nodes) >= 2
}

// checkStock verifies the supplier holds at least the requested quantity
func (v *PathValidator) checkStock(path *valueobjects.ProcurementPath, quantity int, report *ValidationReport) bool {
	if quantity <= 0 {
		report.Reasons = append(report.Reasons, "requested quantity must be positive")
		return false
	}
	if path.AvailableStock < quantity {
		report.Reasons = append(report.Reasons, fmt.Sprintf(
			"supplier stock %d is below requested quantity %d", path.AvailableStock, quantity))
		return false
	}
	return true
}

// checkPrice verifies the supplier's unit price is positive
func (v *PathValidator) checkPrice(path *valueobjects.ProcurementPath, report *ValidationReport) bool {
	supplier, ok := path.Supplier()
	if !ok || supplier.UnitPrice <= 0 {
		report.Reasons = append(report.Reasons, "supplier unit price must be positive")
		return false
	}
	return true
}

// continuityWalkLimit bounds the ancestor walk during the continuity check
const continuityWalkLimit = 64

// checkContinuity emits a non-blocking warning when the snapshot's
// connectivity index disagrees with the path's assumed parent chain.
// A mismatch usually means the path came from a stale cache entry.
func (v *PathValidator) checkContinuity(network *aggregates.Network, path *valueobjects.ProcurementPath, report *ValidationReport) {
	if network == nil {
		return
	}
	for i := 1; i < len(path.Nodes); i++ {
		lower, upper := path.Nodes[i-1], path.Nodes[i]
		if !v.isAncestor(network, upper.UserID, lower.UserID) {
			report.Warnings = append(report.Warnings, fmt.Sprintf(
				"%s is not an ancestor of %s in the current snapshot; path may be stale",
				upper.UserID, lower.UserID))
		}
	}
}

// isAncestor reports whether ancestorID sits on descendantID's parent chain
func (v *PathValidator) isAncestor(network *aggregates.Network, ancestorID, descendantID string) bool {
	if network.AreConnected(ancestorID, descendantID) {
		return true
	}
	for _, node := range network.AncestorChain(descendantID, continuityWalkLimit) {
		if node.ID == ancestorID {
			return true
		}
	}
	return false
}
