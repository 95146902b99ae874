// Package services holds pure domain services for the procurement path
// optimizer: scoring candidate paths and validating them against the
// hierarchy's business rules.
package services

import (
	"sort"

	"supplynet-backend/domain/core/valueobjects"
)

// lengthDecayPerHop is the linear penalty applied per hop beyond the first
const lengthDecayPerHop = 0.15

// PathScorer computes normalized per-dimension scores and the weighted
// overall score for candidate procurement paths.
type PathScorer struct{}

// NewPathScorer creates a path scorer
func NewPathScorer() *PathScorer {
	return &PathScorer{}
}

// Score fills in the component and overall scores of a path.
//
// Every component is normalized to [0,1], higher is better. referencePrice
// is the baseline unit price used to normalize cost; when it is not
// positive the path's own price is used, which yields a neutral score.
func (s *PathScorer) Score(path *valueobjects.ProcurementPath, quantity int, referencePrice float64, weights valueobjects.OptimizationWeights) {
	supplier, ok := path.Supplier()
	if !ok {
		return
	}

	scores := valueobjects.PathScores{
		Price:       s.priceScore(supplier.UnitPrice, referencePrice),
		Inventory:   s.inventoryScore(path.AvailableStock, quantity),
		Length:      s.lengthScore(path.TotalLength),
		Reliability: s.reliabilityScore(path),
	}
	scores.Overall = weights.Price*scores.Price +
		weights.Inventory*scores.Inventory +
		weights.Length*scores.Length +
		weights.Reliability*scores.Reliability +
		weights.Speed*s.speedScore(path)

	path.Scores = scores
}

// priceScore is the inverse of normalized cost relative to the baseline:
// paying the baseline scores 0.5, half the baseline approaches 1.0,
// anything above the baseline decays toward 0.
func (s *PathScorer) priceScore(unitPrice, referencePrice float64) float64 {
	if unitPrice <= 0 {
		return 0
	}
	if referencePrice <= 0 {
		referencePrice = unitPrice
	}
	return clamp01(referencePrice / (unitPrice + referencePrice))
}

// inventoryScore rewards headroom over the requested quantity
func (s *PathScorer) inventoryScore(availableStock, quantity int) float64 {
	switch {
	case quantity <= 0:
		return 0
	case availableStock >= 2*quantity:
		return 1.0
	case availableStock >= quantity:
		return 0.8
	default:
		return 0.3
	}
}

// lengthScore decays linearly with hop count, floored at 0
func (s *PathScorer) lengthScore(totalLength int) float64 {
	if totalLength <= 1 {
		return 1.0
	}
	return clamp01(1.0 - float64(totalLength-1)*lengthDecayPerHop)
}

// reliabilityScore is the mean of per-hop reliability
func (s *PathScorer) reliabilityScore(path *valueobjects.ProcurementPath) float64 {
	if len(path.Nodes) == 0 {
		return 0
	}
	var sum float64
	for _, node := range path.Nodes {
		sum += node.Reliability
	}
	return clamp01(sum / float64(len(path.Nodes)))
}

// speedScore proxies expected fulfilment speed by path length; shorter
// chains ship with fewer handoffs.
func (s *PathScorer) speedScore(path *valueobjects.ProcurementPath) float64 {
	return s.lengthScore(path.TotalLength)
}

// ParetoFront returns the subset of paths not dominated by any other path:
// a path is excluded if some other path is at least as good on every score
// dimension and strictly better on at least one.
func (s *PathScorer) ParetoFront(paths []*valueobjects.ProcurementPath) []*valueobjects.ProcurementPath {
	front := make([]*valueobjects.ProcurementPath, 0, len(paths))
	for i, candidate := range paths {
		dominated := false
		for j, other := range paths {
			if i == j {
				continue
			}
			if other.Dominates(candidate) {
				dominated = true
				break
			}
		}
		if !dominated {
			front = append(front, candidate)
		}
	}
	return front
}

// RankByOverallScore sorts paths by overall score descending, breaking ties
// by shorter path first and then lexical supplier id for determinism.
func (s *PathScorer) RankByOverallScore(paths []*valueobjects.ProcurementPath) {
	sort.SliceStable(paths, func(i, j int) bool {
		if paths[i].Scores.Overall != paths[j].Scores.Overall {
			return paths[i].Scores.Overall > paths[j].Scores.Overall
		}
		if paths[i].TotalLength != paths[j].TotalLength {
			return paths[i].TotalLength < paths[j].TotalLength
		}
		si, _ := paths[i].Supplier()
		sj, _ := paths[j].Supplier()
		return si.UserID < sj.UserID
	})
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
