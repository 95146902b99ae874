package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplynet-backend/domain/core/entities"
	"supplynet-backend/domain/core/valueobjects"
)

func scoredPath(supplierID string, unitPrice float64, stock, length int, reliability float64) *valueobjects.ProcurementPath {
	nodes := []valueobjects.PathNode{
		{UserID: "dist-d", Level: entities.LevelNormal, Role: valueobjects.RoleBuyer, Reliability: reliability},
	}
	for i := 1; i < length; i++ {
		nodes = append(nodes, valueobjects.PathNode{
			UserID: "mid", Level: entities.LevelStar1, Role: valueobjects.RoleIntermediate, Reliability: reliability,
		})
	}
	nodes = append(nodes, valueobjects.PathNode{
		UserID: supplierID, Level: entities.LevelStar3, Role: valueobjects.RoleSupplier,
		UnitPrice: unitPrice, AvailableStock: stock, Reliability: reliability,
	})
	return &valueobjects.ProcurementPath{
		Nodes:          nodes,
		TotalLength:    length,
		AvailableStock: stock,
	}
}

func TestPriceScore(t *testing.T) {
	scorer := NewPathScorer()

	assert.InDelta(t, 0.5, scorer.priceScore(100, 100), 1e-9, "paying the baseline scores 0.5")
	assert.Greater(t, scorer.priceScore(50, 100), 0.5, "cheaper than baseline scores above 0.5")
	assert.Less(t, scorer.priceScore(200, 100), 0.5, "dearer than baseline scores below 0.5")
	assert.Equal(t, 0.0, scorer.priceScore(0, 100), "unpriced supplier scores zero")
	assert.Equal(t, 0.0, scorer.priceScore(-5, 100))
	assert.InDelta(t, 0.5, scorer.priceScore(60, 0), 1e-9, "no baseline falls back to the path's own price")
}

func TestInventoryScoreTiers(t *testing.T) {
	scorer := NewPathScorer()

	assert.Equal(t, 1.0, scorer.inventoryScore(20, 10), "twice the quantity earns the top tier")
	assert.Equal(t, 1.0, scorer.inventoryScore(500, 10))
	assert.Equal(t, 0.8, scorer.inventoryScore(10, 10))
	assert.Equal(t, 0.8, scorer.inventoryScore(19, 10))
	assert.Equal(t, 0.3, scorer.inventoryScore(9, 10))
	assert.Equal(t, 0.0, scorer.inventoryScore(100, 0))
	assert.Equal(t, 0.0, scorer.inventoryScore(100, -1))
}

func TestLengthScoreDecay(t *testing.T) {
	scorer := NewPathScorer()

	assert.Equal(t, 1.0, scorer.lengthScore(1))
	assert.Equal(t, 1.0, scorer.lengthScore(0))
	assert.InDelta(t, 0.85, scorer.lengthScore(2), 1e-9)
	assert.InDelta(t, 0.70, scorer.lengthScore(3), 1e-9)
	assert.Equal(t, 0.0, scorer.lengthScore(20), "long chains floor at zero")
}

func TestReliabilityScoreIsMeanOfHops(t *testing.T) {
	scorer := NewPathScorer()

	path := &valueobjects.ProcurementPath{
		Nodes: []valueobjects.PathNode{
			{UserID: "a", Reliability: 1.0},
			{UserID: "b", Reliability: 0.5},
		},
	}
	assert.InDelta(t, 0.75, scorer.reliabilityScore(path), 1e-9)
	assert.Equal(t, 0.0, scorer.reliabilityScore(&valueobjects.ProcurementPath{}))
}

func TestScoreFillsComponentsAndOverall(t *testing.T) {
	scorer := NewPathScorer()
	weights := valueobjects.OptimizationWeights{Price: 0.3, Inventory: 0.25, Length: 0.2, Reliability: 0.15, Speed: 0.1}

	path := scoredPath("dist-b", 100, 20, 1, 0.9)
	scorer.Score(path, 10, 100, weights)

	assert.InDelta(t, 0.5, path.Scores.Price, 1e-9)
	assert.Equal(t, 1.0, path.Scores.Inventory)
	assert.Equal(t, 1.0, path.Scores.Length)
	assert.InDelta(t, 0.9, path.Scores.Reliability, 1e-9)

	// speed reuses the length score, so overall includes Speed*1.0 here
	expected := 0.3*0.5 + 0.25*1.0 + 0.2*1.0 + 0.15*0.9 + 0.1*1.0
	assert.InDelta(t, expected, path.Scores.Overall, 1e-9)
}

func TestScoreSkipsEmptyPath(t *testing.T) {
	scorer := NewPathScorer()

	path := &valueobjects.ProcurementPath{}
	scorer.Score(path, 10, 100, valueobjects.DefaultWeights())
	assert.Zero(t, path.Scores)
}

func TestParetoFrontDropsDominated(t *testing.T) {
	scorer := NewPathScorer()

	dominant := scoredPath("dist-b", 60, 100, 1, 0.9)
	dominant.Scores = valueobjects.PathScores{Price: 0.8, Inventory: 1.0, Length: 1.0, Reliability: 0.9}

	dominated := scoredPath("dist-c", 80, 100, 1, 0.9)
	dominated.Scores = valueobjects.PathScores{Price: 0.6, Inventory: 1.0, Length: 1.0, Reliability: 0.9}

	tradeoff := scoredPath("dist-e", 40, 5, 1, 0.9)
	tradeoff.Scores = valueobjects.PathScores{Price: 0.9, Inventory: 0.3, Length: 1.0, Reliability: 0.9}

	front := scorer.ParetoFront([]*valueobjects.ProcurementPath{dominant, dominated, tradeoff})
	require.Len(t, front, 2)
	assert.Contains(t, front, dominant)
	assert.Contains(t, front, tradeoff)
}

func TestParetoFrontKeepsEqualScores(t *testing.T) {
	scorer := NewPathScorer()

	a := scoredPath("dist-b", 60, 100, 1, 0.9)
	a.Scores = valueobjects.PathScores{Price: 0.8, Inventory: 1.0, Length: 1.0, Reliability: 0.9}
	b := scoredPath("dist-c", 60, 100, 1, 0.9)
	b.Scores = a.Scores

	front := scorer.ParetoFront([]*valueobjects.ProcurementPath{a, b})
	assert.Len(t, front, 2, "ties dominate in neither direction")
}

func TestRankByOverallScore(t *testing.T) {
	scorer := NewPathScorer()

	best := scoredPath("dist-z", 60, 100, 2, 0.9)
	best.Scores.Overall = 0.9

	shorter := scoredPath("dist-m", 70, 100, 1, 0.9)
	shorter.Scores.Overall = 0.7

	longer := scoredPath("dist-a", 70, 100, 2, 0.9)
	longer.Scores.Overall = 0.7

	paths := []*valueobjects.ProcurementPath{longer, best, shorter}
	scorer.RankByOverallScore(paths)

	assert.Same(t, best, paths[0])
	assert.Same(t, shorter, paths[1], "equal overall breaks on shorter length")
	assert.Same(t, longer, paths[2])
}

func TestRankByOverallScoreLexicalTiebreak(t *testing.T) {
	scorer := NewPathScorer()

	second := scoredPath("dist-b", 60, 100, 1, 0.9)
	second.Scores.Overall = 0.7
	first := scoredPath("dist-a", 60, 100, 1, 0.9)
	first.Scores.Overall = 0.7

	paths := []*valueobjects.ProcurementPath{second, first}
	scorer.RankByOverallScore(paths)

	assert.Same(t, first, paths[0], "equal score and length break on supplier id")
	assert.Same(t, second, paths[1])
}
