package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelRankOrdering(t *testing.T) {
	ordered := []Level{
		LevelNormal, LevelVIP, LevelStar1, LevelStar2,
		LevelStar3, LevelStar4, LevelStar5, LevelDirector,
	}
	for i := 1; i < len(ordered); i++ {
		assert.True(t, ordered[i].Above(ordered[i-1]),
			"%s should outrank %s", ordered[i], ordered[i-1])
		assert.False(t, ordered[i-1].Above(ordered[i]))
	}
	assert.False(t, LevelStar2.Above(LevelStar2))
}

func TestLevelRankUnknown(t *testing.T) {
	assert.Equal(t, -1, Level("GOLD").Rank())
	assert.False(t, Level("GOLD").IsValid())
}

func TestParseLevel(t *testing.T) {
	level, err := ParseLevel("STAR_3")
	require.NoError(t, err)
	assert.Equal(t, LevelStar3, level)

	_, err = ParseLevel("PLATINUM")
	assert.Error(t, err)
}

func TestDistributorCanSupply(t *testing.T) {
	supplier := &Distributor{ID: "sup", Level: LevelStar3}

	assert.True(t, supplier.CanSupply(LevelNormal))
	assert.True(t, supplier.CanSupply(LevelStar2))
	assert.False(t, supplier.CanSupply(LevelStar3), "same level supply is not allowed")
	assert.False(t, supplier.CanSupply(LevelDirector))
}

func TestDistributorStatus(t *testing.T) {
	active := &Distributor{ID: "a", Level: LevelNormal, Status: StatusActive}
	suspended := &Distributor{ID: "b", Level: LevelNormal, Status: StatusSuspended}

	assert.True(t, active.IsActive())
	assert.False(t, suspended.IsActive())
}

func TestDistributorIsRoot(t *testing.T) {
	root := &Distributor{ID: "root", Level: LevelDirector}
	child := &Distributor{ID: "child", Level: LevelNormal, ParentID: "root"}

	assert.True(t, root.IsRoot())
	assert.False(t, child.IsRoot())
}

func TestDistributorValidate(t *testing.T) {
	valid := &Distributor{ID: "d-1", Level: LevelStar1, Status: StatusActive}
	assert.NoError(t, valid.Validate())

	missingID := &Distributor{Level: LevelStar1}
	assert.Error(t, missingID.Validate())

	badLevel := &Distributor{ID: "d-2", Level: "GOLD"}
	assert.Error(t, badLevel.Validate())

	selfParent := &Distributor{ID: "d-3", Level: LevelStar1, ParentID: "d-3"}
	assert.Error(t, selfParent.Validate())
}

func TestSupplyEdgeKey(t *testing.T) {
	edge := &SupplyEdge{SupplierID: "sup", BuyerID: "buy"}
	assert.Equal(t, "sup->buy", edge.Key())
}
