package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplynet-backend/domain/core/aggregates"
	"supplynet-backend/domain/core/entities"
	"supplynet-backend/domain/core/valueobjects"
)

func validatorNetwork(t *testing.T) *aggregates.Network {
	t.Helper()
	network, err := aggregates.NewNetwork([]*entities.Distributor{
		{ID: "dist-a", Level: entities.LevelDirector, Status: entities.StatusActive},
		{ID: "dist-b", Level: entities.LevelStar3, Status: entities.StatusActive, ParentID: "dist-a"},
		{ID: "dist-c", Level: entities.LevelStar1, Status: entities.StatusActive, ParentID: "dist-b"},
		{ID: "dist-d", Level: entities.LevelNormal, Status: entities.StatusActive, ParentID: "dist-c"},
	}, 1)
	require.NoError(t, err)
	return network
}

func validPath() *valueobjects.ProcurementPath {
	return &valueobjects.ProcurementPath{
		Nodes: []valueobjects.PathNode{
			{UserID: "dist-d", Level: entities.LevelNormal, Role: valueobjects.RoleBuyer},
			{UserID: "dist-b", Level: entities.LevelStar3, Role: valueobjects.RoleSupplier, UnitPrice: 60, AvailableStock: 50},
		},
		TotalLength:    1,
		AvailableStock: 50,
	}
}

func TestValidatePathAccepts(t *testing.T) {
	validator := NewPathValidator()

	report := validator.ValidatePath(validatorNetwork(t), validPath(), "dist-d", 10)

	assert.True(t, report.IsValid)
	assert.True(t, report.IsComplete)
	assert.True(t, report.HasValidPermissions)
	assert.True(t, report.HasSufficientStock)
	assert.True(t, report.HasValidPrice)
	assert.Empty(t, report.Reasons)
	assert.Empty(t, report.Warnings)
	assert.False(t, report.ValidatedAt.IsZero())
}

func TestValidatePathRejectsEmptyPath(t *testing.T) {
	validator := NewPathValidator()

	report := validator.ValidatePath(nil, &valueobjects.ProcurementPath{}, "dist-d", 10)

	assert.False(t, report.IsValid)
	assert.False(t, report.IsComplete)
	assert.NotEmpty(t, report.Reasons)
}

func TestValidatePathRejectsWrongBuyer(t *testing.T) {
	validator := NewPathValidator()

	report := validator.ValidatePath(nil, validPath(), "dist-x", 10)

	assert.False(t, report.IsValid)
	assert.False(t, report.IsComplete)
}

func TestValidatePathRejectsWrongRoles(t *testing.T) {
	validator := NewPathValidator()

	badFirst := validPath()
	badFirst.Nodes[0].Role = valueobjects.RoleIntermediate
	report := validator.ValidatePath(nil, badFirst, "dist-d", 10)
	assert.False(t, report.IsComplete)

	badLast := validPath()
	badLast.Nodes[1].Role = valueobjects.RoleIntermediate
	report = validator.ValidatePath(nil, badLast, "dist-d", 10)
	assert.False(t, report.IsComplete)
}

func TestValidatePathRejectsNonAscendingLevels(t *testing.T) {
	validator := NewPathValidator()

	flat := validPath()
	flat.Nodes[1].Level = entities.LevelNormal
	report := validator.ValidatePath(nil, flat, "dist-d", 10)
	assert.False(t, report.HasValidPermissions)

	descending := validPath()
	descending.Nodes[0].Level = entities.LevelStar3
	descending.Nodes[1].Level = entities.LevelStar1
	report = validator.ValidatePath(nil, descending, "dist-d", 10)
	assert.False(t, report.HasValidPermissions)
}

func TestValidatePathRejectsSingleHop(t *testing.T) {
	validator := NewPathValidator()

	// one node can be both first and last hop but never a supply relation
	solo := &valueobjects.ProcurementPath{
		Nodes: []valueobjects.PathNode{
			{UserID: "dist-d", Level: entities.LevelNormal, Role: valueobjects.RoleBuyer},
		},
	}
	solo.Nodes[0].Role = valueobjects.RoleBuyer
	report := validator.ValidatePath(nil, solo, "dist-d", 10)
	assert.False(t, report.HasValidPermissions)
}

func TestValidatePathRejectsBadQuantity(t *testing.T) {
	validator := NewPathValidator()

	report := validator.ValidatePath(nil, validPath(), "dist-d", 0)
	assert.False(t, report.HasSufficientStock)

	report = validator.ValidatePath(nil, validPath(), "dist-d", -3)
	assert.False(t, report.HasSufficientStock)
}

func TestValidatePathRejectsInsufficientStock(t *testing.T) {
	validator := NewPathValidator()

	report := validator.ValidatePath(nil, validPath(), "dist-d", 500)
	assert.False(t, report.IsValid)
	assert.False(t, report.HasSufficientStock)
	assert.True(t, report.IsComplete)
	assert.True(t, report.HasValidPrice)
}

func TestValidatePathRejectsNonPositivePrice(t *testing.T) {
	validator := NewPathValidator()

	free := validPath()
	free.Nodes[1].UnitPrice = 0
	report := validator.ValidatePath(nil, free, "dist-d", 10)
	assert.False(t, report.HasValidPrice)
	assert.False(t, report.IsValid)
}

func TestValidatePathWarnsOnContinuityMismatch(t *testing.T) {
	validator := NewPathValidator()

	// dist-x is not in the snapshot at all, so it cannot be an ancestor
	stale := validPath()
	stale.Nodes[1].UserID = "dist-x"
	stale.Nodes[1].Level = entities.LevelStar3

	report := validator.ValidatePath(validatorNetwork(t), stale, "dist-d", 10)

	assert.True(t, report.IsValid, "continuity mismatch warns, never blocks")
	assert.NotEmpty(t, report.Warnings)
}

func TestValidatePathSkipsContinuityWithoutNetwork(t *testing.T) {
	validator := NewPathValidator()

	stale := validPath()
	stale.Nodes[1].UserID = "dist-x"
	stale.Nodes[1].Level = entities.LevelStar3

	report := validator.ValidatePath(nil, stale, "dist-d", 10)

	assert.True(t, report.IsValid)
	assert.Empty(t, report.Warnings)
}

func TestValidatePathAcceptsIndirectAncestor(t *testing.T) {
	validator := NewPathValidator()

	// dist-a is two levels above dist-d; the ancestor walk covers it
	long := &valueobjects.ProcurementPath{
		Nodes: []valueobjects.PathNode{
			{UserID: "dist-d", Level: entities.LevelNormal, Role: valueobjects.RoleBuyer},
			{UserID: "dist-a", Level: entities.LevelDirector, Role: valueobjects.RoleSupplier, UnitPrice: 40, AvailableStock: 100},
		},
		TotalLength:    1,
		AvailableStock: 100,
	}

	report := validator.ValidatePath(validatorNetwork(t), long, "dist-d", 10)
	assert.True(t, report.IsValid)
	assert.Empty(t, report.Warnings)
}
