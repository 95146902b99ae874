package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"supplynet-backend/application/ports"
	"supplynet-backend/domain/core/valueobjects"
	apperrors "supplynet-backend/pkg/errors"
)

// fakeAuthorizer approves everything unless told otherwise
type fakeAuthorizer struct {
	mu     sync.Mutex
	denied map[string][]string // sellerID -> denial reasons
	err    error
}

func (a *fakeAuthorizer) deny(sellerID string, reasons ...string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.denied == nil {
		a.denied = map[string][]string{}
	}
	a.denied[sellerID] = reasons
}

func (a *fakeAuthorizer) ValidatePurchasePermission(ctx context.Context, buyerID, sellerID, productID string, quantity int) (ports.PermissionDecision, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.err != nil {
		return ports.PermissionDecision{}, a.err
	}
	if reasons, ok := a.denied[sellerID]; ok {
		return ports.PermissionDecision{Allowed: false, Reasons: reasons}, nil
	}
	return ports.PermissionDecision{Allowed: true}, nil
}

// fakeOrderService creates sequential orders and records metadata attachments
type fakeOrderService struct {
	mu          sync.Mutex
	orders      []*ports.Order
	attached    map[string]bool
	createErr   error
	metadataErr error
}

func (o *fakeOrderService) CreatePurchaseOrder(ctx context.Context, buyerID, sellerID, productID string, quantity int) (*ports.Order, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.createErr != nil {
		return nil, o.createErr
	}
	order := &ports.Order{
		ID:        fmt.Sprintf("order-%d", len(o.orders)+1),
		BuyerID:   buyerID,
		SellerID:  sellerID,
		ProductID: productID,
		Quantity:  quantity,
		Status:    "CREATED",
		CreatedAt: time.Now(),
	}
	o.orders = append(o.orders, order)
	return order, nil
}

func (o *fakeOrderService) AttachPathMetadata(ctx context.Context, orderID string, path *valueobjects.ProcurementPath) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.metadataErr != nil {
		return o.metadataErr
	}
	if o.attached == nil {
		o.attached = map[string]bool{}
	}
	o.attached[orderID] = true
	return nil
}

type procurementFixture struct {
	*finderFixture
	service    *ProcurementService
	authorizer *fakeAuthorizer
	orders     *fakeOrderService
	bus        *fakeEventBus
}

func newProcurementFixture(t *testing.T) *procurementFixture {
	t.Helper()

	fx := newFinderFixture(t)
	authorizer := &fakeAuthorizer{}
	orders := &fakeOrderService{}
	bus := &fakeEventBus{}

	service := NewProcurementService(
		fx.finder,
		fx.finder.builder,
		authorizer,
		orders,
		bus,
		map[string]CacheStatsSource{"paths": fx.cache},
		nil,
		BatchConfig{InterBatchPause: time.Millisecond},
		nil,
		nil,
		zap.NewNop(),
	)
	return &procurementFixture{
		finderFixture: fx,
		service:       service,
		authorizer:    authorizer,
		orders:        orders,
		bus:           bus,
	}
}

func TestIntelligentPurchaseCreatesOrder(t *testing.T) {
	fx := newProcurementFixture(t)

	result, err := fx.service.IntelligentPurchase(context.Background(), PurchaseRequest{
		BuyerID:   "dist-d",
		ProductID: "prod-1",
		Quantity:  10,
	})
	require.NoError(t, err)

	require.NotNil(t, result.Order)
	assert.Equal(t, "dist-d", result.Order.BuyerID)
	assert.Equal(t, "dist-b", result.Order.SellerID)
	assert.Equal(t, 10, result.Order.Quantity)
	assert.True(t, result.Validation.IsValid)
	assert.False(t, result.Fallback)

	assert.True(t, fx.orders.attached[result.Order.ID])
	assert.Contains(t, fx.bus.eventTypes(), "purchase.completed")
}

func TestIntelligentPurchasePermissionDenied(t *testing.T) {
	fx := newProcurementFixture(t)
	fx.authorizer.deny("dist-b", "supplier blacklisted for buyer")

	_, err := fx.service.IntelligentPurchase(context.Background(), PurchaseRequest{
		BuyerID:   "dist-d",
		ProductID: "prod-1",
		Quantity:  10,
	})
	assert.True(t, apperrors.IsPermissionDenied(err))
	assert.Empty(t, fx.orders.orders)
}

func TestIntelligentPurchaseMetadataFailureDoesNotFail(t *testing.T) {
	fx := newProcurementFixture(t)
	fx.orders.metadataErr = errors.New("metadata store down")

	result, err := fx.service.IntelligentPurchase(context.Background(), PurchaseRequest{
		BuyerID:   "dist-d",
		ProductID: "prod-1",
		Quantity:  10,
	})
	require.NoError(t, err)
	assert.NotNil(t, result.Order)
}

func TestIntelligentPurchaseHonorsPreferredSupplier(t *testing.T) {
	fx := newProcurementFixture(t)

	// At quantity 2 the optimizer ranks dist-c first; preferring dist-b
	// must override that ranking.
	result, err := fx.service.IntelligentPurchase(context.Background(), PurchaseRequest{
		BuyerID:             "dist-d",
		ProductID:           "prod-1",
		Quantity:            2,
		PreferredSupplierID: "dist-b",
	})
	require.NoError(t, err)
	assert.Equal(t, "dist-b", result.Order.SellerID)
	assert.False(t, result.Fallback)
}

func TestIntelligentPurchaseFallsBackWhenPreferredNotViable(t *testing.T) {
	fx := newProcurementFixture(t)

	// dist-c holds only 5 units, so it never appears among candidates for
	// 10; the purchase must fall back to full optimization.
	result, err := fx.service.IntelligentPurchase(context.Background(), PurchaseRequest{
		BuyerID:             "dist-d",
		ProductID:           "prod-1",
		Quantity:            10,
		PreferredSupplierID: "dist-c",
	})
	require.NoError(t, err)
	assert.Equal(t, "dist-b", result.Order.SellerID)
	assert.True(t, result.Fallback)
}

func TestIntelligentPurchaseFallsBackWhenPreferredDenied(t *testing.T) {
	fx := newProcurementFixture(t)
	fx.authorizer.deny("dist-b", "quota exceeded")

	// Preferred dist-b is denied; optimization picks dist-c instead
	result, err := fx.service.IntelligentPurchase(context.Background(), PurchaseRequest{
		BuyerID:             "dist-d",
		ProductID:           "prod-1",
		Quantity:            2,
		PreferredSupplierID: "dist-b",
	})
	require.NoError(t, err)
	assert.Equal(t, "dist-c", result.Order.SellerID)
	assert.True(t, result.Fallback)
}

func TestBatchIntelligentPurchaseIsolatesFailures(t *testing.T) {
	fx := newProcurementFixture(t)

	results := fx.service.BatchIntelligentPurchase(context.Background(), []PurchaseRequest{
		{BuyerID: "dist-d", ProductID: "prod-1", Quantity: 2},
		{BuyerID: "ghost", ProductID: "prod-1", Quantity: 2},
		{BuyerID: "dist-c", ProductID: "prod-1", Quantity: 2},
	})

	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.False(t, results[1].Success)
	assert.NotEmpty(t, results[1].Message)
	assert.True(t, results[2].Success)
	assert.Equal(t, 1, results[1].Index)
}

func TestBatchIntelligentPurchaseLargeInput(t *testing.T) {
	fx := newProcurementFixture(t)

	requests := make([]PurchaseRequest, 25)
	for i := range requests {
		requests[i] = PurchaseRequest{BuyerID: "dist-d", ProductID: "prod-1", Quantity: 2}
	}

	results := fx.service.BatchIntelligentPurchase(context.Background(), requests)
	require.Len(t, results, 25)
	for i, r := range results {
		assert.True(t, r.Success, "request %d", i)
		assert.Equal(t, i, r.Index)
	}
}

func TestUpdateBatchConfigTakesEffect(t *testing.T) {
	fx := newProcurementFixture(t)

	fx.service.UpdateBatchConfig(BatchConfig{BatchSize: 3, Workers: 2, InterBatchPause: 0})

	cfg := fx.service.batchConfig()
	assert.Equal(t, 3, cfg.BatchSize)
	assert.Equal(t, 2, cfg.Workers)
	assert.Equal(t, time.Duration(0), cfg.InterBatchPause)

	// Zeroed knobs fall back to the defaults instead of stalling the batcher
	fx.service.UpdateBatchConfig(BatchConfig{})
	cfg = fx.service.batchConfig()
	assert.Equal(t, DefaultBatchSize, cfg.BatchSize)
	assert.Equal(t, DefaultBatchWorkers, cfg.Workers)

	// Batches still complete under the reconfigured pool
	fx.service.UpdateBatchConfig(BatchConfig{BatchSize: 2, Workers: 1})
	results := fx.service.BatchIntelligentPurchase(context.Background(), []PurchaseRequest{
		{BuyerID: "dist-d", ProductID: "prod-1", Quantity: 2},
		{BuyerID: "dist-d", ProductID: "prod-1", Quantity: 2},
		{BuyerID: "dist-d", ProductID: "prod-1", Quantity: 2},
	})
	require.Len(t, results, 3)
	for i, r := range results {
		assert.True(t, r.Success, "request %d", i)
	}
}

func TestGetPurchaseSuggestionsRanksWithRationale(t *testing.T) {
	fx := newProcurementFixture(t)

	suggestions, err := fx.service.GetPurchaseSuggestions(context.Background(), "dist-d", "prod-1", 2, 3)
	require.NoError(t, err)
	require.NotEmpty(t, suggestions)

	for i, s := range suggestions {
		assert.Equal(t, i+1, s.Rank)
		assert.NotEmpty(t, s.Rationale)
	}
	for i := 1; i < len(suggestions); i++ {
		assert.GreaterOrEqual(t,
			suggestions[i-1].Path.Scores.Overall,
			suggestions[i].Path.Scores.Overall)
	}
}

func TestSimulatePurchaseImpact(t *testing.T) {
	fx := newProcurementFixture(t)

	report, err := fx.service.SimulatePurchaseImpact(context.Background(), PurchaseRequest{
		BuyerID:   "dist-d",
		ProductID: "prod-1",
		Quantity:  10,
	})
	require.NoError(t, err)

	supplier, _ := report.Path.Supplier()
	assert.Equal(t, "dist-b", supplier.UserID)

	// dist-c sits between buyer and supplier and earns the hop commission
	require.Len(t, report.Commissions, 1)
	assert.Equal(t, "dist-c", report.Commissions[0].UserID)
	assert.InDelta(t, 0.02*600.0, report.Commissions[0].Amount, 1e-9)
	assert.InDelta(t, report.Commissions[0].Amount, report.TotalCommission, 1e-9)

	assert.InDelta(t, 0.5, report.NetworkEfficiency, 1e-9)
	assert.Greater(t, report.Confidence, 0.0)

	// No order was created
	assert.Empty(t, fx.orders.orders)
}

func TestWarmupCacheSkipsFailures(t *testing.T) {
	fx := newProcurementFixture(t)

	warmed := fx.service.WarmupCache(context.Background(), []WarmupRequest{
		{BuyerID: "dist-d", ProductID: "prod-1", Quantity: 2},
		{BuyerID: "ghost", ProductID: "prod-1", Quantity: 2},
	})
	assert.Equal(t, 1, warmed)
	assert.Equal(t, 1, fx.cache.Size())
}

func TestGetPerformanceMetrics(t *testing.T) {
	fx := newProcurementFixture(t)

	_, err := fx.service.IntelligentPurchase(context.Background(), PurchaseRequest{
		BuyerID:   "dist-d",
		ProductID: "prod-1",
		Quantity:  10,
	})
	require.NoError(t, err)

	report := fx.service.GetPerformanceMetrics()
	assert.True(t, report.Network.Built)
	assert.Equal(t, 4, report.Network.Nodes)
	assert.Contains(t, report.Caches, "paths")
}

func TestHealthCheck(t *testing.T) {
	fx := newProcurementFixture(t)

	// Before any build the service is degraded
	report := fx.service.HealthCheck(context.Background())
	assert.Equal(t, "degraded", report.Status)

	_, err := fx.service.IntelligentPurchase(context.Background(), PurchaseRequest{
		BuyerID:   "dist-d",
		ProductID: "prod-1",
		Quantity:  10,
	})
	require.NoError(t, err)

	report = fx.service.HealthCheck(context.Background())
	assert.Equal(t, "healthy", report.Status)
	assert.Equal(t, "ok", report.Checks["network"])
}

type stubBreaker struct{ state string }

func (b *stubBreaker) State() string { return b.state }

func TestHealthCheckReportsOpenBreaker(t *testing.T) {
	fx := newProcurementFixture(t)
	fx.service.breakers = map[string]BreakerStateSource{
		"prices":    &stubBreaker{state: "open"},
		"inventory": &stubBreaker{state: "closed"},
	}

	_, err := fx.service.IntelligentPurchase(context.Background(), PurchaseRequest{
		BuyerID:   "dist-d",
		ProductID: "prod-1",
		Quantity:  10,
	})
	require.NoError(t, err)

	report := fx.service.HealthCheck(context.Background())
	assert.Equal(t, "degraded", report.Status)
	assert.Equal(t, "open", report.Checks["breaker.prices"])
	assert.Equal(t, "closed", report.Checks["breaker.inventory"])
}

func TestUpdateNetworkReportsNewSnapshot(t *testing.T) {
	fx := newProcurementFixture(t)

	_, err := fx.service.IntelligentPurchase(context.Background(), PurchaseRequest{
		BuyerID:   "dist-d",
		ProductID: "prod-1",
		Quantity:  10,
	})
	require.NoError(t, err)

	records := chainRecords()
	records[2].Level = "STAR_2"
	fx.directory.setRecords(records)

	status, err := fx.service.UpdateNetwork(context.Background(), []string{"dist-c"})
	require.NoError(t, err)
	assert.True(t, status.Built)
	assert.Equal(t, int64(2), status.Version)
	assert.Equal(t, 4, status.Nodes)
}
