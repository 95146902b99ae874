package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"supplynet-backend/application/ports"
	"supplynet-backend/domain/core/entities"
	"supplynet-backend/domain/core/valueobjects"
	"supplynet-backend/domain/events"
	domainservices "supplynet-backend/domain/services"
	"supplynet-backend/pkg/cache"
	apperrors "supplynet-backend/pkg/errors"
	"supplynet-backend/pkg/observability"
)

// Batch processing defaults
const (
	DefaultBatchSize       = 10
	DefaultBatchWorkers    = 4
	DefaultInterBatchPause = 100 * time.Millisecond
)

// commissionRatePerHop is the share of the order total each intermediate
// on the supply chain earns when an order flows through it.
const commissionRatePerHop = 0.02

// strongScoreThreshold marks a score dimension worth calling out in a
// suggestion rationale.
const strongScoreThreshold = 0.8

// PurchaseRequest describes one intelligent purchase
type PurchaseRequest struct {
	BuyerID             string
	ProductID           string
	Quantity            int
	PreferredSupplierID string
	Options             SearchOptions
}

// PurchaseResult is the outcome of a successful intelligent purchase
type PurchaseResult struct {
	Order      *ports.Order                    `json:"order"`
	Path       *valueobjects.ProcurementPath   `json:"path"`
	Validation domainservices.ValidationReport `json:"validation"`
	Fallback   bool                            `json:"fallback"` // preferred supplier was replaced by optimization
}

// BatchItemResult is one request's outcome inside a batch; the result array
// is index-aligned with the request array.
type BatchItemResult struct {
	Index   int             `json:"index"`
	Success bool            `json:"success"`
	Result  *PurchaseResult `json:"result,omitempty"`
	Message string          `json:"message,omitempty"`
}

// Suggestion is one ranked purchase alternative with its rationale
type Suggestion struct {
	Rank      int                           `json:"rank"`
	Path      *valueobjects.ProcurementPath `json:"path"`
	Rationale []string                      `json:"rationale"`
}

// HopCommission is one intermediate's projected earning from a purchase
type HopCommission struct {
	UserID string         `json:"userId"`
	Level  entities.Level `json:"level"`
	Rate   float64        `json:"rate"`
	Amount float64        `json:"amount"`
}

// SimulationReport projects a purchase's downstream effects without
// creating an order.
type SimulationReport struct {
	Path                 *valueobjects.ProcurementPath `json:"path"`
	Commissions          []HopCommission               `json:"commissions"`
	TotalCommission      float64                       `json:"totalCommission"`
	NetworkEfficiency    float64                       `json:"networkEfficiency"`
	PriceCompetitiveness float64                       `json:"priceCompetitiveness"`
	Confidence           float64                       `json:"confidence"`
	SimulatedAt          time.Time                     `json:"simulatedAt"`
}

// WarmupRequest names one search to precompute into the path cache
type WarmupRequest struct {
	BuyerID   string `json:"buyerId"`
	ProductID string `json:"productId"`
	Quantity  int    `json:"quantity"`
}

// NetworkStatus summarizes the published snapshot for reporting
type NetworkStatus struct {
	Built   bool          `json:"built"`
	Version int64         `json:"version,omitempty"`
	Nodes   int           `json:"nodes,omitempty"`
	Edges   int           `json:"edges,omitempty"`
	Age     time.Duration `json:"age,omitempty"`
}

// PerformanceReport aggregates network and cache statistics
type PerformanceReport struct {
	Network     NetworkStatus            `json:"network"`
	Caches      map[string]cache.Summary `json:"caches"`
	GeneratedAt time.Time                `json:"generatedAt"`
}

// HealthReport is the service liveness summary
type HealthReport struct {
	Status    string            `json:"status"` // healthy or degraded
	Checks    map[string]string `json:"checks"`
	CheckedAt time.Time         `json:"checkedAt"`
}

// CacheStatsSource exposes a cache's statistics for reporting; every cache
// instance satisfies it.
type CacheStatsSource interface {
	Stats() *cache.Statistics
}

// BreakerStateSource exposes a collaborator circuit breaker's state for
// health reporting.
type BreakerStateSource interface {
	State() string
}

// BatchConfig tunes batch purchase processing
type BatchConfig struct {
	BatchSize       int
	Workers         int
	InterBatchPause time.Duration
}

func (c BatchConfig) withDefaults() BatchConfig {
	if c.BatchSize <= 0 {
		c.BatchSize = DefaultBatchSize
	}
	if c.Workers <= 0 {
		c.Workers = DefaultBatchWorkers
	}
	if c.InterBatchPause < 0 {
		c.InterBatchPause = DefaultInterBatchPause
	}
	return c
}

// ProcurementService orchestrates the end-to-end purchase flow: resolve a
// path, validate it, authorize externally, create the order, and report.
type ProcurementService struct {
	finder     *PathFinder
	builder    *NetworkBuilder
	validator  *domainservices.PathValidator
	authorizer ports.PurchaseAuthorizer
	orders     ports.OrderService
	eventBus   ports.EventBus
	caches     map[string]CacheStatsSource
	breakers   map[string]BreakerStateSource
	batchMu    sync.RWMutex
	batchCfg   BatchConfig
	metrics    *observability.Metrics
	tracer     *observability.Tracer
	logger     *zap.Logger
}

// NewProcurementService creates the procurement orchestrator
func NewProcurementService(
	finder *PathFinder,
	builder *NetworkBuilder,
	authorizer ports.PurchaseAuthorizer,
	orders ports.OrderService,
	eventBus ports.EventBus,
	caches map[string]CacheStatsSource,
	breakers map[string]BreakerStateSource,
	batchCfg BatchConfig,
	metrics *observability.Metrics,
	tracer *observability.Tracer,
	logger *zap.Logger,
) *ProcurementService {
	return &ProcurementService{
		finder:     finder,
		builder:    builder,
		validator:  domainservices.NewPathValidator(),
		authorizer: authorizer,
		orders:     orders,
		eventBus:   eventBus,
		caches:     caches,
		breakers:   breakers,
		batchCfg:   batchCfg.withDefaults(),
		metrics:    metrics,
		tracer:     tracer,
		logger:     logger,
	}
}

// UpdateBatchConfig swaps the batch processing knobs at runtime, typically
// on a tuning reload. In-flight batches keep the configuration they
// started with.
func (s *ProcurementService) UpdateBatchConfig(cfg BatchConfig) {
	s.batchMu.Lock()
	s.batchCfg = cfg.withDefaults()
	s.batchMu.Unlock()
}

// batchConfig returns the active batch configuration
func (s *ProcurementService) batchConfig() BatchConfig {
	s.batchMu.RLock()
	defer s.batchMu.RUnlock()
	return s.batchCfg
}

// IntelligentPurchase resolves the best procurement path for the request
// and executes the purchase against it.
//
// When a preferred supplier is named, its path is tried first; if that
// candidate fails validation or authorization the purchase falls back to
// full optimization rather than failing outright.
func (s *ProcurementService) IntelligentPurchase(ctx context.Context, req PurchaseRequest) (*PurchaseResult, error) {
	start := time.Now()
	var result *PurchaseResult

	err := s.tracer.Capture(ctx, "procurement.intelligent_purchase", func(ctx context.Context) error {
		s.tracer.Annotate(ctx, "buyer_id", req.BuyerID)
		s.tracer.Annotate(ctx, "product_id", req.ProductID)

		var err error
		result, err = s.executePurchase(ctx, req)
		return err
	})

	if err != nil {
		s.metrics.ObservePurchase(time.Since(start), "error")
		return nil, err
	}
	s.metrics.ObservePurchase(time.Since(start), "ok")
	return result, nil
}

func (s *ProcurementService) executePurchase(ctx context.Context, req PurchaseRequest) (*PurchaseResult, error) {
	path, fallback, err := s.resolvePath(ctx, req)
	if err != nil {
		return nil, err
	}

	report, err := s.validateAndAuthorize(ctx, path, req)
	if err != nil {
		return nil, err
	}

	supplier, _ := path.Supplier()
	order, err := s.orders.CreatePurchaseOrder(ctx, req.BuyerID, supplier.UserID, req.ProductID, req.Quantity)
	if err != nil {
		return nil, apperrors.NewExternalError("order service", err)
	}

	// Path metadata is informational; losing it must not fail the purchase
	if err := s.orders.AttachPathMetadata(ctx, order.ID, path); err != nil {
		s.logger.Warn("Failed to attach path metadata to order",
			zap.String("orderId", order.ID),
			zap.Error(err),
		)
	}

	s.publishPurchaseCompleted(ctx, order, path)

	s.logger.Info("Intelligent purchase completed",
		zap.String("orderId", order.ID),
		zap.String("buyerId", req.BuyerID),
		zap.String("supplierId", supplier.UserID),
		zap.Int("quantity", req.Quantity),
		zap.Bool("fallback", fallback),
	)

	return &PurchaseResult{
		Order:      order,
		Path:       path,
		Validation: report,
		Fallback:   fallback,
	}, nil
}

// resolvePath picks the path to purchase against. The bool result reports
// whether a preferred supplier was abandoned for an optimized path.
func (s *ProcurementService) resolvePath(ctx context.Context, req PurchaseRequest) (*valueobjects.ProcurementPath, bool, error) {
	if req.PreferredSupplierID == "" {
		path, err := s.finder.FindOptimalPath(ctx, req.BuyerID, req.ProductID, req.Quantity, req.Options)
		return path, false, err
	}

	if path, ok := s.preferredPath(ctx, req); ok {
		return path, false, nil
	}

	s.logger.Info("Preferred supplier not viable, falling back to optimization",
		zap.String("buyerId", req.BuyerID),
		zap.String("preferredSupplierId", req.PreferredSupplierID),
	)
	path, err := s.finder.FindOptimalPath(ctx, req.BuyerID, req.ProductID, req.Quantity, req.Options)
	return path, true, err
}

// preferredPath searches for a candidate path ending at the preferred
// supplier and verifies it validates and authorizes.
func (s *ProcurementService) preferredPath(ctx context.Context, req PurchaseRequest) (*valueobjects.ProcurementPath, bool) {
	paths, err := s.finder.FindMultiplePaths(ctx, req.BuyerID, req.ProductID, req.Quantity, req.Options)
	if err != nil {
		return nil, false
	}
	for _, path := range paths {
		supplier, ok := path.Supplier()
		if !ok || supplier.UserID != req.PreferredSupplierID {
			continue
		}
		if _, err := s.validateAndAuthorize(ctx, path, req); err != nil {
			s.logger.Debug("Preferred supplier failed validation",
				zap.String("supplierId", req.PreferredSupplierID),
				zap.Error(err),
			)
			return nil, false
		}
		return path, true
	}
	return nil, false
}

// validateAndAuthorize runs the domain validation and the external
// permission check for a candidate path.
func (s *ProcurementService) validateAndAuthorize(ctx context.Context, path *valueobjects.ProcurementPath, req PurchaseRequest) (domainservices.ValidationReport, error) {
	network, _ := s.builder.Current() // nil network only skips continuity
	report := s.validator.ValidatePath(network, path, req.BuyerID, req.Quantity)
	if !report.IsValid {
		return report, apperrors.NewValidationFailedError(report.Reasons)
	}

	supplier, _ := path.Supplier()
	decision, err := s.authorizer.ValidatePurchasePermission(ctx, req.BuyerID, supplier.UserID, req.ProductID, req.Quantity)
	if err != nil {
		return report, apperrors.NewExternalError("purchase authorizer", err)
	}
	if !decision.Allowed {
		return report, apperrors.NewPermissionDeniedError(
			fmt.Sprintf("purchase from %s denied: %v", supplier.UserID, decision.Reasons))
	}
	return report, nil
}

// BatchIntelligentPurchase processes requests in fixed-size batches with a
// bounded worker pool and an inter-batch pause. One request's failure never
// aborts the batch; the result array is index-aligned with the input.
func (s *ProcurementService) BatchIntelligentPurchase(ctx context.Context, requests []PurchaseRequest) []BatchItemResult {
	results := make([]BatchItemResult, len(requests))
	cfg := s.batchConfig()

	for offset := 0; offset < len(requests); offset += cfg.BatchSize {
		end := offset + cfg.BatchSize
		if end > len(requests) {
			end = len(requests)
		}

		s.runBatch(ctx, cfg, requests, results, offset, end)

		if end < len(requests) && cfg.InterBatchPause > 0 {
			select {
			case <-time.After(cfg.InterBatchPause):
			case <-ctx.Done():
				// Remaining requests fail fast with the cancellation
				for i := end; i < len(requests); i++ {
					results[i] = BatchItemResult{Index: i, Message: ctx.Err().Error()}
				}
				return results
			}
		}
	}
	return results
}

// runBatch fans one batch out over the worker pool
func (s *ProcurementService) runBatch(ctx context.Context, cfg BatchConfig, requests []PurchaseRequest, results []BatchItemResult, offset, end int) {
	indexes := make(chan int)
	var wg sync.WaitGroup

	workers := cfg.Workers
	if span := end - offset; workers > span {
		workers = span
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				result, err := s.IntelligentPurchase(ctx, requests[i])
				if err != nil {
					results[i] = BatchItemResult{Index: i, Message: err.Error()}
					continue
				}
				results[i] = BatchItemResult{Index: i, Success: true, Result: result}
			}
		}()
	}

	for i := offset; i < end; i++ {
		indexes <- i
	}
	close(indexes)
	wg.Wait()
}

// GetPurchaseSuggestions returns the top-N valid ranked alternatives with a
// rationale derived from each path's strong score dimensions.
func (s *ProcurementService) GetPurchaseSuggestions(ctx context.Context, buyerID, productID string, quantity, maxSuggestions int) ([]Suggestion, error) {
	if maxSuggestions <= 0 {
		maxSuggestions = DefaultMaxPaths
	}

	paths, err := s.finder.FindMultiplePaths(ctx, buyerID, productID, quantity, SearchOptions{MaxPaths: maxSuggestions})
	if err != nil {
		return nil, err
	}

	network, _ := s.builder.Current()
	suggestions := make([]Suggestion, 0, len(paths))
	for _, path := range paths {
		report := s.validator.ValidatePath(network, path, buyerID, quantity)
		if !report.IsValid {
			continue
		}
		suggestions = append(suggestions, Suggestion{
			Rank:      len(suggestions) + 1,
			Path:      path,
			Rationale: buildRationale(path),
		})
		if len(suggestions) == maxSuggestions {
			break
		}
	}
	return suggestions, nil
}

// buildRationale names the dimensions where a path scores strongly
func buildRationale(path *valueobjects.ProcurementPath) []string {
	supplier, _ := path.Supplier()
	var rationale []string

	dims := []struct {
		score float64
		text  string
	}{
		{path.Scores.Price, fmt.Sprintf("competitive unit price of %.2f from %s", supplier.UnitPrice, supplier.UserID)},
		{path.Scores.Inventory, fmt.Sprintf("ample stock (%d units available)", path.AvailableStock)},
		{path.Scores.Length, fmt.Sprintf("short supply chain (%d hop(s))", path.TotalLength)},
		{path.Scores.Reliability, fmt.Sprintf("reliable supplier at level %s", supplier.Level)},
	}
	for _, d := range dims {
		if d.score >= strongScoreThreshold {
			rationale = append(rationale, d.text)
		}
	}
	if len(rationale) == 0 {
		rationale = append(rationale, fmt.Sprintf("best available balance of price, stock, and chain length (score %.2f)", path.Scores.Overall))
	}
	return rationale
}

// SimulatePurchaseImpact projects the downstream effects of a purchase
// without creating an order.
func (s *ProcurementService) SimulatePurchaseImpact(ctx context.Context, req PurchaseRequest) (*SimulationReport, error) {
	path, err := s.finder.FindOptimalPath(ctx, req.BuyerID, req.ProductID, req.Quantity, req.Options)
	if err != nil {
		return nil, err
	}

	commissions := s.projectCommissions(path, req.BuyerID)
	var total float64
	for _, c := range commissions {
		total += c.Amount
	}

	report := &SimulationReport{
		Path:                 path,
		Commissions:          commissions,
		TotalCommission:      total,
		NetworkEfficiency:    networkEfficiency(path),
		PriceCompetitiveness: path.Scores.Price,
		Confidence:           path.Scores.Overall,
		SimulatedAt:          time.Now(),
	}
	return report, nil
}

// projectCommissions computes per-hop earnings for the intermediates the
// order flows through: every node on the buyer's ancestor chain strictly
// between buyer and supplier.
func (s *ProcurementService) projectCommissions(path *valueobjects.ProcurementPath, buyerID string) []HopCommission {
	network, err := s.builder.Current()
	if err != nil {
		return nil
	}
	supplier, ok := path.Supplier()
	if !ok {
		return nil
	}

	var commissions []HopCommission
	for _, node := range network.AncestorChain(buyerID, continuityWalkLimit()) {
		if node.ID == supplier.UserID {
			break
		}
		commissions = append(commissions, HopCommission{
			UserID: node.ID,
			Level:  node.Level,
			Rate:   commissionRatePerHop,
			Amount: commissionRatePerHop * path.TotalPrice,
		})
	}
	return commissions
}

// continuityWalkLimit mirrors the validator's ancestor walk bound
func continuityWalkLimit() int { return 64 }

// networkEfficiency is the inverse of the supply chain length: a direct
// parent purchase is maximally efficient.
func networkEfficiency(path *valueobjects.ProcurementPath) float64 {
	if path.TotalLength <= 1 {
		return 1.0
	}
	return 1.0 / float64(path.TotalLength)
}

// ValidatePath validates an externally supplied path against the current
// snapshot and the request parameters.
func (s *ProcurementService) ValidatePath(path *valueobjects.ProcurementPath, buyerID string, quantity int) domainservices.ValidationReport {
	network, _ := s.builder.Current()
	return s.validator.ValidatePath(network, path, buyerID, quantity)
}

// UpdateNetwork applies an incremental update for the given node ids
func (s *ProcurementService) UpdateNetwork(ctx context.Context, nodeIDs []string) (NetworkStatus, error) {
	updated, err := s.builder.IncrementalUpdate(ctx, nodeIDs)
	if err != nil {
		return NetworkStatus{}, err
	}
	nodes, edges := updated.Size()
	s.metrics.SetNetworkSnapshot(updated.Version(), nodes)
	return NetworkStatus{
		Built:   true,
		Version: updated.Version(),
		Nodes:   nodes,
		Edges:   edges,
		Age:     updated.Age(),
	}, nil
}

// WarmupCache precomputes the given searches into the path cache.
// Individual failures are logged and skipped; the count of successfully
// warmed searches is returned.
func (s *ProcurementService) WarmupCache(ctx context.Context, requests []WarmupRequest) int {
	warmed := 0
	for _, req := range requests {
		if ctx.Err() != nil {
			break
		}
		if _, err := s.finder.FindMultiplePaths(ctx, req.BuyerID, req.ProductID, req.Quantity, SearchOptions{}); err != nil {
			s.logger.Debug("Cache warmup search failed",
				zap.String("buyerId", req.BuyerID),
				zap.String("productId", req.ProductID),
				zap.Error(err),
			)
			continue
		}
		warmed++
	}
	s.logger.Info("Cache warmup finished",
		zap.Int("requested", len(requests)),
		zap.Int("warmed", warmed),
	)
	return warmed
}

// GetPerformanceMetrics aggregates network and cache statistics
func (s *ProcurementService) GetPerformanceMetrics() PerformanceReport {
	report := PerformanceReport{
		Caches:      make(map[string]cache.Summary, len(s.caches)),
		GeneratedAt: time.Now(),
	}

	if network, err := s.builder.Current(); err == nil {
		nodes, edges := network.Size()
		report.Network = NetworkStatus{
			Built:   true,
			Version: network.Version(),
			Nodes:   nodes,
			Edges:   edges,
			Age:     network.Age(),
		}
	}

	for name, source := range s.caches {
		report.Caches[name] = source.Stats().Summary()
	}
	return report
}

// HealthCheck reports service liveness. A missing or stale snapshot
// degrades health but does not fail it; searches can trigger a rebuild.
func (s *ProcurementService) HealthCheck(ctx context.Context) HealthReport {
	report := HealthReport{
		Status:    "healthy",
		Checks:    map[string]string{},
		CheckedAt: time.Now(),
	}

	network, err := s.builder.Current()
	switch {
	case err != nil:
		report.Status = "degraded"
		report.Checks["network"] = "snapshot not built"
	case network.Age() > 10*DefaultStalenessWindow:
		report.Status = "degraded"
		report.Checks["network"] = fmt.Sprintf("snapshot stale (age %s)", network.Age().Round(time.Second))
	default:
		report.Checks["network"] = "ok"
	}

	for name, source := range s.caches {
		summary := source.Stats().Summary()
		report.Checks["cache."+name] = fmt.Sprintf("%d entries, hit rate %.2f", summary.CurrentSize, summary.HitRate)
	}

	for name, source := range s.breakers {
		state := source.State()
		report.Checks["breaker."+name] = state
		if state == "open" {
			report.Status = "degraded"
		}
	}
	return report
}

// publishPurchaseCompleted emits the purchase event best-effort
func (s *ProcurementService) publishPurchaseCompleted(ctx context.Context, order *ports.Order, path *valueobjects.ProcurementPath) {
	if s.eventBus == nil {
		return
	}
	supplier, _ := path.Supplier()
	event := events.NewPurchaseCompleted(order.ID, order.BuyerID, supplier.UserID, order.ProductID, order.Quantity, order.TotalPrice, path.TotalLength)
	if err := s.eventBus.Publish(ctx, event); err != nil {
		s.logger.Warn("Failed to publish purchase event",
			zap.String("orderId", order.ID),
			zap.Error(err),
		)
	}
}
