package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"supplynet-backend/application/ports"
	"supplynet-backend/application/services/strategy"
	"supplynet-backend/domain/core/aggregates"
	"supplynet-backend/domain/core/entities"
	"supplynet-backend/domain/core/valueobjects"
	domainservices "supplynet-backend/domain/services"
	"supplynet-backend/pkg/cache"
	apperrors "supplynet-backend/pkg/errors"
	"supplynet-backend/pkg/observability"
)

// Search defaults
const (
	DefaultMaxDepth   = 10
	DefaultMaxPaths   = 5
	DefaultTimeBudget = 5 * time.Second
)

// SearchOptions tunes one path search. The zero value searches with BFS,
// balanced weights, the default depth and time budget, and the cache on.
type SearchOptions struct {
	Strategy   strategy.Algorithm
	MaxDepth   int
	MaxPaths   int
	TimeBudget time.Duration

	// Preset picks a named weight vector; Weights overrides it entirely
	Preset  valueobjects.WeightPreset
	Weights *valueobjects.OptimizationWeights

	// SkipCache bypasses the path cache for both read and write
	SkipCache bool
}

func (o SearchOptions) withDefaults() SearchOptions {
	if o.Strategy == "" {
		o.Strategy = strategy.AlgorithmBFS
	}
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MaxPaths <= 0 {
		o.MaxPaths = DefaultMaxPaths
	}
	if o.TimeBudget <= 0 {
		o.TimeBudget = DefaultTimeBudget
	}
	return o
}

// resolveWeights picks the effective weight vector for the search
func (o SearchOptions) resolveWeights() (valueobjects.OptimizationWeights, error) {
	if o.Weights != nil {
		if err := o.Weights.Validate(); err != nil {
			return valueobjects.OptimizationWeights{}, err
		}
		if o.Weights.IsZero() {
			return valueobjects.OptimizationWeights{}, fmt.Errorf("custom weights carry no weight")
		}
		return *o.Weights, nil
	}
	if o.Preset == "" || o.Preset == valueobjects.PresetBalanced {
		return valueobjects.DefaultWeights(), nil
	}
	return valueobjects.WeightsForPreset(o.Preset)
}

// fingerprint folds every result-influencing option into the cache key
func (o SearchOptions) fingerprint(weights valueobjects.OptimizationWeights) string {
	return fmt.Sprintf("%s|%d|%d|%.3f,%.3f,%.3f,%.3f,%.3f",
		o.Strategy, o.MaxDepth, o.MaxPaths,
		weights.Price, weights.Inventory, weights.Length, weights.Reliability, weights.Speed)
}

// PathFinder searches the network for procurement paths from a buyer to
// qualified upstream suppliers, enriches them with prices and stock, scores
// them, and serves repeated searches from a read-through cache.
type PathFinder struct {
	builder   *NetworkBuilder
	prices    ports.PriceCatalog
	inventory ports.InventoryService
	scorer    *domainservices.PathScorer
	pathCache cache.Cache[[]*valueobjects.ProcurementPath]
	metrics   *observability.Metrics
	logger    *zap.Logger
}

// NewPathFinder creates a path finder
func NewPathFinder(
	builder *NetworkBuilder,
	prices ports.PriceCatalog,
	inventory ports.InventoryService,
	pathCache cache.Cache[[]*valueobjects.ProcurementPath],
	metrics *observability.Metrics,
	logger *zap.Logger,
) *PathFinder {
	return &PathFinder{
		builder:   builder,
		prices:    prices,
		inventory: inventory,
		scorer:    domainservices.NewPathScorer(),
		pathCache: pathCache,
		metrics:   metrics,
		logger:    logger,
	}
}

// FindOptimalPath returns the single best procurement path for the request
func (f *PathFinder) FindOptimalPath(ctx context.Context, buyerID, productID string, quantity int, opts SearchOptions) (*valueobjects.ProcurementPath, error) {
	paths, err := f.FindMultiplePaths(ctx, buyerID, productID, quantity, opts)
	if err != nil {
		return nil, err
	}
	return paths[0], nil
}

// FindMultiplePaths returns up to MaxPaths candidate paths, Pareto-filtered
// and ranked best-first. It never returns an empty slice without an error.
func (f *PathFinder) FindMultiplePaths(ctx context.Context, buyerID, productID string, quantity int, opts SearchOptions) ([]*valueobjects.ProcurementPath, error) {
	if buyerID == "" {
		return nil, apperrors.NewInvalidNodeError("buyer id is required")
	}
	if productID == "" {
		return nil, apperrors.NewInvalidNodeError("product id is required")
	}
	if quantity <= 0 {
		return nil, apperrors.NewInvalidNodeError(fmt.Sprintf("quantity must be positive, got %d", quantity))
	}

	opts = opts.withDefaults()
	start := time.Now()

	weights, err := opts.resolveWeights()
	if err != nil {
		return nil, apperrors.NewValidationFailedError([]string{err.Error()})
	}

	key := valueobjects.SearchKey(buyerID, productID, quantity, opts.fingerprint(weights))
	if !opts.SkipCache && f.pathCache != nil {
		if paths, ok := f.pathCache.Get(key); ok && len(paths) > 0 {
			f.metrics.ObserveSearch(string(opts.Strategy), time.Since(start), len(paths), "cache_hit")
			return paths, nil
		}
	}

	network, err := f.builder.BuildGraph(ctx, false)
	if err != nil {
		f.metrics.ObserveSearch(string(opts.Strategy), time.Since(start), 0, "error")
		return nil, err
	}

	buyer, ok := network.GetNode(buyerID)
	if !ok {
		f.metrics.ObserveSearch(string(opts.Strategy), time.Since(start), 0, "invalid_node")
		return nil, apperrors.NewInvalidNodeError(buyerID)
	}

	candidates, err := f.explore(ctx, network, buyerID, opts)
	if err != nil {
		f.metrics.ObserveSearch(string(opts.Strategy), time.Since(start), 0, "error")
		return nil, err
	}

	paths, err := f.assemblePaths(ctx, network, buyer, productID, quantity, candidates, opts, weights)
	if err != nil {
		f.metrics.ObserveSearch(string(opts.Strategy), time.Since(start), 0, "error")
		return nil, err
	}
	if len(paths) == 0 {
		f.metrics.ObserveSearch(string(opts.Strategy), time.Since(start), 0, "not_found")
		return nil, apperrors.NewPathNotFoundError(buyerID, productID)
	}

	paths = f.scorer.ParetoFront(paths)
	f.scorer.RankByOverallScore(paths)
	if len(paths) > opts.MaxPaths {
		paths = paths[:opts.MaxPaths]
	}

	if !opts.SkipCache && f.pathCache != nil {
		if err := f.pathCache.Set(key, paths); err != nil {
			f.logger.Warn("Failed to cache search result", zap.Error(err))
		}
	}

	f.metrics.ObserveSearch(string(opts.Strategy), time.Since(start), len(paths), "ok")
	return paths, nil
}

// explore runs the configured strategy under the search time budget.
// A budget expiry with partial candidates degrades to those candidates;
// an expiry with none is a timeout.
func (f *PathFinder) explore(ctx context.Context, network *aggregates.Network, buyerID string, opts SearchOptions) ([]strategy.Candidate, error) {
	s, err := strategy.New(opts.Strategy)
	if err != nil {
		return nil, apperrors.NewValidationFailedError([]string{err.Error()})
	}

	searchCtx, cancel := context.WithTimeout(ctx, opts.TimeBudget)
	defer cancel()

	candidates, err := s.Explore(searchCtx, network, buyerID, opts.MaxDepth)
	if err != nil {
		if len(candidates) > 0 && searchCtx.Err() != nil {
			f.logger.Warn("Search budget exhausted, continuing with partial candidates",
				zap.String("buyerId", buyerID),
				zap.Int("candidates", len(candidates)),
			)
			return candidates, nil
		}
		if searchCtx.Err() != nil {
			return nil, apperrors.NewTimeoutError("path search").WithCause(err)
		}
		return nil, apperrors.NewInvalidNodeError(buyerID).WithCause(err)
	}
	return candidates, nil
}

// assemblePaths enriches supplier candidates with batched price and stock
// lookups and builds scored procurement paths. Individual candidates that
// cannot be priced or stocked are skipped, never the whole search.
func (f *PathFinder) assemblePaths(
	ctx context.Context,
	network *aggregates.Network,
	buyer *entities.Distributor,
	productID string,
	quantity int,
	candidates []strategy.Candidate,
	opts SearchOptions,
	weights valueobjects.OptimizationWeights,
) ([]*valueobjects.ProcurementPath, error) {
	// Keep only active nodes that outrank the buyer
	type supplier struct {
		node  *entities.Distributor
		depth int
	}
	suppliers := make([]supplier, 0, len(candidates))
	supplierIDs := make([]string, 0, len(candidates))
	levelSet := map[entities.Level]bool{buyer.Level: true}
	for _, c := range candidates {
		node, ok := network.GetNode(c.NodeID)
		if !ok || !node.IsActive() || !node.CanSupply(buyer.Level) {
			continue
		}
		suppliers = append(suppliers, supplier{node: node, depth: c.Depth})
		supplierIDs = append(supplierIDs, node.ID)
		levelSet[node.Level] = true
	}
	if len(suppliers) == 0 {
		return nil, nil
	}

	levels := make([]entities.Level, 0, len(levelSet))
	for level := range levelSet {
		levels = append(levels, level)
	}

	priceByLevel, err := f.prices.GetPrices(ctx, productID, levels)
	if err != nil {
		return nil, apperrors.NewExternalError("price catalog", err)
	}
	stockByID, err := f.inventory.GetStockBatch(ctx, supplierIDs, productID)
	if err != nil {
		return nil, apperrors.NewExternalError("inventory service", err)
	}

	// The buyer's own level price anchors price normalization; without it
	// each path is scored against its own price.
	referencePrice := priceByLevel[buyer.Level]

	now := time.Now()
	paths := make([]*valueobjects.ProcurementPath, 0, len(suppliers))
	for _, s := range suppliers {
		unitPrice, priced := priceByLevel[s.node.Level]
		if !priced || unitPrice <= 0 {
			f.logger.Debug("Skipping unpriced candidate",
				zap.String("supplierId", s.node.ID),
				zap.String("level", string(s.node.Level)),
			)
			continue
		}
		stock := stockByID[s.node.ID]
		if stock < quantity {
			continue
		}

		path := &valueobjects.ProcurementPath{
			Nodes: []valueobjects.PathNode{
				{
					UserID:      buyer.ID,
					Level:       buyer.Level,
					Role:        valueobjects.RoleBuyer,
					Distance:    0,
					Reliability: reliabilityFor(buyer),
				},
				{
					UserID:         s.node.ID,
					Level:          s.node.Level,
					Role:           valueobjects.RoleSupplier,
					UnitPrice:      unitPrice,
					AvailableStock: stock,
					Distance:       s.depth,
					Reliability:    reliabilityFor(s.node),
				},
			},
			TotalPrice:     unitPrice * float64(quantity),
			TotalLength:    s.depth,
			AvailableStock: stock,
			Metadata: valueobjects.PathMetadata{
				Algorithm:   string(opts.Strategy),
				Weights:     weights,
				SearchDepth: opts.MaxDepth,
				ComputedAt:  now,
			},
		}
		f.scorer.Score(path, quantity, referencePrice, weights)
		paths = append(paths, path)
	}

	return paths, nil
}

// reliabilityFor derives a node's reliability from its rank and activity.
// Higher levels have proven longer track records; a recently active node
// earns a small bonus.
func reliabilityFor(node *entities.Distributor) float64 {
	score := 0.5 + 0.05*float64(node.Level.Rank())
	if !node.Metadata.LastActive.IsZero() && time.Since(node.Metadata.LastActive) < 30*24*time.Hour {
		score += 0.1
	}
	if score > 1 {
		score = 1
	}
	return score
}
