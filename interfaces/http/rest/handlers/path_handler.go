package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"supplynet-backend/application/services"
	"supplynet-backend/application/services/strategy"
	"supplynet-backend/domain/core/valueobjects"
	"supplynet-backend/infrastructure/config"
	"supplynet-backend/pkg/common"
	"supplynet-backend/pkg/utils"
)

// PathHandler serves path search and validation endpoints
type PathHandler struct {
	finder      *services.PathFinder
	procurement *services.ProcurementService
	tuning      *config.Tuning
	logger      *zap.Logger
}

// NewPathHandler creates a path handler
func NewPathHandler(finder *services.PathFinder, procurement *services.ProcurementService, tuning *config.Tuning, logger *zap.Logger) *PathHandler {
	return &PathHandler{
		finder:      finder,
		procurement: procurement,
		tuning:      tuning,
		logger:      logger,
	}
}

// WeightsRequest carries custom optimization weights
type WeightsRequest struct {
	Price       float64 `json:"price" validate:"gte=0,lte=1"`
	Inventory   float64 `json:"inventory" validate:"gte=0,lte=1"`
	Length      float64 `json:"length" validate:"gte=0,lte=1"`
	Reliability float64 `json:"reliability" validate:"gte=0,lte=1"`
	Speed       float64 `json:"speed" validate:"gte=0,lte=1"`
}

// SearchRequest is the request body for path search endpoints
type SearchRequest struct {
	BuyerID   string          `json:"buyerId" validate:"required"`
	ProductID string          `json:"productId" validate:"required"`
	Quantity  int             `json:"quantity" validate:"required,gt=0"`
	Strategy  string          `json:"strategy,omitempty" validate:"omitempty,oneof=BFS DFS DIJKSTRA ASTAR"`
	MaxDepth  int             `json:"maxDepth,omitempty" validate:"omitempty,gt=0,lte=32"`
	MaxPaths  int             `json:"maxPaths,omitempty" validate:"omitempty,gt=0,lte=20"`
	Preset    string          `json:"preset,omitempty" validate:"omitempty,oneof=PRICE_FIRST INVENTORY_FIRST LENGTH_FIRST RELIABILITY_FIRST BALANCED"`
	Weights   *WeightsRequest `json:"weights,omitempty"`
	SkipCache bool            `json:"skipCache,omitempty"`
}

// toOptions resolves the request against the operator-tuned defaults
func (req *SearchRequest) toOptions(values config.TuningValues) services.SearchOptions {
	opts := services.SearchOptions{
		Strategy:   strategy.Algorithm(req.Strategy),
		MaxDepth:   req.MaxDepth,
		MaxPaths:   req.MaxPaths,
		TimeBudget: values.Search.TimeBudget.Std(),
		Preset:     valueobjects.WeightPreset(req.Preset),
		SkipCache:  req.SkipCache,
	}
	if opts.MaxDepth == 0 {
		opts.MaxDepth = values.Search.MaxDepth
	}
	if opts.MaxPaths == 0 {
		opts.MaxPaths = values.Search.MaxPaths
	}
	if opts.Preset == "" {
		opts.Preset = valueobjects.WeightPreset(values.Search.DefaultPreset)
	}
	if req.Weights != nil {
		opts.Weights = &valueobjects.OptimizationWeights{
			Price:       req.Weights.Price,
			Inventory:   req.Weights.Inventory,
			Length:      req.Weights.Length,
			Reliability: req.Weights.Reliability,
			Speed:       req.Weights.Speed,
		}
	}
	return opts
}

// FindOptimalPath handles POST /paths/optimal
func (h *PathHandler) FindOptimalPath(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	path, err := h.finder.FindOptimalPath(r.Context(), req.BuyerID, req.ProductID, req.Quantity, req.toOptions(h.tuning.Current()))
	if err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, path)
}

// SearchPaths handles POST /paths/search
func (h *PathHandler) SearchPaths(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	paths, err := h.finder.FindMultiplePaths(r.Context(), req.BuyerID, req.ProductID, req.Quantity, req.toOptions(h.tuning.Current()))
	if err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"paths": paths,
		"count": len(paths),
	})
}

// ValidatePathRequest is the request body for POST /paths/validate
type ValidatePathRequest struct {
	BuyerID  string                        `json:"buyerId" validate:"required"`
	Quantity int                           `json:"quantity" validate:"required,gt=0"`
	Path     *valueobjects.ProcurementPath `json:"path" validate:"required"`
}

// ValidatePath handles POST /paths/validate
func (h *PathHandler) ValidatePath(w http.ResponseWriter, r *http.Request) {
	var req ValidatePathRequest
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	report := h.procurement.ValidatePath(req.Path, req.BuyerID, req.Quantity)
	common.RespondJSON(w, http.StatusOK, report)
}
