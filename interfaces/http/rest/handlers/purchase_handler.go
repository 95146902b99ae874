package handlers

import (
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"supplynet-backend/application/services"
	"supplynet-backend/infrastructure/config"
	"supplynet-backend/pkg/common"
	"supplynet-backend/pkg/utils"
)

// PurchaseHandler serves purchase and suggestion endpoints
type PurchaseHandler struct {
	procurement *services.ProcurementService
	tuning      *config.Tuning
	logger      *zap.Logger
}

// NewPurchaseHandler creates a purchase handler
func NewPurchaseHandler(procurement *services.ProcurementService, tuning *config.Tuning, logger *zap.Logger) *PurchaseHandler {
	return &PurchaseHandler{
		procurement: procurement,
		tuning:      tuning,
		logger:      logger,
	}
}

// PurchaseRequestBody is the request body for POST /purchases
type PurchaseRequestBody struct {
	BuyerID             string          `json:"buyerId" validate:"required"`
	ProductID           string          `json:"productId" validate:"required"`
	Quantity            int             `json:"quantity" validate:"required,gt=0"`
	PreferredSupplierID string          `json:"preferredSupplierId,omitempty"`
	Strategy            string          `json:"strategy,omitempty" validate:"omitempty,oneof=BFS DFS DIJKSTRA ASTAR"`
	Preset              string          `json:"preset,omitempty" validate:"omitempty,oneof=PRICE_FIRST INVENTORY_FIRST LENGTH_FIRST RELIABILITY_FIRST BALANCED"`
	Weights             *WeightsRequest `json:"weights,omitempty"`
}

func (req *PurchaseRequestBody) toPurchaseRequest(values config.TuningValues) services.PurchaseRequest {
	search := SearchRequest{
		BuyerID:   req.BuyerID,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
		Strategy:  req.Strategy,
		Preset:    req.Preset,
		Weights:   req.Weights,
	}
	return services.PurchaseRequest{
		BuyerID:             req.BuyerID,
		ProductID:           req.ProductID,
		Quantity:            req.Quantity,
		PreferredSupplierID: req.PreferredSupplierID,
		Options:             search.toOptions(values),
	}
}

// IntelligentPurchase handles POST /purchases
func (h *PurchaseHandler) IntelligentPurchase(w http.ResponseWriter, r *http.Request) {
	var req PurchaseRequestBody
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	result, err := h.procurement.IntelligentPurchase(r.Context(), req.toPurchaseRequest(h.tuning.Current()))
	if err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusCreated, result)
}

// BatchPurchaseRequest is the request body for POST /purchases/batch
type BatchPurchaseRequest struct {
	Requests []PurchaseRequestBody `json:"requests" validate:"required,min=1,max=100,dive"`
}

// BatchPurchase handles POST /purchases/batch
func (h *PurchaseHandler) BatchPurchase(w http.ResponseWriter, r *http.Request) {
	var req BatchPurchaseRequest
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	values := h.tuning.Current()
	requests := make([]services.PurchaseRequest, 0, len(req.Requests))
	for i := range req.Requests {
		requests = append(requests, req.Requests[i].toPurchaseRequest(values))
	}

	results := h.procurement.BatchIntelligentPurchase(r.Context(), requests)

	succeeded := 0
	for _, item := range results {
		if item.Success {
			succeeded++
		}
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"results":   results,
		"total":     len(results),
		"succeeded": succeeded,
		"failed":    len(results) - succeeded,
	})
}

// GetSuggestions handles GET /purchases/suggestions
func (h *PurchaseHandler) GetSuggestions(w http.ResponseWriter, r *http.Request) {
	buyerID := r.URL.Query().Get("buyerId")
	productID := r.URL.Query().Get("productId")
	if buyerID == "" || productID == "" {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "buyerId and productId are required")
		return
	}
	quantity, err := strconv.Atoi(r.URL.Query().Get("quantity"))
	if err != nil || quantity <= 0 {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "quantity must be a positive integer")
		return
	}
	maxSuggestions, _ := strconv.Atoi(r.URL.Query().Get("max"))

	suggestions, err := h.procurement.GetPurchaseSuggestions(r.Context(), buyerID, productID, quantity, maxSuggestions)
	if err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"suggestions": suggestions,
		"count":       len(suggestions),
	})
}

// SimulatePurchase handles POST /purchases/simulate
func (h *PurchaseHandler) SimulatePurchase(w http.ResponseWriter, r *http.Request) {
	var req PurchaseRequestBody
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	report, err := h.procurement.SimulatePurchaseImpact(r.Context(), req.toPurchaseRequest(h.tuning.Current()))
	if err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, report)
}
