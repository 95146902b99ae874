package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"supplynet-backend/application/services"
	"supplynet-backend/pkg/common"
	"supplynet-backend/pkg/utils"
)

// AdminHandler serves operational endpoints: network updates, cache
// warmup, and performance reporting.
type AdminHandler struct {
	procurement *services.ProcurementService
	logger      *zap.Logger
}

// NewAdminHandler creates an admin handler
func NewAdminHandler(procurement *services.ProcurementService, logger *zap.Logger) *AdminHandler {
	return &AdminHandler{
		procurement: procurement,
		logger:      logger,
	}
}

// UpdateNetworkRequest is the request body for POST /network/update
type UpdateNetworkRequest struct {
	NodeIDs []string `json:"nodeIds" validate:"required,min=1,max=500,dive,required"`
}

// UpdateNetwork handles POST /network/update
func (h *AdminHandler) UpdateNetwork(w http.ResponseWriter, r *http.Request) {
	var req UpdateNetworkRequest
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	status, err := h.procurement.UpdateNetwork(r.Context(), req.NodeIDs)
	if err != nil {
		respondAppError(w, err)
		return
	}
	common.RespondJSON(w, http.StatusOK, status)
}

// WarmupRequestBody is the request body for POST /cache/warmup
type WarmupRequestBody struct {
	Searches []services.WarmupRequest `json:"searches" validate:"required,min=1,max=200,dive"`
}

// WarmupCache handles POST /cache/warmup
func (h *AdminHandler) WarmupCache(w http.ResponseWriter, r *http.Request) {
	var req WarmupRequestBody
	if err := common.ParseJSONBody(w, r, &req, maxBodyBytes); err != nil {
		common.RespondError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid request body: "+err.Error())
		return
	}
	if err := utils.ValidateStruct(req); err != nil {
		common.RespondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		return
	}

	warmed := h.procurement.WarmupCache(r.Context(), req.Searches)
	common.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"requested": len(req.Searches),
		"warmed":    warmed,
	})
}

// GetPerformance handles GET /metrics/performance
func (h *AdminHandler) GetPerformance(w http.ResponseWriter, r *http.Request) {
	common.RespondJSON(w, http.StatusOK, h.procurement.GetPerformanceMetrics())
}
