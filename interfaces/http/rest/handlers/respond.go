// Package handlers implements the REST endpoints for path search,
// purchasing, and operations.
package handlers

import (
	"net/http"

	"supplynet-backend/pkg/common"
	apperrors "supplynet-backend/pkg/errors"
)

const maxBodyBytes = 1 << 20 // 1 MiB

// respondAppError maps an application error onto the response envelope
func respondAppError(w http.ResponseWriter, err error) {
	if appErr := apperrors.GetAppError(err); appErr != nil {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		common.RespondError(w, status, string(appErr.Type), appErr.Message)
		return
	}
	common.RespondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
}
