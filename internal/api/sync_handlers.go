package api

import (
	"net/http"
	"time"

	"heli-training/logbook/internal/auth"
	"heli-training/logbook/internal/common"
	"heli-training/logbook/internal/constants"
	"heli-training/logbook/internal/logging"
	"heli-training/logbook/internal/models/dtos"
)

// TriggerSync handles POST /api/v1/sync. The remote failure is logged but
// never echoed to the caller.
func (h *Handlers) TriggerSync() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		claims := auth.GetUserClaims(r.Context())

		logging.Info("Sync manually triggered", "user", claims.UserID())

		result, err := h.sync.Run(r.Context(), constants.SyncSourceManual)
		if err != nil {
			common.RespondFailure(w, initTime, "Sync failed, local logbook unchanged", dtos.SyncResponse{Success: false}, http.StatusBadGateway)
			return
		}

		common.RespondSuccess(w, initTime, "Sync completed", dtos.SyncResponse{
			Success:             true,
			Records:             result.Records,
			RejectedFlights:     result.RejectedFlights,
			RejectedValidations: result.RejectedValidations,
			Duration:            result.Duration.Truncate(time.Millisecond).String(),
		})
	}
}

// SyncStatus handles GET /api/v1/admin/jobs/status
func (h *Handlers) SyncStatus() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		common.RespondSuccess(w, initTime, "Job status", h.sync.Status())
	}
}

// SyncHistory handles GET /api/v1/admin/sync-history
func (h *Handlers) SyncHistory() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		history, err := h.syncHistory.List(r.Context())
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Fetched Results", history)
	}
}
