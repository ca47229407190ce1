package api

import (
	"fmt"
	"net/http"
	"time"

	"heli-training/logbook/internal/auth"
	"heli-training/logbook/internal/common"
	"heli-training/logbook/internal/export"
	"heli-training/logbook/internal/logging"
)

// ExportCSV handles GET /api/v1/export. It accepts the same filters as the flight list.
func (h *Handlers) ExportCSV() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		filter, ok := filterFromQuery(r)
		if !ok {
			common.RespondError(w, initTime, nil, "Invalid status parameter", http.StatusBadRequest)
			return
		}

		flights := h.flights.List(r.Context(), auth.GetUserClaims(r.Context()), filter)

		filename := fmt.Sprintf("logbook-%s.csv", initTime.Format("20060102"))
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
		w.WriteHeader(http.StatusOK)

		if err := export.WriteCSV(w, flights); err != nil {
			logging.Error("CSV export failed", "error", err, "records", len(flights))
		}
	}
}
