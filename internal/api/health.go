package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"

	"heli-training/logbook/internal/common"
	"heli-training/logbook/internal/models/dtos"
	"heli-training/logbook/internal/store"
)

const (
	healthOK   = "ok"
	healthDown = "down"
)

// HealthCheckHandler handles GET /healthCheck. Any component down turns the
// answer into a 503.
func HealthCheckHandler(db *sqlx.DB, cache common.CacheInterface, records store.RecordStore, upSince time.Time) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		components := map[string]dtos.ComponentStatus{
			"database": pingStatus(ctx, db, "Database connected"),
		}
		if cache != nil {
			components["cache"] = componentStatus(cache.Ping(ctx), cache.Backend()+" cache reachable")
		}
		if records != nil {
			components["logbook"] = dtos.ComponentStatus{
				Status:  healthOK,
				Details: strconv.Itoa(len(records.List(ctx))) + " records",
			}
		}

		resp := dtos.HealthCheckResponse{
			Status:     healthOK,
			Components: components,
			UpSince:    upSince,
			Uptime:     time.Since(upSince).Round(time.Second).String(),
		}
		httpStatus := http.StatusOK
		for _, c := range components {
			if c.Status != healthOK {
				resp.Status = healthDown
				httpStatus = http.StatusServiceUnavailable
				break
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(httpStatus)
		_ = json.NewEncoder(w).Encode(resp)
	}
}

func pingStatus(ctx context.Context, db *sqlx.DB, okDetails string) dtos.ComponentStatus {
	if db == nil {
		return dtos.ComponentStatus{Status: healthDown, Details: "Database not initialised"}
	}
	return componentStatus(db.PingContext(ctx), okDetails)
}

func componentStatus(err error, okDetails string) dtos.ComponentStatus {
	if err != nil {
		return dtos.ComponentStatus{Status: healthDown, Details: err.Error()}
	}
	return dtos.ComponentStatus{Status: healthOK, Details: okDetails}
}
