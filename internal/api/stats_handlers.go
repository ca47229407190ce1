package api

import (
	"net/http"
	"strings"
	"time"

	"heli-training/logbook/internal/auth"
	"heli-training/logbook/internal/common"
	"heli-training/logbook/internal/constants"
	"heli-training/logbook/internal/models/dtos"
	"heli-training/logbook/internal/stats"
)

func hourTotalsResponse(student string, t stats.HourTotals, goals constants.HourGoals) dtos.HourTotalsResponse {
	return dtos.HourTotalsResponse{
		Student:          student,
		Flights:          t.Flights,
		TotalHours:       t.TotalHours(),
		RealHours:        t.RealHours(),
		SimulatorHours:   t.SimulatorHours(),
		TrainerHours:     t.TrainerHours(),
		TotalMinutes:     t.TotalMinutes,
		RealMinutes:      t.RealMinutes,
		SimulatorMinutes: t.SimulatorMinutes,
		TrainerMinutes:   t.TrainerMinutes,
		Goals:            goals,
	}
}

// HourTotals handles GET /api/v1/stats
func (h *Handlers) HourTotals() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		claims := auth.GetUserClaims(r.Context())

		student := strings.TrimSpace(r.URL.Query().Get("student"))
		if claims.Role() == constants.RoleStudent {
			student = claims.Name
		}

		totals := h.stats.HourTotals(r.Context(), claims, student)
		common.RespondSuccess(w, initTime, "Fetched Results", hourTotalsResponse(student, totals, h.stats.Goals()))
	}
}

// Meter handles GET /api/v1/stats/meter
func (h *Handlers) Meter() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		meters, err := h.stats.Meter(r.Context(), auth.GetUserClaims(r.Context()))
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Fetched Results", meters)
	}
}

// Progress handles GET /api/v1/progress
func (h *Handlers) Progress() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		student := strings.TrimSpace(r.URL.Query().Get("student"))
		progress := h.stats.Progress(r.Context(), auth.GetUserClaims(r.Context()), student)
		common.RespondSuccess(w, initTime, "Fetched Results", progress)
	}
}

// CourseProgress handles GET /api/v1/progress/course
func (h *Handlers) CourseProgress() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		course, err := h.stats.CourseProgress(r.Context(), auth.GetUserClaims(r.Context()))
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Fetched Results", course)
	}
}
