package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"heli-training/logbook/internal/auth"
	"heli-training/logbook/internal/common"
	"heli-training/logbook/internal/models"
	"heli-training/logbook/internal/models/dtos"
	"heli-training/logbook/internal/services"
)

// filterFromQuery reads the status, student and instructor query parameters.
func filterFromQuery(r *http.Request) (services.FlightFilter, bool) {
	q := r.URL.Query()
	filter := services.FlightFilter{
		Student:    strings.TrimSpace(q.Get("student")),
		Instructor: strings.TrimSpace(q.Get("instructor")),
	}
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status, ok := models.ParseValidationStatus(raw)
		if !ok {
			return filter, false
		}
		filter.Status = status
	}
	return filter, true
}

// ListFlights handles GET /api/v1/flights
func (h *Handlers) ListFlights() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		filter, ok := filterFromQuery(r)
		if !ok {
			common.RespondError(w, initTime, nil, "Invalid status parameter", http.StatusBadRequest)
			return
		}

		flights := h.flights.List(r.Context(), auth.GetUserClaims(r.Context()), filter)
		common.RespondSuccess(w, initTime, "Fetched Results", flights)
	}
}

// GetFlight handles GET /api/v1/flights/{id}
func (h *Handlers) GetFlight() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		flight, err := h.flights.Get(r.Context(), auth.GetUserClaims(r.Context()), chi.URLParam(r, "id"))
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Fetched Results", flight)
	}
}

// LogFlight handles POST /api/v1/flights
func (h *Handlers) LogFlight() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.LogFlightRequest
		if err := decodeRequest(r, &req); err != nil {
			common.RespondError(w, initTime, err, "", http.StatusBadRequest)
			return
		}

		flight, err := flightFromRequest(req)
		if err != nil {
			common.RespondError(w, initTime, err, "", http.StatusBadRequest)
			return
		}

		saved, err := h.flights.LogFlight(r.Context(), auth.GetUserClaims(r.Context()), flight)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Flight logged", saved, http.StatusCreated)
	}
}

// DeleteFlight handles DELETE /api/v1/flights/{id}
func (h *Handlers) DeleteFlight() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		if err := h.flights.Delete(r.Context(), auth.GetUserClaims(r.Context()), chi.URLParam(r, "id")); err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Flight deleted locally", nil)
	}
}

func flightFromRequest(req dtos.LogFlightRequest) (models.FlightLog, error) {
	date, err := models.ParseISODate(req.Date)
	if err != nil {
		return models.FlightLog{}, err
	}

	approaches := make([]models.Approach, 0, len(req.Approaches))
	for _, a := range req.Approaches {
		approaches = append(approaches, models.Approach{
			Type:  strings.ToUpper(strings.TrimSpace(a.Type)),
			Count: a.Count,
			Place: strings.TrimSpace(a.Place),
		})
	}

	flightType := models.FlightTypeReal
	if req.FlightType != "" {
		flightType = models.ParseFlightType(req.FlightType)
	}

	return models.FlightLog{
		Date:           date,
		StudentName:    req.StudentName,
		Session:        req.Session,
		InstructorName: req.InstructorName,
		FlightType:     flightType,
		Aircraft:       models.Aircraft{Registration: strings.ToUpper(strings.TrimSpace(req.Registration))},
		TotalTime:      req.TotalTime,
		Departure:      req.Departure,
		Arrival:        req.Arrival,
		Procedures:     req.Procedures,
		Remarks:        req.Remarks,
		Approaches:     approaches,
	}, nil
}
