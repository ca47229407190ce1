package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"heli-training/logbook/internal/auth"
	"heli-training/logbook/internal/common"
	"heli-training/logbook/internal/models/dtos"
)

// ValidateFlight handles POST /api/v1/flights/{id}/validate
func (h *Handlers) ValidateFlight() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.ValidateFlightRequest
		if err := decodeRequest(r, &req); err != nil {
			common.RespondError(w, initTime, err, "", http.StatusBadRequest)
			return
		}

		flight, err := h.reviews.Validate(r.Context(), auth.GetUserClaims(r.Context()), chi.URLParam(r, "id"), req.Grade, req.Remarks)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Flight validated", flight)
	}
}

// RejectFlight handles POST /api/v1/flights/{id}/reject
func (h *Handlers) RejectFlight() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		// feedback is optional, so an empty body is fine
		var req dtos.RejectFlightRequest
		if r.ContentLength != 0 {
			if err := decodeRequest(r, &req); err != nil {
				common.RespondError(w, initTime, err, "", http.StatusBadRequest)
				return
			}
		}

		flight, err := h.reviews.Reject(r.Context(), auth.GetUserClaims(r.Context()), chi.URLParam(r, "id"), req.Feedback)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Flight rejected", flight)
	}
}

// ValidateBatch handles POST /api/v1/flights/validate-batch
func (h *Handlers) ValidateBatch() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.BatchValidateRequest
		if err := decodeRequest(r, &req); err != nil {
			common.RespondError(w, initTime, err, "", http.StatusBadRequest)
			return
		}

		result := h.reviews.ValidateBatch(r.Context(), auth.GetUserClaims(r.Context()), req.IDs)
		common.RespondSuccess(w, initTime, "Batch validation finished", result)
	}
}

// PendingValidations handles GET /api/v1/validations/pending
func (h *Handlers) PendingValidations() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		groups, err := h.reviews.PendingByStudent(r.Context(), auth.GetUserClaims(r.Context()))
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Fetched Results", groups)
	}
}
