package api

import (
	"net/http"
	"strconv"
	"time"

	"heli-training/logbook/internal/auth"
	"heli-training/logbook/internal/common"
	"heli-training/logbook/internal/models/dtos"
)

const defaultLoginHistoryLimit = 50

// Login handles POST /api/v1/auth/login
func (h *Handlers) Login() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		var req dtos.LoginRequest
		if err := decodeRequest(r, &req); err != nil {
			common.RespondError(w, initTime, err, "", http.StatusBadRequest)
			return
		}

		result, err := h.sessions.Login(r.Context(), req.Username, req.Password)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}

		common.RespondSuccess(w, initTime, "Logged in", result)
	}
}

// Logout handles POST /api/v1/auth/logout
func (h *Handlers) Logout() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		h.sessions.Logout(auth.GetUserClaims(r.Context()))
		common.RespondSuccess(w, initTime, "Logged out", nil)
	}
}

// Me handles GET /api/v1/auth/me
func (h *Handlers) Me() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()
		claims := auth.GetUserClaims(r.Context())
		if claims == nil {
			common.RespondError(w, initTime, nil, "Unauthorized: missing claims", http.StatusUnauthorized)
			return
		}

		resp := dtos.UserResponse{
			Username: claims.Username,
			Name:     claims.Name,
			Role:     claims.Role(),
		}
		if !claims.ExpiresAt.IsZero() {
			resp.ExpiresAt = &claims.ExpiresAt
		}
		common.RespondSuccess(w, initTime, "Current user", resp)
	}
}

// RecentLogins handles GET /api/v1/admin/logins
func (h *Handlers) RecentLogins() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		initTime := time.Now()

		limit := defaultLoginHistoryLimit
		if qs := r.URL.Query().Get("limit"); qs != "" {
			l, err := strconv.Atoi(qs)
			if err != nil || l <= 0 {
				common.RespondError(w, initTime, nil, "Invalid limit parameter", http.StatusBadRequest)
				return
			}
			limit = l
		}

		logins, err := h.sessions.RecentLogins(r.Context(), auth.GetUserClaims(r.Context()), limit)
		if err != nil {
			respondServiceError(w, initTime, err)
			return
		}
		common.RespondSuccess(w, initTime, "Fetched Results", logins)
	}
}
