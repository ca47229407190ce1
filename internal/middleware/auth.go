package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"heli-training/logbook/internal/auth"
	"heli-training/logbook/internal/common"
	"heli-training/logbook/internal/constants"
)

// Authenticator resolves a bearer token into claims.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*auth.UserClaims, error)
}

// AuthMiddleware requires a valid "Authorization: Bearer <token>" header and
// stores the caller's claims in the request context.
func AuthMiddleware(authenticator Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			initTime := time.Now()

			authHeader := r.Header.Get("Authorization")
			token, found := strings.CutPrefix(authHeader, "Bearer ")
			token = strings.TrimSpace(token)
			if !found || token == "" {
				common.RespondError(w, initTime, nil, "Unauthorized. Missing bearer token", http.StatusUnauthorized)
				return
			}

			claims, err := authenticator.Authenticate(r.Context(), token)
			if err != nil {
				common.RespondError(w, initTime, nil, "Unauthorized. Invalid or expired token", http.StatusUnauthorized)
				return
			}

			noteCaller(r.Context(), claims)
			ctx := auth.SetUserClaims(r.Context(), claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole lets the request through only when the caller holds one of roles.
func RequireRole(roles ...constants.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims := auth.GetUserClaims(r.Context())
			if claims == nil {
				common.RespondError(w, time.Now(), nil, "Unauthorized. Missing claims", http.StatusUnauthorized)
				return
			}
			if !claims.HasRole(roles...) {
				common.RespondError(w, time.Now(), nil, constants.MsgForbidden, http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
