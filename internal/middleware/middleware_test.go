package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"heli-training/logbook/internal/auth"
	"heli-training/logbook/internal/constants"
	"heli-training/logbook/internal/logging"
	"heli-training/logbook/internal/metrics"
)

type mockAuthenticator struct {
	authenticateFunc func(ctx context.Context, token string) (*auth.UserClaims, error)
}

func (m *mockAuthenticator) Authenticate(ctx context.Context, token string) (*auth.UserClaims, error) {
	return m.authenticateFunc(ctx, token)
}

func claimsEcho() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims := auth.GetUserClaims(r.Context())
		if claims == nil {
			w.WriteHeader(http.StatusTeapot)
			return
		}
		w.Write([]byte(claims.Username))
	})
}

func TestAuthMiddleware(t *testing.T) {
	authenticator := &mockAuthenticator{authenticateFunc: func(ctx context.Context, token string) (*auth.UserClaims, error) {
		if token == "good" {
			return &auth.UserClaims{Username: "dris", RoleValue: constants.RoleInstructor}, nil
		}
		return nil, errors.New("bad token")
	}}
	handler := AuthMiddleware(authenticator)(claimsEcho())

	cases := []struct {
		name   string
		header string
		status int
	}{
		{"valid bearer", "Bearer good", http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic good", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"rejected token", "Bearer forged", http.StatusUnauthorized},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/flights", nil)
			if c.header != "" {
				req.Header.Set("Authorization", c.header)
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != c.status {
				t.Fatalf("Expected status %d, got %d", c.status, rr.Code)
			}
			if c.status == http.StatusOK && rr.Body.String() != "dris" {
				t.Errorf("Expected claims for dris, got %q", rr.Body.String())
			}
		})
	}
}

func TestRequireRole(t *testing.T) {
	handler := RequireRole(constants.RoleAdmin, constants.RoleInstructor)(claimsEcho())

	cases := []struct {
		name   string
		claims *auth.UserClaims
		status int
	}{
		{"admin", &auth.UserClaims{Username: "admin", RoleValue: constants.RoleAdmin}, http.StatusOK},
		{"instructor", &auth.UserClaims{Username: "dris", RoleValue: constants.RoleInstructor}, http.StatusOK},
		{"student", &auth.UserClaims{Username: "trujillo", RoleValue: constants.RoleStudent}, http.StatusForbidden},
		{"anonymous", nil, http.StatusUnauthorized},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/v1/sync", nil)
			if c.claims != nil {
				req = req.WithContext(auth.SetUserClaims(req.Context(), c.claims))
			}
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)
			if rr.Code != c.status {
				t.Errorf("Expected status %d, got %d", c.status, rr.Code)
			}
		})
	}
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(0.001, 2)
	handler := rl.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	call := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
		req.RemoteAddr = addr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	for i := 0; i < 2; i++ {
		if code := call("10.0.0.5:4000"); code != http.StatusNoContent {
			t.Fatalf("Expected request %d to pass, got %d", i+1, code)
		}
	}
	if code := call("10.0.0.5:4001"); code != http.StatusTooManyRequests {
		t.Errorf("Expected 429 once burst is spent, got %d", code)
	}
	if code := call("10.0.0.6:4000"); code != http.StatusNoContent {
		t.Errorf("Expected other clients to keep their own bucket, got %d", code)
	}
	for i := 0; i < 5; i++ {
		if code := call("127.0.0.1:5000"); code != http.StatusNoContent {
			t.Fatalf("Expected loopback to bypass the limiter, got %d", code)
		}
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/healthCheck", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if seen != "abc-123" || rr.Header().Get("X-Request-ID") != "abc-123" {
		t.Errorf("Expected caller request id to be kept, got %q", seen)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthCheck", nil))
	if len(seen) != 36 {
		t.Errorf("Expected a generated uuid, got %q", seen)
	}
}

func TestMetricsMiddleware_UsesRoutePattern(t *testing.T) {
	reg := metrics.NewMetricsRegistry()
	r := chi.NewRouter()
	r.Use(MetricsMiddleware(reg))
	r.Get("/api/v1/flights/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/flights/42", nil))

	got := testutil.ToFloat64(reg.HTTPRequestsTotal.WithLabelValues("/api/v1/flights/{id}", http.MethodGet, "404"))
	if got != 1 {
		t.Errorf("Expected one request counted under the route pattern, got %v", got)
	}
}

func TestNormalizeEndpoint(t *testing.T) {
	cases := map[string]string{
		"/api/v1/flights/12345":                                       "/api/v1/flights/{id}",
		"/api/v1/flights/3f2b8c1e-9d4a-4c55-8a0e-1b2c3d4e5f60/reject": "/api/v1/flights/{id}/reject",
		"/api/v1/flights/1712345678-abcd/validate":                    "/api/v1/flights/{id}/validate",
		"/api/v1/stats/hours":                                         "/api/v1/stats/hours",
		"/api/v1/validations/batch":                                   "/api/v1/validations/batch",
	}
	for in, want := range cases {
		if got := NormalizeEndpoint(in); got != want {
			t.Errorf("NormalizeEndpoint(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestMetricsMiddleware_LogsAuthenticatedCaller(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	logging.SetLogger(zap.New(core).Sugar())
	defer logging.SetLogger(zap.NewNop().Sugar())

	authenticator := &mockAuthenticator{authenticateFunc: func(ctx context.Context, token string) (*auth.UserClaims, error) {
		return &auth.UserClaims{Username: "dris", RoleValue: constants.RoleInstructor}, nil
	}}

	r := chi.NewRouter()
	r.Use(RequestIDMiddleware)
	r.Use(MetricsMiddleware(metrics.NewMetricsRegistry()))
	r.With(AuthMiddleware(authenticator)).Get("/api/v1/flights", func(w http.ResponseWriter, r *http.Request) {})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/flights", nil)
	req.Header.Set("Authorization", "Bearer any")
	req.Header.Set("X-Request-ID", "req-1")
	r.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("HTTP request completed").All()
	if len(entries) != 1 {
		t.Fatalf("Expected one request log, got %d", len(entries))
	}
	fields := entries[0].ContextMap()
	if fields["username"] != "dris" || fields["role"] != "instructor" || fields["request_id"] != "req-1" {
		t.Errorf("Expected caller fields in the request log, got %v", fields)
	}
	if fields["endpoint"] != "/api/v1/flights" {
		t.Errorf("Expected route pattern as endpoint, got %v", fields["endpoint"])
	}
}
