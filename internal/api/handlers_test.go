package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"heli-training/logbook/internal/auth"
	"heli-training/logbook/internal/constants"
	"heli-training/logbook/internal/jobs"
	"heli-training/logbook/internal/models"
	"heli-training/logbook/internal/services"
	"heli-training/logbook/internal/stats"
)

type mockFlightService struct {
	logFlightFunc func(ctx context.Context, actor *auth.UserClaims, flight models.FlightLog) (models.FlightLog, error)
	deleteFunc    func(ctx context.Context, actor *auth.UserClaims, id string) error
	getFunc       func(ctx context.Context, actor *auth.UserClaims, id string) (models.FlightLog, error)
	listFunc      func(ctx context.Context, actor *auth.UserClaims, filter services.FlightFilter) []models.FlightLog
}

func (m *mockFlightService) LogFlight(ctx context.Context, actor *auth.UserClaims, flight models.FlightLog) (models.FlightLog, error) {
	return m.logFlightFunc(ctx, actor, flight)
}

func (m *mockFlightService) Delete(ctx context.Context, actor *auth.UserClaims, id string) error {
	return m.deleteFunc(ctx, actor, id)
}

func (m *mockFlightService) Get(ctx context.Context, actor *auth.UserClaims, id string) (models.FlightLog, error) {
	return m.getFunc(ctx, actor, id)
}

func (m *mockFlightService) List(ctx context.Context, actor *auth.UserClaims, filter services.FlightFilter) []models.FlightLog {
	return m.listFunc(ctx, actor, filter)
}

type mockReviewService struct {
	validateFunc func(ctx context.Context, actor *auth.UserClaims, id, grade, remarks string) (models.FlightLog, error)
	rejectFunc   func(ctx context.Context, actor *auth.UserClaims, id, feedback string) (models.FlightLog, error)
	batchFunc    func(ctx context.Context, actor *auth.UserClaims, ids []string) services.BatchResult
	pendingFunc  func(ctx context.Context, actor *auth.UserClaims) ([]services.PendingGroup, error)
}

func (m *mockReviewService) Validate(ctx context.Context, actor *auth.UserClaims, id, grade, remarks string) (models.FlightLog, error) {
	return m.validateFunc(ctx, actor, id, grade, remarks)
}

func (m *mockReviewService) Reject(ctx context.Context, actor *auth.UserClaims, id, feedback string) (models.FlightLog, error) {
	return m.rejectFunc(ctx, actor, id, feedback)
}

func (m *mockReviewService) ValidateBatch(ctx context.Context, actor *auth.UserClaims, ids []string) services.BatchResult {
	return m.batchFunc(ctx, actor, ids)
}

func (m *mockReviewService) PendingByStudent(ctx context.Context, actor *auth.UserClaims) ([]services.PendingGroup, error) {
	return m.pendingFunc(ctx, actor)
}

type mockSyncRunner struct {
	runFunc func(ctx context.Context, trigger string) (services.SyncResult, error)
	status  jobs.JobStatus
}

func (m *mockSyncRunner) Run(ctx context.Context, trigger string) (services.SyncResult, error) {
	return m.runFunc(ctx, trigger)
}

func (m *mockSyncRunner) Status() jobs.JobStatus { return m.status }

type mockStatsProvider struct {
	hourTotalsFunc func(ctx context.Context, actor *auth.UserClaims, student string) stats.HourTotals
}

func (m *mockStatsProvider) HourTotals(ctx context.Context, actor *auth.UserClaims, student string) stats.HourTotals {
	return m.hourTotalsFunc(ctx, actor, student)
}

func (m *mockStatsProvider) Progress(ctx context.Context, actor *auth.UserClaims, student string) []stats.ModuleProgress {
	return stats.ComputeProgress(nil, constants.DefaultCurriculum)
}

func (m *mockStatsProvider) Meter(ctx context.Context, actor *auth.UserClaims) ([]stats.StudentMeter, error) {
	if !actor.CanValidate() {
		return nil, services.ErrForbidden
	}
	return []stats.StudentMeter{}, nil
}

func (m *mockStatsProvider) CourseProgress(ctx context.Context, actor *auth.UserClaims) ([]stats.StudentProgress, error) {
	return []stats.StudentProgress{}, nil
}

func (m *mockStatsProvider) Goals() constants.HourGoals { return constants.DefaultHourGoals }

type apiBody struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) apiBody {
	t.Helper()
	var body apiBody
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response %q: %v", rr.Body.String(), err)
	}
	return body
}

func newRequest(method, target, body string, claims *auth.UserClaims, params map[string]string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}

	ctx := req.Context()
	if claims != nil {
		ctx = auth.SetUserClaims(ctx, claims)
	}
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}

var (
	instructor = &auth.UserClaims{Username: "dris", Name: "DRIS", RoleValue: constants.RoleInstructor}
	student    = &auth.UserClaims{Username: "trujillo", Name: "TRUJILLO", RoleValue: constants.RoleStudent}
)

func TestListFlights_PassesFilter(t *testing.T) {
	var got services.FlightFilter
	h := &Handlers{flights: &mockFlightService{
		listFunc: func(ctx context.Context, actor *auth.UserClaims, filter services.FlightFilter) []models.FlightLog {
			got = filter
			return []models.FlightLog{{ID: "a"}}
		},
	}}

	rr := httptest.NewRecorder()
	h.ListFlights()(rr, newRequest(http.MethodGet, "/api/v1/flights?status=pending&student=Trujillo", "", instructor, nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", rr.Code)
	}
	if got.Status != models.ValidationPending || got.Student != "Trujillo" {
		t.Errorf("Expected pending filter for Trujillo, got %+v", got)
	}
}

func TestListFlights_BadStatus(t *testing.T) {
	h := &Handlers{flights: &mockFlightService{}}

	rr := httptest.NewRecorder()
	h.ListFlights()(rr, newRequest(http.MethodGet, "/api/v1/flights?status=maybe", "", instructor, nil))

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("Expected 400, got %d", rr.Code)
	}
}

func TestGetFlight_NotFound(t *testing.T) {
	h := &Handlers{flights: &mockFlightService{
		getFunc: func(ctx context.Context, actor *auth.UserClaims, id string) (models.FlightLog, error) {
			if id != "missing" {
				t.Errorf("Expected id from URL, got %q", id)
			}
			return models.FlightLog{}, services.ErrFlightNotFound
		},
	}}

	rr := httptest.NewRecorder()
	h.GetFlight()(rr, newRequest(http.MethodGet, "/api/v1/flights/missing", "", instructor, map[string]string{"id": "missing"}))

	if rr.Code != http.StatusNotFound {
		t.Fatalf("Expected 404, got %d", rr.Code)
	}
	body := decodeBody(t, rr)
	assert.Equal(t, string(constants.APIStatusError), body.Status)
	assert.Equal(t, constants.MsgFlightNotFound, body.Message)
}

func TestLogFlight(t *testing.T) {
	var got models.FlightLog
	h := &Handlers{flights: &mockFlightService{
		logFlightFunc: func(ctx context.Context, actor *auth.UserClaims, flight models.FlightLog) (models.FlightLog, error) {
			got = flight
			flight.ID = "new-id"
			return flight, nil
		},
	}}

	body := `{"date":"2024-09-01","studentName":"trujillo","session":"vbas-2","flightType":"S",
		"registration":" et-105 ","totalTime":75,"approaches":[{"type":"ils","count":2,"place":"LEGR"}]}`
	rr := httptest.NewRecorder()
	h.LogFlight()(rr, newRequest(http.MethodPost, "/api/v1/flights", body, instructor, nil))

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, models.FlightTypeSimulator, got.FlightType)
	assert.Equal(t, "ET-105", got.Aircraft.Registration)
	assert.Equal(t, 75, got.TotalTime)
	require.Len(t, got.Approaches, 1)
	assert.Equal(t, "ILS", got.Approaches[0].Type)
}

func TestLogFlight_RejectsInvalidBodies(t *testing.T) {
	h := &Handlers{flights: &mockFlightService{
		logFlightFunc: func(ctx context.Context, actor *auth.UserClaims, flight models.FlightLog) (models.FlightLog, error) {
			t.Fatal("service must not be called for an invalid body")
			return flight, nil
		},
	}}

	bodies := []string{
		`not json`,
		`{"studentName":"TRUJILLO","session":"VBAS-1"}`,
		`{"date":"01/09/2024","studentName":"TRUJILLO","session":"VBAS-1"}`,
		`{"date":"2024-09-01","studentName":"TRUJILLO","session":"VBAS-1","flightType":"Helicóptero"}`,
		`{"date":"2024-09-01","studentName":"TRUJILLO","session":"VBAS-1","totalTime":-5}`,
	}
	for _, b := range bodies {
		rr := httptest.NewRecorder()
		h.LogFlight()(rr, newRequest(http.MethodPost, "/api/v1/flights", b, instructor, nil))
		if rr.Code != http.StatusBadRequest {
			t.Errorf("Expected 400 for %s, got %d", b, rr.Code)
		}
	}
}

func TestLogFlight_ForbiddenForStudent(t *testing.T) {
	h := &Handlers{flights: &mockFlightService{
		logFlightFunc: func(ctx context.Context, actor *auth.UserClaims, flight models.FlightLog) (models.FlightLog, error) {
			return models.FlightLog{}, services.ErrForbidden
		},
	}}

	rr := httptest.NewRecorder()
	h.LogFlight()(rr, newRequest(http.MethodPost, "/api/v1/flights",
		`{"date":"2024-09-01","studentName":"TRUJILLO","session":"VBAS-1"}`, student, nil))

	if rr.Code != http.StatusForbidden {
		t.Fatalf("Expected 403, got %d", rr.Code)
	}
}

func TestValidateFlight(t *testing.T) {
	h := &Handlers{reviews: &mockReviewService{
		validateFunc: func(ctx context.Context, actor *auth.UserClaims, id, grade, remarks string) (models.FlightLog, error) {
			if grade == "11" {
				return models.FlightLog{}, services.ErrInvalidGrade
			}
			return models.FlightLog{ID: id, Grade: grade, ValidationStatus: models.ValidationValidated}, nil
		},
	}}
	params := map[string]string{"id": "f1"}

	rr := httptest.NewRecorder()
	h.ValidateFlight()(rr, newRequest(http.MethodPost, "/api/v1/flights/f1/validate", `{"grade":"8"}`, instructor, params))
	require.Equal(t, http.StatusOK, rr.Code)

	var flight models.FlightLog
	require.NoError(t, json.Unmarshal(decodeBody(t, rr).Data, &flight))
	assert.Equal(t, "f1", flight.ID)
	assert.Equal(t, models.ValidationValidated, flight.ValidationStatus)

	rr = httptest.NewRecorder()
	h.ValidateFlight()(rr, newRequest(http.MethodPost, "/api/v1/flights/f1/validate", `{"grade":"11"}`, instructor, params))
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = httptest.NewRecorder()
	h.ValidateFlight()(rr, newRequest(http.MethodPost, "/api/v1/flights/f1/validate", `{}`, instructor, params))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestRejectFlight_EmptyBodyAndConflict(t *testing.T) {
	var feedback string
	h := &Handlers{reviews: &mockReviewService{
		rejectFunc: func(ctx context.Context, actor *auth.UserClaims, id, fb string) (models.FlightLog, error) {
			if id == "done" {
				return models.FlightLog{}, services.ErrInvalidTransition
			}
			feedback = fb
			return models.FlightLog{ID: id, ValidationStatus: models.ValidationRejected}, nil
		},
	}}

	rr := httptest.NewRecorder()
	h.RejectFlight()(rr, newRequest(http.MethodPost, "/api/v1/flights/f1/reject", "", instructor, map[string]string{"id": "f1"}))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Empty(t, feedback)

	rr = httptest.NewRecorder()
	h.RejectFlight()(rr, newRequest(http.MethodPost, "/api/v1/flights/done/reject", `{"feedback":"Repetir"}`, instructor, map[string]string{"id": "done"}))
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestValidateBatch(t *testing.T) {
	h := &Handlers{reviews: &mockReviewService{
		batchFunc: func(ctx context.Context, actor *auth.UserClaims, ids []string) services.BatchResult {
			return services.BatchResult{Validated: ids[:1], Skipped: map[string]string{ids[1]: "not pending"}}
		},
	}}

	rr := httptest.NewRecorder()
	h.ValidateBatch()(rr, newRequest(http.MethodPost, "/api/v1/flights/validate-batch", `{"ids":["a","b"]}`, instructor, nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var result services.BatchResult
	require.NoError(t, json.Unmarshal(decodeBody(t, rr).Data, &result))
	assert.Equal(t, []string{"a"}, result.Validated)
	assert.Equal(t, "not pending", result.Skipped["b"])

	rr = httptest.NewRecorder()
	h.ValidateBatch()(rr, newRequest(http.MethodPost, "/api/v1/flights/validate-batch", `{"ids":[]}`, instructor, nil))
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestTriggerSync_FailureHidesCause(t *testing.T) {
	h := &Handlers{sync: &mockSyncRunner{
		runFunc: func(ctx context.Context, trigger string) (services.SyncResult, error) {
			if trigger != constants.SyncSourceManual {
				t.Errorf("Expected manual trigger, got %q", trigger)
			}
			return services.SyncResult{}, errors.New("dial tcp 10.1.2.3:443: connection refused")
		},
	}}

	rr := httptest.NewRecorder()
	h.TriggerSync()(rr, newRequest(http.MethodPost, "/api/v1/sync", "", &auth.UserClaims{Username: "admin", RoleValue: constants.RoleAdmin}, nil))

	if rr.Code != http.StatusBadGateway {
		t.Fatalf("Expected 502, got %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "10.1.2.3") {
		t.Errorf("Expected remote error to stay in the logs, got %s", rr.Body.String())
	}
	body := decodeBody(t, rr)
	assert.JSONEq(t, `{"success":false}`, string(body.Data))
}

func TestTriggerSync_Success(t *testing.T) {
	h := &Handlers{sync: &mockSyncRunner{
		runFunc: func(ctx context.Context, trigger string) (services.SyncResult, error) {
			return services.SyncResult{Records: 12, RejectedFlights: 1}, nil
		},
	}}

	rr := httptest.NewRecorder()
	h.TriggerSync()(rr, newRequest(http.MethodPost, "/api/v1/sync", "", instructor, nil))

	require.Equal(t, http.StatusOK, rr.Code)
	var resp struct {
		Success         bool `json:"success"`
		Records         int  `json:"records"`
		RejectedFlights int  `json:"rejectedFlights"`
	}
	require.NoError(t, json.Unmarshal(decodeBody(t, rr).Data, &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 12, resp.Records)
	assert.Equal(t, 1, resp.RejectedFlights)
}

func TestHourTotals_StudentSeesOwnHours(t *testing.T) {
	var asked string
	h := &Handlers{stats: &mockStatsProvider{
		hourTotalsFunc: func(ctx context.Context, actor *auth.UserClaims, name string) stats.HourTotals {
			asked = name
			return stats.HourTotals{Flights: 1, TotalMinutes: 90, RealMinutes: 90}
		},
	}}

	rr := httptest.NewRecorder()
	h.HourTotals()(rr, newRequest(http.MethodGet, "/api/v1/stats?student=GAYO", "", student, nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "TRUJILLO", asked)

	var resp struct {
		TotalHours float64 `json:"totalHours"`
	}
	require.NoError(t, json.Unmarshal(decodeBody(t, rr).Data, &resp))
	assert.InDelta(t, 1.5, resp.TotalHours, 1e-9)
}

func TestMeter_ForbiddenForStudent(t *testing.T) {
	h := &Handlers{stats: &mockStatsProvider{}}

	rr := httptest.NewRecorder()
	h.Meter()(rr, newRequest(http.MethodGet, "/api/v1/stats/meter", "", student, nil))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = httptest.NewRecorder()
	h.Meter()(rr, newRequest(http.MethodGet, "/api/v1/stats/meter", "", instructor, nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestExportCSV(t *testing.T) {
	h := &Handlers{flights: &mockFlightService{
		listFunc: func(ctx context.Context, actor *auth.UserClaims, filter services.FlightFilter) []models.FlightLog {
			return []models.FlightLog{{
				ID:               "f1",
				Date:             models.NewDate(2024, 9, 1),
				StudentName:      "TRUJILLO",
				Session:          "VBAS-1",
				FlightType:       models.FlightTypeReal,
				TotalTime:        45,
				ValidationStatus: models.ValidationPending,
			}}
		},
	}}

	rr := httptest.NewRecorder()
	h.ExportCSV()(rr, newRequest(http.MethodGet, "/api/v1/export", "", instructor, nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "logbook-")
	lines := strings.Split(strings.TrimSpace(rr.Body.String()), "\n")
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "ID,FECHA,ALUMNO"))
	assert.Contains(t, lines[1], "TRUJILLO")
}

func TestStatusForError(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{services.ErrFlightNotFound, http.StatusNotFound},
		{services.ErrForbidden, http.StatusForbidden},
		{services.ErrInvalidTransition, http.StatusConflict},
		{services.ErrInvalidGrade, http.StatusBadRequest},
		{services.ErrInvalidCredentials, http.StatusUnauthorized},
		{fmt.Errorf("validate f1: %w", services.ErrForbidden), http.StatusForbidden},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		if got := statusForError(c.err); got != c.want {
			t.Errorf("statusForError(%v): expected %d, got %d", c.err, c.want, got)
		}
	}
}
