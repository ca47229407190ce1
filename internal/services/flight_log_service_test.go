package services

import (
	"context"
	"errors"
	"testing"

	"heli-training/logbook/internal/config"
	"heli-training/logbook/internal/models"
	"heli-training/logbook/internal/providers"
)

func newFlight(student, session, registration string) models.FlightLog {
	date, _ := models.ParseISODate("2024-09-01")
	return models.FlightLog{
		Date:        date,
		StudentName: student,
		Session:     session,
		FlightType:  models.FlightTypeReal,
		Aircraft:    models.Aircraft{Registration: registration},
		TotalTime:   90,
	}
}

func TestFlightLogService_LogFlightPrependsPending(t *testing.T) {
	s := setupTestStore(t)
	seed(t, s, pendingFlight("old", "GAYO", "VBAS-1"))
	dispatcher := &mockDispatcher{}
	svc := NewFlightLogService(s, dispatcher, config.DefaultRoster())
	ctx := context.Background()

	got, err := svc.LogFlight(ctx, instructorClaims, newFlight("trujillo", "vbas-2", "ET-180"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	if got.ID == "" || got.Status() != models.ValidationPending {
		t.Errorf("Expected a pending flight with an id, got %+v", got)
	}
	if got.StudentName != "TRUJILLO" || got.Session != "VBAS-2" || got.InstructorName != "Dris" {
		t.Errorf("Expected normalised names, got %+v", got)
	}

	records := s.List(ctx)
	if len(records) != 2 || records[0].ID != got.ID {
		t.Fatalf("Expected the new flight first, got %+v", records)
	}

	push, ok := dispatcher.last().(providers.FlightPush)
	if !ok {
		t.Fatalf("Expected a flight push, got %#v", dispatcher.last())
	}
	if push.ForceSimulator {
		t.Error("Expected a real flight push")
	}
}

func TestFlightLogService_SimulatorRegistrationForcesType(t *testing.T) {
	s := setupTestStore(t)
	dispatcher := &mockDispatcher{}
	svc := NewFlightLogService(s, dispatcher, config.DefaultRoster())

	got, err := svc.LogFlight(context.Background(), adminClaims, newFlight("GAYO", "VBAS-1", "et-105"))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if got.FlightType != models.FlightTypeSimulator {
		t.Errorf("Expected simulator, got %s", got.FlightType)
	}
	push := dispatcher.last().(providers.FlightPush)
	if !push.ForceSimulator || push.Form().Get("REAL / SIM") != "S" {
		t.Errorf("Expected forced simulator push, got %+v", push.Form())
	}
}

func TestFlightLogService_LogFlightRefusals(t *testing.T) {
	s := setupTestStore(t)
	svc := NewFlightLogService(s, &mockDispatcher{}, config.DefaultRoster())
	ctx := context.Background()

	if _, err := svc.LogFlight(ctx, studentClaims, newFlight("TRUJILLO", "VBAS-1", "")); !errors.Is(err, ErrForbidden) {
		t.Errorf("Expected students to be refused, got %v", err)
	}

	other := newFlight("TRUJILLO", "VBAS-1", "")
	other.InstructorName = "PRIETO"
	if _, err := svc.LogFlight(ctx, instructorClaims, other); !errors.Is(err, ErrForbidden) {
		t.Errorf("Expected instructors to log only their own flights, got %v", err)
	}

	missing := newFlight("", "VBAS-1", "")
	if _, err := svc.LogFlight(ctx, adminClaims, missing); !errors.Is(err, ErrInvalidFlight) {
		t.Errorf("Expected ErrInvalidFlight, got %v", err)
	}
	if len(s.List(ctx)) != 0 {
		t.Error("Expected nothing stored")
	}
}

func TestFlightLogService_ListAndVisibility(t *testing.T) {
	s := setupTestStore(t)
	rejected := pendingFlight("c", "TRUJILLO", "VBAS-2")
	rejected.ValidationStatus = models.ValidationRejected
	seed(t, s,
		pendingFlight("a", "TRUJILLO", "VBAS-1"),
		pendingFlight("b", "GAYO", "VBAS-1"),
		rejected,
	)
	svc := NewFlightLogService(s, nil, config.DefaultRoster())
	ctx := context.Background()

	if got := svc.List(ctx, adminClaims, FlightFilter{}); len(got) != 3 {
		t.Errorf("Expected 3 flights for admin, got %d", len(got))
	}
	if got := svc.List(ctx, studentClaims, FlightFilter{}); len(got) != 2 {
		t.Errorf("Expected 2 flights for the student, got %d", len(got))
	}
	if got := svc.List(ctx, adminClaims, FlightFilter{Status: models.ValidationRejected}); len(got) != 1 || got[0].ID != "c" {
		t.Errorf("Expected the rejected flight only, got %+v", got)
	}
	if got := svc.List(ctx, adminClaims, FlightFilter{Student: "gayo"}); len(got) != 1 || got[0].ID != "b" {
		t.Errorf("Expected GAYO's flight only, got %+v", got)
	}

	if _, err := svc.Get(ctx, studentClaims, "b"); !errors.Is(err, ErrFlightNotFound) {
		t.Errorf("Expected another student's flight to be hidden, got %v", err)
	}
	if _, err := svc.Get(ctx, studentClaims, "a"); err != nil {
		t.Errorf("Expected own flight to be visible, got %v", err)
	}
}

func TestFlightLogService_DeleteIsLocal(t *testing.T) {
	s := setupTestStore(t)
	seed(t, s, pendingFlight("a", "TRUJILLO", "VBAS-1"))
	dispatcher := &mockDispatcher{}
	svc := NewFlightLogService(s, dispatcher, config.DefaultRoster())
	ctx := context.Background()

	if err := svc.Delete(ctx, studentClaims, "a"); !errors.Is(err, ErrForbidden) {
		t.Errorf("Expected students to be refused, got %v", err)
	}
	if err := svc.Delete(ctx, adminClaims, "a"); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if _, found := s.Get(ctx, "a"); found {
		t.Error("Expected the flight to be gone")
	}
	if err := svc.Delete(ctx, adminClaims, "a"); !errors.Is(err, ErrFlightNotFound) {
		t.Errorf("Expected ErrFlightNotFound, got %v", err)
	}
	if dispatcher.last() != nil {
		t.Error("Expected no push for a local delete")
	}
}
