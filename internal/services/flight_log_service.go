package services

import (
	"context"
	"fmt"
	"strings"

	"heli-training/logbook/internal/auth"
	"heli-training/logbook/internal/common"
	"heli-training/logbook/internal/config"
	"heli-training/logbook/internal/constants"
	"heli-training/logbook/internal/ingest"
	"heli-training/logbook/internal/logging"
	"heli-training/logbook/internal/models"
	"heli-training/logbook/internal/providers"
	"heli-training/logbook/internal/store"
)

// FlightFilter narrows a flight listing. Empty fields match everything.
type FlightFilter struct {
	Status     models.ValidationStatus
	Student    string
	Instructor string
}

func (f FlightFilter) matches(flight models.FlightLog) bool {
	if f.Status != "" && flight.Status() != f.Status.Normalize() {
		return false
	}
	if f.Student != "" && !common.SameName(f.Student, flight.StudentName) {
		return false
	}
	if f.Instructor != "" && !common.SameName(f.Instructor, flight.InstructorName) {
		return false
	}
	return true
}

// FlightLogService records new flights and serves the local logbook.
type FlightLogService struct {
	store      store.RecordStore
	dispatcher PushDispatcher
	roster     config.Roster
	newID      ingest.IDGenerator
}

func NewFlightLogService(s store.RecordStore, dispatcher PushDispatcher, roster config.Roster) *FlightLogService {
	return &FlightLogService{
		store:      s,
		dispatcher: dispatcher,
		roster:     roster,
		newID:      ingest.NewUUID,
	}
}

// LogFlight saves a new pending flight at the top of the logbook and pushes
// it to the remote flights sheet. Flights on simulator registrations are
// always logged as simulator time.
func (svc *FlightLogService) LogFlight(ctx context.Context, actor *auth.UserClaims, flight models.FlightLog) (models.FlightLog, error) {
	if !actor.CanValidate() {
		return models.FlightLog{}, ErrForbidden
	}

	flight.StudentName = strings.TrimSpace(flight.StudentName)
	flight.Session = strings.ToUpper(strings.TrimSpace(flight.Session))
	flight.InstructorName = strings.TrimSpace(flight.InstructorName)
	if flight.Date.IsZero() || flight.StudentName == "" || flight.Session == "" || flight.TotalTime < 0 {
		return models.FlightLog{}, ErrInvalidFlight
	}

	if flight.InstructorName == "" {
		flight.InstructorName = actor.Name
	}
	if actor.Role() == constants.RoleInstructor && !common.SameName(flight.InstructorName, actor.Name) {
		return models.FlightLog{}, ErrForbidden
	}
	if match, ok := common.MatchRoster(flight.StudentName, svc.roster.Students); ok {
		flight.StudentName = match
	}
	if flight.FlightType == "" {
		flight.FlightType = models.FlightTypeReal
	}

	forceSimulator := svc.roster.IsSimulatorRegistration(flight.Aircraft.Registration)
	if forceSimulator && flight.FlightType == models.FlightTypeReal {
		flight.FlightType = models.FlightTypeSimulator
	}
	if flight.Approaches == nil {
		flight.Approaches = []models.Approach{}
	}

	flight.ID = svc.newID()
	flight.ValidationStatus = models.ValidationPending
	flight.StudentFeedback = ""
	flight.ValidationRemarks = ""

	if err := svc.store.Put(ctx, flight); err != nil {
		return models.FlightLog{}, fmt.Errorf("failed to save flight: %w", err)
	}
	logging.Info("Flight logged", "id", flight.ID, "key", flight.CompositeKey(), "user", actor.UserID())

	if svc.dispatcher != nil {
		svc.dispatcher.Dispatch(providers.FlightPush{Flight: flight, ForceSimulator: forceSimulator})
	}
	return flight, nil
}

// Delete removes a flight from the local logbook only. The remote sheet keeps
// its row, so the flight comes back on the next sync.
func (svc *FlightLogService) Delete(ctx context.Context, actor *auth.UserClaims, id string) error {
	flight, found := svc.store.Get(ctx, id)
	if !found {
		return ErrFlightNotFound
	}
	if !canActOn(actor, flight) {
		return ErrForbidden
	}
	if err := svc.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete flight: %w", err)
	}
	logging.Info("Flight deleted locally", "id", id, "user", actor.UserID())
	return nil
}

// Get returns a flight the actor is allowed to see.
func (svc *FlightLogService) Get(ctx context.Context, actor *auth.UserClaims, id string) (models.FlightLog, error) {
	flight, found := svc.store.Get(ctx, id)
	if !found || !canSee(actor, flight) {
		return models.FlightLog{}, ErrFlightNotFound
	}
	return flight, nil
}

// List returns the flights matching filter in logbook order. Students only
// ever see their own flights.
func (svc *FlightLogService) List(ctx context.Context, actor *auth.UserClaims, filter FlightFilter) []models.FlightLog {
	return svc.store.Aggregate(ctx, func(f models.FlightLog) bool {
		return canSee(actor, f) && filter.matches(f)
	})
}

func canSee(actor *auth.UserClaims, flight models.FlightLog) bool {
	switch actor.Role() {
	case constants.RoleAdmin, constants.RoleInstructor:
		return true
	case constants.RoleStudent:
		return common.SameName(actor.Name, flight.StudentName)
	default:
		return false
	}
}
