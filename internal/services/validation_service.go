package services

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"heli-training/logbook/internal/auth"
	"heli-training/logbook/internal/common"
	"heli-training/logbook/internal/constants"
	"heli-training/logbook/internal/logging"
	"heli-training/logbook/internal/metrics"
	"heli-training/logbook/internal/models"
	"heli-training/logbook/internal/providers"
	"heli-training/logbook/internal/store"
)

// PushDispatcher queues a push to the remote logbook without waiting for it.
type PushDispatcher interface {
	Dispatch(req providers.PushRequest) bool
}

// allowedTransitions lists, per target state, the states it can be entered from.
var allowedTransitions = map[models.ValidationStatus][]models.ValidationStatus{
	models.ValidationValidated: {models.ValidationPending, models.ValidationRejected, models.ValidationValidated},
	models.ValidationRejected:  {models.ValidationPending},
}

// CanTransition reports whether a flight in from may move to to.
func CanTransition(from, to models.ValidationStatus) bool {
	for _, s := range allowedTransitions[to] {
		if s == from.Normalize() {
			return true
		}
	}
	return false
}

// ParseGrade checks a grade and returns it trimmed. Grades are a decimal
// between 0 and 10 written with a dot or a comma, or one of the fixed labels.
func ParseGrade(raw string) (string, error) {
	grade := strings.TrimSpace(raw)
	if grade == "" {
		return "", ErrInvalidGrade
	}
	for _, label := range constants.GradeLabels {
		if strings.EqualFold(grade, label) {
			return grade, nil
		}
	}
	value, err := strconv.ParseFloat(strings.Replace(grade, ",", ".", 1), 64)
	if err != nil || math.IsNaN(value) || value < 0 || value > 10 {
		return "", ErrInvalidGrade
	}
	return grade, nil
}

// ValidationService moves flights through the review lifecycle. Every change
// is written locally first and then pushed without waiting for the remote.
type ValidationService struct {
	store      store.RecordStore
	dispatcher PushDispatcher
	metrics    *metrics.MetricsRegistry
}

func NewValidationService(s store.RecordStore, dispatcher PushDispatcher, m *metrics.MetricsRegistry) *ValidationService {
	return &ValidationService{store: s, dispatcher: dispatcher, metrics: m}
}

// Validate marks a flight validated with grade and optional remarks.
func (svc *ValidationService) Validate(ctx context.Context, actor *auth.UserClaims, id, grade, remarks string) (models.FlightLog, error) {
	grade, err := ParseGrade(grade)
	if err != nil {
		return models.FlightLog{}, err
	}

	flight, err := svc.load(ctx, actor, id, models.ValidationValidated)
	if err != nil {
		return models.FlightLog{}, err
	}

	flight.ValidationStatus = models.ValidationValidated
	flight.Grade = grade
	flight.ValidationRemarks = strings.TrimSpace(remarks)

	return svc.apply(ctx, actor, flight, providers.ValidationPush{
		FlightID: flight.CompositeKey(),
		Status:   models.ValidationValidated,
		Grade:    flight.Grade,
		Remarks:  flight.ValidationRemarks,
	})
}

// Reject marks a flight rejected. Empty feedback is stored as a placeholder.
func (svc *ValidationService) Reject(ctx context.Context, actor *auth.UserClaims, id, feedback string) (models.FlightLog, error) {
	flight, err := svc.load(ctx, actor, id, models.ValidationRejected)
	if err != nil {
		return models.FlightLog{}, err
	}

	feedback = strings.TrimSpace(feedback)
	if feedback == "" {
		feedback = constants.RejectionFeedbackPlaceholder
	}

	flight.ValidationStatus = models.ValidationRejected
	flight.StudentFeedback = feedback

	return svc.apply(ctx, actor, flight, providers.ValidationPush{
		FlightID: flight.CompositeKey(),
		Status:   models.ValidationRejected,
		Feedback: feedback,
	})
}

// BatchResult reports the outcome of a bulk validation.
type BatchResult struct {
	Validated []string          `json:"validated"`
	Skipped   map[string]string `json:"skipped"`
}

// ValidateBatch validates every listed flight as APTO. Flights that cannot
// be validated are skipped with the reason.
func (svc *ValidationService) ValidateBatch(ctx context.Context, actor *auth.UserClaims, ids []string) BatchResult {
	result := BatchResult{Validated: []string{}, Skipped: map[string]string{}}
	for _, id := range ids {
		if _, err := svc.Validate(ctx, actor, id, constants.BatchValidationGrade, constants.BatchValidationRemarks); err != nil {
			result.Skipped[id] = err.Error()
			continue
		}
		result.Validated = append(result.Validated, id)
	}
	logging.Info("Batch validation finished", "user", actor.UserID(), "validated", len(result.Validated), "skipped", len(result.Skipped))
	return result
}

// PendingGroup is the pending work of one student.
type PendingGroup struct {
	Student string             `json:"student"`
	Flights []models.FlightLog `json:"flights"`
}

// PendingByStudent lists the flights awaiting review that actor may act on,
// grouped by student and sorted by student name.
func (svc *ValidationService) PendingByStudent(ctx context.Context, actor *auth.UserClaims) ([]PendingGroup, error) {
	if !actor.CanValidate() {
		return nil, ErrForbidden
	}

	pending := svc.store.Aggregate(ctx, func(f models.FlightLog) bool {
		return f.Status() == models.ValidationPending && canActOn(actor, f)
	})

	groups := map[string]*PendingGroup{}
	for _, f := range pending {
		key := common.NormalizeName(f.StudentName)
		g, ok := groups[key]
		if !ok {
			g = &PendingGroup{Student: strings.TrimSpace(f.StudentName)}
			groups[key] = g
		}
		g.Flights = append(g.Flights, f)
	}

	out := make([]PendingGroup, 0, len(groups))
	for _, g := range groups {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Student < out[j].Student })
	return out, nil
}

func (svc *ValidationService) load(ctx context.Context, actor *auth.UserClaims, id string, to models.ValidationStatus) (models.FlightLog, error) {
	if !actor.CanValidate() {
		return models.FlightLog{}, ErrForbidden
	}

	flight, found := svc.store.Get(ctx, id)
	if !found {
		return models.FlightLog{}, ErrFlightNotFound
	}
	if !canActOn(actor, flight) {
		return models.FlightLog{}, ErrForbidden
	}
	if !CanTransition(flight.Status(), to) {
		return models.FlightLog{}, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, flight.Status(), to)
	}
	return flight, nil
}

func (svc *ValidationService) apply(ctx context.Context, actor *auth.UserClaims, flight models.FlightLog, push providers.ValidationPush) (models.FlightLog, error) {
	if err := svc.store.Put(ctx, flight); err != nil {
		return models.FlightLog{}, fmt.Errorf("failed to save flight: %w", err)
	}

	if svc.metrics != nil {
		svc.metrics.ValidationTransitionsTotal.WithLabelValues(string(push.Status)).Inc()
	}
	logging.Info("Flight review saved",
		"id", flight.ID,
		"key", push.FlightID,
		"status", push.Status,
		"user", actor.UserID(),
	)

	if svc.dispatcher != nil {
		svc.dispatcher.Dispatch(push)
	}
	return flight, nil
}

// canActOn scopes instructors to the flights they flew. Admins act on all.
func canActOn(actor *auth.UserClaims, flight models.FlightLog) bool {
	switch actor.Role() {
	case constants.RoleAdmin:
		return true
	case constants.RoleInstructor:
		return common.SameName(actor.Name, flight.InstructorName)
	default:
		return false
	}
}
