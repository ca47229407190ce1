package services

import (
	"context"

	"heli-training/logbook/internal/auth"
	"heli-training/logbook/internal/common"
	"heli-training/logbook/internal/config"
	"heli-training/logbook/internal/constants"
	"heli-training/logbook/internal/models"
	"heli-training/logbook/internal/stats"
	"heli-training/logbook/internal/store"
)

// StatsService computes hours and course progress over the local logbook.
type StatsService struct {
	store  store.RecordStore
	roster config.Roster
}

func NewStatsService(s store.RecordStore, roster config.Roster) *StatsService {
	return &StatsService{store: s, roster: roster}
}

// HourTotals sums validated time, optionally for a single student.
func (svc *StatsService) HourTotals(ctx context.Context, actor *auth.UserClaims, student string) stats.HourTotals {
	return stats.ComputeHourTotals(svc.validated(ctx, actor, student))
}

// Progress reports curriculum completion, optionally for a single student.
func (svc *StatsService) Progress(ctx context.Context, actor *auth.UserClaims, student string) []stats.ModuleProgress {
	return stats.ComputeProgress(svc.validated(ctx, actor, student), svc.roster.Modules)
}

// Meter returns every student's hours against the course goals.
func (svc *StatsService) Meter(ctx context.Context, actor *auth.UserClaims) ([]stats.StudentMeter, error) {
	if !actor.CanValidate() {
		return nil, ErrForbidden
	}
	return stats.ComputeStudentMeter(svc.store.List(ctx), svc.roster.Students, svc.roster.HourGoals), nil
}

// CourseProgress returns the course tracker of every student.
func (svc *StatsService) CourseProgress(ctx context.Context, actor *auth.UserClaims) ([]stats.StudentProgress, error) {
	if !actor.CanValidate() {
		return nil, ErrForbidden
	}
	return stats.ComputeCourseProgress(svc.store.List(ctx), svc.roster.Students, svc.roster.Modules), nil
}

// Goals returns the configured hour goals.
func (svc *StatsService) Goals() constants.HourGoals {
	return svc.roster.HourGoals
}

// validated returns the validated records the actor may see. Students are
// always restricted to themselves.
func (svc *StatsService) validated(ctx context.Context, actor *auth.UserClaims, student string) []models.FlightLog {
	if actor.Role() == constants.RoleStudent {
		student = actor.Name
	}
	return svc.store.Aggregate(ctx, func(f models.FlightLog) bool {
		if !f.IsValidated() {
			return false
		}
		return student == "" || common.SameName(student, f.StudentName)
	})
}
