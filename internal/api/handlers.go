package api

import (
	"context"

	"heli-training/logbook/internal/auth"
	"heli-training/logbook/internal/constants"
	"heli-training/logbook/internal/jobs"
	"heli-training/logbook/internal/models"
	"heli-training/logbook/internal/models/gorm"
	"heli-training/logbook/internal/services"
	"heli-training/logbook/internal/stats"
)

// FlightService serves and records flights.
type FlightService interface {
	LogFlight(ctx context.Context, actor *auth.UserClaims, flight models.FlightLog) (models.FlightLog, error)
	Delete(ctx context.Context, actor *auth.UserClaims, id string) error
	Get(ctx context.Context, actor *auth.UserClaims, id string) (models.FlightLog, error)
	List(ctx context.Context, actor *auth.UserClaims, filter services.FlightFilter) []models.FlightLog
}

// ReviewService moves flights through validation.
type ReviewService interface {
	Validate(ctx context.Context, actor *auth.UserClaims, id, grade, remarks string) (models.FlightLog, error)
	Reject(ctx context.Context, actor *auth.UserClaims, id, feedback string) (models.FlightLog, error)
	ValidateBatch(ctx context.Context, actor *auth.UserClaims, ids []string) services.BatchResult
	PendingByStudent(ctx context.Context, actor *auth.UserClaims) ([]services.PendingGroup, error)
}

// SyncRunner runs a sync and reports the job state.
type SyncRunner interface {
	Run(ctx context.Context, trigger string) (services.SyncResult, error)
	Status() jobs.JobStatus
}

type StatsProvider interface {
	HourTotals(ctx context.Context, actor *auth.UserClaims, student string) stats.HourTotals
	Progress(ctx context.Context, actor *auth.UserClaims, student string) []stats.ModuleProgress
	Meter(ctx context.Context, actor *auth.UserClaims) ([]stats.StudentMeter, error)
	CourseProgress(ctx context.Context, actor *auth.UserClaims) ([]stats.StudentProgress, error)
	Goals() constants.HourGoals
}

type SessionService interface {
	Login(ctx context.Context, username, password string) (services.LoginResult, error)
	Logout(claims *auth.UserClaims)
	RecentLogins(ctx context.Context, actor *auth.UserClaims, limit int) ([]gorm.LoginEvent, error)
}

type SyncHistoryLister interface {
	List(ctx context.Context) ([]gorm.SyncHistory, error)
}

type Handlers struct {
	flights     FlightService
	reviews     ReviewService
	sync        SyncRunner
	stats       StatsProvider
	sessions    SessionService
	syncHistory SyncHistoryLister
}

// NewHandlers creates a new handlers instance with injected dependencies
func NewHandlers(deps *Dependencies) *Handlers {
	return &Handlers{
		flights:     deps.Services.Flights,
		reviews:     deps.Services.Validation,
		sync:        deps.SyncJob,
		stats:       deps.Services.Stats,
		sessions:    deps.Services.Auth,
		syncHistory: deps.Repo.SyncHistory,
	}
}
