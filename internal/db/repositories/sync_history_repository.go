package repositories

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	gormlib "gorm.io/gorm"

	"heli-training/logbook/internal/models/gorm"
)

// SyncHistoryRepo handles sync history operations
type SyncHistoryRepo struct {
	db *gormlib.DB
}

// SyncOutcome is what a sync run reports to the history table.
type SyncOutcome struct {
	Event        string
	Source       string
	RowsAccepted int
	RowsRejected int
	Err          error
}

// NewSyncHistoryRepo creates a new sync history repository
func NewSyncHistoryRepo(db *gormlib.DB) *SyncHistoryRepo {
	return &SyncHistoryRepo{db: db}
}

// RecordSync stores the latest run of an event, replacing the previous one.
func (r *SyncHistoryRepo) RecordSync(ctx context.Context, outcome SyncOutcome) error {
	now := time.Now().UTC()

	lastError := ""
	if outcome.Err != nil {
		lastError = outcome.Err.Error()
	}

	history := gorm.SyncHistory{Event: outcome.Event}

	// Upsert: one row per event, refreshed on every run
	return r.db.WithContext(ctx).
		Where("event = ?", outcome.Event).
		Attrs(gorm.SyncHistory{ID: uuid.NewString()}).
		Assign(map[string]interface{}{
			"source":        outcome.Source,
			"rows_accepted": outcome.RowsAccepted,
			"rows_rejected": outcome.RowsRejected,
			"last_error":    lastError,
			"last_sync_at":  &now,
		}).
		FirstOrCreate(&history).Error
}

// GetLastSyncTime returns when event last ran, or nil if it never did.
func (r *SyncHistoryRepo) GetLastSyncTime(ctx context.Context, event string) (*time.Time, error) {
	var history gorm.SyncHistory

	err := r.db.WithContext(ctx).
		Where("event = ?", event).
		First(&history).Error
	if err != nil {
		if errors.Is(err, gormlib.ErrRecordNotFound) {
			return nil, nil // No sync history found
		}
		return nil, err
	}

	return history.LastSyncAt, nil
}

// List returns the latest run of every event, most recent first.
func (r *SyncHistoryRepo) List(ctx context.Context) ([]gorm.SyncHistory, error) {
	var history []gorm.SyncHistory

	err := r.db.WithContext(ctx).
		Order("last_sync_at DESC").
		Find(&history).Error
	if err != nil {
		return nil, err
	}
	return history, nil
}
