package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"heli-training/logbook/internal/logging"
	"heli-training/logbook/internal/models"
	gormModels "heli-training/logbook/internal/models/gorm"
	"heli-training/logbook/internal/store"
)

const replaceBatchSize = 200

// upsertColumns are overwritten when Put hits an existing id. Position and
// created_at are kept so an updated record stays where it was.
var upsertColumns = []string{
	"date", "instructor_id", "instructor_name", "student_name", "flight_type",
	"session", "grade", "aircraft_registration", "aircraft_type",
	"departure_place", "arrival_place", "total_time_minutes", "approaches",
	"procedures", "remarks", "validation_status", "student_feedback",
	"validation_remarks", "updated_at",
}

// FlightLogRepo is a RecordStore backed by the flight_logs table.
type FlightLogRepo struct {
	db *gorm.DB
}

var _ store.RecordStore = (*FlightLogRepo)(nil)

// NewFlightLogRepo creates a new flight log repository
func NewFlightLogRepo(db *gorm.DB) *FlightLogRepo {
	return &FlightLogRepo{db: db}
}

// List returns every record ordered by position. Query errors yield an empty list.
func (r *FlightLogRepo) List(ctx context.Context) []models.FlightLog {
	var rows []gormModels.FlightLogRow

	err := r.db.WithContext(ctx).
		Order("position ASC").
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		logging.Error("Failed to list flight logs", "error", err)
		return []models.FlightLog{}
	}

	out := make([]models.FlightLog, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.ToModel())
	}
	return out
}

// Get retrieves a flight log by its ID
func (r *FlightLogRepo) Get(ctx context.Context, id string) (models.FlightLog, bool) {
	var row gormModels.FlightLogRow

	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&row).Error
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			logging.Error("Failed to fetch flight log", "id", id, "error", err)
		}
		return models.FlightLog{}, false
	}
	return row.ToModel(), true
}

// Put inserts a record ahead of all others, or updates it in place
// ON CONFLICT (id) DO UPDATE
func (r *FlightLogRepo) Put(ctx context.Context, record models.FlightLog) error {
	if record.ID == "" {
		return store.ErrMissingID
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var first int64
		if err := tx.Model(&gormModels.FlightLogRow{}).
			Select("COALESCE(MIN(position), 0)").
			Scan(&first).Error; err != nil {
			return fmt.Errorf("failed to read first position: %w", err)
		}

		row := gormModels.NewFlightLogRow(record, first-1)
		err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns(upsertColumns),
		}).Create(&row).Error
		if err != nil {
			return fmt.Errorf("failed to upsert flight log: %w", err)
		}
		return nil
	})
}

// Delete removes a flight log by ID. Unknown ids are not an error.
func (r *FlightLogRepo) Delete(ctx context.Context, id string) error {
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&gormModels.FlightLogRow{}).Error
	if err != nil {
		return fmt.Errorf("failed to delete flight log: %w", err)
	}
	return nil
}

// Replace swaps the table contents in one transaction. On error the previous
// contents are kept.
func (r *FlightLogRepo) Replace(ctx context.Context, records []models.FlightLog) error {
	rows := make([]gormModels.FlightLogRow, 0, len(records))
	for i, rec := range records {
		if rec.ID == "" {
			return store.ErrMissingID
		}
		rows = append(rows, gormModels.NewFlightLogRow(rec, int64(i)))
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).
			Delete(&gormModels.FlightLogRow{}).Error; err != nil {
			return fmt.Errorf("failed to clear flight logs: %w", err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(rows, replaceBatchSize).Error; err != nil {
			return fmt.Errorf("failed to insert flight logs: %w", err)
		}
		return nil
	})
}

// Clear deletes every flight log
func (r *FlightLogRepo) Clear(ctx context.Context) error {
	err := r.db.WithContext(ctx).
		Session(&gorm.Session{AllowGlobalUpdate: true}).
		Delete(&gormModels.FlightLogRow{}).Error
	if err != nil {
		return fmt.Errorf("failed to clear flight logs: %w", err)
	}
	return nil
}

func (r *FlightLogRepo) Aggregate(ctx context.Context, pred models.RecordPredicate) []models.FlightLog {
	return store.Filter(r.List(ctx), pred)
}
