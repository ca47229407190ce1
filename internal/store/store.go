// Package store keeps the local collection of flight logs.
//
// Reads never fail: a store that cannot be read logs the problem and
// answers with an empty collection. Writes return their error.
package store

import (
	"context"
	"errors"

	"heli-training/logbook/internal/models"
)

var ErrMissingID = errors.New("flight log has no id")

// RecordStore is the local persistence contract every backend implements.
type RecordStore interface {
	// List returns the whole collection in stored order.
	List(ctx context.Context) []models.FlightLog
	// Get returns the record with id.
	Get(ctx context.Context, id string) (models.FlightLog, bool)
	// Put inserts the record at the front, or replaces the record with the same id in place.
	Put(ctx context.Context, record models.FlightLog) error
	// Delete removes the record with id. Unknown ids are ignored.
	Delete(ctx context.Context, id string) error
	// Replace swaps the whole collection in one step.
	Replace(ctx context.Context, records []models.FlightLog) error
	// Clear empties the collection.
	Clear(ctx context.Context) error
	// Aggregate returns the records matching pred, in stored order.
	Aggregate(ctx context.Context, pred models.RecordPredicate) []models.FlightLog
}

// upsert applies Put semantics to an in-memory collection.
func upsert(records []models.FlightLog, record models.FlightLog) []models.FlightLog {
	for i := range records {
		if records[i].ID == record.ID {
			records[i] = record
			return records
		}
	}
	out := make([]models.FlightLog, 0, len(records)+1)
	out = append(out, record)
	return append(out, records...)
}

func remove(records []models.FlightLog, id string) []models.FlightLog {
	out := records[:0]
	for _, r := range records {
		if r.ID != id {
			out = append(out, r)
		}
	}
	return out
}

// Filter returns the records matching pred. A nil pred matches everything.
func Filter(records []models.FlightLog, pred models.RecordPredicate) []models.FlightLog {
	out := make([]models.FlightLog, 0, len(records))
	for _, r := range records {
		if pred == nil || pred(r) {
			out = append(out, r)
		}
	}
	return out
}
