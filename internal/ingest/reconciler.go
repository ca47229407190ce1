package ingest

import (
	"github.com/google/uuid"

	"heli-training/logbook/internal/models"
)

// IDGenerator mints local record ids.
type IDGenerator func() string

// NewUUID is the default IDGenerator.
func NewUUID() string { return uuid.NewString() }

// ReconcileResult is the outcome of matching remote records to local ones.
type ReconcileResult struct {
	Records []models.FlightLog
	Reused  int
	Minted  int
}

// Reconcile gives each remote record the id of the local record with the
// same composite key, or a fresh id when there is none. Records sharing a key
// are paired in order, so the n-th remote duplicate takes the n-th local id
// and no id is ever handed out twice.
func Reconcile(remote, local []models.FlightLog, newID IDGenerator) ReconcileResult {
	if newID == nil {
		newID = NewUUID
	}

	idsByKey := make(map[string][]string, len(local))
	for _, rec := range local {
		if rec.ID == "" {
			continue
		}
		key := rec.CompositeKey()
		idsByKey[key] = append(idsByKey[key], rec.ID)
	}

	result := ReconcileResult{Records: make([]models.FlightLog, 0, len(remote))}
	for _, rec := range remote {
		key := rec.CompositeKey()
		if ids := idsByKey[key]; len(ids) > 0 {
			rec.ID = ids[0]
			idsByKey[key] = ids[1:]
			result.Reused++
		} else {
			rec.ID = newID()
			result.Minted++
		}
		result.Records = append(result.Records, rec)
	}
	return result
}
