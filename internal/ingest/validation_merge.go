package ingest

import (
	"fmt"

	"heli-training/logbook/internal/models"
)

// Validation sheet columns
const (
	ColActionDate        = "FECHA_ACCION"
	ColFlightID          = "ID_VUELO"
	ColStatus            = "ESTADO"
	ColFeedback          = "FEEDBACK"
	ColValidationGrade   = "NOTA"
	ColValidationRemarks = "OBS_VALIDACION"
)

// ValidationDecision is the latest review recorded for one flight.
type ValidationDecision struct {
	Status   models.ValidationStatus
	Feedback string
	Grade    string
	Remarks  string
}

// BuildValidationIndex folds the append-only validation sheet into the
// latest decision per composite key. Later rows override earlier ones.
func BuildValidationIndex(rows []models.RemoteRow) (map[string]ValidationDecision, []RowRejection) {
	index := make(map[string]ValidationDecision, len(rows))
	var rejected []RowRejection

	for i, row := range rows {
		key := stringValue(row[ColFlightID])
		if key == "" {
			rejected = append(rejected, RowRejection{
				Index:  i,
				Reason: fmt.Sprintf("%v: column %s is empty", ErrMalformedRow, ColFlightID),
				Err:    ErrMalformedRow,
			})
			continue
		}

		status, ok := models.ParseValidationStatus(stringValue(row[ColStatus]))
		if !ok {
			rejected = append(rejected, RowRejection{
				Index:  i,
				Reason: fmt.Sprintf("%v: unknown status %q", ErrMalformedRow, stringValue(row[ColStatus])),
				Err:    ErrMalformedRow,
			})
			continue
		}

		index[key] = ValidationDecision{
			Status:   status,
			Feedback: stringValue(row[ColFeedback]),
			Grade:    stringValue(row[ColValidationGrade]),
			Remarks:  stringValue(row[ColValidationRemarks]),
		}
	}
	return index, rejected
}

// MergeValidations applies the index to freshly mapped records. A record
// with no decision is pending: local review state never survives a sync.
func MergeValidations(records []models.FlightLog, index map[string]ValidationDecision) []models.FlightLog {
	merged := make([]models.FlightLog, 0, len(records))
	for _, rec := range records {
		decision, ok := index[rec.CompositeKey()]
		if !ok {
			rec.ValidationStatus = models.ValidationPending
			rec.StudentFeedback = ""
			rec.ValidationRemarks = ""
			merged = append(merged, rec)
			continue
		}

		rec.ValidationStatus = decision.Status
		rec.StudentFeedback = decision.Feedback
		rec.ValidationRemarks = decision.Remarks
		if decision.Grade != "" {
			rec.Grade = decision.Grade
		}
		merged = append(merged, rec)
	}
	return merged
}
