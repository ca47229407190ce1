// Package ingest turns rows pulled from the remote logbook sheet into local
// flight logs: row mapping, identity reconciliation and validation merging.
package ingest

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"heli-training/logbook/internal/logging"
	"heli-training/logbook/internal/models"
)

// Flight sheet columns
const (
	ColStudent      = "ALUMNO"
	ColSession      = "SESIÓN"
	ColDate         = "FECHA"
	ColInstructor   = "INSTRUCTOR"
	ColRegistration = "MATRÍCULA"
	ColTime         = "TIEMPO"
	ColFlightType   = "REAL / SIM"
	ColGrade        = "PUNTUACIÓN"
	ColRemarks      = "OBSERVACIONES"
	ColDeparture    = "LUGAR SALIDA"
	ColArrival      = "LUGAR LLEGADA"
	ColProcedures   = "PROCEDIMIENTOS"
	ColApproaches   = "MANIOBRAS"
)

// ErrMalformedRow marks a remote row that cannot become a flight log.
var ErrMalformedRow = errors.New("malformed remote row")

// RowRejection describes a row left out of a batch.
type RowRejection struct {
	Index  int
	Reason string
	Err    error
}

// RowMapper converts flight sheet rows into flight logs.
type RowMapper struct {
	loc *time.Location
	log *zap.SugaredLogger
}

// NewRowMapper builds a mapper reading timestamps in loc. A nil loc means UTC.
func NewRowMapper(loc *time.Location) *RowMapper {
	if loc == nil {
		loc = time.UTC
	}
	return &RowMapper{loc: loc, log: logging.Named("row_mapper")}
}

// MapFlightRow maps one row. The result has no ID and a pending status; ids
// come from Reconcile and statuses from MergeValidations.
func (m *RowMapper) MapFlightRow(row models.RemoteRow) (models.FlightLog, error) {
	date, err := parseDate(row[ColDate], m.loc)
	if err != nil {
		return models.FlightLog{}, fmt.Errorf("%w: column %s: %v", ErrMalformedRow, ColDate, err)
	}

	minutes, ok := parseMinutes(row[ColTime])
	if !ok {
		m.log.Warnw("unparseable flight time, logging 0 minutes",
			"value", stringValue(row[ColTime]),
			"date", date.String(),
			"student", stringValue(row[ColStudent]),
		)
	}

	return models.FlightLog{
		Date:             date,
		StudentName:      stringValue(row[ColStudent]),
		InstructorName:   stringValue(row[ColInstructor]),
		Session:          stringValue(row[ColSession]),
		FlightType:       models.ParseFlightType(stringValue(row[ColFlightType])),
		Grade:            stringValue(row[ColGrade]),
		Aircraft:         models.Aircraft{Registration: stringValue(row[ColRegistration])},
		Departure:        stringValue(row[ColDeparture]),
		Arrival:          stringValue(row[ColArrival]),
		TotalTime:        minutes,
		Approaches:       ParseApproaches(stringValue(row[ColApproaches])),
		Procedures:       stringValue(row[ColProcedures]),
		Remarks:          stringValue(row[ColRemarks]),
		ValidationStatus: models.ValidationPending,
	}, nil
}

// MapFlightRows maps a batch. A bad row is reported and skipped, never fatal.
func (m *RowMapper) MapFlightRows(rows []models.RemoteRow) ([]models.FlightLog, []RowRejection) {
	records := make([]models.FlightLog, 0, len(rows))
	var rejected []RowRejection

	for i, row := range rows {
		rec, err := m.MapFlightRow(row)
		if err != nil {
			m.log.Warnw("skipping remote flight row", "row", i, "error", err)
			rejected = append(rejected, RowRejection{Index: i, Reason: err.Error(), Err: err})
			continue
		}
		records = append(records, rec)
	}
	return records, rejected
}
