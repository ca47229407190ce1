// Package export writes the local logbook in the remote spreadsheet's layout.
package export

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/jszwec/csvutil"

	"heli-training/logbook/internal/ingest"
	"heli-training/logbook/internal/models"
)

// Row is one flight as a spreadsheet row. Column names match the remote sheet.
type Row struct {
	ID           string `csv:"ID"`
	Date         string `csv:"FECHA"`
	Student      string `csv:"ALUMNO"`
	Session      string `csv:"SESIÓN"`
	Instructor   string `csv:"INSTRUCTOR"`
	Registration string `csv:"MATRÍCULA"`
	Hours        string `csv:"TIEMPO"`
	FlightType   string `csv:"REAL / SIM"`
	Grade        string `csv:"PUNTUACIÓN"`
	Remarks      string `csv:"OBSERVACIONES"`
	Departure    string `csv:"LUGAR SALIDA"`
	Arrival      string `csv:"LUGAR LLEGADA"`
	Procedures   string `csv:"PROCEDIMIENTOS"`
	Approaches   string `csv:"MANIOBRAS"`
	Status       string `csv:"ESTADO"`
	Feedback     string `csv:"FEEDBACK"`
}

// ToRow formats a record the way the sheet stores it: DD/MM/YYYY dates,
// decimal hours and single-letter flight types.
func ToRow(f models.FlightLog) Row {
	return Row{
		ID:           f.ID,
		Date:         f.Date.Format("02/01/2006"),
		Student:      f.StudentName,
		Session:      f.Session,
		Instructor:   f.InstructorName,
		Registration: f.Aircraft.Registration,
		Hours:        ingest.FormatHours(f.TotalTime),
		FlightType:   f.FlightType.Code(),
		Grade:        f.Grade,
		Remarks:      f.Remarks,
		Departure:    f.Departure,
		Arrival:      f.Arrival,
		Procedures:   f.Procedures,
		Approaches:   ingest.FormatApproaches(f.Approaches),
		Status:       string(f.Status()),
		Feedback:     f.StudentFeedback,
	}
}

// WriteCSV writes a header and one row per record, in the given order.
func WriteCSV(w io.Writer, records []models.FlightLog) error {
	cw := csv.NewWriter(w)
	enc := csvutil.NewEncoder(cw)

	if err := enc.EncodeHeader(Row{}); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	rows := make([]Row, 0, len(records))
	for _, r := range records {
		rows = append(rows, ToRow(r))
	}
	if len(rows) > 0 {
		if err := enc.Encode(rows); err != nil {
			return fmt.Errorf("failed to encode CSV rows: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}
