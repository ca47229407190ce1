package models

import (
	"fmt"
	"strings"
)

// FlightType is the kind of device a session was flown on.
type FlightType string

const (
	FlightTypeReal      FlightType = "Real"
	FlightTypeSimulator FlightType = "Simulador"
	FlightTypeTrainer   FlightType = "Entrenador"
)

// Code returns the single-letter code used by the remote sheet.
func (t FlightType) Code() string {
	switch t {
	case FlightTypeSimulator:
		return "S"
	case FlightTypeTrainer:
		return "E"
	default:
		return "R"
	}
}

// ParseFlightType maps a sheet code (R/S/E) or a full name to a FlightType.
// Anything unrecognised is a real flight.
func ParseFlightType(raw string) FlightType {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "S", "SIM", "SIMULADOR", "SIMULATOR":
		return FlightTypeSimulator
	case "E", "ENTRENADOR", "TRAINER":
		return FlightTypeTrainer
	default:
		return FlightTypeReal
	}
}

// ValidationStatus is the review state of a flight log.
type ValidationStatus string

const (
	ValidationPending   ValidationStatus = "pending"
	ValidationValidated ValidationStatus = "validated"
	ValidationRejected  ValidationStatus = "rejected"
)

// Normalize maps the empty status to pending.
func (s ValidationStatus) Normalize() ValidationStatus {
	if s == "" {
		return ValidationPending
	}
	return s
}

// ParseValidationStatus accepts the English values the app writes and the
// Spanish labels instructors sometimes type straight into the sheet.
func ParseValidationStatus(raw string) (ValidationStatus, bool) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "pending", "pendiente":
		return ValidationPending, true
	case "validated", "validado", "validada":
		return ValidationValidated, true
	case "rejected", "rechazado", "rechazada":
		return ValidationRejected, true
	default:
		return "", false
	}
}

// Approach is one line of the approaches flown during a session.
type Approach struct {
	Type  string `json:"type"`
	Count int    `json:"count"`
	Place string `json:"place"`
}

func (a Approach) String() string {
	return fmt.Sprintf("%dx %s @ %s", a.Count, a.Type, a.Place)
}

type Aircraft struct {
	Registration string `json:"registration"`
	Type         string `json:"type,omitempty"`
}

// FlightLog is one logged training session.
type FlightLog struct {
	ID                string           `json:"id"`
	Date              Date             `json:"date"`
	InstructorID      string           `json:"instructorId,omitempty"`
	InstructorName    string           `json:"instructorName"`
	StudentName       string           `json:"studentName"`
	FlightType        FlightType       `json:"flightType"`
	Session           string           `json:"session"`
	Grade             string           `json:"grade"`
	Aircraft          Aircraft         `json:"aircraft"`
	Departure         string           `json:"departurePlace,omitempty"`
	Arrival           string           `json:"arrivalPlace,omitempty"`
	TotalTime         int              `json:"totalTime"` // minutes
	Approaches        []Approach       `json:"approaches"`
	Procedures        string           `json:"procedures,omitempty"`
	Remarks           string           `json:"remarks,omitempty"`
	ValidationStatus  ValidationStatus `json:"validationStatus,omitempty"`
	StudentFeedback   string           `json:"studentFeedback,omitempty"`
	ValidationRemarks string           `json:"validationRemarks,omitempty"`
}

// CompositeKey builds the identity used to match a local record with a remote row.
func CompositeKey(date Date, studentName, session string) string {
	return date.String() + "|" + strings.TrimSpace(studentName) + "|" + strings.TrimSpace(session)
}

// CompositeKey returns "date|student|session" for the record.
func (f FlightLog) CompositeKey() string {
	return CompositeKey(f.Date, f.StudentName, f.Session)
}

// Status returns the validation status with empty treated as pending.
func (f FlightLog) Status() ValidationStatus {
	return f.ValidationStatus.Normalize()
}

func (f FlightLog) IsValidated() bool {
	return f.Status() == ValidationValidated
}

// Hours returns TotalTime as decimal hours.
func (f FlightLog) Hours() float64 {
	return float64(f.TotalTime) / 60
}

// RecordPredicate selects flight logs.
type RecordPredicate func(FlightLog) bool

// RemoteRow is one sheet row keyed by its column header.
type RemoteRow map[string]interface{}
