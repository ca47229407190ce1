package gorm

import (
	"time"

	"heli-training/logbook/internal/models"
)

// FlightLogRow is the SQL representation of a flight log.
// Position keeps the collection order: lower positions are listed first.
type FlightLogRow struct {
	ID                   string            `gorm:"column:id;primaryKey;type:varchar(36)"`
	Position             int64             `gorm:"column:position;index"`
	Date                 models.Date       `gorm:"column:date;type:varchar(10);index"`
	InstructorID         string            `gorm:"column:instructor_id"`
	InstructorName       string            `gorm:"column:instructor_name"`
	StudentName          string            `gorm:"column:student_name;index"`
	FlightType           string            `gorm:"column:flight_type;type:varchar(20)"`
	Session              string            `gorm:"column:session"`
	Grade                string            `gorm:"column:grade"`
	AircraftRegistration string            `gorm:"column:aircraft_registration"`
	AircraftType         string            `gorm:"column:aircraft_type"`
	Departure            string            `gorm:"column:departure_place"`
	Arrival              string            `gorm:"column:arrival_place"`
	TotalTime            int               `gorm:"column:total_time_minutes;not null;default:0"`
	Approaches           []models.Approach `gorm:"column:approaches;type:text;serializer:json"`
	Procedures           string            `gorm:"column:procedures"`
	Remarks              string            `gorm:"column:remarks"`
	ValidationStatus     string            `gorm:"column:validation_status;type:varchar(20);index"`
	StudentFeedback      string            `gorm:"column:student_feedback"`
	ValidationRemarks    string            `gorm:"column:validation_remarks"`
	CreatedAt            time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt            time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (FlightLogRow) TableName() string {
	return "flight_logs"
}

// NewFlightLogRow converts a domain record into its row form.
func NewFlightLogRow(f models.FlightLog, position int64) FlightLogRow {
	return FlightLogRow{
		ID:                   f.ID,
		Position:             position,
		Date:                 f.Date,
		InstructorID:         f.InstructorID,
		InstructorName:       f.InstructorName,
		StudentName:          f.StudentName,
		FlightType:           string(f.FlightType),
		Session:              f.Session,
		Grade:                f.Grade,
		AircraftRegistration: f.Aircraft.Registration,
		AircraftType:         f.Aircraft.Type,
		Departure:            f.Departure,
		Arrival:              f.Arrival,
		TotalTime:            f.TotalTime,
		Approaches:           f.Approaches,
		Procedures:           f.Procedures,
		Remarks:              f.Remarks,
		ValidationStatus:     string(f.ValidationStatus),
		StudentFeedback:      f.StudentFeedback,
		ValidationRemarks:    f.ValidationRemarks,
	}
}

// ToModel converts the row back into the domain record.
func (r FlightLogRow) ToModel() models.FlightLog {
	approaches := r.Approaches
	if approaches == nil {
		approaches = []models.Approach{}
	}
	return models.FlightLog{
		ID:                r.ID,
		Date:              r.Date,
		InstructorID:      r.InstructorID,
		InstructorName:    r.InstructorName,
		StudentName:       r.StudentName,
		FlightType:        models.FlightType(r.FlightType),
		Session:           r.Session,
		Grade:             r.Grade,
		Aircraft:          models.Aircraft{Registration: r.AircraftRegistration, Type: r.AircraftType},
		Departure:         r.Departure,
		Arrival:           r.Arrival,
		TotalTime:         r.TotalTime,
		Approaches:        approaches,
		Procedures:        r.Procedures,
		Remarks:           r.Remarks,
		ValidationStatus:  models.ValidationStatus(r.ValidationStatus),
		StudentFeedback:   r.StudentFeedback,
		ValidationRemarks: r.ValidationRemarks,
	}
}
