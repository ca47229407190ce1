package providers

import (
	"net/url"
	"time"

	"heli-training/logbook/internal/constants"
	"heli-training/logbook/internal/ingest"
	"heli-training/logbook/internal/models"
)

// ValidationPush appends a review decision to the validations sheet.
type ValidationPush struct {
	FlightID string // composite key of the flight
	Status   models.ValidationStatus
	Feedback string
	Grade    string
	Remarks  string
}

func (p ValidationPush) Action() string  { return constants.PushActionValidate }
func (p ValidationPush) Subject() string { return p.FlightID }

func (p ValidationPush) Form() url.Values {
	return url.Values{
		"action":   {constants.PushActionValidate},
		"flightId": {p.FlightID},
		"status":   {string(p.Status)},
		"feedback": {p.Feedback},
		"grade":    {p.Grade},
		"remarks":  {p.Remarks},
	}
}

// LoginPush appends a login to the audit sheet.
type LoginPush struct {
	Username  string
	Name      string
	Role      constants.Role
	Timestamp time.Time
}

func (p LoginPush) Action() string  { return constants.PushActionLogin }
func (p LoginPush) Subject() string { return p.Username }

func (p LoginPush) Form() url.Values {
	return url.Values{
		"action":    {constants.PushActionLogin},
		"timestamp": {p.Timestamp.UTC().Format(time.RFC3339)},
		"username":  {p.Username},
		"name":      {p.Name},
		"role":      {p.Role.String()},
	}
}

// FlightPush appends a new flight to the flights sheet.
type FlightPush struct {
	Flight models.FlightLog
	// ForceSimulator logs the flight as simulator time whatever its type says.
	ForceSimulator bool
}

func (p FlightPush) Action() string  { return constants.PushActionFlight }
func (p FlightPush) Subject() string { return p.Flight.CompositeKey() }

func (p FlightPush) Form() url.Values {
	f := p.Flight
	flightType := f.FlightType.Code()
	if p.ForceSimulator {
		flightType = models.FlightTypeSimulator.Code()
	}
	return url.Values{
		ingest.ColStudent:      {f.StudentName},
		ingest.ColSession:      {f.Session},
		ingest.ColDate:         {f.Date.Format("02/01/2006")},
		ingest.ColInstructor:   {f.InstructorName},
		ingest.ColRegistration: {f.Aircraft.Registration},
		ingest.ColTime:         {ingest.FormatHours(f.TotalTime)},
		ingest.ColFlightType:   {flightType},
		ingest.ColGrade:        {f.Grade},
		ingest.ColRemarks:      {f.Remarks},
		ingest.ColDeparture:    {f.Departure},
		ingest.ColArrival:      {f.Arrival},
		ingest.ColProcedures:   {f.Procedures},
		ingest.ColApproaches:   {ingest.FormatApproaches(f.Approaches)},
	}
}
