package dtos

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type ApproachRequest struct {
	Type  string `json:"type" validate:"required"`
	Count int    `json:"count" validate:"gte=1"`
	Place string `json:"place"`
}

// LogFlightRequest is the body of a new flight. TotalTime is in minutes.
type LogFlightRequest struct {
	Date           string            `json:"date" validate:"required,datetime=2006-01-02"`
	StudentName    string            `json:"studentName" validate:"required"`
	Session        string            `json:"session" validate:"required"`
	InstructorName string            `json:"instructorName"`
	FlightType     string            `json:"flightType" validate:"omitempty,oneof=Real Simulador Entrenador R S E"`
	Registration   string            `json:"registration"`
	TotalTime      int               `json:"totalTime" validate:"gte=0,lte=1440"`
	Departure      string            `json:"departurePlace"`
	Arrival        string            `json:"arrivalPlace"`
	Procedures     string            `json:"procedures"`
	Remarks        string            `json:"remarks"`
	Approaches     []ApproachRequest `json:"approaches" validate:"dive"`
}

type ValidateFlightRequest struct {
	Grade   string `json:"grade" validate:"required"`
	Remarks string `json:"remarks"`
}

type RejectFlightRequest struct {
	Feedback string `json:"feedback"`
}

type BatchValidateRequest struct {
	IDs []string `json:"ids" validate:"required,min=1,dive,required"`
}
