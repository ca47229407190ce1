package dtos

import (
	"time"

	"heli-training/logbook/internal/constants"
)

type APIResponse struct {
	Status       string `json:"status"`
	Message      string `json:"message"`
	ResponseTime string `json:"response_time"`
	Data         any    `json:"data,omitempty"`
}

type SyncResponse struct {
	Success             bool   `json:"success"`
	Records             int    `json:"records,omitempty"`
	RejectedFlights     int    `json:"rejectedFlights,omitempty"`
	RejectedValidations int    `json:"rejectedValidations,omitempty"`
	Duration            string `json:"duration,omitempty"`
}

type HourTotalsResponse struct {
	Student          string              `json:"student,omitempty"`
	Flights          int                 `json:"flights"`
	TotalHours       float64             `json:"totalHours"`
	RealHours        float64             `json:"realHours"`
	SimulatorHours   float64             `json:"simulatorHours"`
	TrainerHours     float64             `json:"trainerHours"`
	TotalMinutes     int                 `json:"totalMinutes"`
	RealMinutes      int                 `json:"realMinutes"`
	SimulatorMinutes int                 `json:"simulatorMinutes"`
	TrainerMinutes   int                 `json:"trainerMinutes"`
	Goals            constants.HourGoals `json:"goals"`
}

type UserResponse struct {
	Username  string         `json:"username"`
	Name      string         `json:"name"`
	Role      constants.Role `json:"role"`
	ExpiresAt *time.Time     `json:"expiresAt,omitempty"`
}

// ComponentStatus is the health of one dependency.
type ComponentStatus struct {
	Status  string `json:"status"`
	Details string `json:"details"`
}

type HealthCheckResponse struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentStatus `json:"components"`
	UpSince    time.Time                  `json:"up_since"`
	Uptime     string                     `json:"uptime"`
}
