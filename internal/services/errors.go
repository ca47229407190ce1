package services

import (
	"errors"

	"heli-training/logbook/internal/constants"
)

var (
	ErrFlightNotFound     = errors.New(constants.MsgFlightNotFound)
	ErrInvalidTransition  = errors.New(constants.MsgInvalidTransition)
	ErrInvalidGrade       = errors.New(constants.MsgInvalidGrade)
	ErrForbidden          = errors.New(constants.MsgForbidden)
	ErrInvalidCredentials = errors.New(constants.MsgInvalidCredentials)
	ErrInvalidFlight      = errors.New("flight needs a date, a student and a session")
)
