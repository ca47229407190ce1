package constants

const (
	StatusError      = "Error"
	StatusSyncFailed = "Sync failed"
	StatusSynced     = "Sync completed"
)

const (
	MsgFlightNotFound     = "Flight log not found"
	MsgInvalidTransition  = "Flight cannot move to the requested validation state"
	MsgInvalidGrade       = "Grade must be a number between 0 and 10 or one of APTO, NO APTO, NO EVALUABLE"
	MsgForbidden          = "You are not allowed to act on this flight"
	MsgInvalidCredentials = "Invalid username or password"
	MsgInvalidBody        = "Invalid request body"
	MsgSyncUnavailable    = "Remote logbook is unavailable, local data was not modified"
)
