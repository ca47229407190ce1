package constants

// Sync event types for the sync_history table
const (
	SyncEventFullSync    = "LOGBOOK_FULL_SYNC"
	SyncEventSyncFailed  = "LOGBOOK_SYNC_FAILED"
	SyncEventFlightsPull = "LOGBOOK_FLIGHTS_PULL"
	SyncEventValidations = "LOGBOOK_VALIDATIONS_PULL"
)

// Sync trigger sources
const (
	SyncSourceScheduled = "scheduled"
	SyncSourceManual    = "manual"
	SyncSourceCLI       = "cli"
)

// Remote tables exposed by the spreadsheet endpoint.
const (
	RemoteTableFlights     = "flights"
	RemoteTableValidations = "validations"
	RemoteTableLogins      = "logins"
)

// Push actions understood by the spreadsheet endpoint.
const (
	PushActionFlight   = "flight"
	PushActionValidate = "validate"
	PushActionLogin    = "login"
)
