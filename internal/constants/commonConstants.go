package constants

type (
	RequestSource string
	APIStatus     string
	CachePrefix   string
)

const (
	RequestSourceAPI RequestSource = "API"
	RequestSourceCLI RequestSource = "CLI"

	APIStatusOk    APIStatus = "ok"
	APIStatusError APIStatus = "error"

	CachePrefixFlightLogs CachePrefix = "FLIGHT_LOGS_"
)

// FlightLogCollectionKey names the single persisted collection of flight logs.
// The version suffix changes whenever the stored shape changes.
const FlightLogCollectionKey = "heli_flight_log_v2"

// RejectionFeedbackPlaceholder is stored when an instructor rejects a flight without feedback.
const RejectionFeedbackPlaceholder = "Sin especificar"

// Bulk validation defaults.
const (
	BatchValidationGrade   = "APTO"
	BatchValidationRemarks = "Validación masiva"
)

// LoginHistoryLimit is how many login events are kept locally.
const LoginHistoryLimit = 100
