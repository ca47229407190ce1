package constants

// Remote logbook error codes

// Transport errors
const (
	ErrCodeNetworkError         = "NETWORK_ERROR"
	ErrCodeRateLimited          = "RATE_LIMITED"
	ErrCodeAuthenticationFailed = "AUTHENTICATION_FAILED"
	ErrCodeEndpointNotFound     = "ENDPOINT_NOT_FOUND"
	ErrCodeRemoteUnavailable    = "REMOTE_UNAVAILABLE"
)

// Payload errors
const (
	ErrCodeInvalidPayload = "INVALID_PAYLOAD"
	ErrCodeTableNotFound  = "TABLE_NOT_FOUND"
)

// Row errors
const (
	ErrCodeRequiredFieldEmpty  = "REQUIRED_FIELD_EMPTY"
	ErrCodeInvalidDataFormat   = "INVALID_DATA_FORMAT"
	ErrCodeTypeConversionError = "TYPE_CONVERSION_ERROR"
)

var DataProviderErrorMessages = map[string]string{
	ErrCodeNetworkError:         "Unable to reach the remote logbook. Please check your internet connection",
	ErrCodeRateLimited:          "The remote logbook is rate limiting requests. Please try again later",
	ErrCodeAuthenticationFailed: "The remote logbook rejected the request",
	ErrCodeEndpointNotFound:     "The remote logbook endpoint was not found",
	ErrCodeRemoteUnavailable:    "The remote logbook returned a server error",

	ErrCodeInvalidPayload: "The remote logbook returned something other than a list of rows",
	ErrCodeTableNotFound:  "The requested sheet does not exist in the remote logbook",

	ErrCodeRequiredFieldEmpty:  "A required column is empty in the remote row",
	ErrCodeInvalidDataFormat:   "A remote column has an unexpected format",
	ErrCodeTypeConversionError: "Unable to convert the column value to the expected type",
}

// GetErrorMessage returns the human-readable message for an error code
func GetErrorMessage(code string) string {
	if msg, exists := DataProviderErrorMessages[code]; exists {
		return msg
	}
	return "An unknown error occurred"
}
