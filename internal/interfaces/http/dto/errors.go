package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
	// ErrCodeConfiguration is used when the server is missing required configuration
	ErrCodeConfiguration = "ERR_CONFIGURATION"
)

// Validation error codes
const (
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
	// ErrCodeValidationRequired is used when a required field is missing
	ErrCodeValidationRequired = "ERR_VALIDATION_REQUIRED"
	// ErrCodeValidationFormat is used when a field has invalid format
	ErrCodeValidationFormat = "ERR_VALIDATION_FORMAT"
)

// Webhook authentication error codes
const (
	// ErrCodeSignatureMissing is used when the signature header is absent
	ErrCodeSignatureMissing = "ERR_SIGNATURE_MISSING"
	// ErrCodeSignatureMismatch is used when the signature does not match the body
	ErrCodeSignatureMismatch = "ERR_SIGNATURE_MISMATCH"
	// ErrCodeUnauthorized is used when authentication is required but missing/invalid
	ErrCodeUnauthorized = "ERR_UNAUTHORIZED"
	// ErrCodeForbidden is used when the caller lacks permission
	ErrCodeForbidden = "ERR_FORBIDDEN"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeInvalidJSON is used when JSON parsing fails
	ErrCodeInvalidJSON = "ERR_INVALID_JSON"
	// ErrCodeUnknownEventType is used for events the handler does not dispatch
	ErrCodeUnknownEventType = "ERR_UNKNOWN_EVENT_TYPE"
	// ErrCodeRequestTooLarge is used when the body exceeds the configured limit
	ErrCodeRequestTooLarge = "ERR_REQUEST_TOO_LARGE"
)

// Upstream error codes
const (
	// ErrCodeRemoteCall is used when a call to the inventory or storefront API fails
	ErrCodeRemoteCall = "ERR_REMOTE_CALL"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	// General errors
	ErrCodeUnknown:       http.StatusInternalServerError,
	ErrCodeInternal:      http.StatusInternalServerError,
	ErrCodeConfiguration: http.StatusInternalServerError,

	// Validation errors -> 400 Bad Request
	ErrCodeValidation:         http.StatusBadRequest,
	ErrCodeValidationRequired: http.StatusBadRequest,
	ErrCodeValidationFormat:   http.StatusBadRequest,

	// Auth errors
	ErrCodeSignatureMissing:  http.StatusBadRequest,
	ErrCodeSignatureMismatch: http.StatusForbidden,
	ErrCodeUnauthorized:      http.StatusUnauthorized,
	ErrCodeForbidden:         http.StatusForbidden,

	// Resource errors
	ErrCodeNotFound:      http.StatusNotFound,
	ErrCodeAlreadyExists: http.StatusConflict,
	ErrCodeConflict:      http.StatusConflict,

	// Input errors -> 400 Bad Request
	ErrCodeBadRequest:       http.StatusBadRequest,
	ErrCodeInvalidInput:     http.StatusBadRequest,
	ErrCodeInvalidJSON:      http.StatusBadRequest,
	ErrCodeUnknownEventType: http.StatusBadRequest,
	ErrCodeRequestTooLarge:  http.StatusRequestEntityTooLarge,

	// Upstream errors -> 502 Bad Gateway
	ErrCodeRemoteCall: http.StatusBadGateway,
}

// GetHTTPStatus returns the HTTP status code for an error code
// Returns 500 Internal Server Error if the error code is not found
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// LegacyErrorCodeMapping maps domain error codes to the standardized HTTP codes
var LegacyErrorCodeMapping = map[string]string{
	"NOT_FOUND":           ErrCodeNotFound,
	"ALREADY_EXISTS":      ErrCodeAlreadyExists,
	"INVALID_INPUT":       ErrCodeInvalidInput,
	"UNAUTHORIZED":        ErrCodeUnauthorized,
	"FORBIDDEN":           ErrCodeForbidden,
	"VALIDATION_ERROR":    ErrCodeValidation,
	"BAD_REQUEST":         ErrCodeBadRequest,
	"INTERNAL_ERROR":      ErrCodeInternal,
	"CONFIGURATION_ERROR": ErrCodeConfiguration,
	"SIGNATURE_MISSING":   ErrCodeSignatureMissing,
	"SIGNATURE_MISMATCH":  ErrCodeSignatureMismatch,
	"UNKNOWN_EVENT_TYPE":  ErrCodeUnknownEventType,
	"REMOTE_CALL_FAILED":  ErrCodeRemoteCall,
}

// NormalizeErrorCode converts a domain error code to the standardized format
// If the code is already in the new format or unknown, returns it as-is
func NormalizeErrorCode(code string) string {
	if newCode, ok := LegacyErrorCodeMapping[code]; ok {
		return newCode
	}
	return code
}
