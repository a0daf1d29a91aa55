package dto

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{ErrCodeUnknown, http.StatusInternalServerError},
		{ErrCodeInternal, http.StatusInternalServerError},
		{ErrCodeConfiguration, http.StatusInternalServerError},
		{ErrCodeValidation, http.StatusBadRequest},
		{ErrCodeValidationRequired, http.StatusBadRequest},
		{ErrCodeSignatureMissing, http.StatusBadRequest},
		{ErrCodeSignatureMismatch, http.StatusForbidden},
		{ErrCodeUnauthorized, http.StatusUnauthorized},
		{ErrCodeForbidden, http.StatusForbidden},
		{ErrCodeNotFound, http.StatusNotFound},
		{ErrCodeAlreadyExists, http.StatusConflict},
		{ErrCodeConflict, http.StatusConflict},
		{ErrCodeBadRequest, http.StatusBadRequest},
		{ErrCodeInvalidInput, http.StatusBadRequest},
		{ErrCodeUnknownEventType, http.StatusBadRequest},
		{ErrCodeRequestTooLarge, http.StatusRequestEntityTooLarge},
		{ErrCodeRemoteCall, http.StatusBadGateway},
		// Unknown code should return 500
		{"UNKNOWN_CODE", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.expected, GetHTTPStatus(tt.code))
		})
	}
}

func TestNormalizeErrorCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"NOT_FOUND", ErrCodeNotFound},
		{"ALREADY_EXISTS", ErrCodeAlreadyExists},
		{"INVALID_INPUT", ErrCodeInvalidInput},
		{"UNAUTHORIZED", ErrCodeUnauthorized},
		{"FORBIDDEN", ErrCodeForbidden},
		{"VALIDATION_ERROR", ErrCodeValidation},
		{"BAD_REQUEST", ErrCodeBadRequest},
		{"INTERNAL_ERROR", ErrCodeInternal},
		{"CONFIGURATION_ERROR", ErrCodeConfiguration},
		{"SIGNATURE_MISSING", ErrCodeSignatureMissing},
		{"SIGNATURE_MISMATCH", ErrCodeSignatureMismatch},
		{"UNKNOWN_EVENT_TYPE", ErrCodeUnknownEventType},
		{"REMOTE_CALL_FAILED", ErrCodeRemoteCall},
		// Standardized codes pass through unchanged
		{ErrCodeNotFound, ErrCodeNotFound},
		{ErrCodeValidation, ErrCodeValidation},
		{"CUSTOM_ERROR", "CUSTOM_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeErrorCode(tt.input))
		})
	}
}

func TestLegacyMappingTargetsHaveStatus(t *testing.T) {
	for legacy, code := range LegacyErrorCodeMapping {
		t.Run(legacy, func(t *testing.T) {
			_, ok := ErrorCodeHTTPStatus[code]
			assert.True(t, ok, "Error code %s should be in ErrorCodeHTTPStatus map", code)
		})
	}
}

func TestErrorCodeFormat(t *testing.T) {
	for code := range ErrorCodeHTTPStatus {
		t.Run(code, func(t *testing.T) {
			assert.Contains(t, code, "ERR_", "Error code should start with ERR_")
		})
	}
}

func TestNewErrorResponse(t *testing.T) {
	resp := NewErrorResponse("NOT_FOUND", "Store not found")

	assert.False(t, resp.Success)
	assert.Nil(t, resp.Data)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeNotFound, resp.Error.Code)
	assert.Equal(t, "Store not found", resp.Error.Message)
	assert.NotZero(t, resp.Error.Timestamp)
}

func TestNewErrorResponseWithRequestID(t *testing.T) {
	resp := NewErrorResponseWithRequestID("SIGNATURE_MISMATCH", "Webhook signature mismatch", "req-123-456")

	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeSignatureMismatch, resp.Error.Code)
	assert.Equal(t, "req-123-456", resp.Error.RequestID)
}

func TestNewValidationErrorResponse(t *testing.T) {
	details := []ValidationDetail{
		{Field: "organization_id", Message: "This field is required"},
	}

	resp := NewValidationErrorResponse("Validation failed", "req-789", details)

	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeValidation, resp.Error.Code)
	assert.Equal(t, "req-789", resp.Error.RequestID)
	require.Len(t, resp.Error.Details, 1)
	assert.Equal(t, "organization_id", resp.Error.Details[0].Field)
}

func TestNewErrorResponseWithHelp(t *testing.T) {
	help := "https://docs.example.com/errors/oauth"
	resp := NewErrorResponseWithHelp(ErrCodeInvalidInput, "Invalid state", "req-001", help)

	require.NotNil(t, resp.Error)
	assert.Equal(t, help, resp.Error.Help)
}

func TestErrorResponseJSON(t *testing.T) {
	resp := NewErrorResponseWithRequestID(ErrCodeNotFound, "Store not found", "req-test-123")

	data, err := json.Marshal(resp)
	require.NoError(t, err)

	var decoded Response
	require.NoError(t, json.Unmarshal(data, &decoded))

	assert.False(t, decoded.Success)
	require.NotNil(t, decoded.Error)
	assert.Equal(t, ErrCodeNotFound, decoded.Error.Code)
	assert.Equal(t, "req-test-123", decoded.Error.RequestID)
	assert.NotContains(t, string(data), "details")
}

func TestErrorResponseTimestamp(t *testing.T) {
	before := time.Now()
	resp := NewErrorResponse(ErrCodeInternal, "Server error")
	after := time.Now()

	assert.False(t, resp.Error.Timestamp.Before(before))
	assert.False(t, resp.Error.Timestamp.After(after))
}

func TestNewSuccessResponse(t *testing.T) {
	resp := NewSuccessResponse(map[string]string{"name": "test"})

	assert.True(t, resp.Success)
	assert.NotNil(t, resp.Data)
	assert.Nil(t, resp.Error)
}
