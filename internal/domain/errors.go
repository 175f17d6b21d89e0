package domain

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors shared by the engine and its adapters. Wrap them with %w.
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidStatus    = errors.New("invalid criterion status")
	ErrInvalidCriterion = errors.New("invalid criterion configuration")
	ErrUnknownDiagnosis = errors.New("unknown diagnosis")
	ErrInvalidDocument  = errors.New("invalid patient data document")
)

// ErrorCode is the machine-readable code carried by an APIError
type ErrorCode string

const (
	ErrCodeInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrCodeValidation     ErrorCode = "VALIDATION_ERROR"
	ErrCodeNotFound       ErrorCode = "NOT_FOUND"
	ErrCodeConfiguration  ErrorCode = "CONFIGURATION_ERROR"
	ErrCodeDatabase       ErrorCode = "DATABASE_ERROR"
	ErrCodeRateLimit      ErrorCode = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternalServer ErrorCode = "INTERNAL_SERVER_ERROR"
)

// APIError is the error body returned by the HTTP and MCP adapters
type APIError struct {
	Code      ErrorCode `json:"code"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

func (e *APIError) Error() string {
	return string(e.Code) + ": " + e.Message
}

// NewAPIError stamps the error with the current UTC time
func NewAPIError(code ErrorCode, message, details, requestID string) *APIError {
	return &APIError{
		Code:      code,
		Message:   message,
		Details:   details,
		Timestamp: time.Now().UTC(),
		RequestID: requestID,
	}
}

// ValidationError rejects a single request or document field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Value   any    `json:"value,omitempty"`
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Message
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// NewValidationError builds a ValidationError; value is echoed back to the caller
func NewValidationError(field, message string, value any) *ValidationError {
	return &ValidationError{Field: field, Message: message, Value: value}
}

// IsValidationError reports whether err wraps a *ValidationError
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
