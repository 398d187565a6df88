package errors

import (
	"fmt"
	"net/http"
	"runtime/debug"
)

// Error codes used across the dialogue engine.
const (
	CodeValidation = "VALIDATION_ERROR"
	CodeNotFound   = "NOT_FOUND"
	CodeConflict   = "CONFLICT"
	CodeGeneration = "GENERATION_ERROR"
	// CodeMalformedGeneration marks generator output that broke the structured
	// dialogue format. It only appears in logs: the failure is recovered with a
	// degraded node, never surfaced to callers.
	CodeMalformedGeneration = "MALFORMED_GENERATION"
)

// AppError represents an application error with HTTP status code and error code
type AppError struct {
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
	Stack      string `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details any) *AppError {
	e.Details = details
	return e
}

// NewError creates a new application error
func NewError(statusCode int, code string, message string) *AppError {
	return &AppError{
		StatusCode: statusCode,
		Code:       code,
		Message:    message,
		Stack:      string(debug.Stack()),
	}
}

// NewValidationError reports bad or missing caller input. Requests failing
// validation never reach the generation gateway.
func NewValidationError(message string) *AppError {
	return NewError(http.StatusBadRequest, CodeValidation, message)
}

// NewNotFoundError reports an unknown character or session.
func NewNotFoundError(message string) *AppError {
	return NewError(http.StatusNotFound, CodeNotFound, message)
}

// NewConflictError reports a realtime double-attach.
func NewConflictError(message string) *AppError {
	return NewError(http.StatusConflict, CodeConflict, message)
}

// NewGenerationError reports a gateway failure or timeout. The transcript is
// left untouched when one of these is returned.
func NewGenerationError(cause error) *AppError {
	return NewError(http.StatusBadGateway, CodeGeneration,
		fmt.Sprintf("text generation failed: %v", cause))
}

// FromError converts a standard error to an AppError
// If the error is already an AppError, it is returned as-is
// Otherwise, it is wrapped as an internal server error
func FromError(err error) *AppError {
	if err == nil {
		return nil
	}

	if appErr, ok := err.(*AppError); ok {
		return appErr
	}

	return NewError(http.StatusInternalServerError, "INTERNAL_ERROR",
		fmt.Sprintf("An unexpected error occurred: %s", err.Error()))
}

// IsCode reports whether err is an AppError carrying the given code.
func IsCode(err error, code string) bool {
	appErr, ok := err.(*AppError)
	if !ok {
		return false
	}
	return appErr.Code == code
}

// GetStatusCode extracts the HTTP status code from an AppError, returns 500 if not an AppError
func GetStatusCode(err error) int {
	if appErr, ok := err.(*AppError); ok {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// GetErrorMessage extracts the error message, returns original error message if not an AppError
func GetErrorMessage(err error) string {
	if appErr, ok := err.(*AppError); ok {
		return appErr.Message
	}
	return err.Error()
}
