package errors

import (
	"fmt"
	"net/http"
)

// StandardError represents a standardized error response
type StandardError struct {
	Code    string `json:"error"`   // Error code/type (e.g., "NotFound", "ValidationError")
	Message string `json:"message"` // Human-readable error message
	Details string `json:"details"` // Additional details (field name, quantities, etc.)
}

// Error implements the error interface
func (e *StandardError) Error() string {
	return e.Message
}

// HTTPStatus returns the appropriate HTTP status code for the error
func (e *StandardError) HTTPStatus() int {
	switch e.Code {
	case "InvalidRequest", "ValidationError":
		return http.StatusBadRequest
	case "Unauthorized":
		return http.StatusUnauthorized
	case "PermissionDenied":
		return http.StatusForbidden
	case "NotFound":
		return http.StatusNotFound
	case "Conflict":
		return http.StatusConflict
	case "StoreFailure", "InternalError":
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

// NewStandardError creates a new StandardError
func NewStandardError(errorCode, message, details string) *StandardError {
	return &StandardError{
		Code:    errorCode,
		Message: message,
		Details: details,
	}
}

// Common error constructors
func NewInvalidRequest(message, details string) *StandardError {
	return NewStandardError("InvalidRequest", message, details)
}

func NewValidationError(message, field string) *StandardError {
	return NewStandardError("ValidationError", message, fmt.Sprintf("Field: %s", field))
}

func NewNotFound(entity, id string) *StandardError {
	return NewStandardError("NotFound", fmt.Sprintf("%s not found", entity), fmt.Sprintf("ID: %s", id))
}

func NewConflict(message, details string) *StandardError {
	return NewStandardError("Conflict", message, details)
}

func NewPermissionDenied(entity, id string) *StandardError {
	return NewStandardError("PermissionDenied", fmt.Sprintf("access denied to this %s", entity), fmt.Sprintf("ID: %s", id))
}

// NewInsufficientStock reports a stock-transaction validation failure naming
// the available vs. requested quantities.
func NewInsufficientStock(available, requested int) *StandardError {
	return NewStandardError("ValidationError",
		fmt.Sprintf("not enough stock. Available: %d, Requested: %d", available, requested),
		"Field: quantity")
}

func NewStoreFailure(operation string, err error) *StandardError {
	return NewStandardError("StoreFailure", fmt.Sprintf("store operation failed: %s", operation), err.Error())
}

func NewInternalError(message string, err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return NewStandardError("InternalError", message, details)
}
