package services

import (
	"errors"
	"fmt"
	"net/http"
)

// ===============================
// ERROR TYPES
// ===============================

// ServiceError is the structured error returned by every service method.
type ServiceError struct {
	Type       string                 `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	StatusCode int                    `json:"-"`
	Cause      error                  `json:"-"`
}

// Error implements the error interface.
func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error.
func (e *ServiceError) Unwrap() error {
	return e.Cause
}

// GetStatusCode returns the HTTP status code for this error.
func (e *ServiceError) GetStatusCode() int {
	if e.StatusCode > 0 {
		return e.StatusCode
	}
	return http.StatusInternalServerError
}

// ===============================
// ERROR CONSTRUCTORS
// ===============================

// NewValidationError creates a validation error.
func NewValidationError(message string, cause error) *ServiceError {
	return &ServiceError{
		Type:       "VALIDATION_ERROR",
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Cause:      cause,
	}
}

// NewNotFoundError creates a not found error.
func NewNotFoundError(message string) *ServiceError {
	return &ServiceError{
		Type:       "NOT_FOUND",
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewUnauthorizedError creates an unauthorized error.
func NewUnauthorizedError(message string) *ServiceError {
	return &ServiceError{
		Type:       "UNAUTHORIZED",
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewForbiddenError creates a forbidden error.
func NewForbiddenError(message string) *ServiceError {
	return &ServiceError{
		Type:       "FORBIDDEN",
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

// NewConflictError creates a conflict error. Conflicts surface as 400 to
// keep the API contract of the platform (duplicate requests, duplicate
// registrations and the like are client errors).
func NewConflictError(message, code string) *ServiceError {
	return &ServiceError{
		Type:       "CONFLICT",
		Message:    message,
		Code:       code,
		StatusCode: http.StatusBadRequest,
	}
}

// NewInternalError creates an internal server error.
func NewInternalError(message string) *ServiceError {
	return &ServiceError{
		Type:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

// NewServiceUnavailableError creates a service unavailable error.
func NewServiceUnavailableError(message string) *ServiceError {
	return &ServiceError{
		Type:       "SERVICE_UNAVAILABLE",
		Message:    message,
		StatusCode: http.StatusServiceUnavailable,
	}
}

// ===============================
// DETAILED VALIDATION ERRORS
// ===============================

// FieldError represents a single field validation failure.
type FieldError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value,omitempty"`
	Message string      `json:"message"`
	Code    string      `json:"code"`
}

// ValidationError carries per-field validation details.
type ValidationError struct {
	*ServiceError
	Fields []FieldError `json:"fields,omitempty"`
}

// NewDetailedValidationError creates a validation error with field details.
func NewDetailedValidationError(message string, fields []FieldError) *ValidationError {
	return &ValidationError{
		ServiceError: &ServiceError{
			Type:       "VALIDATION_ERROR",
			Message:    message,
			StatusCode: http.StatusBadRequest,
		},
		Fields: fields,
	}
}

// ===============================
// ERROR UTILITIES
// ===============================

// IsServiceError checks if an error is a ServiceError.
func IsServiceError(err error) bool {
	var serviceErr *ServiceError
	return errors.As(err, &serviceErr)
}

// GetServiceError extracts a ServiceError from an error, or wraps it as a
// generic internal error so callers never see raw causes.
func GetServiceError(err error) *ServiceError {
	var serviceErr *ServiceError
	if errors.As(err, &serviceErr) {
		return serviceErr
	}

	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.ServiceError
	}

	return NewInternalError(err.Error())
}

// IsErrorType checks if an error is of a specific type.
func IsErrorType(err error, errorType string) bool {
	if err == nil {
		return false
	}
	return GetServiceError(err).Type == errorType
}

// IsNotFoundError checks if an error is a not found error.
func IsNotFoundError(err error) bool {
	return IsErrorType(err, "NOT_FOUND")
}

// IsValidationError checks if an error is a validation error.
func IsValidationError(err error) bool {
	return IsErrorType(err, "VALIDATION_ERROR")
}

// IsConflictError checks if an error is a conflict error.
func IsConflictError(err error) bool {
	return IsErrorType(err, "CONFLICT")
}

// IsForbiddenError checks if an error is a forbidden error.
func IsForbiddenError(err error) bool {
	return IsErrorType(err, "FORBIDDEN")
}

// IsUnauthorizedError checks if an error is an unauthorized error.
func IsUnauthorizedError(err error) bool {
	return IsErrorType(err, "UNAUTHORIZED")
}

// ===============================
// COMMON ERROR PATTERNS
// ===============================

// EntityNotFoundError creates a standard entity not found error.
func EntityNotFoundError(entityType string, id interface{}) *ServiceError {
	err := NewNotFoundError(fmt.Sprintf("%s not found", entityType))
	err.Details = map[string]interface{}{"id": id}
	return err
}

// EntityAlreadyExistsError creates a standard duplicate entity error.
func EntityAlreadyExistsError(entityType, field, value string) *ServiceError {
	err := NewConflictError(fmt.Sprintf("%s already exists", entityType), "ENTITY_ALREADY_EXISTS")
	err.Details = map[string]interface{}{"field": field, "value": value}
	return err
}

// InsufficientPermissionsError creates a standard permissions error.
func InsufficientPermissionsError(action, resource string) *ServiceError {
	return NewForbiddenError(fmt.Sprintf("Insufficient permissions to %s %s", action, resource))
}
