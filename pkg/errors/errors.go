package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorType represents different types of errors in the system
type ErrorType string

const (
	// ErrorTypeValidation indicates input that failed local validation and
	// never reached the network
	ErrorTypeValidation ErrorType = "VALIDATION"

	// ErrorTypeNotFound indicates the remote service reported a missing resource
	ErrorTypeNotFound ErrorType = "NOT_FOUND"

	// ErrorTypeDatasetMissing indicates no training data exists for the
	// requested disease; distinct from a generic transport failure
	ErrorTypeDatasetMissing ErrorType = "DATASET_MISSING"

	// ErrorTypeConflict indicates an operation rejected because another
	// exchange is still outstanding
	ErrorTypeConflict ErrorType = "CONFLICT"

	// ErrorTypeAuthExpired indicates the session credential was rejected;
	// fatal to the client session
	ErrorTypeAuthExpired ErrorType = "AUTH_EXPIRED"

	// ErrorTypeTransport indicates a network or server failure; retryable by
	// repeating the user action
	ErrorTypeTransport ErrorType = "TRANSPORT"

	// ErrorTypeInternal indicates an internal client error
	ErrorTypeInternal ErrorType = "INTERNAL"
)

// AppError represents an application error
type AppError struct {
	Type    ErrorType
	Message string

	// MissingFields holds the ordered labels of required fields absent from a
	// form submission. Only set for validation errors.
	MissingFields []string

	Err error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if len(e.MissingFields) > 0 {
		return fmt.Sprintf("%s: %s: %s", e.Type, e.Message, strings.Join(e.MissingFields, ", "))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the unwrap interface
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewValidationError creates a new validation error
func NewValidationError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeValidation,
		Message: message,
	}
}

// NewMissingFieldsError creates a validation error carrying the labels of the
// required fields that were not answered
func NewMissingFieldsError(labels []string) *AppError {
	return &AppError{
		Type:          ErrorTypeValidation,
		Message:       "required fields are missing",
		MissingFields: labels,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeNotFound,
		Message: message,
	}
}

// NewDatasetMissingError creates a new dataset missing error
func NewDatasetMissingError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeDatasetMissing,
		Message: message,
	}
}

// NewConflictError creates a new conflict error
func NewConflictError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeConflict,
		Message: message,
	}
}

// NewAuthExpiredError creates a new auth expired error
func NewAuthExpiredError(message string) *AppError {
	return &AppError{
		Type:    ErrorTypeAuthExpired,
		Message: message,
	}
}

// NewTransportError creates a new transport error
func NewTransportError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeTransport,
		Message: message,
		Err:     err,
	}
}

// NewInternalError creates a new internal error
func NewInternalError(message string, err error) *AppError {
	return &AppError{
		Type:    ErrorTypeInternal,
		Message: message,
		Err:     err,
	}
}

// KindOf returns the ErrorType of err, or ErrorTypeInternal when err is not
// an AppError
func KindOf(err error) ErrorType {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// MessageOf returns the message of err when it is an AppError, otherwise the
// plain error text
func MessageOf(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Message
	}
	if err != nil {
		return err.Error()
	}
	return ""
}

// MissingFieldsOf returns the missing field labels carried by a validation
// error, or nil
func MissingFieldsOf(err error) []string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.MissingFields
	}
	return nil
}

// IsValidation reports whether err is a validation error
func IsValidation(err error) bool { return KindOf(err) == ErrorTypeValidation }

// IsNotFound reports whether err is a not found error
func IsNotFound(err error) bool { return KindOf(err) == ErrorTypeNotFound }

// IsDatasetMissing reports whether err is a dataset missing error
func IsDatasetMissing(err error) bool { return KindOf(err) == ErrorTypeDatasetMissing }

// IsConflict reports whether err is a conflict error
func IsConflict(err error) bool { return KindOf(err) == ErrorTypeConflict }

// IsAuthExpired reports whether err is an auth expired error
func IsAuthExpired(err error) bool { return KindOf(err) == ErrorTypeAuthExpired }

// IsTransport reports whether err is a transport error
func IsTransport(err error) bool { return KindOf(err) == ErrorTypeTransport }
