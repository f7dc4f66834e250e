package errors

import (
	"errors"
	"fmt"
)

// Error categories used across the services.
const (
	ErrorTypeValidation = "validation"
	ErrorTypeNotFound   = "not_found"
	ErrorTypeConflict   = "conflict"
	ErrorTypeInternal   = "internal"
	ErrorTypeExternal   = "external"
)

// AppError is an application error carrying a category and an optional cause.
type AppError struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s", e.Message, e.Err.Error())
	}
	return e.Message
}

// Unwrap returns the wrapped cause.
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches two AppErrors by category.
func (e *AppError) Is(target error) bool {
	if target == nil {
		return false
	}
	if appErr, ok := target.(*AppError); ok {
		return e.Type == appErr.Type
	}
	return errors.Is(e.Err, target)
}

// NewValidation creates a validation error.
func NewValidation(message string) *AppError {
	return &AppError{Type: ErrorTypeValidation, Message: message}
}

// NewNotFound creates a not-found error.
func NewNotFound(message string) *AppError {
	return &AppError{Type: ErrorTypeNotFound, Message: message}
}

// NewConflict creates a conflict error.
func NewConflict(message string) *AppError {
	return &AppError{Type: ErrorTypeConflict, Message: message}
}

// NewInternal creates an internal error.
func NewInternal(message string) *AppError {
	return &AppError{Type: ErrorTypeInternal, Message: message}
}

// NewExternal creates an external-service error.
func NewExternal(message string) *AppError {
	return &AppError{Type: ErrorTypeExternal, Message: message}
}

// Wrap wraps err with a message, preserving the category of an AppError cause.
func Wrap(err error, message string) *AppError {
	if err == nil {
		return nil
	}

	errType := ErrorTypeInternal
	var appErr *AppError
	if errors.As(err, &appErr) {
		errType = appErr.Type
	}

	return &AppError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// IsValidation reports whether err is a validation error.
func IsValidation(err error) bool {
	return hasErrorType(err, ErrorTypeValidation)
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return hasErrorType(err, ErrorTypeNotFound)
}

// IsConflict reports whether err is a conflict error.
func IsConflict(err error) bool {
	return hasErrorType(err, ErrorTypeConflict)
}

// IsInternal reports whether err is an internal error.
func IsInternal(err error) bool {
	return hasErrorType(err, ErrorTypeInternal)
}

// IsExternal reports whether err is an external-service error.
func IsExternal(err error) bool {
	return hasErrorType(err, ErrorTypeExternal)
}

func hasErrorType(err error, errorType string) bool {
	if err == nil {
		return false
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}
