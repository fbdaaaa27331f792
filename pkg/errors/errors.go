package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard error types
var (
	ErrNotFound      = errors.New("resource not found")
	ErrBadRequest    = errors.New("bad request")
	ErrConflict      = errors.New("resource conflict")
	ErrInternal      = errors.New("internal server error")
	ErrValidation    = errors.New("validation error")
	ErrInvalidState  = errors.New("invalid item state")
	ErrInvalidFormat = errors.New("invalid identifier format")
)

// AppError represents an application error with context
type AppError struct {
	Err        error             `json:"-"`
	Message    string            `json:"message"`
	Code       string            `json:"code"`
	StatusCode int               `json:"status_code"`
	Details    map[string]string `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError
func New(code string, message string, statusCode int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// Wrap wraps an error with additional context
func Wrap(err error, code string, message string, statusCode int) *AppError {
	return &AppError{
		Err:        err,
		Code:       code,
		Message:    message,
		StatusCode: statusCode,
	}
}

// WithDetails adds details to an AppError
func (e *AppError) WithDetails(details map[string]string) *AppError {
	e.Details = details
	return e
}

// Common error constructors

func NotFound(resource string) *AppError {
	return &AppError{
		Err:        ErrNotFound,
		Code:       "NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		StatusCode: http.StatusNotFound,
	}
}

func BadRequest(message string) *AppError {
	return &AppError{
		Err:        ErrBadRequest,
		Code:       "BAD_REQUEST",
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Err:        ErrConflict,
		Code:       "CONFLICT",
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

func Internal(message string) *AppError {
	return &AppError{
		Err:        ErrInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		StatusCode: http.StatusInternalServerError,
	}
}

func Validation(details map[string]string) *AppError {
	return &AppError{
		Err:        ErrValidation,
		Code:       "VALIDATION_ERROR",
		Message:    "validation failed",
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

// Inventory domain errors. The state machine distinguishes "not found",
// "wrong state" and "bad format" so the UI can react differently to each
// (e.g. offer force-removal only on ITEM_CHECKED_OUT).

func ItemNotFound(uuid string) *AppError {
	return &AppError{
		Err:        ErrNotFound,
		Code:       "ITEM_NOT_FOUND",
		Message:    fmt.Sprintf("no equipment item found for UUID %s", uuid),
		StatusCode: http.StatusNotFound,
	}
}

func ItemNotAvailable(uuid string) *AppError {
	return &AppError{
		Err:        ErrInvalidState,
		Code:       "ITEM_NOT_AVAILABLE",
		Message:    fmt.Sprintf("item %s is not available for checkout", uuid),
		StatusCode: http.StatusConflict,
	}
}

func ItemNotCheckedOut(uuid string) *AppError {
	return &AppError{
		Err:        ErrInvalidState,
		Code:       "ITEM_NOT_CHECKED_OUT",
		Message:    fmt.Sprintf("item %s is not checked out", uuid),
		StatusCode: http.StatusConflict,
	}
}

func AlreadyRemoved(uuid string) *AppError {
	return &AppError{
		Err:        ErrInvalidState,
		Code:       "ALREADY_REMOVED",
		Message:    fmt.Sprintf("item %s has already been removed from inventory", uuid),
		StatusCode: http.StatusConflict,
	}
}

func ItemCheckedOut(uuid string) *AppError {
	return &AppError{
		Err:        ErrInvalidState,
		Code:       "ITEM_CHECKED_OUT",
		Message:    fmt.Sprintf("item %s is checked out; check it in first or force removal", uuid),
		StatusCode: http.StatusConflict,
	}
}

func InvalidUUID(value string) *AppError {
	return &AppError{
		Err:        ErrInvalidFormat,
		Code:       "INVALID_UUID",
		Message:    fmt.Sprintf("%q is not a valid item UUID", value),
		StatusCode: http.StatusBadRequest,
	}
}

// Is checks if the error matches a target error
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As attempts to convert an error to a specific type
func As(err error, target any) bool {
	return errors.As(err, target)
}
