package errors

import (
	"errors"
	"fmt"
)

// ErrorCode represents a unique error identifier
type ErrorCode string

const (
	// Authentication & Authorization
	ErrCodeNotAuthenticated ErrorCode = "NOT_AUTHENTICATED"
	ErrCodeNoRefreshToken   ErrorCode = "NO_REFRESH_TOKEN"
	ErrCodeForbidden        ErrorCode = "FORBIDDEN"

	// Resource
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// Transport
	ErrCodeNetworkFailure  ErrorCode = "NETWORK_FAILURE"
	ErrCodeInvalidResponse ErrorCode = "INVALID_RESPONSE"
	ErrCodeHTTP            ErrorCode = "HTTP_ERROR"

	// Internal
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	ErrCodeStorage  ErrorCode = "STORAGE_ERROR"
)

// AppError is a structured error shared across the client core
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Status  int       `json:"status,omitempty"`
	cause   error
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.cause
}

// WithCause adds a cause to the error
func (e *AppError) WithCause(err error) *AppError {
	e.cause = err
	return e
}

// New creates a new AppError
func New(code ErrorCode, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with an AppError
func Wrap(code ErrorCode, message string, cause error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		cause:   cause,
	}
}

// Common error constructors

func NotAuthenticated() *AppError {
	return New(ErrCodeNotAuthenticated, "Not authenticated")
}

func NoRefreshToken() *AppError {
	return New(ErrCodeNoRefreshToken, "No refresh token")
}

func Forbidden(message string) *AppError {
	if message == "" {
		message = "Forbidden"
	}
	e := New(ErrCodeForbidden, message)
	e.Status = 403
	return e
}

func NotFound(message string) *AppError {
	if message == "" {
		message = "Not found"
	}
	e := New(ErrCodeNotFound, message)
	e.Status = 404
	return e
}

func NetworkFailure(cause error) *AppError {
	return Wrap(ErrCodeNetworkFailure, "Network error", cause)
}

func InvalidResponse(cause error) *AppError {
	return Wrap(ErrCodeInvalidResponse, "Invalid server response", cause)
}

// HTTPError carries a non-2xx status with a best-effort server message.
func HTTPError(status int, message string) *AppError {
	if message == "" {
		message = fmt.Sprintf("HTTP %d", status)
	}
	e := New(ErrCodeHTTP, message)
	e.Status = status
	return e
}

func Internal(message string) *AppError {
	return New(ErrCodeInternal, message)
}

func Storage(cause error) *AppError {
	return Wrap(ErrCodeStorage, "Storage error", cause)
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetCode returns the error code if the error is an AppError, otherwise returns ErrCodeInternal
func GetCode(err error) ErrorCode {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Code
	}
	return ErrCodeInternal
}

// StatusOf returns the HTTP status carried by the error, or 0 when none
func StatusOf(err error) int {
	if appErr, ok := AsAppError(err); ok {
		return appErr.Status
	}
	return 0
}
