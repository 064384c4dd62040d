package errors

import (
	"errors"
	"fmt"
)

// ErrorCode classifies application errors for transport mapping.
type ErrorCode string

const (
	CodeInvalidInput  ErrorCode = "INVALID_INPUT"
	CodeNotFound      ErrorCode = "NOT_FOUND"
	CodeAlreadyExists ErrorCode = "ALREADY_EXISTS"
	CodeUnauthorized  ErrorCode = "UNAUTHORIZED"
	CodeUpstream      ErrorCode = "UPSTREAM_ERROR"
	CodeInternal      ErrorCode = "INTERNAL_ERROR"
)

// AppError is the application error type carried across layers.
// The HTTP layer maps Code to a status. Message is safe to show a
// caller; Err is server-side detail only and never leaves the log.
type AppError struct {
	Code      ErrorCode
	Message   string
	Err       error
	retryable bool
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewInvalidInputError creates a validation error.
func NewInvalidInputError(message string) *AppError {
	return &AppError{Code: CodeInvalidInput, Message: message}
}

// NewNotFoundError creates a not-found error.
func NewNotFoundError(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message}
}

// NewAlreadyExistsError creates a uniqueness-violation error.
func NewAlreadyExistsError(message string) *AppError {
	return &AppError{Code: CodeAlreadyExists, Message: message}
}

// NewUnauthorizedError creates an authentication failure error.
func NewUnauthorizedError(message string) *AppError {
	return &AppError{Code: CodeUnauthorized, Message: message}
}

// NewUpstreamError creates an error for a failed external service call
// (completion API, captcha verification). retryable marks transient
// failures (timeout, 429, 5xx) that a bounded retry may repeat.
func NewUpstreamError(message string, cause error, retryable bool) *AppError {
	return &AppError{Code: CodeUpstream, Message: message, Err: cause, retryable: retryable}
}

// NewInternalError creates an unexpected internal error.
func NewInternalError(message string) *AppError {
	return &AppError{Code: CodeInternal, Message: message}
}

// NewInternalErrorWithCause creates an internal error wrapping its cause.
func NewInternalErrorWithCause(message string, cause error) *AppError {
	return &AppError{Code: CodeInternal, Message: message, Err: cause}
}

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return codeOf(err) == CodeNotFound
}

// IsInvalidInput reports whether err is a validation error.
func IsInvalidInput(err error) bool {
	return codeOf(err) == CodeInvalidInput
}

// IsAlreadyExists reports whether err is a uniqueness violation.
func IsAlreadyExists(err error) bool {
	return codeOf(err) == CodeAlreadyExists
}

// IsUnauthorized reports whether err is an authentication failure.
func IsUnauthorized(err error) bool {
	return codeOf(err) == CodeUnauthorized
}

// IsUpstream reports whether err is an external-service failure.
func IsUpstream(err error) bool {
	return codeOf(err) == CodeUpstream
}

// IsRetryable reports whether err is a transient upstream failure.
// Validation, duplicate and auth errors are never retryable.
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == CodeUpstream && appErr.retryable
	}
	return false
}

func codeOf(err error) ErrorCode {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}
