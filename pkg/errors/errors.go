package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType represents different types of application errors
type ErrorType string

const (
	ErrorTypeValidation      ErrorType = "validation"
	ErrorTypeAuthentication  ErrorType = "authentication"
	ErrorTypeAuthorization   ErrorType = "forbidden"
	ErrorTypeNotFound        ErrorType = "not_found"
	ErrorTypeConflict        ErrorType = "conflict"
	ErrorTypePaymentRequired ErrorType = "payment_required"
	ErrorTypeInternal        ErrorType = "internal"
	ErrorTypeRateLimit       ErrorType = "rate_limit"
)

// AppError represents a structured application error.
// Reason is a stable machine-readable code (e.g. "already_checked_in") that
// callers can switch on; Message is for humans.
type AppError struct {
	Type       ErrorType              `json:"type"`
	Reason     string                 `json:"reason,omitempty"`
	Message    string                 `json:"message"`
	StatusCode int                    `json:"status_code"`
	Internal   error                  `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	msg := fmt.Sprintf("%s/%s: %s", e.Type, e.Reason, e.Message)
	if e.Internal != nil {
		msg += ": " + e.Internal.Error()
	}
	return msg
}

func (e *AppError) Unwrap() error {
	return e.Internal
}

// WithDetail attaches a detail entry and returns the same error for chaining.
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

func newError(t ErrorType, status int, reason, message string) *AppError {
	return &AppError{Type: t, Reason: reason, Message: message, StatusCode: status}
}

// NewValidationError is a 400 carrying optional field details.
func NewValidationError(reason, message string, details map[string]interface{}) *AppError {
	e := newError(ErrorTypeValidation, http.StatusBadRequest, reason, message)
	e.Details = details
	return e
}

func NewAuthenticationError(message string) *AppError {
	return newError(ErrorTypeAuthentication, http.StatusUnauthorized, "unauthenticated", message)
}

func NewForbiddenError(reason, message string) *AppError {
	return newError(ErrorTypeAuthorization, http.StatusForbidden, reason, message)
}

func NewNotFoundError(reason, message string) *AppError {
	return newError(ErrorTypeNotFound, http.StatusNotFound, reason, message)
}

// NewConflictError covers uniqueness violations and invalid state transitions.
func NewConflictError(reason, message string) *AppError {
	return newError(ErrorTypeConflict, http.StatusConflict, reason, message)
}

func NewPaymentRequiredError(reason, message string) *AppError {
	return newError(ErrorTypePaymentRequired, http.StatusPaymentRequired, reason, message)
}

// NewInternalError keeps the cause for logging; it is never rendered.
func NewInternalError(message string, internal error) *AppError {
	e := newError(ErrorTypeInternal, http.StatusInternalServerError, "internal_error", message)
	e.Internal = internal
	return e
}

func NewRateLimitError(message string) *AppError {
	return newError(ErrorTypeRateLimit, http.StatusTooManyRequests, "rate_limited", message)
}

// As extracts an *AppError from err. Anything else is wrapped as internal.
func As(err error) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return NewInternalError("Unexpected server error", err)
}

// HasReason reports whether err is an AppError carrying the given reason.
func HasReason(err error, reason string) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr) && appErr.Reason == reason
}
