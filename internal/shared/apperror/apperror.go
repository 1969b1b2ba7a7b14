package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is the machine-readable error identifier returned to API clients.
type Code string

const (
	CodeBadRequest      Code = "BAD_REQUEST"
	CodeValidation      Code = "VALIDATION_ERROR"
	CodeUnauthenticated Code = "UNAUTHENTICATED"
	CodeProfileNotFound Code = "PROFILE_NOT_FOUND"
	CodeForbidden       Code = "FORBIDDEN"
	CodeNotFound        Code = "NOT_FOUND"
	CodeRateLimited     Code = "RATE_LIMITED"
	CodeInternal        Code = "INTERNAL_ERROR"

	// Booking split
	CodeBookingInactive      Code = "BOOKING_INACTIVE"
	CodeInvalidPrice         Code = "INVALID_PRICE"
	CodeInviteDuplicate      Code = "INVITE_DUPLICATE"
	CodeInviteInvalid        Code = "INVITE_INVALID"
	CodeSplitLocked          Code = "SPLIT_LOCKED"
	CodeSplitInactive        Code = "SPLIT_INACTIVE"
	CodeSplitExpired         Code = "SPLIT_EXPIRED"
	CodeParticipantMissing   Code = "SPLIT_PARTICIPANT_MISSING"
	CodeParticipantInactive  Code = "SPLIT_PARTICIPANT_INACTIVE"
	CodeAlreadyPaid          Code = "ALREADY_PAID"
	CodeCurrencyNotSupported Code = "CURRENCY_NOT_SUPPORTED"
)

// Error is a coded application error carrying the HTTP status it maps to.
type Error struct {
	Code    Code
	Status  int
	Message string
	Details interface{}
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by code so callers can compare against sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Retryable reports whether the client may retry the same request.
func (e *Error) Retryable() bool {
	return e.Status >= http.StatusInternalServerError || e.Status == http.StatusTooManyRequests
}

// WithDetails returns a copy of the error with field-level details attached.
func (e *Error) WithDetails(details interface{}) *Error {
	clone := *e
	clone.Details = details
	return &clone
}

func New(code Code, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message}
}

func Wrap(err error, code Code, status int, message string) *Error {
	return &Error{Code: code, Status: status, Message: message, Cause: err}
}

func BadRequest(message string) *Error {
	return New(CodeBadRequest, http.StatusBadRequest, message)
}

func NotFound(message string) *Error {
	return New(CodeNotFound, http.StatusNotFound, message)
}

func Conflict(code Code, message string) *Error {
	return New(code, http.StatusConflict, message)
}

func Unprocessable(code Code, message string) *Error {
	return New(code, http.StatusUnprocessableEntity, message)
}

func Internal(err error) *Error {
	return Wrap(err, CodeInternal, http.StatusInternalServerError, "Internal server error")
}

// From converts any error into an *Error. Uncoded errors become INTERNAL_ERROR.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal(err)
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
