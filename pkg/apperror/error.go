// Package apperror defines the typed errors that flow from repositories and
// services up to the HTTP boundary. Only Kind, Message and the status hint
// ever reach a client; Reason and Cause are for logs.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

type Kind string

const (
	KindNotFound           Kind = "NOT_FOUND"
	KindConflict           Kind = "CONFLICT"
	KindInvalidCredentials Kind = "INVALID_CREDENTIALS"
	KindAccountLocked      Kind = "ACCOUNT_LOCKED"
	KindDeviceConflict     Kind = "DEVICE_CONFLICT"
	KindUnauthorized       Kind = "UNAUTHORIZED"
	KindValidationFailed   Kind = "VALIDATION_FAILED"
	KindInternal           Kind = "INTERNAL"
)

// Stable client-facing messages.
const (
	MsgLoginFailed           = "Login failed: invalid username or password"
	MsgAccountLocked         = "Account has been locked"
	MsgDeviceConflict        = "Account is already logged in on another device"
	MsgUnauthorized          = "Unauthorized"
	MsgLoggedInElsewhere     = "Account has been logged in elsewhere"
	MsgNotFound              = "Not found"
	MsgUsernameTaken         = "Username has already existed"
	MsgDuplicateRecord       = "Record already exists"
	MsgInternal              = "Internal server error"
	MsgLogoutSuccessfully    = "Logout successfully"
	MsgErrorCreatingRecord   = "Error when creating record"
	MsgErrorRetrievingRecord = "Error when retrieving record"
	MsgErrorCountingRecord   = "Error when counting records"
	MsgErrorUpdatingRecord   = "Error when updating record"
	MsgErrorRemovingRecord   = "Error when removing record"
)

// Error is the single error type crossing repository and service boundaries.
type Error struct {
	Kind    Kind
	Message string
	// Reason is an internal discriminator (e.g. "token_expired"), logged but never serialized.
	Reason string
	Status int
	Cause  error
}

func (e *Error) Error() string {
	msg := string(e.Kind) + ": " + e.Message
	if e.Reason != "" {
		msg += " (" + e.Reason + ")"
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches another *Error by kind, so errors.Is(err, apperror.NotFound("")) works.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Kind == e.Kind
}

// WithReason returns a copy carrying an internal reason.
func (e *Error) WithReason(reason string) *Error {
	c := *e
	c.Reason = reason
	return &c
}

// WithMessage returns a copy with a different client message.
func (e *Error) WithMessage(message string) *Error {
	c := *e
	c.Message = message
	return &c
}

// WithCause returns a copy wrapping cause.
func (e *Error) WithCause(cause error) *Error {
	c := *e
	c.Cause = cause
	return &c
}

func newError(kind Kind, status int, message string) *Error {
	return &Error{Kind: kind, Status: status, Message: message}
}

func NotFound(message string) *Error {
	if message == "" {
		message = MsgNotFound
	}
	return newError(KindNotFound, http.StatusNotFound, message)
}

func Conflict(message string) *Error {
	return newError(KindConflict, http.StatusBadRequest, message)
}

func InvalidCredentials() *Error {
	return newError(KindInvalidCredentials, http.StatusUnauthorized, MsgLoginFailed)
}

func AccountLocked() *Error {
	return newError(KindAccountLocked, http.StatusUnauthorized, MsgAccountLocked)
}

func DeviceConflict() *Error {
	return newError(KindDeviceConflict, http.StatusUnauthorized, MsgDeviceConflict)
}

func Unauthorized(message string) *Error {
	if message == "" {
		message = MsgUnauthorized
	}
	return newError(KindUnauthorized, http.StatusUnauthorized, message)
}

func Validation(format string, args ...any) *Error {
	return newError(KindValidationFailed, http.StatusBadRequest, fmt.Sprintf(format, args...))
}

func Internal(message string, cause error) *Error {
	if message == "" {
		message = MsgInternal
	}
	return &Error{Kind: KindInternal, Status: http.StatusInternalServerError, Message: message, Cause: cause}
}

// From returns err as *Error, treating anything untyped as INTERNAL.
func From(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal("", err)
}

// KindOf reports the kind of err, or "" for nil.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	return From(err).Kind
}

// StatusOf returns the HTTP status hint for err.
func StatusOf(err error) int {
	e := From(err)
	if e == nil {
		return http.StatusOK
	}
	if e.Status == 0 {
		return http.StatusInternalServerError
	}
	return e.Status
}
