package apperror

import (
	"errors"
	"fmt"
)

type Code string

const (
	CodeNotFound            Code = "NOT_FOUND"
	CodeUnavailable         Code = "UNAVAILABLE"
	CodeInsufficientBalance Code = "INSUFFICIENT_BALANCE"
	CodeUnauthorized        Code = "UNAUTHORIZED"
	CodeConflict            Code = "CONFLICT"
	CodeUpstreamFailure     Code = "UPSTREAM_FAILURE"
	CodeInvalidInput        Code = "INVALID_INPUT"
	CodeInternal            Code = "INTERNAL"
)

// Error is the application-level error carried from services to the HTTP layer.
type Error struct {
	Code    Code
	Message string
	Err     error

	// UpstreamStatus holds the fulfillment provider's HTTP status when
	// Code is CodeUpstreamFailure and the status was in a sane range.
	UpstreamStatus int
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

func NotFound(message string) *Error {
	return New(CodeNotFound, message)
}

func Unavailable(message string) *Error {
	return New(CodeUnavailable, message)
}

func InsufficientBalance(message string) *Error {
	return New(CodeInsufficientBalance, message)
}

func Unauthorized(message string) *Error {
	return New(CodeUnauthorized, message)
}

func Conflict(message string) *Error {
	return New(CodeConflict, message)
}

func InvalidInput(message string) *Error {
	return New(CodeInvalidInput, message)
}

// Upstream reports a fulfillment provider failure. Statuses outside 400–599
// are collapsed to a generic gateway failure.
func Upstream(status int, message string, err error) *Error {
	e := Wrap(CodeUpstreamFailure, message, err)
	if status >= 400 && status <= 599 {
		e.UpstreamStatus = status
	}
	return e
}

// CodeOf extracts the application code from an error chain.
// Unknown errors are classified as internal.
func CodeOf(err error) Code {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeInternal
}

func Is(err error, code Code) bool {
	return CodeOf(err) == code
}
