// Package errs defines the error taxonomy surfaced by the case engine.
//
// Stores return plain sentinel errors; services translate them into *Error
// values carrying a stable Code (and, for conflicts, a Reason) that the HTTP
// layer maps onto status codes.
package errs

import (
	"errors"
	"fmt"
)

// Code is a stable error kind
type Code string

const (
	CodeInvalidInput     Code = "invalid_input"
	CodeNotFound         Code = "not_found"
	CodePermissionDenied Code = "permission_denied"
	CodeConflict         Code = "conflict"
	CodeExternal         Code = "external_service_failure"
	CodeInternal         Code = "internal"
)

// Reason narrows a Code, mostly for conflicts
type Reason string

const (
	ReasonActiveRequest     Reason = "active_request"
	ReasonStillValid        Reason = "still_valid"
	ReasonAlreadyAssigned   Reason = "already_assigned"
	ReasonInvalidTransition Reason = "invalid_transition"
	ReasonNotDecided        Reason = "not_decided"
	ReasonPartialAssignment Reason = "partial_assignment"
)

// Error is a coded, human-readable failure
type Error struct {
	Code    Code
	Reason  Reason
	Message string
	Err     error
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

// New creates an error with the given code and message
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Conflict creates a conflict error with a reason
func Conflict(reason Reason, message string) *Error {
	return &Error{Code: CodeConflict, Reason: reason, Message: message}
}

// Wrap attaches a code and message to an underlying error
func Wrap(err error, code Code, message string) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Internal wraps an unexpected store failure
func Internal(err error) *Error {
	return Wrap(err, CodeInternal, "internal error")
}

// External wraps a collaborator failure
func External(err error, message string) *Error {
	return Wrap(err, CodeExternal, message)
}

// As extracts the first *Error in err's chain
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// CodeOf returns err's code, or CodeInternal when err is not coded
func CodeOf(err error) Code {
	if e, ok := As(err); ok {
		return e.Code
	}
	return CodeInternal
}

// ReasonOf returns err's reason, if any
func ReasonOf(err error) Reason {
	if e, ok := As(err); ok {
		return e.Reason
	}
	return ""
}

// Is reports whether err carries code
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}

// PublicMessage is safe to show to callers; internal details are never exposed
func PublicMessage(err error) string {
	e, ok := As(err)
	if !ok || e.Code == CodeInternal {
		return "An unexpected error occurred"
	}
	return e.Message
}
