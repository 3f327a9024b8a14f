// Package apperr provides coded errors shared by the feature subsystems and
// the command layer. The code decides how an error is reported: validation,
// not-found and conflict errors go back to the invoker verbatim, everything
// else is logged and replaced with a generic notice.
package apperr

import (
	"errors"
	"fmt"
)

// Code is a machine-readable error class.
type Code string

const (
	CodeUnknown     Code = "UNKNOWN"
	CodeValidation  Code = "VALIDATION"
	CodePermission  Code = "PERMISSION"
	CodeNotFound    Code = "NOT_FOUND"
	CodeConflict    Code = "CONFLICT"
	CodeTransient   Code = "TRANSIENT"
	CodePersistence Code = "PERSISTENCE"
)

// Error is a coded error with a message safe to show to users.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error carrying the same code, so callers can write
// errors.Is(err, apperr.NotFound).
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Message == "" && t.Err == nil && t.Code == e.Code
}

// Sentinels for errors.Is comparisons.
var (
	Validation  = &Error{Code: CodeValidation}
	Permission  = &Error{Code: CodePermission}
	NotFound    = &Error{Code: CodeNotFound}
	Conflict    = &Error{Code: CodeConflict}
	Transient   = &Error{Code: CodeTransient}
	Persistence = &Error{Code: CodePersistence}
)

// New returns a coded error.
func New(code Code, msg string) *Error {
	return &Error{Code: code, Message: msg}
}

// Wrap returns a coded error wrapping cause.
func Wrap(code Code, msg string, cause error) *Error {
	return &Error{Code: code, Message: msg, Err: cause}
}

// CodeOf reports the code of the outermost *Error in err's chain.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeUnknown
}

// UserMessage returns the text to show an invoker for err and whether the
// error is one the invoker is expected to see.
func UserMessage(err error) (string, bool) {
	var e *Error
	if !errors.As(err, &e) {
		return "", false
	}
	switch e.Code {
	case CodeValidation, CodeNotFound, CodeConflict, CodeTransient, CodePermission:
		return e.Message, e.Message != ""
	}
	return "", false
}
