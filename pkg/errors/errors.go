// Package errors defines the coded errors storyweaver reports at its
// boundaries: the CLI prints [UserMessage] and the HTTP API maps each
// [Code] to a status and returns it in the error body.
//
// Library packages keep their own sentinel errors (story.ErrUnknownScene,
// store.ErrNotFound) and wrap them in an [*Error] where a caller needs a
// stable code:
//
//	if _, err := wikitext.Import(text); errors.Is(err, errors.ErrCodeNoScenes) {
//	    // keep the current story
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code identifies an error category. Codes are stable strings that appear
// in API error bodies.
type Code string

const (
	ErrCodeInvalidInput   Code = "INVALID_INPUT"   // malformed request or argument
	ErrCodeInvalidProject Code = "INVALID_PROJECT" // project document fails validation
	ErrCodeInvalidConfig  Code = "INVALID_CONFIG"  // config file, flags or environment
	ErrCodeNoScenes       Code = "NO_SCENES"       // wikitext contains no scene sections
	ErrCodeNotFound       Code = "NOT_FOUND"       // unknown project, scene or edge
	ErrCodeRefusedEdit    Code = "REFUSED_EDIT"    // edit would break a graph invariant
	ErrCodeInternal       Code = "INTERNAL_ERROR"
	ErrCodeUnsupported    Code = "UNSUPPORTED"
)

// Error carries a Code, a message for the user and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.detail()
}

func (e *Error) Unwrap() error { return e.Cause }

func (e *Error) detail() string {
	if e.Cause == nil {
		return e.Message
	}
	return e.Message + ": " + e.Cause.Error()
}

// New returns an Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap returns an Error that keeps cause reachable through errors.Is and
// errors.As.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), Cause: cause}
}

// Is reports whether the first *Error in err's chain has the given code.
func Is(err error, code Code) bool {
	return GetCode(err) == code && code != ""
}

// GetCode returns the code of the first *Error in err's chain, or "".
func GetCode(err error) Code {
	if e, ok := asError(err); ok {
		return e.Code
	}
	return ""
}

// UserMessage strips the code prefix from coded errors.
func UserMessage(err error) string {
	if e, ok := asError(err); ok {
		return e.detail()
	}
	return err.Error()
}

func asError(err error) (*Error, bool) {
	var e *Error
	ok := errors.As(err, &e)
	return e, ok
}
