package evaluator

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failed evaluation. Each kind maps to a fixed status and
// a fixed user-facing message; internal details never reach the user.
type Kind int

const (
	// KindValidation means the request failed the minimum-length check.
	KindValidation Kind = iota + 1
	// KindService means the model call itself failed.
	KindService
	// KindParse means the model replied with something that is not JSON.
	KindParse
)

// User-facing messages, one per kind.
const (
	MessageValidation = "Please enter a prompt to analyze."
	MessageService    = "Something went wrong. Please try again."
	MessageParse      = "Failed to parse AI response. Please try again."
)

// ErrPromptTooShort is wrapped by validation failures.
var ErrPromptTooShort = errors.New("prompt missing or too short")

// Error is a terminal evaluation failure.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Status returns the HTTP status for the error kind.
func (e *Error) Status() int {
	if e.Kind == KindValidation {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// Message returns the fixed user-facing message for the error kind.
func (e *Error) Message() string {
	switch e.Kind {
	case KindValidation:
		return MessageValidation
	case KindParse:
		return MessageParse
	default:
		return MessageService
	}
}

// String returns the kind as used in logs and metric attributes.
func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation_error"
	case KindService:
		return "service_error"
	case KindParse:
		return "parse_error"
	default:
		return "unknown_error"
	}
}

// AsError converts any error into an *Error. Errors that are not already
// classified are treated as service failures.
func AsError(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return &Error{Kind: KindService, Err: err}
}
