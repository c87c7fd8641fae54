package api

import (
	"errors"
	"fmt"
)

// Kind classifies a client error.
type Kind int

const (
	// NetworkFailure: the request did not complete (transport error, timeout,
	// non-2xx status or an open circuit breaker).
	NetworkFailure Kind = iota + 1
	// DecodeFailure: the response body did not have the expected shape.
	DecodeFailure
	// EmptyInput guards calls that must not be sent, such as a blank query.
	EmptyInput
)

func (k Kind) String() string {
	switch k {
	case NetworkFailure:
		return "network failure"
	case DecodeFailure:
		return "decode failure"
	case EmptyInput:
		return "empty input"
	}
	return "unknown error"
}

// ErrEmptyInput is wrapped by errors of kind EmptyInput.
var ErrEmptyInput = errors.New("empty input")

// Error is returned by every Client method.
type Error struct {
	Kind   Kind
	Op     string
	Status int // HTTP status for non-2xx responses, else 0
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %s (HTTP %d): %v", e.Op, e.Kind, e.Status, e.Err)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Message is the short text shown to users next to a failed request.
func (e *Error) Message() string {
	switch e.Kind {
	case NetworkFailure:
		if e.Status != 0 {
			return fmt.Sprintf("The travel service returned an error (HTTP %d): %v", e.Status, e.Err)
		}
		return fmt.Sprintf("Could not reach the travel service: %v", e.Err)
	case DecodeFailure:
		return fmt.Sprintf("The travel service sent an unexpected response: %v", e.Err)
	}
	return e.Err.Error()
}

// KindOf returns the Kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// UserMessage renders err for display, preferring Error.Message.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message()
	}
	return err.Error()
}
