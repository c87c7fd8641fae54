// Package request models the lifecycle of a single asynchronous request.
package request

// Status is the tag of a State.
type Status int

const (
	Idle Status = iota
	Pending
	Success
	Failure
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Success:
		return "success"
	case Failure:
		return "failure"
	}
	return "unknown"
}

// State is a tagged variant: idle, pending, success(value) or failure(err).
// The zero value is Idle.
type State[T any] struct {
	status Status
	value  T
	err    error
}

// Start returns a Pending state.
func Start[T any]() State[T] {
	return State[T]{status: Pending}
}

// Succeed returns a Success state carrying v.
func Succeed[T any](v T) State[T] {
	return State[T]{status: Success, value: v}
}

// Fail returns a Failure state carrying err.
func Fail[T any](err error) State[T] {
	return State[T]{status: Failure, err: err}
}

func (s State[T]) Status() Status { return s.status }

func (s State[T]) IsIdle() bool    { return s.status == Idle }
func (s State[T]) IsPending() bool { return s.status == Pending }
func (s State[T]) IsSuccess() bool { return s.status == Success }
func (s State[T]) IsFailure() bool { return s.status == Failure }

// Value returns the success value. ok is false for any other status.
func (s State[T]) Value() (v T, ok bool) {
	if s.status != Success {
		var zero T
		return zero, false
	}
	return s.value, true
}

// Err returns the failure error, or nil.
func (s State[T]) Err() error {
	if s.status != Failure {
		return nil
	}
	return s.err
}
