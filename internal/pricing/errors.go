package pricing

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can decide what to show the user.
type Kind int

const (
	KindInvalidInput Kind = iota + 1
	KindDegenerate
	KindUpstream
)

func (k Kind) String() string {
	switch k {
	case KindInvalidInput:
		return "invalid_input"
	case KindDegenerate:
		return "degenerate_computation"
	case KindUpstream:
		return "upstream_unavailable"
	}
	return "unknown"
}

var (
	ErrInvalidInput        = errors.New("invalid input")
	ErrDegenerate          = errors.New("degenerate computation")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

// Error is the typed failure returned by pricing, sweep, recommend and quotes.
type Error struct {
	Kind  Kind
	Op    string
	Field string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Field != "" {
		msg += " (" + e.Field + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is lets errors.Is match on the kind sentinels.
func (e *Error) Is(target error) bool {
	switch target {
	case ErrInvalidInput:
		return e.Kind == KindInvalidInput
	case ErrDegenerate:
		return e.Kind == KindDegenerate
	case ErrUpstreamUnavailable:
		return e.Kind == KindUpstream
	}
	return false
}

func InvalidInput(op, field, format string, args ...interface{}) *Error {
	return &Error{Kind: KindInvalidInput, Op: op, Field: field, Err: fmt.Errorf(format, args...)}
}

func Degenerate(op, field, format string, args ...interface{}) *Error {
	return &Error{Kind: KindDegenerate, Op: op, Field: field, Err: fmt.Errorf(format, args...)}
}

func Upstream(op string, err error) *Error {
	return &Error{Kind: KindUpstream, Op: op, Err: err}
}

// KindOf reports the Kind carried by err, or 0 when err is untyped.
func KindOf(err error) Kind {
	var pe *Error
	if errors.As(err, &pe) {
		return pe.Kind
	}
	return 0
}
