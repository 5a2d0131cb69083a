package qrz

import (
	"errors"
	"fmt"
)

// Failure kinds surfaced by the package. Match them with errors.Is.
var (
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrMalformedResponse   = errors.New("malformed upstream response")
	ErrRecordNotFound      = errors.New("record not found")
)

// NotFoundReason is the client-facing text for ErrRecordNotFound.
const NotFoundReason = "callsign not found or invalid response from upstream"

// Outcome labels used in logs and metrics.
const (
	OutcomeOK          = "ok"
	OutcomeNotFound    = "not_found"
	OutcomeUnavailable = "unavailable"
	OutcomeMalformed   = "malformed"
	OutcomeError       = "error"
)

// Error describes a failed lookup.
type Error struct {
	// Kind is one of the package sentinels.
	Kind error
	// Reason is a short human-readable explanation free of credentials.
	Reason string
	// Status is the upstream HTTP status, zero when no response was received.
	Status int
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is this error's kind.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func unavailable(reason string, status int, cause error) *Error {
	return &Error{Kind: ErrUpstreamUnavailable, Reason: reason, Status: status, Err: cause}
}

func malformed(cause error) *Error {
	return &Error{Kind: ErrMalformedResponse, Reason: "could not parse XML", Err: cause}
}

func notFound(reason string) *Error {
	return &Error{Kind: ErrRecordNotFound, Reason: reason}
}

// Outcome classifies err into one of the Outcome labels.
func Outcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrRecordNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrMalformedResponse):
		return OutcomeMalformed
	case errors.Is(err, ErrUpstreamUnavailable):
		return OutcomeUnavailable
	default:
		return OutcomeError
	}
}
