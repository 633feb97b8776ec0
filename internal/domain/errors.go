package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoAssessment is returned when a report or result is requested
// before any scoring response exists. Call sites are expected to
// prevent this structurally; it is never shown to the operator.
var ErrNoAssessment = errors.New("no assessment available")

// ErrSuperseded is returned to a waiting submission whose scoring call
// was replaced by a newer one before it resolved.
var ErrSuperseded = errors.New("superseded by a newer submission")

// ValidationError reports an operator-input field that failed
// coercion. It is resolved at the input boundary and never sent to the
// scoring service.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NetworkError reports a failed scoring call: transport failure,
// non-2xx status, or timeout. It is the only error class surfaced to
// the operator as text.
type NetworkError struct {
	Op      string
	Status  int
	Timeout bool
	Err     error
}

func (e *NetworkError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("%s: timed out", e.Op)
	case e.Status != 0:
		return fmt.Sprintf("%s: unexpected status %d", e.Op, e.Status)
	default:
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
}

func (e *NetworkError) Unwrap() error { return e.Err }

// MalformedResponseError reports a scoring response that decoded but
// is missing required fields. Displayed like a NetworkError ("service
// unavailable") but logged distinctly for diagnosis.
type MalformedResponseError struct {
	Missing []string
}

func (e *MalformedResponseError) Error() string {
	return "malformed scoring response: missing " + strings.Join(e.Missing, ", ")
}

// IsNetworkError reports whether err should be presented to the
// operator as a scoring-service availability problem.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	var me *MalformedResponseError
	return errors.As(err, &ne) || errors.As(err, &me)
}
