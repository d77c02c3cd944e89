package calltree

import (
	"errors"
	"fmt"
)

var (
	ErrUnmatchedOutcome   = errors.New("calltree: outcome without an open invocation")
	ErrMismatchedOutcome  = errors.New("calltree: outcome does not match the open invocation")
	ErrUnclosedInvocation = errors.New("calltree: invocation left open at end of input")
)

// StackError reports why a batch could not be reconstructed. It wraps one
// of the package sentinels.
type StackError struct {
	Err error
	// Line is the zero-based input index of the offending line. For
	// ErrUnclosedInvocation it is the index of the innermost open invoke.
	Line int
	Raw  string
	// Expected is the id of the open frame, Got the id on the outcome line.
	Expected string
	Got      string
	// Open is the stack depth at the time of failure.
	Open int
}

func (e *StackError) Error() string {
	switch {
	case errors.Is(e.Err, ErrMismatchedOutcome):
		return fmt.Sprintf("%v: line %d: expected %s, got %s", e.Err, e.Line, e.Expected, e.Got)
	case errors.Is(e.Err, ErrUnclosedInvocation):
		return fmt.Sprintf("%v: %d open, innermost %s opened at line %d", e.Err, e.Open, e.Expected, e.Line)
	default:
		return fmt.Sprintf("%v: line %d: %s", e.Err, e.Line, e.Got)
	}
}

func (e *StackError) Unwrap() error {
	return e.Err
}

// Reason is a short stable name for the failure, suitable for metrics
// labels and API responses.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnmatchedOutcome):
		return "unmatched_outcome"
	case errors.Is(err, ErrMismatchedOutcome):
		return "mismatched_outcome"
	case errors.Is(err, ErrUnclosedInvocation):
		return "unclosed_invocation"
	default:
		return "other"
	}
}
