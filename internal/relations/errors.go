package relations

import (
	"errors"
	"fmt"
	"strings"

	"github.com/KaramelBytes/dagloom-cli/internal/stats"
)

// StructuralError indicates an edge references columns absent from the dataset.
type StructuralError struct {
	Missing []string
	Reason  string
}

func (e *StructuralError) Error() string {
	if len(e.Missing) == 0 {
		return fmt.Sprintf("invalid edge: %s", e.Reason)
	}
	return fmt.Sprintf("missing columns: %s", strings.Join(e.Missing, ", "))
}

// InsufficientDataError indicates too few rows, groups, or categories for the selected test.
type InsufficientDataError struct{ Reason string }

func (e *InsufficientDataError) Error() string { return e.Reason }

// ComputationError indicates an underlying fit failed (singular design, non-convergence, panic).
type ComputationError struct {
	Op  string
	Err error
}

func (e *ComputationError) Error() string {
	if e == nil {
		return "computation failed"
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }

// ErrorKind names the taxonomy bucket of an ErrorEntry.
type ErrorKind string

const (
	KindStructural   ErrorKind = "structural"
	KindInsufficient ErrorKind = "insufficient_data"
	KindComputation  ErrorKind = "computation"
)

// ErrorEntry is one ErrorLog line: the edge it belongs to and what went wrong.
type ErrorEntry struct {
	Subject string    `json:"subject"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e ErrorEntry) String() string {
	return fmt.Sprintf("Error analyzing %s: %s", e.Subject, e.Message)
}

func newEntry(subject string, err error) ErrorEntry {
	kind := KindComputation
	var se *StructuralError
	var ie *InsufficientDataError
	switch {
	case errors.As(err, &se):
		kind = KindStructural
	case errors.As(err, &ie):
		kind = KindInsufficient
	}
	return ErrorEntry{Subject: subject, Kind: kind, Message: err.Error(), Err: err}
}

// wrapStats maps kernel errors onto the taxonomy: stats.ErrInsufficient becomes
// InsufficientDataError, anything else a ComputationError for op.
func wrapStats(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, stats.ErrInsufficient) {
		return &InsufficientDataError{Reason: fmt.Sprintf("%s: %v", op, err)}
	}
	return &ComputationError{Op: op, Err: err}
}

func insufficient(format string, args ...any) error {
	return &InsufficientDataError{Reason: fmt.Sprintf(format, args...)}
}
