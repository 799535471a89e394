package scheduler

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidNetwork is the kind shared by every scheduling failure.
// Use errors.As with *ReferenceError or *CycleError to tell them apart.
var ErrInvalidNetwork = errors.New("invalid activity network")

// ReferenceError reports a predecessor ID that is not in the network.
type ReferenceError struct {
	ActivityID    string
	PredecessorID string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("activity %q references unknown predecessor %q", e.ActivityID, e.PredecessorID)
}

func (e *ReferenceError) Unwrap() error { return ErrInvalidNetwork }

// MissingActivityError reports a network entry whose activity is nil.
type MissingActivityError struct {
	ActivityID string
}

func (e *MissingActivityError) Error() string {
	return fmt.Sprintf("activity %q has no definition", e.ActivityID)
}

func (e *MissingActivityError) Unwrap() error { return ErrInvalidNetwork }

// CycleError reports that the dependency graph is not acyclic.
type CycleError struct {
	Sorted int      // Activities the topological sort managed to order
	Total  int      // Activities in the network
	Cycle  []string // One offending cycle, first ID repeated at the end; may be empty
}

func (e *CycleError) Error() string {
	msg := fmt.Sprintf("circular dependency detected in activity network (%d of %d activities ordered)", e.Sorted, e.Total)
	if len(e.Cycle) > 0 {
		msg += ": " + strings.Join(e.Cycle, " -> ")
	}
	return msg
}

func (e *CycleError) Unwrap() error { return ErrInvalidNetwork }
