package scheduler

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidActivity is returned when an activity definition cannot be constructed.
var ErrInvalidActivity = errors.New("invalid activity")

// Dates holds the fields computed by a scheduling run.
type Dates struct {
	ES         int  // Early start
	EF         int  // Early finish (ES + duration)
	LS         int  // Late start (LF - duration)
	LF         int  // Late finish
	TotalFloat int  // LS - ES
	FreeFloat  int  // Slack before any successor's ES moves
	IsCritical bool // TotalFloat == 0
}

// Activity is a single project activity in the CPM network.
// Identity is the ID alone; everything in Dates is owned by the scheduler.
type Activity struct {
	ID           string   // Unique identifier (e.g. "A", "T10")
	Name         string   // Human-readable name
	Duration     int      // Time units; 0 marks a milestone
	Predecessors []string // Finish-to-Start predecessor IDs
	Resource     string   // Informational only
	Description  string   // Informational only

	Dates
}

// Activities is an activity network keyed by activity ID.
type Activities map[string]*Activity

// NewActivity builds a normalised activity.
// IDs and names are trimmed, blank and repeated predecessor IDs are dropped.
func NewActivity(id, name string, duration int, predecessors ...string) (*Activity, error) {
	a := &Activity{
		ID:           strings.TrimSpace(id),
		Name:         strings.TrimSpace(name),
		Duration:     duration,
		Predecessors: normalizeIDs(predecessors),
	}
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}

// Validate checks the definition fields of the activity.
func (a *Activity) Validate() error {
	if a.ID == "" {
		return fmt.Errorf("%w: id must be a non-empty string", ErrInvalidActivity)
	}
	if a.Name == "" {
		return fmt.Errorf("%w: activity %q: name must be a non-empty string", ErrInvalidActivity, a.ID)
	}
	if a.Duration < 0 {
		return fmt.Errorf("%w: activity %q: duration must be non-negative, got %d", ErrInvalidActivity, a.ID, a.Duration)
	}
	for _, p := range a.Predecessors {
		if p == a.ID {
			return fmt.Errorf("%w: activity %q lists itself as a predecessor", ErrInvalidActivity, a.ID)
		}
	}
	return nil
}

// ParsePredecessors splits a comma-separated predecessor list ("A, B").
func ParsePredecessors(s string) []string {
	return normalizeIDs(strings.Split(s, ","))
}

// FormatPredecessors joins predecessor IDs with commas.
func FormatPredecessors(ids []string) string {
	return strings.Join(ids, ",")
}

func normalizeIDs(ids []string) []string {
	out := make([]string, 0, len(ids))
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// Reset clears all computed schedule fields.
func (a *Activity) Reset() {
	a.Dates = Dates{}
}

// HasFloat reports whether the activity has positive total float.
func (a *Activity) HasFloat() bool {
	return a.TotalFloat > 0
}

// Clone returns a deep copy of the activity.
func (a *Activity) Clone() *Activity {
	if a == nil {
		return nil
	}
	cp := *a
	if a.Predecessors != nil {
		cp.Predecessors = make([]string, len(a.Predecessors))
		copy(cp.Predecessors, a.Predecessors)
	}
	return &cp
}

// Summary returns a single-line description, e.g.
//
//	[CRITICAL] A | Start | dur=2 | pred=[-] | ES=0 EF=2 LS=0 LF=2 | TF=0 FF=0
func (a *Activity) Summary() string {
	tag := "[CRITICAL]"
	if !a.IsCritical {
		tag = fmt.Sprintf("[float=%3d]", a.TotalFloat)
	}
	preds := "-"
	if len(a.Predecessors) > 0 {
		preds = FormatPredecessors(a.Predecessors)
	}
	return fmt.Sprintf("%s %s | %s | dur=%d | pred=[%s] | ES=%d EF=%d LS=%d LF=%d | TF=%d FF=%d",
		tag, a.ID, a.Name, a.Duration, preds, a.ES, a.EF, a.LS, a.LF, a.TotalFloat, a.FreeFloat)
}
