package projectfile

import (
	"errors"
	"fmt"

	"github.com/aristath/miniplan/internal/scheduler"
)

// ErrDuplicateID is returned when a file defines the same ID twice.
var ErrDuplicateID = errors.New("duplicate activity id")

// document is the top level of the JSON, YAML and TOML encodings.
type document struct {
	Activities []record `json:"activities" yaml:"activities" toml:"activities"`
}

// record is one activity as stored in a file. Computed fields are optional;
// they are recomputed by the next scheduling run.
type record struct {
	ID           string   `json:"id" yaml:"id" toml:"id"`
	Name         string   `json:"name" yaml:"name" toml:"name"`
	Duration     int      `json:"duration" yaml:"duration" toml:"duration"`
	Predecessors []string `json:"predecessors" yaml:"predecessors,flow" toml:"predecessors"`
	Resource     string   `json:"resource,omitempty" yaml:"resource,omitempty" toml:"resource,omitempty"`
	Description  string   `json:"description,omitempty" yaml:"description,omitempty" toml:"description,omitempty"`

	ES         int  `json:"es,omitempty" yaml:"es,omitempty" toml:"es,omitempty"`
	EF         int  `json:"ef,omitempty" yaml:"ef,omitempty" toml:"ef,omitempty"`
	LS         int  `json:"ls,omitempty" yaml:"ls,omitempty" toml:"ls,omitempty"`
	LF         int  `json:"lf,omitempty" yaml:"lf,omitempty" toml:"lf,omitempty"`
	TotalFloat int  `json:"total_float,omitempty" yaml:"total_float,omitempty" toml:"total_float,omitempty"`
	FreeFloat  int  `json:"free_float,omitempty" yaml:"free_float,omitempty" toml:"free_float,omitempty"`
	IsCritical bool `json:"is_critical,omitempty" yaml:"is_critical,omitempty" toml:"is_critical,omitempty"`
}

func fromActivity(a *scheduler.Activity) record {
	preds := a.Predecessors
	if preds == nil {
		preds = []string{}
	}
	return record{
		ID:           a.ID,
		Name:         a.Name,
		Duration:     a.Duration,
		Predecessors: preds,
		Resource:     a.Resource,
		Description:  a.Description,
		ES:           a.ES,
		EF:           a.EF,
		LS:           a.LS,
		LF:           a.LF,
		TotalFloat:   a.TotalFloat,
		FreeFloat:    a.FreeFloat,
		IsCritical:   a.IsCritical,
	}
}

func (r record) dates() scheduler.Dates {
	return scheduler.Dates{
		ES:         r.ES,
		EF:         r.EF,
		LS:         r.LS,
		LF:         r.LF,
		TotalFloat: r.TotalFloat,
		FreeFloat:  r.FreeFloat,
		IsCritical: r.IsCritical,
	}
}

func toActivities(recs []record) ([]*scheduler.Activity, error) {
	acts := make([]*scheduler.Activity, 0, len(recs))
	seen := make(map[string]int, len(recs))
	for i, r := range recs {
		a, err := scheduler.NewActivity(r.ID, r.Name, r.Duration, r.Predecessors...)
		if err != nil {
			return nil, fmt.Errorf("activity %d: %w", i+1, err)
		}
		if first, dup := seen[a.ID]; dup {
			return nil, fmt.Errorf("%w: %q (activities %d and %d)", ErrDuplicateID, a.ID, first, i+1)
		}
		seen[a.ID] = i + 1

		a.Resource = r.Resource
		a.Description = r.Description
		a.Dates = r.dates()
		acts = append(acts, a)
	}
	return acts, nil
}
