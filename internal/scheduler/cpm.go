package scheduler

import "sort"

// Result holds the dates of one scheduling run, keyed by activity ID.
// It is independent of the activity records until Apply merges it back.
type Result struct {
	Dates        map[string]Dates
	Order        []string // topological order used by the run
	CriticalPath []string // critical activity IDs in Order
	Duration     int      // project finish, max EF
}

// Compute runs the CPM pipeline without touching the activities:
// validate, topological sort, forward pass, backward pass, float.
// Only ID, Duration and Predecessors are read.
//
// A nil entry in acts fails with *MissingActivityError naming the smallest
// such ID; it is never skipped.
func Compute(acts Activities) (*Result, error) {
	if len(acts) == 0 {
		return &Result{Dates: map[string]Dates{}}, nil
	}
	if id, ok := firstNil(acts); ok {
		return nil, &MissingActivityError{ActivityID: id}
	}

	net := buildNetwork(acts)
	if err := net.validate(); err != nil {
		return nil, err
	}

	// A fresh map is the reset: nothing from an earlier run can leak in.
	dates := make(map[string]Dates, len(net.ids))

	order, err := net.topoSort()
	if err != nil {
		return nil, err
	}

	// Forward pass: ES = max EF of predecessors, EF = ES + duration.
	for _, id := range order {
		var d Dates
		for i, p := range net.preds[id] {
			if ef := dates[p].EF; i == 0 || ef > d.ES {
				d.ES = ef
			}
		}
		d.EF = d.ES + acts[id].Duration
		dates[id] = d
	}

	finish := 0
	for i, id := range order {
		if ef := dates[id].EF; i == 0 || ef > finish {
			finish = ef
		}
	}

	// Backward pass in reverse order: sinks finish with the project,
	// everything else by the earliest late start of its successors.
	for i := len(order) - 1; i >= 0; i-- {
		id := order[i]
		d := dates[id]
		succs := net.succs[id]
		if len(succs) == 0 {
			d.LF = finish
		} else {
			d.LF = dates[succs[0]].LS
			for _, s := range succs[1:] {
				if ls := dates[s].LS; ls < d.LF {
					d.LF = ls
				}
			}
		}
		d.LS = d.LF - acts[id].Duration
		dates[id] = d
	}

	// Float and criticality. Free float is not clamped: a negative value
	// means the stored network is inconsistent and must stay visible.
	var critical []string
	for _, id := range order {
		d := dates[id]
		d.TotalFloat = d.LS - d.ES
		d.IsCritical = d.TotalFloat == 0

		succs := net.succs[id]
		if len(succs) == 0 {
			d.FreeFloat = d.TotalFloat
		} else {
			minES := dates[succs[0]].ES
			for _, s := range succs[1:] {
				if es := dates[s].ES; es < minES {
					minES = es
				}
			}
			d.FreeFloat = minES - d.EF
		}
		dates[id] = d

		if d.IsCritical {
			critical = append(critical, id)
		}
	}

	return &Result{
		Dates:        dates,
		Order:        order,
		CriticalPath: critical,
		Duration:     finish,
	}, nil
}

// Apply writes the computed dates into the activities in place.
// Activities the result does not know about are reset.
func (r *Result) Apply(acts Activities) {
	for id, a := range acts {
		if a != nil {
			a.Dates = r.Dates[id]
		}
	}
}

// firstNil returns the smallest ID mapped to a nil activity.
func firstNil(acts Activities) (string, bool) {
	found := false
	var first string
	for id, a := range acts {
		if a == nil && (!found || id < first) {
			first, found = id, true
		}
	}
	return first, found
}

// Scheduler runs CPM over a caller-owned activity network and remembers the
// topological order of its last successful run.
//
// It performs no locking; callers scheduling the same network from several
// goroutines must serialise those calls.
type Scheduler struct {
	activities Activities
	order      []string
}

// New creates a Scheduler.
func New() *Scheduler {
	return &Scheduler{}
}

// Schedule computes the full schedule and writes ES/EF/LS/LF, floats and
// criticality into every activity of acts. Activities are returned in
// topological order.
//
// An empty network returns immediately. On *ReferenceError, *CycleError or
// *MissingActivityError (a nil entry in acts) no activity is modified.
func (s *Scheduler) Schedule(acts Activities) ([]*Activity, error) {
	s.activities = acts
	s.order = nil

	if len(acts) == 0 {
		return nil, nil
	}

	res, err := Compute(acts)
	if err != nil {
		return nil, err
	}
	res.Apply(acts)
	s.order = res.Order

	out := make([]*Activity, 0, len(res.Order))
	for _, id := range res.Order {
		out = append(out, acts[id])
	}
	return out, nil
}

// CriticalPath returns the IDs of critical activities in the topological order
// of the last run. Before a successful run the order is undefined (sorted IDs).
func (s *Scheduler) CriticalPath() []string {
	ids := s.order
	if ids == nil {
		ids = make([]string, 0, len(s.activities))
		for id := range s.activities {
			ids = append(ids, id)
		}
		sort.Strings(ids)
	}

	var path []string
	for _, id := range ids {
		if a := s.activities[id]; a != nil && a.IsCritical {
			path = append(path, id)
		}
	}
	return path
}

// ProjectDuration returns the largest EF in the network, or 0 when empty.
func (s *Scheduler) ProjectDuration() int {
	duration := 0
	for _, a := range s.activities {
		if a != nil && a.EF > duration {
			duration = a.EF
		}
	}
	return duration
}

// Order returns the topological order of the last successful run.
func (s *Scheduler) Order() []string {
	return append([]string(nil), s.order...)
}
