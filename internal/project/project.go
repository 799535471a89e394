package project

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/gammazero/toposort"

	"github.com/aristath/miniplan/internal/scheduler"
)

var (
	// ErrDuplicateID is returned when adding an activity whose ID is taken.
	ErrDuplicateID = errors.New("activity id already exists")
	// ErrNotFound is returned for operations on an unknown activity ID.
	ErrNotFound = errors.New("activity not found")
	// ErrUnknownPredecessor is returned when an edit names a missing predecessor.
	ErrUnknownPredecessor = errors.New("unknown predecessor")
	// ErrWouldCycle is returned when an edit would close a dependency cycle.
	ErrWouldCycle = errors.New("edit would create a circular dependency")
)

// Summary is a snapshot of a successful scheduling run.
type Summary struct {
	Order        []string
	CriticalPath []string
	Duration     int
	Activities   []*scheduler.Activity // clones, in Order
}

// Project is the editable activity network.
// All access goes through the mutex, so scheduling runs never overlap with edits.
type Project struct {
	mu         sync.RWMutex
	activities scheduler.Activities
}

// New creates an empty project.
func New() *Project {
	return &Project{
		activities: make(scheduler.Activities),
	}
}

// Add inserts a new activity. The ID must be unused and every predecessor must
// already exist, so an added activity can never close a cycle.
func (p *Project) Add(a *scheduler.Activity) error {
	if err := a.Validate(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.activities[a.ID]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateID, a.ID)
	}
	if err := p.checkPredecessors(a); err != nil {
		return err
	}

	cp := a.Clone()
	cp.Reset()
	p.activities[cp.ID] = cp
	return nil
}

// Update replaces the definition of an existing activity and clears its
// computed dates. Edits that reference unknown predecessors or would introduce
// a cycle are rejected and leave the project unchanged.
func (p *Project) Update(a *scheduler.Activity) error {
	if err := a.Validate(); err != nil {
		return err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	old, exists := p.activities[a.ID]
	if !exists {
		return fmt.Errorf("%w: %q", ErrNotFound, a.ID)
	}
	if err := p.checkPredecessors(a); err != nil {
		return err
	}

	cp := a.Clone()
	cp.Reset()
	p.activities[cp.ID] = cp
	if _, err := p.order(); err != nil {
		p.activities[old.ID] = old
		return fmt.Errorf("%w: activity %q: %v", ErrWouldCycle, a.ID, err)
	}
	return nil
}

// Remove deletes an activity and returns the IDs of activities that still list
// it as a predecessor. Those references are left in place for the user to fix.
func (p *Project) Remove(id string) ([]string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if _, exists := p.activities[id]; !exists {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	delete(p.activities, id)

	var dependents []string
	for otherID, other := range p.activities {
		for _, pred := range other.Predecessors {
			if pred == id {
				dependents = append(dependents, otherID)
				break
			}
		}
	}
	sort.Strings(dependents)
	return dependents, nil
}

// Get returns a copy of the activity with the given ID.
func (p *Project) Get(id string) (*scheduler.Activity, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	a, exists := p.activities[id]
	if !exists {
		return nil, false
	}
	return a.Clone(), true
}

// Has reports whether an activity with the given ID exists.
func (p *Project) Has(id string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	_, exists := p.activities[id]
	return exists
}

// IDs returns all activity IDs, sorted.
func (p *Project) IDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.sortedIDs()
}

// List returns copies of all activities sorted by ID.
func (p *Project) List() []*scheduler.Activity {
	p.mu.RLock()
	defer p.mu.RUnlock()

	out := make([]*scheduler.Activity, 0, len(p.activities))
	for _, id := range p.sortedIDs() {
		out = append(out, p.activities[id].Clone())
	}
	return out
}

// Len returns the number of activities.
func (p *Project) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return len(p.activities)
}

// Clear removes every activity.
func (p *Project) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.activities = make(scheduler.Activities)
}

// Replace swaps the whole network for the given activities without checking
// references or cycles; loaded data is validated by the next scheduling run.
// Computed dates are kept so a previously saved schedule can be displayed.
func (p *Project) Replace(acts []*scheduler.Activity) error {
	next := make(scheduler.Activities, len(acts))
	for _, a := range acts {
		if _, exists := next[a.ID]; exists {
			return fmt.Errorf("%w: %q", ErrDuplicateID, a.ID)
		}
		next[a.ID] = a.Clone()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.activities = next
	return nil
}

// Order returns a dependency-respecting listing of the activity IDs.
// Unlike the scheduler's order it makes no tie-break guarantees.
func (p *Project) Order() ([]string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return p.order()
}

// Schedule runs s over the project's activities while holding the write lock
// and returns a snapshot of the result.
func (p *Project) Schedule(s *scheduler.Scheduler) (*Summary, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	scheduled, err := s.Schedule(p.activities)
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		Order:        s.Order(),
		CriticalPath: s.CriticalPath(),
		Duration:     s.ProjectDuration(),
		Activities:   make([]*scheduler.Activity, 0, len(scheduled)),
	}
	for _, a := range scheduled {
		sum.Activities = append(sum.Activities, a.Clone())
	}
	return sum, nil
}

func (p *Project) checkPredecessors(a *scheduler.Activity) error {
	for _, pred := range a.Predecessors {
		if _, exists := p.activities[pred]; !exists {
			return fmt.Errorf("%w: activity %q depends on %q", ErrUnknownPredecessor, a.ID, pred)
		}
	}
	return nil
}

// order sorts the network with gammazero/toposort. Caller holds the lock.
func (p *Project) order() ([]string, error) {
	var edges []toposort.Edge
	for _, id := range p.sortedIDs() {
		a := p.activities[id]
		if len(a.Predecessors) == 0 {
			// Edge from nil keeps isolated activities in the result
			edges = append(edges, toposort.Edge{nil, id})
			continue
		}
		for _, pred := range a.Predecessors {
			if _, exists := p.activities[pred]; !exists {
				// Dangling references are the scheduler's to report
				edges = append(edges, toposort.Edge{nil, id})
				continue
			}
			edges = append(edges, toposort.Edge{pred, id})
		}
	}

	sorted, err := toposort.Toposort(edges)
	if err != nil {
		return nil, err
	}

	order := make([]string, 0, len(p.activities))
	seen := make(map[string]bool, len(p.activities))
	for _, v := range sorted {
		id, ok := v.(string)
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		order = append(order, id)
	}
	return order, nil
}

func (p *Project) sortedIDs() []string {
	ids := make([]string, 0, len(p.activities))
	for id := range p.activities {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
