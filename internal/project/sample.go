package project

import "github.com/aristath/miniplan/internal/scheduler"

// SampleActivities returns fresh copies of the sample construction project.
func SampleActivities() []*scheduler.Activity {
	return []*scheduler.Activity{
		{ID: "A", Name: "Start", Duration: 2, Predecessors: []string{}},
		{ID: "B", Name: "Foundation", Duration: 4, Predecessors: []string{"A"}},
		{ID: "C", Name: "Structure", Duration: 6, Predecessors: []string{"B"}},
		{ID: "D", Name: "Electrical", Duration: 3, Predecessors: []string{"B"}},
		{ID: "E", Name: "Finish", Duration: 2, Predecessors: []string{"C", "D"}},
	}
}

// Sample returns a project preloaded with SampleActivities.
func Sample() *Project {
	p := New()
	for _, a := range SampleActivities() {
		p.activities[a.ID] = a
	}
	return p
}
