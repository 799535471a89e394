package scheduler

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTopoSort_TieBreaksByID(t *testing.T) {
	tests := []struct {
		name  string
		specs []string
		want  []string
	}{
		{
			name:  "independent roots sorted",
			specs: []string{"c:1", "a:1", "b:1"},
			want:  []string{"a", "b", "c"},
		},
		{
			name:  "successors released in id order",
			specs: []string{"root:1", "z:1:root", "m:1:root", "a:1:root"},
			want:  []string{"root", "a", "m", "z"},
		},
		{
			name: "fifo across levels",
			// b is a root but sorts after a; a's successor is queued behind b.
			specs: []string{"a:1", "b:1", "a2:1:a", "b2:1:b", "join:1:a2,b2"},
			want:  []string{"a", "b", "a2", "b2", "join"},
		},
		{
			name:  "diamond",
			specs: []string{"A:1", "C:1:A", "B:1:A", "D:1:B,C"},
			want:  []string{"A", "B", "C", "D"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			net := buildNetwork(mustNetwork(t, tt.specs...))
			order, err := net.topoSort()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, order); diff != "" {
				t.Errorf("order mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestBuildNetwork_SuccessorsSorted(t *testing.T) {
	net := buildNetwork(mustNetwork(t, "A:1", "D:1:A", "B:1:A", "C:1:A"))
	if diff := cmp.Diff([]string{"B", "C", "D"}, net.succs["A"]); diff != "" {
		t.Errorf("successors of A mismatch (-want +got):\n%s", diff)
	}
	if len(net.succs["B"]) != 0 {
		t.Errorf("expected B to have no successors, got %v", net.succs["B"])
	}
}

func TestValidate_FirstErrorIsDeterministic(t *testing.T) {
	acts := mustNetwork(t, "A:1", "B:1", "C:1")
	acts["C"].Predecessors = []string{"x"}
	acts["B"].Predecessors = []string{"y", "z"}

	for i := 0; i < 10; i++ {
		err := buildNetwork(acts).validate()
		ref, ok := err.(*ReferenceError)
		if !ok {
			t.Fatalf("expected *ReferenceError, got %T (%v)", err, err)
		}
		if ref.ActivityID != "B" || ref.PredecessorID != "y" {
			t.Fatalf("run %d: got %s/%s, want B/y", i, ref.ActivityID, ref.PredecessorID)
		}
	}
}
