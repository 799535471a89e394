package scheduler

import "sort"

// network is the adjacency built from predecessor lists for a single run.
// Nothing here outlives the run.
type network struct {
	ids   []string            // all activity IDs, sorted
	preds map[string][]string // activity -> distinct predecessors
	succs map[string][]string // activity -> dependents, sorted by ID
}

func buildNetwork(acts Activities) *network {
	n := &network{
		ids:   make([]string, 0, len(acts)),
		preds: make(map[string][]string, len(acts)),
		succs: make(map[string][]string, len(acts)),
	}
	for id := range acts {
		n.ids = append(n.ids, id)
	}
	sort.Strings(n.ids)

	// IDs are walked in sorted order, so every successor list comes out sorted.
	for _, id := range n.ids {
		preds := normalizeIDs(acts[id].Predecessors)
		n.preds[id] = preds
		for _, p := range preds {
			n.succs[p] = append(n.succs[p], id)
		}
	}
	return n
}

// validate reports the first predecessor reference that does not resolve.
func (n *network) validate() error {
	for _, id := range n.ids {
		for _, p := range n.preds[id] {
			if _, ok := n.preds[p]; !ok {
				return &ReferenceError{ActivityID: id, PredecessorID: p}
			}
		}
	}
	return nil
}

// topoSort orders the network with Kahn's algorithm.
// Roots are seeded in ID order and newly ready successors are appended in ID
// order, so the result is identical on every run.
func (n *network) topoSort() ([]string, error) {
	inDegree := make(map[string]int, len(n.ids))
	queue := make([]string, 0, len(n.ids))
	for _, id := range n.ids {
		inDegree[id] = len(n.preds[id])
		if inDegree[id] == 0 {
			queue = append(queue, id)
		}
	}

	order := make([]string, 0, len(n.ids))
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		order = append(order, node)

		for _, succ := range n.succs[node] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}

	if len(order) != len(n.ids) {
		return nil, &CycleError{
			Sorted: len(order),
			Total:  len(n.ids),
			Cycle:  n.findCycle(inDegree),
		}
	}
	return order, nil
}

// findCycle returns one cycle among the activities Kahn's algorithm could not
// release (remaining in-degree > 0). DFS with white/gray/black colouring.
func (n *network) findCycle(remaining map[string]int) []string {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int)
	var path []string

	var visit func(node string) []string
	visit = func(node string) []string {
		color[node] = gray
		path = append(path, node)
		for _, next := range n.succs[node] {
			if remaining[next] == 0 {
				continue
			}
			switch color[next] {
			case gray:
				for i, id := range path {
					if id == next {
						cycle := append([]string(nil), path[i:]...)
						return append(cycle, next)
					}
				}
			case white:
				if cycle := visit(next); cycle != nil {
					return cycle
				}
			}
		}
		path = path[:len(path)-1]
		color[node] = black
		return nil
	}

	for _, id := range n.ids {
		if remaining[id] > 0 && color[id] == white {
			if cycle := visit(id); cycle != nil {
				return cycle
			}
		}
	}
	return nil
}
