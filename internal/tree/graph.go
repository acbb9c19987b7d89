package tree

import (
	"sort"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/taskid"
)

// Set is a set of task ids.
type Set map[string]struct{}

// Has reports membership.
func (s Set) Has(id string) bool {
	_, ok := s[id]
	return ok
}

// Sorted returns the members in hierarchy pre-order.
func (s Set) Sorted() []string {
	out := make([]string, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	sortIDs(out)
	return out
}

// Adjacency maps each task id to the ids of its children.
// It is a disposable cache derived from parent pointers, never a source of truth.
type Adjacency map[string]Set

// BuildAdjacency derives the parent→children index in O(n). Every task gets
// an entry, so leaves map to an empty set. Parent ids that resolve to no task
// still get an entry; callers decide whether such edges matter.
func BuildAdjacency(tasks []domain.Task) Adjacency {
	adj := make(Adjacency, len(tasks))
	for _, t := range tasks {
		if _, ok := adj[t.ID]; !ok {
			adj[t.ID] = Set{}
		}
		if t.ParentID == "" {
			continue
		}
		children, ok := adj[t.ParentID]
		if !ok {
			children = Set{}
			adj[t.ParentID] = children
		}
		children[t.ID] = struct{}{}
	}
	return adj
}

// Children returns the children of id in sibling order.
func (a Adjacency) Children(id string) []string {
	return a[id].Sorted()
}

// Reachable collects every id reachable from root with an iterative depth-first
// search, root included. Reaching an id twice means the parent pointers loop;
// the search still terminates and returns the full set together with an
// ErrCycleDetected error naming the revisited id.
func Reachable(adj Adjacency, root string) (Set, error) {
	visited := Set{}
	var cycleAt string

	stack := []string{root}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited.Has(id) {
			if cycleAt == "" {
				cycleAt = id
			}
			continue
		}
		visited[id] = struct{}{}
		// Pushed in reverse so siblings pop in order.
		children := adj.Children(id)
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	if cycleAt != "" {
		return visited, domain.NewTreeError(domain.ErrCycleDetected, cycleAt, "reached twice from %q", root)
	}
	return visited, nil
}

func sortIDs(ids []string) {
	sort.Slice(ids, func(i, j int) bool {
		return taskid.CompareStrings(ids[i], ids[j]) < 0
	})
}
