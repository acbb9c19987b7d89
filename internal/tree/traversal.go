package tree

import (
	"sort"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/taskid"
)

// DescendantsOf returns every task whose id lies strictly below id, in
// pre-order. It scans the whole set, O(n) per call, which is fine for task
// sets in the hundreds to low thousands; callers issuing many queries should
// build an Adjacency once instead.
func DescendantsOf(id string, tasks []domain.Task) ([]domain.Task, error) {
	if _, err := taskid.Parse(id); err != nil {
		return nil, err
	}
	if _, ok := find(tasks, id); !ok {
		return nil, domain.NotFound(id)
	}

	var out []domain.Task
	for _, t := range tasks {
		if taskid.IsDescendantString(t.ID, id) {
			out = append(out, t)
		}
	}
	sortTasks(out)
	return out, nil
}

// AncestorChain walks parent pointers upward from id and returns the
// ancestors in root-to-parent order, id itself excluded. The walk stops at a
// task without a parent or at an unresolvable parent id (an orphan). It fails
// with ErrCycleDetected as soon as a task is seen twice.
func AncestorChain(id string, tasks []domain.Task) ([]domain.Task, error) {
	index := make(map[string]domain.Task, len(tasks))
	for _, t := range tasks {
		if _, dup := index[t.ID]; !dup {
			index[t.ID] = t
		}
	}

	current, ok := index[id]
	if !ok {
		return nil, domain.NotFound(id)
	}

	seen := map[string]bool{id: true}
	var chain []domain.Task
	for current.ParentID != "" {
		parent, ok := index[current.ParentID]
		if !ok {
			break
		}
		if seen[parent.ID] {
			return nil, domain.NewTreeError(domain.ErrCycleDetected, parent.ID, "ancestor walk from %q revisits it", id)
		}
		seen[parent.ID] = true
		chain = append(chain, parent)
		current = parent
	}

	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain, nil
}

// Subtree returns id and all of its descendants by parent pointers, in
// pre-order. Loops are reported through the returned error, never followed.
func Subtree(id string, tasks []domain.Task) ([]domain.Task, error) {
	index := make(map[string]domain.Task, len(tasks))
	for _, t := range tasks {
		if _, dup := index[t.ID]; !dup {
			index[t.ID] = t
		}
	}
	if _, ok := index[id]; !ok {
		return nil, domain.NotFound(id)
	}

	reached, err := Reachable(BuildAdjacency(tasks), id)
	out := make([]domain.Task, 0, len(reached))
	for _, rid := range reached.Sorted() {
		if t, ok := index[rid]; ok {
			out = append(out, t)
		}
	}
	return out, err
}

func find(tasks []domain.Task, id string) (domain.Task, bool) {
	for _, t := range tasks {
		if t.ID == id {
			return t, true
		}
	}
	return domain.Task{}, false
}

func sortTasks(tasks []domain.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return taskid.CompareStrings(tasks[i].ID, tasks[j].ID) < 0
	})
}
