package domain

import "strings"

// Empty reports whether the change set would leave a store untouched.
func (cs ChangeSet) Empty() bool {
	return len(cs.Removed) == 0 && len(cs.Rewrites) == 0 && len(cs.Upserts) == 0
}

// Apply returns the task rows and dependency edges that result from
// committing cs to tasks and deps. The inputs are not modified.
//
// A rewritten row takes the parent its new id encodes; any other row whose
// parent was rewritten follows it. Removing or rewriting an unknown id fails
// with ErrNotFound, and a result holding the same id twice fails with
// ErrIDCollision. Stores that keep rows in memory or in a single document use
// Apply directly; the others must reproduce the same outcome.
func (cs ChangeSet) Apply(tasks []Task, deps []Dependency) ([]Task, []Dependency, error) {
	present := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		present[t.ID] = true
	}

	removed := make(map[string]bool, len(cs.Removed))
	for _, id := range cs.Removed {
		if !present[id] {
			return nil, nil, NotFound(id)
		}
		removed[id] = true
	}

	rewrites := make(map[string]string, len(cs.Rewrites))
	for _, r := range cs.Rewrites {
		if !present[r.OldID] || removed[r.OldID] {
			return nil, nil, NotFound(r.OldID)
		}
		rewrites[r.OldID] = r.NewID
	}

	out := make([]Task, 0, len(tasks)+len(cs.Upserts))
	index := make(map[string]int, len(tasks)+len(cs.Upserts))
	for _, t := range tasks {
		if removed[t.ID] {
			continue
		}
		if newID, ok := rewrites[t.ID]; ok {
			t.ID = newID
			t.ParentID = parentOf(newID)
		} else if newParent, ok := rewrites[t.ParentID]; ok {
			t.ParentID = newParent
		}
		if _, dup := index[t.ID]; dup {
			return nil, nil, &TreeError{Kind: ErrIDCollision, ID: t.ID}
		}
		index[t.ID] = len(out)
		out = append(out, t)
	}

	for _, t := range cs.Upserts {
		if i, ok := index[t.ID]; ok {
			out[i] = t
			continue
		}
		index[t.ID] = len(out)
		out = append(out, t)
	}

	edges := make([]Dependency, 0, len(deps))
	for _, d := range deps {
		if removed[d.TaskID] || removed[d.DependsOnID] {
			continue
		}
		if id, ok := rewrites[d.TaskID]; ok {
			d.TaskID = id
		}
		if id, ok := rewrites[d.DependsOnID]; ok {
			d.DependsOnID = id
		}
		edges = append(edges, d)
	}
	return out, edges, nil
}

func parentOf(id string) string {
	i := strings.LastIndex(id, ".")
	if i < 0 {
		return ""
	}
	return id[:i]
}
