package tree

import (
	"fmt"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/taskid"
)

// Check reports every hierarchy invariant the task set breaks, in task order
// and without modifying anything. An empty result means the set is consistent:
// ids are well formed and unique, each id extends its parent id by exactly one
// segment, parent ids resolve, and every sibling group is numbered 1..N.
// PlanRenumber repairs everything Check reports.
func Check(tasks []domain.Task) []domain.Violation {
	var out []domain.Violation
	add := func(kind domain.ViolationKind, id, format string, args ...any) {
		out = append(out, domain.Violation{Kind: kind, TaskID: id, Message: fmt.Sprintf(format, args...)})
	}

	known := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if known[t.ID] {
			add(domain.ViolationDuplicateID, t.ID, "id appears more than once")
			continue
		}
		known[t.ID] = true
	}

	groups := make(map[string][]int)
	for _, t := range tasks {
		id, err := taskid.Parse(t.ID)
		if err != nil {
			add(domain.ViolationInvalidID, t.ID, "%v", err)
			continue
		}
		if t.ParentID != "" && !known[t.ParentID] {
			add(domain.ViolationOrphan, t.ID, "parent %q does not exist", t.ParentID)
		}
		if expected := taskid.ParentOf(t.ID); expected != t.ParentID {
			add(domain.ViolationPrefixMismatch, t.ID, "parent is %q, id implies %q", t.ParentID, expected)
		}
		parent, _ := id.Parent()
		key := parent.String()
		groups[key] = append(groups[key], id.Last())
	}

	for _, key := range sortedKeys(groups) {
		present := make(map[int]bool, len(groups[key]))
		for _, n := range groups[key] {
			present[n] = true
		}
		for n := 1; n <= len(present); n++ {
			if !present[n] {
				missing := taskid.Root(n)
				if key != "" {
					missing = taskid.MustParse(key).Child(n)
				}
				add(domain.ViolationSiblingGap, missing.String(), "sibling group %q has no position %d", key, n)
			}
		}
	}
	return out
}

func sortedKeys(groups map[string][]int) []string {
	keys := make([]string, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sortIDs(keys)
	return keys
}
