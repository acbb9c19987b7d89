package tree

import (
	"sort"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/taskid"
)

// idSet is the prefix-structured view of a task set that the planners work on.
// Malformed ids are left out: no valid id can collide with them, and no plan
// ever rewrites them.
type idSet struct {
	ids   []taskid.ID // pre-order
	known map[string]bool
}

func newIDSet(ids []taskid.ID) *idSet {
	s := &idSet{known: make(map[string]bool, len(ids))}
	for _, id := range ids {
		key := id.String()
		if s.known[key] {
			continue
		}
		s.known[key] = true
		s.ids = append(s.ids, id)
	}
	sort.Slice(s.ids, func(i, j int) bool { return taskid.Compare(s.ids[i], s.ids[j]) < 0 })
	return s
}

func idSetFromTasks(tasks []domain.Task) *idSet {
	ids := make([]taskid.ID, 0, len(tasks))
	for _, t := range tasks {
		if id, err := taskid.Parse(t.ID); err == nil {
			ids = append(ids, id)
		}
	}
	return newIDSet(ids)
}

func (s *idSet) has(id taskid.ID) bool {
	return s.known[id.String()]
}

// childrenOf returns the direct children of parent (nil for the root level) in sibling order.
func (s *idSet) childrenOf(parent taskid.ID) []taskid.ID {
	var out []taskid.ID
	for _, id := range s.ids {
		if id.Depth() == parent.Depth()+1 && id.HasPrefix(parent) {
			out = append(out, id)
		}
	}
	return out
}

// descendantsOf returns every id strictly below id, in pre-order.
func (s *idSet) descendantsOf(id taskid.ID) []taskid.ID {
	var out []taskid.ID
	for _, other := range s.ids {
		if taskid.IsDescendant(other, id) {
			out = append(out, other)
		}
	}
	return out
}

// cascade renames from to to and rewrites every descendant of from by
// replacing the from prefix with to, keeping the rest of the suffix.
func (s *idSet) cascade(from, to taskid.ID) []domain.Rewrite {
	if taskid.Compare(from, to) == 0 {
		return nil
	}
	rewrites := []domain.Rewrite{{OldID: from.String(), NewID: to.String()}}
	for _, d := range s.descendantsOf(from) {
		moved, _ := d.Rebase(from, to)
		rewrites = append(rewrites, domain.Rewrite{OldID: d.String(), NewID: moved.String()})
	}
	return rewrites
}

// renumberGroup assigns positions 1..N under parent to members, in the given
// order, and cascades every change into the member's subtree.
func (s *idSet) renumberGroup(parent taskid.ID, members []taskid.ID) []domain.Rewrite {
	var rewrites []domain.Rewrite
	for i, m := range members {
		rewrites = append(rewrites, s.cascade(m, parent.Child(i+1))...)
	}
	return rewrites
}

// validate checks that applying plan, dropping removed and adding added
// leaves every id unique. On failure nothing may be applied.
func (s *idSet) validate(plan domain.Plan, removed []taskid.ID, added []taskid.ID) error {
	gone := make(map[string]bool, len(removed)+len(plan.Rewrites))
	for _, id := range removed {
		gone[id.String()] = true
	}

	final := make(map[string]string, len(s.ids)+len(added))
	claim := func(id, owner string) error {
		if prev, taken := final[id]; taken {
			return domain.NewTreeError(domain.ErrIDCollision, id, "claimed by both %q and %q", prev, owner)
		}
		final[id] = owner
		return nil
	}

	for _, r := range plan.Rewrites {
		if !s.known[r.OldID] {
			return domain.NewTreeError(domain.ErrIDCollision, r.OldID, "rewrite source is not part of the task set")
		}
		if gone[r.OldID] {
			return domain.NewTreeError(domain.ErrIDCollision, r.OldID, "rewritten twice or after removal")
		}
		gone[r.OldID] = true
		if err := claim(r.NewID, r.OldID); err != nil {
			return err
		}
	}
	for _, id := range s.ids {
		key := id.String()
		if gone[key] {
			continue
		}
		if err := claim(key, key); err != nil {
			return err
		}
	}
	for _, id := range added {
		if err := claim(id.String(), "new task"); err != nil {
			return err
		}
	}
	return nil
}
