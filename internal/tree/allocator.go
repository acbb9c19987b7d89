package tree

import (
	"sort"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/taskid"
)

// AllocateChild returns the id for a new last child of parent (nil for the
// root level): one past the largest trailing segment among existing, or 1
// when there are no children yet.
func AllocateChild(parent taskid.ID, existing []taskid.ID) taskid.ID {
	last := 0
	for _, id := range existing {
		if id.Last() > last {
			last = id.Last()
		}
	}
	return parent.Child(last + 1)
}

// AllocateAfter returns the id for a new task placed right after sibling,
// together with the shift plan that makes room for it. ids is every id in the
// task set; siblings and their descendants are derived from it by prefix.
//
// The new id takes sibling's trailing segment + 1. Every sibling at or past
// that position moves up by one and drags its whole subtree along. The plan
// is validated before it is returned; an unreachable collision yields
// ErrIDCollision.
func AllocateAfter(sibling taskid.ID, ids []taskid.ID) (taskid.ID, domain.Plan, error) {
	s := newIDSet(ids)
	if !s.has(sibling) {
		return nil, domain.Plan{}, domain.NotFound(sibling.String())
	}

	parent, _ := sibling.Parent()
	newID := sibling.WithLast(sibling.Last() + 1)

	var shifted []taskid.ID
	for _, id := range s.childrenOf(parent) {
		if id.Last() >= newID.Last() {
			shifted = append(shifted, id)
		}
	}
	// Highest position first, so the plan also reads as a safe sequential order.
	sort.Slice(shifted, func(i, j int) bool { return shifted[i].Last() > shifted[j].Last() })

	var rewrites []domain.Rewrite
	for _, id := range shifted {
		rewrites = append(rewrites, s.cascade(id, id.WithLast(id.Last()+1))...)
	}

	plan := domain.Plan{Rewrites: rewrites}
	if err := s.validate(plan, nil, []taskid.ID{newID}); err != nil {
		return nil, domain.Plan{}, err
	}
	return newID, plan, nil
}
