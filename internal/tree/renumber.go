package tree

import (
	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/taskid"
)

// Every planner below runs the same three phases:
//
//  1. plan: compute the rewrites restoring gapless numbering for the affected
//     sibling group and cascade them into the moved subtrees;
//  2. validate: reject the plan with ErrIDCollision if any two tasks would end
//     up with the same id;
//  3. return the plan. Applying it, atomically, is the caller's job.

// PlanInsertChild returns the id of a new last child of parentID ("" for the root level).
func PlanInsertChild(tasks []domain.Task, parentID string) (string, error) {
	s := idSetFromTasks(tasks)

	var parent taskid.ID
	if parentID != "" {
		var err error
		if parent, err = taskid.Parse(parentID); err != nil {
			return "", err
		}
		if !s.has(parent) {
			return "", domain.NotFound(parentID)
		}
	}

	newID := AllocateChild(parent, s.childrenOf(parent))
	if err := s.validate(domain.Plan{}, nil, []taskid.ID{newID}); err != nil {
		return "", err
	}
	return newID.String(), nil
}

// PlanInsertAfter returns the id of a new task placed right after siblingID
// and the plan shifting the later siblings out of the way.
func PlanInsertAfter(tasks []domain.Task, siblingID string) (string, domain.Plan, error) {
	sibling, err := taskid.Parse(siblingID)
	if err != nil {
		return "", domain.Plan{}, err
	}
	s := idSetFromTasks(tasks)
	newID, plan, err := AllocateAfter(sibling, s.ids)
	if err != nil {
		return "", domain.Plan{}, err
	}
	return newID.String(), plan, nil
}

// PlanDelete removes id and promotes its direct children to its former
// parent, appended after the remaining siblings. The whole sibling group is
// then renumbered 1..N and every change cascades into the subtrees.
//
// Given {1, 1.1, 1.2, 1.1.1}, deleting 1.1 yields 1.2→1.1 and 1.1.1→1.2.
func PlanDelete(tasks []domain.Task, id string) (domain.Plan, error) {
	target, err := taskid.Parse(id)
	if err != nil {
		return domain.Plan{}, err
	}
	s := idSetFromTasks(tasks)
	if !s.has(target) {
		return domain.Plan{}, domain.NotFound(id)
	}

	parent, _ := target.Parent()

	var members []taskid.ID
	for _, sib := range s.childrenOf(parent) {
		if taskid.Compare(sib, target) != 0 {
			members = append(members, sib)
		}
	}
	members = append(members, s.childrenOf(target)...)

	plan := domain.Plan{Rewrites: s.renumberGroup(parent, members)}
	if err := s.validate(plan, []taskid.ID{target}, nil); err != nil {
		return domain.Plan{}, err
	}
	return plan, nil
}

// PlanMove detaches id together with its subtree, closes the gap it leaves in
// its sibling group and appends it as the last child of newParentID ("" for
// the root level). Moving a task under itself or one of its descendants fails
// with ErrInvalidMove.
func PlanMove(tasks []domain.Task, id, newParentID string) (domain.Plan, error) {
	target, err := taskid.Parse(id)
	if err != nil {
		return domain.Plan{}, err
	}
	s := idSetFromTasks(tasks)
	if !s.has(target) {
		return domain.Plan{}, domain.NotFound(id)
	}

	var newParent taskid.ID
	if newParentID != "" {
		if newParent, err = taskid.Parse(newParentID); err != nil {
			return domain.Plan{}, err
		}
		if !s.has(newParent) {
			return domain.Plan{}, domain.NotFound(newParentID)
		}
		if newParent.HasPrefix(target) {
			return domain.Plan{}, domain.NewTreeError(domain.ErrInvalidMove, id, "cannot move under %q", newParentID)
		}
	}

	oldParent, _ := target.Parent()

	var remaining []taskid.ID
	for _, sib := range s.childrenOf(oldParent) {
		if taskid.Compare(sib, target) != 0 {
			remaining = append(remaining, sib)
		}
	}

	var rewrites []domain.Rewrite
	if taskid.Compare(oldParent, newParent) == 0 {
		// Same group: the task simply becomes the last sibling.
		rewrites = s.renumberGroup(oldParent, append(remaining, target))
	} else {
		rewrites = s.renumberGroup(oldParent, remaining)
		// The new parent may itself have been renumbered by closing the gap.
		var resolved taskid.ID
		if newParent != nil {
			resolved = taskid.MustParse(domain.Plan{Rewrites: rewrites}.Resolve(newParent.String()))
		}
		dest := AllocateChild(resolved, s.childrenOf(newParent))
		rewrites = append(rewrites, s.cascade(target, dest)...)
	}

	plan := domain.Plan{Rewrites: rewrites}
	if err := s.validate(plan, nil, nil); err != nil {
		return domain.Plan{}, err
	}
	return plan, nil
}

// PlanRenumber rebuilds the forest from parent pointers and assigns every
// task the id its position dictates: roots 1..N, children parent.1..parent.N.
// It repairs gaps, prefix mismatches, malformed ids and orphans (which become
// roots) in a single plan. A consistent task set yields an empty plan.
func PlanRenumber(tasks []domain.Task) (domain.Plan, []domain.Warning, error) {
	forest, warnings := Build(tasks)

	var rewrites []domain.Rewrite
	var assign func(n *domain.Node, id taskid.ID)
	assign = func(n *domain.Node, id taskid.ID) {
		if n.Task.ID != id.String() {
			rewrites = append(rewrites, domain.Rewrite{OldID: n.Task.ID, NewID: id.String()})
		}
		for i, c := range n.Children {
			assign(c, id.Child(i+1))
		}
	}
	for i, root := range forest {
		assign(root, taskid.Root(i+1))
	}

	plan := domain.Plan{Rewrites: rewrites}
	if err := validateRenumber(tasks, plan); err != nil {
		return domain.Plan{}, warnings, err
	}
	return plan, warnings, nil
}

// validateRenumber is validate for plans whose sources may be malformed ids.
func validateRenumber(tasks []domain.Task, plan domain.Plan) error {
	rewritten := plan.Map()
	final := make(map[string]string, len(tasks))
	seen := make(map[string]bool, len(tasks))
	for _, t := range tasks {
		if seen[t.ID] {
			return domain.NewTreeError(domain.ErrIDCollision, t.ID, "duplicate row")
		}
		seen[t.ID] = true
		next := t.ID
		if nid, ok := rewritten[t.ID]; ok {
			next = nid
		}
		if prev, taken := final[next]; taken {
			return domain.NewTreeError(domain.ErrIDCollision, next, "claimed by both %q and %q", prev, t.ID)
		}
		final[next] = t.ID
	}
	return nil
}
