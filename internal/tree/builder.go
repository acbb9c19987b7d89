package tree

import (
	"sort"

	"github.com/aretw0/arbor/pkg/domain"
	"github.com/aretw0/arbor/pkg/taskid"
)

// Build assembles a flat task set into a forest in O(n log n) (O(n) indexing
// plus sorting each sibling list).
//
// The build is total: a task whose parent id resolves to nothing becomes a
// root and is reported as WarnOrphanReference; a repeated id keeps the first
// row and reports WarnDuplicateID; a parent chain that loops is broken by
// promoting one of its members to a root and reporting WarnCycle.
func Build(tasks []domain.Task) (domain.Forest, []domain.Warning) {
	var warnings []domain.Warning

	nodes := make(map[string]*domain.Node, len(tasks))
	order := make([]*domain.Node, 0, len(tasks))
	for _, t := range tasks {
		if _, dup := nodes[t.ID]; dup {
			warnings = append(warnings, domain.Warning{Kind: domain.WarnDuplicateID, TaskID: t.ID})
			continue
		}
		n := &domain.Node{Task: t}
		nodes[t.ID] = n
		order = append(order, n)
	}

	var forest domain.Forest
	parentOf := make(map[*domain.Node]*domain.Node, len(order))
	for _, n := range order {
		pid := n.Task.ParentID
		if pid == "" {
			forest = append(forest, n)
			continue
		}
		parent, ok := nodes[pid]
		if !ok || parent == n {
			warnings = append(warnings, domain.Warning{Kind: domain.WarnOrphanReference, TaskID: n.Task.ID, Ref: pid})
			forest = append(forest, n)
			continue
		}
		parent.Children = append(parent.Children, n)
		parentOf[n] = parent
	}

	// Nodes on a parent loop are unreachable from any root.
	reached := make(map[*domain.Node]bool, len(order))
	mark := func(roots ...*domain.Node) {
		stack := append([]*domain.Node(nil), roots...)
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if reached[n] {
				continue
			}
			reached[n] = true
			stack = append(stack, n.Children...)
		}
	}
	mark(forest...)

	if len(reached) < len(order) {
		stranded := make([]*domain.Node, 0, len(order)-len(reached))
		for _, n := range order {
			if !reached[n] {
				stranded = append(stranded, n)
			}
		}
		sortNodes(stranded)
		for _, n := range stranded {
			if reached[n] {
				continue
			}
			head := loopHead(n, parentOf)
			detach(parentOf[head], head)
			warnings = append(warnings, domain.Warning{Kind: domain.WarnCycle, TaskID: head.Task.ID, Ref: head.Task.ParentID})
			forest = append(forest, head)
			mark(head)
		}
	}

	sortNodes(forest)
	for _, n := range order {
		sortNodes(n.Children)
	}
	return forest, warnings
}

// loopHead climbs from a stranded node to the loop it hangs from and returns
// the loop member with the smallest id.
func loopHead(n *domain.Node, parentOf map[*domain.Node]*domain.Node) *domain.Node {
	seen := make(map[*domain.Node]bool)
	for !seen[n] {
		seen[n] = true
		n = parentOf[n]
	}
	head := n
	for m := parentOf[n]; m != n; m = parentOf[m] {
		if taskid.CompareStrings(m.Task.ID, head.Task.ID) < 0 {
			head = m
		}
	}
	return head
}

func detach(parent, child *domain.Node) {
	if parent == nil {
		return
	}
	for i, c := range parent.Children {
		if c == child {
			parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
			return
		}
	}
}

func sortNodes(nodes []*domain.Node) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return taskid.CompareStrings(nodes[i].Task.ID, nodes[j].Task.ID) < 0
	})
}
