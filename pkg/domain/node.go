package domain

// Node is a Task placed in the derived hierarchy.
// Children are ordered by id, and that order is the authoritative sibling order.
// Nodes are rebuilt from the flat task set on demand and never persisted.
type Node struct {
	Task     Task    `json:"task" yaml:"task"`
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`
}

// Forest is the ordered list of root nodes.
type Forest []*Node

// Walk visits every node depth-first in pre-order, passing its depth (0 for roots).
// Returning false from fn skips the node's children.
func (f Forest) Walk(fn func(n *Node, depth int) bool) {
	var visit func(n *Node, depth int)
	visit = func(n *Node, depth int) {
		if !fn(n, depth) {
			return
		}
		for _, c := range n.Children {
			visit(c, depth+1)
		}
	}
	for _, root := range f {
		visit(root, 0)
	}
}

// Len returns the number of nodes in the forest.
func (f Forest) Len() int {
	n := 0
	f.Walk(func(*Node, int) bool {
		n++
		return true
	})
	return n
}
