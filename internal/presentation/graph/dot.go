package graph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

var dotFill = map[domain.Status]string{
	domain.StatusDone:       "#e8f5e9",
	domain.StatusBlocked:    "#ffebee",
	domain.StatusInProgress: "#e1f5fe",
}

// GenerateDOT produces a Graphviz digraph for a forest.
func GenerateDOT(forest domain.Forest, deps []domain.Dependency) string {
	var sb strings.Builder
	sb.WriteString("digraph arbor {\n")
	sb.WriteString("    rankdir=TB;\n")
	sb.WriteString("    node [shape=box, style=\"rounded,filled\", fillcolor=\"#ffffff\"];\n")

	forest.Walk(func(n *domain.Node, _ int) bool {
		label := n.Task.ID
		if n.Task.Title != "" {
			label += "\\n" + strings.ReplaceAll(n.Task.Title, "\"", "\\\"")
		}
		attrs := fmt.Sprintf("label=\"%s\"", label)
		if fill, ok := dotFill[n.Task.Status]; ok {
			attrs += fmt.Sprintf(", fillcolor=\"%s\"", fill)
		}
		sb.WriteString(fmt.Sprintf("    %s [%s];\n", strconv.Quote(n.Task.ID), attrs))
		for _, c := range n.Children {
			sb.WriteString(fmt.Sprintf("    %s -> %s;\n", strconv.Quote(n.Task.ID), strconv.Quote(c.Task.ID)))
		}
		return true
	})

	for _, d := range deps {
		sb.WriteString(fmt.Sprintf("    %s -> %s [style=dashed, label=\"depends on\"];\n", strconv.Quote(d.TaskID), strconv.Quote(d.DependsOnID)))
	}

	sb.WriteString("}\n")
	return sb.String()
}
