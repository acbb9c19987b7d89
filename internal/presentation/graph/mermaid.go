package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/arbor/pkg/domain"
)

// Overlay contains extra state to highlight on the graph.
type Overlay struct {
	// Focus is drawn with the "current" style, e.g. the task being inspected.
	Focus string
}

// GenerateMermaid produces a Mermaid flowchart for a forest.
// It applies semantic styling by status:
// - done: ([Stadium])
// - blocked: {{Hexagon}}
// - default: [Rectangle]
// Hierarchy edges are solid arrows; dependency edges are dotted and labelled.
func GenerateMermaid(forest domain.Forest, deps []domain.Dependency, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	var done, blocked, progress []string
	forest.Walk(func(n *domain.Node, _ int) bool {
		safeID := sanitizeMermaidID(n.Task.ID)

		opener, closer := "[", "]"
		switch n.Task.Status {
		case domain.StatusDone:
			opener, closer = "([", "])"
			done = append(done, safeID)
		case domain.StatusBlocked:
			opener, closer = "{{", "}}"
			blocked = append(blocked, safeID)
		case domain.StatusInProgress:
			progress = append(progress, safeID)
		}

		sb.WriteString(fmt.Sprintf("    %s%s\"%s\"%s\n", safeID, opener, mermaidLabel(n.Task), closer))
		for _, c := range n.Children {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", safeID, sanitizeMermaidID(c.Task.ID)))
		}
		return true
	})

	for _, d := range deps {
		sb.WriteString(fmt.Sprintf("    %s -. depends on .-> %s\n", sanitizeMermaidID(d.TaskID), sanitizeMermaidID(d.DependsOnID)))
	}

	if len(done)+len(blocked)+len(progress) > 0 || (overlay != nil && overlay.Focus != "") {
		sb.WriteString("\n    %% Status Styles\n")
		// Force black text (color:#000) for high-contrast regardless of theme
		sb.WriteString("    classDef done fill:#e8f5e9,stroke:#2e7d32,color:#000;\n")
		sb.WriteString("    classDef blocked fill:#ffebee,stroke:#c62828,color:#000;\n")
		sb.WriteString("    classDef progress fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		writeClass(&sb, done, "done")
		writeClass(&sb, blocked, "blocked")
		writeClass(&sb, progress, "progress")
		if overlay != nil && overlay.Focus != "" {
			sb.WriteString(fmt.Sprintf("    class %s current;\n", sanitizeMermaidID(overlay.Focus)))
		}
	}

	return sb.String()
}

func writeClass(sb *strings.Builder, ids []string, class string) {
	if len(ids) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("    class %s %s;\n", strings.Join(ids, ","), class))
}

func mermaidLabel(t domain.Task) string {
	label := t.ID
	if t.Title != "" {
		label += " " + t.Title
	}
	// Mermaid labels cannot hold raw double quotes.
	return strings.ReplaceAll(label, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	return "t" + strings.ReplaceAll(id, ".", "_")
}
