package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"

	"github.com/aretw0/arbor/pkg/domain"
)

var statusMarks = map[domain.Status]string{
	domain.StatusPending:    "[ ]",
	domain.StatusInProgress: "[~]",
	domain.StatusBlocked:    "[!]",
	domain.StatusDone:       "[x]",
}

var statusColors = map[domain.Status]string{
	domain.StatusInProgress: "#60a5fa",
	domain.StatusBlocked:    "#f87171",
	domain.StatusDone:       "#34d399",
}

// TreePrinter draws a forest with box-drawing guides.
type TreePrinter struct {
	Profile termenv.Profile
	// Blocked holds ids with open dependencies; they get a trailing marker.
	Blocked map[string]bool
}

// Print writes the forest to w, one task per line.
func (p TreePrinter) Print(w io.Writer, forest domain.Forest) error {
	var visit func(n *domain.Node, prefix string, last, root bool) error
	visit = func(n *domain.Node, prefix string, last, root bool) error {
		guide, childPrefix := "", ""
		if !root {
			guide, childPrefix = "├── ", prefix+"│   "
			if last {
				guide, childPrefix = "└── ", prefix+"    "
			}
		}
		if _, err := fmt.Fprintf(w, "%s%s%s\n", prefix, guide, p.Line(n.Task)); err != nil {
			return err
		}
		for i, c := range n.Children {
			if err := visit(c, childPrefix, i == len(n.Children)-1, false); err != nil {
				return err
			}
		}
		return nil
	}
	for _, root := range forest {
		if err := visit(root, "", true, true); err != nil {
			return err
		}
	}
	return nil
}

// Line formats a single task: status mark, id and title.
func (p TreePrinter) Line(t domain.Task) string {
	mark, ok := statusMarks[t.Status]
	if !ok {
		mark = statusMarks[domain.StatusPending]
	}
	styledMark := p.Profile.String(mark)
	if hex, ok := statusColors[t.Status]; ok {
		styledMark = styledMark.Foreground(p.Profile.Color(hex))
	}
	id := p.Profile.String(t.ID).Bold()

	line := fmt.Sprintf("%s %s %s", styledMark, id, t.Title)
	if p.Blocked[t.ID] {
		line += " " + p.Profile.String("(waiting)").Faint().String()
	}
	return line
}
