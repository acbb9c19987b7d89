package tui

import (
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown task bodies using glamour.
// Terminals get an automatic light/dark style; anything else gets the plain
// "notty" style so pipes stay free of escape codes.
func NewRenderer(tty bool, width int) (func(string) (string, error), error) {
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle("notty")}
	if tty {
		opts = []glamour.TermRendererOption{glamour.WithAutoStyle()}
	}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}
	return func(markdown string) (string, error) {
		return r.Render(markdown)
	}, nil
}
