package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the arbor banner, shown by `arbor serve`.
func PrintBanner(w io.Writer, p termenv.Profile) {
	lines := []struct{ text, hex string }{
		{"   __ _ _ __| |__   ___  _ __ ", "#34d399"},
		{"  / _` | '__| '_ \\ / _ \\| '__|", "#10b981"},
		{" | (_| | |  | |_) | (_) | |   ", "#059669"},
		{"  \\__,_|_|  |_.__/ \\___/|_|   ", "#047857"},
	}
	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.hex)))
	}
	fmt.Fprintln(w)
}
