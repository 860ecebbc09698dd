package ui

import (
	"fmt"
	"io"
	"os"

	"github.com/fenilsonani/cache-cleaner/internal/progress"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

const defaultWidth = 80

// LinePrinter writes one line per progress event. It is used when the
// output is not an interactive terminal.
type LinePrinter struct {
	w     io.Writer
	width int
}

// NewLinePrinter creates a printer sized to w when w is a terminal
func NewLinePrinter(w io.Writer) *LinePrinter {
	return &LinePrinter{w: w, width: TerminalWidth(w)}
}

// Follow prints every event until the channel is closed
func (p *LinePrinter) Follow(events <-chan progress.Event) {
	for ev := range events {
		p.Print(ev)
	}
}

// Print writes a single event
func (p *LinePrinter) Print(ev progress.Event) {
	fmt.Fprintln(p.w, truncate(progress.FormatEvent(ev), p.width))
}

// IsTerminal reports whether f is attached to a terminal
func IsTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// TerminalWidth returns the column count of w, or 80 when w is not a terminal
func TerminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok {
		return defaultWidth
	}
	if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
		return width
	}
	return defaultWidth
}

// truncate shortens s to width runes
func truncate(s string, width int) string {
	r := []rune(s)
	if width <= 3 || len(r) <= width {
		return s
	}
	return string(r[:width-3]) + "..."
}
