package trace

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Formatter renders a VMError for a terminal, with optional ANSI color.
type Formatter struct {
	UseColor bool
}

// NewFormatter builds a Formatter, auto-detecting color support from
// whether stderr is a terminal.
func NewFormatter() *Formatter {
	return &Formatter{UseColor: isatty.IsTerminal(os.Stderr.Fd())}
}

var (
	colorKind  = color.New(color.FgRed, color.Bold)
	colorMsg   = color.New(color.FgHiWhite)
	colorFrame = color.New(color.FgHiBlack)
)

// Format renders err as a multi-line string: "<kind>: <message>" followed
// by one indented line per stack frame, top-most first.
func (f *Formatter) Format(err *VMError) string {
	var b strings.Builder
	if f.UseColor {
		b.WriteString(colorKind.Sprint(err.Kind.String()))
		b.WriteString(": ")
		b.WriteString(colorMsg.Sprint(err.Message))
	} else {
		fmt.Fprintf(&b, "%s: %s", err.Kind, err.Message)
	}
	b.WriteString("\n")
	for _, frame := range err.Stack {
		if f.UseColor {
			b.WriteString(colorFrame.Sprintf("  at %s\n", frame.String()))
		} else {
			fmt.Fprintf(&b, "  at %s\n", frame.String())
		}
	}
	return b.String()
}
