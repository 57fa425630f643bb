package diag

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Renderer prints Diagnostics to a writer, coloring by severity when the
// writer is a terminal, pushed down into the diagnostic carrier itself
// so every caller (CLI, pipeline, tests) renders consistently.
type Renderer struct {
	w      io.Writer
	color  bool
	kindFn func(Kind) func(a ...interface{}) string
}

// NewRenderer builds a Renderer for w, auto-detecting color support via
// isatty when w is an *os.File.
func NewRenderer(w io.Writer) *Renderer {
	useColor := false
	if f, ok := w.(*os.File); ok {
		useColor = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}

	red := color.New(color.FgRed, color.Bold).SprintFunc()
	yellow := color.New(color.FgYellow, color.Bold).SprintFunc()
	magenta := color.New(color.FgMagenta, color.Bold).SprintFunc()

	return &Renderer{
		w:     w,
		color: useColor,
		kindFn: func(k Kind) func(a ...interface{}) string {
			switch k {
			case KindType, KindResolution:
				return red
			case KindPhase:
				return yellow
			default:
				return magenta
			}
		},
	}
}

// Render writes one formatted diagnostic line (plus data fields) to the
// renderer's writer.
func (r *Renderer) Render(d *Diagnostic) {
	label := fmt.Sprintf("[%s]", d.Kind())
	if r.color {
		label = r.kindFn(d.Kind())(label)
	}
	fmt.Fprintf(r.w, "%s %s\n", label, d.Error())
}
