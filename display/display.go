// Package display builds the presentation tree for a classified frame
// sequence and forwards it to a rendering sink.
package display

import (
	"fmt"
	"io"
	"os"

	"github.com/yext/stackview/frame"
	"github.com/yext/stackview/stacktrace"
)

// Entry is one rendered stack frame: the shortened file path and line for
// scanning, the function name (blank if the frame has none), and a full
// file:line:column subtext for precise lookup.
type Entry struct {
	File     string
	Line     int
	Function string
	Source   string
}

// Tree is the assembled display output. Header holds the fault's text when a
// fault is being reported, and is empty otherwise. Entries are ordered
// innermost frame first.
type Tree struct {
	Header  string
	Entries []Entry
}

// Sink consumes display trees. Sink failures are the sink's own concern;
// nothing here inspects them.
type Sink interface {
	Display(*Tree)
}

// Console writes trees as indented text to W, or to stderr when W is nil.
type Console struct {
	W io.Writer
}

func (c Console) Display(t *Tree) {
	w := c.W
	if w == nil {
		w = os.Stderr
	}
	if t.Header != "" {
		fmt.Fprintf(w, "%s\n\n", t.Header)
	}
	for _, e := range t.Entries {
		fmt.Fprintf(w, "  %s:%d %s\n      %s\n", e.File, e.Line, e.Function, e.Source)
	}
}

// Build assembles the tree for a frame sequence and an optional fault. The
// input is outermost-first (Normalize's contract); entries are emitted last
// to first so the innermost frame leads the rendered list.
func Build(frames []frame.Frame, fault error) *Tree {
	frame.VerifyShape(frames)

	t := &Tree{}
	if fault != nil {
		t.Header = fault.Error()
	}
	for i := len(frames) - 1; i >= 0; i-- {
		f := frames[i]
		t.Entries = append(t.Entries, Entry{
			File:     stacktrace.ShortFile(f.SourceFile),
			Line:     f.Line,
			Function: f.FunctionName,
			Source:   fmt.Sprintf("%s:%d:%d", f.SourceFile, f.Line, f.Column),
		})
	}
	return t
}

// Render builds the tree and hands it to sink.
func Render(frames []frame.Frame, fault error, sink Sink) {
	sink.Display(Build(frames, fault))
}
