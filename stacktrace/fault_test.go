package stacktrace_test

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yext/yerrors"
	"golang.org/x/xerrors"

	"github.com/yext/stackview/stacktrace"
)

// tracedFault is a fault carrying a synthetic embedded trace, written in the
// detail format xerrors uses for its frames (outermost wrap site first).
type tracedFault struct {
	msg    string
	frames []syntheticFrame
}

type syntheticFrame struct {
	fn   string
	file string
	line int
}

func (f *tracedFault) Error() string { return f.msg }

func (f *tracedFault) FormatError(p xerrors.Printer) error {
	p.Print(f.msg)
	if p.Detail() {
		for _, fr := range f.frames {
			p.Printf("%s\n    ", fr.fn)
			p.Printf("%s:%d\n", fr.file, fr.line)
		}
	}
	return nil
}

func TestFromError(t *testing.T) {
	fault := &tracedFault{
		msg: "boom",
		frames: []syntheticFrame{
			{"main.main", "/app/main.go", 10},
			{"main.handle", "/app/handler.go", 42},
		},
	}

	raw := stacktrace.FromError(fault)
	assert.Len(t, raw, 2)

	// Innermost first, matching Capture's order.
	assert.Equal(t, "/app/handler.go", raw[0].File)
	assert.Equal(t, 42, raw[0].Line)
	assert.Equal(t, "main.handle", raw[0].Function)
	assert.Equal(t, "/app/main.go", raw[1].File)
}

func TestFromErrorTagsNativeFrames(t *testing.T) {
	fault := &tracedFault{
		msg: "boom",
		frames: []syntheticFrame{
			{"main.main", "/app/main.go", 10},
			{"runtime.gopanic", "/usr/local/go/src/runtime/panic.go", 884},
		},
	}

	raw := stacktrace.FromError(fault)
	assert.Len(t, raw, 2)
	assert.True(t, raw[0].Native)
	assert.False(t, raw[1].Native)
}

func TestFromErrorWithoutTrace(t *testing.T) {
	assert.Empty(t, stacktrace.FromError(errors.New("plain")))
	assert.Empty(t, stacktrace.FromError(fmt.Errorf("wrapped: %w", errors.New("plain"))))
}

func TestFromErrorYerrors(t *testing.T) {
	fault := yerrors.New("boom")
	raw := stacktrace.FromError(fault)
	if assert.NotEmpty(t, raw) {
		assert.True(t, strings.Contains(raw[0].File, "fault_test.go"),
			"expected origin frame to be this file, got %q", raw[0].File)
		assert.Contains(t, raw[0].Function, "TestFromErrorYerrors")
	}
}

func TestFromErrorWrappedYerrors(t *testing.T) {
	inner := yerrors.New("boom")
	outer := yerrors.Wrap(inner)
	raw := stacktrace.FromError(outer)
	// One frame per wrap site, innermost (origin) first.
	if assert.True(t, len(raw) >= 2, "expected a frame per wrap, got %d", len(raw)) {
		assert.True(t, raw[0].Line < raw[len(raw)-1].Line,
			"origin frame should precede the wrap site")
	}
}
