package stacktrace

import (
	"golang.org/x/xerrors"

	"github.com/yext/glog"
)

// FromError returns the raw trace embedded in err, innermost call site first
// (matching Capture's order). Errors built with xerrors (or the yerrors fork)
// record one frame per wrap; walking the chain from the outermost wrapper
// inward yields wrap sites caller-to-origin, so the collected frames are
// reversed before returning. Errors carrying no trace yield nil.
func FromError(err error) []RawFrame {
	var tc traceCollector
	for err != nil {
		tc.detail = false
		switch xerr := err.(type) {
		case xerrors.Formatter:
			err = xerr.FormatError(&tc)
		case xerrors.Wrapper:
			err = xerr.Unwrap()
		default:
			err = nil
		}
	}
	for i, j := 0, len(tc.frames)-1; i < j; i, j = i+1, j-1 {
		tc.frames[i], tc.frames[j] = tc.frames[j], tc.frames[i]
	}
	return tc.frames
}

// traceCollector implements xerrors.Printer to capture only the wrapped stack
// trace.
//
// Exploits the fact that xerrors.Frame is always written as detail (and
// nothing else is, for any known implementation).
//
// It expects a sequence of alternating calls like this:
//
//   Printf("%s\n    ", []interface {}{"package.FuncName"})
//   Printf("%s:%d\n", []interface {}{"/absolute/path/to/file.go", 47})
type traceCollector struct {
	detail bool
	frames []RawFrame
	fnName string
}

func (tc *traceCollector) Print(args ...interface{}) {}

func (tc *traceCollector) Printf(format string, args ...interface{}) {
	if !tc.detail {
		return
	}
	switch len(args) {
	case 1:
		if fn, ok := args[0].(string); ok {
			tc.fnName = fn
		}
	case 2:
		var (
			file, ok1 = args[0].(string)
			line, ok2 = args[1].(int)
		)
		if !ok1 || !ok2 {
			glog.Warningf("unexpected: Printf(%q, %#v)", format, args)
			return
		}
		typeName, method := splitFunction(tc.fnName)
		tc.frames = append(tc.frames, RawFrame{
			File:     GuessAbsPath(file),
			Line:     line,
			TypeName: typeName,
			Method:   method,
			Function: tc.fnName,
			Native:   isNative(tc.fnName, file),
		})
	}
}

func (tc *traceCollector) Detail() bool {
	tc.detail = true
	return true
}
