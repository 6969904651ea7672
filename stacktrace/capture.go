package stacktrace

import (
	"runtime"
	"strings"
)

// The maximum number of frames recorded per capture.
const maxStackDepth = 32

// RawFrame is one entry of a native call-stack snapshot: the source location
// and naming metadata reported by the Go runtime, or recovered from the trace
// embedded in an error. RawFrames are innermost-first and are consumed by one
// normalization pass; they are not retained beyond it.
type RawFrame struct {
	File     string
	Line     int
	Column   int
	TypeName string
	Method   string
	Function string

	// Native marks frames owned by the runtime itself. They carry no user
	// source location and are dropped during normalization.
	Native bool
}

// Capture snapshots the calling goroutine's stack, innermost frame first.
//
// skip is the number of caller frames to omit; 0 means the caller of Capture
// is the innermost frame.
func Capture(skip int) []RawFrame {
	// Add one for our own frame and one for runtime.Callers.
	pcs := make([]uintptr, maxStackDepth)
	n := runtime.Callers(skip+2, pcs)
	if n == 0 {
		return nil
	}

	raw := make([]RawFrame, 0, n)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		f, more := frames.Next()
		typeName, method := splitFunction(f.Function)
		raw = append(raw, RawFrame{
			File:     f.File,
			Line:     f.Line,
			TypeName: typeName,
			Method:   method,
			Function: f.Function,
			Native:   isNative(f.Function, f.File),
		})
		if !more {
			break
		}
	}
	return raw
}

// splitFunction extracts the receiver type and method name from a symbol like
// "github.com/yext/stackview/report.(*Reporter).Recover". Plain functions
// have neither.
func splitFunction(name string) (typeName, method string) {
	if i := strings.LastIndex(name, "/"); i != -1 {
		name = name[i+1:]
	}
	parts := strings.Split(name, ".")
	if len(parts) < 3 {
		return "", ""
	}
	recv := parts[len(parts)-2]
	recv = strings.TrimSuffix(strings.TrimPrefix(recv, "(*"), ")")
	return recv, parts[len(parts)-1]
}

func isNative(function, file string) bool {
	pkg := function
	if i := strings.LastIndex(pkg, "/"); i != -1 {
		pkg = pkg[i+1:]
	}
	if i := strings.Index(pkg, "."); i != -1 {
		pkg = pkg[:i]
	}
	return pkg == "runtime" || strings.HasSuffix(file, ".s")
}
