// Package frame turns raw stack captures into classified, display-ready
// frame sequences. Normalize establishes the order contract (outermost frame
// first) and tags each frame with its provenance; Filter narrows a sequence
// to host-application frames; VerifyShape guards boundaries that accept
// frame sequences from external callers.
package frame

import (
	"path"
	"strings"

	"github.com/yext/glog"

	"github.com/yext/stackview/stacktrace"
)

// LibraryDir is the directory component identifying this library's own
// source files. Any frame whose file path contains it is library-internal.
const LibraryDir = "stackview"

// Frame is the normalized, classified representation of one call-stack entry.
type Frame struct {
	SourceFile string
	Line       int
	Column     int

	// Naming metadata. Any of these may be empty and is displayed as blank.
	TypeName     string
	MethodName   string
	FunctionName string

	// LibraryInternal is true iff the file path, split on path separators,
	// contains LibraryDir.
	LibraryInternal bool

	// HostApplication is true iff the file's containing directory equals the
	// host-application root exactly. Files in subdirectories of the root do
	// not match; the shallow comparison is part of the contract.
	HostApplication bool

	// Raw is the originating descriptor, retained for diagnostics only.
	Raw *stacktrace.RawFrame

	classified bool
}

// Classified reports whether the frame was produced by Classify or Normalize
// and therefore carries provenance tags. Hand-built frames are not
// classified; VerifyShape flags sequences of them.
func (f Frame) Classified() bool {
	return f.classified
}

// Classify builds the Frame for one raw descriptor. It is total: every
// non-nil raw frame classifies, and there are no error conditions.
func Classify(raw stacktrace.RawFrame, libraryDir, hostRoot string) Frame {
	var libraryInternal bool
	for _, segment := range strings.Split(raw.File, "/") {
		if segment == libraryDir {
			libraryInternal = true
			break
		}
	}

	return Frame{
		SourceFile:      raw.File,
		Line:            raw.Line,
		Column:          raw.Column,
		TypeName:        raw.TypeName,
		MethodName:      raw.Method,
		FunctionName:    raw.Function,
		LibraryInternal: libraryInternal,
		HostApplication: path.Dir(raw.File) == hostRoot,
		Raw:             &raw,
		classified:      true,
	}
}

// Normalize converts a raw capture (innermost frame first) into a classified
// sequence ordered outermost frame first, so the rendered list reads
// top-down from caller context to the point of interest. Native runtime
// frames carry no user source location and are dropped. The resulting order
// is a durable contract: downstream components preserve it.
func Normalize(raw []stacktrace.RawFrame, hostRoot string) []Frame {
	frames := make([]Frame, 0, len(raw))
	for i := len(raw) - 1; i >= 0; i-- {
		if raw[i].Native {
			continue
		}
		frames = append(frames, Classify(raw[i], LibraryDir, hostRoot))
	}
	return frames
}

// Filter reduces a normalized sequence to the frames attributed to
// host-application code, suppressing library-internal noise before display.
// Relative order is unchanged. An empty result is valid: a fault can occur
// entirely inside library or runtime code. Filter is idempotent.
func Filter(frames []Frame) []Frame {
	VerifyShape(frames)

	kept := make([]Frame, 0, len(frames))
	for i := len(frames) - 1; i >= 0; i-- {
		if frames[i].HostApplication {
			kept = append(kept, frames[i])
		}
	}
	// Walking backwards reversed the sequence; restore the outermost-first
	// order established by Normalize.
	for i, j := 0, len(kept)-1; i < j; i, j = i+1, j-1 {
		kept[i], kept[j] = kept[j], kept[i]
	}
	return kept
}

// VerifyShape checks that a sequence handed in from an external caller was
// produced by Normalize. A sequence whose first element lacks the
// provenance tags is reported through glog and otherwise left alone: failing
// here would mask the fault being diagnosed, so the pipeline continues with
// whatever it was given. Empty sequences pass silently.
func VerifyShape(frames []Frame) {
	if len(frames) == 0 {
		return
	}
	if !frames[0].classified {
		glog.Warningf("stackview: frame sequence was not produced by Normalize; a raw or hand-built stack is being used where a classified one was expected")
	}
}
