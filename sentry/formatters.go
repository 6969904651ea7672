package sentry

import (
	"fmt"
	"strings"

	"github.com/getsentry/sentry-go"
	"golang.org/x/xerrors"
)

// headline returns a good headline for this fault.
// Ideally, it returns a succinct summary that best conveys the fault.
// Most likely, that's something close to the root cause, but that may
// be something boring like "context canceled".
func headline(err error) string {
	// Heuristic: return the error message from the second innermost error.
	// This provides context on the error, since returned errors are often constants.
	var prev error
	for {
		wrapper, ok := err.(xerrors.Wrapper)
		if !ok {
			break
		}
		prev = err
		err = wrapper.Unwrap()
	}
	if prev != nil {
		return prev.Error()
	}
	return err.Error()
}

// splitMessage cleans up a message displayed as the top-line Sentry error by
// splitting at the first newline, and checking for presence of a colon (:).
// It returns a string for anything present before a colon, as well as a
// string for anything after it.
func splitMessage(msg string) (string, string) {
	firstLine := strings.Split(strings.TrimSpace(msg), "\n")[0]
	parts := strings.SplitN(firstLine, ": ", 2)
	if len(parts) == 2 {
		return parts[0], parts[1]
	}
	return parts[0], ""
}

// addFaultSource adds the source of the fault, if present, to the string
// value provided. If the string value is non-empty, it places the source in
// parentheses as long as the source exists.
func addFaultSource(value string, trace *sentry.Stacktrace) string {
	source := innermostSource(trace)

	if value == "" {
		return source
	} else if source != "" {
		return value + " (" + source + ")"
	}
	return value
}

// innermostSource retrieves the function and line of the innermost frame in
// the format "file.Function:118". Sentry traces are outermost-first, so the
// innermost frame is the last.
func innermostSource(trace *sentry.Stacktrace) string {
	if trace == nil || len(trace.Frames) == 0 {
		return ""
	}
	f := trace.Frames[len(trace.Frames)-1]
	return fmt.Sprintf("%s:%d", f.Function, f.Lineno)
}
