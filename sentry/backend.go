// The sentry package forwards faults intercepted by a report.Reporter to
// Sentry, so terminal crashes are tracked off-box as well as rendered
// locally. Frame provenance carries over: host-application frames become
// in-app frames in the Sentry event, which drives Sentry's own grouping and
// display.
package sentry

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/yext/glog"

	"github.com/yext/stackview/frame"
	"github.com/yext/stackview/report"
	"github.com/yext/stackview/stacktrace"
)

var (
	sentryDebug = flag.Bool("sentryDebug", false,
		"enable debug mode in Sentry clients")
	sentryFingerprinting = flag.Bool("sentryFingerprinting", false,
		"enable server-side issue fingerprinting. If set, duplicate issues will only be tracked if they have equivalent filenames and line numbers")

	hostname string
)

func init() {
	hostname, _ = os.Hostname()
	if short := strings.Index(hostname, "."); short != -1 {
		hostname = hostname[:short]
	}
}

// NotifyFaults builds a report.Handler that sends each intercepted fault to
// the given DSN. DSN should not be set on opts. Register the result with
// Reporter.OnFault; note that doing so suppresses the reporter's default
// render-and-exit path, so hosts that still want it re-register it
// themselves:
//
//	h, err := sentry.NotifyFaults(dsn, sentrygo.ClientOptions{Environment: "prod"})
//	...
//	r.OnFault(h)
//	r.OnFault(func(fault error, frames []frame.Frame) {
//		r.Report(fault, frames)
//		os.Exit(1)
//	})
func NotifyFaults(dsn string, opts sentry.ClientOptions) (report.Handler, error) {
	opts.Dsn = dsn
	if !opts.Debug {
		opts.Debug = *sentryDebug
	}
	opts.ServerName = hostname

	client, err := sentry.NewClient(opts)
	if err != nil {
		return nil, err
	}
	hub := sentry.NewHub(client, sentry.NewScope())

	return func(fault error, frames []frame.Frame) {
		hub.CaptureEvent(FromFault(fault, frames))
		// The fault path usually terminates the process right after the
		// handlers run, so flush synchronously.
		if !client.Flush(2 * time.Second) {
			glog.Warningf("sentry: flush timed out, fault may not have been delivered")
		}
	}, nil
}

// FromFault builds the Sentry event for an intercepted fault and its
// normalized frames.
func FromFault(fault error, frames []frame.Frame) *sentry.Event {
	e := sentry.NewEvent()
	e.Level = sentry.LevelFatal
	e.ServerName = hostname
	e.Logger = stacktrace.SrcRelativeFile(os.Args[0])
	e.Message = headline(fault)

	trace := Stacktrace(frames)
	// Type is the bolded, primary issue title containing the primary
	// component of the fault string. It is utilized in Sentry's event-merge
	// algorithm, so any potentially unique components are moved over to the
	// value field.
	msgType, msgValue := splitMessage(fault.Error())
	e.Exception = []sentry.Exception{{
		Type:       msgType,
		Value:      addFaultSource(msgValue, trace),
		Stacktrace: trace,
	}}

	if *sentryFingerprinting {
		e.Fingerprint = Fingerprint(frames)
	}
	return e
}

// Stacktrace converts a normalized frame sequence to Sentry's
// representation. Sentry expects the outermost frame first, which is exactly
// the order frame.Normalize establishes.
func Stacktrace(frames []frame.Frame) *sentry.Stacktrace {
	trace := &sentry.Stacktrace{Frames: make([]sentry.Frame, 0, len(frames))}
	for _, f := range frames {
		trace.Frames = append(trace.Frames, sentry.Frame{
			AbsPath:  f.SourceFile,
			Filename: stacktrace.SrcRelativeFile(f.SourceFile),
			Function: f.FunctionName,
			Lineno:   f.Line,
			Colno:    f.Column,
			InApp:    f.HostApplication,
		})
	}
	return trace
}

// Fingerprint builds a rollup fingerprint of the filename, function, and
// line number of the host-application frames.
func Fingerprint(frames []frame.Frame) []string {
	var r []string
	for _, f := range frames {
		if f.HostApplication {
			r = append(r, fmt.Sprintf("%s in %s at line %d", stacktrace.ShortFile(f.SourceFile), f.FunctionName, f.Line))
		}
	}
	return r
}
