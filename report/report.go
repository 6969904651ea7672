// Package report owns the capture-and-report lifecycle: it holds the most
// recent raw stack and fault, exposes capture-on-demand and capture-on-fault
// entry points, and drives the normalize, filter, render pipeline when a
// fault is intercepted.
package report

import (
	"errors"
	"os"

	"github.com/yext/yerrors"

	"github.com/yext/stackview/display"
	"github.com/yext/stackview/frame"
	"github.com/yext/stackview/stacktrace"
)

// ErrUncaptured is returned by CurrentStack before any capture has occurred.
// No implicit capture is attempted.
var ErrUncaptured = errors.New("stackview: no stack has been captured")

// Handler observes an intercepted fault together with its normalized frames.
type Handler func(fault error, frames []frame.Frame)

// Reporter holds the current capture state for one diagnostic scope.
// Independent Reporters do not share state.
//
// A Reporter is not safe for concurrent use: captures and fault handling are
// expected to run on a single goroutine, and each capture fully replaces the
// previous one.
type Reporter struct {
	hostRoot string
	sink     display.Sink
	exit     func(int)
	handlers []Handler

	raw      []stacktrace.RawFrame
	captured bool
	fault    error
}

// Option configures a Reporter.
type Option func(*Reporter)

// WithHostRoot overrides the host-application root directory used for frame
// classification. The default is the working directory at New.
func WithHostRoot(dir string) Option {
	return func(r *Reporter) { r.hostRoot = dir }
}

// WithSink overrides the rendering sink. The default writes to stderr.
func WithSink(s display.Sink) Option {
	return func(r *Reporter) { r.sink = s }
}

// WithExit overrides the process-exit call made after a fault renders.
func WithExit(fn func(int)) Option {
	return func(r *Reporter) { r.exit = fn }
}

// New builds a Reporter. The host root is resolved once here and treated as
// immutable for the Reporter's lifetime.
func New(opts ...Option) *Reporter {
	r := &Reporter{
		sink: display.Console{},
		exit: os.Exit,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.hostRoot == "" {
		if wd, err := os.Getwd(); err == nil {
			r.hostRoot = wd
		}
	}
	return r
}

// HostRoot returns the resolved host-application root.
func (r *Reporter) HostRoot() string {
	return r.hostRoot
}

// CaptureNow snapshots the calling goroutine's stack, replacing any prior
// capture. The caller of CaptureNow is the innermost recorded frame.
func (r *Reporter) CaptureNow() {
	r.setRaw(stacktrace.Capture(1))
}

// CurrentStack normalizes and returns the most recent capture. It fails with
// ErrUncaptured if neither CaptureNow nor ParseFault has run.
func (r *Reporter) CurrentStack() ([]frame.Frame, error) {
	if !r.captured {
		return nil, ErrUncaptured
	}
	return frame.Normalize(r.raw, r.hostRoot), nil
}

// ParseFault records fault and its embedded trace as the current capture and
// returns the normalized frames. It does not render or terminate; callers
// who want the full fault path use Recover or Guard.
//
// Faults built with xerrors or yerrors carry their origin trace. A fault
// carrying none falls back to a capture at the call site, since Go panics do
// not materialize a trace on the value itself.
func (r *Reporter) ParseFault(fault error) []frame.Frame {
	raw := stacktrace.FromError(fault)
	if len(raw) == 0 {
		raw = stacktrace.Capture(1)
	}
	r.fault = fault
	r.setRaw(raw)
	return frame.Normalize(r.raw, r.hostRoot)
}

// OnFault registers h to run when a fault is intercepted. Registrations
// stack: handlers run in registration order. While any handler is
// registered, the default render-and-exit path is suppressed, leaving
// termination policy to the host.
func (r *Reporter) OnFault(h Handler) {
	r.handlers = append(r.handlers, h)
}

// Recover is the fault handler; install it with defer at the top of the
// goroutine being guarded. A nil recovery is a no-op. Otherwise the fault
// and its trace are recorded, handlers run, and — when no handler is
// registered — the host-application frames are rendered and the process
// exits with a non-zero status. The terminal default is intentional: this is
// a last-resort diagnostic path, not a recovery mechanism.
func (r *Reporter) Recover() {
	rec := recover()
	if rec == nil {
		return
	}

	fault, ok := rec.(error)
	if !ok {
		fault = yerrors.Errorf("panic: %v", rec)
	}
	frames := r.ParseFault(fault)

	if len(r.handlers) > 0 {
		for _, h := range r.handlers {
			h(fault, frames)
		}
		return
	}

	r.Report(fault, frames)
	r.exit(1)
}

// Guard runs fn with Recover installed.
func (r *Reporter) Guard(fn func()) {
	defer r.Recover()
	fn()
}

// Report renders the host-application portion of frames, with the fault's
// text as header. It is the render stage of the fault path, exposed for
// handlers that diagnose without terminating.
func (r *Reporter) Report(fault error, frames []frame.Frame) {
	display.Render(frame.Filter(frames), fault, r.sink)
}

func (r *Reporter) setRaw(raw []stacktrace.RawFrame) {
	r.raw = raw
	r.captured = true
}
