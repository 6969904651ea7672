// Package gelf ships faults intercepted by a report.Reporter to a GELF
// (Graylog) server.
package gelf

import (
	"fmt"
	"strings"

	"github.com/aphistic/golf"
	"golang.org/x/time/rate"

	"github.com/yext/stackview/frame"
	"github.com/yext/stackview/report"
	"github.com/yext/stackview/stacktrace"
)

// NotifyFaults builds a report.Handler that sends each intercepted fault to
// the gelf server at serverURI. Faults arriving at a higher rate than
// maxEventsPerSec are dropped. The uri must have a udp or tcp scheme.
func NotifyFaults(attrs map[string]interface{}, serverURI string, maxEventsPerSec int) (report.Handler, error) {
	c, _ := golf.NewClient()

	if err := c.Dial(serverURI); err != nil {
		return nil, err
	}
	logger, err := c.NewLogger()
	if err != nil {
		return nil, err
	}

	for k, v := range attrs {
		logger.SetAttr(k, v)
	}

	limiter := rate.NewLimiter(rate.Limit(maxEventsPerSec), maxEventsPerSec)
	return func(fault error, frames []frame.Frame) {
		if !limiter.Allow() {
			return
		}
		logFault(logger, fault, frames)
	}, nil
}

func logFault(logger *golf.Logger, fault error, frames []frame.Frame) {
	var lines []string
	for _, f := range frames {
		lines = append(lines, fmt.Sprintf("function %s at %s line %d", f.FunctionName, stacktrace.ShortFile(f.SourceFile), f.Line))
	}

	data := map[string]interface{}{
		"faultStackTrace": strings.Join(lines, ", "),
		"levelName":       "FATAL",
	}
	logger.Critm(data, fault.Error())
}
