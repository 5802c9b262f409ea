// Package notify abstracts the one-shot notification surface the alert
// pipeline talks to (toasts in the embedded admin, or anything else that can
// display a line of text).
package notify

import (
	"github.com/sirupsen/logrus"
)

// TestResult reports the outcome of a sink verification. Verification never
// panics; failures are data, not control flow.
type TestResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Sink accepts composed alert strings for display
type Sink interface {
	// Notify delivers one alert line. Implementations must not block the
	// caller for unbounded time; delivery is fire-and-forget.
	Notify(id, text string)

	// Test verifies the sink is usable and reports the result without
	// throwing.
	Test() TestResult
}

// LogSink writes notifications through the structured logger. It is the
// default sink when no UI surface is attached.
type LogSink struct {
	logger *logrus.Logger
}

// NewLogSink creates a sink backed by the given logger
func NewLogSink(logger *logrus.Logger) *LogSink {
	return &LogSink{logger: logger}
}

func (s *LogSink) Notify(id, text string) {
	s.logger.WithField("alert_id", id).Info(text)
}

func (s *LogSink) Test() TestResult {
	if s.logger == nil {
		return TestResult{Success: false, Message: "no logger attached"}
	}
	return TestResult{Success: true, Message: "notification sink operational"}
}
