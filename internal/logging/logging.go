// Package logging builds the service logger and hosts the log-filter
// predicate mechanism. Noise suppression is an explicit, configurable
// predicate on the logger, never a reassignment of any global output.
package logging

import (
	"strings"

	"github.com/sirupsen/logrus"
)

// DropPredicate decides whether a log entry should be discarded
type DropPredicate func(entry *logrus.Entry) bool

// filteringFormatter wraps a formatter and emits nothing for entries
// matching any drop predicate.
type filteringFormatter struct {
	inner      logrus.Formatter
	predicates []DropPredicate
}

func (f *filteringFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	for _, drop := range f.predicates {
		if drop(entry) {
			return nil, nil
		}
	}
	return f.inner.Format(entry)
}

// MessageContains returns a predicate dropping entries whose message
// contains the given substring.
func MessageContains(substr string) DropPredicate {
	return func(entry *logrus.Entry) bool {
		return strings.Contains(entry.Message, substr)
	}
}

// New builds the service logger with full timestamps, the given level and
// optional message-substring drop filters.
func New(level string, dropFilters []string) *logrus.Logger {
	logger := logrus.New()

	var formatter logrus.Formatter = &logrus.TextFormatter{
		FullTimestamp: true,
	}

	if len(dropFilters) > 0 {
		predicates := make([]DropPredicate, 0, len(dropFilters))
		for _, f := range dropFilters {
			predicates = append(predicates, MessageContains(f))
		}
		formatter = &filteringFormatter{inner: formatter, predicates: predicates}
	}
	logger.SetFormatter(formatter)

	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	return logger
}
