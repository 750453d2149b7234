package sentry

import (
	"io"
	"strings"

	gosentry "github.com/getsentry/sentry-go"
)

// Level classifies a log sink for telemetry purposes.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

// Breadcrumb categories for the two phases of a session that produce
// log traffic: running inside the scratch space, and putting the
// process back the way it was. Teardown problems are the ones worth
// isolating in an error report.
const (
	categorySession  = "session"
	categoryTeardown = "teardown"
)

// Writer tees log output to inner and forwards it to Sentry. Error
// lines become events; warnings and info become breadcrumbs filed under
// the session phase they belong to, so an eventual error report carries
// the enter/run/teardown trail that led up to it.
type Writer struct {
	inner io.Writer
	level Level
}

// NewWriter creates a Writer that tees to inner and forwards to Sentry.
func NewWriter(inner io.Writer, level Level) *Writer {
	return &Writer{inner: inner, level: level}
}

func (w *Writer) Write(p []byte) (int, error) {
	// The log file is the source of truth; telemetry never blocks it.
	n, err := w.inner.Write(p)

	if !enabled {
		return n, err
	}

	msg := strings.TrimSpace(string(p))
	if msg == "" {
		return n, err
	}

	switch w.level {
	case LevelError:
		gosentry.CaptureMessage(msg)
	case LevelWarning:
		gosentry.AddBreadcrumb(&gosentry.Breadcrumb{
			Level:    gosentry.LevelWarning,
			Category: breadcrumbCategory(msg),
			Message:  msg,
		})
	case LevelInfo:
		gosentry.AddBreadcrumb(&gosentry.Breadcrumb{
			Level:    gosentry.LevelInfo,
			Category: breadcrumbCategory(msg),
			Message:  msg,
		})
	}

	return n, err
}

// breadcrumbCategory files a log line under the session phase it came
// from. Restore and removal failures surface during teardown; anything
// else counts as session activity.
func breadcrumbCategory(msg string) string {
	if strings.Contains(msg, "teardown") || strings.Contains(msg, "restore") {
		return categoryTeardown
	}
	return categorySession
}
