// Package log provides the process-wide loggers used across playpen.
// Logs go to a file under the temp directory rather than stderr so they
// never interleave with the command running inside a scratch space.
package log

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/kastheco/playpen/internal/sentry"
)

var (
	InfoLog    *log.Logger
	WarningLog *log.Logger
	ErrorLog   *log.Logger
)

var logFile *os.File

// LogFileName is the log destination under os.TempDir().
const LogFileName = "playpen.log"

// Initialize opens the log file and wires up the package loggers. When
// telemetry is enabled, warnings become Sentry breadcrumbs and errors
// become Sentry events. Call Close before the process exits.
//
// If the log file cannot be opened, logging falls back to stderr rather
// than failing startup.
func Initialize(telemetry ...bool) {
	var sink io.Writer
	f, err := os.OpenFile(filepath.Join(os.TempDir(), LogFileName),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open log file: %v\n", err)
		sink = os.Stderr
	} else {
		logFile = f
		sink = f
	}

	infoSink, warnSink, errorSink := sink, sink, sink
	if len(telemetry) > 0 && telemetry[0] {
		infoSink = sentry.NewWriter(sink, sentry.LevelInfo)
		warnSink = sentry.NewWriter(sink, sentry.LevelWarning)
		errorSink = sentry.NewWriter(sink, sentry.LevelError)
	}

	flags := log.Ldate | log.Ltime | log.Lshortfile
	InfoLog = log.New(infoSink, "INFO: ", flags)
	WarningLog = log.New(warnSink, "WARNING: ", flags)
	ErrorLog = log.New(errorSink, "ERROR: ", flags)
}

// Close flushes and closes the log file. Safe to call when Initialize
// fell back to stderr.
func Close() {
	if logFile != nil {
		_ = logFile.Close()
		logFile = nil
	}
}
