// Package logger provides leveled logging for the svthhb application.
//
// The logger writes to stderr with a level prefix and printf-style
// formatting. Debug output is suppressed unless verbose mode is enabled,
// which keeps normal CLI output readable while still allowing detailed
// traces with --verbose.
package logger

import (
	"fmt"
	"os"
	"sync"
	"time"
)

// Level represents a log severity level.
type Level int

const (
	// LevelDebug is detailed diagnostic output, hidden by default.
	LevelDebug Level = iota

	// LevelInfo is normal operational output.
	LevelInfo

	// LevelWarn is for recoverable problems worth surfacing.
	LevelWarn

	// LevelError is for failures that abort an operation.
	LevelError
)

var (
	mu       sync.Mutex
	minLevel = LevelInfo
)

// SetVerbose enables or disables debug-level output.
//
// This is wired to the global --verbose flag. All other levels are
// always emitted.
func SetVerbose(verbose bool) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		minLevel = LevelDebug
	} else {
		minLevel = LevelInfo
	}
}

// levelTag returns the textual prefix for a level.
func levelTag(level Level) string {
	switch level {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "?"
	}
}

// logf emits a single formatted log line if the level is enabled.
//
// Output format: "2006-01-02 15:04:05 LEVEL message"
// All log output goes to stderr so command results on stdout stay
// machine-consumable.
func logf(level Level, format string, args ...interface{}) {
	mu.Lock()
	enabled := level >= minLevel
	mu.Unlock()

	if !enabled {
		return
	}

	msg := fmt.Sprintf(format, args...)
	fmt.Fprintf(os.Stderr, "%s %s %s\n",
		time.Now().Format("2006-01-02 15:04:05"), levelTag(level), msg)
}

// Debug logs detailed diagnostic information.
//
// Debug messages are only emitted when verbose mode is enabled via
// SetVerbose(true).
func Debug(format string, args ...interface{}) {
	logf(LevelDebug, format, args...)
}

// Info logs normal operational messages.
func Info(format string, args ...interface{}) {
	logf(LevelInfo, format, args...)
}

// Warn logs recoverable problems.
func Warn(format string, args ...interface{}) {
	logf(LevelWarn, format, args...)
}

// Error logs operation failures.
func Error(format string, args ...interface{}) {
	logf(LevelError, format, args...)
}
