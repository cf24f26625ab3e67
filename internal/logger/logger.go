// Package logger provides levelled logging for stepref.
// Warnings and errors are always written; debug and info messages appear
// only in verbose mode (the --verbose flag) to trace reference resolution.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

// Level is the minimum severity that gets written.
type Level int

// Levels in increasing severity.
const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// String returns the tag printed before messages of the level.
func (l Level) String() string {
	switch l {
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

var (
	mu        sync.Mutex
	threshold           = LevelWarn
	output    io.Writer = os.Stderr
)

// SetVerbose switches between verbose (debug and up) and quiet (warnings and up).
func SetVerbose(v bool) {
	if v {
		SetLevel(LevelDebug)
		return
	}
	SetLevel(LevelWarn)
}

// SetLevel sets the minimum level written.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	threshold = l
}

// IsVerbose returns true if debug messages are written.
func IsVerbose() bool {
	mu.Lock()
	defer mu.Unlock()
	return threshold <= LevelDebug
}

// SetOutput sets the output writer. Defaults to os.Stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func logf(l Level, format string, args ...any) {
	mu.Lock()
	defer mu.Unlock()
	if l < threshold {
		return
	}
	fmt.Fprintf(output, "["+l.String()+"] "+format+"\n", args...)
}

// Debug traces resolution steps.
func Debug(format string, args ...any) { logf(LevelDebug, format, args...) }

// Info reports progress.
func Info(format string, args ...any) { logf(LevelInfo, format, args...) }

// Warn reports a skipped relationship or ignored failure.
func Warn(format string, args ...any) { logf(LevelWarn, format, args...) }

// Error reports a failure the caller could not recover from.
func Error(format string, args ...any) { logf(LevelError, format, args...) }

// Section prints a section header in verbose mode.
func Section(name string) {
	mu.Lock()
	defer mu.Unlock()
	if threshold <= LevelDebug {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}
