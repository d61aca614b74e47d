// Package clog is a small leveled logging facility shared by the
// three cmd/ drivers, modeled on jcorbin-gothird's internal/logio.
package clog

import (
	"fmt"
	"io"
	"sync"
)

// Logger writes leveled lines to an output stream and records whether
// any error has been reported through ErrorIf, so main can exit
// non-zero after logging a single-line message.
type Logger struct {
	mu       sync.Mutex
	out      io.Writer
	trace    bool
	exitCode int
}

// SetOutput sets the destination stream (typically os.Stderr).
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.out = w
}

// SetTrace enables or disables TRACE-level output.
func (l *Logger) SetTrace(on bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.trace = on
}

func (l *Logger) writeLine(format string, args ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.out == nil {
		return
	}
	fmt.Fprintf(l.out, format+"\n", args...)
}

// Printf writes an ordinary progress line.
func (l *Logger) Printf(format string, args ...interface{}) {
	l.writeLine(format, args...)
}

// Leveledf returns a logging function tagged with level that is a
// no-op unless trace output is enabled, for the per-line debug
// tracing driven by the --trace flag.
func (l *Logger) Leveledf(level string) func(string, ...interface{}) {
	return func(format string, args ...interface{}) {
		l.mu.Lock()
		on := l.trace
		l.mu.Unlock()
		if !on {
			return
		}
		l.writeLine(level+": "+format, args...)
	}
}

// ErrorIf logs err as a single line and records a non-zero exit code,
// if err is non-nil. Returns err unchanged so callers can chain it.
func (l *Logger) ErrorIf(err error) error {
	if err == nil {
		return nil
	}
	l.writeLine("error: %v", err)
	l.mu.Lock()
	l.exitCode = 1
	l.mu.Unlock()
	return err
}

// ExitCode returns 0 if no error has been logged via ErrorIf, else 1.
func (l *Logger) ExitCode() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.exitCode
}
