package main

import (
	"fmt"
	"io"
	"sync"

	tpl2pdf "github.com/firefly-oss/go-tpl2pdf"
)

// logLevel orders the stderr logger's thresholds.
type logLevel int

const (
	levelDebug logLevel = iota
	levelInfo
	levelWarn
	levelError
)

// stderrLogger writes leveled library logs to the CLI's error stream.
// Renderers in a pool log concurrently, so writes are serialized.
type stderrLogger struct {
	mu    sync.Mutex
	w     io.Writer
	level logLevel
}

var _ tpl2pdf.Logger = (*stderrLogger)(nil)

// newStderrLogger maps --quiet and --verbose onto a threshold.
// Warnings are shown by default.
func newStderrLogger(w io.Writer, quiet, verbose bool) *stderrLogger {
	level := levelWarn
	switch {
	case quiet:
		level = levelError
	case verbose:
		level = levelDebug
	}
	return &stderrLogger{w: w, level: level}
}

func (l *stderrLogger) logf(level logLevel, prefix, format string, args ...any) {
	if level < l.level {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.w, prefix+format+"\n", args...)
}

func (l *stderrLogger) Debugf(format string, args ...any) { l.logf(levelDebug, "debug: ", format, args...) }
func (l *stderrLogger) Infof(format string, args ...any)  { l.logf(levelInfo, "", format, args...) }
func (l *stderrLogger) Warnf(format string, args ...any)  { l.logf(levelWarn, "warning: ", format, args...) }
func (l *stderrLogger) Errorf(format string, args ...any) { l.logf(levelError, "error: ", format, args...) }
