// Package logger provides leveled console logging for execution progress.
//
// Output is timestamped, thread-safe, and colorized when the destination is
// a terminal. A nil writer silently discards all messages.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Log level constants for filtering.
const (
	levelDebug = iota
	levelInfo
	levelWarn
	levelError
)

// ConsoleLogger writes leveled, timestamped messages to a writer.
// All output is prefixed with [HH:MM:SS] timestamps.
type ConsoleLogger struct {
	writer      io.Writer
	level       int
	mutex       sync.Mutex
	colorOutput bool

	debugColor *color.Color
	warnColor  *color.Color
	errorColor *color.Color
}

// New creates a ConsoleLogger writing to w at the given minimum level.
// Valid levels: debug, info, warn, error (case-insensitive); empty or
// unknown levels default to info. Color is enabled only when w is a TTY.
func New(w io.Writer, level string) *ConsoleLogger {
	return &ConsoleLogger{
		writer:      w,
		level:       parseLevel(level),
		colorOutput: isTerminal(w),
		debugColor:  color.New(color.FgCyan),
		warnColor:   color.New(color.FgYellow),
		errorColor:  color.New(color.FgRed),
	}
}

// isTerminal reports whether the writer is a TTY that supports color.
// color.NoColor already honors the NO_COLOR convention.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return !color.NoColor && isatty.IsTerminal(f.Fd())
}

func parseLevel(level string) int {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return levelDebug
	case "warn":
		return levelWarn
	case "error":
		return levelError
	default:
		return levelInfo
	}
}

// Debugf logs a debug-level message.
func (l *ConsoleLogger) Debugf(format string, args ...interface{}) {
	l.log(levelDebug, l.debugColor, format, args...)
}

// Infof logs an info-level message.
func (l *ConsoleLogger) Infof(format string, args ...interface{}) {
	l.log(levelInfo, nil, format, args...)
}

// Warnf logs a warning-level message.
func (l *ConsoleLogger) Warnf(format string, args ...interface{}) {
	l.log(levelWarn, l.warnColor, format, args...)
}

// Errorf logs an error-level message.
func (l *ConsoleLogger) Errorf(format string, args ...interface{}) {
	l.log(levelError, l.errorColor, format, args...)
}

func (l *ConsoleLogger) log(level int, c *color.Color, format string, args ...interface{}) {
	if l == nil || l.writer == nil || level < l.level {
		return
	}

	message := fmt.Sprintf(format, args...)
	timestamp := time.Now().Format("15:04:05")
	line := fmt.Sprintf("[%s] %s\n", timestamp, message)

	l.mutex.Lock()
	defer l.mutex.Unlock()

	if l.colorOutput && c != nil {
		_, _ = c.Fprint(l.writer, line)
		return
	}
	_, _ = fmt.Fprint(l.writer, line)
}
