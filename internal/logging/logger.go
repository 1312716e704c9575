package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
)

// LogLevel represents different logging levels
type LogLevel int

const (
	// LevelError only logs errors
	LevelError LogLevel = iota
	// LevelWarn logs warnings and errors
	LevelWarn
	// LevelInfo logs general information, warnings and errors
	LevelInfo
	// LevelDebug logs detailed debug information and all above
	LevelDebug
	// LevelTrace logs very detailed trace information and all above
	LevelTrace
)

var levelNames = map[LogLevel]string{
	LevelError: "ERROR",
	LevelWarn:  "WARN",
	LevelInfo:  "INFO",
	LevelDebug: "DEBUG",
	LevelTrace: "TRACE",
}

// String returns the upper-case name of the level.
func (l LogLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}
	return fmt.Sprintf("LEVEL(%d)", int(l))
}

// ParseLevel converts a level name such as "debug" or "TRACE" to a LogLevel.
func ParseLevel(name string) (LogLevel, bool) {
	upper := strings.ToUpper(strings.TrimSpace(name))
	for level, n := range levelNames {
		if n == upper {
			return level, true
		}
	}
	return LevelWarn, false
}

// threshold is shared by a logger and every child derived from it.
type threshold struct {
	mu    sync.RWMutex
	level LogLevel
}

// Logger provides leveled logging on top of a charmbracelet/log backend.
// Diagnostics go to stderr so they never mix with shell output on stdout.
type Logger struct {
	base      *log.Logger
	threshold *threshold
}

var (
	defaultLogger *Logger
	once          sync.Once
)

// GetLogger returns the default logger instance
func GetLogger() *Logger {
	once.Do(func() {
		defaultLogger = NewLogger(os.Stderr, "zipsh")

		if level, ok := ParseLevel(os.Getenv("LOG_LEVEL")); ok {
			defaultLogger.SetLevel(level)
		}
	})
	return defaultLogger
}

// NewLogger creates a new logger writing to w with the given prefix
func NewLogger(w io.Writer, prefix string) *Logger {
	base := log.NewWithOptions(w, log.Options{
		Prefix:          prefix,
		ReportTimestamp: true,
		TimeFormat:      "2006-01-02 15:04:05.000000",
		Level:           log.DebugLevel,
	})
	return &Logger{
		base:      base,
		threshold: &threshold{level: LevelWarn},
	}
}

// SetLevel sets the logging level for this logger and all of its children
func (l *Logger) SetLevel(level LogLevel) {
	l.threshold.mu.Lock()
	defer l.threshold.mu.Unlock()
	l.threshold.level = level
}

// Level reports the current logging level
func (l *Logger) Level() LogLevel {
	l.threshold.mu.RLock()
	defer l.threshold.mu.RUnlock()
	return l.threshold.level
}

func (l *Logger) shouldLog(level LogLevel) bool {
	return level <= l.Level()
}

func (l *Logger) log(level LogLevel, format string, args ...interface{}) {
	if !l.shouldLog(level) {
		return
	}

	msg := fmt.Sprintf(format, args...)
	switch level {
	case LevelError:
		l.base.Error(msg)
	case LevelWarn:
		l.base.Warn(msg)
	case LevelInfo:
		l.base.Info(msg)
	case LevelTrace:
		l.base.Debug(msg, "trace", true)
	default:
		l.base.Debug(msg)
	}
}

// Error logs an error message
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(LevelError, format, args...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(LevelWarn, format, args...)
}

// Info logs an informational message
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(LevelInfo, format, args...)
}

// Debug logs a debug message
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(LevelDebug, format, args...)
}

// Trace logs a trace message
func (l *Logger) Trace(format string, args ...interface{}) {
	l.log(LevelTrace, format, args...)
}

// WithPrefix creates a child logger tagged with a component prefix.
// The child shares the parent's level.
func (l *Logger) WithPrefix(prefix string) *Logger {
	full := prefix
	if parent := l.base.GetPrefix(); parent != "" {
		full = parent + "/" + prefix
	}
	return &Logger{
		base:      l.base.WithPrefix(full),
		threshold: l.threshold,
	}
}
