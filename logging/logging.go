// Package logging provides real-time console output for routing
// activity. The Decision value is the authoritative record of every
// dispatch; this package only mirrors it for monitoring.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents log severity.
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Logger provides structured logging to stdout.
type Logger struct {
	mu        sync.Mutex
	output    io.Writer
	minLevel  Level
	component string
	traceID   string
}

// levelPriority maps levels to numeric priority for filtering.
var levelPriority = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// New creates a new Logger.
func New() *Logger {
	return &Logger{
		output:   os.Stdout,
		minLevel: LevelInfo,
	}
}

// WithComponent returns a new logger with the given component name.
func (l *Logger) WithComponent(component string) *Logger {
	return &Logger{
		output:    l.output,
		minLevel:  l.minLevel,
		component: component,
		traceID:   l.traceID,
	}
}

// WithTraceID returns a new logger with the given trace ID.
func (l *Logger) WithTraceID(traceID string) *Logger {
	return &Logger{
		output:    l.output,
		minLevel:  l.minLevel,
		component: l.component,
		traceID:   traceID,
	}
}

// SetLevel sets the minimum log level.
func (l *Logger) SetLevel(level Level) {
	l.minLevel = level
}

// SetOutput sets the output writer (default: stdout).
func (l *Logger) SetOutput(w io.Writer) {
	l.output = w
}

// Debug logs a debug message.
func (l *Logger) Debug(msg string, fields ...map[string]interface{}) {
	l.log(LevelDebug, msg, fields...)
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...map[string]interface{}) {
	l.log(LevelInfo, msg, fields...)
}

// Warn logs a warning message.
func (l *Logger) Warn(msg string, fields ...map[string]interface{}) {
	l.log(LevelWarn, msg, fields...)
}

// Error logs an error message.
func (l *Logger) Error(msg string, fields ...map[string]interface{}) {
	l.log(LevelError, msg, fields...)
}

// formatFields formats a map of fields as key=value pairs.
func formatFields(fields map[string]interface{}) string {
	if len(fields) == 0 {
		return ""
	}
	var parts []string
	for k, v := range fields {
		parts = append(parts, fmt.Sprintf("%s=%v", k, v))
	}
	return " " + strings.Join(parts, " ")
}

// log writes a log entry in traditional format: LEVEL TIMESTAMP [component] message key=value ...
func (l *Logger) log(level Level, msg string, fields ...map[string]interface{}) {
	if levelPriority[level] < levelPriority[l.minLevel] {
		return
	}

	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	var fieldStr string
	if len(fields) > 0 && fields[0] != nil {
		fieldStr = formatFields(fields[0])
	}

	var line string
	if l.component != "" {
		line = fmt.Sprintf("%-5s %s [%s] %s%s\n", level, timestamp, l.component, msg, fieldStr)
	} else {
		line = fmt.Sprintf("%-5s %s %s%s\n", level, timestamp, msg, fieldStr)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.output.Write([]byte(line))
}

// --- Routing event methods ---
// Called around dispatch and reload; real-time mirrors of data the
// caller already holds in the returned values.

// RouteDecision logs a completed dispatch decision.
func (l *Logger) RouteDecision(requestID, primary string, confidence float64, secondary []string) {
	l.Info("route_decision", map[string]interface{}{
		"request_id": requestID,
		"primary":    primary,
		"confidence": fmt.Sprintf("%.2f", confidence),
		"secondary":  strings.Join(secondary, ","),
	})
}

// RouteFailed logs a routing failure.
func (l *Logger) RouteFailed(requestID string, err error) {
	l.Error("route_failed", map[string]interface{}{
		"request_id": requestID,
		"error":      err.Error(),
	})
}

// FallbackUsed logs that the generalist fallback took a task.
func (l *Logger) FallbackUsed(requestID string, unmatched []string) {
	l.Warn("fallback_used", map[string]interface{}{
		"request_id": requestID,
		"unmatched":  strings.Join(unmatched, ","),
	})
}

// ReferenceLookupFailed logs a best-effort guide lookup failure.
func (l *Logger) ReferenceLookupFailed(requestID, specialist string, err error) {
	l.Warn("reference_lookup_failed", map[string]interface{}{
		"request_id": requestID,
		"specialist": specialist,
		"error":      err.Error(),
	})
}

// SnapshotSwapped logs a registry snapshot replacement.
func (l *Logger) SnapshotSwapped(profiles int, source string) {
	l.Info("snapshot_swapped", map[string]interface{}{
		"profiles": profiles,
		"source":   source,
	})
}

// ReloadFailed logs a profile configuration reload failure. The last
// good snapshot stays in service.
func (l *Logger) ReloadFailed(path string, err error) {
	l.Error("reload_failed", map[string]interface{}{
		"path":  path,
		"error": err.Error(),
	})
}

// WatcherStopped logs that the configuration watcher shut down.
func (l *Logger) WatcherStopped(path string) {
	l.Debug("watcher_stopped", map[string]interface{}{
		"path": path,
	})
}
