// Package logging provides leveled key=value console logging for the engine.
// Loggers are scoped by component and, in the API layer, by per-request
// trace ID.
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

// levelPriority maps levels to numeric priority for filtering.
var levelPriority = map[Level]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
}

// Logger writes structured log lines to a single output writer.
type Logger struct {
	mu        sync.Mutex
	output    io.Writer
	minLevel  Level
	component string
	traceID   string
}

// New creates a new Logger writing to stdout at INFO level.
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

// log writes a log entry: LEVEL TIMESTAMP [component] (trace) message key=value ...
func (l *Logger) log(level Level, msg string, fields ...map[string]interface{}) {
	if levelPriority[level] < levelPriority[l.minLevel] {
		return
	}

	timestamp := time.Now().UTC().Format("2006-01-02T15:04:05.000Z")

	var fieldStr string
	if len(fields) > 0 && fields[0] != nil {
		fieldStr = formatFields(fields[0])
	}
	if l.traceID != "" {
		fieldStr = " trace=" + l.traceID + fieldStr
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

// --- Domain event helpers ---
// Called by the index, cache and API layers so log lines stay uniform.

// SearchCompleted logs a finished similarity or keyword search.
func (l *Logger) SearchCompleted(mode, filterType string, hits int, duration time.Duration) {
	l.Info("search_completed", map[string]interface{}{
		"mode":     mode,
		"type":     filterType,
		"hits":     hits,
		"duration": duration.String(),
	})
}

// Indexed logs a completed index operation.
func (l *Logger) Indexed(count int, duration time.Duration) {
	l.Info("indexed", map[string]interface{}{
		"count":    count,
		"duration": duration.String(),
	})
}

// PersistenceWarning logs a non-fatal persistence problem, such as a
// corrupt index file degrading to an empty store at load time.
func (l *Logger) PersistenceWarning(path string, err error) {
	l.Warn("persistence_warning", map[string]interface{}{
		"path":  path,
		"error": err.Error(),
	})
}

// CacheFilled logs a job-embedding cache fill pass.
func (l *Logger) CacheFilled(computed, total int, duration time.Duration) {
	l.Info("cache_filled", map[string]interface{}{
		"computed": computed,
		"total":    total,
		"duration": duration.String(),
	})
}

// RequestCompleted logs a finished HTTP request.
func (l *Logger) RequestCompleted(method, path string, status int, duration time.Duration) {
	l.Info("request_completed", map[string]interface{}{
		"method":   method,
		"path":     path,
		"status":   status,
		"duration": duration.String(),
	})
}
