package common

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// LogLevel represents logging verbosity levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
)

// String returns the string representation of the log level
func (l LogLevel) String() string {
	switch l {
	case LogLevelError:
		return "error"
	case LogLevelWarn:
		return "warn"
	case LogLevelInfo:
		return "info"
	case LogLevelDebug:
		return "debug"
	default:
		return "info"
	}
}

// ToSlogLevel converts LogLevel to slog.Level
func (l LogLevel) ToSlogLevel() slog.Level {
	switch l {
	case LogLevelError:
		return slog.LevelError
	case LogLevelWarn:
		return slog.LevelWarn
	case LogLevelDebug:
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// ParseLogLevel maps a user supplied level name to a LogLevel.
// Unknown names fall back to warn so diagnostics stay out of the result panels.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error":
		return LogLevelError
	case "info":
		return LogLevelInfo
	case "debug":
		return LogLevelDebug
	default:
		return LogLevelWarn
	}
}

// Logger provides a centralized logging interface for apiprobe.
// Diagnostics are written to stderr; results are printed to stdout by the report package.
type Logger struct {
	*slog.Logger
	level LogLevel
}

// NewLogger creates a new structured text logger with the specified level
func NewLogger(level LogLevel) *Logger {
	return NewLoggerWithWriter(os.Stderr, level, "text")
}

// NewJSONLogger creates a structured logger with JSON output
func NewJSONLogger(level LogLevel) *Logger {
	return NewLoggerWithWriter(os.Stderr, level, "json")
}

// NewColorLogger creates a logger using ColorHandler
func NewColorLogger(level LogLevel) *Logger {
	return NewLoggerWithWriter(os.Stderr, level, "color")
}

// NewLoggerWithWriter builds a logger for the given format ("text", "json" or "color").
func NewLoggerWithWriter(w io.Writer, level LogLevel, format string) *Logger {
	opts := &slog.HandlerOptions{Level: level.ToSlogLevel(), ReplaceAttr: maskAttr}

	var handler slog.Handler
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		handler = slog.NewJSONHandler(w, opts)
	case "color":
		handler = NewColorHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
		level:  level,
	}
}

// maskAttr scrubs sensitive keys and registered secrets for the text and JSON handlers.
func maskAttr(groups []string, a slog.Attr) slog.Attr {
	if len(groups) == 0 && (a.Key == slog.TimeKey || a.Key == slog.LevelKey || a.Key == slog.SourceKey) {
		return a
	}
	masked := globalMasker.MaskValue(a.Key, a.Value.Any())
	if s, ok := masked.(string); ok {
		return slog.String(a.Key, s)
	}
	return a
}

// Level returns the current log level
func (l *Logger) Level() LogLevel {
	return l.level
}

func (l *Logger) with(args ...any) *Logger {
	return &Logger{
		Logger: l.Logger.With(args...),
		level:  l.level,
	}
}

// WithComponent returns a logger with component context
func (l *Logger) WithComponent(component string) *Logger {
	return l.with("component", component)
}

// WithRun returns a logger tagged with the run identifier
func (l *Logger) WithRun(runID string) *Logger {
	return l.with("run_id", runID)
}

// WithBackend returns a logger with HTTP backend context
func (l *Logger) WithBackend(backend string) *Logger {
	return l.with("backend", backend)
}

// WithRequest returns a logger with HTTP request context
func (l *Logger) WithRequest(method, url string) *Logger {
	return l.with("method", method, "url", url)
}

// Global default logger instance
var defaultLogger = NewLogger(LogLevelWarn)

// SetDefaultLogger sets the global default logger
func SetDefaultLogger(logger *Logger) {
	defaultLogger = logger
}

// GetLogger returns the default logger
func GetLogger() *Logger {
	return defaultLogger
}

// LogError logs an error with context
func LogError(msg string, err error, attrs ...any) {
	args := append([]any{"error", err}, attrs...)
	defaultLogger.Error(msg, args...)
}

// LogInfo logs informational message
func LogInfo(msg string, attrs ...any) {
	defaultLogger.Info(msg, attrs...)
}

// LogDebug logs debug message
func LogDebug(msg string, attrs ...any) {
	defaultLogger.Debug(msg, attrs...)
}

// LogWarn logs warning message
func LogWarn(msg string, attrs ...any) {
	defaultLogger.Warn(msg, attrs...)
}
