package internal

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// LogLevel represents different logging verbosity levels
type LogLevel int

const (
	LogLevelError LogLevel = iota
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

// Logger provides leveled logging on top of zerolog. Output goes to stderr so
// that stdout only carries analysis results.
type Logger struct {
	level LogLevel
	zl    zerolog.Logger
}

// NewLogger creates a new logger with the specified level
func NewLogger(level LogLevel) *Logger {
	return NewLoggerWithWriter(level, zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.Kitchen,
	})
}

// NewLoggerWithWriter creates a logger writing to w
func NewLoggerWithWriter(level LogLevel, w io.Writer) *Logger {
	zl := zerolog.New(w).Level(toZerologLevel(level)).With().Timestamp().Logger()
	return &Logger{level: level, zl: zl}
}

// NewDefaultLogger creates a logger based on LOG_LEVEL environment variable
func NewDefaultLogger() *Logger {
	return NewLogger(ParseLogLevel(os.Getenv("LOG_LEVEL")))
}

// ParseLogLevel maps ERROR/WARN/INFO/DEBUG/TRACE to a LogLevel, defaulting to INFO
func ParseLogLevel(levelStr string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(levelStr)) {
	case "ERROR":
		return LogLevelError
	case "WARN":
		return LogLevelWarn
	case "DEBUG":
		return LogLevelDebug
	case "TRACE":
		return LogLevelTrace
	default:
		return LogLevelInfo
	}
}

func toZerologLevel(level LogLevel) zerolog.Level {
	switch level {
	case LogLevelError:
		return zerolog.ErrorLevel
	case LogLevelWarn:
		return zerolog.WarnLevel
	case LogLevelDebug:
		return zerolog.DebugLevel
	case LogLevelTrace:
		return zerolog.TraceLevel
	default:
		return zerolog.InfoLevel
	}
}

// Error logs error messages
func (l *Logger) Error(format string, args ...interface{}) {
	l.zl.Error().Msgf(format, args...)
}

// Warn logs warning messages
func (l *Logger) Warn(format string, args ...interface{}) {
	l.zl.Warn().Msgf(format, args...)
}

// Info logs info messages
func (l *Logger) Info(format string, args ...interface{}) {
	l.zl.Info().Msgf(format, args...)
}

// Debug logs debug messages
func (l *Logger) Debug(format string, args ...interface{}) {
	l.zl.Debug().Msgf(format, args...)
}

// Trace logs trace messages
func (l *Logger) Trace(format string, args ...interface{}) {
	l.zl.Trace().Msgf(format, args...)
}

// GetLevel returns the current log level
func (l *Logger) GetLevel() LogLevel {
	return l.level
}

// Global logger instance
var DefaultLogger = NewDefaultLogger()
