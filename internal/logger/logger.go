// Package logger provides structured logging and run metrics for triathlon-updates.
//
// Logging is backed by zap. Messages carry a level (DEBUG, INFO, WARN, ERROR), a
// timestamp and arbitrary structured fields, and are written as JSON lines by default
// or in zap's console format for interactive use.
//
// Metrics are backed by a private Prometheus registry: counters (pages fetched, pages
// failed, races written), gauges and timings. The registry can be dumped in Prometheus
// text format for a node-exporter textfile collector at the end of a run.
//
// Example usage:
//
//	logger.Info("Race written", logger.Fields{
//	    "race": "Challenge Roth",
//	    "path": "challenge_roth.json",
//	})
//
//	logger.Error("Race page failed", logger.Fields{
//	    "url": link,
//	}, err)
//
//	logger.IncrCounter("pages.fetched")
//	logger.RecordTiming("page.extract", duration)
package logger

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level represents log severity
type Level string

const (
	LevelDebug Level = "DEBUG"
	LevelInfo  Level = "INFO"
	LevelWarn  Level = "WARN"
	LevelError Level = "ERROR"
)

// Format selects the log line encoding
type Format string

const (
	FormatJSON    Format = "json"
	FormatConsole Format = "console"
)

// Logger provides structured logging
type Logger struct {
	minLevel Level
	z        *zap.Logger
}

// Fields represents structured log fields
type Fields map[string]interface{}

var defaultLogger *Logger

func init() {
	defaultLogger = New(LevelInfo, FormatJSON, os.Stderr)
}

// ParseLevel converts a case-insensitive level name into a Level
func ParseLevel(s string) (Level, error) {
	level := Level(strings.ToUpper(strings.TrimSpace(s)))
	switch level {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return level, nil
	case "WARNING":
		return LevelWarn, nil
	default:
		return "", fmt.Errorf("invalid log level: %s (must be debug, info, warn or error)", s)
	}
}

// ParseFormat converts a case-insensitive format name into a Format
func ParseFormat(s string) (Format, error) {
	format := Format(strings.ToLower(strings.TrimSpace(s)))
	switch format {
	case FormatJSON, FormatConsole:
		return format, nil
	case "text":
		return FormatConsole, nil
	default:
		return "", fmt.Errorf("invalid log format: %s (must be 'json' or 'console')", s)
	}
}

// zapLevel maps a Level onto zap's levels
func (l Level) zapLevel() zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New creates a new logger with the specified minimum log level, encoding and output.
// Messages below the minimum level will be discarded.
func New(level Level, format Format, output io.Writer) *Logger {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.TimeKey = "timestamp"
	encoderConfig.MessageKey = "message"
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder

	var encoder zapcore.Encoder
	if format == FormatConsole {
		encoder = zapcore.NewConsoleEncoder(encoderConfig)
	} else {
		encoder = zapcore.NewJSONEncoder(encoderConfig)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(output), level.zapLevel())

	return &Logger{
		minLevel: level,
		z:        zap.New(core),
	}
}

// SetDefault sets the default package-level logger used by the convenience functions
// (Debug, Info, Warn, Error). This allows centralizing logger configuration.
func SetDefault(logger *Logger) {
	defaultLogger = logger
}

// Default returns the package-level logger
func Default() *Logger {
	return defaultLogger
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	return l.z.Sync()
}

// log writes a structured log entry
func (l *Logger) log(level Level, message string, fields Fields, err error) {
	entry := l.z.Check(level.zapLevel(), message)
	if entry == nil {
		return
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	zapFields := make([]zap.Field, 0, len(keys)+1)
	for _, k := range keys {
		zapFields = append(zapFields, zap.Any(k, fields[k]))
	}
	if err != nil {
		zapFields = append(zapFields, zap.Error(err))
	}

	entry.Write(zapFields...)
}

// Debug logs a debug message with optional structured fields.
func (l *Logger) Debug(message string, fields Fields) {
	l.log(LevelDebug, message, fields, nil)
}

// Info logs an informational message with optional structured fields.
func (l *Logger) Info(message string, fields Fields) {
	l.log(LevelInfo, message, fields, nil)
}

// Warn logs a warning message with optional structured fields.
// Warning messages indicate potential issues that don't prevent operation.
func (l *Logger) Warn(message string, fields Fields) {
	l.log(LevelWarn, message, fields, nil)
}

// Error logs an error message with optional structured fields and an error object.
func (l *Logger) Error(message string, fields Fields, err error) {
	l.log(LevelError, message, fields, err)
}

// Package-level convenience functions using default logger

// Debug logs a debug message with the default logger
func Debug(message string, fields Fields) {
	defaultLogger.Debug(message, fields)
}

// Info logs an info message with the default logger
func Info(message string, fields Fields) {
	defaultLogger.Info(message, fields)
}

// Warn logs a warning message with the default logger
func Warn(message string, fields Fields) {
	defaultLogger.Warn(message, fields)
}

// Error logs an error message with the default logger
func Error(message string, fields Fields, err error) {
	defaultLogger.Error(message, fields, err)
}
