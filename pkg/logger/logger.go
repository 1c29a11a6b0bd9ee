// Package logger provides the process-wide logrus logger used by discovery,
// the cache and the CLI. Diagnostics go to stderr so stdout stays reserved
// for command results.
package logger

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"
)

// OutputFormat selects the log line encoding.
type OutputFormat string

const (
	// FormatText renders key=value lines.
	FormatText OutputFormat = "text"
	// FormatJSON renders one JSON object per line.
	FormatJSON OutputFormat = "json"
)

// Fields is a type alias for log fields to make the API cleaner
type Fields = logrus.Fields

var (
	logger   *logrus.Logger
	output   io.Writer = os.Stderr
	loggerMu sync.Mutex
)

// InitLogger initializes the global logger for CLI operations
func InitLogger(logLevel string, format OutputFormat, noColor bool) {
	loggerMu.Lock()
	defer loggerMu.Unlock()

	l := logrus.New()
	l.SetOutput(output)

	level, err := logrus.ParseLevel(strings.ToLower(logLevel))
	if err != nil {
		level = logrus.InfoLevel // fallback to info level
	}
	l.SetLevel(level)
	l.SetFormatter(newFormatter(format, noColor))

	logger = l
}

func newFormatter(format OutputFormat, noColor bool) logrus.Formatter {
	if format == FormatJSON {
		return &logrus.JSONFormatter{}
	}
	return &logrus.TextFormatter{
		DisableColors:    noColor,
		DisableTimestamp: true,
	}
}

// SetOutput redirects log output, mainly for tests. It applies to the current
// logger and to every logger initialized afterwards.
func SetOutput(w io.Writer) {
	loggerMu.Lock()
	defer loggerMu.Unlock()
	if w == nil {
		w = os.Stderr
	}
	output = w
	if logger != nil {
		logger.SetOutput(w)
	}
}

// GetLogger returns the configured logger instance
func GetLogger() *logrus.Logger {
	loggerMu.Lock()
	l := logger
	loggerMu.Unlock()
	if l == nil {
		// Initialize with default settings if not already initialized
		InitLogger("info", FormatText, false)
		loggerMu.Lock()
		l = logger
		loggerMu.Unlock()
	}
	return l
}

// Info logs an info message
func Info(msg string, fields ...Fields) {
	GetLogger().WithFields(mergeFields(fields...)).Info(msg)
}

// Debug logs a debug message (only shown when debug level is enabled)
func Debug(msg string, fields ...Fields) {
	GetLogger().WithFields(mergeFields(fields...)).Debug(msg)
}

// Warn logs a warning message
func Warn(msg string, fields ...Fields) {
	GetLogger().WithFields(mergeFields(fields...)).Warn(msg)
}

// Error logs an error message
func Error(msg string, fields ...Fields) {
	GetLogger().WithFields(mergeFields(fields...)).Error(msg)
}

// Success logs a success message as info with success indicator
func Success(msg string, fields ...Fields) {
	merged := mergeFields(fields...)
	merged["status"] = "success"
	GetLogger().WithFields(merged).Info(msg)
}

// mergeFields merges multiple logrus.Fields into one
func mergeFields(fields ...Fields) Fields {
	result := make(Fields)
	for _, field := range fields {
		for k, v := range field {
			result[k] = v
		}
	}
	return result
}
