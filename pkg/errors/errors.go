// Package errors defines the error taxonomy shared by the discovery engine,
// the process runner and the supporting config and cache layers.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Discovery error kinds. Strategies absorb all of them; they never reach the caller.
var (
	// ErrNotFound is returned when an external tool or executable is absent.
	ErrNotFound = fmt.Errorf("executable not found")
	// ErrCommandFailed is returned when an external command exits non-zero.
	ErrCommandFailed = fmt.Errorf("command failed")
	// ErrTimeout is returned when an external command exceeds its time budget.
	ErrTimeout = fmt.Errorf("command timed out")
	// ErrMalformedOutput is returned when tool output lacks the expected sections.
	ErrMalformedOutput = fmt.Errorf("malformed command output")
	// ErrUnknownEncoding is returned for an unsupported output encoding name.
	ErrUnknownEncoding = fmt.Errorf("unknown text encoding")
)

// Environment errors.
var (
	ErrNotExecutable        = fmt.Errorf("path is not an executable regular file")
	ErrMalformedEnvironment = fmt.Errorf("malformed environment record")
	ErrEnvironmentNotFound  = fmt.Errorf("environment not found")
)

// Config errors.
var (
	ErrEmptyConfigPath   = fmt.Errorf("config file path cannot be empty")
	ErrInvalidConfigPath = fmt.Errorf("invalid config file path")
	ErrConfigParse       = fmt.Errorf("failed to parse config")
	ErrConfigValidation  = fmt.Errorf("invalid configuration")
	ErrConfigEncode      = fmt.Errorf("failed to encode config")
	ErrConfigDirectory   = fmt.Errorf("failed to create config directory")
	ErrConfigFileCreate  = fmt.Errorf("failed to create config file")
	ErrConfigFileRename  = fmt.Errorf("failed to rename config file")
	ErrConfigMarshal     = fmt.Errorf("failed to marshal config")
	ErrConfigFileExists  = fmt.Errorf("configuration file already exists")

	ErrInvalidOutputFormat = fmt.Errorf("invalid output format")
	ErrInvalidLogLevel     = fmt.Errorf("invalid log level")
	ErrInvalidLogFormat    = fmt.Errorf("invalid log format")
	ErrToolTimeoutNegative = fmt.Errorf("tool timeout cannot be negative")
	ErrUnknownSource       = fmt.Errorf("unknown discovery source")
	ErrUnknownConfigKey    = fmt.Errorf("unknown configuration key")
)

// Cache errors.
var (
	ErrInvalidPath = fmt.Errorf("invalid path")
	ErrCacheLoad   = fmt.Errorf("failed to load environment cache")
	ErrCacheSave   = fmt.Errorf("failed to save environment cache")
)

// CommandError describes a command that ran but exited with a non-zero status.
type CommandError struct {
	Name     string
	Args     []string
	ExitCode int
	Stderr   string
}

// Error implements the error interface.
func (e *CommandError) Error() string {
	cmdline := strings.TrimSpace(e.Name + " " + strings.Join(e.Args, " "))
	stderr := strings.TrimSpace(e.Stderr)
	if stderr == "" {
		return fmt.Sprintf("%s: exit status %d", cmdline, e.ExitCode)
	}
	return fmt.Sprintf("%s: exit status %d: %s", cmdline, e.ExitCode, stderr)
}

// Unwrap lets errors.Is match ErrCommandFailed.
func (e *CommandError) Unwrap() error {
	return ErrCommandFailed
}

// Kind names the discovery error kind of err, or "unknown".
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case stderrors.Is(err, ErrNotFound):
		return "not_found"
	case stderrors.Is(err, ErrTimeout):
		return "timeout"
	case stderrors.Is(err, ErrCommandFailed):
		return "command_failed"
	case stderrors.Is(err, ErrMalformedOutput):
		return "malformed_output"
	default:
		return "unknown"
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}

// Wrapf wraps an error with additional formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
