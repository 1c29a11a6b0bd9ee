//go:generate mockgen -destination=./mocks/process.go . Runner

package process

import (
	"context"
	"time"
)

// Runner executes external commands with a literal argument vector.
type Runner interface {
	Run(ctx context.Context, name string, args []string, opts Options) (*Result, error)
}

// Options control a single command execution.
type Options struct {
	// Timeout bounds the execution; zero means only ctx bounds it.
	Timeout time.Duration
	// MustSucceed turns a non-zero exit into a *errors.CommandError.
	MustSucceed bool
	// Encoding names the WHATWG/IANA encoding of the command output
	// (e.g. "utf-8", "windows-1252"). Empty means UTF-8.
	Encoding string
	// Dir is the working directory; empty inherits the current one.
	Dir string
	// Env replaces the environment when non-nil.
	Env []string
}

// Result is the captured outcome of a command that started.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}
