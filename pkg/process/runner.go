// Package process runs external manager tools (pyenv, conda) without a shell,
// capturing their output as text and classifying failures into the error kinds
// of pkg/errors.
package process

import (
	"bytes"
	"context"
	stderrors "errors"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/cperrin88/envpkgsearch/pkg/errors"
)

// DefaultWaitDelay bounds how long Wait blocks on inherited pipes after the
// process has been killed.
const DefaultWaitDelay = 500 * time.Millisecond

// ExecRunner is the os/exec backed Runner.
type ExecRunner struct {
	lookPath       func(file string) (string, error)
	commandContext func(ctx context.Context, name string, args ...string) *exec.Cmd
	waitDelay      time.Duration
}

// NewExecRunner creates a Runner that spawns real processes.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{
		lookPath:       exec.LookPath,
		commandContext: exec.CommandContext,
		waitDelay:      DefaultWaitDelay,
	}
}

// Run executes name with args. A missing executable yields errors.ErrNotFound,
// an exceeded timeout errors.ErrTimeout, and with MustSucceed a non-zero exit
// a *errors.CommandError. Without MustSucceed the result is returned whatever
// the exit code.
func (r *ExecRunner) Run(ctx context.Context, name string, args []string, opts Options) (*Result, error) {
	decoder, err := lookupEncoding(opts.Encoding)
	if err != nil {
		return nil, err
	}

	path, err := r.lookPath(name)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrNotFound, "%s: %v", name, err)
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cmd := r.commandContext(ctx, path, args...)
	cmd.WaitDelay = r.waitDelay
	cmd.Dir = opts.Dir
	if opts.Env != nil {
		cmd.Env = opts.Env
	}
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	runErr := cmd.Run()
	elapsed := time.Since(start)

	if ctxErr := ctx.Err(); ctxErr != nil {
		if stderrors.Is(ctxErr, context.DeadlineExceeded) {
			return nil, errors.Wrapf(errors.ErrTimeout, "%s after %s", name, elapsed.Round(time.Millisecond))
		}
		return nil, errors.Wrapf(ctxErr, "%s canceled", name)
	}

	result := &Result{ExitCode: 0, Duration: elapsed}
	if result.Stdout, err = decode(decoder, stdout.Bytes()); err != nil {
		return nil, errors.Wrapf(err, "decode stdout of %s", name)
	}
	if result.Stderr, err = decode(decoder, stderr.Bytes()); err != nil {
		return nil, errors.Wrapf(err, "decode stderr of %s", name)
	}

	if runErr != nil {
		var exitErr *exec.ExitError
		if !stderrors.As(runErr, &exitErr) {
			if stderrors.Is(runErr, exec.ErrNotFound) {
				return nil, errors.Wrapf(errors.ErrNotFound, "%s: %v", name, runErr)
			}
			return nil, errors.Wrapf(runErr, "failed to run %s", name)
		}
		result.ExitCode = exitErr.ExitCode()
	}

	if opts.MustSucceed && result.ExitCode != 0 {
		return result, &errors.CommandError{
			Name:     name,
			Args:     append([]string(nil), args...),
			ExitCode: result.ExitCode,
			Stderr:   result.Stderr,
		}
	}
	return result, nil
}

func lookupEncoding(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, nil
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrUnknownEncoding, "%q", name)
	}
	return enc, nil
}

func decode(enc encoding.Encoding, b []byte) (string, error) {
	if enc == nil || len(b) == 0 {
		return string(b), nil
	}
	out, err := enc.NewDecoder().Bytes(b)
	if err != nil {
		return "", err
	}
	return string(out), nil
}
