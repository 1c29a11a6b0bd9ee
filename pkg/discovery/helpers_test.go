package discovery

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/cperrin88/envpkgsearch/pkg/errors"
	"github.com/cperrin88/envpkgsearch/pkg/platform"
	"github.com/cperrin88/envpkgsearch/pkg/process"
)

// exe returns name with the platform executable suffix.
func exe(name string) string {
	if runtime.GOOS == platform.OSWindows {
		return name + platform.ExeSuffix
	}
	return name
}

// scriptsDir is the prefix script directory of the running platform.
func scriptsDir() string {
	return platform.ScriptsDir(runtime.GOOS)
}

// touchExe creates an executable file at path and returns its normalized form.
func touchExe(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755))
	return DefaultNormalizer().Normalize(path)
}

// touchFile creates a non-executable regular file.
func touchFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("not a program"), 0o644))
}

func testHost() Host {
	return DefaultHost()
}

// notFoundRunner simulates a host where no manager tool is installed.
type notFoundRunner struct {
	calls atomic.Int32
}

func (r *notFoundRunner) Run(_ context.Context, name string, _ []string, _ process.Options) (*process.Result, error) {
	r.calls.Add(1)
	return nil, errors.Wrap(errors.ErrNotFound, name)
}

// hangingRunner simulates a tool that never answers; it honors the timeout
// the way ExecRunner does.
type hangingRunner struct{}

func (hangingRunner) Run(ctx context.Context, name string, _ []string, opts process.Options) (*process.Result, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}
	<-ctx.Done()
	return nil, errors.Wrapf(errors.ErrTimeout, "%s after %s", name, opts.Timeout)
}

// staticStrategy returns fixed results.
type staticStrategy struct {
	name  string
	paths []string
	err   error
	delay time.Duration
}

func (s staticStrategy) Name() string { return s.name }

func (s staticStrategy) Discover(ctx context.Context) (PathSet, error) {
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
		}
	}
	return NewPathSet(s.paths...), s.err
}
