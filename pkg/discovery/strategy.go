//go:generate mockgen -destination=./mocks/discovery.go . Strategy

package discovery

import (
	"context"
	"path/filepath"
	"runtime"
	"time"

	"github.com/cperrin88/envpkgsearch/pkg/fsutil"
	"github.com/cperrin88/envpkgsearch/pkg/platform"
	"github.com/cperrin88/envpkgsearch/pkg/process"
)

// Source names reported by the built-in strategies.
const (
	SourceSearchPath = "path"
	SourcePyenv      = "pyenv"
	SourceConda      = "conda"
	SourcePipx       = "pipx"
)

// DefaultToolTimeout bounds a single manager tool invocation.
const DefaultToolTimeout = 10 * time.Second

// Strategy is one independent way of locating candidate interpreters.
// Discover returns the paths it found together with an optional non-fatal
// error describing what went wrong; partial results stay valid.
type Strategy interface {
	Name() string
	Discover(ctx context.Context) (PathSet, error)
}

// Host describes the filesystem conventions strategies probe with.
type Host struct {
	GOOS       string
	Normalizer Normalizer
	// Probe decides whether a path is a usable interpreter.
	Probe func(path string) bool
}

// DefaultHost returns the Host of the running platform.
func DefaultHost() Host {
	return Host{
		GOOS:       runtime.GOOS,
		Normalizer: DefaultNormalizer(),
		Probe:      fsutil.IsExecutable,
	}
}

// withDefaults fills in the running platform for an empty GOOS and the
// platform normalizer for a zero Normalizer. A Normalizer set by the caller
// is kept.
func (h Host) withDefaults() Host {
	if h.GOOS == "" {
		h.GOOS = runtime.GOOS
	}
	if h.Normalizer == (Normalizer{}) {
		h.Normalizer = NewNormalizer(h.GOOS)
	}
	if h.Probe == nil {
		h.Probe = fsutil.IsExecutable
	}
	return h
}

// probeDir adds every canonical interpreter found directly in dir.
func (h Host) probeDir(dir string, into PathSet) int {
	found := 0
	for _, name := range platform.PythonExecutableNames(h.GOOS) {
		candidate := filepath.Join(dir, name)
		if h.Probe(candidate) {
			into.Add(h.Normalizer.Normalize(candidate))
			found++
		}
	}
	return found
}

// probePrefix probes the script directory of an environment prefix.
func (h Host) probePrefix(prefix string, into PathSet) int {
	return h.probeDir(filepath.Join(prefix, platform.ScriptsDir(h.GOOS)), into)
}

// ToolOptions configure manager tool invocations.
type ToolOptions struct {
	Timeout  time.Duration
	Encoding string
}

func (o ToolOptions) processOptions(env []string) process.Options {
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = DefaultToolTimeout
	}
	return process.Options{
		Timeout:     timeout,
		MustSucceed: true,
		Encoding:    o.Encoding,
		Env:         env,
	}
}
