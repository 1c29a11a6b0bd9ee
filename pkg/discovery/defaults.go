package discovery

import (
	"slices"

	"github.com/cperrin88/envpkgsearch/pkg/errors"
	"github.com/cperrin88/envpkgsearch/pkg/process"
)

// Options hold the resolved, process-wide settings the built-in strategies
// are constructed from. Nothing here is read from the environment; callers
// resolve overrides (PYENV_ROOT, PIPX_HOME, CONDA_EXE) beforehand.
type Options struct {
	Host         Host
	PathList     string
	PyenvRoot    string
	PipxVenvsDir string
	CondaCommand string
	CondaRoots   []string
	Runner       process.Runner
	Tool         ToolOptions
	// Sources restricts discovery to the named sources; empty enables all.
	Sources []string
}

// AllSources returns the names of the built-in strategies in run order.
func AllSources() []string {
	return []string{SourceSearchPath, SourcePyenv, SourceConda, SourcePipx}
}

// BuildStrategies creates the enabled built-in strategies.
func BuildStrategies(opts Options) ([]Strategy, error) {
	enabled := opts.Sources
	if len(enabled) == 0 {
		enabled = AllSources()
	}
	for _, name := range enabled {
		if !slices.Contains(AllSources(), name) {
			return nil, errors.Wrapf(errors.ErrUnknownSource, "%q (valid: %v)", name, AllSources())
		}
	}

	host := opts.Host.withDefaults()
	var strategies []Strategy
	for _, name := range AllSources() {
		if !slices.Contains(enabled, name) {
			continue
		}
		switch name {
		case SourceSearchPath:
			strategies = append(strategies, NewSearchPath(host, opts.PathList))
		case SourcePyenv:
			strategies = append(strategies, NewPyenv(host, opts.PyenvRoot, opts.Runner, opts.Tool))
		case SourceConda:
			strategies = append(strategies, NewConda(host, opts.CondaCommand, opts.Runner, opts.Tool, opts.CondaRoots))
		case SourcePipx:
			strategies = append(strategies, NewPipx(host, opts.PipxVenvsDir))
		}
	}
	return strategies, nil
}

// NewDefaultAggregator builds an Aggregator over the enabled built-in strategies.
func NewDefaultAggregator(opts Options) (*Aggregator, error) {
	strategies, err := BuildStrategies(opts)
	if err != nil {
		return nil, err
	}
	return NewAggregator(opts.Host.withDefaults().Normalizer, strategies...), nil
}
