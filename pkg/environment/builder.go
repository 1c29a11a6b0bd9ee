package environment

import (
	"context"
	"time"

	"github.com/cperrin88/envpkgsearch/pkg/discovery"
	"github.com/cperrin88/envpkgsearch/pkg/logger"
)

// Builder turns discovery results into environments.
type Builder struct {
	introspector Introspector
	scanPackages bool
	now          func() time.Time
}

// BuilderOption configures a Builder.
type BuilderOption func(*Builder)

// WithPackageScan makes the Builder fill in the package inventory.
func WithPackageScan(enabled bool) BuilderOption {
	return func(b *Builder) { b.scanPackages = enabled }
}

// NewBuilder creates a Builder using introspector for layouts.
func NewBuilder(introspector Introspector, opts ...BuilderOption) *Builder {
	b := &Builder{introspector: introspector, now: time.Now}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Build creates one environment per discovered path, in report order. Paths
// that cannot be introspected are logged and skipped.
func (b *Builder) Build(ctx context.Context, report *discovery.Report) []*Environment {
	envs := make([]*Environment, 0, len(report.Paths))
	for _, path := range report.Paths {
		if ctx.Err() != nil {
			break
		}
		env, err := b.BuildOne(ctx, path, CreatorFromSource(report.Creator(path)))
		if err != nil {
			logger.Warn("skipping interpreter", logger.Fields{"executable": path, "error": err.Error()})
			continue
		}
		envs = append(envs, env)
	}
	return envs
}

// BuildOne creates the environment of a single interpreter. A system or
// unknown interpreter whose layout is virtual is tagged as a venv.
func (b *Builder) BuildOne(ctx context.Context, executable string, creator Creator) (*Environment, error) {
	layout, err := b.introspector.Introspect(ctx, executable)
	if err != nil {
		return nil, err
	}
	if layout.BasePrefix != "" && layout.BasePrefix != layout.Prefix &&
		(creator == CreatorSystem || creator == CreatorUnknown || creator == "") {
		creator = CreatorVenv
	}

	env, err := New(executable, creator, WithLayout(layout))
	if err != nil {
		return nil, err
	}
	if b.scanPackages {
		pkgs, err := ScanPackages(ctx, env.SitePackagesDirs)
		if err != nil {
			return nil, err
		}
		env.RefreshPackages(pkgs, b.now())
		logger.Debug("packages scanned", logger.Fields{"executable": env.Executable, "count": len(pkgs)})
	}
	return env, nil
}
