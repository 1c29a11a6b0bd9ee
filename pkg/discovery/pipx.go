package discovery

import (
	"context"

	"github.com/cperrin88/envpkgsearch/pkg/fsutil"
)

// Pipx finds the interpreters of pipx application virtualenvs.
type Pipx struct {
	host     Host
	venvsDir string
}

// NewPipx creates a Pipx strategy over venvsDir (~/.local/pipx/venvs by default).
func NewPipx(host Host, venvsDir string) *Pipx {
	return &Pipx{host: host.withDefaults(), venvsDir: venvsDir}
}

// Name implements Strategy.
func (p *Pipx) Name() string { return SourcePipx }

// Discover implements Strategy.
func (p *Pipx) Discover(_ context.Context) (PathSet, error) {
	found := NewPathSet()
	if p.venvsDir == "" || !fsutil.DirExists(p.venvsDir) {
		return found, nil
	}
	for _, venv := range fsutil.GlobDirsUnder(p.venvsDir, "*") {
		p.host.probePrefix(venv, found)
	}
	return found, nil
}
