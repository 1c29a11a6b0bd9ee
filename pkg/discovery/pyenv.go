package discovery

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/cperrin88/envpkgsearch/pkg/errors"
	"github.com/cperrin88/envpkgsearch/pkg/fsutil"
	"github.com/cperrin88/envpkgsearch/pkg/logger"
	"github.com/cperrin88/envpkgsearch/pkg/platform"
	"github.com/cperrin88/envpkgsearch/pkg/process"
)

// PyenvCommand is the pyenv executable looked up on the search path.
const PyenvCommand = "pyenv"

// pyenvVirtualenvsArgs lists virtualenvs one per line.
var pyenvVirtualenvsArgs = []string{"virtualenvs", "--bare"}

// Pyenv finds interpreters managed by pyenv and pyenv-virtualenv.
type Pyenv struct {
	host   Host
	root   string
	runner process.Runner
	tool   ToolOptions
}

// NewPyenv creates a Pyenv strategy rooted at root. A nil runner disables the
// pyenv tool query and leaves only the filesystem scan.
func NewPyenv(host Host, root string, runner process.Runner, tool ToolOptions) *Pyenv {
	return &Pyenv{host: host.withDefaults(), root: root, runner: runner, tool: tool}
}

// Name implements Strategy.
func (p *Pyenv) Name() string { return SourcePyenv }

// Root returns the pyenv root this strategy scans.
func (p *Pyenv) Root() string { return p.root }

// Discover implements Strategy. Results of the filesystem scan and of the
// tool query are unioned; a tool failure is returned alongside the scan
// results.
func (p *Pyenv) Discover(ctx context.Context) (PathSet, error) {
	found := NewPathSet()
	if p.root != "" && fsutil.DirExists(p.root) {
		p.scanLayout(found)
	}
	if p.runner == nil {
		return found, nil
	}
	if err := p.queryTool(ctx, found); err != nil {
		return found, err
	}
	return found, nil
}

// scanLayout globs the pyenv versions and both virtualenv plugin layouts.
func (p *Pyenv) scanLayout(into PathSet) {
	patterns := [][]string{
		{"versions", "*", platform.BinDir},
		{"versions", "*", "envs", "*", platform.BinDir},
		{"envs", "*", platform.BinDir},
	}
	for _, pattern := range patterns {
		for _, dir := range fsutil.GlobDirsUnder(p.root, pattern...) {
			p.host.probeDir(dir, into)
		}
	}
	if p.host.GOOS == platform.OSWindows {
		// pyenv-win installs python.exe at the version root.
		for _, dir := range fsutil.GlobDirsUnder(p.root, "versions", "*") {
			p.host.probeDir(dir, into)
		}
	}
}

func (p *Pyenv) queryTool(ctx context.Context, into PathSet) error {
	var env []string
	if p.root != "" {
		env = append(os.Environ(), "PYENV_ROOT="+p.root)
	}
	res, err := p.runner.Run(ctx, PyenvCommand, pyenvVirtualenvsArgs, p.tool.processOptions(env))
	if err != nil {
		return errors.Wrap(err, "pyenv virtualenvs")
	}

	roots := parseLines(res.Stdout)
	logger.Debug("pyenv virtualenvs listed", logger.Fields{"source": SourcePyenv, "count": len(roots)})
	for _, root := range roots {
		if dir := p.resolveEnvRoot(root); dir != "" {
			p.host.probeDir(filepath.Join(dir, platform.BinDir), into)
		}
	}
	return nil
}

// resolveEnvRoot maps a listed virtualenv to its directory. pyenv prints
// names relative to <root>/versions (e.g. "3.11.4/envs/web"); absolute
// entries are used as is. A relative entry without a known root resolves to "".
func (p *Pyenv) resolveEnvRoot(entry string) string {
	if filepath.IsAbs(entry) {
		return entry
	}
	if p.root == "" {
		return ""
	}
	return filepath.Join(p.root, "versions", filepath.FromSlash(entry))
}

func parseLines(out string) []string {
	var lines []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
