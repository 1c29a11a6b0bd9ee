package discovery

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/cperrin88/envpkgsearch/pkg/errors"
	"github.com/cperrin88/envpkgsearch/pkg/fsutil"
	"github.com/cperrin88/envpkgsearch/pkg/logger"
	"github.com/cperrin88/envpkgsearch/pkg/platform"
	"github.com/cperrin88/envpkgsearch/pkg/process"
)

// DefaultCondaCommand is used when no conda executable is configured.
const DefaultCondaCommand = "conda"

// condaEnvsHeader opens the environment table of `conda info --envs`.
const condaEnvsHeader = "# conda environments:"

var condaInfoArgs = []string{"info", "--envs"}

// Conda finds interpreters of conda environments.
type Conda struct {
	host          Host
	command       string
	runner        process.Runner
	tool          ToolOptions
	fallbackRoots []string
}

// NewConda creates a Conda strategy. command is the conda executable (name or
// path); fallbackRoots are conda installations scanned on disk when the tool
// cannot be used.
func NewConda(host Host, command string, runner process.Runner, tool ToolOptions, fallbackRoots []string) *Conda {
	if command == "" {
		command = DefaultCondaCommand
	}
	return &Conda{
		host:          host.withDefaults(),
		command:       command,
		runner:        runner,
		tool:          tool,
		fallbackRoots: fallbackRoots,
	}
}

// Name implements Strategy.
func (c *Conda) Name() string { return SourceConda }

// Discover implements Strategy.
func (c *Conda) Discover(ctx context.Context) (PathSet, error) {
	found := NewPathSet()

	roots, err := c.listEnvs(ctx)
	if err != nil {
		logger.Debug("conda tool unavailable, scanning known installations", logger.Fields{
			"source": SourceConda,
			"kind":   errors.Kind(err),
		})
		roots = c.fallbackEnvs()
	}
	for _, root := range roots {
		c.probeEnv(root, found)
	}
	return found, err
}

func (c *Conda) listEnvs(ctx context.Context) ([]string, error) {
	if c.runner == nil {
		return nil, errors.Wrap(errors.ErrNotFound, "conda runner not configured")
	}
	res, err := c.runner.Run(ctx, c.command, condaInfoArgs, c.tool.processOptions(nil))
	if err != nil {
		return nil, errors.Wrap(err, "conda info --envs")
	}
	roots, err := ParseCondaEnvs(res.Stdout)
	if err != nil {
		return nil, errors.Wrap(err, "conda info --envs")
	}
	return roots, nil
}

// fallbackEnvs lists each configured installation root and its envs/*.
func (c *Conda) fallbackEnvs() []string {
	var roots []string
	for _, root := range c.fallbackRoots {
		if !fsutil.DirExists(root) {
			continue
		}
		roots = append(roots, root)
		roots = append(roots, fsutil.GlobDirsUnder(root, "envs", "*")...)
	}
	return roots
}

func (c *Conda) probeEnv(root string, into PathSet) {
	c.host.probePrefix(root, into)
	if c.host.GOOS == platform.OSWindows {
		// conda places python.exe at the environment root on Windows.
		c.host.probeDir(root, into)
	}
}

// ParseCondaEnvs extracts environment root paths from the output of
// `conda info --envs`. Rows follow the "# conda environments:" header; the
// path is the last whitespace separated token of each row. Output without the
// header is ErrMalformedOutput. Rows whose last token is not an absolute path
// are skipped.
func ParseCondaEnvs(out string) ([]string, error) {
	inEnvs := false
	var roots []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "#") {
			if strings.HasPrefix(line, condaEnvsHeader) {
				inEnvs = true
			}
			continue
		}
		if !inEnvs {
			continue
		}
		fields := strings.Fields(line)
		root := fields[len(fields)-1]
		if !filepath.IsAbs(root) {
			continue
		}
		roots = append(roots, root)
	}
	if !inEnvs {
		return nil, errors.Wrapf(errors.ErrMalformedOutput, "missing %q section", condaEnvsHeader)
	}
	return roots, nil
}
