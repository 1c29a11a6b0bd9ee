// Package environment models discovered Python environments: the
// interpreter, its prefix and version, and the packages installed in it.
package environment

import (
	"crypto/sha256"
	"encoding/hex"
	"hash/fnv"
	"time"

	"github.com/hashicorp/go-version"

	"github.com/cperrin88/envpkgsearch/pkg/discovery"
	"github.com/cperrin88/envpkgsearch/pkg/errors"
	"github.com/cperrin88/envpkgsearch/pkg/fsutil"
)

// Creator names the tool that created an environment.
type Creator string

const (
	CreatorSystem  Creator = "system"
	CreatorPyenv   Creator = "pyenv"
	CreatorConda   Creator = "conda"
	CreatorPipx    Creator = "pipx"
	CreatorVenv    Creator = "venv"
	CreatorUnknown Creator = "unknown"
)

// IDLength is the number of hex characters of an environment ID.
const IDLength = 16

// IsKnown reports whether c is one of the predefined creators. Unknown values
// read from a cache are kept as they are.
func (c Creator) IsKnown() bool {
	switch c {
	case CreatorSystem, CreatorPyenv, CreatorConda, CreatorPipx, CreatorVenv, CreatorUnknown:
		return true
	}
	return false
}

// CreatorFromSource maps a discovery source name to a creator.
func CreatorFromSource(source string) Creator {
	switch source {
	case discovery.SourceSearchPath:
		return CreatorSystem
	case discovery.SourcePyenv:
		return CreatorPyenv
	case discovery.SourceConda:
		return CreatorConda
	case discovery.SourcePipx:
		return CreatorPipx
	default:
		return CreatorUnknown
	}
}

// Package is one installed distribution.
type Package struct {
	Version  string `json:"version"`
	Location string `json:"location"`
}

// Environment is one Python installation or virtual environment. Two
// environments are the same environment iff their IDs are equal.
type Environment struct {
	ID               string
	Creator          Creator
	Path             string
	Executable       string
	Version          string
	SitePackagesDirs []string
	UserSiteDir      *string
	BasePrefix       string
	DetectedPackages map[string]Package
	LastScanTime     time.Time
}

// Option configures an Environment built by New.
type Option func(*Environment)

// WithPath sets the environment prefix.
func WithPath(path string) Option {
	return func(e *Environment) { e.Path = path }
}

// WithVersion sets the interpreter version string.
func WithVersion(v string) Option {
	return func(e *Environment) { e.Version = v }
}

// WithSitePackagesDirs sets the site-packages search order.
func WithSitePackagesDirs(dirs ...string) Option {
	return func(e *Environment) { e.SitePackagesDirs = append([]string(nil), dirs...) }
}

// WithUserSiteDir sets the user site-packages directory.
func WithUserSiteDir(dir string) Option {
	return func(e *Environment) { e.UserSiteDir = &dir }
}

// WithBasePrefix sets the installation root a virtual environment was made from.
func WithBasePrefix(prefix string) Option {
	return func(e *Environment) { e.BasePrefix = prefix }
}

// WithLayout applies everything an Introspector found.
func WithLayout(l Layout) Option {
	return func(e *Environment) {
		if l.Prefix != "" {
			e.Path = l.Prefix
		}
		e.Version = l.Version
		e.SitePackagesDirs = append([]string(nil), l.SitePackagesDirs...)
		if l.UserSiteDir != "" {
			dir := l.UserSiteDir
			e.UserSiteDir = &dir
		}
		e.BasePrefix = l.BasePrefix
	}
}

// NewID derives the stable identifier of the interpreter at executable,
// which must already be normalized.
func NewID(executable string) string {
	sum := sha256.Sum256([]byte(executable))
	return hex.EncodeToString(sum[:])[:IDLength]
}

// New creates the environment of the interpreter at executable. The path is
// normalized the way discovery normalizes it, so IDs agree with discovery
// results. Path defaults to the prefix derived from the executable and
// BasePrefix defaults to Path.
func New(executable string, creator Creator, opts ...Option) (*Environment, error) {
	if !fsutil.IsExecutable(executable) {
		return nil, errors.Wrapf(errors.ErrNotExecutable, "%s", executable)
	}
	normalized := discovery.DefaultNormalizer().Normalize(executable)
	if creator == "" {
		creator = CreatorUnknown
	}

	env := &Environment{
		ID:               NewID(normalized),
		Creator:          creator,
		Executable:       normalized,
		DetectedPackages: map[string]Package{},
	}
	for _, opt := range opts {
		opt(env)
	}
	if env.Path == "" {
		env.Path = PrefixOf(normalized, "")
	}
	if env.BasePrefix == "" {
		env.BasePrefix = env.Path
	}
	if env.DetectedPackages == nil {
		env.DetectedPackages = map[string]Package{}
	}
	return env, nil
}

// Equal reports whether e and other identify the same environment.
func (e *Environment) Equal(other *Environment) bool {
	if e == nil || other == nil {
		return e == other
	}
	return e.ID == other.ID
}

// Key returns the map key of the environment.
func (e *Environment) Key() string {
	return e.ID
}

// Hash returns a hash of the environment identity.
func (e *Environment) Hash() uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(e.ID))
	return h.Sum64()
}

// IsVirtual reports whether the environment was created from another installation.
func (e *Environment) IsVirtual() bool {
	return e.BasePrefix != e.Path
}

// RefreshPackages replaces the package inventory with the result of a scan
// finished at at.
func (e *Environment) RefreshPackages(pkgs map[string]Package, at time.Time) {
	inventory := make(map[string]Package, len(pkgs))
	for name, pkg := range pkgs {
		inventory[name] = pkg
	}
	e.DetectedPackages = inventory
	e.LastScanTime = at
}

// Scanned reports whether a package scan ever ran.
func (e *Environment) Scanned() bool {
	return !e.LastScanTime.IsZero()
}

// ParsedVersion parses the interpreter version.
func (e *Environment) ParsedVersion() (*version.Version, error) {
	return version.NewVersion(e.Version)
}
