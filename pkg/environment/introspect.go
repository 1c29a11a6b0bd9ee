//go:generate mockgen -destination=./mocks/environment.go . Introspector

package environment

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"github.com/hashicorp/go-version"

	"github.com/cperrin88/envpkgsearch/pkg/errors"
	"github.com/cperrin88/envpkgsearch/pkg/fsutil"
	"github.com/cperrin88/envpkgsearch/pkg/platform"
)

// PyvenvConfigFile marks the prefix of a virtual environment.
const PyvenvConfigFile = "pyvenv.cfg"

// Layout is what an Introspector learns about the installation of an interpreter.
type Layout struct {
	Prefix           string
	Version          string
	SitePackagesDirs []string
	UserSiteDir      string
	BasePrefix       string
}

// Introspector derives the layout of the installation behind an interpreter.
type Introspector interface {
	Introspect(ctx context.Context, executable string) (Layout, error)
}

// LayoutIntrospector reads the layout from the filesystem only. It never
// runs the interpreter.
type LayoutIntrospector struct {
	// GOOS selects the platform layout; empty means the running platform.
	GOOS string
	// Home is used for the user site directory; empty disables it.
	Home string
}

var leadingVersion = regexp.MustCompile(`^\d+(\.\d+)*`)

// Introspect implements Introspector.
func (li LayoutIntrospector) Introspect(ctx context.Context, executable string) (Layout, error) {
	if err := ctx.Err(); err != nil {
		return Layout{}, err
	}
	if !fsutil.IsExecutable(executable) {
		return Layout{}, errors.Wrapf(errors.ErrNotExecutable, "%s", executable)
	}

	goos := li.goos()
	prefix := PrefixOf(executable, goos)
	cfg := readPyvenvConfig(filepath.Join(prefix, PyvenvConfigFile))

	layout := Layout{Prefix: prefix, BasePrefix: prefix}
	if home := cfg["home"]; home != "" {
		// home is the directory holding the base interpreter.
		layout.BasePrefix = PrefixOf(filepath.Join(home, "python"), goos)
	}

	layout.Version = firstValidVersion(
		cfg["version"],
		cfg["version_info"],
		versionFromPyenvDir(prefix),
		versionFromLibDir(prefix),
	)
	layout.SitePackagesDirs = sitePackagesDirs(prefix, goos)

	virtual := layout.BasePrefix != layout.Prefix
	if !virtual || strings.EqualFold(cfg["include-system-site-packages"], "true") {
		layout.UserSiteDir = li.userSiteDir(layout.Version, goos)
	}
	return layout, nil
}

func (li LayoutIntrospector) goos() string {
	if li.GOOS == "" {
		return runtime.GOOS
	}
	return platform.NormalizeOS(li.GOOS)
}

// PrefixOf returns the installation prefix of the interpreter at executable:
// the parent of its bin or Scripts directory, else the directory holding it.
// An empty goos means the running platform.
func PrefixOf(executable, goos string) string {
	if goos == "" {
		goos = runtime.GOOS
	}
	dir := filepath.Dir(executable)
	base := filepath.Base(dir)
	if base == platform.BinDir || (platform.NormalizeOS(goos) == platform.OSWindows && strings.EqualFold(base, platform.WindowsScriptsDir)) {
		return filepath.Dir(dir)
	}
	return dir
}

// readPyvenvConfig parses key = value lines; keys are lowercased. A missing
// or unreadable file yields an empty map.
func readPyvenvConfig(path string) map[string]string {
	cfg := map[string]string{}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return cfg
	}
	defer func() { _ = f.Close() }()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		key, value, ok := strings.Cut(scanner.Text(), "=")
		if !ok {
			continue
		}
		cfg[strings.ToLower(strings.TrimSpace(key))] = strings.TrimSpace(value)
	}
	return cfg
}

// firstValidVersion returns the leading dotted release of the first candidate
// go-version accepts, so "3.11.4.final.0" yields "3.11.4".
func firstValidVersion(candidates ...string) string {
	for _, c := range candidates {
		release := leadingVersion.FindString(strings.TrimSpace(c))
		if release == "" {
			continue
		}
		if _, err := version.NewVersion(release); err == nil {
			return release
		}
	}
	return ""
}

// versionFromPyenvDir reads the version from <root>/versions/<version>.
func versionFromPyenvDir(prefix string) string {
	if filepath.Base(filepath.Dir(prefix)) != "versions" {
		return ""
	}
	return filepath.Base(prefix)
}

// versionFromLibDir reads X.Y from <prefix>/lib/pythonX.Y, preferring the
// highest version when several lib directories exist.
func versionFromLibDir(prefix string) string {
	var best *version.Version
	bestRaw := ""
	for _, dir := range fsutil.GlobDirsUnder(prefix, "lib", "python[0-9]*") {
		raw := strings.TrimPrefix(filepath.Base(dir), "python")
		v, err := version.NewVersion(raw)
		if err != nil {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best, bestRaw = v, raw
		}
	}
	return bestRaw
}

func sitePackagesDirs(prefix, goos string) []string {
	if goos == platform.OSWindows {
		dir := filepath.Join(prefix, "Lib", "site-packages")
		if fsutil.DirExists(dir) {
			return []string{dir}
		}
		return []string{}
	}
	dirs := fsutil.GlobDirsUnder(prefix, "lib", "python*", "site-packages")
	if len(dirs) == 0 {
		return []string{}
	}
	return dirs
}

// userSiteDir follows the per-user site-packages scheme of each platform.
// It is only reported when the directory exists.
func (li LayoutIntrospector) userSiteDir(ver, goos string) string {
	if li.Home == "" || ver == "" {
		return ""
	}
	segments := strings.Split(ver, ".")
	if len(segments) < 2 {
		return ""
	}
	major, minor := segments[0], segments[1]

	var dir string
	switch goos {
	case platform.OSWindows:
		dir = filepath.Join(li.Home, "AppData", "Roaming", "Python", "Python"+major+minor, "site-packages")
	case platform.OSDarwin:
		dir = filepath.Join(li.Home, "Library", "Python", major+"."+minor, "lib", "python", "site-packages")
	default:
		dir = filepath.Join(li.Home, ".local", "lib", "python"+major+"."+minor, "site-packages")
	}
	if !fsutil.DirExists(dir) {
		return ""
	}
	return dir
}
