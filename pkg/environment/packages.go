package environment

import (
	"bufio"
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/cperrin88/envpkgsearch/pkg/fsutil"
)

// Distribution metadata directories.
const (
	distInfoSuffix = ".dist-info"
	eggInfoSuffix  = ".egg-info"
)

var nameSeparators = regexp.MustCompile(`[-_.]+`)

// CanonicalName normalizes a distribution name so "Foo_Bar" and "foo-bar"
// refer to the same package.
func CanonicalName(name string) string {
	return strings.ToLower(nameSeparators.ReplaceAllString(strings.TrimSpace(name), "-"))
}

// ScanPackages lists the distributions installed in dirs from their
// *.dist-info and *.egg-info metadata directories. Earlier directories win
// when a package appears twice, matching the interpreter's search order.
func ScanPackages(ctx context.Context, dirs []string) (map[string]Package, error) {
	pkgs := map[string]Package{}
	for _, dir := range dirs {
		if err := ctx.Err(); err != nil {
			return pkgs, err
		}
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}
		for _, entry := range entries {
			name := entry.Name()
			if !strings.HasSuffix(name, distInfoSuffix) && !strings.HasSuffix(name, eggInfoSuffix) {
				continue
			}
			location := filepath.Join(dir, name)
			pkgName, pkgVersion := distributionName(location)
			if pkgName == "" {
				continue
			}
			key := CanonicalName(pkgName)
			if _, seen := pkgs[key]; seen {
				continue
			}
			pkgs[key] = Package{Version: pkgVersion, Location: location}
		}
	}
	return pkgs, nil
}

// distributionName reads Name and Version from the metadata file, falling
// back to the "<name>-<version>" directory name.
func distributionName(location string) (string, string) {
	base := filepath.Base(location)
	base = strings.TrimSuffix(strings.TrimSuffix(base, distInfoSuffix), eggInfoSuffix)
	name, ver, _ := strings.Cut(base, "-")
	// egg-info names may carry a python tag: "pkg-1.0-py3.11".
	ver, _, _ = strings.Cut(ver, "-py")

	for _, file := range []string{"METADATA", "PKG-INFO"} {
		metaName, metaVersion := readMetadataHeaders(filepath.Join(location, file))
		if metaName != "" {
			name = metaName
		}
		if metaVersion != "" {
			ver = metaVersion
		}
		if metaName != "" || metaVersion != "" {
			break
		}
	}
	return name, ver
}

// readMetadataHeaders reads the Name and Version headers of a core metadata file.
func readMetadataHeaders(path string) (string, string) {
	if !fsutil.FileExists(path) {
		return "", ""
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return "", ""
	}
	defer func() { _ = f.Close() }()

	var name, ver string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			// Headers end at the first blank line.
			break
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "name":
			name = strings.TrimSpace(value)
		case "version":
			ver = strings.TrimSpace(value)
		}
	}
	return name, ver
}
