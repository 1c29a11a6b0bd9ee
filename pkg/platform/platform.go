package platform

import (
	"fmt"
	"runtime"
	"strings"
)

// Platform represents the host platform with OS and Architecture.
type Platform struct {
	OS   string `yaml:"os" json:"os"`
	Arch string `yaml:"arch" json:"arch"`
}

// CurrentPlatform returns the current platform (OS and architecture)
func CurrentPlatform() Platform {
	goos := runtime.GOOS
	if goos == "" {
		goos = "unknown"
	}

	goarch := runtime.GOARCH
	if goarch == "" {
		goarch = "unknown"
	}

	return Platform{
		OS:   NormalizeOS(goos),
		Arch: goarch,
	}
}

// String returns a string representation of the platform
func (p Platform) String() string {
	return fmt.Sprintf("%s/%s", p.OS, p.Arch)
}

// NormalizeOS normalizes OS names to the GOOS spelling
func NormalizeOS(os string) string {
	os = strings.ToLower(strings.TrimSpace(os))
	switch os {
	case "macos", "osx":
		return OSDarwin
	case "win", "win32", "windows":
		return OSWindows
	default:
		return os
	}
}

// PythonExecutableNames returns the interpreter file names probed on goos,
// in probe order.
func PythonExecutableNames(goos string) []string {
	names := make([]string, 0, len(pythonBaseNames))
	for _, name := range pythonBaseNames {
		if NormalizeOS(goos) == OSWindows {
			name += ExeSuffix
		}
		names = append(names, name)
	}
	return names
}

// ScriptsDir returns the name of the directory holding interpreters inside
// an environment prefix.
func ScriptsDir(goos string) string {
	if NormalizeOS(goos) == OSWindows {
		return WindowsScriptsDir
	}
	return BinDir
}

// CaseInsensitiveFS reports whether the default filesystem of goos compares
// paths case-insensitively.
func CaseInsensitiveFS(goos string) bool {
	switch NormalizeOS(goos) {
	case OSWindows, OSDarwin:
		return true
	default:
		return false
	}
}
