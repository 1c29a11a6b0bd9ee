package fsutil

import (
	"os"
	"path/filepath"
)

const (
	// AppName is the name of the application used in paths
	AppName = "envpkgsearch"
	// EnvironmentCacheFile is the file name of the discovered environment cache.
	EnvironmentCacheFile = "environments.json"
)

// GetCacheDir returns the platform-specific cache directory for the application
// On Linux: ~/.cache/envpkgsearch/
// On macOS: ~/Library/Caches/envpkgsearch/
// On Windows: %LOCALAPPDATA%\envpkgsearch\
func GetCacheDir() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cacheDir, AppName), nil
}

// HomeDir returns the current user's home directory, or "" when it cannot be
// determined. Discovery sources rooted in the home directory are skipped then.
func HomeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}
