package fsutil

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
)

// EnsureDir creates a directory and all necessary parent directories with DirModeDefault.
func EnsureDir(path string) error {
	return EnsureDirMode(path, DirModeDefault)
}

// EnsureDirMode creates a directory and its missing parents with perm.
// Existing directories keep their mode.
func EnsureDirMode(path string, perm os.FileMode) error {
	return os.MkdirAll(path, perm)
}

// EnsureFileDir creates the parent directory of a file path if it doesn't exist.
func EnsureFileDir(filePath string) error {
	return EnsureDir(filepath.Dir(filePath))
}

// EnsureFileDirMode creates the parent directory of a file path with perm.
func EnsureFileDirMode(filePath string, perm os.FileMode) error {
	return EnsureDirMode(filepath.Dir(filePath), perm)
}

// DirExists reports whether path names an existing directory. Symlinks are followed.
func DirExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// FileExists reports whether path names an existing regular file.
func FileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// GlobDirs expands pattern and returns the sorted matches that are directories.
// A malformed pattern yields nil.
func GlobDirs(pattern string) []string {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil
	}
	dirs := make([]string, 0, len(matches))
	for _, m := range matches {
		if DirExists(m) {
			dirs = append(dirs, m)
		}
	}
	sort.Strings(dirs)
	return dirs
}

// GlobDirsUnder is GlobDirs for the pattern elems joined below root. Root is
// taken literally, so a directory named like "envs[1]" is not read as a
// character class.
func GlobDirsUnder(root string, elem ...string) []string {
	return GlobDirs(filepath.Join(append([]string{EscapeGlob(root)}, elem...)...))
}

// EscapeGlob quotes the filepath.Match metacharacters in s. Bracketed
// classes are used because backslash is the separator on Windows.
func EscapeGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '*', '?', '[':
			b.WriteByte('[')
			b.WriteRune(r)
			b.WriteByte(']')
		case '\\':
			if runtime.GOOS != "windows" {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
