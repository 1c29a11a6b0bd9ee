package fsutil

import "os"

// IsExecutable reports whether path names an existing regular file the current
// user may execute. Missing or unreadable paths return false. Symlinks are
// followed, so a link to an interpreter counts as the interpreter.
func IsExecutable(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return false
	}
	return canExecute(path, info)
}
