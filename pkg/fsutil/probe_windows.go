//go:build windows

package fsutil

import (
	"os"
	"path/filepath"
	"strings"
)

var executableExts = map[string]bool{
	".exe": true,
	".bat": true,
	".cmd": true,
	".com": true,
}

func canExecute(path string, _ os.FileInfo) bool {
	return executableExts[strings.ToLower(filepath.Ext(path))]
}
