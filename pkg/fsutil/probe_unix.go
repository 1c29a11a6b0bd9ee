//go:build !windows

package fsutil

import (
	"os"

	"golang.org/x/sys/unix"
)

func canExecute(path string, _ os.FileInfo) bool {
	return unix.Access(path, unix.X_OK) == nil
}
