package cache

import (
	"os"

	"github.com/cperrin88/envpkgsearch/pkg/fsutil"
)

// CacheDirPerm is the default permission mode for cache directories (rwx------).
var CacheDirPerm os.FileMode = fsutil.DirModePrivate

const (
	// StoreFormatVersion is written to every saved store.
	StoreFormatVersion = "1"
	// InitialEnvironmentCapacity is the initial slice capacity for cached environments.
	InitialEnvironmentCapacity = 32
)
