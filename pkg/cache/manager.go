package cache

import (
	"os"
	"path/filepath"
	"time"

	"github.com/cperrin88/envpkgsearch/pkg/errors"
	"github.com/cperrin88/envpkgsearch/pkg/fsutil"
)

// Manager defines the interface for cache management operations.
type Manager interface {
	Clean() (*CleanResult, error)
	GetInfo() (*Info, error)
	GetDirectory() string
	StorePath() string
}

// CleanResult contains information about what was cleaned.
type CleanResult struct {
	TotalFreed   int64
	Environments int
}

// Info represents cache information.
type Info struct {
	Directory    string
	StorePath    string
	TotalSize    int64
	Environments int
	LastUpdate   time.Time
}

// DefaultManager implements the Manager interface for cache operations.
type DefaultManager struct {
	directory string
}

// NewManager creates a new cache manager.
func NewManager(directory string) *DefaultManager {
	return &DefaultManager{
		directory: directory,
	}
}

// NewDefaultManager creates a new cache manager with default directory.
func NewDefaultManager() (*DefaultManager, error) {
	cacheDir, err := fsutil.GetCacheDir()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to get user cache directory")
	}

	if err := os.MkdirAll(cacheDir, CacheDirPerm); err != nil {
		return nil, errors.Wrapf(err, "failed to create cache directory")
	}

	return NewManager(cacheDir), nil
}

// StorePath returns the location of the environment store.
func (cm *DefaultManager) StorePath() string {
	return filepath.Join(cm.directory, fsutil.EnvironmentCacheFile)
}

// Clean removes the environment store.
func (cm *DefaultManager) Clean() (*CleanResult, error) {
	result := &CleanResult{}
	path := cm.StorePath()

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return result, nil
	}
	if err != nil {
		return nil, errors.Wrapf(ErrCacheClean, "stat %s: %v", path, err)
	}

	store := NewStore()
	if err := store.Load(path); err == nil {
		result.Environments = store.Len()
	}

	if err := os.Remove(path); err != nil {
		return nil, errors.Wrapf(ErrCacheClean, "remove %s: %v", path, err)
	}
	result.TotalFreed = info.Size()
	return result, nil
}

// GetInfo returns information about the cache.
func (cm *DefaultManager) GetInfo() (*Info, error) {
	info := &Info{
		Directory: cm.directory,
		StorePath: cm.StorePath(),
	}

	size, _, err := getDirSizeAndFiles(cm.directory)
	if err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrapf(ErrCacheInfo, "%v", err)
	}
	info.TotalSize = size

	store := NewStore()
	if err := store.Load(info.StorePath); err != nil {
		return nil, errors.Wrapf(ErrCacheInfo, "%v", err)
	}
	info.Environments = store.Len()
	if fsutil.FileExists(info.StorePath) {
		info.LastUpdate = store.LastUpdate
	}
	return info, nil
}

// GetDirectory returns the cache directory.
func (cm *DefaultManager) GetDirectory() string {
	return cm.directory
}

// getDirSizeAndFiles calculates directory size and file count.
// Returns:
//   - size: total size of all files in bytes
//   - count: total number of files
//   - err: any error that occurred during the operation
func getDirSizeAndFiles(dir string) (size int64, count int, err error) {
	if _, err = os.Stat(dir); os.IsNotExist(err) {
		return 0, 0, nil
	}

	err = filepath.Walk(dir, func(_ string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !info.IsDir() {
			size += info.Size()
			count++
		}
		return nil
	})
	if err != nil {
		err = errors.Wrapf(err, "error walking directory %s", dir)
	}
	return size, count, err
}
