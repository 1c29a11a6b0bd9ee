package cache

import (
	"fmt"
	"time"

	"github.com/cperrin88/envpkgsearch/pkg/errors"
	"github.com/cperrin88/envpkgsearch/pkg/logger"
)

// Operation runs cache commands and renders their results for humans.
type Operation struct {
	manager Manager
}

// NewOperation creates a new cache operation instance.
func NewOperation(manager Manager) *Operation {
	return &Operation{
		manager: manager,
	}
}

// Clean removes the environment store.
func (op *Operation) Clean() (string, error) {
	logger.Debug("Cleaning cache", logger.Fields{"path": op.manager.StorePath()})

	result, err := op.manager.Clean()
	if err != nil {
		return "", err
	}

	if result.TotalFreed == 0 {
		return "No files were removed from the cache.", nil
	}
	return fmt.Sprintf("Successfully cleaned cache. Freed %s of disk space (%d environments).",
		formatBytes(result.TotalFreed), result.Environments), nil
}

// GetInfo returns information about the cache.
func (op *Operation) GetInfo() (string, error) {
	info, err := op.manager.GetInfo()
	if err != nil {
		return "", errors.Wrap(err, "cache info")
	}

	lastUpdate := "never"
	if !info.LastUpdate.IsZero() {
		lastUpdate = info.LastUpdate.Format(time.RFC1123)
	}

	return fmt.Sprintf(`Cache Information:
  Directory:    %s
  Store:        %s
  Total Size:   %s
  Environments: %d
  Last Update:  %s`,
		info.Directory,
		info.StorePath,
		formatBytes(info.TotalSize),
		info.Environments,
		lastUpdate,
	), nil
}

// GetDirectory returns the cache directory path.
func (op *Operation) GetDirectory() string {
	return op.manager.GetDirectory()
}

// formatBytes converts bytes to a human-readable string.
func formatBytes(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}

	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}

	units := []string{"K", "M", "G", "T", "P", "E"}
	if exp < len(units) {
		return fmt.Sprintf("%.1f %sB", float64(bytes)/float64(div), units[exp])
	}
	return fmt.Sprintf("%d B", bytes)
}
