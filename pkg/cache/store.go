// Package cache persists discovered environments between runs and manages
// the cache directory they live in.
package cache

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/cperrin88/envpkgsearch/pkg/environment"
	"github.com/cperrin88/envpkgsearch/pkg/errors"
	"github.com/cperrin88/envpkgsearch/pkg/fsutil"
)

// Store is the JSON-backed set of known environments.
type Store struct {
	FormatVersion string                     `json:"format_version"`
	LastUpdate    time.Time                  `json:"last_update"`
	Environments  []*environment.Environment `json:"environments"`
	rwMutex       sync.RWMutex
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		FormatVersion: StoreFormatVersion,
		LastUpdate:    time.Now(),
		Environments:  make([]*environment.Environment, 0, InitialEnvironmentCapacity),
	}
}

// Load reads the store from path. A missing file leaves the store empty.
func (s *Store) Load(path string) error {
	cleanPath := filepath.Clean(path)
	if !filepath.IsAbs(cleanPath) {
		return fmt.Errorf("cache path must be absolute: %s: %w", path, errors.ErrInvalidPath)
	}

	if _, err := os.Stat(cleanPath); os.IsNotExist(err) {
		return nil
	}

	file, err := os.Open(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to open cache file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return s.parseFromReader(file)
}

// Save writes the store to path atomically, creating the directory if needed.
func (s *Store) Save(path string) (err error) {
	cleanPath := filepath.Clean(path)
	if !filepath.IsAbs(cleanPath) {
		return fmt.Errorf("cache path must be absolute: %s: %w", path, errors.ErrInvalidPath)
	}

	dir := filepath.Dir(cleanPath)
	if err := fsutil.EnsureFileDirMode(cleanPath, CacheDirPerm); err != nil {
		return fmt.Errorf("failed to create cache directory %s: %w", dir, errors.ErrCacheSave)
	}

	tmpFile, err := os.CreateTemp(dir, "envpkgsearch-cache-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file in %s: %w", dir, err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpPath)
		}
	}()

	s.rwMutex.RLock()
	data, err := json.MarshalIndent(s, "", "  ")
	s.rwMutex.RUnlock()
	if err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("failed to marshal cache to JSON: %w", errors.ErrCacheSave)
	}

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("failed to write to temporary file: %w", err)
	}

	if err := tmpFile.Sync(); err != nil {
		_ = tmpFile.Close()
		return fmt.Errorf("failed to sync temporary file to disk: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Chmod(tmpPath, fsutil.FileModeDefault); err != nil {
		return fmt.Errorf("failed to set cache file permissions: %w", err)
	}

	if err := os.Rename(tmpPath, cleanPath); err != nil {
		return fmt.Errorf("failed to rename temporary file to %s: %w", cleanPath, err)
	}

	return nil
}

// Upsert adds env or replaces the cached environment with the same ID. A
// replacement keeps the previous package inventory when env was never scanned.
// It reports whether env was new.
func (s *Store) Upsert(env *environment.Environment) bool {
	s.rwMutex.Lock()
	defer s.rwMutex.Unlock()

	s.LastUpdate = time.Now()
	for i, existing := range s.Environments {
		if existing.Equal(env) {
			if !env.Scanned() && existing.Scanned() {
				env.RefreshPackages(existing.DetectedPackages, existing.LastScanTime)
			}
			s.Environments[i] = env
			return false
		}
	}

	s.Environments = append(s.Environments, env)
	return true
}

// Find returns the environment with the given ID.
func (s *Store) Find(id string) *environment.Environment {
	s.rwMutex.RLock()
	defer s.rwMutex.RUnlock()

	for _, env := range s.Environments {
		if env.ID == id {
			return env
		}
	}
	return nil
}

// FindByExecutable returns the environment of the interpreter at executable.
func (s *Store) FindByExecutable(executable string) *environment.Environment {
	id := environment.NewID(executable)
	if env := s.Find(id); env != nil {
		return env
	}

	s.rwMutex.RLock()
	defer s.rwMutex.RUnlock()
	for _, env := range s.Environments {
		if env.Executable == executable {
			return env
		}
	}
	return nil
}

// Remove deletes the environment with the given ID.
func (s *Store) Remove(id string) bool {
	s.rwMutex.Lock()
	defer s.rwMutex.Unlock()

	for i, env := range s.Environments {
		if env.ID == id {
			s.Environments = append(s.Environments[:i], s.Environments[i+1:]...)
			s.LastUpdate = time.Now()
			return true
		}
	}
	return false
}

// All returns the cached environments sorted by executable.
func (s *Store) All() []*environment.Environment {
	s.rwMutex.RLock()
	defer s.rwMutex.RUnlock()

	return environment.NewSet(s.Environments...).Sorted()
}

// Filter returns the cached environments made by creator, sorted by
// executable. An empty creator matches all.
func (s *Store) Filter(creator environment.Creator) []*environment.Environment {
	all := s.All()
	if creator == "" {
		return all
	}
	var filtered []*environment.Environment
	for _, env := range all {
		if env.Creator == creator {
			filtered = append(filtered, env)
		}
	}
	return filtered
}

// Prune removes environments whose interpreter is no longer usable and
// returns the removed IDs. A nil exists uses fsutil.IsExecutable.
func (s *Store) Prune(exists func(executable string) bool) []string {
	if exists == nil {
		exists = fsutil.IsExecutable
	}

	s.rwMutex.Lock()
	defer s.rwMutex.Unlock()

	kept := s.Environments[:0]
	var removed []string
	for _, env := range s.Environments {
		if exists(env.Executable) {
			kept = append(kept, env)
			continue
		}
		removed = append(removed, env.ID)
	}
	s.Environments = kept
	if len(removed) > 0 {
		s.LastUpdate = time.Now()
	}
	return removed
}

// Len returns the number of cached environments.
func (s *Store) Len() int {
	s.rwMutex.RLock()
	defer s.rwMutex.RUnlock()
	return len(s.Environments)
}

func (s *Store) parseFromReader(reader io.Reader) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", errors.ErrCacheLoad)
	}

	s.rwMutex.Lock()
	defer s.rwMutex.Unlock()
	if err := json.Unmarshal(data, s); err != nil {
		return fmt.Errorf("%w: %w", errors.ErrCacheLoad, err)
	}
	if s.Environments == nil {
		s.Environments = make([]*environment.Environment, 0, InitialEnvironmentCapacity)
	}
	return nil
}
