package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cperrin88/envpkgsearch/pkg/environment"
	"github.com/cperrin88/envpkgsearch/pkg/errors"
)

func testEnv(exe string, creator environment.Creator) *environment.Environment {
	prefix := filepath.Dir(filepath.Dir(exe))
	return &environment.Environment{
		ID:               environment.NewID(exe),
		Creator:          creator,
		Path:             prefix,
		Executable:       exe,
		BasePrefix:       prefix,
		DetectedPackages: map[string]environment.Package{},
	}
}

func TestStore(t *testing.T) {
	t.Run("NewStore", func(t *testing.T) {
		s := NewStore()
		assert.Equal(t, StoreFormatVersion, s.FormatVersion)
		assert.WithinDuration(t, time.Now(), s.LastUpdate, time.Second)
		assert.Empty(t, s.Environments)
	})

	t.Run("UpsertFindRemove", func(t *testing.T) {
		s := NewStore()
		conda := testEnv("/opt/conda/bin/python", environment.CreatorConda)
		system := testEnv("/usr/bin/python3", environment.CreatorSystem)

		assert.True(t, s.Upsert(system))
		assert.True(t, s.Upsert(conda))
		assert.Equal(t, 2, s.Len())

		found := s.Find(conda.ID)
		require.NotNil(t, found)
		assert.Equal(t, conda.Executable, found.Executable)
		assert.Nil(t, s.Find("missing"))

		assert.Equal(t, system, s.FindByExecutable("/usr/bin/python3"))
		assert.Nil(t, s.FindByExecutable("/nowhere/python"))

		all := s.All()
		require.Len(t, all, 2)
		assert.Equal(t, "/opt/conda/bin/python", all[0].Executable)

		assert.Equal(t, []*environment.Environment{conda}, s.Filter(environment.CreatorConda))
		assert.Len(t, s.Filter(""), 2)
		assert.Empty(t, s.Filter(environment.CreatorPipx))

		assert.True(t, s.Remove(conda.ID))
		assert.False(t, s.Remove(conda.ID))
		assert.Equal(t, 1, s.Len())
	})

	t.Run("UpsertKeepsInventory", func(t *testing.T) {
		s := NewStore()
		scanned := testEnv("/usr/bin/python3", environment.CreatorSystem)
		at := time.Unix(1700000000, 0)
		scanned.RefreshPackages(map[string]environment.Package{"pip": {Version: "24.0"}}, at)
		s.Upsert(scanned)

		fresh := testEnv("/usr/bin/python3", environment.CreatorSystem)
		fresh.Version = "3.12.1"
		assert.False(t, s.Upsert(fresh))

		got := s.Find(fresh.ID)
		assert.Equal(t, "3.12.1", got.Version)
		assert.Equal(t, at, got.LastScanTime)
		assert.Contains(t, got.DetectedPackages, "pip")
	})

	t.Run("Prune", func(t *testing.T) {
		s := NewStore()
		keep := testEnv("/usr/bin/python3", environment.CreatorSystem)
		gone := testEnv("/opt/old/bin/python", environment.CreatorConda)
		s.Upsert(keep)
		s.Upsert(gone)

		removed := s.Prune(func(exe string) bool { return exe == keep.Executable })
		assert.Equal(t, []string{gone.ID}, removed)
		assert.Equal(t, 1, s.Len())
		assert.NotNil(t, s.Find(keep.ID))
	})

	t.Run("PruneDefaultProbe", func(t *testing.T) {
		s := NewStore()
		s.Upsert(testEnv(filepath.Join(t.TempDir(), "bin", "python"), environment.CreatorVenv))
		assert.Len(t, s.Prune(nil), 1)
		assert.Zero(t, s.Len())
	})
}

func TestStore_LoadAndSave(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "nested", "environments.json")

	s := NewStore()
	env := testEnv("/home/u/.pyenv/versions/3.11.4/bin/python", environment.CreatorPyenv)
	env.Version = "3.11.4"
	s.Upsert(env)

	t.Run("Save", func(t *testing.T) {
		require.NoError(t, s.Save(path))
		assert.FileExists(t, path)

		leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), "*.tmp"))
		require.NoError(t, err)
		assert.Empty(t, leftovers)

		if runtime.GOOS != "windows" {
			info, err := os.Stat(filepath.Dir(path))
			require.NoError(t, err)
			assert.Equal(t, os.FileMode(CacheDirPerm), info.Mode().Perm())
		}
	})

	t.Run("Load", func(t *testing.T) {
		loaded := NewStore()
		require.NoError(t, loaded.Load(path))
		require.Equal(t, 1, loaded.Len())
		got := loaded.Find(env.ID)
		require.NotNil(t, got)
		assert.Equal(t, "3.11.4", got.Version)
		assert.Equal(t, environment.CreatorPyenv, got.Creator)
	})

	t.Run("LoadMissing", func(t *testing.T) {
		loaded := NewStore()
		require.NoError(t, loaded.Load(filepath.Join(tempDir, "absent.json")))
		assert.Zero(t, loaded.Len())
	})

	t.Run("LoadInvalid", func(t *testing.T) {
		bad := filepath.Join(tempDir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte("invalid json"), 0o644))
		assert.ErrorIs(t, NewStore().Load(bad), errors.ErrCacheLoad)
	})

	t.Run("LoadMalformedEnvironment", func(t *testing.T) {
		bad := filepath.Join(tempDir, "malformed.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{"format_version":"1","environments":[{"id":"x"}]}`), 0o644))
		err := NewStore().Load(bad)
		assert.ErrorIs(t, err, errors.ErrCacheLoad)
		assert.ErrorIs(t, err, errors.ErrMalformedEnvironment)
	})

	t.Run("RelativePath", func(t *testing.T) {
		assert.ErrorIs(t, s.Save("environments.json"), errors.ErrInvalidPath)
		assert.ErrorIs(t, NewStore().Load("environments.json"), errors.ErrInvalidPath)
	})
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := NewStore()
	const numGoroutines = 10

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			s.Upsert(testEnv(fmt.Sprintf("/envs/env-%d/bin/python", id), environment.CreatorVenv))
			_ = s.All()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, numGoroutines, s.Len())
}
