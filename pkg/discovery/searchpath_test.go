package discovery

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchPath_Discover(t *testing.T) {
	root := t.TempDir()
	bin := filepath.Join(root, "bin")
	local := filepath.Join(root, "local", "bin")

	want := []string{
		touchExe(t, filepath.Join(bin, exe("python3"))),
		touchExe(t, filepath.Join(local, exe("python"))),
		touchExe(t, filepath.Join(local, exe("python3"))),
	}
	// Not canonical names.
	touchExe(t, filepath.Join(bin, exe("python3.11")))
	touchExe(t, filepath.Join(bin, exe("pip")))

	pathList := strings.Join([]string{
		bin,
		"",
		"   ",
		filepath.Join(root, "missing"),
		filepath.Join(bin, exe("python3")), // a file, not a directory
		local,
		bin, // duplicate entry
	}, string(os.PathListSeparator))

	got, err := NewSearchPath(testHost(), pathList).Discover(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, want, got.Sorted())
	assert.Equal(t, SourceSearchPath, NewSearchPath(testHost(), "").Name())
}

func TestSearchPath_SkipsNonExecutable(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("execute permission bits are not used on windows")
	}
	if os.Geteuid() == 0 {
		t.Skip("root passes access checks regardless of mode")
	}

	bin := t.TempDir()
	touchFile(t, filepath.Join(bin, "python3"))

	got, err := NewSearchPath(testHost(), bin).Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}

func TestSearchPath_EmptyList(t *testing.T) {
	got, err := NewSearchPath(testHost(), "").Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, got.Len())
}

func TestSearchPath_CanceledContext(t *testing.T) {
	bin := t.TempDir()
	touchExe(t, filepath.Join(bin, exe("python3")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := NewSearchPath(testHost(), bin).Discover(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NotNil(t, got)
}

func TestSearchPath_InjectedProbe(t *testing.T) {
	// A probe that accepts everything shows the strategy only asks for the
	// canonical names inside existing directories.
	dir := t.TempDir()
	var asked []string
	host := Host{
		GOOS:       "linux",
		Normalizer: Normalizer{},
		Probe: func(path string) bool {
			asked = append(asked, path)
			return true
		},
	}

	got, err := NewSearchPath(host, dir).Discover(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "python"), filepath.Join(dir, "python3")}, asked)
	assert.Equal(t, 2, got.Len())
}
