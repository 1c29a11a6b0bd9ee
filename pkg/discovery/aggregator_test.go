package discovery

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cperrin88/envpkgsearch/pkg/errors"
)

func TestAggregator_UnionAndOrigins(t *testing.T) {
	shared := filepath.FromSlash("/home/u/.pyenv/versions/3.11.4/bin/python")
	system := filepath.FromSlash("/usr/bin/python3")
	conda := filepath.FromSlash("/opt/conda/bin/python")

	agg := NewAggregator(Normalizer{},
		staticStrategy{name: SourceSearchPath, paths: []string{system, shared}},
		staticStrategy{name: SourcePyenv, paths: []string{shared}},
		staticStrategy{name: SourceConda, paths: []string{conda}},
	)

	report := agg.Run(context.Background())

	assert.Equal(t, []string{shared, conda, system}, report.Paths)
	assert.Equal(t, []string{SourceSearchPath, SourcePyenv}, report.Origins[shared])
	assert.Equal(t, SourcePyenv, report.Creator(shared))
	assert.Equal(t, SourceConda, report.Creator(conda))
	assert.Equal(t, SourceSearchPath, report.Creator(system))
	assert.Equal(t, "", report.Creator("/nowhere"))

	require.Len(t, report.Sources, 3)
	assert.Equal(t, 2, report.Sources[0].Count)
	assert.Equal(t, 1, report.Sources[1].Count)
	assert.Equal(t, 1, report.Sources[2].Count)
}

func TestAggregator_CreatorUnknownSource(t *testing.T) {
	report := NewAggregator(Normalizer{},
		staticStrategy{name: "custom", paths: []string{"/x/python"}},
	).Run(context.Background())

	assert.Equal(t, "custom", report.Creator("/x/python"))
}

func TestAggregator_RenormalizesStrategyOutput(t *testing.T) {
	agg := NewAggregator(Normalizer{CaseInsensitive: true},
		staticStrategy{name: "a", paths: []string{"/Usr/Bin/Python3"}},
		staticStrategy{name: "b", paths: []string{"/usr/bin/../bin/python3"}},
	)

	paths := agg.DiscoverAll(context.Background())
	assert.Equal(t, []string{filepath.FromSlash("/usr/bin/python3")}, paths)
}

func TestAggregator_FailuresAreAbsorbed(t *testing.T) {
	agg := NewAggregator(Normalizer{},
		staticStrategy{name: SourceSearchPath, paths: []string{"/usr/bin/python3"}},
		staticStrategy{name: SourcePyenv, err: errors.Wrap(errors.ErrNotFound, "pyenv")},
		staticStrategy{name: SourceConda, paths: []string{"/opt/conda/bin/python"}, err: errors.Wrap(errors.ErrTimeout, "conda")},
	)

	report := agg.Run(context.Background())

	assert.Equal(t, []string{"/opt/conda/bin/python", "/usr/bin/python3"}, report.Paths)
	assert.Empty(t, report.Sources[0].Kind)
	assert.Equal(t, "not_found", report.Sources[1].Kind)
	assert.Equal(t, "timeout", report.Sources[2].Kind)
	assert.Contains(t, report.Sources[2].Error, "conda")
	assert.Equal(t, 1, report.Sources[2].Count)
}

func TestAggregator_Empty(t *testing.T) {
	report := NewAggregator(Normalizer{}).Run(context.Background())
	assert.Empty(t, report.Paths)
	assert.Empty(t, report.Sources)
}

func TestAggregator_RunsStrategiesConcurrently(t *testing.T) {
	const n = 4
	var started sync.WaitGroup
	started.Add(n)

	strategies := make([]Strategy, n)
	for i := range strategies {
		strategies[i] = barrierStrategy{started: &started}
	}

	done := make(chan struct{})
	go func() {
		NewAggregator(Normalizer{}, strategies...).Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("strategies did not run concurrently")
	}
}

// barrierStrategy only returns once every barrierStrategy has started.
type barrierStrategy struct {
	started *sync.WaitGroup
}

func (barrierStrategy) Name() string { return "barrier" }

func (b barrierStrategy) Discover(context.Context) (PathSet, error) {
	b.started.Done()
	b.started.Wait()
	return NewPathSet(), nil
}

func TestAggregator_Idempotent(t *testing.T) {
	bin := t.TempDir()
	touchExe(t, filepath.Join(bin, exe("python3")))
	root, _ := fakePyenvRoot(t)

	agg, err := NewDefaultAggregator(Options{
		Host:      testHost(),
		PathList:  bin,
		PyenvRoot: root,
		Runner:    &notFoundRunner{},
	})
	require.NoError(t, err)

	first := agg.DiscoverAll(context.Background())
	second := agg.DiscoverAll(context.Background())
	assert.NotEmpty(t, first)
	assert.Equal(t, first, second)
}

// With no manager tool installed, PATH plus a pyenv layout on disk yields the
// union of both, sorted.
func TestNewDefaultAggregator_EndToEnd(t *testing.T) {
	home := t.TempDir()
	pathBin := filepath.Join(home, "usr", "bin")
	pathPython := touchExe(t, filepath.Join(pathBin, exe("python3")))
	pyenvRoot := filepath.Join(home, ".pyenv")
	pyenvPython := touchExe(t, filepath.Join(pyenvRoot, "versions", "3.11.4", "bin", exe("python")))

	runner := &notFoundRunner{}
	agg, err := NewDefaultAggregator(Options{
		Host:         testHost(),
		PathList:     pathBin,
		PyenvRoot:    pyenvRoot,
		PipxVenvsDir: filepath.Join(home, ".local", "pipx", "venvs"),
		Runner:       runner,
	})
	require.NoError(t, err)

	report := agg.Run(context.Background())

	expected := []string{pathPython, pyenvPython}
	if expected[0] > expected[1] {
		expected[0], expected[1] = expected[1], expected[0]
	}
	assert.Equal(t, expected, report.Paths)
	assert.Equal(t, SourcePyenv, report.Creator(pyenvPython))
	assert.Equal(t, SourceSearchPath, report.Creator(pathPython))
	assert.EqualValues(t, 2, runner.calls.Load(), "pyenv and conda are each asked once")

	kinds := map[string]string{}
	for _, src := range report.Sources {
		kinds[src.Name] = src.Kind
	}
	assert.Equal(t, map[string]string{
		SourceSearchPath: "",
		SourcePyenv:      "not_found",
		SourceConda:      "not_found",
		SourcePipx:       "",
	}, kinds)
}

func TestNewDefaultAggregator_TimeoutContainment(t *testing.T) {
	bin := t.TempDir()
	pathPython := touchExe(t, filepath.Join(bin, exe("python3")))

	agg, err := NewDefaultAggregator(Options{
		Host:     testHost(),
		PathList: bin,
		Runner:   hangingRunner{},
		Tool:     ToolOptions{Timeout: 100 * time.Millisecond},
	})
	require.NoError(t, err)

	start := time.Now()
	report := agg.Run(context.Background())

	assert.Less(t, time.Since(start), 5*time.Second)
	assert.Equal(t, []string{pathPython}, report.Paths)
	for _, src := range report.Sources {
		if src.Name == SourcePyenv || src.Name == SourceConda {
			assert.Equal(t, "timeout", src.Kind, src.Name)
		}
	}
}

func TestBuildStrategies(t *testing.T) {
	t.Run("all sources by default in run order", func(t *testing.T) {
		strategies, err := BuildStrategies(Options{})
		require.NoError(t, err)

		var names []string
		for _, s := range strategies {
			names = append(names, s.Name())
		}
		assert.Equal(t, AllSources(), names)
	})

	t.Run("subset keeps run order", func(t *testing.T) {
		strategies, err := BuildStrategies(Options{Sources: []string{SourcePipx, SourceSearchPath}})
		require.NoError(t, err)
		require.Len(t, strategies, 2)
		assert.Equal(t, SourceSearchPath, strategies[0].Name())
		assert.Equal(t, SourcePipx, strategies[1].Name())
	})

	t.Run("unknown source", func(t *testing.T) {
		_, err := BuildStrategies(Options{Sources: []string{"homebrew"}})
		assert.ErrorIs(t, err, errors.ErrUnknownSource)
		assert.True(t, strings.Contains(err.Error(), "homebrew"))

		_, err = NewDefaultAggregator(Options{Sources: []string{"homebrew"}})
		assert.Error(t, err)
	})
}

func TestNewDefaultAggregator_PathFromEnvironment(t *testing.T) {
	bin := t.TempDir()
	pathPython := touchExe(t, filepath.Join(bin, exe("python3")))
	t.Setenv("PATH", bin+string(os.PathListSeparator)+os.Getenv("PATH"))

	agg, err := NewDefaultAggregator(Options{
		Host:     testHost(),
		PathList: os.Getenv("PATH"),
		Sources:  []string{SourceSearchPath},
	})
	require.NoError(t, err)
	assert.Contains(t, agg.DiscoverAll(context.Background()), pathPython)
}
