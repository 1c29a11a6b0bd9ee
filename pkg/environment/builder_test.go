package environment_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/cperrin88/envpkgsearch/pkg/discovery"
	"github.com/cperrin88/envpkgsearch/pkg/environment"
	mock_environment "github.com/cperrin88/envpkgsearch/pkg/environment/mocks"
	"github.com/cperrin88/envpkgsearch/pkg/errors"
)

func makeInterpreter(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"), 0o755))
	return discovery.DefaultNormalizer().Normalize(path)
}

func TestBuilder_Build(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix prefix layout")
	}
	ctrl := gomock.NewController(t)
	root := t.TempDir()

	system := makeInterpreter(t, filepath.Join(root, "usr", "bin", "python3"))
	venv := makeInterpreter(t, filepath.Join(root, "venv", "bin", "python"))
	pyenv := makeInterpreter(t, filepath.Join(root, ".pyenv", "versions", "3.11.4", "bin", "python"))
	broken := filepath.Join(root, "gone", "bin", "python")

	report := &discovery.Report{
		Paths: []string{broken, pyenv, system, venv},
		Origins: map[string][]string{
			broken: {discovery.SourceSearchPath},
			pyenv:  {discovery.SourceSearchPath, discovery.SourcePyenv},
			system: {discovery.SourceSearchPath},
			venv:   {discovery.SourceSearchPath},
		},
	}

	introspector := mock_environment.NewMockIntrospector(ctrl)
	introspector.EXPECT().Introspect(gomock.Any(), broken).Return(environment.Layout{}, errors.ErrNotExecutable)
	introspector.EXPECT().Introspect(gomock.Any(), pyenv).Return(environment.Layout{
		Prefix: filepath.Dir(filepath.Dir(pyenv)), BasePrefix: filepath.Dir(filepath.Dir(pyenv)), Version: "3.11.4",
	}, nil)
	introspector.EXPECT().Introspect(gomock.Any(), system).Return(environment.Layout{
		Prefix: filepath.Join(root, "usr"), BasePrefix: filepath.Join(root, "usr"), Version: "3.10",
	}, nil)
	introspector.EXPECT().Introspect(gomock.Any(), venv).Return(environment.Layout{
		Prefix: filepath.Join(root, "venv"), BasePrefix: filepath.Join(root, "usr"), Version: "3.10",
	}, nil)

	envs := environment.NewBuilder(introspector).Build(context.Background(), report)
	require.Len(t, envs, 3)

	byExe := map[string]*environment.Environment{}
	for _, e := range envs {
		byExe[e.Executable] = e
	}
	assert.Equal(t, environment.CreatorPyenv, byExe[pyenv].Creator)
	assert.Equal(t, environment.CreatorSystem, byExe[system].Creator)
	assert.Equal(t, environment.CreatorVenv, byExe[venv].Creator)
	assert.True(t, byExe[venv].IsVirtual())
	assert.Equal(t, "3.11.4", byExe[pyenv].Version)
	assert.False(t, byExe[system].Scanned())
}

func TestBuilder_PackageScan(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix prefix layout")
	}
	root := t.TempDir()
	exe := makeInterpreter(t, filepath.Join(root, "venv", "bin", "python"))
	site := filepath.Join(root, "venv", "lib", "python3.12", "site-packages")
	require.NoError(t, os.MkdirAll(filepath.Join(site, "rich-13.7.0.dist-info"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "venv", environment.PyvenvConfigFile), []byte("home = /usr/bin\nversion = 3.12.1\n"), 0o644))

	b := environment.NewBuilder(environment.LayoutIntrospector{}, environment.WithPackageScan(true))
	env, err := b.BuildOne(context.Background(), exe, environment.CreatorPipx)
	require.NoError(t, err)

	assert.Equal(t, environment.CreatorPipx, env.Creator)
	assert.Equal(t, "3.12.1", env.Version)
	assert.Equal(t, "/usr", env.BasePrefix)
	assert.True(t, env.Scanned())
	require.Len(t, env.SitePackagesDirs, 1)
	assert.Equal(t, environment.Package{
		Version:  "13.7.0",
		Location: filepath.Join(env.SitePackagesDirs[0], "rich-13.7.0.dist-info"),
	}, env.DetectedPackages["rich"])
}
