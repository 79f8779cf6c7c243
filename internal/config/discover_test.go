package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// inDir runs the test from dir and restores the working directory afterwards.
func inDir(t *testing.T, dir string) {
	t.Helper()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("[log]\n"), 0o600))
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	assert.Equal(t, "/custom/config/sweepr/config.toml", DefaultPath())

	t.Setenv("XDG_CONFIG_HOME", "")
	assert.Contains(t, DefaultPath(), filepath.Join(".config", "sweepr", "config.toml"))
}

func TestDiscover_Sources(t *testing.T) {
	tests := []struct {
		name       string
		env        bool
		workDir    bool
		user       bool
		wantSource Source
	}{
		{name: "env wins over everything", env: true, workDir: true, user: true, wantSource: SourceEnv},
		{name: "working directory before user dir", workDir: true, user: true, wantSource: SourceWorkDir},
		{name: "user dir", user: true, wantSource: SourceUser},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := t.TempDir()
			work := filepath.Join(root, "work")
			require.NoError(t, os.MkdirAll(work, 0o755))
			inDir(t, work)
			t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "xdg"))
			t.Setenv(EnvConfigPath, "")

			want := map[Source]string{
				SourceEnv:     filepath.Join(root, "explicit.toml"),
				SourceWorkDir: "config.toml",
				SourceUser:    filepath.Join(root, "xdg", "sweepr", "config.toml"),
			}
			if tt.env {
				writeFile(t, want[SourceEnv])
				t.Setenv(EnvConfigPath, want[SourceEnv])
			}
			if tt.workDir {
				writeFile(t, filepath.Join(work, "config.toml"))
			}
			if tt.user {
				writeFile(t, want[SourceUser])
			}

			loc, err := Discover()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSource, loc.Source)
			assert.Equal(t, want[tt.wantSource], loc.Path)
		})
	}
}

func TestDiscover_EnvMissingIsAnError(t *testing.T) {
	inDir(t, t.TempDir())
	writeFile(t, "config.toml")
	t.Setenv(EnvConfigPath, "/nonexistent/config.toml")

	_, err := Discover()
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvConfigPath)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestDiscover_NotFound(t *testing.T) {
	inDir(t, t.TempDir())
	t.Setenv(EnvConfigPath, "")
	t.Setenv("XDG_CONFIG_HOME", "/nonexistent/xdg")

	_, err := Discover()
	require.ErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "/nonexistent/xdg/sweepr/config.toml")
}

func TestResolve_ExplicitPath(t *testing.T) {
	t.Setenv(EnvConfigPath, "/somewhere/else.toml")

	loc, err := Resolve("/tmp/mine.toml")
	require.NoError(t, err)
	assert.Equal(t, Location{Path: "/tmp/mine.toml", Source: SourceFlag}, loc)
	assert.Equal(t, "/tmp/mine.toml (from --config flag)", loc.String())
}
