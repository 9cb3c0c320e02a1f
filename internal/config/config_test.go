package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "corebuild.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "core", cfg.Library.Name)
	assert.Equal(t, "libcore", cfg.Library.PublishedPrefix)
	assert.Equal(t, ".", cfg.Library.CrateDir)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corebuild.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
library:
  name: isar
  crate_dir: dart-ffi
release:
  owner: example
  repo: isar-core
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "isar", cfg.Library.Name)
	// Prefix defaults to lib<name> when unset.
	assert.Equal(t, "libisar", cfg.Library.PublishedPrefix)
	assert.Equal(t, "dart-ffi", cfg.Library.CrateDir)
	assert.Equal(t, "example", cfg.Release.Owner)
	assert.Equal(t, "isar-core", cfg.Release.Repo)
}

func TestLoadDerivesPrefixFromName(t *testing.T) {
	// A file that renames the library but omits published_prefix must not
	// keep the built-in default prefix.
	path := filepath.Join(t.TempDir(), "corebuild.yaml")
	require.NoError(t, os.WriteFile(path, []byte("library:\n  name: isar\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "libisar", cfg.Library.PublishedPrefix)
	assert.NotEqual(t, Default().Library.PublishedPrefix, cfg.Library.PublishedPrefix)

	// CrateDir still falls back when the file leaves it unset.
	assert.Equal(t, ".", cfg.Library.CrateDir)
}

func TestLoadRejectsEmptyName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corebuild.yaml")
	require.NoError(t, os.WriteFile(path, []byte("library:\n  name: \"\"\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestRepoSlug(t *testing.T) {
	t.Run("config file wins", func(t *testing.T) {
		cfg := &Config{Release: ReleaseConfig{Owner: "a", Repo: "b"}}
		owner, repo, err := cfg.RepoSlug(&Env{Repository: "c/d"})
		require.NoError(t, err)
		assert.Equal(t, "a", owner)
		assert.Equal(t, "b", repo)
	})

	t.Run("falls back to GITHUB_REPOSITORY", func(t *testing.T) {
		cfg := Default()
		owner, repo, err := cfg.RepoSlug(&Env{Repository: "c/d"})
		require.NoError(t, err)
		assert.Equal(t, "c", owner)
		assert.Equal(t, "d", repo)
	})

	t.Run("malformed GITHUB_REPOSITORY", func(t *testing.T) {
		cfg := Default()
		_, _, err := cfg.RepoSlug(&Env{Repository: "nonsense"})
		require.Error(t, err)
	})

	t.Run("nothing configured", func(t *testing.T) {
		cfg := Default()
		_, _, err := cfg.RepoSlug(&Env{})
		require.Error(t, err)
	})
}

func TestParseEnv(t *testing.T) {
	t.Setenv("ANDROID_NDK_HOME", "/opt/ndk")
	t.Setenv("ANDROID_SDK_ROOT", "/opt/sdk")
	t.Setenv("GITHUB_TOKEN", "tok")

	env, err := ParseEnv()
	require.NoError(t, err)
	assert.Equal(t, "/opt/ndk", env.NDKHome)
	assert.Equal(t, "/opt/sdk", env.SDKRoot)
	assert.Equal(t, "tok", env.GitHubToken)
}
