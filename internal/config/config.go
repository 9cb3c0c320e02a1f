// Package config loads the corebuild.yaml file and the process environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file looked up in the working directory.
const DefaultFile = "corebuild.yaml"

// Config is the corebuild.yaml configuration.
type Config struct {
	Library LibraryConfig `yaml:"library"`
	Release ReleaseConfig `yaml:"release,omitempty"`
}

// LibraryConfig describes the crate being built.
type LibraryConfig struct {
	// Name is the cargo library name; the raw artifact is
	// lib<name>.so / <name>.dll depending on the platform.
	Name string `yaml:"name"`

	// PublishedPrefix is the stem of all published artifact names,
	// e.g. "libcore" yields libcore_linux.so.
	PublishedPrefix string `yaml:"published_prefix"`

	// CrateDir is the directory containing Cargo.toml, relative to the
	// working directory.
	CrateDir string `yaml:"crate_dir,omitempty"`
}

// ReleaseConfig names the repository releases are uploaded to.
type ReleaseConfig struct {
	Owner string `yaml:"owner,omitempty"`
	Repo  string `yaml:"repo,omitempty"`
}

// Default returns the configuration used when no corebuild.yaml exists.
func Default() *Config {
	return &Config{
		Library: LibraryConfig{
			Name:            "core",
			PublishedPrefix: "libcore",
			CrateDir:        ".",
		},
	}
}

// Load reads path. A missing file is not an error; the defaults are
// returned. The file is decoded into an empty Config, not over the
// defaults, so an omitted published_prefix is derived from the configured
// library name instead of keeping the default prefix.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	if cfg.Library.Name == "" {
		return nil, fmt.Errorf("%s: library.name must not be empty", path)
	}
	if cfg.Library.PublishedPrefix == "" {
		cfg.Library.PublishedPrefix = "lib" + cfg.Library.Name
	}
	if cfg.Library.CrateDir == "" {
		cfg.Library.CrateDir = "."
	}

	return cfg, nil
}

// RepoSlug resolves the "owner/repo" pair for uploads, preferring the config
// file and falling back to the environment (GITHUB_REPOSITORY on CI).
func (c *Config) RepoSlug(env *Env) (owner, repo string, err error) {
	if c.Release.Owner != "" && c.Release.Repo != "" {
		return c.Release.Owner, c.Release.Repo, nil
	}
	if env.Repository != "" {
		parts := strings.SplitN(env.Repository, "/", 2)
		if len(parts) == 2 && parts[0] != "" && parts[1] != "" {
			return parts[0], parts[1], nil
		}
		return "", "", fmt.Errorf("malformed GITHUB_REPOSITORY value %q", env.Repository)
	}
	return "", "", fmt.Errorf("release repository not configured: set release.owner/release.repo in %s or GITHUB_REPOSITORY", DefaultFile)
}
