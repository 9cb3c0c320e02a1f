// Package cmd implements the corebuild command line interface.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/saeed-golshan/corebuild/internal/artifact"
	"github.com/saeed-golshan/corebuild/internal/cargo"
	"github.com/saeed-golshan/corebuild/internal/config"
	"github.com/saeed-golshan/corebuild/internal/host"
	"github.com/saeed-golshan/corebuild/internal/pipeline"
	"github.com/saeed-golshan/corebuild/internal/toolchain"
	"github.com/saeed-golshan/corebuild/pkg/log"
)

var (
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "corebuild",
	Short: "Build and release the native core library",
	Long: `corebuild compiles the native core library for every supported platform
(Linux, macOS, Windows, Android) and uploads the artifacts to a tagged
GitHub release.

It replaces the per-platform build scripts with one parameterized pipeline:
host detection, toolchain resolution (including the Android NDK), the cargo
build itself, and renaming the raw output to its stable published name.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		log.Setup(cmd.Context(), verbose)
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", config.DefaultFile, "Path to the corebuild config file")
}

// loadConfig reads the config file and the process environment.
func loadConfig() (*config.Config, *config.Env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, err
	}
	env, err := config.ParseEnv()
	if err != nil {
		return nil, nil, err
	}
	return cfg, env, nil
}

// newRunner wires the per-row pipeline steps for this host.
func newRunner(cfg *config.Config, env *config.Env, outDir string) *pipeline.Runner {
	return &pipeline.Runner{
		Host:     host.Detect(),
		Resolver: toolchain.NewResolver(env),
		Builder:  cargo.New(cfg.Library.CrateDir),
		Publisher: &artifact.Normalizer{
			CrateDir: cfg.Library.CrateDir,
			OutDir:   outDir,
			LibName:  cfg.Library.Name,
		},
	}
}
