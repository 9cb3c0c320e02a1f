package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/saeed-golshan/corebuild/internal/host"
	"github.com/saeed-golshan/corebuild/internal/target"
	"github.com/saeed-golshan/corebuild/pkg/log"
)

var (
	buildArch    string
	buildAndroid bool
	buildOut     string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build the library for one target on this host",
	Long: `Build the native library for a single target.

By default the target matching the host platform is built. Pass --android
to cross-compile for Android (requires the NDK), and --arch=x64 to select
the secondary x64 target where the default is arm64.

Examples:
  corebuild build                  # host target
  corebuild build --arch=x64       # e.g. Intel build on an Apple Silicon host
  corebuild build --android        # Android arm64
  corebuild build --android --arch=x64`,
	RunE: runBuild,
}

func init() {
	rootCmd.AddCommand(buildCmd)
	buildCmd.Flags().StringVar(&buildArch, "arch", "", "Architecture selector (x64 or empty for the default)")
	buildCmd.Flags().BoolVar(&buildAndroid, "android", false, "Build for Android instead of the host platform")
	buildCmd.Flags().StringVar(&buildOut, "out", ".", "Directory the published artifact is written to")
}

func runBuild(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := log.FromCtx(ctx)

	cfg, env, err := loadConfig()
	if err != nil {
		return err
	}

	variant := target.VariantDesktop
	if buildAndroid {
		variant = target.VariantAndroid
	}

	row, err := target.ForHost(host.Detect(), variant, buildArch, cfg.Library.PublishedPrefix)
	if err != nil {
		return err
	}

	logger.Info().
		Str("target", row.Target.String()).
		Str("artifact", row.Target.PublishedName).
		Msg("building")

	runner := newRunner(cfg, env, buildOut)
	path, err := runner.RunRow(ctx, row)
	if err != nil {
		return err
	}

	fmt.Printf("✅ %s\n", path)
	return nil
}
