package cmd

import (
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/saeed-golshan/corebuild/internal/pipeline"
	"github.com/saeed-golshan/corebuild/internal/release"
	"github.com/saeed-golshan/corebuild/internal/target"
)

var (
	releaseTag    string
	releaseRunner string
	releaseJobs   int
	releaseOut    string
	releaseDryRun bool
	releaseYes    bool
)

var releaseCmd = &cobra.Command{
	Use:   "release",
	Short: "Build the release matrix and upload artifacts",
	Long: `Run the release pipeline for the matrix rows runnable here and upload
each artifact to the GitHub release identified by --tag.

Rows run concurrently and fail independently: a broken Android toolchain
does not stop the desktop artifact from being built and uploaded. The
command exits non-zero if any row failed, naming the failed rows.

On CI each runner invokes this with --runner set to its own environment,
so every runner builds exactly its slice of the matrix:
  corebuild release --tag v1.2.3 --runner ubuntu-latest --yes`,
	RunE: runRelease,
}

func init() {
	rootCmd.AddCommand(releaseCmd)
	releaseCmd.Flags().StringVar(&releaseTag, "tag", "", "Release tag to upload to (required)")
	releaseCmd.Flags().StringVar(&releaseRunner, "runner", "", "Only run matrix rows for this runner environment")
	releaseCmd.Flags().IntVar(&releaseJobs, "jobs", 0, "Max rows built concurrently (0 = all)")
	releaseCmd.Flags().StringVar(&releaseOut, "out", ".", "Directory published artifacts are written to")
	releaseCmd.Flags().BoolVar(&releaseDryRun, "dry-run", false, "Build and normalize artifacts without uploading")
	releaseCmd.Flags().BoolVarP(&releaseYes, "yes", "y", false, "Skip the upload confirmation prompt")
	releaseCmd.MarkFlagRequired("tag")
}

func runRelease(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, env, err := loadConfig()
	if err != nil {
		return err
	}

	rows := target.Matrix(cfg.Library.PublishedPrefix)
	if releaseRunner != "" {
		rows = filterRows(rows, releaseRunner)
		if len(rows) == 0 {
			return fmt.Errorf("no matrix rows for runner %q", releaseRunner)
		}
	}

	var uploader pipeline.Uploader
	if !releaseDryRun {
		owner, repo, err := cfg.RepoSlug(env)
		if err != nil {
			return err
		}

		if !releaseYes {
			if err := confirmUpload(len(rows), owner, repo); err != nil {
				return err
			}
		}

		client, err := release.NewClient(ctx, env.GitHubToken, owner, repo)
		if err != nil {
			return err
		}
		uploader = client
	}

	bar := progressbar.NewOptions(len(rows),
		progressbar.OptionSetDescription(fmt.Sprintf("release %s", releaseTag)),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionShowCount(),
	)

	orch := &pipeline.Orchestrator{
		Runner:   newRunner(cfg, env, releaseOut),
		Uploader: uploader,
		Tag:      releaseTag,
		Jobs:     releaseJobs,
		OnRowDone: func(pipeline.Result) {
			bar.Add(1)
		},
	}

	results := orch.Run(ctx, rows)
	bar.Finish()
	fmt.Println()

	for _, res := range results {
		switch res.State {
		case pipeline.Succeeded:
			fmt.Printf("✅ %-28s %s\n", res.Row.Target.PublishedName, res.ArtifactPath)
		case pipeline.Failed:
			fmt.Printf("❌ %-28s %v\n", res.Row.Target.PublishedName, res.Err)
		}
	}

	if failed := pipeline.FailedOf(results); len(failed) > 0 {
		names := make([]string, 0, len(failed))
		for _, res := range failed {
			names = append(names, res.Row.Target.PublishedName)
		}
		return fmt.Errorf("%d of %d matrix rows failed: %s", len(failed), len(results), strings.Join(names, ", "))
	}
	return nil
}

func filterRows(rows []target.Row, runner string) []target.Row {
	var out []target.Row
	for _, row := range rows {
		if row.Runner == runner {
			out = append(out, row)
		}
	}
	return out
}

func confirmUpload(count int, owner, repo string) error {
	prompt := promptui.Prompt{
		Label:     fmt.Sprintf("Upload %d artifact(s) to %s/%s release %s", count, owner, repo, releaseTag),
		IsConfirm: true,
	}
	if _, err := prompt.Run(); err != nil {
		return fmt.Errorf("release aborted")
	}
	return nil
}
