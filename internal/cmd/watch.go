package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/saeed-golshan/corebuild/internal/host"
	"github.com/saeed-golshan/corebuild/internal/target"
	"github.com/saeed-golshan/corebuild/pkg/log"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild the host target whenever the crate sources change",
	Long: `Watches the crate's source tree and reruns the host-target build pipeline
on every change. Meant for local development of the core library; release
builds always run from a clean checkout.`,
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Quiet period before a rebuild is triggered")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	logger := log.FromCtx(ctx)

	cfg, env, err := loadConfig()
	if err != nil {
		return err
	}

	row, err := target.ForHost(host.Detect(), target.VariantDesktop, "", cfg.Library.PublishedPrefix)
	if err != nil {
		return err
	}
	runner := newRunner(cfg, env, ".")

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	srcDir := filepath.Join(cfg.Library.CrateDir, "src")
	if err := addRecursive(watcher, srcDir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", srcDir, err)
	}

	logger.Info().Str("dir", srcDir).Msg("watching for changes")

	// Debounce: rapid editor save bursts collapse into one rebuild.
	var timer *time.Timer
	rebuild := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !relevantEvent(event) {
				continue
			}
			if event.Op.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					addRecursive(watcher, event.Name)
				}
			}
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(watchDebounce, func() {
				select {
				case rebuild <- struct{}{}:
				default:
				}
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn().Err(err).Msg("watch error")

		case <-rebuild:
			logger.Info().Str("target", row.Target.String()).Msg("rebuilding")
			if path, err := runner.RunRow(ctx, row); err != nil {
				logger.Error().Err(err).Msg("rebuild failed")
			} else {
				logger.Info().Str("artifact", path).Msg("rebuild succeeded")
			}
		}
	}
}

func relevantEvent(event fsnotify.Event) bool {
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return false
	}
	ext := filepath.Ext(event.Name)
	return ext == ".rs" || ext == ".toml" || ext == ""
}

func addRecursive(watcher *fsnotify.Watcher, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if info.Name() == "target" || info.Name() == ".git" {
				return filepath.SkipDir
			}
			return watcher.Add(path)
		}
		return nil
	})
}
