// Package pipeline runs the per-target build pipeline and fans it out over
// the release matrix.
//
// Each matrix row moves through a fixed sequence: host check, toolchain
// resolution, build, artifact normalization, then optionally upload. Rows
// share no mutable state, run concurrently, and fail independently; one
// failed row never cancels the others.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/gammazero/workerpool"
	"github.com/rs/zerolog/log"

	"github.com/saeed-golshan/corebuild/internal/host"
	"github.com/saeed-golshan/corebuild/internal/target"
	"github.com/saeed-golshan/corebuild/internal/toolchain"
)

// ToolchainResolver yields the toolchain binding for a target, or nil when
// the host default toolchain is enough.
type ToolchainResolver interface {
	Resolve(ctx context.Context, d target.Descriptor) (*toolchain.Binding, error)
}

// Builder compiles one target against a resolved binding.
type Builder interface {
	Build(ctx context.Context, d target.Descriptor, bind *toolchain.Binding) error
}

// Publisher moves the raw build output to its published name and returns
// the published path.
type Publisher interface {
	Publish(d target.Descriptor) (string, error)
}

// Uploader stores a published artifact under assetName on the release
// identified by tag.
type Uploader interface {
	Upload(ctx context.Context, tag, assetName, path string) error
}

// Runner executes the sequential steps of a single matrix row.
type Runner struct {
	Host      host.Kind
	Resolver  ToolchainResolver
	Builder   Builder
	Publisher Publisher
}

// RunRow runs one row to completion and returns the published artifact path.
// Every step's error is fatal for the row and carries the target descriptor.
func (r *Runner) RunRow(ctx context.Context, row target.Row) (string, error) {
	if err := r.Host.Check(); err != nil {
		return "", err
	}

	bind, err := r.Resolver.Resolve(ctx, row.Target)
	if err != nil {
		return "", fmt.Errorf("resolving toolchain for %s: %w", row.Target, err)
	}

	if err := r.Builder.Build(ctx, row.Target, bind); err != nil {
		return "", fmt.Errorf("building %s: %w", row.Target, err)
	}

	path, err := r.Publisher.Publish(row.Target)
	if err != nil {
		return "", fmt.Errorf("publishing %s: %w", row.Target, err)
	}
	return path, nil
}

// RowRunner abstracts Runner for the orchestrator.
type RowRunner interface {
	RunRow(ctx context.Context, row target.Row) (string, error)
}

// Orchestrator fans the matrix out over a bounded worker pool and uploads
// successful artifacts.
type Orchestrator struct {
	Runner RowRunner

	// Uploader may be nil, in which case artifacts are built but not
	// uploaded (dry runs, local builds).
	Uploader Uploader

	// Tag identifies the release artifacts are uploaded to.
	Tag string

	// Jobs bounds row concurrency; zero means one worker per row.
	Jobs int

	// OnRowDone, if set, observes each finished row.
	OnRowDone func(Result)
}

// Run executes every row and returns one result per row, in matrix order.
func (o *Orchestrator) Run(ctx context.Context, rows []target.Row) []Result {
	jobs := o.Jobs
	if jobs <= 0 {
		jobs = len(rows)
	}

	wp := workerpool.New(jobs)
	results := make([]Result, len(rows))

	for i, row := range rows {
		i, row := i, row
		wp.Submit(func() {
			results[i] = o.runOne(ctx, row)
		})
	}
	wp.StopWait()

	return results
}

func (o *Orchestrator) runOne(ctx context.Context, row target.Row) Result {
	start := time.Now()
	res := Result{Row: row, State: Running}

	log.Info().
		Str("target", row.Target.String()).
		Str("artifact", row.Target.PublishedName).
		Msg("row started")

	path, err := o.Runner.RunRow(ctx, row)
	if err == nil && o.Uploader != nil {
		if uerr := o.Uploader.Upload(ctx, o.Tag, row.Target.PublishedName, path); uerr != nil {
			err = fmt.Errorf("uploading %s: %w", row.Target, uerr)
		}
	}

	res.Elapsed = time.Since(start)
	if err != nil {
		res.State = Failed
		res.Err = err
		log.Error().Err(err).
			Str("artifact", row.Target.PublishedName).
			Msg("row failed")
	} else {
		res.State = Succeeded
		res.ArtifactPath = path
		log.Info().
			Str("artifact", row.Target.PublishedName).
			Dur("elapsed", res.Elapsed).
			Msg("row succeeded")
	}

	if o.OnRowDone != nil {
		o.OnRowDone(res)
	}
	return res
}
