// Package cargo drives cargo builds for one target at a time.
package cargo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"github.com/saeed-golshan/corebuild/internal/target"
	"github.com/saeed-golshan/corebuild/internal/toolchain"
)

// ErrBuildFailed means cargo exited non-zero. Build failures are
// deterministic for a given source and toolchain, so they are never retried.
var ErrBuildFailed = errors.New("build failed")

// Invoker runs cargo in a crate directory.
type Invoker struct {
	// Dir is the crate root (where Cargo.toml lives).
	Dir string

	Stdout io.Writer
	Stderr io.Writer
}

// New returns an invoker for the crate at dir.
func New(dir string) *Invoker {
	return &Invoker{Dir: dir, Stdout: os.Stdout, Stderr: os.Stderr}
}

// Build compiles the crate in release mode for d. The toolchain binding, if
// any, is passed on the command environment only; the process environment is
// never mutated. A non-zero cargo exit is fatal for the invocation.
func (i *Invoker) Build(ctx context.Context, d target.Descriptor, bind *toolchain.Binding) error {
	cmd := exec.CommandContext(ctx, cargoPath(), BuildArgs(d)...)
	cmd.Dir = i.Dir
	cmd.Stdout = i.Stdout
	cmd.Stderr = i.Stderr

	cmd.Env = os.Environ()
	if bind != nil {
		cmd.Env = append(cmd.Env, bind.Environ(d)...)
		cmd.Env = append(cmd.Env, "PATH="+bind.BinDir+string(os.PathListSeparator)+os.Getenv("PATH"))
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%w: cargo build for %s: %v", ErrBuildFailed, d.Triple, err)
	}
	return nil
}

// BuildArgs returns the cargo arguments Build uses for d. Split out so the
// flag construction is checkable without running cargo.
func BuildArgs(d target.Descriptor) []string {
	args := []string{"build", "--release"}
	if d.Cross {
		args = append(args, "--target", d.Triple)
	}
	return args
}

// cargoPath honors the CARGO override cargo itself sets for subcommands.
func cargoPath() string {
	if p := os.Getenv("CARGO"); p != "" {
		return p
	}
	return "cargo"
}
