// Package artifact turns raw cargo outputs into published release artifacts.
package artifact

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/saeed-golshan/corebuild/internal/target"
	"github.com/saeed-golshan/corebuild/pkg/xos"
)

// ErrNotFound means the expected raw build output does not exist. Either the
// build silently failed, or the crate's naming drifted away from the layout
// RawOutputPath assumes.
var ErrNotFound = errors.New("artifact not found")

// Normalizer moves raw build outputs to their published names.
type Normalizer struct {
	// CrateDir is the crate root the raw target/ tree lives under.
	CrateDir string

	// OutDir is where published artifacts are written. Defaults to the
	// working directory.
	OutDir string

	// LibName is the cargo library name used to derive the raw file name.
	LibName string
}

// Publish locates the raw output for d and moves it to d.PublishedName in
// OutDir. The move replaces any existing file and is atomic: no reader ever
// sees a truncated artifact. The raw path ceases to exist on success.
func (n *Normalizer) Publish(d target.Descriptor) (string, error) {
	raw := filepath.Join(n.CrateDir, d.RawOutputPath(n.LibName))

	info, err := os.Stat(raw)
	if err != nil {
		return "", fmt.Errorf("%w: expected build output at %s", ErrNotFound, raw)
	}
	if info.Size() == 0 {
		return "", fmt.Errorf("%w: build output at %s is empty", ErrNotFound, raw)
	}

	outDir := n.OutDir
	if outDir == "" {
		outDir = "."
	}
	published := filepath.Join(outDir, d.PublishedName)

	if err := xos.MoveFile(raw, published); err != nil {
		return "", fmt.Errorf("failed to publish %s: %w", d.PublishedName, err)
	}
	return published, nil
}
