// Package host identifies the operating system the pipeline runs on.
package host

import (
	"errors"
	"fmt"
	"runtime"
)

// Kind is the canonical tag for a supported host operating system.
type Kind string

const (
	Linux   Kind = "linux"
	Darwin  Kind = "darwin"
	Windows Kind = "windows"

	// Unsupported is a generic value for hosts outside the set above.
	// Classify carries unknown identifiers through as their own Kind, so
	// errors name the actual system; this constant is for callers that
	// need an unsupported Kind without a concrete identifier.
	Unsupported Kind = "unsupported"
)

// Detect classifies the running operating system.
func Detect() Kind {
	return Classify(runtime.GOOS)
}

// Classify maps a GOOS-style identifier to a host Kind. Unrecognized
// identifiers are preserved as-is; Check rejects them and names them.
// The shell scripts this tool replaces fell through to the Windows branch
// for unrecognized systems and silently produced a Windows artifact;
// callers must now handle the failing Check explicitly.
func Classify(goos string) Kind {
	switch goos {
	case "linux":
		return Linux
	case "darwin":
		return Darwin
	case "windows":
		return Windows
	default:
		return Kind(goos)
	}
}

// ErrUnsupported is wrapped by errors reported for hosts outside the
// supported set.
var ErrUnsupported = errors.New("unsupported host platform")

// Check returns an error when k is outside the supported set. The message
// names k itself, so checking a classified identifier reports that
// identifier rather than the running platform.
func (k Kind) Check() error {
	switch k {
	case Linux, Darwin, Windows:
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnsupported, k)
}
