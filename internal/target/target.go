// Package target defines the build targets and the release matrix.
package target

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/saeed-golshan/corebuild/internal/host"
)

// OS is the target operating system of a built library.
type OS string

const (
	Linux   OS = "linux"
	MacOS   OS = "macos"
	Windows OS = "windows"
	Android OS = "android"
)

// Arch is the target CPU architecture.
type Arch string

const (
	X64   Arch = "x64"
	ARM64 Arch = "arm64"
)

// Descriptor names one buildable target and the externally stable file name
// its artifact is published under.
type Descriptor struct {
	OS   OS
	Arch Arch

	// Triple is the compiler target triple, e.g. aarch64-linux-android.
	Triple string

	// Cross marks targets built with an explicit --target flag. Cargo puts
	// their output under target/<triple>/release instead of target/release,
	// and desktop cross targets need the triple installed via rustup first.
	Cross bool

	// APILevel is the Android platform API level; zero for desktop targets.
	APILevel int

	// PublishedName is the stable file name consumed by release downloads.
	PublishedName string
}

func (d Descriptor) String() string {
	return fmt.Sprintf("%s/%s (%s)", d.OS, d.Arch, d.Triple)
}

// LibPrefix returns the library file prefix cargo uses for the target OS.
func (d Descriptor) LibPrefix() string {
	if d.OS == Windows {
		return ""
	}
	return "lib"
}

// LibSuffix returns the shared-library extension for the target OS.
func (d Descriptor) LibSuffix() string {
	switch d.OS {
	case Windows:
		return ".dll"
	case MacOS:
		return ".dylib"
	default:
		return ".so"
	}
}

// RawOutputPath returns the path, relative to the crate root, where cargo
// leaves the built library for this target. Must stay in lockstep with the
// crate's library name and cargo's output layout.
func (d Descriptor) RawOutputPath(libName string) string {
	file := d.LibPrefix() + libName + d.LibSuffix()
	if d.Cross {
		return filepath.Join("target", d.Triple, "release", file)
	}
	return filepath.Join("target", "release", file)
}

// SanitizedTriple returns the triple with dashes replaced by underscores,
// the form cargo uses in per-target environment variable names.
func (d Descriptor) SanitizedTriple() string {
	return strings.ReplaceAll(d.Triple, "-", "_")
}

// Row is one entry of the release matrix: a runner environment, a build
// variant and the target it produces. Rows are static configuration and
// share no state with each other.
type Row struct {
	// Runner is the CI environment the row is meant to run on,
	// e.g. "ubuntu-latest".
	Runner string

	// Variant selects the pipeline flavor: "desktop" or "android".
	Variant string

	// ArchFlag is the optional architecture selector ("x64" or empty)
	// passed to the per-platform entry point.
	ArchFlag string

	Target Descriptor
}

const (
	VariantDesktop = "desktop"
	VariantAndroid = "android"
)

// androidAPILevel is the platform API level the NDK compilers are pinned to.
const androidAPILevel = 29

// publishedName builds "<prefix>_<os>[_<arch>]<suffix>".
func publishedName(prefix string, d Descriptor, archSuffix bool) string {
	name := prefix + "_" + string(d.OS)
	if archSuffix {
		name += "_" + string(d.Arch)
	}
	return name + d.LibSuffix()
}

// Matrix returns the full release matrix for a library published under
// prefix (e.g. "libcore"). Published names are unique across the matrix.
func Matrix(prefix string) []Row {
	linux := Descriptor{OS: Linux, Arch: X64, Triple: "x86_64-unknown-linux-gnu"}
	linux.PublishedName = publishedName(prefix, linux, false)

	macARM := Descriptor{OS: MacOS, Arch: ARM64, Triple: "aarch64-apple-darwin"}
	macARM.PublishedName = publishedName(prefix, macARM, false)

	macX64 := Descriptor{OS: MacOS, Arch: X64, Triple: "x86_64-apple-darwin", Cross: true}
	macX64.PublishedName = publishedName(prefix, macX64, true)

	windows := Descriptor{OS: Windows, Arch: X64, Triple: "x86_64-pc-windows-msvc"}
	windows.PublishedName = publishedName(prefix, windows, false)

	androidARM := Descriptor{OS: Android, Arch: ARM64, Triple: "aarch64-linux-android", Cross: true, APILevel: androidAPILevel}
	androidARM.PublishedName = publishedName(prefix, androidARM, true)

	androidX64 := Descriptor{OS: Android, Arch: X64, Triple: "x86_64-linux-android", Cross: true, APILevel: androidAPILevel}
	androidX64.PublishedName = publishedName(prefix, androidX64, true)

	return []Row{
		{Runner: "ubuntu-latest", Variant: VariantDesktop, Target: linux},
		{Runner: "macos-latest", Variant: VariantDesktop, Target: macARM},
		{Runner: "macos-latest", Variant: VariantDesktop, ArchFlag: "x64", Target: macX64},
		{Runner: "windows-latest", Variant: VariantDesktop, Target: windows},
		{Runner: "ubuntu-latest", Variant: VariantAndroid, Target: androidARM},
		{Runner: "ubuntu-latest", Variant: VariantAndroid, ArchFlag: "x64", Target: androidX64},
	}
}

// ForHost selects the matrix row built by an invocation on the given host.
// variant is VariantDesktop or VariantAndroid; archFlag is "x64" or empty.
func ForHost(k host.Kind, variant, archFlag string, prefix string) (Row, error) {
	if err := k.Check(); err != nil {
		return Row{}, err
	}

	hostOS := map[host.Kind]OS{
		host.Linux:   Linux,
		host.Darwin:  MacOS,
		host.Windows: Windows,
	}[k]

	for _, row := range Matrix(prefix) {
		if row.Variant != variant || row.ArchFlag != archFlag {
			continue
		}
		if variant == VariantAndroid {
			return row, nil
		}
		if row.Target.OS == hostOS {
			return row, nil
		}
	}
	return Row{}, fmt.Errorf("no %s target for host %s (arch flag %q)", variant, k, archFlag)
}
