// Package toolchain locates the compilers needed to build each target.
//
// Desktop targets use the host's default toolchain and at most need the
// target triple installed via rustup. Android targets need the NDK: its
// root directory is discovered through an environment fallback chain, and
// the API-level-versioned clang binary is aliased to the unversioned name
// cargo's cc integration expects.
package toolchain

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/saeed-golshan/corebuild/internal/config"
	"github.com/saeed-golshan/corebuild/internal/host"
	"github.com/saeed-golshan/corebuild/internal/target"
	"github.com/saeed-golshan/corebuild/pkg/xos"
)

var (
	// ErrNotFound means no NDK root could be resolved from the environment.
	ErrNotFound = errors.New("toolchain not found")

	// ErrAliasSetup means copying the versioned clang to its unversioned
	// alias failed.
	ErrAliasSetup = errors.New("toolchain alias setup failed")
)

// Binding is the resolved set of toolchain paths for one target. It lives
// for a single pipeline invocation and is passed to the build invoker as an
// explicit argument, never exported into the ambient environment.
type Binding struct {
	// CC is the target C compiler (the versioned NDK clang).
	CC string

	// AR is the target archiver.
	AR string

	// Linker is the linker cargo invokes for the target.
	Linker string

	// BinDir is the toolchain bin directory, prepended to PATH on the
	// build command so unversioned tool names resolve there.
	BinDir string
}

// Environ returns the cargo environment bindings for the target, keyed by
// its sanitized triple: CC_<triple>, AR_<triple> and
// CARGO_TARGET_<TRIPLE>_LINKER.
func (b *Binding) Environ(d target.Descriptor) []string {
	s := d.SanitizedTriple()
	return []string{
		fmt.Sprintf("CC_%s=%s", s, b.CC),
		fmt.Sprintf("AR_%s=%s", s, b.AR),
		fmt.Sprintf("CARGO_TARGET_%s_LINKER=%s", strings.ToUpper(s), b.Linker),
	}
}

// Resolver produces toolchain bindings for build targets.
type Resolver struct {
	Env  *config.Env
	Host host.Kind

	// HostArch distinguishes Intel and Apple Silicon NDK prebuilts.
	// Defaults to runtime.GOARCH.
	HostArch string

	Stdout io.Writer
	Stderr io.Writer
}

// NewResolver returns a resolver for the current host.
func NewResolver(env *config.Env) *Resolver {
	return &Resolver{
		Env:      env,
		Host:     host.Detect(),
		HostArch: runtime.GOARCH,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
	}
}

// Resolve returns the binding required to build d, or nil when the host's
// default toolchain suffices.
func (r *Resolver) Resolve(ctx context.Context, d target.Descriptor) (*Binding, error) {
	if d.OS == target.Android {
		return r.resolveAndroid(d)
	}
	if d.Cross {
		// Secondary desktop architecture: make sure the std library for
		// the triple is installed before cargo needs it.
		if err := r.rustupTargetAdd(ctx, d.Triple); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

func (r *Resolver) resolveAndroid(d target.Descriptor) (*Binding, error) {
	root, err := r.NDKRoot()
	if err != nil {
		return nil, err
	}

	tag, err := r.hostTag()
	if err != nil {
		return nil, err
	}

	binDir := filepath.Join(root, "toolchains", "llvm", "prebuilt", tag, "bin")
	cc, err := ensureClangAlias(binDir, d, r.Host)
	if err != nil {
		return nil, err
	}

	return &Binding{
		CC:     cc,
		AR:     filepath.Join(binDir, "llvm-ar"),
		Linker: cc,
		BinDir: binDir,
	}, nil
}

// NDKRoot resolves the NDK root directory: ANDROID_NDK_HOME, then
// ANDROID_NDK_ROOT, then the ndk-bundle under ANDROID_SDK_ROOT. The first
// candidate that is an existing directory wins.
func (r *Resolver) NDKRoot() (string, error) {
	candidates := []string{r.Env.NDKHome, r.Env.NDKRoot}
	if r.Env.SDKRoot != "" {
		candidates = append(candidates, filepath.Join(r.Env.SDKRoot, "ndk-bundle"))
	}

	var tried []string
	for _, dir := range candidates {
		if dir == "" {
			continue
		}
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return dir, nil
		}
		tried = append(tried, dir)
	}

	if len(tried) == 0 {
		return "", fmt.Errorf("%w: none of ANDROID_NDK_HOME, ANDROID_NDK_ROOT or ANDROID_SDK_ROOT are set", ErrNotFound)
	}
	return "", fmt.Errorf("%w: no NDK at %s", ErrNotFound, strings.Join(tried, ", "))
}

// hostTag returns the NDK prebuilt directory name for the running host.
func (r *Resolver) hostTag() (string, error) {
	switch r.Host {
	case host.Linux:
		return "linux-x86_64", nil
	case host.Darwin:
		if r.HostArch == "arm64" {
			return "darwin-aarch64", nil
		}
		return "darwin-x86_64", nil
	case host.Windows:
		return "windows-x86_64", nil
	default:
		return "", r.Host.Check()
	}
}

// ensureClangAlias copies <triple><api>-clang to <triple>-clang inside
// binDir. The copy is atomic and idempotent: rerunning it leaves an alias
// byte-identical to a single run. Returns the path of the versioned clang.
func ensureClangAlias(binDir string, d target.Descriptor, h host.Kind) (string, error) {
	ext := ""
	if h == host.Windows {
		// NDK clang wrappers on Windows hosts are batch scripts.
		ext = ".cmd"
	}

	src := filepath.Join(binDir, fmt.Sprintf("%s%d-clang%s", d.Triple, d.APILevel, ext))
	dst := filepath.Join(binDir, fmt.Sprintf("%s-clang%s", d.Triple, ext))

	if _, err := os.Stat(src); err != nil {
		return "", fmt.Errorf("%w: versioned compiler missing at %s", ErrAliasSetup, src)
	}

	if err := xos.CopyFile(src, dst); err != nil {
		return "", fmt.Errorf("%w: %v", ErrAliasSetup, err)
	}

	return src, nil
}

func (r *Resolver) rustupTargetAdd(ctx context.Context, triple string) error {
	cmd := exec.CommandContext(ctx, "rustup", "target", "add", triple)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("rustup target add %s failed: %w", triple, err)
	}
	return nil
}
