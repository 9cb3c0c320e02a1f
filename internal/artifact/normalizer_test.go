package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saeed-golshan/corebuild/internal/target"
)

func linuxTarget() target.Descriptor {
	return target.Descriptor{
		OS:            target.Linux,
		Arch:          target.X64,
		Triple:        "x86_64-unknown-linux-gnu",
		PublishedName: "libcore_linux.so",
	}
}

func writeRaw(t *testing.T, crateDir string, d target.Descriptor, content []byte) string {
	t.Helper()
	raw := filepath.Join(crateDir, d.RawOutputPath("core"))
	require.NoError(t, os.MkdirAll(filepath.Dir(raw), 0o755))
	require.NoError(t, os.WriteFile(raw, content, 0o644))
	return raw
}

func TestPublishMovesRawToPublishedName(t *testing.T) {
	crateDir := t.TempDir()
	outDir := t.TempDir()
	d := linuxTarget()

	content := []byte("\x7fELF shared object bytes")
	raw := writeRaw(t, crateDir, d, content)

	n := &Normalizer{CrateDir: crateDir, OutDir: outDir, LibName: "core"}
	published, err := n.Publish(d)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(outDir, "libcore_linux.so"), published)

	got, err := os.ReadFile(published)
	require.NoError(t, err)
	assert.Equal(t, content, got)

	// The move is destructive: the raw path ceases to exist.
	assert.NoFileExists(t, raw)
}

func TestPublishCrossTargetPath(t *testing.T) {
	crateDir := t.TempDir()
	outDir := t.TempDir()
	d := target.Descriptor{
		OS:            target.Android,
		Arch:          target.ARM64,
		Triple:        "aarch64-linux-android",
		Cross:         true,
		PublishedName: "libcore_android_arm64.so",
	}

	writeRaw(t, crateDir, d, []byte("android bits"))

	n := &Normalizer{CrateDir: crateDir, OutDir: outDir, LibName: "core"}
	published, err := n.Publish(d)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "libcore_android_arm64.so"), published)
}

func TestPublishMissingRawOutput(t *testing.T) {
	crateDir := t.TempDir()
	outDir := t.TempDir()
	d := linuxTarget()

	n := &Normalizer{CrateDir: crateDir, OutDir: outDir, LibName: "core"}
	_, err := n.Publish(d)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	// Failing closed: nothing may appear at the published name.
	assert.NoFileExists(t, filepath.Join(outDir, d.PublishedName))
}

func TestPublishTruncatedRawOutputFailsClosed(t *testing.T) {
	crateDir := t.TempDir()
	outDir := t.TempDir()
	d := linuxTarget()

	// A previous good artifact is already published.
	previous := []byte("previous good artifact")
	published := filepath.Join(outDir, d.PublishedName)
	require.NoError(t, os.WriteFile(published, previous, 0o644))

	// The new build left a zero-length file behind.
	writeRaw(t, crateDir, d, nil)

	n := &Normalizer{CrateDir: crateDir, OutDir: outDir, LibName: "core"}
	_, err := n.Publish(d)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNotFound)

	// The good artifact is untouched; no truncated file replaced it.
	got, err := os.ReadFile(published)
	require.NoError(t, err)
	assert.Equal(t, previous, got)
}

func TestPublishOverwritesExistingArtifact(t *testing.T) {
	crateDir := t.TempDir()
	outDir := t.TempDir()
	d := linuxTarget()

	published := filepath.Join(outDir, d.PublishedName)
	require.NoError(t, os.WriteFile(published, []byte("stale"), 0o644))

	fresh := []byte("fresh build")
	writeRaw(t, crateDir, d, fresh)

	n := &Normalizer{CrateDir: crateDir, OutDir: outDir, LibName: "core"}
	_, err := n.Publish(d)
	require.NoError(t, err)

	got, err := os.ReadFile(published)
	require.NoError(t, err)
	assert.Equal(t, fresh, got)
}
