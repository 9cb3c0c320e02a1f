//go:build !windows
// +build !windows

// Package xos provides atomic file operations for publishing build artifacts.
// Writes go to a temp file first and are renamed into place, so a reader never
// observes a partially-written file.
package xos

import (
	"io"
	"os"

	"github.com/google/renameio/v2"
)

// WriteReader writes data from a reader to the named file atomically.
func WriteReader(filename string, r io.Reader, perm os.FileMode) error {
	t, err := renameio.TempFile("", filename)
	if err != nil {
		return err
	}
	defer t.Cleanup()

	if _, err := io.Copy(t, r); err != nil {
		return err
	}

	if err := t.Chmod(perm); err != nil {
		return err
	}

	return t.CloseAtomicallyReplace()
}

// CopyFile copies src to dst atomically, carrying over the source file mode.
// Copying over an existing identical dst is a no-op from the reader's view.
func CopyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	return WriteReader(dst, f, info.Mode().Perm())
}

// MoveFile moves src to dst, replacing dst if it exists. The content lands
// atomically; src is removed only after dst is fully in place.
func MoveFile(src, dst string) error {
	if err := CopyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}
