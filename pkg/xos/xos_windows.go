//go:build windows
// +build windows

package xos

import (
	"io"
	"os"
	"path/filepath"
)

// Windows has no POSIX rename guarantees; write to a temp file in the target
// directory and rename over the destination, which NTFS replaces in one step.

func writeFile(filename string, data []byte, perm os.FileMode) error {
	t, err := os.CreateTemp(filepath.Dir(filename), ".xos-*")
	if err != nil {
		return err
	}
	name := t.Name()

	if _, err := t.Write(data); err != nil {
		t.Close()
		os.Remove(name)
		return err
	}
	if err := t.Close(); err != nil {
		os.Remove(name)
		return err
	}
	if err := os.Chmod(name, perm); err != nil {
		os.Remove(name)
		return err
	}

	// os.Rename fails on Windows if the target exists.
	os.Remove(filename)
	return os.Rename(name, filename)
}

func WriteReader(filename string, r io.Reader, perm os.FileMode) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	return writeFile(filename, data, perm)
}

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

func MoveFile(src, dst string) error {
	if err := CopyFile(src, dst); err != nil {
		return err
	}
	return os.Remove(src)
}
