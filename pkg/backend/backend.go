// Package backend provides the file operations used to materialize a
// generated project, over a go-billy filesystem.
package backend

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
)

// Backend is the set of file operations the generator needs. Paths are
// slash-separated and relative to the backend root.
type Backend interface {
	ReadFile(name string) (string, error)
	WriteFile(name, content string) error
	CreateDirAll(name string) error
	Exists(name string) bool
	IsDir(name string) bool
	ListDir(name string) ([]string, error)
	RemoveFile(name string) error
	RemoveDirAll(name string) error
	CopyFile(src, dest string) error
}

// FS implements Backend on top of a billy filesystem
type FS struct {
	fs billy.Filesystem
}

// New wraps an existing billy filesystem
func New(fs billy.Filesystem) *FS {
	return &FS{fs: fs}
}

// NewOS returns a backend rooted at dir on the local disk
func NewOS(dir string) *FS {
	return New(osfs.New(dir))
}

// NewMemory returns an empty in-memory backend
func NewMemory() *FS {
	return New(memfs.New())
}

// Filesystem exposes the underlying billy filesystem
func (b *FS) Filesystem() billy.Filesystem {
	return b.fs
}

// ReadFile reads a whole file as a string
func (b *FS) ReadFile(name string) (string, error) {
	data, err := util.ReadFile(b.fs, name)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return string(data), nil
}

// WriteFile writes content to name, creating parent directories as needed
func (b *FS) WriteFile(name, content string) error {
	if dir := path.Dir(name); dir != "." && dir != "/" {
		if err := b.fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := util.WriteFile(b.fs, name, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	return nil
}

// CreateDirAll creates a directory and any missing parents
func (b *FS) CreateDirAll(name string) error {
	return b.fs.MkdirAll(name, 0o755)
}

// Exists reports whether name exists
func (b *FS) Exists(name string) bool {
	_, err := b.fs.Stat(name)
	return err == nil
}

// IsDir reports whether name exists and is a directory
func (b *FS) IsDir(name string) bool {
	fi, err := b.fs.Stat(name)
	return err == nil && fi.IsDir()
}

// ListDir returns the entry names of a directory, sorted
func (b *FS) ListDir(name string) ([]string, error) {
	entries, err := b.fs.ReadDir(name)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	return names, nil
}

// RemoveFile removes a single file
func (b *FS) RemoveFile(name string) error {
	return b.fs.Remove(name)
}

// RemoveDirAll removes a directory tree. A missing directory is not an error.
func (b *FS) RemoveDirAll(name string) error {
	err := util.RemoveAll(b.fs, name)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

// CopyFile copies src to dest within the backend
func (b *FS) CopyFile(src, dest string) error {
	return CopyFile(b.fs, src, b.fs, dest)
}

// CopyFile copies a file between two filesystems
func CopyFile(srcFS billy.Filesystem, src string, dstFS billy.Filesystem, dest string) error {
	in, err := srcFS.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	if dir := path.Dir(dest); dir != "." && dir != "/" {
		if err := dstFS.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	out, err := dstFS.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return fmt.Errorf("failed to copy %s to %s: %w", src, dest, err)
	}
	return out.Close()
}
