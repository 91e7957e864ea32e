// Package fsio abstracts the flat-file storage the controller reads pattern
// and correction rasters from and writes uploads and merged corrections to.
//
// The Store interface is deliberately small: list a single directory, read,
// write, delete, probe. Everything the controller knows about the filesystem
// goes through it, so the catalog indexer and the command dispatcher can be
// tested against the in-memory Mem implementation instead of real disk.
package fsio

import (
	"os"
	"path/filepath"
)

// Entry is one name inside a listed directory.
type Entry struct {
	Name  string
	IsDir bool
}

// Store is the filesystem capability used by the catalog indexer, the
// pattern cache and the command dispatcher.
//
// Implementations must treat paths as opaque slash-joined strings built with
// path/filepath; they are never interpreted beyond that.
type Store interface {
	// List returns the immediate entries of dir. A missing directory is an
	// error; callers that tolerate absence check with Exists first or treat
	// the error as "no entries".
	List(dir string) ([]Entry, error)

	// Read returns the full contents of the file at path.
	Read(path string) ([]byte, error)

	// Write replaces the file at path with data, creating parent
	// directories as needed.
	Write(path string, data []byte) error

	// Remove deletes the file at path.
	Remove(path string) error

	// Exists reports whether path names an existing regular file.
	Exists(path string) bool
}

// Disk is the os-backed Store used in production.
type Disk struct{}

// NewDisk returns a Store reading and writing the real filesystem.
func NewDisk() *Disk {
	return &Disk{}
}

// List returns the immediate entries of dir.
func (*Disk) List(dir string) ([]Entry, error) {
	dirents, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, 0, len(dirents))
	for _, de := range dirents {
		entries = append(entries, Entry{Name: de.Name(), IsDir: de.IsDir()})
	}
	return entries, nil
}

// Read returns the contents of the file at path.
func (*Disk) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Write replaces the file at path with data, creating parent directories.
func (*Disk) Write(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// Remove deletes the file at path.
func (*Disk) Remove(path string) error {
	return os.Remove(path)
}

// Exists reports whether path is an existing regular file.
func (*Disk) Exists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
