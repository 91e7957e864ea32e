package fsio

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Mem is an in-memory Store for tests. Files are a flat map from
// slash-separated path to contents; directories exist implicitly wherever a
// file path implies them.
type Mem struct {
	files map[string][]byte
}

// NewMem returns an empty in-memory Store.
func NewMem() *Mem {
	return &Mem{files: make(map[string][]byte)}
}

// List returns the immediate entries under dir, files and the first level of
// implied subdirectories, sorted by name.
func (m *Mem) List(dir string) ([]Entry, error) {
	prefix := filepath.ToSlash(filepath.Clean(dir)) + "/"
	seen := make(map[string]bool)
	var entries []Entry
	for p := range m.files {
		rel, ok := strings.CutPrefix(filepath.ToSlash(p), prefix)
		if !ok || rel == "" {
			continue
		}
		name, rest, nested := strings.Cut(rel, "/")
		if seen[name] {
			continue
		}
		seen[name] = true
		entries = append(entries, Entry{Name: name, IsDir: nested && rest != ""})
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("list %s: %w", dir, fs.ErrNotExist)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Read returns the stored contents of path.
func (m *Mem) Read(path string) ([]byte, error) {
	data, ok := m.files[filepath.ToSlash(filepath.Clean(path))]
	if !ok {
		return nil, fmt.Errorf("read %s: %w", path, fs.ErrNotExist)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

// Write stores data at path, replacing any previous contents.
func (m *Mem) Write(path string, data []byte) error {
	cpy := make([]byte, len(data))
	copy(cpy, data)
	m.files[filepath.ToSlash(filepath.Clean(path))] = cpy
	return nil
}

// Remove deletes the file at path.
func (m *Mem) Remove(path string) error {
	key := filepath.ToSlash(filepath.Clean(path))
	if _, ok := m.files[key]; !ok {
		return fmt.Errorf("remove %s: %w", path, fs.ErrNotExist)
	}
	delete(m.files, key)
	return nil
}

// Exists reports whether a file is stored at path.
func (m *Mem) Exists(path string) bool {
	_, ok := m.files[filepath.ToSlash(filepath.Clean(path))]
	return ok
}
