package fsio

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func TestMemReadWriteRemove(t *testing.T) {
	m := NewMem()

	if err := m.Write("patterns/gauss.png", []byte{1, 2, 3}); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !m.Exists("patterns/gauss.png") {
		t.Errorf("Exists() = false after Write, want true")
	}

	got, err := m.Read("patterns/gauss.png")
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(got) != 3 || got[0] != 1 {
		t.Errorf("Read() = %v, want [1 2 3]", got)
	}

	// Mutating the returned slice must not affect the store.
	got[0] = 99
	again, _ := m.Read("patterns/gauss.png")
	if again[0] != 1 {
		t.Errorf("Read() after caller mutation = %v, want original contents", again)
	}

	if err := m.Remove("patterns/gauss.png"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if m.Exists("patterns/gauss.png") {
		t.Errorf("Exists() = true after Remove, want false")
	}
	if _, err := m.Read("patterns/gauss.png"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Read() after Remove error = %v, want fs.ErrNotExist", err)
	}
}

func TestMemList(t *testing.T) {
	m := NewMem()
	for _, p := range []string{
		"patterns/gauss_size_10.png",
		"patterns/airy.png",
		"patterns/custom_patterns/up.png",
		"patterns/custom_patterns/down.png",
		"elsewhere/red.png",
	} {
		if err := m.Write(p, []byte{0}); err != nil {
			t.Fatalf("Write(%s) error = %v", p, err)
		}
	}

	entries, err := m.List("patterns")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	want := []Entry{
		{Name: "airy.png"},
		{Name: "custom_patterns", IsDir: true},
		{Name: "gauss_size_10.png"},
	}
	if len(entries) != len(want) {
		t.Fatalf("List() returned %d entries, want %d: %v", len(entries), len(want), entries)
	}
	for i, e := range entries {
		if e != want[i] {
			t.Errorf("List()[%d] = %+v, want %+v", i, e, want[i])
		}
	}

	if _, err := m.List("missing"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("List(missing) error = %v, want fs.ErrNotExist", err)
	}
}

func TestDiskRoundTrip(t *testing.T) {
	d := NewDisk()
	root := t.TempDir()

	path := filepath.Join(root, "sub", "a.bin")
	if err := d.Write(path, []byte("hello")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if !d.Exists(path) {
		t.Errorf("Exists(%s) = false, want true", path)
	}
	if d.Exists(filepath.Join(root, "sub")) {
		t.Errorf("Exists(dir) = true, want false for directories")
	}

	got, err := d.Read(path)
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if string(got) != "hello" {
		t.Errorf("Read() = %q, want %q", got, "hello")
	}

	entries, err := d.List(filepath.Join(root, "sub"))
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Name != "a.bin" || entries[0].IsDir {
		t.Errorf("List() = %v, want single file a.bin", entries)
	}

	if err := d.Remove(path); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Stat after Remove error = %v, want fs.ErrNotExist", err)
	}
}
