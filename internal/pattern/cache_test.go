package pattern

import (
	"testing"

	"github.com/lumenlab/slm-aim/internal/fsio"
)

// countingStore counts reads so tests can prove when the cache skips disk.
type countingStore struct {
	fsio.Store
	reads int
}

func (s *countingStore) Read(path string) ([]byte, error) {
	s.reads++
	return s.Store.Read(path)
}

func seedStore(t *testing.T, files map[string][]byte) *fsio.Mem {
	t.Helper()
	store := fsio.NewMem()
	for path, data := range files {
		if err := store.Write(path, data); err != nil {
			t.Fatalf("seed %s: %v", path, err)
		}
	}
	return store
}

func TestCacheLoadsOnce(t *testing.T) {
	cs := &countingStore{Store: seedStore(t, map[string][]byte{
		"a.png": uniformPNG(t, 2, 2, 10),
	})}
	cache := NewCache(cs)

	first, err := cache.GetOrLoad("a.png", nil)
	if err != nil {
		t.Fatalf("GetOrLoad() error = %v", err)
	}
	second, err := cache.GetOrLoad("a.png", nil)
	if err != nil {
		t.Fatalf("GetOrLoad() error = %v", err)
	}

	if first != second {
		t.Error("GetOrLoad() returned distinct arrays for the same path")
	}
	if cs.reads != 1 {
		t.Errorf("store reads = %d, want 1", cs.reads)
	}
}

// The first load fixes the stored shape; later requests get that array back
// whatever shape they ask for.
func TestCacheFirstAccessWins(t *testing.T) {
	cache := NewCache(seedStore(t, map[string][]byte{
		"a.png": uniformPNG(t, 2, 2, 10),
	}))

	first, err := cache.GetOrLoad("a.png", &Shape{Rows: 3, Cols: 4})
	if err != nil {
		t.Fatalf("GetOrLoad() error = %v", err)
	}
	if r, c := first.Dims(); r != 3 || c != 4 {
		t.Fatalf("first load dims = (%d, %d), want (3, 4)", r, c)
	}

	second, err := cache.GetOrLoad("a.png", &Shape{Rows: 1, Cols: 1})
	if err != nil {
		t.Fatalf("GetOrLoad() error = %v", err)
	}
	if r, c := second.Dims(); r != 3 || c != 4 {
		t.Errorf("second load dims = (%d, %d), want cached (3, 4)", r, c)
	}
}

func TestCacheNativeShape(t *testing.T) {
	cache := NewCache(seedStore(t, map[string][]byte{
		"a.png": uniformPNG(t, 3, 2, 10),
	}))

	m, err := cache.GetOrLoad("a.png", nil)
	if err != nil {
		t.Fatalf("GetOrLoad() error = %v", err)
	}
	if r, c := m.Dims(); r != 2 || c != 3 {
		t.Errorf("dims = (%d, %d), want native (2, 3)", r, c)
	}
}

func TestCacheFailuresNotCached(t *testing.T) {
	store := seedStore(t, nil)
	cache := NewCache(store)

	if _, err := cache.GetOrLoad("late.png", nil); err == nil {
		t.Fatal("GetOrLoad() on missing file: error = nil")
	}

	if err := store.Write("late.png", uniformPNG(t, 2, 2, 5)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if _, err := cache.GetOrLoad("late.png", nil); err != nil {
		t.Errorf("GetOrLoad() after write: error = %v", err)
	}
}

func TestCacheRejectsCorruptRaster(t *testing.T) {
	cache := NewCache(seedStore(t, map[string][]byte{
		"bad.png": []byte("not a raster"),
	}))

	if _, err := cache.GetOrLoad("bad.png", nil); err == nil {
		t.Error("GetOrLoad() on corrupt raster: error = nil")
	}
}

func TestCachePutReplaces(t *testing.T) {
	cache := NewCache(seedStore(t, map[string][]byte{
		"a.png": uniformPNG(t, 2, 2, 10),
	}))

	if _, err := cache.GetOrLoad("a.png", nil); err != nil {
		t.Fatalf("GetOrLoad() error = %v", err)
	}

	replacement, err := decodeGrayPhase(uniformPNG(t, 2, 2, 99))
	if err != nil {
		t.Fatalf("decodeGrayPhase() error = %v", err)
	}
	cache.Put("a.png", replacement)

	got, err := cache.GetOrLoad("a.png", nil)
	if err != nil {
		t.Fatalf("GetOrLoad() error = %v", err)
	}
	if got != replacement {
		t.Error("GetOrLoad() after Put() did not return the replacement array")
	}
}
