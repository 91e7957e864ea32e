package pattern

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/lumenlab/slm-aim/internal/fsio"
)

// Shape is a requested array shape, rows = frame height, cols = frame width.
type Shape struct {
	Rows int
	Cols int
}

// Cache maps file paths to decoded phase arrays so repeated pattern loads
// skip disk and image decoding.
//
// Path identity is the cache key: the first load of a path fixes the stored
// array, and later requests return it regardless of the shape they ask for.
// Correction merges overwrite entries through Put together with the file
// write, which is the only invalidation there is. Not safe for concurrent
// use; the command dispatcher is the sole owner.
type Cache struct {
	store   fsio.Store
	entries map[string]*mat.Dense
}

// NewCache returns an empty cache reading misses through store.
func NewCache(store fsio.Store) *Cache {
	return &Cache{store: store, entries: make(map[string]*mat.Dense)}
}

// GetOrLoad returns the array cached for path, loading and decoding it on the
// first request. A non-nil shape resamples the freshly decoded array when its
// native shape differs. Load and decode failures are returned, not cached.
// Callers must not mutate the returned array.
func (c *Cache) GetOrLoad(path string, shape *Shape) (*mat.Dense, error) {
	if m, ok := c.entries[path]; ok {
		return m, nil
	}

	data, err := c.store.Read(path)
	if err != nil {
		return nil, fmt.Errorf("pattern: load %s: %w", path, err)
	}
	m, err := decodeGrayPhase(data)
	if err != nil {
		return nil, fmt.Errorf("pattern: load %s: %w", path, err)
	}
	if shape != nil {
		if rows, cols := m.Dims(); rows != shape.Rows || cols != shape.Cols {
			m = resample(m, shape.Rows, shape.Cols)
		}
	}

	c.entries[path] = m
	return m, nil
}

// Put unconditionally stores m under path, replacing any previous entry.
func (c *Cache) Put(path string, m *mat.Dense) {
	c.entries[path] = m
}
