// Package catalog builds the in-memory index of selectable pattern files.
//
// Base pattern files live directly in the pattern directory and encode their
// selectable properties in the filename: <family>[_<prop>_<value>]*.<ext>.
// Uploaded patterns live under the custom_patterns subdirectory and are
// indexed under the reserved "custom" family keyed by raw filename. The
// catalog is rebuilt from a directory snapshot on every request; it is never
// maintained incrementally.
package catalog

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/lumenlab/slm-aim/internal/fsio"
)

// Filesystem layout conventions shared with the pattern resolver and the
// command dispatcher.
const (
	// CustomDir is the subdirectory of the base pattern directory that
	// holds uploaded patterns.
	CustomDir = "custom_patterns"

	// CustomFamily is the reserved family name uploads are indexed under.
	CustomFamily = "custom"

	// CustomProperty is the single synthetic property of the custom family.
	CustomProperty = "filename"
)

// propDelimiter separates family, property and value tokens in a filename.
const propDelimiter = "_"

// Family is one selectable pattern family: the properties discovered for it,
// in first-seen order, and every value observed per property. Values are not
// deduplicated; repeats mirror on-disk redundancy.
type Family struct {
	Properties []string
	Values     map[string][]string
}

// Catalog is the full index of one directory snapshot. Names lists every
// family lexically sorted and is what peers use to populate selection UIs.
type Catalog struct {
	Families map[string]*Family
	Names    []string
}

// Build scans baseDir (depth 1) plus its custom_patterns subdirectory and
// returns the catalog of everything found. It never fails: unreadable
// directories and malformed filenames contribute nothing.
func Build(store fsio.Store, baseDir string) *Catalog {
	c := &Catalog{Families: make(map[string]*Family)}

	entries, err := store.List(baseDir)
	if err == nil {
		for _, e := range entries {
			if e.IsDir {
				continue
			}
			c.addBaseFile(e.Name)
		}
	}

	custom, err := store.List(filepath.Join(baseDir, CustomDir))
	if err == nil {
		for _, e := range custom {
			if e.IsDir {
				continue
			}
			c.add(CustomFamily, CustomProperty, e.Name)
		}
	}

	c.Names = make([]string, 0, len(c.Families))
	for name := range c.Families {
		c.Names = append(c.Names, name)
	}
	sort.Strings(c.Names)
	return c
}

// addBaseFile registers one base-directory filename. The stem splits into
// family, then (property, value) pairs; a dangling property token without a
// value disqualifies the whole file.
func (c *Catalog) addBaseFile(name string) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	tokens := strings.Split(stem, propDelimiter)
	family, pairs := tokens[0], tokens[1:]
	if len(pairs)%2 != 0 {
		return
	}
	c.family(family)
	for i := 0; i < len(pairs); i += 2 {
		c.add(family, pairs[i], pairs[i+1])
	}
}

// family returns the named family, creating it on first sight.
func (c *Catalog) family(name string) *Family {
	f, ok := c.Families[name]
	if !ok {
		f = &Family{Values: make(map[string][]string)}
		c.Families[name] = f
	}
	return f
}

// add appends value under (family, property), registering the property in
// first-seen order.
func (c *Catalog) add(family, property, value string) {
	f := c.family(family)
	if _, seen := f.Values[property]; !seen {
		f.Properties = append(f.Properties, property)
	}
	f.Values[property] = append(f.Values[property], value)
}
