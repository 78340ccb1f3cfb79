package tag

import (
	"slices"
	"strings"
)

// Catalog is the set of tags seen by a store. Tags are unique
// case-insensitively and keep the casing they were first seen with.
//
// Every tag is in exactly one of two partitions: available or viewing. New
// tags start out available; callers move them between partitions.
//
// A Catalog is not safe for concurrent use; the store serializes access.
type Catalog struct {
	display map[string]string
	viewing map[string]struct{}
}

// NewCatalog creates an empty [Catalog].
func NewCatalog() *Catalog {
	return &Catalog{
		display: make(map[string]string),
		viewing: make(map[string]struct{}),
	}
}

func key(name string) string {
	return strings.ToLower(name)
}

// Add merges names into the catalog. Known names are left in their current
// partition; new names become available. Blank names are skipped.
func (c *Catalog) Add(names ...string) {
	for _, n := range names {
		c.add(n)
	}
}

func (c *Catalog) add(name string) (string, bool) {
	if strings.TrimSpace(name) == "" {
		return "", false
	}

	k := key(name)
	if _, ok := c.display[k]; !ok {
		c.display[k] = name
	}

	return k, true
}

// Contains reports whether the catalog holds name, ignoring case.
func (c *Catalog) Contains(name string) bool {
	_, ok := c.display[key(name)]
	return ok
}

// Len returns the number of tags in the catalog.
func (c *Catalog) Len() int {
	return len(c.display)
}

// Available returns the available tags sorted by text.
func (c *Catalog) Available() []string {
	return c.collect(func(k string) bool {
		_, ok := c.viewing[k]
		return !ok
	})
}

// Viewing returns the tags currently selected for viewing, sorted by text.
func (c *Catalog) Viewing() []string {
	return c.collect(func(k string) bool {
		_, ok := c.viewing[k]
		return ok
	})
}

func (c *Catalog) collect(keep func(string) bool) []string {
	keys := make([]string, 0, len(c.display))
	for k := range c.display {
		if keep(k) {
			keys = append(keys, k)
		}
	}

	slices.Sort(keys)

	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = c.display[k]
	}

	return out
}

// Activate moves names to the viewing partition, adding unknown names.
func (c *Catalog) Activate(names ...string) {
	for _, n := range names {
		k, ok := c.add(n)
		if ok {
			c.viewing[k] = struct{}{}
		}
	}
}

// Deactivate moves names back to the available partition. Unknown names are
// ignored.
func (c *Catalog) Deactivate(names ...string) {
	for _, n := range names {
		delete(c.viewing, key(n))
	}
}

// ActivateAll moves every tag to the viewing partition.
func (c *Catalog) ActivateAll() {
	for k := range c.display {
		c.viewing[k] = struct{}{}
	}
}

// DeactivateAll moves every tag to the available partition.
func (c *Catalog) DeactivateAll() {
	clear(c.viewing)
}

// SetViewing makes names the exact viewing partition. Unknown names are
// added; every other tag becomes available.
func (c *Catalog) SetViewing(names []string) {
	clear(c.viewing)
	c.Activate(names...)
}

// Reset removes every tag.
func (c *Catalog) Reset() {
	clear(c.display)
	clear(c.viewing)
}
