package tool

import (
	"slices"
	"strings"
	"sync"
)

// Catalog is a named, concurrency-safe collection of tool specs.
// Names are matched case-insensitively.
type Catalog struct {
	mu    sync.RWMutex
	specs map[string]*ToolSpec
	order []string
}

// NewCatalog creates a catalog holding the given specs.
func NewCatalog(specs ...*ToolSpec) *Catalog {
	c := &Catalog{specs: make(map[string]*ToolSpec)}
	c.Add(specs...)
	return c
}

// Add registers specs, replacing any spec with the same name.
func (c *Catalog) Add(specs ...*ToolSpec) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, s := range specs {
		if s == nil {
			continue
		}
		key := strings.ToLower(s.Name)
		if _, exists := c.specs[key]; !exists {
			c.order = append(c.order, key)
		}
		c.specs[key] = s
	}
}

// Get retrieves a spec by name.
func (c *Catalog) Get(name string) (*ToolSpec, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s, ok := c.specs[strings.ToLower(name)]
	return s, ok
}

// Has reports whether a spec with the given name exists.
func (c *Catalog) Has(name string) bool {
	_, ok := c.Get(name)
	return ok
}

// Remove deletes a spec by name and reports whether it was present.
func (c *Catalog) Remove(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := strings.ToLower(name)
	if _, ok := c.specs[key]; !ok {
		return false
	}
	delete(c.specs, key)
	c.order = slices.DeleteFunc(c.order, func(k string) bool { return k == key })
	return true
}

// Specs returns the registered specs in registration order.
func (c *Catalog) Specs() []*ToolSpec {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*ToolSpec, 0, len(c.order))
	for _, key := range c.order {
		out = append(out, c.specs[key])
	}
	return out
}

// Size returns the number of specs in the catalog.
func (c *Catalog) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.specs)
}

// Merge adds every spec of other, replacing specs with the same name.
func (c *Catalog) Merge(other *Catalog) {
	if other == nil || other == c {
		return
	}
	c.Add(other.Specs()...)
}

// Clone returns an independent copy of the catalog.
func (c *Catalog) Clone() *Catalog {
	return NewCatalog(c.Specs()...)
}

// Resolve matches a tool call against the catalog and decodes its arguments.
func (c *Catalog) Resolve(id, name, arguments string) (*ToolCall, error) {
	spec, ok := c.Get(name)
	if !ok {
		return nil, &UnknownToolError{Name: name}
	}
	return Resolve([]*ToolSpec{spec}, id, name, arguments)
}
