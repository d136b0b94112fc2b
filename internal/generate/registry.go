package generate

import (
	"fmt"
	"sort"
	"sync"

	"github.com/xcono/oanda/internal/models"
)

// Entry records where a definition was documented
type Entry struct {
	Page       string
	Definition models.Definition
}

// Registry maps definition names to the page that documents them. It is the
// lookup context threaded through generation; it is safe for concurrent use so
// pages can be registered from several workers.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]Entry),
	}
}

// Register adds every definition of a schema. A name documented on two
// different pages is an error; the first registration is kept.
func (r *Registry) Register(schema *models.Schema) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, d := range schema.Definitions {
		if existing, ok := r.entries[d.Name]; ok && existing.Page != schema.Name {
			return fmt.Errorf("definition %s documented on both %q and %q", d.Name, existing.Page, schema.Name)
		}
		r.entries[d.Name] = Entry{Page: schema.Name, Definition: d}
	}
	return nil
}

// Lookup returns the entry registered for name
func (r *Registry) Lookup(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.entries[name]
	return e, ok
}

// Len returns the number of registered definitions
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.entries)
}

// Unresolved returns the sorted names a schema refers to that are neither
// primitives nor registered definitions.
func (r *Registry) Unresolved(schema *models.Schema) []string {
	missing := make(map[string]bool)
	check := func(name string) {
		if name == "" || isPrimitive(name) {
			return
		}
		if _, ok := r.Lookup(name); !ok {
			missing[name] = true
		}
	}

	for _, d := range schema.Definitions {
		switch v := d.Value.(type) {
		case *models.Struct:
			for _, f := range v.Fields {
				check(f.TypeName)
			}
		case models.Table:
			for _, row := range v.Rows {
				check(models.RowType(row))
			}
		case models.Empty:
			for _, name := range v.ImplementedBy {
				check(name)
			}
		}
	}
	for _, s := range schema.Streams {
		for _, m := range s.Messages {
			check(m)
		}
	}

	names := make([]string, 0, len(missing))
	for name := range missing {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
