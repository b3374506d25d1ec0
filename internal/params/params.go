// Package params provides parameter stores for embodiment.
//
// Engines only ever read a store through the two operations of Store.
// Context layers local values, a parent store, and lazily evaluated
// resolvers on top of that contract.
package params

import (
	"fmt"
	"maps"
	"slices"

	"github.com/roach88/embody/internal/value"
)

// Store supplies parameter values by name.
type Store interface {
	// Lookup returns the value bound to name.
	Lookup(name string) (value.Value, bool)

	// Names returns every bound name, sorted.
	Names() []string
}

// Map is a flat, immutable-by-convention Store.
type Map map[string]value.Value

// Lookup implements Store.
func (m Map) Lookup(name string) (value.Value, bool) {
	v, ok := m[name]
	return v, ok
}

// Names implements Store.
func (m Map) Names() []string {
	return slices.Sorted(maps.Keys(m))
}

// FromGo converts a map of plain Go data into a Map.
func FromGo(values map[string]any) (Map, error) {
	out := make(Map, len(values))
	for name, raw := range values {
		v, err := value.FromGo(raw)
		if err != nil {
			return nil, fmt.Errorf("parameter %q: %w", name, err)
		}
		out[name] = v
	}
	return out, nil
}

// Snapshot resolves every name of store once and returns the result as a
// Map. Embodying against a snapshot guarantees one call observes a single
// immutable set of values even when store evaluates resolvers per lookup.
// A nil store yields an empty Map.
func Snapshot(store Store) Map {
	if store == nil {
		return Map{}
	}
	if m, ok := store.(Map); ok {
		return m
	}
	names := store.Names()
	out := make(Map, len(names))
	for _, name := range names {
		if v, ok := store.Lookup(name); ok {
			out[name] = v
		}
	}
	return out
}

// Merge returns a Map holding every binding of stores, later stores
// overriding earlier ones. Nil stores are skipped.
func Merge(stores ...Store) Map {
	out := Map{}
	for _, s := range stores {
		maps.Copy(out, Snapshot(s))
	}
	return out
}
