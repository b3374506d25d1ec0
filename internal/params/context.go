package params

import (
	"maps"
	"slices"

	"github.com/google/uuid"

	"github.com/roach88/embody/internal/value"
)

// Resolver computes a parameter value on demand. It is called on every
// lookup of its name that is not shadowed by a local or parent binding.
type Resolver func() value.Value

// Context is a hierarchical Store.
//
// Lookup order is local values, then the parent store, then resolvers.
// A Context is never mutated after construction: With, Child and Register
// return new contexts.
type Context struct {
	values    Map
	parent    Store
	resolvers map[string]Resolver
}

// NewContext creates a root context holding a copy of values.
func NewContext(values Map) *Context {
	return &Context{values: maps.Clone(values)}
}

// Child returns a new context whose parent is c.
func (c *Context) Child(values Map) *Context {
	return &Context{values: maps.Clone(values), parent: c}
}

// With returns a copy of c with values overriding its local bindings.
func (c *Context) With(values Map) *Context {
	merged := maps.Clone(c.values)
	if merged == nil {
		merged = Map{}
	}
	maps.Copy(merged, values)
	return &Context{values: merged, parent: c.parent, resolvers: c.resolvers}
}

// Register returns a copy of c with resolver r bound to name.
func (c *Context) Register(name string, r Resolver) *Context {
	resolvers := maps.Clone(c.resolvers)
	if resolvers == nil {
		resolvers = make(map[string]Resolver)
	}
	resolvers[name] = r
	return &Context{values: c.values, parent: c.parent, resolvers: resolvers}
}

// Lookup implements Store.
func (c *Context) Lookup(name string) (value.Value, bool) {
	if v, ok := c.values[name]; ok {
		return v, true
	}
	if c.parent != nil {
		if v, ok := c.parent.Lookup(name); ok {
			return v, true
		}
	}
	if r, ok := c.resolvers[name]; ok {
		return r(), true
	}
	return nil, false
}

// Has reports whether name resolves.
func (c *Context) Has(name string) bool {
	_, ok := c.Lookup(name)
	return ok
}

// Names implements Store. It returns the sorted union of local, parent and
// resolver names.
func (c *Context) Names() []string {
	seen := make(map[string]struct{}, len(c.values)+len(c.resolvers))
	for name := range c.values {
		seen[name] = struct{}{}
	}
	if c.parent != nil {
		for _, name := range c.parent.Names() {
			seen[name] = struct{}{}
		}
	}
	for name := range c.resolvers {
		seen[name] = struct{}{}
	}
	return slices.Sorted(maps.Keys(seen))
}

// Builtins returns a context holding the built-in resolvers:
//
//	uuid  a fresh UUIDv7 string per lookup
func Builtins() *Context {
	return NewContext(nil).Register("uuid", func() value.Value {
		return value.String(uuid.Must(uuid.NewV7()).String())
	})
}
