// Package flatten converts nested values to ordered path/leaf lists and
// back.
//
// Leaves are scalars and empty containers. Recording empty containers
// keeps Unflatten(Flatten(v)) equal to v for every acyclic v, including
// empty maps and sequences. A scalar root flattens to a single leaf with
// the empty path.
package flatten

import (
	"fmt"

	"github.com/roach88/embody/internal/cycle"
	"github.com/roach88/embody/internal/errdefs"
	"github.com/roach88/embody/internal/paths"
	"github.com/roach88/embody/internal/value"
)

// Leaf is one path/value pair of a flattened value.
type Leaf struct {
	Path  paths.Path
	Value value.Value
}

// Flat is a flattened value. Leaves appear in depth-first order, map
// entries in insertion order and sequence items by index.
type Flat []Leaf

// Flatten converts v into its leaves. It fails with CYCLE_DETECTED when v
// contains a cycle. Shared acyclic subtrees are flattened once per path
// that reaches them.
func Flatten(v value.Value) (Flat, error) {
	var flat Flat
	err := cycle.Walk(v, func(at *cycle.Trail, node value.Value) error {
		if value.IsContainer(node) && !value.IsEmptyContainer(node) {
			return nil
		}
		flat = append(flat, Leaf{Path: at.Path(), Value: node})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return flat, nil
}

// Unflatten rebuilds a nested value from flat. An empty Flat yields an
// empty map.
func Unflatten(flat Flat) (value.Value, error) {
	b := NewBuilder()
	for _, leaf := range flat {
		if err := b.Put(leaf.Path, leaf.Path, leaf.Value); err != nil {
			return nil, err
		}
	}
	return b.Result(), nil
}

// Builder reconstructs a nested value leaf by leaf.
//
// The container created for a segment is a sequence when the following
// segment is an index and a map otherwise. Sequence gaps are filled with
// Null until the needed index exists. Each map key remembers the template
// key that produced it, so two different template keys resolving to the
// same key fail with KEY_COLLISION instead of merging.
type Builder struct {
	root    value.Value
	origins map[*value.Map]map[string]string
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{origins: make(map[*value.Map]map[string]string)}
}

// Put stores v at resolved. origin is the path of the same leaf before
// key substitution and must have the same length and segment types as
// resolved; Unflatten passes the same path twice.
//
// Empty containers are stored as fresh empty containers, never as the
// instance passed in.
func (b *Builder) Put(origin, resolved paths.Path, v value.Value) error {
	if len(origin) != len(resolved) {
		return fmt.Errorf("origin %s and resolved %s differ in length", origin, resolved)
	}
	v = freshIfEmpty(v)

	if len(resolved) == 0 {
		if b.root != nil {
			return errdefs.NewInvalidPath("", "root value conflicts with existing structure")
		}
		b.root = v
		return nil
	}

	if b.root == nil {
		b.root = newContainer(resolved[0])
	} else if !fits(b.root, resolved[0]) {
		return errdefs.NewInvalidPath(resolved[:1].Pointer(), conflictReason(b.root, resolved[0]))
	}

	cur := b.root
	last := len(resolved) - 1
	for i := 0; i < last; i++ {
		child, err := b.child(cur, origin[i], resolved[:i+1], resolved[i+1])
		if err != nil {
			return err
		}
		cur = child
	}
	return b.set(cur, origin[last], resolved, v)
}

// Result returns the reconstructed value, or an empty map when nothing
// was put.
func (b *Builder) Result() value.Value {
	if b.root == nil {
		return value.NewMap()
	}
	return b.root
}

// child returns the container stored at the last segment of at inside
// parent, creating one suited to next when absent.
func (b *Builder) child(parent value.Value, origin paths.Segment, at paths.Path, next paths.Segment) (value.Value, error) {
	seg := at[len(at)-1]
	existing, err := b.slot(parent, origin, at)
	if err != nil {
		return nil, err
	}
	if existing != nil && !isPlaceholder(parent, existing) {
		if !fits(existing, next) {
			return nil, errdefs.NewInvalidPath(at.Pointer(), conflictReason(existing, next))
		}
		return existing, nil
	}

	c := newContainer(next)
	store(parent, seg, c)
	return c, nil
}

// set stores a leaf at the last segment of at inside parent.
func (b *Builder) set(parent value.Value, origin paths.Segment, at paths.Path, v value.Value) error {
	existing, err := b.slot(parent, origin, at)
	if err != nil {
		return err
	}
	if existing != nil && !isPlaceholder(parent, existing) {
		return errdefs.NewInvalidPath(at.Pointer(), "duplicate leaf path")
	}
	store(parent, at[len(at)-1], v)
	return nil
}

// slot prepares parent to hold the last segment of at and returns the
// value already there, if any. Sequences are padded with Null; map keys
// are checked against the template key that first produced them.
func (b *Builder) slot(parent value.Value, origin paths.Segment, at paths.Path) (value.Value, error) {
	seg := at[len(at)-1]
	switch c := parent.(type) {
	case *value.Map:
		if seg.IsIndex() {
			return nil, errdefs.NewInvalidPath(at.Pointer(), "index segment applied to a map")
		}
		owners := b.origins[c]
		if owners == nil {
			owners = make(map[string]string)
			b.origins[c] = owners
		}
		if prev, ok := owners[seg.Key()]; ok && prev != origin.Key() {
			return nil, errdefs.NewKeyCollision(seg.Key())
		}
		owners[seg.Key()] = origin.Key()
		existing, _ := c.Get(seg.Key())
		return existing, nil
	case *value.Seq:
		if !seg.IsIndex() {
			return nil, errdefs.NewInvalidPath(at.Pointer(), "key segment applied to a sequence")
		}
		if seg.Index() < 0 {
			return nil, errdefs.NewInvalidPath(at.Pointer(), "negative sequence index")
		}
		for c.Len() <= seg.Index() {
			c.Append(value.Null{})
		}
		return c.At(seg.Index()), nil
	default:
		return nil, errdefs.NewInvalidPath(at.Pointer(), "path descends into a scalar")
	}
}

// isPlaceholder reports whether existing is a Null in a sequence slot,
// which is treated as gap padding and may be replaced.
func isPlaceholder(parent, existing value.Value) bool {
	if _, ok := parent.(*value.Seq); !ok {
		return false
	}
	_, isNull := existing.(value.Null)
	return isNull
}

func store(parent value.Value, seg paths.Segment, v value.Value) {
	switch c := parent.(type) {
	case *value.Map:
		c.Set(seg.Key(), v)
	case *value.Seq:
		c.Set(seg.Index(), v)
	}
}

func newContainer(next paths.Segment) value.Value {
	if next.IsIndex() {
		return value.NewSeq()
	}
	return value.NewMap()
}

func fits(container value.Value, next paths.Segment) bool {
	switch container.(type) {
	case *value.Seq:
		return next.IsIndex()
	case *value.Map:
		return !next.IsIndex()
	default:
		return false
	}
}

func conflictReason(existing value.Value, next paths.Segment) string {
	want := "map"
	if next.IsIndex() {
		want = "seq"
	}
	return fmt.Sprintf("path needs a %s but found a %s", want, existing.Kind())
}

func freshIfEmpty(v value.Value) value.Value {
	switch c := v.(type) {
	case *value.Seq:
		if c.Len() == 0 {
			return value.NewSeq()
		}
	case *value.Map:
		if c.Len() == 0 {
			return value.NewMap()
		}
	}
	return v
}
