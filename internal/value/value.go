package value

import (
	"iter"
	"slices"
)

// Value is a sealed interface over the tagged union of template and result
// values. Only Null, Bool, Int, Float, String, *Seq and *Map implement it.
//
// Scalars are plain Go values. Containers are pointers, and the pointer is
// the container's identity: cycle and diamond detection compare identities,
// never contents.
type Value interface {
	Kind() Kind
	isValue() // Sealed - only the types in this package implement it
}

// Kind identifies which member of the union a Value is.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindSeq
	KindMap
)

var kindNames = [...]string{
	KindNull:   "null",
	KindBool:   "bool",
	KindInt:    "int",
	KindFloat:  "float",
	KindString: "string",
	KindSeq:    "seq",
	KindMap:    "map",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Null is the absent value.
type Null struct{}

func (Null) Kind() Kind { return KindNull }
func (Null) isValue()   {}

// Bool is a boolean value.
type Bool bool

func (Bool) Kind() Kind { return KindBool }
func (Bool) isValue()   {}

// Int is a 64-bit signed integer.
type Int int64

func (Int) Kind() Kind { return KindInt }
func (Int) isValue()   {}

// Float is a 64-bit floating point number.
type Float float64

func (Float) Kind() Kind { return KindFloat }
func (Float) isValue()   {}

// String is a text value. Template strings may contain markers.
type String string

func (String) Kind() Kind { return KindString }
func (String) isValue()   {}

// Seq is an ordered sequence of values.
type Seq struct {
	items []Value
}

func (*Seq) Kind() Kind { return KindSeq }
func (*Seq) isValue()   {}

// NewSeq creates a sequence holding a copy of items.
func NewSeq(items ...Value) *Seq {
	return &Seq{items: slices.Clone(items)}
}

// Len returns the number of items.
func (s *Seq) Len() int {
	if s == nil {
		return 0
	}
	return len(s.items)
}

// At returns the item at index i. It panics if i is out of range.
func (s *Seq) At(i int) Value {
	return s.items[i]
}

// Set replaces the item at index i. It panics if i is out of range.
func (s *Seq) Set(i int, v Value) {
	s.items[i] = v
}

// Append adds v at the end of the sequence.
func (s *Seq) Append(v Value) {
	s.items = append(s.items, v)
}

// Items returns a copy of the items.
func (s *Seq) Items() []Value {
	if s == nil {
		return nil
	}
	return slices.Clone(s.items)
}

// All iterates over index/item pairs in order.
func (s *Seq) All() iter.Seq2[int, Value] {
	return func(yield func(int, Value) bool) {
		if s == nil {
			return
		}
		for i, v := range s.items {
			if !yield(i, v) {
				return
			}
		}
	}
}

// Entry is a key/value pair of a Map.
type Entry struct {
	Key   string
	Value Value
}

// E is a shorthand for Entry for ergonomic construction.
// Example: NewMap(E("name", String("cart")), E("count", Int(5)))
func E(key string, v Value) Entry {
	return Entry{Key: key, Value: v}
}

// Map is an insertion-ordered mapping from unique string keys to values.
type Map struct {
	entries []Entry
	index   map[string]int
}

func (*Map) Kind() Kind { return KindMap }
func (*Map) isValue()   {}

// NewMap creates a map from entries. A repeated key replaces the earlier
// value and keeps the earlier position, exactly like Set.
func NewMap(entries ...Entry) *Map {
	m := &Map{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		m.Set(e.Key, e.Value)
	}
	return m
}

// Len returns the number of entries.
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return len(m.entries)
}

// Get returns the value stored under key.
func (m *Map) Get(key string) (Value, bool) {
	if m == nil {
		return nil, false
	}
	i, ok := m.index[key]
	if !ok {
		return nil, false
	}
	return m.entries[i].Value, true
}

// Has reports whether key is present.
func (m *Map) Has(key string) bool {
	_, ok := m.Get(key)
	return ok
}

// Set stores v under key. An existing key keeps its position.
func (m *Map) Set(key string, v Value) {
	if m.index == nil {
		m.index = make(map[string]int)
	}
	if i, ok := m.index[key]; ok {
		m.entries[i].Value = v
		return
	}
	m.index[key] = len(m.entries)
	m.entries = append(m.entries, Entry{Key: key, Value: v})
}

// At returns the i-th entry in insertion order.
func (m *Map) At(i int) Entry {
	return m.entries[i]
}

// Keys returns the keys in insertion order.
func (m *Map) Keys() []string {
	if m == nil {
		return nil
	}
	keys := make([]string, len(m.entries))
	for i, e := range m.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of the entries in insertion order.
func (m *Map) Entries() []Entry {
	if m == nil {
		return nil
	}
	return slices.Clone(m.entries)
}

// All iterates over key/value pairs in insertion order.
func (m *Map) All() iter.Seq2[string, Value] {
	return func(yield func(string, Value) bool) {
		if m == nil {
			return
		}
		for _, e := range m.entries {
			if !yield(e.Key, e.Value) {
				return
			}
		}
	}
}

// IsContainer reports whether v is a *Seq or *Map.
func IsContainer(v Value) bool {
	switch v.(type) {
	case *Seq, *Map:
		return true
	default:
		return false
	}
}

// IsEmptyContainer reports whether v is a container with no children.
func IsEmptyContainer(v Value) bool {
	switch c := v.(type) {
	case *Seq:
		return c.Len() == 0
	case *Map:
		return c.Len() == 0
	default:
		return false
	}
}
