package value

// Equal reports whether a and b are structurally equal.
//
// Int and Float are distinct kinds and never compare equal, so type
// preservation is observable through Equal. Map equality is order
// sensitive because key order is part of a Map's value. Equal does not
// guard against cycles; compare acyclic values only.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}

	switch av := a.(type) {
	case Null:
		return true
	case Bool:
		return av == b.(Bool)
	case Int:
		return av == b.(Int)
	case Float:
		bv := b.(Float)
		// NaN equals NaN here: a template leaf is equal to itself.
		return av == bv || (av != av && bv != bv)
	case String:
		return av == b.(String)
	case *Seq:
		bv := b.(*Seq)
		if av == bv {
			return true
		}
		if av.Len() != bv.Len() {
			return false
		}
		for i := range av.items {
			if !Equal(av.items[i], bv.items[i]) {
				return false
			}
		}
		return true
	case *Map:
		bv := b.(*Map)
		if av == bv {
			return true
		}
		if av.Len() != bv.Len() {
			return false
		}
		for i, e := range av.entries {
			other := bv.entries[i]
			if e.Key != other.Key || !Equal(e.Value, other.Value) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
