// Package subst applies parameter values to a single string.
//
// Substitute distinguishes three cases:
//
//   - exact match: the string is one marker and nothing else. The bound
//     value is returned unchanged, type included.
//   - partial match: the string contains markers among other text. Each
//     bound marker is replaced with the plain string form of its value and
//     the result is always a String.
//   - no match: the string is returned unchanged.
//
// Only strict mode can fail, and only because of absent names.
package subst

import (
	"github.com/roach88/embody/internal/errdefs"
	"github.com/roach88/embody/internal/params"
	"github.com/roach88/embody/internal/syntax"
	"github.com/roach88/embody/internal/value"
)

// Substitute resolves the markers of s against store.
//
// Under lenient mode an absent exact-match name returns s unchanged and an
// absent name in a partial match is left as literal marker text. Under
// strict mode either case fails with MISSING_PARAMETER naming every absent
// marker of s.
func Substitute(s string, store params.Store, syn *syntax.Syntax, strict bool) (value.Value, error) {
	if name, ok := syn.IsExact(s); ok {
		if v, found := store.Lookup(name); found {
			return v, nil
		}
		if strict {
			return nil, errdefs.NewMissingParameter(name)
		}
		return value.String(s), nil
	}

	names := syn.FindAll(s)
	if len(names) == 0 {
		return value.String(s), nil
	}

	if strict {
		var missing []string
		for _, name := range names {
			if _, found := store.Lookup(name); !found {
				missing = append(missing, name)
			}
		}
		if len(missing) > 0 {
			return nil, errdefs.NewMissingParameter(missing...)
		}
	}

	out := syn.ReplaceFunc(s, func(name string) (string, bool) {
		v, found := store.Lookup(name)
		if !found {
			return "", false
		}
		return value.Stringify(v), true
	})
	return value.String(out), nil
}

// Key substitutes a map key. A key that resolves to a non-String value
// (an exact-match key bound to a number, say) is converted with
// value.Stringify.
func Key(key string, store params.Store, syn *syntax.Syntax, strict bool) (string, error) {
	v, err := Substitute(key, store, syn, strict)
	if err != nil {
		return "", err
	}
	return value.Stringify(v), nil
}

// Leaf embodies a scalar leaf. Strings are substituted and every other
// value is returned unchanged.
func Leaf(v value.Value, store params.Store, syn *syntax.Syntax, strict bool) (value.Value, error) {
	s, ok := v.(value.String)
	if !ok {
		return v, nil
	}
	return Substitute(string(s), store, syn, strict)
}
