package value

import (
	"encoding/json"
	"fmt"
	"math"
	"slices"
)

// FromGo converts plain Go data into a Value.
//
// Supported inputs are nil, bool, all integer kinds, float32/float64,
// string, json.Number, []any, []string, map[string]any, map[string]string,
// and Values themselves (returned as-is). Keys of Go maps are sorted so the
// resulting Map has a deterministic order.
func FromGo(x any) (Value, error) {
	switch v := x.(type) {
	case nil:
		return Null{}, nil
	case Value:
		return v, nil
	case bool:
		return Bool(v), nil
	case int:
		return Int(v), nil
	case int8:
		return Int(v), nil
	case int16:
		return Int(v), nil
	case int32:
		return Int(v), nil
	case int64:
		return Int(v), nil
	case uint:
		return fromUint(uint64(v))
	case uint8:
		return Int(v), nil
	case uint16:
		return Int(v), nil
	case uint32:
		return Int(v), nil
	case uint64:
		return fromUint(v)
	case float32:
		return Float(v), nil
	case float64:
		return Float(v), nil
	case string:
		return String(v), nil
	case json.Number:
		return fromNumber(string(v))
	case []any:
		seq := &Seq{items: make([]Value, 0, len(v))}
		for i, item := range v {
			iv, err := FromGo(item)
			if err != nil {
				return nil, fmt.Errorf("index %d: %w", i, err)
			}
			seq.items = append(seq.items, iv)
		}
		return seq, nil
	case []string:
		seq := &Seq{items: make([]Value, len(v))}
		for i, s := range v {
			seq.items[i] = String(s)
		}
		return seq, nil
	case map[string]any:
		m := NewMap()
		for _, k := range sortedKeys(v) {
			iv, err := FromGo(v[k])
			if err != nil {
				return nil, fmt.Errorf("key %q: %w", k, err)
			}
			m.Set(k, iv)
		}
		return m, nil
	case map[string]string:
		m := NewMap()
		for _, k := range sortedKeys(v) {
			m.Set(k, String(v[k]))
		}
		return m, nil
	default:
		return nil, fmt.Errorf("unsupported Go type %T", x)
	}
}

// ToGo converts a Value into plain Go data: nil, bool, int64, float64,
// string, []any and map[string]any. Map order is lost.
func ToGo(v Value) any {
	switch x := v.(type) {
	case nil, Null:
		return nil
	case Bool:
		return bool(x)
	case Int:
		return int64(x)
	case Float:
		return float64(x)
	case String:
		return string(x)
	case *Seq:
		out := make([]any, len(x.items))
		for i, item := range x.items {
			out[i] = ToGo(item)
		}
		return out
	case *Map:
		out := make(map[string]any, len(x.entries))
		for _, e := range x.entries {
			out[e.Key] = ToGo(e.Value)
		}
		return out
	default:
		panic(fmt.Sprintf("ToGo: unknown value type %T", v))
	}
}

func fromUint(u uint64) (Value, error) {
	if u > math.MaxInt64 {
		return nil, fmt.Errorf("integer %d overflows int64", u)
	}
	return Int(int64(u)), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
