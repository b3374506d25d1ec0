package loader

import (
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/roach88/embody/internal/value"
)

// decodeCUE compiles data as one CUE file and exports its concrete value.
// Regular fields keep declaration order; definitions and hidden fields are
// not part of the result.
func decodeCUE(data []byte, filename string) (value.Value, error) {
	ctx := cuecontext.New()

	var opts []cue.BuildOption
	if filename != "" {
		opts = append(opts, cue.Filename(filename))
	}
	v := ctx.CompileBytes(data, opts...)
	if err := v.Err(); err != nil {
		return nil, fmt.Errorf("building CUE value: %w", err)
	}
	if err := v.Validate(cue.Concrete(true)); err != nil {
		return nil, fmt.Errorf("CUE value is not concrete: %w", err)
	}
	return fromCUE(v)
}

func fromCUE(v cue.Value) (value.Value, error) {
	switch v.Kind() {
	case cue.NullKind:
		return value.Null{}, nil

	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, err
		}
		return value.Bool(b), nil

	case cue.IntKind:
		i, err := v.Int64()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", v.Path(), err)
		}
		return value.Int(i), nil

	case cue.FloatKind:
		f, err := v.Float64()
		if err != nil {
			return nil, fmt.Errorf("%s: %w", v.Path(), err)
		}
		return value.Float(f), nil

	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, err
		}
		return value.String(s), nil

	case cue.StructKind:
		iter, err := v.Fields()
		if err != nil {
			return nil, fmt.Errorf("%s: iterating fields: %w", v.Path(), err)
		}
		m := value.NewMap()
		for iter.Next() {
			child, err := fromCUE(iter.Value())
			if err != nil {
				return nil, err
			}
			m.Set(iter.Selector().Unquoted(), child)
		}
		return m, nil

	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, fmt.Errorf("%s: iterating list: %w", v.Path(), err)
		}
		s := value.NewSeq()
		for iter.Next() {
			child, err := fromCUE(iter.Value())
			if err != nil {
				return nil, err
			}
			s.Append(child)
		}
		return s, nil

	default:
		return nil, fmt.Errorf("%s: unsupported CUE kind %s", v.Path(), v.Kind())
	}
}
