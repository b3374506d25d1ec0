// Package loader reads templates and parameter sets from files and encodes
// embodied results.
//
// The file format is chosen by extension:
//
//	.json            JSON
//	.jsonc           JSON with comments and trailing commas
//	.yaml, .yml      YAML; anchors and aliases become shared containers
//	.cue             CUE; the value must be concrete
//	.cbor            CBOR (parameters only)
//	.db, .sqlite     SQLite parameter store (parameters only)
//
// Map key order is preserved for every template format.
package loader

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/roach88/embody/internal/params"
	"github.com/roach88/embody/internal/store"
	"github.com/roach88/embody/internal/value"
)

// Format identifies a file format.
type Format string

const (
	FormatJSON   Format = "json"
	FormatJSONC  Format = "jsonc"
	FormatYAML   Format = "yaml"
	FormatCUE    Format = "cue"
	FormatCBOR   Format = "cbor"
	FormatSQLite Format = "sqlite"
)

// ErrUnsupportedFormat is returned for unknown extensions and for formats
// that cannot serve the requested role.
var ErrUnsupportedFormat = errors.New("unsupported format")

// ErrDecode wraps every failure to parse a file in a supported format.
var ErrDecode = errors.New("cannot decode")

var extensions = map[string]Format{
	".json":    FormatJSON,
	".jsonc":   FormatJSONC,
	".yaml":    FormatYAML,
	".yml":     FormatYAML,
	".cue":     FormatCUE,
	".cbor":    FormatCBOR,
	".db":      FormatSQLite,
	".sqlite":  FormatSQLite,
	".sqlite3": FormatSQLite,
}

// DetectFormat returns the format of path from its extension.
func DetectFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if f, ok := extensions[ext]; ok {
		return f, nil
	}
	return "", fmt.Errorf("%s: %w: extension %q", path, ErrUnsupportedFormat, ext)
}

// Decode parses data in format f. SQLite is not a byte format and is
// rejected. CBOR maps decode with sorted keys.
func Decode(data []byte, f Format) (value.Value, error) {
	switch f {
	case FormatJSON:
		return value.ParseJSON(data)
	case FormatJSONC:
		return decodeJSONC(data)
	case FormatYAML:
		return decodeYAML(data)
	case FormatCUE:
		return decodeCUE(data, "")
	case FormatCBOR:
		return decodeCBOR(data)
	default:
		return nil, fmt.Errorf("%w: cannot decode %q from bytes", ErrUnsupportedFormat, f)
	}
}

// LoadTemplate reads a template file. CBOR and SQLite files are rejected:
// CBOR decoding does not keep map key order and SQLite files hold
// parameters.
func LoadTemplate(path string) (value.Value, error) {
	f, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}
	if f == FormatCBOR || f == FormatSQLite {
		return nil, fmt.Errorf("%s: %w: %s files hold parameters, not templates", path, ErrUnsupportedFormat, f)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var v value.Value
	if f == FormatCUE {
		v, err = decodeCUE(data, path)
	} else {
		v, err = Decode(data, f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", path, ErrDecode, err)
	}
	return v, nil
}

// LoadParams reads a parameter set. File formats must hold a map at the
// root; each top-level entry becomes one parameter. SQLite stores are
// opened read-only.
func LoadParams(ctx context.Context, path string) (params.Map, error) {
	f, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	if f == FormatSQLite {
		s, err := store.OpenReadOnly(path)
		if err != nil {
			return nil, err
		}
		defer s.Close()
		return s.Snapshot(ctx)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var v value.Value
	if f == FormatCUE {
		v, err = decodeCUE(data, path)
	} else {
		v, err = Decode(data, f)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", path, ErrDecode, err)
	}

	m, ok := v.(*value.Map)
	if !ok {
		return nil, fmt.Errorf("%s: %w: parameter file must hold a map at the root, got %s", path, ErrDecode, v.Kind())
	}
	out := make(params.Map, m.Len())
	for name, pv := range m.All() {
		out[name] = pv
	}
	return out, nil
}

// LoadParamFiles loads every path and merges the results; later files
// override earlier ones.
func LoadParamFiles(ctx context.Context, paths ...string) (params.Map, error) {
	stores := make([]params.Store, 0, len(paths))
	for _, p := range paths {
		m, err := LoadParams(ctx, p)
		if err != nil {
			return nil, err
		}
		stores = append(stores, m)
	}
	return params.Merge(stores...), nil
}
