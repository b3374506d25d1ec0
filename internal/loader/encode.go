package loader

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/roach88/embody/internal/value"
)

// Encoding is an output encoding for embodied results.
type Encoding string

const (
	EncodingJSON Encoding = "json"
	EncodingYAML Encoding = "yaml"
	EncodingCBOR Encoding = "cbor"
)

// Encodings lists the supported output encodings.
var Encodings = []Encoding{EncodingJSON, EncodingYAML, EncodingCBOR}

// ParseEncoding validates an encoding name.
func ParseEncoding(s string) (Encoding, error) {
	for _, e := range Encodings {
		if string(e) == s {
			return e, nil
		}
	}
	names := make([]string, len(Encodings))
	for i, e := range Encodings {
		names[i] = string(e)
	}
	return "", fmt.Errorf("%w: encoding %q (want one of %s)", ErrUnsupportedFormat, s, strings.Join(names, ", "))
}

// Encode renders v. JSON output is indented with two spaces and ends with
// a newline; YAML is a single document; CBOR is one data item. Map order
// is kept by all three.
func Encode(v value.Value, enc Encoding) ([]byte, error) {
	switch enc {
	case EncodingJSON:
		return encodeJSON(v)
	case EncodingYAML:
		return encodeYAML(v)
	case EncodingCBOR:
		return encodeCBOR(v)
	default:
		_, err := ParseEncoding(string(enc))
		return nil, err
	}
}

func encodeJSON(v value.Value) ([]byte, error) {
	compact, err := value.MarshalJSON(v)
	if err != nil {
		return nil, fmt.Errorf("encoding JSON: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, compact, "", "  "); err != nil {
		return nil, fmt.Errorf("encoding JSON: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}
