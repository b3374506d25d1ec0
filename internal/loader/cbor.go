package loader

import (
	"encoding/binary"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"

	"github.com/roach88/embody/internal/value"
)

// encMode encodes scalars with Core Deterministic Encoding (RFC 8949
// §4.2): smallest integer and float forms, no indefinite lengths. Maps
// are framed by encodeCBOR so they keep template order instead of the
// sorted order core deterministic encoding would impose.
var encMode cbor.EncMode

// decMode decodes untyped CBOR with string-keyed Go maps. Byte strings
// decode as text, the way a YAML !!binary scalar keeps its base64 text.
var decMode cbor.DecMode

func init() {
	var err error

	encMode, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("loader: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType:        reflect.TypeOf(map[string]any(nil)),
		DefaultByteStringType: reflect.TypeOf(""),
	}.DecMode()
	if err != nil {
		panic("loader: CBOR decoder initialization failed: " + err.Error())
	}
}

func decodeCBOR(data []byte) (value.Value, error) {
	var raw any
	if err := decMode.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing CBOR: %w", err)
	}
	v, err := value.FromGo(raw)
	if err != nil {
		return nil, fmt.Errorf("parsing CBOR: %w", err)
	}
	return v, nil
}

// CBOR major types used for container heads.
const (
	cborArray byte = 4
	cborMap   byte = 5
)

func encodeCBOR(v value.Value) ([]byte, error) {
	var out []byte
	var walk func(v value.Value) error
	walk = func(v value.Value) error {
		switch x := v.(type) {
		case *value.Map:
			out = appendHead(out, cborMap, uint64(x.Len()))
			for _, e := range x.Entries() {
				key, err := encMode.Marshal(e.Key)
				if err != nil {
					return err
				}
				out = append(out, key...)
				if err := walk(e.Value); err != nil {
					return err
				}
			}
		case *value.Seq:
			out = appendHead(out, cborArray, uint64(x.Len()))
			for _, item := range x.Items() {
				if err := walk(item); err != nil {
					return err
				}
			}
		default:
			b, err := encMode.Marshal(value.ToGo(v))
			if err != nil {
				return err
			}
			out = append(out, b...)
		}
		return nil
	}
	if err := walk(v); err != nil {
		return nil, fmt.Errorf("encoding CBOR: %w", err)
	}
	return out, nil
}

// appendHead appends a definite-length data item head (RFC 8949 §3).
func appendHead(b []byte, major byte, n uint64) []byte {
	m := major << 5
	switch {
	case n < 24:
		return append(b, m|byte(n))
	case n <= 0xff:
		return append(b, m|24, byte(n))
	case n <= 0xffff:
		return binary.BigEndian.AppendUint16(append(b, m|25), uint16(n))
	case n <= 0xffffffff:
		return binary.BigEndian.AppendUint32(append(b, m|26), uint32(n))
	default:
		return binary.BigEndian.AppendUint64(append(b, m|27), n)
	}
}
