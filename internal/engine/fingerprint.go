package engine

import (
	"encoding/binary"
	"encoding/hex"
	"math"

	"github.com/zeebo/blake3"

	"github.com/roach88/embody/internal/cycle"
	"github.com/roach88/embody/internal/value"
)

// Fingerprint is the BLAKE3 keyed hash of a template's content. Two
// templates share a fingerprint exactly when they are structurally equal,
// map key order included; container identity plays no part.
type Fingerprint [32]byte

// String returns the lowercase hex form.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// fingerprintKey separates template fingerprints from any other BLAKE3
// keyed hash. The bytes are the ASCII domain name, zero padded.
var fingerprintKey = [32]byte{
	'e', 'm', 'b', 'o', 'd', 'y', '.', 't', 'e', 'm', 'p', 'l', 'a', 't', 'e', '.',
	'f', 'i', 'n', 'g', 'e', 'r', 'p', 'r', 'i', 'n', 't', 0, 0, 0, 0, 0,
}

// Tags of the fingerprint encoding.
const (
	tagNull byte = iota + 1
	tagFalse
	tagTrue
	tagInt
	tagFloat
	tagString
	tagSeq
	tagMap
	tagKey
)

// FingerprintOf hashes template. Nodes are encoded in depth-first
// pre-order; containers carry their child count and every map child is
// preceded by its key, which makes the encoding unambiguous. It fails with
// CYCLE_DETECTED for cyclic templates.
func FingerprintOf(template value.Value) (Fingerprint, error) {
	hasher, err := blake3.NewKeyed(fingerprintKey[:])
	if err != nil {
		panic("engine: BLAKE3 keyed hash initialization failed: " + err.Error())
	}

	var scratch [binary.MaxVarintLen64]byte
	writeUvarint := func(n uint64) {
		k := binary.PutUvarint(scratch[:], n)
		hasher.Write(scratch[:k])
	}
	writeBytes := func(tag byte, s string) {
		hasher.Write([]byte{tag})
		writeUvarint(uint64(len(s)))
		hasher.Write([]byte(s))
	}

	err = cycle.Walk(template, func(at *cycle.Trail, v value.Value) error {
		if seg, ok := at.Last(); ok && !seg.IsIndex() {
			writeBytes(tagKey, seg.Key())
		}
		switch x := v.(type) {
		case value.Null:
			hasher.Write([]byte{tagNull})
		case value.Bool:
			if x {
				hasher.Write([]byte{tagTrue})
			} else {
				hasher.Write([]byte{tagFalse})
			}
		case value.Int:
			var b [9]byte
			b[0] = tagInt
			binary.BigEndian.PutUint64(b[1:], uint64(x))
			hasher.Write(b[:])
		case value.Float:
			var b [9]byte
			b[0] = tagFloat
			binary.BigEndian.PutUint64(b[1:], math.Float64bits(float64(x)))
			hasher.Write(b[:])
		case value.String:
			writeBytes(tagString, string(x))
		case *value.Seq:
			hasher.Write([]byte{tagSeq})
			writeUvarint(uint64(x.Len()))
		case *value.Map:
			hasher.Write([]byte{tagMap})
			writeUvarint(uint64(x.Len()))
		}
		return nil
	})
	if err != nil {
		return Fingerprint{}, err
	}

	var fp Fingerprint
	copy(fp[:], hasher.Sum(nil))
	return fp, nil
}
