package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/embody/internal/errdefs"
	"github.com/roach88/embody/internal/value"
)

func mustFingerprint(t *testing.T, v value.Value) Fingerprint {
	t.Helper()
	fp, err := FingerprintOf(v)
	require.NoError(t, err)
	return fp
}

func TestFingerprint_EqualContentEqualFingerprint(t *testing.T) {
	a := value.NewMap(value.E("k", value.NewSeq(value.Int(1), value.String("${x}"))))
	b := value.NewMap(value.E("k", value.NewSeq(value.Int(1), value.String("${x}"))))

	assert.Equal(t, mustFingerprint(t, a), mustFingerprint(t, b))
	assert.Len(t, mustFingerprint(t, a).String(), 64)
}

func TestFingerprint_Distinguishes(t *testing.T) {
	variants := []value.Value{
		value.Int(1),
		value.Float(1),
		value.String("1"),
		value.Bool(true),
		value.Bool(false),
		value.Null{},
		value.NewSeq(),
		value.NewMap(),
		value.NewSeq(value.Int(1)),
		value.NewSeq(value.NewSeq(value.Int(1))),
		value.NewSeq(value.NewSeq(), value.Int(1)),
		value.NewMap(value.E("a", value.Int(1))),
		value.NewMap(value.E("b", value.Int(1))),
		value.NewMap(value.E("a", value.Int(1)), value.E("b", value.Int(2))),
		value.NewMap(value.E("b", value.Int(2)), value.E("a", value.Int(1))),
		value.NewMap(value.E("ab", value.String("c"))),
		value.NewMap(value.E("a", value.String("bc"))),
	}

	seen := make(map[Fingerprint]int)
	for i, v := range variants {
		fp := mustFingerprint(t, v)
		if j, dup := seen[fp]; dup {
			t.Errorf("variants %d and %d share fingerprint %s", j, i, fp)
		}
		seen[fp] = i
	}
}

func TestFingerprint_IgnoresIdentity(t *testing.T) {
	shared := value.NewSeq(value.Int(1))
	diamond := value.NewMap(value.E("a", shared), value.E("b", shared))
	tree := value.NewMap(value.E("a", value.NewSeq(value.Int(1))), value.E("b", value.NewSeq(value.Int(1))))

	assert.Equal(t, mustFingerprint(t, tree), mustFingerprint(t, diamond))
}

func TestFingerprint_Cycle(t *testing.T) {
	s := value.NewSeq()
	s.Append(s)

	_, err := FingerprintOf(s)
	assert.True(t, errdefs.IsCycle(err))
}
