package value

import (
	"bytes"
	"strconv"
)

// Stringify returns the plain string form of v used when a marker is
// interpolated into surrounding text or a resolved key is not a String.
//
//	String  as-is
//	Int     decimal
//	Float   shortest round-trip form
//	Bool    true / false
//	Null    null
//	*Seq, *Map compact JSON
func Stringify(v Value) string {
	switch x := v.(type) {
	case String:
		return string(x)
	case Int:
		return strconv.FormatInt(int64(x), 10)
	case Float:
		return strconv.FormatFloat(float64(x), 'g', -1, 64)
	case Bool:
		return strconv.FormatBool(bool(x))
	case nil, Null:
		return "null"
	default:
		var buf bytes.Buffer
		// Lenient writing cannot fail for the known value types.
		_ = writeJSON(&buf, v, true)
		return buf.String()
	}
}
