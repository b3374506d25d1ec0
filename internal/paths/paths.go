// Package paths addresses values inside a nested structure.
//
// A Path is an ordered list of segments, each either a map key or a
// sequence index. Paths render as RFC 6901 JSON Pointers for error
// messages and the CLI, and can be parsed back and resolved against a value.
package paths

import (
	"strconv"
	"strings"

	"github.com/roach88/embody/internal/errdefs"
	"github.com/roach88/embody/internal/value"
)

// Segment is one step of a Path: a map key or a sequence index.
type Segment struct {
	key     string
	index   int
	isIndex bool
}

// Key returns a map key segment.
func Key(k string) Segment { return Segment{key: k} }

// Index returns a sequence index segment.
func Index(i int) Segment { return Segment{index: i, isIndex: true} }

// IsIndex reports whether the segment is a sequence index.
func (s Segment) IsIndex() bool { return s.isIndex }

// Key returns the map key. It is "" for index segments.
func (s Segment) Key() string { return s.key }

// Index returns the sequence index. It is 0 for key segments.
func (s Segment) Index() int { return s.index }

// String returns the unescaped text of the segment.
func (s Segment) String() string {
	if s.isIndex {
		return strconv.Itoa(s.index)
	}
	return s.key
}

// Path is an ordered sequence of segments from the root.
type Path []Segment

// Append returns a new path with segs added. The receiver is not modified
// and the result never shares a backing array with it.
func (p Path) Append(segs ...Segment) Path {
	out := make(Path, len(p), len(p)+len(segs))
	copy(out, p)
	return append(out, segs...)
}

// Clone returns a copy of p.
func (p Path) Clone() Path {
	if p == nil {
		return nil
	}
	return append(Path(nil), p...)
}

// Pointer renders p as an RFC 6901 JSON Pointer. The root is "".
func (p Path) Pointer() string {
	var b strings.Builder
	for _, seg := range p {
		b.WriteByte('/')
		b.WriteString(escape(seg.String()))
	}
	return b.String()
}

// String implements fmt.Stringer. The root renders as "/".
func (p Path) String() string {
	if len(p) == 0 {
		return "/"
	}
	return p.Pointer()
}

var (
	escaper   = strings.NewReplacer("~", "~0", "/", "~1")
	unescaper = strings.NewReplacer("~1", "/", "~0", "~")
)

func escape(s string) string { return escaper.Replace(s) }

// ParsePointer parses an RFC 6901 JSON Pointer. Every segment is returned
// as a key segment; Resolve interprets keys as indexes when it meets a
// sequence. "" is the root.
func ParsePointer(ptr string) (Path, error) {
	if ptr == "" {
		return Path{}, nil
	}
	if ptr[0] != '/' {
		return nil, errdefs.NewInvalidPath(ptr, "pointer must be empty or start with '/'")
	}
	parts := strings.Split(ptr[1:], "/")
	out := make(Path, len(parts))
	for i, part := range parts {
		if !validEscapes(part) {
			return nil, errdefs.NewInvalidPath(ptr, "invalid escape sequence in segment "+strconv.Quote(part))
		}
		out[i] = Key(unescaper.Replace(part))
	}
	return out, nil
}

// validEscapes reports whether every '~' in part starts "~0" or "~1".
func validEscapes(part string) bool {
	for i := 0; i < len(part); i++ {
		if part[i] != '~' {
			continue
		}
		if i+1 >= len(part) || (part[i+1] != '0' && part[i+1] != '1') {
			return false
		}
	}
	return true
}

// Resolve returns the value addressed by p inside root.
//
// A key segment applied to a sequence must be a canonical non-negative
// decimal index. Failures report PATH_NOT_FOUND with the pointer of the
// full path.
func Resolve(root value.Value, p Path) (value.Value, error) {
	cur := root
	for i, seg := range p {
		switch c := cur.(type) {
		case *value.Map:
			if seg.isIndex {
				return nil, errdefs.NewPathNotFound(p[:i+1].Pointer())
			}
			next, ok := c.Get(seg.key)
			if !ok {
				return nil, errdefs.NewPathNotFound(p[:i+1].Pointer())
			}
			cur = next
		case *value.Seq:
			idx, ok := seqIndex(seg)
			if !ok || idx >= c.Len() {
				return nil, errdefs.NewPathNotFound(p[:i+1].Pointer())
			}
			cur = c.At(idx)
		default:
			return nil, errdefs.NewPathNotFound(p[:i+1].Pointer())
		}
	}
	return cur, nil
}

// ResolvePointer parses ptr and resolves it against root.
func ResolvePointer(root value.Value, ptr string) (value.Value, error) {
	p, err := ParsePointer(ptr)
	if err != nil {
		return nil, err
	}
	return Resolve(root, p)
}

func seqIndex(seg Segment) (int, bool) {
	if seg.isIndex {
		return seg.index, seg.index >= 0
	}
	k := seg.key
	if k == "" || (len(k) > 1 && k[0] == '0') {
		return 0, false
	}
	for i := 0; i < len(k); i++ {
		if k[i] < '0' || k[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.Atoi(k)
	if err != nil {
		return 0, false
	}
	return n, true
}
