// Package normpath implements RFC 9535 normalized paths: the canonical
// sequence of member names and array indices that locates a single value
// inside a JSON document.
package normpath

import (
	"cmp"
	"strconv"
	"strings"
)

// Segment is a single element of a normalized path. It either names an
// object member or addresses an array element.
type Segment struct {
	IsIndex bool
	Name    string // member name when !IsIndex
	Index   int    // array index when IsIndex
}

// Name creates a member-name segment.
func Name(name string) Segment {
	return Segment{Name: name}
}

// Index creates an array-index segment.
func Index(index int) Segment {
	return Segment{IsIndex: true, Index: index}
}

// Value returns the segment as a string or an int.
func (s Segment) Value() any {
	if s.IsIndex {
		return s.Index
	}
	return s.Name
}

func (s Segment) String() string {
	var b strings.Builder
	s.writeTo(&b)
	return b.String()
}

func (s Segment) writeTo(b *strings.Builder) {
	b.WriteByte('[')
	if s.IsIndex {
		b.WriteString(strconv.Itoa(s.Index))
	} else {
		writeQuoted(b, s.Name)
	}
	b.WriteByte(']')
}

// Path is a normalized path. The empty path designates the root value.
type Path []Segment

// Of builds a path from a mix of string and int arguments. Other argument
// types panic, as they indicate a programming error.
func Of(segments ...any) Path {
	p := make(Path, 0, len(segments))
	for _, s := range segments {
		switch v := s.(type) {
		case string:
			p = append(p, Name(v))
		case int:
			p = append(p, Index(v))
		default:
			panic("normpath: segment must be string or int")
		}
	}
	return p
}

// String renders the path in RFC 9535 normalized form, e.g. $['a'][0].
func (p Path) String() string {
	var b strings.Builder
	b.WriteByte('$')
	for _, s := range p {
		s.writeTo(&b)
	}
	return b.String()
}

// Values returns the segments as strings and ints.
func (p Path) Values() []any {
	out := make([]any, len(p))
	for i, s := range p {
		out[i] = s.Value()
	}
	return out
}

// HasPrefix reports whether prefix is a (not necessarily strict) prefix of p.
func (p Path) HasPrefix(prefix Path) bool {
	if len(prefix) > len(p) {
		return false
	}
	for i := range prefix {
		if prefix[i] != p[i] {
			return false
		}
	}
	return true
}

// Equal reports whether both paths address the same location.
func (p Path) Equal(other Path) bool {
	return len(p) == len(other) && p.HasPrefix(other)
}

// CompareSegments orders member names before array indices, names by their
// code points and indices numerically.
func CompareSegments(a, b Segment) int {
	if a.IsIndex != b.IsIndex {
		if a.IsIndex {
			return 1
		}
		return -1
	}
	if a.IsIndex {
		return cmp.Compare(a.Index, b.Index)
	}
	return strings.Compare(a.Name, b.Name)
}

// Compare orders paths segment by segment. A path sorts before every path it
// is a strict prefix of.
func Compare(a, b Path) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := CompareSegments(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

func writeQuoted(b *strings.Builder, name string) {
	const hex = "0123456789abcdef"

	b.WriteByte('\'')
	for _, r := range name {
		switch r {
		case '\'':
			b.WriteString(`\'`)
		case '\\':
			b.WriteString(`\\`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 {
				b.WriteString(`\u00`)
				b.WriteByte(hex[r>>4])
				b.WriteByte(hex[r&0xF])
				continue
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
}
