package datatype

import (
	"strconv"
	"strings"

	"github.com/jacoelho/jpq/internal/normpath"
)

// Format renders t in a compact TypeScript-like notation, for example
// {a: number, b?: "x" | null, ...: any} or [string, number?, ...boolean].
func Format(t Type) string {
	var b strings.Builder
	format(&b, t)
	return b.String()
}

func format(b *strings.Builder, t Type) {
	switch v := t.(type) {
	case *AnyType:
		b.WriteString("any")
	case *NeverType:
		b.WriteString("never")
	case *PrimitiveType:
		b.WriteString(v.kind.String())
	case *LiteralType:
		switch lv := v.value.(type) {
		case string:
			b.WriteString(strconv.Quote(lv))
		default:
			b.WriteString(v.key)
		}
	case *UnionType:
		if v.key == anyValue().Key() {
			b.WriteString("any")
			return
		}
		for i, m := range v.members {
			if i > 0 {
				b.WriteString(" | ")
			}
			format(b, m)
		}
	case *ObjectType:
		b.WriteByte('{')
		n := 0
		for _, k := range v.PropertyNames() {
			if n > 0 {
				b.WriteString(", ")
			}
			n++
			b.WriteString(formatName(k))
			if !v.required[k] {
				b.WriteByte('?')
			}
			b.WriteString(": ")
			format(b, v.props[k])
		}
		if !isNever(v.rest) {
			if n > 0 {
				b.WriteString(", ")
			}
			b.WriteString("...: ")
			format(b, v.rest)
		}
		b.WriteByte('}')
	case *ArrayType:
		if len(v.prefix) == 0 {
			if isNever(v.rest) {
				b.WriteString("[]")
				return
			}
			b.WriteString("array<")
			format(b, v.rest)
			b.WriteByte('>')
			return
		}
		b.WriteByte('[')
		for i, p := range v.prefix {
			if i > 0 {
				b.WriteString(", ")
			}
			format(b, p)
			if i >= v.requiredCount {
				b.WriteByte('?')
			}
		}
		if !isNever(v.rest) {
			b.WriteString(", ...")
			format(b, v.rest)
		}
		b.WriteByte(']')
	}
}

func formatName(name string) string {
	if isIdentifier(name) {
		return name
	}
	quoted := normpath.Name(name).String()
	return quoted[1 : len(quoted)-1]
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
		case i > 0 && r >= '0' && r <= '9':
		default:
			return false
		}
	}
	return true
}
