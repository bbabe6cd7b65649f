package datatype

import (
	"github.com/jacoelho/jpq/internal/jsonvalue"
)

// Of returns the exact type of a JSON value: literals for scalars, closed
// objects with every member required and fixed-length arrays.
func Of(value any) Type {
	switch v := value.(type) {
	case []any:
		prefix := make([]Type, len(v))
		for i, e := range v {
			prefix[i] = Of(e)
		}
		return Array(prefix, Never, len(v))
	case *jsonvalue.Object, map[string]any:
		props := make(map[string]Type)
		var required []string
		for seg, e := range jsonvalue.Members(v) {
			props[seg.Name] = Of(e)
			required = append(required, seg.Name)
		}
		return Object(props, Never, required...)
	}
	if jsonvalue.KindOf(value) == jsonvalue.KindInvalid {
		return Never
	}
	return Literal(value)
}

// Widen replaces literal types by their primitive kind at every depth.
func Widen(t Type) Type {
	switch v := t.(type) {
	case *LiteralType:
		return Primitive(v.Kind())
	case *UnionType:
		out := make([]Type, len(v.members))
		for i, m := range v.members {
			out[i] = Widen(m)
		}
		return Union(out...)
	case *ObjectType:
		props := make(map[string]Type, len(v.props))
		for k, p := range v.props {
			props[k] = Widen(p)
		}
		return Object(props, Widen(v.rest), v.Required()...)
	case *ArrayType:
		prefix := make([]Type, len(v.prefix))
		for i, p := range v.prefix {
			prefix[i] = Widen(p)
		}
		return Array(prefix, Widen(v.rest), v.requiredCount)
	}
	return t
}
