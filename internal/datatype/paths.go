package datatype

import (
	"github.com/jacoelho/jpq/internal/normpath"
)

// Children returns the type of the immediate members of t.
func Children(t Type) Type {
	switch v := t.(type) {
	case *AnyType:
		return Any
	case *UnionType:
		out := make([]Type, len(v.members))
		for i, m := range v.members {
			out[i] = Children(m)
		}
		return Union(out...)
	case *ObjectType:
		out := make([]Type, 0, len(v.props)+1)
		for _, t := range v.props {
			out = append(out, t)
		}
		return Union(append(out, v.rest)...)
	case *ArrayType:
		return Union(append(v.Prefix(), v.rest)...)
	}
	return Never
}

// Descendants returns the type of every value nested at any depth in t,
// excluding t itself.
func Descendants(t Type) Type {
	seen := make(map[string]bool)
	var out []Type
	queue := []Type{Children(t)}
	for len(queue) > 0 {
		next := queue[0]
		queue = queue[1:]

		members := []Type{next}
		if u, ok := next.(*UnionType); ok {
			members = u.members
		}
		for _, m := range members {
			if isNever(m) || seen[m.Key()] {
				continue
			}
			seen[m.Key()] = true
			out = append(out, m)
			queue = append(queue, Children(m))
		}
	}
	return Union(out...)
}

// AtSegment returns the type of the value a segment selects from t. The
// result is Never when no value of t has that member.
func AtSegment(t Type, seg normpath.Segment) Type {
	return stripNothing(memberAt(t, seg))
}

// AtPath applies AtSegment along a path.
func AtPath(t Type, path normpath.Path) Type {
	for _, seg := range path {
		t = AtSegment(t, seg)
		if isNever(t) {
			return Never
		}
	}
	return t
}

// ValueAtPath is AtPath including nothing when some value of t lacks the
// path. It is the type a singular query yields inside a filter.
func ValueAtPath(t Type, path normpath.Path) Type {
	for _, seg := range path {
		m := memberAt(stripNothing(t), seg)
		if IncludesNothing(t) {
			m = Union(m, Nothing)
		}
		t = m
	}
	return t
}

// memberAt is AtSegment including nothing when the member may be absent.
func memberAt(t Type, seg normpath.Segment) Type {
	switch v := t.(type) {
	case *NeverType:
		return Never
	case *AnyType:
		return Any
	case *UnionType:
		out := make([]Type, len(v.members))
		for i, m := range v.members {
			out[i] = memberAt(m, seg)
		}
		return Union(out...)
	case *ObjectType:
		if !seg.IsIndex {
			return v.member(seg.Name)
		}
	case *ArrayType:
		if seg.IsIndex {
			return v.member(seg.Index)
		}
	}
	return Nothing
}

func (o *ObjectType) member(name string) Type {
	t := o.Property(name)
	if o.required[name] {
		return t
	}
	return Union(t, Nothing)
}

func (a *ArrayType) member(i int) Type {
	if i >= 0 {
		t := a.Element(i)
		if i < a.requiredCount {
			return t
		}
		return Union(t, Nothing)
	}

	k := -i
	if maxLen := a.MaxLen(); maxLen >= 0 {
		var out []Type
		for n := a.requiredCount; n <= maxLen; n++ {
			if n-k >= 0 {
				out = append(out, a.Element(n-k))
			} else {
				out = append(out, Nothing)
			}
		}
		return Union(out...)
	}

	out := []Type{a.rest}
	for p := max(0, a.requiredCount-k); p < len(a.prefix); p++ {
		out = append(out, a.prefix[p])
	}
	if a.requiredCount < k {
		out = append(out, Nothing)
	}
	return Union(out...)
}

// ChangeAtPath rebuilds t with op applied to the type found at path. op
// receives the member type including nothing when the member may be absent,
// and its result decides the member's fate: Never rules out every value of t
// that reaches the path, a result admitting nothing leaves the member
// optional, a result without nothing makes it required and exactly nothing
// makes it absent. Values of t that cannot have the path survive only when op
// admits nothing.
func ChangeAtPath(t Type, path normpath.Path, op func(Type) Type) Type {
	if len(path) == 0 {
		return op(t)
	}
	absentOK := IncludesNothing(op(Nothing))
	return changeAt(t, path, op, absentOK)
}

// SetPathExistence narrows t to the values where path exists.
func SetPathExistence(t Type, path normpath.Path) Type {
	return ChangeAtPath(t, path, func(m Type) Type {
		return Subtract(m, Nothing)
	})
}

func changeAt(t Type, path normpath.Path, op func(Type) Type, absentOK bool) Type {
	seg := path[0]
	switch v := t.(type) {
	case *NeverType:
		return Never
	case *AnyType:
		return changeAt(anyValue(), path, op, absentOK)
	case *UnionType:
		out := make([]Type, len(v.members))
		for i, m := range v.members {
			out[i] = changeAt(m, path, op, absentOK)
		}
		return Union(out...)
	case *ObjectType:
		if !seg.IsIndex {
			return v.changeMember(seg.Name, path[1:], op, absentOK)
		}
	case *ArrayType:
		if seg.IsIndex {
			return v.changeElement(seg.Index, path[1:], op, absentOK)
		}
	}
	if absentOK {
		return t
	}
	return Never
}

// changedMember computes the new type of a member currently typed cur,
// where rest is the remainder of the path below it.
func changedMember(cur Type, rest normpath.Path, op func(Type) Type, absentOK bool) Type {
	if len(rest) == 0 {
		return op(cur)
	}
	next := changeAt(stripNothing(cur), rest, op, absentOK)
	if absentOK && IncludesNothing(cur) {
		next = Union(next, Nothing)
	}
	return next
}

func (o *ObjectType) changeMember(name string, rest normpath.Path, op func(Type) Type, absentOK bool) Type {
	next := changedMember(o.member(name), rest, op, absentOK)
	if isNever(next) {
		return Never
	}

	props := make(map[string]Type, len(o.props)+1)
	for k, t := range o.props {
		props[k] = t
	}
	required := make([]string, 0, len(o.required)+1)
	for _, k := range o.Required() {
		if k != name {
			required = append(required, k)
		}
	}

	switch {
	case isNothing(next):
		props[name] = Never
	case IncludesNothing(next):
		props[name] = stripNothing(next)
	default:
		props[name] = next
		required = append(required, name)
	}
	return Object(props, o.rest, required...)
}

// maxTrackedIndex bounds the prefix grown by changeElement. Changes to
// elements past it leave the array type as it is.
const maxTrackedIndex = 256

func (a *ArrayType) changeElement(i int, rest normpath.Path, op func(Type) Type, absentOK bool) Type {
	if i < 0 {
		return a
	}
	next := changedMember(a.member(i), rest, op, absentOK)
	if isNever(next) {
		return Never
	}

	prefix := a.Prefix()
	if isNothing(next) {
		if a.requiredCount > i {
			return Never
		}
		return Array(prefix[:min(len(prefix), i)], Never, a.requiredCount)
	}

	if i >= len(prefix) && i >= maxTrackedIndex {
		return a
	}
	for len(prefix) <= i {
		prefix = append(prefix, a.rest)
	}
	if IncludesNothing(next) {
		prefix[i] = stripNothing(next)
		return Array(prefix, a.rest, a.requiredCount)
	}
	prefix[i] = next
	return Array(prefix, a.rest, max(a.requiredCount, i+1))
}
