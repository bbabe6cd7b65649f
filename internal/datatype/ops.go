package datatype

// Intersect returns the values common to a and b.
func Intersect(a, b Type) Type {
	switch {
	case isNever(a) || isNever(b):
		return Never
	case isAny(a):
		return b
	case isAny(b):
		return a
	}
	if u, ok := a.(*UnionType); ok {
		out := make([]Type, len(u.members))
		for i, m := range u.members {
			out[i] = Intersect(m, b)
		}
		return Union(out...)
	}
	if u, ok := b.(*UnionType); ok {
		out := make([]Type, len(u.members))
		for i, m := range u.members {
			out[i] = Intersect(a, m)
		}
		return Union(out...)
	}

	if IsSubtype(a, b) {
		return a
	}
	if IsSubtype(b, a) {
		return b
	}

	switch av := a.(type) {
	case *ObjectType:
		if bv, ok := b.(*ObjectType); ok {
			return intersectObjects(av, bv)
		}
	case *ArrayType:
		if bv, ok := b.(*ArrayType); ok {
			return intersectArrays(av, bv)
		}
	}
	return Never
}

func intersectObjects(a, b *ObjectType) Type {
	props := make(map[string]Type)
	for _, k := range propertyUnion(a, b) {
		props[k] = Intersect(a.Property(k), b.Property(k))
	}
	required := append(a.Required(), b.Required()...)
	return Object(props, Intersect(a.rest, b.rest), required...)
}

func intersectArrays(a, b *ArrayType) Type {
	n := max(len(a.prefix), len(b.prefix))
	prefix := make([]Type, n)
	for i := range n {
		prefix[i] = Intersect(a.Element(i), b.Element(i))
	}
	return Array(prefix, Intersect(a.rest, b.rest), max(a.requiredCount, b.requiredCount))
}

// Subtract returns the values of a that are not values of b. When the exact
// difference cannot be represented the result over-approximates it.
func Subtract(a, b Type) Type {
	switch {
	case isNever(a):
		return Never
	case isNever(b):
		return a
	case IsSubtype(a, b):
		return Never
	}
	if u, ok := a.(*UnionType); ok {
		out := make([]Type, len(u.members))
		for i, m := range u.members {
			out[i] = Subtract(m, b)
		}
		return Union(out...)
	}
	if u, ok := b.(*UnionType); ok {
		out := a
		for _, m := range u.members {
			out = Subtract(out, m)
		}
		return out
	}
	if isAny(a) {
		return Subtract(Union(anyValue(), Nothing), b)
	}

	switch av := a.(type) {
	case *PrimitiveType:
		if l, ok := b.(*LiteralType); ok && av.kind == KindBoolean && l.Kind() == KindBoolean {
			return Literal(!l.value.(bool))
		}
	case *ObjectType:
		if bv, ok := b.(*ObjectType); ok {
			return subtractObjects(av, bv)
		}
	}
	return a
}

// subtractObjects handles the case where b constrains a single member and
// leaves every other member unconstrained. Anything else keeps a.
func subtractObjects(a, b *ObjectType) Type {
	if !isAny(b.rest) {
		return a
	}
	var constrained []string
	for _, k := range propertyUnion(b, b) {
		if b.required[k] || !isAny(b.Property(k)) {
			constrained = append(constrained, k)
		}
	}
	if len(constrained) != 1 {
		return a
	}

	k := constrained[0]
	props := make(map[string]Type, len(a.props)+1)
	for name, t := range a.props {
		props[name] = t
	}
	props[k] = Subtract(a.Property(k), b.Property(k))
	required := a.Required()
	if !b.required[k] {
		// b admits objects lacking k, so the difference needs k present
		required = append(required, k)
	}
	return Object(props, a.rest, required...)
}
