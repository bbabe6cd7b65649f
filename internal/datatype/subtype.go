package datatype

// IsSubtype reports whether every value of a is also a value of b.
func IsSubtype(a, b Type) bool {
	if isNever(a) || isAny(b) {
		return true
	}
	if u, ok := a.(*UnionType); ok {
		for _, m := range u.members {
			if !IsSubtype(m, b) {
				return false
			}
		}
		return true
	}
	if u, ok := b.(*UnionType); ok {
		for _, m := range u.members {
			if IsSubtype(a, m) {
				return true
			}
		}
		return false
	}

	switch av := a.(type) {
	case *LiteralType:
		switch bv := b.(type) {
		case *LiteralType:
			return av.key == bv.key
		case *PrimitiveType:
			return av.Kind() == bv.kind
		}
	case *PrimitiveType:
		bv, ok := b.(*PrimitiveType)
		return ok && av.kind == bv.kind
	case *ObjectType:
		if bv, ok := b.(*ObjectType); ok {
			return objectSubtype(av, bv)
		}
	case *ArrayType:
		if bv, ok := b.(*ArrayType); ok {
			return arraySubtype(av, bv)
		}
	}
	return false
}

func objectSubtype(a, b *ObjectType) bool {
	for k := range b.required {
		if !a.required[k] {
			return false
		}
	}
	for _, k := range propertyUnion(a, b) {
		at := a.Property(k)
		if isNever(at) {
			continue
		}
		if !IsSubtype(at, b.Property(k)) {
			return false
		}
	}
	return IsSubtype(a.rest, b.rest)
}

func arraySubtype(a, b *ArrayType) bool {
	if a.requiredCount < b.requiredCount {
		return false
	}
	if bm := b.MaxLen(); bm >= 0 {
		if am := a.MaxLen(); am < 0 || am > bm {
			return false
		}
	}
	n := max(len(a.prefix), len(b.prefix))
	for i := range n {
		at := a.Element(i)
		if isNever(at) {
			break
		}
		if !IsSubtype(at, b.Element(i)) {
			return false
		}
	}
	return IsSubtype(a.rest, b.rest)
}

// Equivalent reports whether a and b describe the same set of values.
func Equivalent(a, b Type) bool {
	if a.Key() == b.Key() {
		return true
	}
	return IsSubtype(a, b) && IsSubtype(b, a)
}

func propertyUnion(a, b *ObjectType) []string {
	seen := make(map[string]bool, len(a.props)+len(b.props))
	var out []string
	for _, o := range []*ObjectType{a, b} {
		for _, k := range o.PropertyNames() {
			if !seen[k] {
				seen[k] = true
				out = append(out, k)
			}
		}
	}
	return out
}
