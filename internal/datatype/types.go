// Package datatype implements a structural type algebra over JSON values.
//
// A Type describes a set of JSON values. The variants are Any (every value,
// including the absence of one), Never (no value), literals, the primitive
// kinds, objects, arrays and unions. Types are immutable; every operation
// returns a new value and never modifies its inputs. Two types with the same
// Key are structurally identical.
package datatype

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/jacoelho/jpq/internal/jsonvalue"
)

// Type is a set of JSON values.
type Type interface {
	// Key is a canonical structural encoding of the type. Annotations are
	// not part of it.
	Key() string
	Annotations() Annotations
	String() string

	isType()
}

// Annotations is descriptive metadata attached to a type. It never affects
// subtyping or equivalence.
type Annotations struct {
	Title       string
	Description string
	Deprecated  bool
	ReadOnly    bool
	WriteOnly   bool
	HasDefault  bool
	Default     any
	Examples    []any
}

type base struct {
	key string
	ann Annotations
}

func (b *base) Key() string              { return b.key }
func (b *base) Annotations() Annotations { return b.ann }
func (*base) isType()                    {}

// PrimitiveKind enumerates the primitive types.
type PrimitiveKind uint8

const (
	KindNumber PrimitiveKind = iota
	KindString
	KindBoolean
	KindNull
	KindNothing
)

var primitiveNames = [...]string{
	KindNumber:  "number",
	KindString:  "string",
	KindBoolean: "boolean",
	KindNull:    "null",
	KindNothing: "nothing",
}

func (k PrimitiveKind) String() string {
	return primitiveNames[k]
}

// AnyType is the top type.
type AnyType struct{ base }

// NeverType is the empty type.
type NeverType struct{ base }

// PrimitiveType is one of number, string, boolean, null and nothing.
type PrimitiveType struct {
	base
	kind PrimitiveKind
}

func (p *PrimitiveType) Kind() PrimitiveKind { return p.kind }

// LiteralType is a single string, number or boolean value. Numbers are held
// as float64.
type LiteralType struct {
	base
	value any
}

func (l *LiteralType) Value() any { return l.value }

// Kind returns the primitive kind the literal belongs to.
func (l *LiteralType) Kind() PrimitiveKind {
	switch l.value.(type) {
	case string:
		return KindString
	case bool:
		return KindBoolean
	default:
		return KindNumber
	}
}

// ObjectType describes objects. Members not listed in the properties have
// the rest type; Never as rest type means no other members exist.
type ObjectType struct {
	base
	props    map[string]Type
	rest     Type
	required map[string]bool
}

// Property returns the type of a member when present, falling back to the
// rest type.
func (o *ObjectType) Property(name string) Type {
	if t, ok := o.props[name]; ok {
		return t
	}
	return o.rest
}

// PropertyNames returns the explicitly typed member names, sorted.
func (o *ObjectType) PropertyNames() []string {
	return slices.Sorted(maps.Keys(o.props))
}

func (o *ObjectType) Rest() Type                  { return o.rest }
func (o *ObjectType) IsRequired(name string) bool { return o.required[name] }

// Required returns the required member names, sorted.
func (o *ObjectType) Required() []string {
	return slices.Sorted(maps.Keys(o.required))
}

// ArrayType describes arrays as a prefix of positional element types
// followed by any number of elements of the rest type. Arrays have at least
// RequiredCount elements.
type ArrayType struct {
	base
	prefix        []Type
	rest          Type
	requiredCount int
}

func (a *ArrayType) Prefix() []Type     { return slices.Clone(a.prefix) }
func (a *ArrayType) Rest() Type         { return a.rest }
func (a *ArrayType) RequiredCount() int { return a.requiredCount }

// Element returns the type of the element at a non-negative index, ignoring
// whether the array is long enough.
func (a *ArrayType) Element(i int) Type {
	if i < len(a.prefix) {
		return a.prefix[i]
	}
	return a.rest
}

// MaxLen returns the maximum length, or -1 when unbounded.
func (a *ArrayType) MaxLen() int {
	if isNever(a.rest) {
		return len(a.prefix)
	}
	return -1
}

// UnionType is a set of two or more types, none subsuming another.
type UnionType struct {
	base
	members []Type
}

func (u *UnionType) Members() []Type { return slices.Clone(u.members) }

var (
	Any     Type = &AnyType{base{key: "any"}}
	Never   Type = &NeverType{base{key: "never"}}
	Number  Type = &PrimitiveType{base{key: "number"}, KindNumber}
	String  Type = &PrimitiveType{base{key: "string"}, KindString}
	Boolean Type = &PrimitiveType{base{key: "boolean"}, KindBoolean}
	Null    Type = &PrimitiveType{base{key: "null"}, KindNull}
	Nothing Type = &PrimitiveType{base{key: "nothing"}, KindNothing}

	True  = Literal(true)
	False = Literal(false)
)

// Primitive returns the type for a primitive kind.
func Primitive(kind PrimitiveKind) Type {
	switch kind {
	case KindNumber:
		return Number
	case KindString:
		return String
	case KindBoolean:
		return Boolean
	case KindNull:
		return Null
	case KindNothing:
		return Nothing
	}
	panic("datatype: unknown primitive kind " + strconv.Itoa(int(kind)))
}

// Literal returns the singleton type of a scalar value. null and Nothing
// map to their primitive types and containers to their exact type.
func Literal(value any) Type {
	switch v := value.(type) {
	case nil:
		return Null
	case jsonvalue.NothingType:
		return Nothing
	case string:
		return &LiteralType{base{key: strconv.Quote(v)}, v}
	case bool:
		return &LiteralType{base{key: strconv.FormatBool(v)}, v}
	}
	if f, ok := jsonvalue.ToFloat64(value); ok {
		return &LiteralType{base{key: strconv.FormatFloat(f, 'g', -1, 64)}, f}
	}
	return Of(value)
}

// Object builds an object type. A nil rest means no other members. Required
// names missing from props get the rest type. The result is Never when a
// required member is Never.
func Object(props map[string]Type, rest Type, required ...string) Type {
	if rest == nil {
		rest = Never
	}
	rest = stripNothing(rest)

	p := make(map[string]Type, len(props)+len(required))
	for k, t := range props {
		p[k] = stripNothing(t)
	}
	req := make(map[string]bool, len(required))
	for _, k := range required {
		req[k] = true
		if _, ok := p[k]; !ok {
			p[k] = rest
		}
	}
	for k, t := range p {
		switch {
		case req[k] && isNever(t):
			return Never
		case !req[k] && t.Key() == rest.Key():
			delete(p, k)
		}
	}

	o := &ObjectType{props: p, rest: rest, required: req}
	o.key = objectKey(o)
	return o
}

func objectKey(o *ObjectType) string {
	var b strings.Builder
	b.WriteByte('{')
	for _, k := range o.PropertyNames() {
		b.WriteString(strconv.Quote(k))
		if o.required[k] {
			b.WriteByte('!')
		} else {
			b.WriteByte('?')
		}
		b.WriteByte(':')
		b.WriteString(o.props[k].Key())
		b.WriteByte(';')
	}
	b.WriteString("*:")
	b.WriteString(o.rest.Key())
	b.WriteByte('}')
	return b.String()
}

// Array builds an array type. A nil rest means no elements beyond the
// prefix. Positions below requiredCount not covered by the prefix get the
// rest type. The result is Never when a required element is Never.
func Array(prefix []Type, rest Type, requiredCount int) Type {
	if rest == nil {
		rest = Never
	}
	rest = stripNothing(rest)
	requiredCount = max(requiredCount, 0)

	p := make([]Type, len(prefix), max(len(prefix), requiredCount))
	for i, t := range prefix {
		p[i] = stripNothing(t)
	}
	for len(p) < requiredCount {
		p = append(p, rest)
	}
	for i, t := range p {
		if !isNever(t) {
			continue
		}
		if i < requiredCount {
			return Never
		}
		p = p[:i]
		rest = Never
		break
	}
	for len(p) > requiredCount && p[len(p)-1].Key() == rest.Key() {
		p = p[:len(p)-1]
	}

	a := &ArrayType{prefix: p, rest: rest, requiredCount: requiredCount}
	var b strings.Builder
	b.WriteByte('[')
	for i, t := range p {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(t.Key())
	}
	b.WriteString(";*:")
	b.WriteString(rest.Key())
	b.WriteString(";#")
	b.WriteString(strconv.Itoa(requiredCount))
	b.WriteByte(']')
	a.key = b.String()
	return a
}

// Union builds the union of types: nested unions are flattened, duplicates
// and members subsumed by another member are dropped, true and false merge
// into boolean. Zero members give Never and one member gives that member.
func Union(types ...Type) Type {
	var members []Type
	seen := make(map[string]bool)
	var add func(t Type) bool
	add = func(t Type) bool {
		switch v := t.(type) {
		case *AnyType:
			return false
		case *NeverType:
			return true
		case *UnionType:
			for _, m := range v.members {
				if !add(m) {
					return false
				}
			}
			return true
		}
		if !seen[t.Key()] {
			seen[t.Key()] = true
			members = append(members, t)
		}
		return true
	}
	for _, t := range types {
		if !add(t) {
			return Any
		}
	}

	if seen["true"] && seen["false"] {
		members = slices.DeleteFunc(members, func(t Type) bool {
			return t.Key() == "true" || t.Key() == "false"
		})
		if !seen[Boolean.Key()] {
			members = append(members, Boolean)
		}
	}

	kept := make([]Type, 0, len(members))
	for i, m := range members {
		subsumed := false
		for j, o := range members {
			if i == j || !IsSubtype(m, o) {
				continue
			}
			// among equivalent members keep the first one
			if j < i || !IsSubtype(o, m) {
				subsumed = true
				break
			}
		}
		if !subsumed {
			kept = append(kept, m)
		}
	}

	switch len(kept) {
	case 0:
		return Never
	case 1:
		return kept[0]
	}

	keys := make([]string, len(kept))
	for i, m := range kept {
		keys[i] = m.Key()
	}
	slices.Sort(keys)
	u := &UnionType{members: kept}
	u.key = "(" + strings.Join(keys, "|") + ")"
	return u
}

// WithAnnotations returns a copy of t carrying ann.
func WithAnnotations(t Type, ann Annotations) Type {
	switch v := t.(type) {
	case *AnyType:
		c := *v
		c.ann = ann
		return &c
	case *NeverType:
		c := *v
		c.ann = ann
		return &c
	case *PrimitiveType:
		c := *v
		c.ann = ann
		return &c
	case *LiteralType:
		c := *v
		c.ann = ann
		return &c
	case *ObjectType:
		c := *v
		c.ann = ann
		return &c
	case *ArrayType:
		c := *v
		c.ann = ann
		return &c
	case *UnionType:
		c := *v
		c.ann = ann
		return &c
	}
	panic("datatype: unknown type variant")
}

func (t *AnyType) String() string       { return Format(t) }
func (t *NeverType) String() string     { return Format(t) }
func (t *PrimitiveType) String() string { return Format(t) }
func (t *LiteralType) String() string   { return Format(t) }
func (t *ObjectType) String() string    { return Format(t) }
func (t *ArrayType) String() string     { return Format(t) }
func (t *UnionType) String() string     { return Format(t) }

func isNever(t Type) bool {
	_, ok := t.(*NeverType)
	return ok
}

func isAny(t Type) bool {
	_, ok := t.(*AnyType)
	return ok
}

func isNothing(t Type) bool {
	p, ok := t.(*PrimitiveType)
	return ok && p.kind == KindNothing
}

// IncludesNothing reports whether t admits the absence of a value.
func IncludesNothing(t Type) bool {
	return IsSubtype(Nothing, t)
}

// stripNothing removes the nothing member from t. Any is kept as is.
func stripNothing(t Type) Type {
	switch v := t.(type) {
	case *PrimitiveType:
		if v.kind == KindNothing {
			return Never
		}
	case *UnionType:
		if !slices.ContainsFunc(v.members, isNothing) {
			return t
		}
		return Union(slices.DeleteFunc(slices.Clone(v.members), isNothing)...)
	}
	return t
}

// StripNothing removes the absence of a value from t.
func StripNothing(t Type) Type {
	return stripNothing(t)
}

// anyValue expands Any into its present-value members.
func anyValue() Type {
	return Union(Number, String, Boolean, Null, Array(nil, Any, 0), Object(nil, Any))
}
