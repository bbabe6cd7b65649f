// Package jsonvalue defines the JSON value model shared by the evaluator,
// the analyzers and the transformation engine.
//
// A value is one of: nil (JSON null), bool, string, a number (any Go numeric
// type or json.Number), []any, *Object (ordered members) or map[string]any
// (members in sorted key order). Nothing is the marker for "no value" and
// never appears inside a document.
package jsonvalue

import (
	"encoding/json"
	"iter"
	"maps"
	"slices"
	"unicode/utf8"

	"github.com/jacoelho/jpq/internal/normpath"
)

// NothingType is the type of Nothing.
type NothingType struct{}

func (NothingType) String() string { return "Nothing" }

// Nothing represents the absence of a value, distinct from JSON null.
var Nothing = NothingType{}

// IsNothing reports whether v is the Nothing marker.
func IsNothing(v any) bool {
	_, ok := v.(NothingType)
	return ok
}

// Kind classifies a value.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindNothing
	KindNull
	KindBoolean
	KindNumber
	KindString
	KindArray
	KindObject
)

var kindNames = [...]string{
	KindInvalid: "invalid",
	KindNothing: "nothing",
	KindNull:    "null",
	KindBoolean: "boolean",
	KindNumber:  "number",
	KindString:  "string",
	KindArray:   "array",
	KindObject:  "object",
}

func (k Kind) String() string {
	return kindNames[k]
}

// KindOf returns the kind of v.
func KindOf(v any) Kind {
	switch v.(type) {
	case nil:
		return KindNull
	case NothingType:
		return KindNothing
	case bool:
		return KindBoolean
	case string:
		return KindString
	case []any:
		return KindArray
	case *Object, map[string]any:
		return KindObject
	}
	if _, ok := ToFloat64(v); ok {
		return KindNumber
	}
	return KindInvalid
}

// ToFloat64 converts supported numeric values to float64.
func ToFloat64(value any) (float64, bool) {
	switch current := value.(type) {
	case int:
		return float64(current), true
	case int8:
		return float64(current), true
	case int16:
		return float64(current), true
	case int32:
		return float64(current), true
	case int64:
		return float64(current), true
	case uint:
		return float64(current), true
	case uint8:
		return float64(current), true
	case uint16:
		return float64(current), true
	case uint32:
		return float64(current), true
	case uint64:
		return float64(current), true
	case float32:
		return float64(current), true
	case float64:
		return current, true
	case json.Number:
		parsed, err := current.Float64()
		if err != nil {
			return 0, false
		}
		return parsed, true
	default:
		return 0, false
	}
}

// Len returns the length used by the length() function: Unicode scalar
// values for strings, elements for arrays, members for objects. ok is false
// for other kinds.
func Len(v any) (int, bool) {
	switch c := v.(type) {
	case string:
		return utf8.RuneCountInString(c), true
	case []any:
		return len(c), true
	case *Object:
		return c.Len(), true
	case map[string]any:
		return len(c), true
	}
	return 0, false
}

// Members iterates over the children of an array or object in evaluation
// order. Scalars have no members.
func Members(v any) iter.Seq2[normpath.Segment, any] {
	return func(yield func(normpath.Segment, any) bool) {
		switch c := v.(type) {
		case []any:
			for i, e := range c {
				if !yield(normpath.Index(i), e) {
					return
				}
			}
		case *Object:
			for k, e := range c.All() {
				if !yield(normpath.Name(k), e) {
					return
				}
			}
		case map[string]any:
			for _, k := range slices.Sorted(maps.Keys(c)) {
				if !yield(normpath.Name(k), c[k]) {
					return
				}
			}
		}
	}
}

// Member returns the value of an object member.
func Member(v any, name string) (any, bool) {
	switch c := v.(type) {
	case *Object:
		return c.Get(name)
	case map[string]any:
		e, ok := c[name]
		return e, ok
	}
	return nil, false
}

// Element returns the array element at a non-negative index.
func Element(v any, index int) (any, bool) {
	a, ok := v.([]any)
	if !ok || index < 0 || index >= len(a) {
		return nil, false
	}
	return a[index], true
}

// At returns the value located by a path.
func At(v any, path normpath.Path) (any, bool) {
	current := v
	for _, seg := range path {
		var ok bool
		if seg.IsIndex {
			current, ok = Element(current, seg.Index)
		} else {
			current, ok = Member(current, seg.Name)
		}
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Equal reports deep equality: numbers compare numerically, objects compare
// members regardless of order and representation, Nothing equals only
// itself.
func Equal(a, b any) bool {
	ka, kb := KindOf(a), KindOf(b)
	if ka != kb {
		return false
	}
	switch ka {
	case KindNothing, KindNull:
		return true
	case KindBoolean:
		return a.(bool) == b.(bool)
	case KindString:
		return a.(string) == b.(string)
	case KindNumber:
		fa, _ := ToFloat64(a)
		fb, _ := ToFloat64(b)
		return fa == fb
	case KindArray:
		return slices.EqualFunc(a.([]any), b.([]any), Equal)
	case KindObject:
		la, _ := Len(a)
		lb, _ := Len(b)
		if la != lb {
			return false
		}
		for seg, va := range Members(a) {
			vb, ok := Member(b, seg.Name)
			if !ok || !Equal(va, vb) {
				return false
			}
		}
		return true
	}
	return false
}

// Less reports a < b for two numbers or two strings. ok is false when the
// operands are not comparable.
func Less(a, b any) (less, ok bool) {
	if sa, isStr := a.(string); isStr {
		sb, isStr := b.(string)
		if !isStr {
			return false, false
		}
		return sa < sb, true
	}
	fa, okA := ToFloat64(a)
	fb, okB := ToFloat64(b)
	if !okA || !okB {
		return false, false
	}
	return fa < fb, true
}

// ShallowCopy copies the top level of an array or object. Other values are
// returned unchanged.
func ShallowCopy(v any) any {
	switch c := v.(type) {
	case []any:
		return slices.Clone(c)
	case *Object:
		return c.Clone()
	case map[string]any:
		return maps.Clone(c)
	}
	return v
}
