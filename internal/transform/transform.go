// Package transform rebuilds JSON values with the nodes at a set of
// normalized paths replaced or removed. Inputs are never modified.
package transform

import (
	"slices"

	"github.com/jacoelho/jpq/internal/jsonvalue"
	"github.com/jacoelho/jpq/internal/normpath"
)

// Replacer computes the new value of a node from its value, in which every
// targeted descendant has already been replaced. Returning jsonvalue.Nothing
// removes the node.
type Replacer func(value any) any

// ReplaceAtPaths returns a copy of value where the node at each path is
// replaced. Paths that do not exist are ignored, duplicates count once and
// removing array elements shifts the elements after them. Only the
// containers on the way to a replaced node are copied. Removing the root
// yields jsonvalue.Nothing.
func ReplaceAtPaths(value any, paths []normpath.Path, replacer Replacer) any {
	if len(paths) == 0 {
		return value
	}
	return replace(value, sortPaths(paths), 0, replacer)
}

// RemoveAtPaths returns a copy of value without the nodes at paths.
func RemoveAtPaths(value any, paths []normpath.Path) any {
	return ReplaceAtPaths(value, paths, func(any) any { return jsonvalue.Nothing })
}

func sortPaths(paths []normpath.Path) []normpath.Path {
	sorted := slices.SortedFunc(slices.Values(paths), normpath.Compare)
	return slices.CompactFunc(sorted, normpath.Path.Equal)
}

// replace handles sorted paths sharing their first depth segments with the
// location of v.
func replace(v any, paths []normpath.Path, depth int, replacer Replacer) any {
	self := len(paths[0]) == depth
	if self {
		paths = paths[1:]
	}
	if len(paths) > 0 {
		v = replaceChildren(v, paths, depth, replacer)
	}
	if self {
		return replacer(v)
	}
	return v
}

func replaceChildren(v any, paths []normpath.Path, depth int, replacer Replacer) any {
	var out any
	removed := 0
	for len(paths) > 0 {
		seg := paths[0][depth]
		n := 1
		for n < len(paths) && normpath.CompareSegments(paths[n][depth], seg) == 0 {
			n++
		}
		group := paths[:n]
		paths = paths[n:]

		child, ok := member(v, seg)
		if !ok {
			continue
		}
		next := replace(child, group, depth+1, replacer)
		if out == nil {
			out = jsonvalue.ShallowCopy(v)
		}
		out = setMember(out, seg, seg.Index-removed, next)
		if seg.IsIndex && jsonvalue.IsNothing(next) {
			removed++
		}
	}
	if out == nil {
		return v
	}
	return out
}

func member(v any, seg normpath.Segment) (any, bool) {
	if seg.IsIndex {
		return jsonvalue.Element(v, seg.Index)
	}
	return jsonvalue.Member(v, seg.Name)
}

// setMember stores next at seg in the copied container c. For arrays index
// is the current position of the element after earlier removals.
func setMember(c any, seg normpath.Segment, index int, next any) any {
	remove := jsonvalue.IsNothing(next)
	switch t := c.(type) {
	case []any:
		if remove {
			return slices.Delete(t, index, index+1)
		}
		t[index] = next
		return t
	case *jsonvalue.Object:
		if remove {
			t.Delete(seg.Name)
		} else {
			t.Set(seg.Name, next)
		}
		return t
	case map[string]any:
		if remove {
			delete(t, seg.Name)
		} else {
			t[seg.Name] = next
		}
		return t
	}
	return c
}
