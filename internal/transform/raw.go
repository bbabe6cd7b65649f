package transform

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/jacoelho/jpq/internal/jsonvalue"
	"github.com/jacoelho/jpq/internal/normpath"
)

// ReplaceAtPathsJSON applies ReplaceAtPaths to an encoded document without
// decoding the parts that are not replaced. The replacer sees decoded
// values. Removing the root is not supported.
func ReplaceAtPathsJSON(data []byte, paths []normpath.Path, replacer Replacer) ([]byte, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	if len(paths) == 0 {
		return data, nil
	}

	sorted := sortPaths(paths)
	// Later paths are deeper or further right, so handling them first keeps
	// the remaining paths valid and replaces children before their parents.
	for _, path := range slices.Backward(sorted) {
		var err error
		if data, err = replaceRaw(data, path, replacer); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// RemoveAtPathsJSON removes the nodes at paths from an encoded document.
func RemoveAtPathsJSON(data []byte, paths []normpath.Path) ([]byte, error) {
	return ReplaceAtPathsJSON(data, paths, func(any) any { return jsonvalue.Nothing })
}

func replaceRaw(data []byte, path normpath.Path, replacer Replacer) ([]byte, error) {
	if len(path) == 0 {
		current, err := jsonvalue.DecodeBytes(data)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
		}
		next := replacer(current)
		if jsonvalue.IsNothing(next) {
			return nil, fmt.Errorf("%w: the root cannot be removed", ErrUnaddressable)
		}
		return jsonvalue.Encode(next)
	}

	get, set, err := rawPaths(path)
	if err != nil {
		return nil, err
	}
	found := gjson.GetBytes(data, get)
	if !found.Exists() || !kindsMatch(data, path) {
		return data, nil
	}
	current, err := jsonvalue.DecodeBytes([]byte(found.Raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}

	next := replacer(current)
	if jsonvalue.IsNothing(next) {
		return sjson.DeleteBytes(data, set)
	}
	raw, err := jsonvalue.Encode(next)
	if err != nil {
		return nil, err
	}
	return sjson.SetRawBytes(data, set, raw)
}

// rawPaths renders path in gjson syntax for reading and in sjson syntax for
// writing, where all-digit member names need a ':' prefix.
func rawPaths(path normpath.Path) (get, set string, err error) {
	var g, s strings.Builder
	for i, seg := range path {
		if i > 0 {
			g.WriteByte('.')
			s.WriteByte('.')
		}
		if seg.IsIndex {
			if seg.Index < 0 {
				return "", "", fmt.Errorf("%w: negative index in %s", ErrUnaddressable, path)
			}
			idx := strconv.Itoa(seg.Index)
			g.WriteString(idx)
			s.WriteString(idx)
			continue
		}
		if seg.Name == "" {
			return "", "", fmt.Errorf("%w: empty member name in %s", ErrUnaddressable, path)
		}
		escaped := escape(seg.Name)
		g.WriteString(escaped)
		if isDigits(seg.Name) {
			s.WriteByte(':')
		}
		s.WriteString(escaped)
	}
	return g.String(), s.String(), nil
}

// kindsMatch checks that every index segment of path meets an array and
// every name segment an object, since gjson accepts digits for both.
func kindsMatch(data []byte, path normpath.Path) bool {
	current := gjson.ParseBytes(data)
	for _, seg := range path {
		if seg.IsIndex != current.IsArray() {
			return false
		}
		if seg.IsIndex {
			arr := current.Array()
			if seg.Index >= len(arr) {
				return false
			}
			current = arr[seg.Index]
			continue
		}
		if !current.IsObject() {
			return false
		}
		current = current.Get(escape(seg.Name))
	}
	return current.Exists()
}

func escape(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for i := 0; i < len(name); i++ {
		switch c := name[i]; c {
		case '\\', '.', ':', '|', '@', '*', '?', '#', ',', '(', ')', '=', '!', '<', '>', '~':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
