package syntax

import (
	"strings"

	"github.com/jacoelho/jpq/internal/diagnostic"
	"github.com/jacoelho/jpq/internal/stack"
)

// Walk visits root and its descendants in pre-order. Returning false from fn
// skips the children of the visited element.
func Walk(root Element, fn func(Element) bool) {
	if root == nil {
		return
	}
	s := stack.New[Element]()
	s.Push(root)
	for !s.IsEmpty() {
		e, _ := s.Pop()
		if !fn(e) {
			continue
		}
		n, ok := e.(Node)
		if !ok {
			continue
		}
		children := n.Children()
		present := make([]Element, 0, len(children))
		for _, c := range children {
			if c != nil {
				present = append(present, c)
			}
		}
		s.PushReversed(present...)
	}
}

// Tokens returns the tokens under root in source order.
func Tokens(root Element) []*Token {
	var out []*Token
	Walk(root, func(e Element) bool {
		if t, ok := e.(*Token); ok {
			out = append(out, t)
		}
		return true
	})
	return out
}

// Text reconstructs the source text covered by root. For a top-level query
// this reproduces the parsed input exactly, including blank space and any
// tokens skipped during error recovery.
func Text(root Element) string {
	var b strings.Builder
	for i, t := range Tokens(root) {
		if i > 0 || root.Kind() == KindQuery && root.Parent() == nil {
			b.WriteString(t.Leading)
		}
		b.WriteString(t.Text)
	}
	return b.String()
}

// RangeOf returns the source range of an element, excluding leading blank
// space.
func RangeOf(e Element) diagnostic.Range {
	return diagnostic.Range{Start: e.Position(), End: e.End()}
}

// ElementAt returns the innermost element whose range contains pos, or nil
// when pos lies outside root. Tokens win over the nodes that contain them;
// among adjacent tokens the one starting at pos is preferred.
func ElementAt(root Element, pos int) Element {
	if root == nil || !RangeOf(root).Contains(pos) {
		return nil
	}
	current := root
	for {
		n, ok := current.(Node)
		if !ok {
			return current
		}
		var next Element
		for _, c := range n.Children() {
			if c == nil || !RangeOf(c).Contains(pos) {
				continue
			}
			if next == nil || c.Position() == pos {
				next = c
			}
		}
		if next == nil {
			return current
		}
		current = next
	}
}

// Ancestors returns the chain of nodes enclosing e, innermost first.
func Ancestors(e Element) []Node {
	var out []Node
	for p := e.Parent(); p != nil; p = p.Parent() {
		out = append(out, p)
	}
	return out
}

// EnclosingSegment returns the segment containing e, or nil.
func EnclosingSegment(e Element) *Segment {
	for p := e.Parent(); p != nil; p = p.Parent() {
		if s, ok := p.(*Segment); ok {
			return s
		}
	}
	return nil
}
