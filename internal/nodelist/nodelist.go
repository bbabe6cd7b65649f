// Package nodelist holds evaluation results: nodes that remember how they
// were reached from the query argument.
package nodelist

import (
	"slices"

	"github.com/jacoelho/jpq/internal/normpath"
)

// Node is a value together with its location. Parent is nil for the query
// argument itself; nodes share their ancestors.
type Node struct {
	Value   any
	Segment normpath.Segment
	Parent  *Node
}

// Root creates the node for a query argument.
func Root(value any) *Node {
	return &Node{Value: value}
}

// Child creates a node for a member or element of n.
func (n *Node) Child(seg normpath.Segment, value any) *Node {
	return &Node{Value: value, Segment: seg, Parent: n}
}

// IsRoot reports whether n is the query argument.
func (n *Node) IsRoot() bool {
	return n.Parent == nil
}

// Depth is the number of segments between the root and n.
func (n *Node) Depth() int {
	d := 0
	for p := n; p.Parent != nil; p = p.Parent {
		d++
	}
	return d
}

// Path returns the normalized path of n.
func (n *Node) Path() normpath.Path {
	path := make(normpath.Path, n.Depth())
	i := len(path) - 1
	for p := n; p.Parent != nil; p = p.Parent {
		path[i] = p.Segment
		i--
	}
	return path
}

// List is an ordered node list. Duplicates are significant.
type List []*Node

// Values returns the node values in order.
func (l List) Values() []any {
	out := make([]any, len(l))
	for i, n := range l {
		out[i] = n.Value
	}
	return out
}

// Paths returns the normalized paths in order.
func (l List) Paths() []normpath.Path {
	out := make([]normpath.Path, len(l))
	for i, n := range l {
		out[i] = n.Path()
	}
	return out
}

// Single returns the only node of a one-element list.
func (l List) Single() (*Node, bool) {
	if len(l) != 1 {
		return nil, false
	}
	return l[0], true
}

// Concat appends lists in order.
func Concat(lists ...List) List {
	return slices.Concat(lists...)
}
