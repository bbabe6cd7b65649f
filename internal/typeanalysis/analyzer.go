// Package typeanalysis computes the data type of every element of a query
// from the type of the query argument, narrowing filter candidates by the
// filter expression.
package typeanalysis

import (
	"github.com/jacoelho/jpq/internal/datatype"
	"github.com/jacoelho/jpq/internal/eval"
	"github.com/jacoelho/jpq/internal/functions"
	"github.com/jacoelho/jpq/internal/normpath"
	"github.com/jacoelho/jpq/internal/syntax"
)

// Analyzer memoizes the types of the elements of the queries it is asked
// about. It is bound to one root type and one function registry and must not
// be shared between goroutines.
type Analyzer struct {
	root      datatype.Type
	functions *functions.Registry

	types    map[syntax.Element]datatype.Type
	incoming map[*syntax.Segment]datatype.Type
}

// New returns an analyzer for queries run against values of type root. A
// nil registry means the built-in functions.
func New(root datatype.Type, registry *functions.Registry) *Analyzer {
	if registry == nil {
		registry = functions.Default()
	}
	return &Analyzer{
		root:      root,
		functions: registry,
		types:     make(map[syntax.Element]datatype.Type),
		incoming:  make(map[*syntax.Segment]datatype.Type),
	}
}

// Root returns the type of the query argument.
func (a *Analyzer) Root() datatype.Type {
	return a.root
}

// Type returns the type of the values an element stands for: the output of
// a query, segment or selector, the value of a filter expression, or for a
// token the type of the element it belongs to.
func (a *Analyzer) Type(e syntax.Element) datatype.Type {
	if e == nil {
		return datatype.Any
	}
	if t, ok := a.types[e]; ok {
		return t
	}
	t := a.compute(e)
	a.types[e] = t
	return t
}

// IncomingType returns the type of the values a segment is applied to,
// before descendant widening.
func (a *Analyzer) IncomingType(seg *syntax.Segment) datatype.Type {
	if t, ok := a.incoming[seg]; ok {
		return t
	}
	t := a.computeIncoming(seg)
	a.incoming[seg] = t
	return t
}

func (a *Analyzer) computeIncoming(seg *syntax.Segment) datatype.Type {
	q, ok := seg.Parent().(*syntax.Query)
	if !ok {
		return datatype.Any
	}
	for i, s := range q.Segments {
		if s == seg {
			if i == 0 {
				return a.identifierType(q)
			}
			return a.Type(q.Segments[i-1])
		}
	}
	return datatype.Any
}

// scope is the incoming type of seg widened by the descendants for a
// descendant segment.
func (a *Analyzer) scope(seg *syntax.Segment) datatype.Type {
	in := a.IncomingType(seg)
	if seg.Descendant {
		return datatype.Union(in, datatype.Descendants(in))
	}
	return in
}

// identifierType is the type of the node a query starts from: the root for
// '$', the filter candidate for '@'.
func (a *Analyzer) identifierType(q *syntax.Query) datatype.Type {
	if !q.IsRelative() {
		return a.root
	}
	for _, p := range syntax.Ancestors(q) {
		if f, ok := p.(*syntax.FilterSelector); ok {
			if seg := syntax.EnclosingSegment(f); seg != nil {
				return datatype.Children(a.scope(seg))
			}
		}
	}
	return a.root
}

func (a *Analyzer) compute(e syntax.Element) datatype.Type {
	switch n := e.(type) {
	case *syntax.Token:
		if q, ok := n.Parent().(*syntax.Query); ok && q.Identifier == n {
			return a.identifierType(q)
		}
		if p := n.Parent(); p != nil {
			return a.Type(p)
		}
		return datatype.Any
	case *syntax.Query:
		if len(n.Segments) == 0 {
			return a.identifierType(n)
		}
		return a.Type(n.Segments[len(n.Segments)-1])
	case *syntax.Segment:
		out := make([]datatype.Type, len(n.Selectors))
		for i, sel := range n.Selectors {
			out[i] = a.Type(sel)
		}
		return datatype.Union(out...)
	case syntax.Selector:
		seg := syntax.EnclosingSegment(n)
		if seg == nil {
			return datatype.Never
		}
		return a.selectorType(n, a.scope(seg))
	case syntax.FilterExpression:
		return a.expressionType(n)
	}
	panic("typeanalysis: unknown element " + e.Kind().String())
}

func (a *Analyzer) selectorType(sel syntax.Selector, in datatype.Type) datatype.Type {
	switch s := sel.(type) {
	case *syntax.NameSelector:
		if s.Name.Missing {
			return datatype.Never
		}
		return datatype.AtSegment(in, normpath.Name(s.Value()))
	case *syntax.IndexSelector:
		i, ok := s.Value()
		if !ok || i < syntax.MinInt || i > syntax.MaxInt {
			return datatype.Never
		}
		return datatype.AtSegment(in, normpath.Index(int(i)))
	case *syntax.WildcardSelector:
		return datatype.Children(in)
	case *syntax.SliceSelector:
		return sliceType(s, in)
	case *syntax.FilterSelector:
		return a.Narrow(datatype.Children(in), s.Expression, true)
	case *syntax.MissingSelector:
		return datatype.Never
	}
	panic("typeanalysis: unknown selector " + sel.Kind().String())
}

// sliceType is exact for arrays of bounded length and the element type
// otherwise.
func sliceType(s *syntax.SliceSelector, in datatype.Type) datatype.Type {
	if _, _, step := s.Bounds(); step != nil && *step == 0 {
		return datatype.Never
	}
	switch t := in.(type) {
	case *datatype.AnyType:
		return datatype.Any
	case *datatype.UnionType:
		members := t.Members()
		out := make([]datatype.Type, len(members))
		for i, m := range members {
			out[i] = sliceType(s, m)
		}
		return datatype.Union(out...)
	case *datatype.ArrayType:
		maxLen := t.MaxLen()
		if maxLen < 0 {
			return datatype.Children(t)
		}
		var out []datatype.Type
		for n := t.RequiredCount(); n <= maxLen; n++ {
			for i := range eval.SliceIndices(s, n) {
				out = append(out, t.Element(i))
			}
		}
		return datatype.Union(out...)
	}
	return datatype.Never
}

func (a *Analyzer) expressionType(e syntax.FilterExpression) datatype.Type {
	switch n := e.(type) {
	case *syntax.OrExpression, *syntax.AndExpression, *syntax.NotExpression,
		*syntax.ParenthesisExpression, *syntax.ComparisonExpression:
		return datatype.Boolean
	case *syntax.FilterQueryExpression:
		return a.Type(n.Query)
	case *syntax.FunctionExpression:
		def, ok := a.functions.Lookup(n.Name.Text)
		if !ok || len(def.Params) != len(n.Args) {
			return datatype.Any
		}
		args := make([]datatype.Type, len(n.Args))
		for i, arg := range n.Args {
			args[i] = a.Type(arg)
		}
		return def.TypeOfCall(args)
	case *syntax.StringLiteral:
		return datatype.Literal(n.Value())
	case *syntax.NumberLiteral:
		return datatype.Literal(n.Value())
	case *syntax.BooleanLiteral:
		return datatype.Literal(n.Value())
	case *syntax.NullLiteral:
		return datatype.Null
	case *syntax.MissingExpression:
		return datatype.Any
	}
	panic("typeanalysis: unknown filter expression " + e.Kind().String())
}
