// Package check implements the semantic checks RFC 9535 places on
// well-formed queries: filter expression typing, function arity and
// argument types, and the interoperable range of integer literals.
package check

import (
	"sync"

	"github.com/jacoelho/jpq/internal/diagnostic"
	"github.com/jacoelho/jpq/internal/functions"
	"github.com/jacoelho/jpq/internal/syntax"
)

var builtins = sync.OnceValue(functions.Default)

// typeSet holds the filter types an expression is assignable to.
type typeSet uint8

const (
	value typeSet = 1 << iota
	logical
	nodes

	unknown = value | logical | nodes
)

func (s typeSet) has(t functions.FilterType) bool {
	switch t {
	case functions.ValueType:
		return s&value != 0
	case functions.LogicalType:
		return s&logical != 0
	case functions.NodesType:
		return s&nodes != 0
	}
	return false
}

// Check reports the semantic errors of a parsed query. Parts of the tree
// that failed to parse are skipped, the parser has reported them already.
// An empty result means the query can be evaluated. A nil registry means
// the built-ins.
func Check(q *syntax.Query, registry *functions.Registry) []diagnostic.Diagnostic {
	if registry == nil {
		registry = builtins()
	}
	c := &checker{registry: registry}
	syntax.Walk(q, func(e syntax.Element) bool {
		c.visit(e)
		return true
	})
	diagnostic.Sort(c.diags)
	return c.diags
}

type checker struct {
	registry *functions.Registry
	diags    []diagnostic.Diagnostic
}

func (c *checker) errorf(e syntax.Element, format string, args ...any) {
	c.diags = append(c.diags, diagnostic.Errorf(syntax.RangeOf(e), format, args...))
}

func (c *checker) visit(e syntax.Element) {
	switch n := e.(type) {
	case *syntax.IndexSelector:
		c.checkInt(n.Index)
	case *syntax.SliceSelector:
		c.checkInt(n.Start)
		c.checkInt(n.Stop)
		c.checkInt(n.Step)
	case *syntax.FilterSelector:
		if !c.typeOf(n.Expression).has(functions.LogicalType) {
			c.errorf(n.Expression, "filter expression must be a test or a logical expression")
		}
	case *syntax.ComparisonExpression:
		c.checkComparable(n.Left)
		c.checkComparable(n.Right)
	case *syntax.AndExpression:
		c.checkLogical(n.Left, "&&")
		c.checkLogical(n.Right, "&&")
	case *syntax.OrExpression:
		c.checkLogical(n.Left, "||")
		c.checkLogical(n.Right, "||")
	case *syntax.NotExpression:
		c.checkLogical(n.Operand, "!")
	case *syntax.ParenthesisExpression:
		if !c.typeOf(n.Expression).has(functions.LogicalType) {
			c.errorf(n.Expression, "parenthesized expression must be a test or a logical expression")
		}
	case *syntax.FunctionExpression:
		c.checkCall(n)
	}
}

func (c *checker) checkInt(t *syntax.Token) {
	if t == nil || t.Missing {
		return
	}
	if v, ok := syntax.IntValue(t); ok && v >= syntax.MinInt && v <= syntax.MaxInt {
		return
	}
	c.errorf(t, "integer %s is outside the range [-(2^53)+1, (2^53)-1]", t.Text)
}

func (c *checker) checkComparable(e syntax.FilterExpression) {
	if c.typeOf(e).has(functions.ValueType) {
		return
	}
	if _, ok := e.(*syntax.FilterQueryExpression); ok {
		c.errorf(e, "non-singular query cannot be compared")
		return
	}
	c.errorf(e, "comparison operand must be a value, a singular query or a function returning a value")
}

func (c *checker) checkLogical(e syntax.FilterExpression, op string) {
	if c.typeOf(e).has(functions.LogicalType) {
		return
	}
	c.errorf(e, "operand of %s must be a test or a logical expression", op)
}

func (c *checker) checkCall(n *syntax.FunctionExpression) {
	def, ok := c.registry.Lookup(n.Name.Text)
	if !ok {
		c.errorf(n.Name, "function %s is not defined", n.Name.Text)
		return
	}
	if len(n.Args) != len(def.Params) {
		c.errorf(n, "function %s expects %d argument(s), got %d", def.Name, len(def.Params), len(n.Args))
		return
	}
	for i, arg := range n.Args {
		want := def.Params[i]
		if !c.typeOf(arg).has(want) {
			c.errorf(arg, "argument %d of %s must be %s", i+1, def.Name, describe(want))
		}
	}
}

func describe(t functions.FilterType) string {
	switch t {
	case functions.ValueType:
		return "a value"
	case functions.LogicalType:
		return "a logical expression"
	case functions.NodesType:
		return "a query"
	}
	return t.String()
}

func (c *checker) typeOf(e syntax.FilterExpression) typeSet {
	switch n := e.(type) {
	case *syntax.OrExpression, *syntax.AndExpression, *syntax.NotExpression,
		*syntax.ParenthesisExpression, *syntax.ComparisonExpression:
		return logical
	case *syntax.FilterQueryExpression:
		if n.Query.IsSingular() {
			return value | logical | nodes
		}
		return logical | nodes
	case *syntax.FunctionExpression:
		def, ok := c.registry.Lookup(n.Name.Text)
		if !ok {
			return unknown
		}
		switch def.Result {
		case functions.ValueType:
			return value
		case functions.LogicalType:
			return logical
		case functions.NodesType:
			return logical | nodes
		}
		return unknown
	case *syntax.StringLiteral, *syntax.NumberLiteral, *syntax.BooleanLiteral, *syntax.NullLiteral:
		return value
	case *syntax.MissingExpression, nil:
		return unknown
	}
	panic("check: unknown filter expression " + e.Kind().String())
}
