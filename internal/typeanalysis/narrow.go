package typeanalysis

import (
	"github.com/jacoelho/jpq/internal/datatype"
	"github.com/jacoelho/jpq/internal/normpath"
	"github.com/jacoelho/jpq/internal/syntax"
)

// Narrow refines t, the type of the '@' node, to the values for which e
// evaluates to isTrue. Expressions it cannot reason about leave t as is.
func (a *Analyzer) Narrow(t datatype.Type, e syntax.FilterExpression, isTrue bool) datatype.Type {
	switch n := e.(type) {
	case *syntax.ComparisonExpression:
		return a.narrowComparison(t, n, isTrue)
	case *syntax.FilterQueryExpression:
		path, ok := relativePath(n)
		if !ok {
			return t
		}
		if isTrue {
			return datatype.SetPathExistence(t, path)
		}
		return datatype.ChangeAtPath(t, path, func(m datatype.Type) datatype.Type {
			return datatype.Intersect(m, datatype.Nothing)
		})
	case *syntax.AndExpression:
		if isTrue {
			return a.Narrow(a.Narrow(t, n.Left, true), n.Right, true)
		}
		return datatype.Union(a.Narrow(t, n.Left, false), a.Narrow(t, n.Right, false))
	case *syntax.OrExpression:
		if isTrue {
			return datatype.Union(a.Narrow(t, n.Left, true), a.Narrow(t, n.Right, true))
		}
		return a.Narrow(a.Narrow(t, n.Left, false), n.Right, false)
	case *syntax.NotExpression:
		return a.Narrow(t, n.Operand, !isTrue)
	case *syntax.ParenthesisExpression:
		return a.Narrow(t, n.Expression, isTrue)
	}
	return t
}

func (a *Analyzer) narrowComparison(t datatype.Type, n *syntax.ComparisonExpression, isTrue bool) datatype.Type {
	switch n.Operator.TokenKind {
	case syntax.TokenEqual, syntax.TokenNotEqual:
		equal := isTrue == (n.Operator.TokenKind == syntax.TokenEqual)
		t = a.narrowOperand(t, n.Left, n.Right, equal)
		return a.narrowOperand(t, n.Right, n.Left, equal)
	case syntax.TokenLess, syntax.TokenGreater:
		if !isTrue {
			return t
		}
		for _, operand := range []syntax.FilterExpression{n.Left, n.Right} {
			if path, ok := relativePath(operand); ok {
				t = datatype.SetPathExistence(t, path)
			}
		}
	}
	return t
}

// narrowOperand narrows the path of target, when it is a relative singular
// query, by the type of other.
func (a *Analyzer) narrowOperand(t datatype.Type, target, other syntax.FilterExpression, equal bool) datatype.Type {
	path, ok := relativePath(target)
	if !ok {
		return t
	}
	ot := a.operandType(t, other)
	if equal {
		return datatype.ChangeAtPath(t, path, func(m datatype.Type) datatype.Type {
			return datatype.Intersect(m, ot)
		})
	}
	if !isSingleton(ot) {
		return t
	}
	return datatype.ChangeAtPath(t, path, func(m datatype.Type) datatype.Type {
		return datatype.Subtract(m, ot)
	})
}

// operandType is the type of a comparison operand including nothing when a
// singular query may select no node. Relative queries are resolved against
// current.
func (a *Analyzer) operandType(current datatype.Type, e syntax.FilterExpression) datatype.Type {
	fq, ok := e.(*syntax.FilterQueryExpression)
	if !ok {
		return a.Type(e)
	}
	path, ok := fq.Query.ToNormalizedPath()
	if !ok {
		return datatype.Union(a.Type(e), datatype.Nothing)
	}
	base := a.root
	if fq.Query.IsRelative() {
		base = current
	}
	return datatype.ValueAtPath(base, path)
}

func relativePath(e syntax.FilterExpression) (normpath.Path, bool) {
	fq, ok := e.(*syntax.FilterQueryExpression)
	if !ok || !fq.Query.IsRelative() {
		return nil, false
	}
	return fq.Query.ToNormalizedPath()
}

// isSingleton reports types with exactly one value, the only ones whose
// complement can be expressed by subtraction.
func isSingleton(t datatype.Type) bool {
	if _, ok := t.(*datatype.LiteralType); ok {
		return true
	}
	return datatype.Equivalent(t, datatype.Null) || datatype.Equivalent(t, datatype.Nothing)
}
