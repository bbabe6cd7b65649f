package eval

import (
	"github.com/jacoelho/jpq/internal/functions"
	"github.com/jacoelho/jpq/internal/jsonvalue"
	"github.com/jacoelho/jpq/internal/nodelist"
	"github.com/jacoelho/jpq/internal/syntax"
)

// expression evaluates e with current as the '@' node.
func (ev *evaluator) expression(e syntax.FilterExpression, current *nodelist.Node) any {
	v := ev.realize(e, current)
	if ev.hooks.OnExpression != nil && e != nil {
		ev.hooks.OnExpression(e, v)
	}
	return v
}

func (ev *evaluator) realize(e syntax.FilterExpression, current *nodelist.Node) any {
	switch n := e.(type) {
	case *syntax.OrExpression:
		if Test(ev.expression(n.Left, current)) {
			return functions.LogicalValue(true)
		}
		return functions.LogicalValue(Test(ev.expression(n.Right, current)))
	case *syntax.AndExpression:
		if !Test(ev.expression(n.Left, current)) {
			return functions.LogicalValue(false)
		}
		return functions.LogicalValue(Test(ev.expression(n.Right, current)))
	case *syntax.NotExpression:
		return functions.LogicalValue(!Test(ev.expression(n.Operand, current)))
	case *syntax.ParenthesisExpression:
		return functions.LogicalValue(Test(ev.expression(n.Expression, current)))
	case *syntax.ComparisonExpression:
		left := Value(ev.expression(n.Left, current))
		right := Value(ev.expression(n.Right, current))
		return functions.LogicalValue(Compare(n.Operator.TokenKind, left, right))
	case *syntax.FilterQueryExpression:
		return ev.query(n.Query, current)
	case *syntax.FunctionExpression:
		return ev.call(n, current)
	case *syntax.StringLiteral:
		return n.Value()
	case *syntax.NumberLiteral:
		return n.Value()
	case *syntax.BooleanLiteral:
		return n.Value()
	case *syntax.NullLiteral:
		return nil
	case *syntax.MissingExpression, nil:
		return jsonvalue.Nothing
	}
	panic("eval: unknown filter expression " + e.Kind().String())
}

func (ev *evaluator) call(n *syntax.FunctionExpression, current *nodelist.Node) any {
	def, ok := ev.functions.Lookup(n.Name.Text)
	if !ok || len(def.Params) != len(n.Args) {
		for _, arg := range n.Args {
			ev.expression(arg, current)
		}
		return jsonvalue.Nothing
	}

	args := make([]any, len(n.Args))
	for i, arg := range n.Args {
		v := ev.expression(arg, current)
		switch def.Params[i] {
		case functions.ValueType:
			args[i] = Value(v)
		case functions.LogicalType:
			args[i] = functions.LogicalValue(Test(v))
		case functions.NodesType:
			args[i] = Nodes(v)
		}
	}
	return def.Handler(functions.NewContext(n, ev.report), args)
}

// Test converts a realized expression value to a boolean: a logical value
// as is, a node list by non-emptiness. Anything else is false.
func Test(v any) bool {
	switch c := v.(type) {
	case functions.LogicalValue:
		return bool(c)
	case nodelist.List:
		return len(c) > 0
	}
	return false
}

// Value converts a realized expression value to a JSON value: the value of
// a single-node list, Nothing for other lists.
func Value(v any) any {
	if l, ok := v.(nodelist.List); ok {
		if n, ok := l.Single(); ok {
			return n.Value
		}
		return jsonvalue.Nothing
	}
	return v
}

// Nodes converts a realized expression value to a node list.
func Nodes(v any) nodelist.List {
	l, _ := v.(nodelist.List)
	return l
}

// Compare applies a comparison operator to two values.
func Compare(op syntax.TokenKind, a, b any) bool {
	switch op {
	case syntax.TokenEqual:
		return jsonvalue.Equal(a, b)
	case syntax.TokenNotEqual:
		return !jsonvalue.Equal(a, b)
	case syntax.TokenLess:
		less, ok := jsonvalue.Less(a, b)
		return ok && less
	case syntax.TokenGreater:
		less, ok := jsonvalue.Less(b, a)
		return ok && less
	case syntax.TokenLessEqual:
		less, ok := jsonvalue.Less(a, b)
		return (ok && less) || jsonvalue.Equal(a, b)
	case syntax.TokenGreaterEqual:
		less, ok := jsonvalue.Less(b, a)
		return (ok && less) || jsonvalue.Equal(a, b)
	}
	return false
}
