package syntax

import (
	"strings"

	"github.com/jacoelho/jpq/internal/normpath"
)

// IsSingular reports whether q can select at most one node: every segment is
// a child segment holding a single name or index selector.
func (q *Query) IsSingular() bool {
	for _, seg := range q.Segments {
		if seg.Descendant || len(seg.Selectors) != 1 {
			return false
		}
		switch seg.Selectors[0].(type) {
		case *NameSelector, *IndexSelector:
		default:
			return false
		}
	}
	return true
}

// ToNormalizedPath converts a singular query into the path it designates.
// Negative indices are kept as is and count from the end of the array.
func (q *Query) ToNormalizedPath() (normpath.Path, bool) {
	if !q.IsSingular() {
		return nil, false
	}
	out := make(normpath.Path, 0, len(q.Segments))
	for _, seg := range q.Segments {
		switch sel := seg.Selectors[0].(type) {
		case *NameSelector:
			out = append(out, normpath.Name(sel.Value()))
		case *IndexSelector:
			v, ok := sel.Value()
			if !ok {
				return nil, false
			}
			out = append(out, normpath.Index(int(v)))
		}
	}
	return out, true
}

// Format renders an element in canonical form: brackets use ", " between
// selectors, binary operators are surrounded by single spaces and string
// literals use single quotes. Missing elements render as nothing.
func Format(e Element) string {
	var b strings.Builder
	format(&b, e)
	return b.String()
}

func format(b *strings.Builder, e Element) {
	switch n := e.(type) {
	case nil:
	case *Token:
		if n != nil && !n.Missing {
			b.WriteString(n.Text)
		}
	case *Query:
		format(b, n.Identifier)
		for _, s := range n.Segments {
			format(b, s)
		}
	case *Segment:
		if n.Descendant {
			b.WriteString("..")
		}
		if n.LBracket == nil && len(n.Selectors) == 1 {
			switch sel := n.Selectors[0].(type) {
			case *NameSelector:
				if !n.Descendant {
					b.WriteByte('.')
				}
				b.WriteString(sel.Name.Text)
				return
			case *WildcardSelector:
				if !n.Descendant {
					b.WriteByte('.')
				}
				b.WriteByte('*')
				return
			}
		}
		b.WriteByte('[')
		for i, sel := range n.Selectors {
			if i > 0 {
				b.WriteString(", ")
			}
			format(b, sel)
		}
		b.WriteByte(']')
	case *NameSelector:
		b.WriteString(quote(n.Value()))
	case *WildcardSelector:
		b.WriteByte('*')
	case *IndexSelector:
		format(b, n.Index)
	case *SliceSelector:
		format(b, tok(n.Start))
		b.WriteByte(':')
		format(b, tok(n.Stop))
		if n.Step != nil {
			b.WriteByte(':')
			format(b, n.Step)
		}
	case *FilterSelector:
		b.WriteByte('?')
		format(b, n.Expression)
	case *MissingSelector, *MissingExpression:
	case *OrExpression:
		formatBinary(b, n.Left, "||", n.Right)
	case *AndExpression:
		formatBinary(b, n.Left, "&&", n.Right)
	case *ComparisonExpression:
		formatBinary(b, n.Left, n.Operator.Text, n.Right)
	case *NotExpression:
		b.WriteByte('!')
		format(b, n.Operand)
	case *ParenthesisExpression:
		b.WriteByte('(')
		format(b, n.Expression)
		b.WriteByte(')')
	case *FilterQueryExpression:
		format(b, n.Query)
	case *FunctionExpression:
		b.WriteString(n.Name.Text)
		b.WriteByte('(')
		for i, arg := range n.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			format(b, arg)
		}
		b.WriteByte(')')
	case *StringLiteral:
		b.WriteString(quote(n.Value()))
	case *NumberLiteral, *BooleanLiteral, *NullLiteral:
		for _, t := range Tokens(e) {
			format(b, t)
		}
	}
}

func formatBinary(b *strings.Builder, left FilterExpression, op string, right FilterExpression) {
	format(b, left)
	b.WriteByte(' ')
	b.WriteString(op)
	b.WriteByte(' ')
	format(b, right)
}

// quote renders s as a single-quoted string literal using the normalized
// path escaping rules.
func quote(s string) string {
	p := normpath.Path{normpath.Name(s)}.String()
	// strip "$[" and "]"
	return p[2 : len(p)-1]
}
