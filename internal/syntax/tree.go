package syntax

import (
	"fmt"
	"math"
	"strconv"
)

// Kind is the discriminant of a syntax tree element.
type Kind uint8

const (
	KindToken Kind = iota
	KindQuery
	KindSegment
	KindNameSelector
	KindIndexSelector
	KindSliceSelector
	KindWildcardSelector
	KindFilterSelector
	KindMissingSelector
	KindOrExpression
	KindAndExpression
	KindNotExpression
	KindParenthesisExpression
	KindComparisonExpression
	KindFilterQueryExpression
	KindFunctionExpression
	KindStringLiteral
	KindNumberLiteral
	KindBooleanLiteral
	KindNullLiteral
	KindMissingExpression
)

var kindNames = [...]string{
	KindToken:                 "Token",
	KindQuery:                 "Query",
	KindSegment:               "Segment",
	KindNameSelector:          "NameSelector",
	KindIndexSelector:         "IndexSelector",
	KindSliceSelector:         "SliceSelector",
	KindWildcardSelector:      "WildcardSelector",
	KindFilterSelector:        "FilterSelector",
	KindMissingSelector:       "MissingSelector",
	KindOrExpression:          "OrExpression",
	KindAndExpression:         "AndExpression",
	KindNotExpression:         "NotExpression",
	KindParenthesisExpression: "ParenthesisExpression",
	KindComparisonExpression:  "ComparisonExpression",
	KindFilterQueryExpression: "FilterQueryExpression",
	KindFunctionExpression:    "FunctionExpression",
	KindStringLiteral:         "StringLiteral",
	KindNumberLiteral:         "NumberLiteral",
	KindBooleanLiteral:        "BooleanLiteral",
	KindNullLiteral:           "NullLiteral",
	KindMissingExpression:     "MissingExpression",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// Element is any syntax tree element: a *Token or a Node.
type Element interface {
	Kind() Kind
	Position() int
	Length() int
	End() int
	// Parent returns the enclosing node, or nil for the root query.
	Parent() Node

	setParent(Node)
}

// Node is an interior element owning an ordered list of children. Absent
// optional tokens show up as nil entries in Children.
type Node interface {
	Element
	Children() []Element
}

// Selector is implemented by the six selector nodes.
type Selector interface {
	Node
	selectorNode()
}

// FilterExpression is implemented by every filter expression node.
type FilterExpression interface {
	Node
	expressionNode()
}

type node struct {
	pos    int
	length int
	parent Node
}

func (n *node) Position() int    { return n.pos }
func (n *node) Length() int      { return n.length }
func (n *node) End() int         { return n.pos + n.length }
func (n *node) Parent() Node     { return n.parent }
func (n *node) setParent(p Node) { n.parent = p }

func (n *node) span() *node { return n }

type spanner interface {
	Node
	span() *node
}

// link sets the parent of every child and derives the node's range from the
// first and last present child.
func link(n spanner) {
	first, last := -1, -1
	for _, child := range n.Children() {
		if child == nil {
			continue
		}
		child.setParent(n)
		if first < 0 {
			first = child.Position()
		}
		last = child.End()
	}
	s := n.span()
	if first < 0 {
		return
	}
	s.pos = first
	s.length = last - first
}

func tok(t *Token) Element {
	if t == nil {
		return nil
	}
	return t
}

func expr(e FilterExpression) Element {
	if e == nil {
		return nil
	}
	return e
}

// Query is a root ($) or relative (@) query followed by segments.
type Query struct {
	node
	Identifier *Token
	Segments   []*Segment
	// EOF is set on the top-level query only and carries trailing blank space.
	EOF *Token
}

func (q *Query) Kind() Kind { return KindQuery }

func (q *Query) Children() []Element {
	out := make([]Element, 0, len(q.Segments)+2)
	out = append(out, tok(q.Identifier))
	for _, s := range q.Segments {
		out = append(out, s)
	}
	out = append(out, tok(q.EOF))
	return out
}

// IsRelative reports whether the query starts at the current node (@).
func (q *Query) IsRelative() bool {
	return q.Identifier != nil && q.Identifier.TokenKind == TokenAt
}

// Segment is a child or descendant segment.
type Segment struct {
	node
	Descendant bool
	// Dot is '.' or '..' for shorthand and descendant segments, nil for a
	// plain bracketed child segment.
	Dot       *Token
	LBracket  *Token
	Selectors []Selector
	// Commas[i] separates Selectors[i] and Selectors[i+1].
	Commas   []*Token
	RBracket *Token
}

func (s *Segment) Kind() Kind { return KindSegment }

func (s *Segment) Children() []Element {
	out := make([]Element, 0, 2*len(s.Selectors)+3)
	out = append(out, tok(s.Dot), tok(s.LBracket))
	for i, sel := range s.Selectors {
		out = append(out, sel)
		if i < len(s.Commas) {
			out = append(out, tok(s.Commas[i]))
		}
	}
	out = append(out, tok(s.RBracket))
	return out
}

// NameSelector selects an object member. Name is a string token in bracket
// notation or a name token in shorthand notation.
type NameSelector struct {
	node
	Name *Token
}

func (s *NameSelector) Kind() Kind          { return KindNameSelector }
func (s *NameSelector) Children() []Element { return []Element{s.Name} }
func (s *NameSelector) selectorNode()       {}

// Value returns the decoded member name.
func (s *NameSelector) Value() string {
	if s.Name.TokenKind == TokenString {
		return s.Name.Value
	}
	return s.Name.Text
}

// WildcardSelector selects all children.
type WildcardSelector struct {
	node
	Star *Token
}

func (s *WildcardSelector) Kind() Kind          { return KindWildcardSelector }
func (s *WildcardSelector) Children() []Element { return []Element{s.Star} }
func (s *WildcardSelector) selectorNode()       {}

// IndexSelector selects an array element.
type IndexSelector struct {
	node
	Index *Token
}

func (s *IndexSelector) Kind() Kind          { return KindIndexSelector }
func (s *IndexSelector) Children() []Element { return []Element{s.Index} }
func (s *IndexSelector) selectorNode()       {}

// Value returns the index; ok is false when the literal does not fit int64.
func (s *IndexSelector) Value() (int64, bool) {
	return IntValue(s.Index)
}

// SliceSelector selects a range of array elements.
type SliceSelector struct {
	node
	Start  *Token
	Colon1 *Token
	Stop   *Token
	Colon2 *Token
	Step   *Token
}

func (s *SliceSelector) Kind() Kind { return KindSliceSelector }
func (s *SliceSelector) Children() []Element {
	return []Element{tok(s.Start), tok(s.Colon1), tok(s.Stop), tok(s.Colon2), tok(s.Step)}
}
func (s *SliceSelector) selectorNode() {}

// Bounds returns the start, end and step values, nil when omitted.
func (s *SliceSelector) Bounds() (start, end, step *int64) {
	return optionalInt(s.Start), optionalInt(s.Stop), optionalInt(s.Step)
}

// FilterSelector selects children for which Expression is true.
type FilterSelector struct {
	node
	Question   *Token
	Expression FilterExpression
}

func (s *FilterSelector) Kind() Kind { return KindFilterSelector }
func (s *FilterSelector) Children() []Element {
	return []Element{s.Question, expr(s.Expression)}
}
func (s *FilterSelector) selectorNode() {}

// MissingSelector stands in for a selector that could not be parsed.
type MissingSelector struct {
	node
	Token   *Token
	Skipped []*Token
}

func (s *MissingSelector) Kind() Kind { return KindMissingSelector }
func (s *MissingSelector) Children() []Element {
	out := []Element{s.Token}
	for _, t := range s.Skipped {
		out = append(out, t)
	}
	return out
}
func (s *MissingSelector) selectorNode() {}

// OrExpression is a logical disjunction.
type OrExpression struct {
	node
	Left     FilterExpression
	Operator *Token
	Right    FilterExpression
}

func (e *OrExpression) Kind() Kind { return KindOrExpression }
func (e *OrExpression) Children() []Element {
	return []Element{expr(e.Left), e.Operator, expr(e.Right)}
}
func (e *OrExpression) expressionNode() {}

// AndExpression is a logical conjunction.
type AndExpression struct {
	node
	Left     FilterExpression
	Operator *Token
	Right    FilterExpression
}

func (e *AndExpression) Kind() Kind { return KindAndExpression }
func (e *AndExpression) Children() []Element {
	return []Element{expr(e.Left), e.Operator, expr(e.Right)}
}
func (e *AndExpression) expressionNode() {}

// NotExpression is a logical negation.
type NotExpression struct {
	node
	Operator *Token
	Operand  FilterExpression
}

func (e *NotExpression) Kind() Kind          { return KindNotExpression }
func (e *NotExpression) Children() []Element { return []Element{e.Operator, expr(e.Operand)} }
func (e *NotExpression) expressionNode()     {}

// ParenthesisExpression groups a logical expression.
type ParenthesisExpression struct {
	node
	LParen     *Token
	Expression FilterExpression
	RParen     *Token
}

func (e *ParenthesisExpression) Kind() Kind { return KindParenthesisExpression }
func (e *ParenthesisExpression) Children() []Element {
	return []Element{e.LParen, expr(e.Expression), e.RParen}
}
func (e *ParenthesisExpression) expressionNode() {}

// ComparisonExpression compares two comparables.
type ComparisonExpression struct {
	node
	Left     FilterExpression
	Operator *Token
	Right    FilterExpression
}

func (e *ComparisonExpression) Kind() Kind { return KindComparisonExpression }
func (e *ComparisonExpression) Children() []Element {
	return []Element{expr(e.Left), e.Operator, expr(e.Right)}
}
func (e *ComparisonExpression) expressionNode() {}

// FilterQueryExpression embeds a query inside a filter.
type FilterQueryExpression struct {
	node
	Query *Query
}

func (e *FilterQueryExpression) Kind() Kind          { return KindFilterQueryExpression }
func (e *FilterQueryExpression) Children() []Element { return []Element{e.Query} }
func (e *FilterQueryExpression) expressionNode()     {}

// FunctionExpression is a function extension call.
type FunctionExpression struct {
	node
	Name   *Token
	LParen *Token
	Args   []FilterExpression
	// Commas[i] separates Args[i] and Args[i+1].
	Commas []*Token
	RParen *Token
}

func (e *FunctionExpression) Kind() Kind { return KindFunctionExpression }
func (e *FunctionExpression) Children() []Element {
	out := make([]Element, 0, 2*len(e.Args)+3)
	out = append(out, e.Name, e.LParen)
	for i, a := range e.Args {
		out = append(out, a)
		if i < len(e.Commas) {
			out = append(out, tok(e.Commas[i]))
		}
	}
	out = append(out, e.RParen)
	return out
}
func (e *FunctionExpression) expressionNode() {}

// StringLiteral is a quoted string literal.
type StringLiteral struct {
	node
	Token *Token
}

func (e *StringLiteral) Kind() Kind          { return KindStringLiteral }
func (e *StringLiteral) Children() []Element { return []Element{e.Token} }
func (e *StringLiteral) expressionNode()     {}
func (e *StringLiteral) Value() string       { return e.Token.Value }

// NumberLiteral is a numeric literal.
type NumberLiteral struct {
	node
	Token *Token
}

func (e *NumberLiteral) Kind() Kind          { return KindNumberLiteral }
func (e *NumberLiteral) Children() []Element { return []Element{e.Token} }
func (e *NumberLiteral) expressionNode()     {}

// Value returns the literal as a float64. Literals beyond the float64 range
// saturate to ±Inf.
func (e *NumberLiteral) Value() float64 {
	f, err := strconv.ParseFloat(e.Token.Text, 64)
	if err != nil && !math.IsInf(f, 0) {
		return 0
	}
	return f
}

// BooleanLiteral is true or false.
type BooleanLiteral struct {
	node
	Token *Token
}

func (e *BooleanLiteral) Kind() Kind          { return KindBooleanLiteral }
func (e *BooleanLiteral) Children() []Element { return []Element{e.Token} }
func (e *BooleanLiteral) expressionNode()     {}
func (e *BooleanLiteral) Value() bool         { return e.Token.Text == "true" }

// NullLiteral is null.
type NullLiteral struct {
	node
	Token *Token
}

func (e *NullLiteral) Kind() Kind          { return KindNullLiteral }
func (e *NullLiteral) Children() []Element { return []Element{e.Token} }
func (e *NullLiteral) expressionNode()     {}

// MissingExpression stands in for an expression that could not be parsed.
type MissingExpression struct {
	node
	Token   *Token
	Skipped []*Token
}

func (e *MissingExpression) Kind() Kind { return KindMissingExpression }
func (e *MissingExpression) Children() []Element {
	out := []Element{e.Token}
	for _, t := range e.Skipped {
		out = append(out, t)
	}
	return out
}
func (e *MissingExpression) expressionNode() {}

// Interoperable integer bounds for indices and slice parameters.
const (
	MinInt = -(1 << 53) + 1
	MaxInt = 1<<53 - 1
)

// IntValue parses an integer token. ok is false for missing tokens and for
// literals that do not fit in an int64.
func IntValue(t *Token) (int64, bool) {
	if t == nil || t.Missing {
		return 0, false
	}
	v, err := strconv.ParseInt(t.Text, 10, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

func optionalInt(t *Token) *int64 {
	v, ok := IntValue(t)
	if !ok {
		return nil
	}
	return &v
}
