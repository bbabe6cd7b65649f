package syntax

import (
	"strings"

	"github.com/jacoelho/jpq/internal/diagnostic"
)

// Parse turns query text into a syntax tree. It never fails: constructs that
// cannot be parsed are replaced by missing tokens or Missing* nodes, every
// problem is reported as an error diagnostic, and all input text (including
// skipped tokens) stays in the tree.
func Parse(text string) (*Query, []diagnostic.Diagnostic) {
	tokens, diags := scan(text)
	p := &parser{tokens: tokens, diags: diags}
	q := p.parseRootQuery()
	diagnostic.Sort(p.diags)
	return q, p.diags
}

type parser struct {
	tokens []*Token
	pos    int
	diags  []diagnostic.Diagnostic
}

func (p *parser) peek() *Token {
	return p.tokens[p.pos]
}

func (p *parser) peekKind() TokenKind {
	return p.tokens[p.pos].TokenKind
}

func (p *parser) advance() *Token {
	t := p.tokens[p.pos]
	if t.TokenKind != TokenEOF {
		p.pos++
	}
	return t
}

// missing synthesizes a zero-length token at the start of the next token.
func (p *parser) missing(kind TokenKind) *Token {
	return &Token{TokenKind: kind, Missing: true, pos: p.peek().pos}
}

func (p *parser) errorf(r diagnostic.Range, format string, args ...any) {
	p.diags = append(p.diags, diagnostic.Errorf(r, format, args...))
}

func (p *parser) noLeadingBlank(t *Token, after string) {
	if t.Leading != "" && t.TokenKind != TokenEOF {
		p.errorf(diagnostic.Range{Start: t.LeadingStart(), End: t.pos}, "blank space is not allowed after %s", after)
	}
}

func (p *parser) parseRootQuery() *Query {
	q := &Query{}
	first := p.peek()
	if first.Leading != "" {
		p.errorf(diagnostic.Range{Start: 0, End: first.pos}, "query must not start with blank space")
	}

	switch first.TokenKind {
	case TokenDollar:
		q.Identifier = p.advance()
	case TokenAt:
		q.Identifier = p.advance()
		p.errorf(RangeOf(q.Identifier), "query must start with '$', '@' is only allowed inside filters")
	default:
		q.Identifier = p.missing(TokenDollar)
		p.errorf(RangeOf(q.Identifier), "query must start with '$'")
	}

	q.Segments = p.parseSegments(true)
	q.EOF = p.advance()
	if q.EOF.Leading != "" {
		p.errorf(diagnostic.Range{Start: q.EOF.LeadingStart(), End: q.EOF.pos}, "query must not end with blank space")
	}
	link(q)
	return q
}

func (p *parser) parseSegments(top bool) []*Segment {
	var segments []*Segment
	for {
		switch p.peekKind() {
		case TokenDot, TokenDotDot, TokenLBracket:
			segments = append(segments, p.parseSegment())
		case TokenEOF:
			return segments
		default:
			if !top {
				return segments
			}
			segments = append(segments, p.parseGarbageSegment())
		}
	}
}

// parseGarbageSegment wraps tokens that cannot start a segment so they stay
// in the tree.
func (p *parser) parseGarbageSegment() *Segment {
	first := p.peek()
	p.errorf(RangeOf(first), "unexpected %s, expected '.', '..' or '['", describe(first))

	missing := &MissingSelector{Token: p.missing(TokenName)}
	for {
		k := p.peekKind()
		if k == TokenDot || k == TokenDotDot || k == TokenLBracket || k == TokenEOF {
			break
		}
		missing.Skipped = append(missing.Skipped, p.advance())
	}
	link(missing)

	seg := &Segment{Selectors: []Selector{missing}}
	link(seg)
	return seg
}

func (p *parser) parseSegment() *Segment {
	seg := &Segment{}
	switch p.peekKind() {
	case TokenLBracket:
		p.parseBracketed(seg)
	case TokenDot:
		seg.Dot = p.advance()
		seg.Selectors = []Selector{p.parseShorthand(seg.Dot)}
	case TokenDotDot:
		seg.Dot = p.advance()
		seg.Descendant = true
		if p.peekKind() == TokenLBracket {
			p.noLeadingBlank(p.peek(), "'..'")
			p.parseBracketed(seg)
		} else {
			seg.Selectors = []Selector{p.parseShorthand(seg.Dot)}
		}
	}
	link(seg)
	return seg
}

// parseShorthand parses the member name or wildcard following '.' or '..'.
func (p *parser) parseShorthand(dot *Token) Selector {
	t := p.peek()
	switch t.TokenKind {
	case TokenName:
		p.noLeadingBlank(t, "'"+dot.Text+"'")
		sel := &NameSelector{Name: p.advance()}
		link(sel)
		return sel
	case TokenStar:
		p.noLeadingBlank(t, "'"+dot.Text+"'")
		sel := &WildcardSelector{Star: p.advance()}
		link(sel)
		return sel
	}

	sel := &MissingSelector{Token: p.missing(TokenName)}
	switch t.TokenKind {
	case TokenNumber:
		p.errorf(RangeOf(t), "member name must not start with a digit, use bracket notation")
		sel.Skipped = append(sel.Skipped, p.advance())
	case TokenString:
		p.errorf(RangeOf(t), "quoted member names require bracket notation")
		sel.Skipped = append(sel.Skipped, p.advance())
	default:
		p.errorf(RangeOf(sel.Token), "expected member name or '*' after '%s'", dot.Text)
	}
	link(sel)
	return sel
}

func (p *parser) parseBracketed(seg *Segment) {
	seg.LBracket = p.advance()
	for {
		seg.Selectors = append(seg.Selectors, p.parseSelector())

		t := p.peek()
		switch t.TokenKind {
		case TokenComma:
			seg.Commas = append(seg.Commas, p.advance())
			continue
		case TokenRBracket:
			seg.RBracket = p.advance()
			return
		case TokenEOF:
			seg.RBracket = p.missing(TokenRBracket)
			p.errorf(RangeOf(seg.RBracket), "expected ']'")
			return
		default:
			p.errorf(RangeOf(t), "unexpected %s, expected ',' or ']'", describe(t))
			seg.Commas = append(seg.Commas, p.missing(TokenComma))
		}
	}
}

func (p *parser) parseSelector() Selector {
	t := p.peek()
	switch t.TokenKind {
	case TokenString:
		sel := &NameSelector{Name: p.advance()}
		link(sel)
		return sel
	case TokenStar:
		sel := &WildcardSelector{Star: p.advance()}
		link(sel)
		return sel
	case TokenQuestion:
		sel := &FilterSelector{Question: p.advance()}
		sel.Expression = p.parseLogical()
		link(sel)
		return sel
	case TokenNumber, TokenColon:
		return p.parseIndexOrSlice()
	case TokenName:
		p.errorf(RangeOf(t), "member name %q must be quoted inside brackets", t.Text)
		sel := &NameSelector{Name: p.advance()}
		link(sel)
		return sel
	case TokenComma, TokenRBracket, TokenEOF:
		sel := &MissingSelector{Token: p.missing(TokenName)}
		p.errorf(RangeOf(sel.Token), "expected selector")
		link(sel)
		return sel
	}

	sel := &MissingSelector{Token: p.missing(TokenName)}
	p.errorf(RangeOf(t), "unexpected %s, expected selector", describe(t))
	for {
		k := p.peekKind()
		if k == TokenComma || k == TokenRBracket || k == TokenEOF {
			break
		}
		sel.Skipped = append(sel.Skipped, p.advance())
	}
	link(sel)
	return sel
}

func (p *parser) parseIndexOrSlice() Selector {
	var start *Token
	if p.peekKind() == TokenNumber {
		start = p.advance()
	}

	if p.peekKind() != TokenColon {
		p.checkInteger(start, "index")
		sel := &IndexSelector{Index: start}
		link(sel)
		return sel
	}

	sel := &SliceSelector{Start: start, Colon1: p.advance()}
	if p.peekKind() == TokenNumber {
		sel.Stop = p.advance()
	}
	if p.peekKind() == TokenColon {
		sel.Colon2 = p.advance()
		if p.peekKind() == TokenNumber {
			sel.Step = p.advance()
		}
	}
	for _, t := range []*Token{sel.Start, sel.Stop, sel.Step} {
		if t != nil {
			p.checkInteger(t, "slice bound")
		}
	}
	link(sel)
	return sel
}

// checkInteger reports number tokens that are not RFC 9535 integers:
//
//	int = "0" / (["-"] DIGIT1 *DIGIT)
func (p *parser) checkInteger(t *Token, what string) {
	text := t.Text
	switch {
	case strings.ContainsAny(text, ".eE"):
		p.errorf(RangeOf(t), "%s must be an integer", what)
	case text == "-0":
		p.errorf(RangeOf(t), "%s must not be negative zero", what)
	}
}

func (p *parser) parseLogical() FilterExpression {
	return p.parseOr()
}

func (p *parser) parseOr() FilterExpression {
	left := p.parseAnd()
	for p.peekKind() == TokenOr {
		e := &OrExpression{Left: left, Operator: p.advance()}
		e.Right = p.parseAnd()
		link(e)
		left = e
	}
	return left
}

func (p *parser) parseAnd() FilterExpression {
	left := p.parseComparison()
	for p.peekKind() == TokenAnd {
		e := &AndExpression{Left: left, Operator: p.advance()}
		e.Right = p.parseComparison()
		link(e)
		left = e
	}
	return left
}

func (p *parser) parseComparison() FilterExpression {
	left := p.parseUnary()
	chained := false
	for p.peekKind().isComparison() {
		op := p.advance()
		if chained {
			p.errorf(RangeOf(op), "comparison operators cannot be chained")
		}
		e := &ComparisonExpression{Left: left, Operator: op}
		e.Right = p.parseUnary()
		link(e)
		left = e
		chained = true
	}
	return left
}

func (p *parser) parseUnary() FilterExpression {
	if p.peekKind() == TokenNot {
		e := &NotExpression{Operator: p.advance()}
		e.Operand = p.parseUnary()
		link(e)
		return e
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() FilterExpression {
	t := p.peek()
	switch t.TokenKind {
	case TokenLParen:
		e := &ParenthesisExpression{LParen: p.advance()}
		e.Expression = p.parseLogical()
		if p.peekKind() == TokenRParen {
			e.RParen = p.advance()
		} else {
			e.RParen = p.missing(TokenRParen)
			p.errorf(RangeOf(e.RParen), "expected ')'")
		}
		link(e)
		return e
	case TokenString:
		e := &StringLiteral{Token: p.advance()}
		link(e)
		return e
	case TokenNumber:
		e := &NumberLiteral{Token: p.advance()}
		link(e)
		return e
	case TokenAt, TokenDollar:
		q := &Query{Identifier: p.advance()}
		q.Segments = p.parseSegments(false)
		link(q)
		e := &FilterQueryExpression{Query: q}
		link(e)
		return e
	case TokenName:
		if p.tokens[p.pos+1].TokenKind == TokenLParen {
			return p.parseFunction()
		}
		switch t.Text {
		case "true", "false":
			e := &BooleanLiteral{Token: p.advance()}
			link(e)
			return e
		case "null":
			e := &NullLiteral{Token: p.advance()}
			link(e)
			return e
		}
		p.errorf(RangeOf(t), "unexpected name %q, string literals must be quoted", t.Text)
		e := &MissingExpression{Token: p.missing(TokenName), Skipped: []*Token{p.advance()}}
		link(e)
		return e
	}

	e := &MissingExpression{Token: p.missing(TokenName)}
	p.errorf(RangeOf(t), "unexpected %s, expected expression", describe(t))
	if !endsExpression(t.TokenKind) {
		e.Skipped = append(e.Skipped, p.advance())
	}
	for isSkippableInExpression(p.peekKind()) {
		e.Skipped = append(e.Skipped, p.advance())
	}
	link(e)
	return e
}

// endsExpression reports tokens that close or continue an enclosing
// construct and so must be left for the caller.
func endsExpression(k TokenKind) bool {
	switch k {
	case TokenEOF, TokenRParen, TokenRBracket, TokenComma, TokenAnd, TokenOr:
		return true
	}
	return k.isComparison()
}

func (p *parser) parseFunction() FilterExpression {
	e := &FunctionExpression{Name: p.advance()}
	if !IsFunctionName(e.Name.Text) {
		p.errorf(RangeOf(e.Name), "invalid function name %q", e.Name.Text)
	}
	e.LParen = p.advance()
	p.noLeadingBlank(e.LParen, "a function name")

	if p.peekKind() == TokenRParen {
		e.RParen = p.advance()
		link(e)
		return e
	}

	for {
		e.Args = append(e.Args, p.parseLogical())

		t := p.peek()
		switch t.TokenKind {
		case TokenComma:
			e.Commas = append(e.Commas, p.advance())
			continue
		case TokenRParen:
			e.RParen = p.advance()
		case TokenEOF, TokenRBracket:
			e.RParen = p.missing(TokenRParen)
			p.errorf(RangeOf(e.RParen), "expected ')'")
		default:
			p.errorf(RangeOf(t), "unexpected %s, expected ',' or ')'", describe(t))
			e.Commas = append(e.Commas, p.missing(TokenComma))
			continue
		}
		break
	}
	link(e)
	return e
}

func isSkippableInExpression(k TokenKind) bool {
	switch k {
	case TokenUnknown, TokenColon, TokenStar, TokenQuestion, TokenDot, TokenDotDot:
		return true
	}
	return false
}

func describe(t *Token) string {
	switch t.TokenKind {
	case TokenEOF:
		return "end of input"
	case TokenName, TokenNumber, TokenString, TokenUnknown:
		return "'" + t.Text + "'"
	}
	return t.TokenKind.String()
}
