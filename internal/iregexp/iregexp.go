// Package iregexp validates RFC 9485 I-Regexp patterns and translates them to
// Go regexp syntax.
//
// I-Regexp is a small interoperable subset: branches, groups, the quantifiers
// * + ? {n,m}, character classes with ranges, single character escapes and
// the \p{..} / \P{..} Unicode category escapes. Two constructs mean something
// different in Go: '.' must not match CR or LF, and '^' and '$' are ordinary
// characters. Check reports their positions so Translate can rewrite them.
package iregexp

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var ErrInvalid = errors.New("invalid I-Regexp")

// Result describes the constructs of a valid pattern that need rewriting.
type Result struct {
	// Dots holds the byte offsets of '.' atoms outside character classes.
	Dots []int
	// Anchors holds the byte offsets of literal '^' and '$' characters.
	Anchors []int
}

// Check validates pattern against the I-Regexp grammar.
func Check(pattern string) (Result, bool) {
	c := &checker{src: pattern}
	if !c.alternation() || c.pos != len(c.src) {
		return Result{}, false
	}
	return c.res, true
}

// Translate rewrites pattern for the Go regexp engine. With full set the
// result must match the whole input, as required by match(); otherwise it
// matches any substring, as required by search().
func Translate(pattern string, full bool) (string, error) {
	res, ok := Check(pattern)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrInvalid, pattern)
	}

	rewrite := make(map[int]string, len(res.Dots)+len(res.Anchors))
	for _, p := range res.Dots {
		rewrite[p] = `[^\n\r]`
	}
	for _, p := range res.Anchors {
		rewrite[p] = `\` + pattern[p:p+1]
	}

	var b strings.Builder
	if full {
		b.WriteString(`\A(?:`)
	}
	for i := 0; i < len(pattern); i++ {
		if s, ok := rewrite[i]; ok {
			b.WriteString(s)
			continue
		}
		b.WriteByte(pattern[i])
	}
	if full {
		b.WriteString(`)\z`)
	}
	return b.String(), nil
}

// Compile translates and compiles pattern.
func Compile(pattern string, full bool) (*regexp.Regexp, error) {
	translated, err := Translate(pattern, full)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(translated)
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %w", ErrInvalid, pattern, err)
	}
	return re, nil
}

type checker struct {
	src string
	pos int
	res Result
}

const (
	eof     = -1
	invalid = -2
)

func (c *checker) peek() rune {
	if c.pos >= len(c.src) {
		return eof
	}
	r, w := utf8.DecodeRuneInString(c.src[c.pos:])
	if r == utf8.RuneError && w == 1 {
		return invalid
	}
	return r
}

func (c *checker) advance() {
	_, w := utf8.DecodeRuneInString(c.src[c.pos:])
	c.pos += w
}

// i-regexp = branch *( "|" branch )
func (c *checker) alternation() bool {
	if !c.branch() {
		return false
	}
	for c.peek() == '|' {
		c.advance()
		if !c.branch() {
			return false
		}
	}
	return true
}

// branch = *piece
func (c *checker) branch() bool {
	for {
		switch c.peek() {
		case eof, '|', ')':
			return true
		}
		if !c.piece() {
			return false
		}
	}
}

// piece = atom [ quantifier ]
func (c *checker) piece() bool {
	if !c.atom() {
		return false
	}
	switch c.peek() {
	case '*', '+', '?':
		c.advance()
	case '{':
		return c.rangeQuantifier()
	}
	return true
}

// range-quantifier = "{" QuantExact [ "," [ QuantExact ] ] "}"
func (c *checker) rangeQuantifier() bool {
	c.advance()
	if !c.digits() {
		return false
	}
	if c.peek() == ',' {
		c.advance()
		if c.peek() != '}' && !c.digits() {
			return false
		}
	}
	if c.peek() != '}' {
		return false
	}
	c.advance()
	return true
}

func (c *checker) digits() bool {
	start := c.pos
	for r := c.peek(); r >= '0' && r <= '9'; r = c.peek() {
		c.advance()
	}
	return c.pos > start
}

func (c *checker) atom() bool {
	switch r := c.peek(); r {
	case '(':
		c.advance()
		if !c.alternation() || c.peek() != ')' {
			return false
		}
		c.advance()
		return true
	case '.':
		c.res.Dots = append(c.res.Dots, c.pos)
		c.advance()
		return true
	case '[':
		return c.classExpr()
	case '\\':
		return c.escape(true)
	case '^', '$':
		c.res.Anchors = append(c.res.Anchors, c.pos)
		c.advance()
		return true
	default:
		if !isNormalChar(r) {
			return false
		}
		c.advance()
		return true
	}
}

// escape parses SingleCharEsc and, when categories is set, catEsc/complEsc.
func (c *checker) escape(categories bool) bool {
	c.advance() // '\'
	r := c.peek()
	switch r {
	case '(', ')', '*', '+', '-', '.', '?', '[', '\\', ']', '^', 'n', 'r', 't', '{', '|', '}':
		c.advance()
		return true
	case 'p', 'P':
		if !categories {
			return false
		}
		c.advance()
		return c.category()
	}
	return false
}

// category parses "{" IsCategory "}".
func (c *checker) category() bool {
	if c.peek() != '{' {
		return false
	}
	c.advance()

	subs, ok := categories[c.peek()]
	if !ok {
		return false
	}
	c.advance()
	if r := c.peek(); r != '}' {
		if !strings.ContainsRune(subs, r) {
			return false
		}
		c.advance()
	}
	if c.peek() != '}' {
		return false
	}
	c.advance()
	return true
}

var categories = map[rune]string{
	'L': "lmotu",
	'M': "cen",
	'N': "dlo",
	'P': "cdefios",
	'Z': "lps",
	'S': "ckmo",
	'C': "cfno",
}

// charClassExpr = "[" [ "^" ] ( "-" / CCE1 ) *CCE1 [ "-" ] "]"
func (c *checker) classExpr() bool {
	c.advance() // '['
	if c.peek() == '^' {
		c.advance()
	}
	if c.peek() == '-' {
		c.advance()
	} else if !c.classEntry() {
		return false
	}
	for {
		switch c.peek() {
		case ']':
			c.advance()
			return true
		case eof:
			return false
		case '-':
			c.advance()
			if c.peek() != ']' {
				return false
			}
		default:
			if !c.classEntry() {
				return false
			}
		}
	}
}

// CCE1 = ( CCchar [ "-" CCchar ] ) / charClassEsc
func (c *checker) classEntry() bool {
	if c.peek() == '\\' && c.pos+1 < len(c.src) && (c.src[c.pos+1] == 'p' || c.src[c.pos+1] == 'P') {
		return c.escape(true)
	}
	if !c.classChar() {
		return false
	}
	if c.peek() == '-' && c.pos+1 < len(c.src) && c.src[c.pos+1] != ']' {
		c.advance()
		return c.classChar()
	}
	return true
}

// CCchar excludes '-', '[', '\' and ']' unless escaped.
func (c *checker) classChar() bool {
	r := c.peek()
	switch r {
	case '\\':
		return c.escape(false)
	case '-', '[', ']', eof, invalid:
		return false
	}
	c.advance()
	return true
}

// isNormalChar reports characters that match themselves outside classes.
func isNormalChar(r rune) bool {
	switch r {
	case '(', ')', '*', '+', '.', '?', '[', '\\', ']', '{', '|', '}', eof, invalid:
		return false
	}
	return r >= 0 && r <= 0xD7FF || r >= 0xE000 && r <= 0x10FFFF
}
