package syntax

import (
	"strings"
	"unicode"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/jacoelho/jpq/internal/diagnostic"
)

// scanner splits query text into tokens, attaching the blank space that
// precedes each token. Malformed tokens are still produced so the parser can
// keep the tree lossless; the problem is recorded as a diagnostic.
type scanner struct {
	src   string
	pos   int
	diags []diagnostic.Diagnostic
}

func scan(src string) ([]*Token, []diagnostic.Diagnostic) {
	s := &scanner{src: src}
	tokens := make([]*Token, 0, len(src)/2+1)
	for {
		t := s.next()
		tokens = append(tokens, t)
		if t.TokenKind == TokenEOF {
			return tokens, s.diags
		}
	}
}

func (s *scanner) errorf(start, end int, format string, args ...any) {
	s.diags = append(s.diags, diagnostic.Errorf(diagnostic.Range{Start: start, End: end}, format, args...))
}

func (s *scanner) peekRune(offset int) (rune, int) {
	if offset >= len(s.src) {
		return -1, 0
	}
	r, w := rune(s.src[offset]), 1
	if r >= utf8.RuneSelf {
		r, w = utf8.DecodeRuneInString(s.src[offset:])
	}
	return r, w
}

func (s *scanner) next() *Token {
	leadingStart := s.pos
	for s.pos < len(s.src) && isBlank(s.src[s.pos]) {
		s.pos++
	}
	leading := s.src[leadingStart:s.pos]
	start := s.pos

	emit := func(kind TokenKind, width int) *Token {
		s.pos += width
		return &Token{TokenKind: kind, Text: s.src[start:s.pos], Leading: leading, pos: start}
	}

	if s.pos >= len(s.src) {
		return &Token{TokenKind: TokenEOF, Leading: leading, pos: start}
	}

	c := s.src[s.pos]
	var c2 byte
	if s.pos+1 < len(s.src) {
		c2 = s.src[s.pos+1]
	}

	switch c {
	case '$':
		return emit(TokenDollar, 1)
	case '@':
		return emit(TokenAt, 1)
	case '[':
		return emit(TokenLBracket, 1)
	case ']':
		return emit(TokenRBracket, 1)
	case '(':
		return emit(TokenLParen, 1)
	case ')':
		return emit(TokenRParen, 1)
	case '*':
		return emit(TokenStar, 1)
	case '?':
		return emit(TokenQuestion, 1)
	case ',':
		return emit(TokenComma, 1)
	case ':':
		return emit(TokenColon, 1)
	case '.':
		if c2 == '.' {
			return emit(TokenDotDot, 2)
		}
		return emit(TokenDot, 1)
	case '=':
		if c2 == '=' {
			return emit(TokenEqual, 2)
		}
		s.errorf(start, start+1, "unexpected '=', did you mean '=='?")
		return emit(TokenUnknown, 1)
	case '!':
		if c2 == '=' {
			return emit(TokenNotEqual, 2)
		}
		return emit(TokenNot, 1)
	case '<':
		if c2 == '=' {
			return emit(TokenLessEqual, 2)
		}
		return emit(TokenLess, 1)
	case '>':
		if c2 == '=' {
			return emit(TokenGreaterEqual, 2)
		}
		return emit(TokenGreater, 1)
	case '&':
		if c2 == '&' {
			return emit(TokenAnd, 2)
		}
		s.errorf(start, start+1, "unexpected '&', did you mean '&&'?")
		return emit(TokenUnknown, 1)
	case '|':
		if c2 == '|' {
			return emit(TokenOr, 2)
		}
		s.errorf(start, start+1, "unexpected '|', did you mean '||'?")
		return emit(TokenUnknown, 1)
	case '"', '\'':
		value := s.scanString()
		return &Token{TokenKind: TokenString, Text: s.src[start:s.pos], Leading: leading, Value: value, pos: start}
	}

	if c == '-' || isDigit(rune(c)) {
		s.scanNumber()
		return &Token{TokenKind: TokenNumber, Text: s.src[start:s.pos], Leading: leading, pos: start}
	}

	r, w := s.peekRune(s.pos)
	invalid := r == utf8.RuneError && w == 1
	if !invalid && isNameFirst(r) {
		for {
			r, w = s.peekRune(s.pos)
			if (r == utf8.RuneError && w == 1) || !isNameChar(r) {
				break
			}
			s.pos += w
		}
		return &Token{TokenKind: TokenName, Text: s.src[start:s.pos], Leading: leading, pos: start}
	}

	if invalid {
		s.errorf(start, start+w, "invalid UTF-8 encoding")
	} else {
		s.errorf(start, start+w, "unexpected character %q", r)
	}
	return emit(TokenUnknown, w)
}

// scanNumber consumes an RFC 9535 number: ["-"] int [frac] [exp], where int
// has no leading zeros.
func (s *scanner) scanNumber() {
	start := s.pos
	if s.src[s.pos] == '-' {
		s.pos++
	}
	digits := s.pos
	for s.pos < len(s.src) && isDigit(rune(s.src[s.pos])) {
		s.pos++
	}
	switch {
	case s.pos == digits:
		s.errorf(start, s.pos, "expected digit after '-'")
		return
	case s.src[digits] == '0' && s.pos-digits > 1:
		s.errorf(start, s.pos, "leading zeros are not allowed")
	}

	if s.pos+1 < len(s.src) && s.src[s.pos] == '.' && isDigit(rune(s.src[s.pos+1])) {
		s.pos++
		for s.pos < len(s.src) && isDigit(rune(s.src[s.pos])) {
			s.pos++
		}
	}

	if s.pos < len(s.src) && (s.src[s.pos] == 'e' || s.src[s.pos] == 'E') {
		s.pos++
		if s.pos < len(s.src) && (s.src[s.pos] == '+' || s.src[s.pos] == '-') {
			s.pos++
		}
		expDigits := s.pos
		for s.pos < len(s.src) && isDigit(rune(s.src[s.pos])) {
			s.pos++
		}
		if s.pos == expDigits {
			s.errorf(start, s.pos, "expected digit in exponent")
		}
	}
}

// scanString consumes a quoted string and returns its decoded value. An
// unterminated string extends to the end of the input.
func (s *scanner) scanString() string {
	start := s.pos
	quote := rune(s.src[s.pos])
	s.pos++

	var b strings.Builder
	for s.pos < len(s.src) {
		r, w := s.peekRune(s.pos)
		switch {
		case r == quote:
			s.pos += w
			return b.String()
		case r == '\\':
			s.scanEscape(quote, &b)
		case r == utf8.RuneError && w == 1:
			s.errorf(s.pos, s.pos+w, "invalid UTF-8 encoding in string literal")
			s.pos += w
		case isUnescaped(r, quote):
			b.WriteRune(r)
			s.pos += w
		default:
			s.errorf(s.pos, s.pos+w, "invalid character %U in string literal", r)
			s.pos += w
		}
	}

	s.errorf(start, s.pos, "unterminated string literal")
	return b.String()
}

func (s *scanner) scanEscape(quote rune, b *strings.Builder) {
	start := s.pos
	s.pos++ // '\'
	r, w := s.peekRune(s.pos)
	switch r {
	case quote:
		b.WriteRune(quote)
	case 'b':
		b.WriteByte('\b')
	case 'f':
		b.WriteByte('\f')
	case 'n':
		b.WriteByte('\n')
	case 'r':
		b.WriteByte('\r')
	case 't':
		b.WriteByte('\t')
	case '/':
		b.WriteByte('/')
	case '\\':
		b.WriteByte('\\')
	case 'u':
		s.pos++
		s.scanUnicodeEscape(start, b)
		return
	case -1:
		s.errorf(start, s.pos, "unterminated escape sequence")
		return
	default:
		s.errorf(start, s.pos+w, "invalid escape sequence '\\%c'", r)
	}
	s.pos += w
}

func (s *scanner) scanUnicodeEscape(start int, b *strings.Builder) {
	r, ok := s.scanHex4()
	if !ok {
		s.errorf(start, s.pos, "invalid unicode escape sequence")
		return
	}
	if !utf16.IsSurrogate(r) {
		b.WriteRune(r)
		return
	}
	if r >= 0xDC00 || !strings.HasPrefix(s.src[s.pos:], `\u`) {
		s.errorf(start, s.pos, "unpaired surrogate in unicode escape")
		return
	}
	s.pos += 2
	low, ok := s.scanHex4()
	decoded := utf16.DecodeRune(r, low)
	if !ok || decoded == unicode.ReplacementChar {
		s.errorf(start, s.pos, "invalid surrogate pair in unicode escape")
		return
	}
	b.WriteRune(decoded)
}

func (s *scanner) scanHex4() (rune, bool) {
	var r rune
	for range 4 {
		if s.pos >= len(s.src) {
			return 0, false
		}
		h := hexVal(s.src[s.pos])
		if h < 0 {
			return 0, false
		}
		r = r*16 + h
		s.pos++
	}
	return r, true
}

func hexVal(c byte) rune {
	switch {
	case '0' <= c && c <= '9':
		return rune(c - '0')
	case 'a' <= c && c <= 'f':
		return rune(c-'a') + 10
	case 'A' <= c && c <= 'F':
		return rune(c-'A') + 10
	default:
		return -1
	}
}

// isBlank reports RFC 9535 blank space: SP / HTAB / LF / CR.
func isBlank(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(r rune) bool {
	return '0' <= r && r <= '9'
}

// isNameFirst implements
//
//	name-first = ALPHA / "_" / %x80-D7FF / %xE000-10FFFF
func isNameFirst(r rune) bool {
	return (r >= 'a' && r <= 'z') ||
		(r >= 'A' && r <= 'Z') ||
		r == '_' ||
		(r >= 0x80 && r <= 0xD7FF) ||
		(r >= 0xE000 && r <= 0x10FFFF)
}

func isNameChar(r rune) bool {
	return isNameFirst(r) || isDigit(r)
}

// IsFunctionName reports whether name matches
//
//	function-name = function-name-first *function-name-char
//	function-name-first = LCALPHA
//	function-name-char = function-name-first / "_" / DIGIT
func IsFunctionName(name string) bool {
	if name == "" || name[0] < 'a' || name[0] > 'z' {
		return false
	}
	for i := 1; i < len(name); i++ {
		c := name[i]
		if !(c >= 'a' && c <= 'z') && c != '_' && !isDigit(rune(c)) {
			return false
		}
	}
	return true
}

// isUnescaped reports whether r may appear unescaped in a string delimited
// by quote.
//
//	unescaped = %x20-21 / %x23-26 / %x28-5B / %x5D-D7FF / %xE000-10FFFF
func isUnescaped(r, quote rune) bool {
	if r == quote || r == '\\' {
		return false
	}
	return (r >= 0x20 && r <= 0xD7FF) || (r >= 0xE000 && r <= 0x10FFFF)
}
