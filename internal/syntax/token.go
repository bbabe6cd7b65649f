package syntax

import "fmt"

// TokenKind identifies a lexical token type.
type TokenKind uint8

const (
	TokenUnknown TokenKind = iota // character that starts no token
	TokenEOF
	TokenDollar       // $
	TokenAt           // @
	TokenDot          // .
	TokenDotDot       // ..
	TokenLBracket     // [
	TokenRBracket     // ]
	TokenLParen       // (
	TokenRParen       // )
	TokenStar         // *
	TokenQuestion     // ?
	TokenComma        // ,
	TokenColon        // :
	TokenEqual        // ==
	TokenNotEqual     // !=
	TokenLess         // <
	TokenLessEqual    // <=
	TokenGreater      // >
	TokenGreaterEqual // >=
	TokenAnd          // &&
	TokenOr           // ||
	TokenNot          // !
	TokenName         // member-name-shorthand, function name or keyword
	TokenNumber       // integer or number literal
	TokenString       // quoted string literal
)

var tokenNames = [...]string{
	TokenUnknown:      "unknown",
	TokenEOF:          "end of input",
	TokenDollar:       "'$'",
	TokenAt:           "'@'",
	TokenDot:          "'.'",
	TokenDotDot:       "'..'",
	TokenLBracket:     "'['",
	TokenRBracket:     "']'",
	TokenLParen:       "'('",
	TokenRParen:       "')'",
	TokenStar:         "'*'",
	TokenQuestion:     "'?'",
	TokenComma:        "','",
	TokenColon:        "':'",
	TokenEqual:        "'=='",
	TokenNotEqual:     "'!='",
	TokenLess:         "'<'",
	TokenLessEqual:    "'<='",
	TokenGreater:      "'>'",
	TokenGreaterEqual: "'>='",
	TokenAnd:          "'&&'",
	TokenOr:           "'||'",
	TokenNot:          "'!'",
	TokenName:         "name",
	TokenNumber:       "number",
	TokenString:       "string",
}

func (k TokenKind) String() string {
	if int(k) < len(tokenNames) {
		return tokenNames[k]
	}
	return fmt.Sprintf("TokenKind(%d)", k)
}

// isComparison reports whether k is one of the six comparison operators.
func (k TokenKind) isComparison() bool {
	return k >= TokenEqual && k <= TokenGreaterEqual
}

// Token is a leaf of the syntax tree. Text is the raw source text of the
// token and Leading the blank space skipped immediately before it, so that
// concatenating Leading+Text of all tokens reproduces the query text.
type Token struct {
	TokenKind TokenKind
	Text      string
	Leading   string

	// Value holds the decoded content of string tokens.
	Value string
	// Missing marks a zero-length token synthesized during error recovery.
	Missing bool

	pos    int
	parent Node
}

func (t *Token) Kind() Kind       { return KindToken }
func (t *Token) Position() int    { return t.pos }
func (t *Token) Length() int      { return len(t.Text) }
func (t *Token) End() int         { return t.pos + len(t.Text) }
func (t *Token) Parent() Node     { return t.parent }
func (t *Token) setParent(n Node) { t.parent = n }

// LeadingStart is the offset where the token's leading blank space begins.
func (t *Token) LeadingStart() int {
	return t.pos - len(t.Leading)
}

func (t *Token) String() string {
	if t.Missing {
		return fmt.Sprintf("missing %s", t.TokenKind)
	}
	return t.Text
}
