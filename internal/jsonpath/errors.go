package jsonpath

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jacoelho/jpq/internal/diagnostic"
)

var (
	// ErrSyntax indicates a JSONPath expression that does not follow the
	// RFC 9535 grammar.
	ErrSyntax = errors.New("jsonpath: syntax error")

	// ErrInvalidQuery indicates a well-formed expression rejected by the
	// semantic checks: unknown functions, bad arguments, non-logical
	// filters, out of range integers.
	ErrInvalidQuery = errors.New("jsonpath: invalid query")

	// ErrMalformed indicates the JSON input is malformed or invalid.
	ErrMalformed = errors.New("jsonpath: malformed JSON structure")
)

// Error lists every diagnostic that prevented a query from compiling. It
// unwraps to ErrSyntax when the parser reported an error and to
// ErrInvalidQuery otherwise.
type Error struct {
	Query       string
	Diagnostics []diagnostic.Diagnostic
	syntax      bool
}

func (e *Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%v: %q", e.Unwrap(), e.Query)
	for _, d := range e.Diagnostics {
		fmt.Fprintf(&b, "\n  %s: %s", d.Range, d.Message)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	if e.syntax {
		return ErrSyntax
	}
	return ErrInvalidQuery
}
