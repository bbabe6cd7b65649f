// Package analysis reports advisory warnings about queries: selectors that
// can never select anything, given either the type of the argument (static)
// or an actual argument (dynamic).
package analysis

import (
	"context"
	"log/slog"

	"github.com/jacoelho/jpq/internal/datatype"
	"github.com/jacoelho/jpq/internal/diagnostic"
	"github.com/jacoelho/jpq/internal/functions"
	"github.com/jacoelho/jpq/internal/syntax"
	"github.com/jacoelho/jpq/internal/typeanalysis"
)

// Static analyzes queries against a root data type.
type Static struct {
	functions *functions.Registry
	// Logger receives debug traces. Nil discards them.
	Logger *slog.Logger
}

// NewStatic returns a static analyzer. A nil registry means the built-ins.
func NewStatic(registry *functions.Registry) *Static {
	return &Static{functions: registry}
}

// Analyze warns about every selector whose type is Never although its input
// is not. Selectors downstream of such a selector are not reported again.
func (s *Static) Analyze(q *syntax.Query, root datatype.Type) []diagnostic.Diagnostic {
	a := typeanalysis.New(root, s.functions)
	var diags []diagnostic.Diagnostic
	syntax.Walk(q, func(e syntax.Element) bool {
		sel, ok := e.(syntax.Selector)
		if !ok {
			return true
		}
		if _, missing := sel.(*syntax.MissingSelector); missing {
			return true
		}
		seg := syntax.EnclosingSegment(sel)
		in := a.IncomingType(seg)
		if isNever(in) {
			return true
		}
		if isNever(a.Type(sel)) {
			diags = append(diags, diagnostic.Warningf(syntax.RangeOf(sel),
				"%s selects nothing from values of type %s", describe(sel), datatype.Format(in)))
		}
		return true
	})
	diagnostic.Sort(diags)
	logger(s.Logger).LogAttrs(context.Background(), slog.LevelDebug, "static analysis",
		slog.Int("warnings", len(diags)),
	)
	return diags
}

func describe(sel syntax.Selector) string {
	switch sel.(type) {
	case *syntax.FilterSelector:
		return "filter"
	case *syntax.SliceSelector:
		return "slice " + syntax.Format(sel)
	case *syntax.WildcardSelector:
		return "wildcard"
	case *syntax.IndexSelector:
		return "index " + syntax.Format(sel)
	}
	return "selector " + syntax.Format(sel)
}

func isNever(t datatype.Type) bool {
	_, ok := t.(*datatype.NeverType)
	return ok
}

func logger(l *slog.Logger) *slog.Logger {
	if l == nil {
		return slog.New(slog.DiscardHandler)
	}
	return l
}
