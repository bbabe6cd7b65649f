package analysis

import (
	"context"
	"log/slog"

	"github.com/jacoelho/jpq/internal/diagnostic"
	"github.com/jacoelho/jpq/internal/eval"
	"github.com/jacoelho/jpq/internal/functions"
	"github.com/jacoelho/jpq/internal/nodelist"
	"github.com/jacoelho/jpq/internal/syntax"
)

// Dynamic analyzes queries by evaluating them.
type Dynamic struct {
	functions *functions.Registry
	// Logger receives debug traces. Nil discards them.
	Logger *slog.Logger
}

// NewDynamic returns a dynamic analyzer. A nil registry means the built-ins.
func NewDynamic(registry *functions.Registry) *Dynamic {
	return &Dynamic{functions: registry}
}

// Result is the outcome of a dynamic analysis.
type Result struct {
	Diagnostics []diagnostic.Diagnostic
	Nodes       nodelist.List
}

type observation struct {
	applied  map[syntax.Selector]bool
	produced map[syntax.Selector]bool

	evaluated map[syntax.FilterExpression]bool
	wasTrue   map[syntax.FilterExpression]bool

	reported map[diagnostic.Diagnostic]bool
	diags    []diagnostic.Diagnostic
}

// Analyze evaluates q against argument and warns about selectors that were
// applied but never selected anything, and about conditions inside filters
// that were evaluated but never true. Warnings raised by function handlers
// are included once each.
func (d *Dynamic) Analyze(q *syntax.Query, argument any) Result {
	obs := &observation{
		applied:   make(map[syntax.Selector]bool),
		produced:  make(map[syntax.Selector]bool),
		evaluated: make(map[syntax.FilterExpression]bool),
		wasTrue:   make(map[syntax.FilterExpression]bool),
		reported:  make(map[diagnostic.Diagnostic]bool),
	}

	nodes := eval.Select(q, argument, eval.Options{
		Functions: d.functions,
		Logger:    d.Logger,
		Report:    obs.report,
		Hooks: eval.Hooks{
			OnSelector:   obs.selector,
			OnExpression: obs.expression,
		},
	})

	syntax.Walk(q, func(e syntax.Element) bool {
		switch n := e.(type) {
		case syntax.Selector:
			if obs.applied[n] && !obs.produced[n] {
				obs.report(diagnostic.Warningf(syntax.RangeOf(n), "%s selects nothing", describe(n)))
			}
		case syntax.FilterExpression:
			if isCondition(n) && obs.evaluated[n] && !obs.wasTrue[n] {
				obs.report(diagnostic.Warningf(syntax.RangeOf(n), "condition %s is never true", syntax.Format(n)))
			}
		}
		return true
	})

	diagnostic.Sort(obs.diags)
	logger(d.Logger).LogAttrs(context.Background(), slog.LevelDebug, "dynamic analysis",
		slog.Int("nodes", len(nodes)),
		slog.Int("warnings", len(obs.diags)),
	)
	return Result{Diagnostics: obs.diags, Nodes: nodes}
}

func (o *observation) report(d diagnostic.Diagnostic) {
	if o.reported[d] {
		return
	}
	o.reported[d] = true
	o.diags = append(o.diags, d)
}

func (o *observation) selector(sel syntax.Selector, _ *nodelist.Node, output nodelist.List) {
	o.applied[sel] = true
	if len(output) > 0 {
		o.produced[sel] = true
	}
}

func (o *observation) expression(e syntax.FilterExpression, v any) {
	o.evaluated[e] = true
	if eval.Test(v) {
		o.wasTrue[e] = true
	}
}

// isCondition reports operands of logical operators. The expression of a
// filter selector is covered by the selector warning and a parenthesized
// expression by the parenthesis.
func isCondition(e syntax.FilterExpression) bool {
	switch e.Parent().(type) {
	case *syntax.AndExpression, *syntax.OrExpression, *syntax.NotExpression:
		return true
	}
	return false
}
