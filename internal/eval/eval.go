// Package eval executes RFC 9535 queries against decoded JSON values.
//
// Select assumes the query passed the semantic checker. It never fails on
// data: selectors that do not apply to a value simply produce nothing.
package eval

import (
	"context"
	"iter"
	"log/slog"
	"sync"

	"github.com/jacoelho/jpq/internal/diagnostic"
	"github.com/jacoelho/jpq/internal/functions"
	"github.com/jacoelho/jpq/internal/jsonvalue"
	"github.com/jacoelho/jpq/internal/nodelist"
	"github.com/jacoelho/jpq/internal/normpath"
	"github.com/jacoelho/jpq/internal/stack"
	"github.com/jacoelho/jpq/internal/syntax"
)

// Hooks observe an evaluation. Any field may be nil.
type Hooks struct {
	// OnSegment is called once per segment evaluation with the nodes the
	// segment was applied to and the nodes it produced.
	OnSegment func(seg *syntax.Segment, input, output nodelist.List)
	// OnSelector is called for every selector applied to a node. For a
	// descendant segment input is the visited descendant.
	OnSelector func(sel syntax.Selector, input *nodelist.Node, output nodelist.List)
	// OnExpression is called for every filter expression that is evaluated,
	// with its realized value: a JSON value or jsonvalue.Nothing for value
	// expressions, functions.LogicalValue for logical ones and
	// nodelist.List for queries.
	OnExpression func(e syntax.FilterExpression, value any)
}

// Options configure Select.
type Options struct {
	// Functions resolves function calls. Nil means the built-ins.
	Functions *functions.Registry
	Hooks     Hooks
	// Logger receives debug traces. Nil discards them.
	Logger *slog.Logger
	// Report receives warnings raised by function handlers.
	Report func(diagnostic.Diagnostic)
}

var builtins = sync.OnceValue(functions.Default)

// Select evaluates q against argument and returns the selected nodes in
// RFC 9535 order.
func Select(q *syntax.Query, argument any, opts Options) nodelist.List {
	ev := newEvaluator(opts)
	root := nodelist.Root(argument)
	ev.root = root
	out := ev.query(q, root)
	if ctx := context.Background(); ev.logger.Enabled(ctx, slog.LevelDebug) {
		ev.logger.LogAttrs(ctx, slog.LevelDebug, "query evaluated",
			slog.String("query", syntax.Format(q)),
			slog.Int("nodes", len(out)),
		)
	}
	return out
}

type evaluator struct {
	functions *functions.Registry
	hooks     Hooks
	logger    *slog.Logger
	report    func(diagnostic.Diagnostic)
	root      *nodelist.Node
}

func newEvaluator(opts Options) *evaluator {
	ev := &evaluator{
		functions: opts.Functions,
		hooks:     opts.Hooks,
		logger:    opts.Logger,
		report:    opts.Report,
	}
	if ev.functions == nil {
		ev.functions = builtins()
	}
	if ev.logger == nil {
		ev.logger = slog.New(slog.DiscardHandler)
	}
	return ev
}

func (ev *evaluator) query(q *syntax.Query, current *nodelist.Node) nodelist.List {
	start := ev.root
	if q.IsRelative() {
		start = current
	}
	nodes := nodelist.List{start}
	for _, seg := range q.Segments {
		nodes = ev.segment(seg, nodes)
	}
	return nodes
}

func (ev *evaluator) segment(seg *syntax.Segment, input nodelist.List) nodelist.List {
	var output nodelist.List
	for _, n := range input {
		if !seg.Descendant {
			output = ev.applySelectors(seg, n, output)
			continue
		}
		for d := range descendants(n) {
			output = ev.applySelectors(seg, d, output)
		}
	}
	if ev.hooks.OnSegment != nil {
		ev.hooks.OnSegment(seg, input, output)
	}
	ev.logger.LogAttrs(context.Background(), slog.LevelDebug, "segment evaluated",
		slog.Int("position", seg.Position()),
		slog.Bool("descendant", seg.Descendant),
		slog.Int("input", len(input)),
		slog.Int("output", len(output)),
	)
	return output
}

func (ev *evaluator) applySelectors(seg *syntax.Segment, n *nodelist.Node, output nodelist.List) nodelist.List {
	for _, sel := range seg.Selectors {
		selected := ev.selector(sel, n)
		if ev.hooks.OnSelector != nil {
			ev.hooks.OnSelector(sel, n, selected)
		}
		output = append(output, selected...)
	}
	return output
}

// descendants yields n and then every node below it, depth first, children
// in member order.
func descendants(n *nodelist.Node) iter.Seq[*nodelist.Node] {
	return func(yield func(*nodelist.Node) bool) {
		pending := stack.New[*nodelist.Node]()
		pending.Push(n)
		for !pending.IsEmpty() {
			current, _ := pending.Pop()
			if !yield(current) {
				return
			}
			pending.PushReversed(children(current)...)
		}
	}
}

func children(n *nodelist.Node) []*nodelist.Node {
	var out []*nodelist.Node
	for seg, v := range jsonvalue.Members(n.Value) {
		out = append(out, n.Child(seg, v))
	}
	return out
}

func (ev *evaluator) selector(sel syntax.Selector, n *nodelist.Node) nodelist.List {
	switch s := sel.(type) {
	case *syntax.NameSelector:
		if s.Name.Missing {
			return nil
		}
		name := s.Value()
		if v, ok := jsonvalue.Member(n.Value, name); ok {
			return nodelist.List{n.Child(normpath.Name(name), v)}
		}
		return nil
	case *syntax.WildcardSelector:
		return children(n)
	case *syntax.IndexSelector:
		arr, ok := n.Value.([]any)
		if !ok {
			return nil
		}
		i, ok := s.Value()
		if !ok {
			return nil
		}
		if i < 0 {
			i += int64(len(arr))
		}
		if i < 0 || i >= int64(len(arr)) {
			return nil
		}
		return nodelist.List{n.Child(normpath.Index(int(i)), arr[i])}
	case *syntax.SliceSelector:
		arr, ok := n.Value.([]any)
		if !ok {
			return nil
		}
		var out nodelist.List
		for i := range SliceIndices(s, len(arr)) {
			out = append(out, n.Child(normpath.Index(i), arr[i]))
		}
		return out
	case *syntax.FilterSelector:
		var out nodelist.List
		for _, child := range children(n) {
			if Test(ev.expression(s.Expression, child)) {
				out = append(out, child)
			}
		}
		return out
	case *syntax.MissingSelector:
		return nil
	}
	panic("eval: unknown selector " + sel.Kind().String())
}
