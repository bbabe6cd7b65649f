package jsonpath

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"

	"github.com/jacoelho/jpq/internal/check"
	"github.com/jacoelho/jpq/internal/diagnostic"
	"github.com/jacoelho/jpq/internal/eval"
	"github.com/jacoelho/jpq/internal/functions"
	"github.com/jacoelho/jpq/internal/jsonvalue"
	"github.com/jacoelho/jpq/internal/nodelist"
	"github.com/jacoelho/jpq/internal/syntax"
)

// Result represents a single match from a streamed query.
type Result struct {
	Document int    // position of the document in the stream, from 0
	Path     string // normalized path within the document
	Value    any
}

// Option configures Compile.
type Option func(*Path)

// WithFunctions resolves function calls with registry instead of the
// built-ins.
func WithFunctions(registry *functions.Registry) Option {
	return func(p *Path) {
		p.functions = registry
	}
}

// WithLogger sends evaluation traces to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Path) {
		p.logger = logger
	}
}

// WithReport receives warnings raised by function handlers during Select.
func WithReport(report func(diagnostic.Diagnostic)) Option {
	return func(p *Path) {
		p.report = report
	}
}

// Path is a compiled query. It holds no evaluation state and may be used
// concurrently when the registry is not modified.
type Path struct {
	text      string
	query     *syntax.Query
	functions *functions.Registry
	logger    *slog.Logger
	report    func(diagnostic.Diagnostic)
}

// Compile parses and checks expr.
func Compile(expr string, opts ...Option) (*Path, error) {
	p := &Path{text: expr}
	for _, opt := range opts {
		opt(p)
	}
	if p.functions == nil {
		p.functions = functions.Default()
	}

	q, diags := syntax.Parse(expr)
	if diagnostic.HasErrors(diags) {
		return nil, &Error{Query: expr, Diagnostics: diags, syntax: true}
	}
	if diags := check.Check(q, p.functions); diagnostic.HasErrors(diags) {
		return nil, &Error{Query: expr, Diagnostics: diags}
	}
	p.query = q
	return p, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(expr string, opts ...Option) *Path {
	p, err := Compile(expr, opts...)
	if err != nil {
		panic(err)
	}
	return p
}

// Validate checks if a JSONPath expression is valid.
func Validate(expr string) error {
	_, err := Compile(expr)
	return err
}

// String returns the expression the path was compiled from.
func (p *Path) String() string {
	return p.text
}

// Query returns the syntax tree.
func (p *Path) Query() *syntax.Query {
	return p.query
}

// Select returns the nodes of value selected by the path.
func (p *Path) Select(value any) nodelist.List {
	return eval.Select(p.query, value, eval.Options{
		Functions: p.functions,
		Logger:    p.logger,
		Report:    p.report,
	})
}

// Stream decodes consecutive JSON documents from r, such as NDJSON, and
// yields the matches of each in order. Iteration stops at the first decoding
// error or when ctx is done.
func (p *Path) Stream(ctx context.Context, r io.Reader) iter.Seq2[Result, error] {
	return func(yield func(Result, error) bool) {
		dec := json.NewDecoder(r)
		dec.UseNumber()

		for doc := 0; ; doc++ {
			if err := ctx.Err(); err != nil {
				yield(Result{}, err)
				return
			}

			value, err := jsonvalue.DecodeNext(dec)
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(Result{}, fmt.Errorf("%w: document %d: %v", ErrMalformed, doc, err))
				return
			}

			for _, n := range p.Select(value) {
				if err := ctx.Err(); err != nil {
					yield(Result{}, err)
					return
				}
				if !yield(Result{Document: doc, Path: n.Path().String(), Value: n.Value}, nil) {
					return
				}
			}
		}
	}
}

// Query compiles expr and selects from value in one step.
func Query(expr string, value any) (nodelist.List, error) {
	p, err := Compile(expr)
	if err != nil {
		return nil, err
	}
	return p.Select(value), nil
}
