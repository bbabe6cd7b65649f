// Package functions defines the filter function extension point: typed
// function definitions, a registry and the RFC 9535 built-ins.
package functions

import (
	"fmt"
	"maps"
	"slices"

	"github.com/jacoelho/jpq/internal/datatype"
	"github.com/jacoelho/jpq/internal/diagnostic"
	"github.com/jacoelho/jpq/internal/syntax"
)

// FilterType is the static type of a filter expression.
type FilterType uint8

const (
	ValueType FilterType = iota + 1
	LogicalType
	NodesType
)

func (t FilterType) String() string {
	switch t {
	case ValueType:
		return "ValueType"
	case LogicalType:
		return "LogicalType"
	case NodesType:
		return "NodesType"
	}
	return fmt.Sprintf("FilterType(%d)", t)
}

// LogicalValue is the runtime value of a LogicalType expression. It is kept
// apart from JSON true and false, which are values.
type LogicalValue bool

// Handler computes a function result. Arguments arrive as:
//   - ValueType: a JSON value or jsonvalue.Nothing
//   - LogicalType: a LogicalValue
//   - NodesType: a nodelist.List
//
// and the result must follow the same convention for the declared result
// type.
type Handler func(ctx *Context, args []any) any

// Definition describes a filter function.
type Definition struct {
	Name   string
	Params []FilterType
	Result FilterType
	// ReturnType computes the data type of a call from the data types of
	// its arguments. Nil falls back to the declared result type.
	ReturnType func(args []datatype.Type) datatype.Type
	Handler    Handler
}

// TypeOfCall returns the data type of a call given its argument types.
func (d *Definition) TypeOfCall(args []datatype.Type) datatype.Type {
	if d.ReturnType != nil {
		return d.ReturnType(args)
	}
	if d.Result == LogicalType {
		return datatype.Boolean
	}
	return datatype.Any
}

// Registry maps function names to definitions. It is not safe for
// concurrent modification.
type Registry struct {
	defs map[string]*Definition
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[string]*Definition)}
}

// Default returns a registry holding the RFC 9535 built-in functions.
func Default() *Registry {
	r := NewRegistry()
	for _, def := range builtins() {
		if err := r.Register(def); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds a definition.
func (r *Registry) Register(def *Definition) error {
	if def == nil || def.Handler == nil || def.Result == 0 {
		return ErrInvalidDef
	}
	if !syntax.IsFunctionName(def.Name) {
		return fmt.Errorf("%w: bad name %q", ErrInvalidDef, def.Name)
	}
	if _, ok := r.defs[def.Name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicate, def.Name)
	}
	r.defs[def.Name] = def
	return nil
}

// Lookup finds a definition by name.
func (r *Registry) Lookup(name string) (*Definition, bool) {
	if r == nil {
		return nil, false
	}
	def, ok := r.defs[name]
	return def, ok
}

// Names returns the registered names, sorted.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.defs))
}

// Context is handed to a handler for a single call.
type Context struct {
	call   *syntax.FunctionExpression
	report func(diagnostic.Diagnostic)
}

// NewContext binds a call site to a diagnostic sink. A nil report drops
// warnings.
func NewContext(call *syntax.FunctionExpression, report func(diagnostic.Diagnostic)) *Context {
	return &Context{call: call, report: report}
}

// Call returns the call site being evaluated.
func (c *Context) Call() *syntax.FunctionExpression {
	return c.call
}

// Warn reports a warning anchored at argument arg, or at the whole call
// when arg is out of range.
func (c *Context) Warn(arg int, format string, args ...any) {
	if c == nil || c.report == nil {
		return
	}
	var r diagnostic.Range
	switch {
	case c.call == nil:
	case arg >= 0 && arg < len(c.call.Args):
		r = syntax.RangeOf(c.call.Args[arg])
	default:
		r = syntax.RangeOf(c.call)
	}
	c.report(diagnostic.Warningf(r, format, args...))
}
