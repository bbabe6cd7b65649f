package functions

import (
	"github.com/jacoelho/jpq/internal/datatype"
	"github.com/jacoelho/jpq/internal/iregexp"
	"github.com/jacoelho/jpq/internal/jsonvalue"
	"github.com/jacoelho/jpq/internal/nodelist"
)

func builtins() []*Definition {
	return []*Definition{
		{
			Name:   "length",
			Params: []FilterType{ValueType},
			Result: ValueType,
			ReturnType: func([]datatype.Type) datatype.Type {
				return datatype.Union(datatype.Number, datatype.Nothing)
			},
			Handler: length,
		},
		{
			Name:   "count",
			Params: []FilterType{NodesType},
			Result: ValueType,
			ReturnType: func([]datatype.Type) datatype.Type {
				return datatype.Number
			},
			Handler: count,
		},
		{
			Name:    "match",
			Params:  []FilterType{ValueType, ValueType},
			Result:  LogicalType,
			Handler: regexHandler(true),
		},
		{
			Name:    "search",
			Params:  []FilterType{ValueType, ValueType},
			Result:  LogicalType,
			Handler: regexHandler(false),
		},
		{
			Name:   "value",
			Params: []FilterType{NodesType},
			Result: ValueType,
			ReturnType: func(args []datatype.Type) datatype.Type {
				if len(args) != 1 {
					return datatype.Any
				}
				return datatype.Union(args[0], datatype.Nothing)
			},
			Handler: value,
		},
	}
}

func length(_ *Context, args []any) any {
	n, ok := jsonvalue.Len(args[0])
	if !ok {
		return jsonvalue.Nothing
	}
	return float64(n)
}

func count(_ *Context, args []any) any {
	nodes, _ := args[0].(nodelist.List)
	return float64(len(nodes))
}

func value(_ *Context, args []any) any {
	nodes, _ := args[0].(nodelist.List)
	if n, ok := nodes.Single(); ok {
		return n.Value
	}
	return jsonvalue.Nothing
}

func regexHandler(full bool) Handler {
	return func(ctx *Context, args []any) any {
		input, ok := args[0].(string)
		if !ok {
			return LogicalValue(false)
		}
		pattern, ok := args[1].(string)
		if !ok {
			return LogicalValue(false)
		}
		re, err := iregexp.Compile(pattern, full)
		if err != nil {
			ctx.Warn(1, "%q is not a valid I-Regexp pattern", pattern)
			return LogicalValue(false)
		}
		return LogicalValue(re.MatchString(input))
	}
}
