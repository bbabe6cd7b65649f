package typeanalysis

import (
	"strings"
	"testing"

	"github.com/jacoelho/jpq/internal/datatype"
	"github.com/jacoelho/jpq/internal/jsonvalue"
	"github.com/jacoelho/jpq/internal/syntax"
)

func mustParse(t *testing.T, text string) *syntax.Query {
	t.Helper()

	q, diags := syntax.Parse(text)
	if len(diags) != 0 {
		t.Fatalf("Parse(%q) = %v", text, diags)
	}
	return q
}

// typeAt returns the type of the innermost element at the first occurrence
// of sub in text.
func typeAt(t *testing.T, a *Analyzer, q *syntax.Query, text, sub string) datatype.Type {
	t.Helper()

	pos := strings.Index(text, sub)
	if pos < 0 {
		t.Fatalf("%q not found in %q", sub, text)
	}
	return a.Type(syntax.ElementAt(q, pos))
}

func obj(props map[string]datatype.Type, required ...string) datatype.Type {
	return datatype.Object(props, datatype.Never, required...)
}

func TestTypeMatchesTypeAtPath(t *testing.T) {
	t.Parallel()

	root := obj(map[string]datatype.Type{
		"a": obj(map[string]datatype.Type{"b": datatype.Number}, "b"),
		"c": datatype.Array([]datatype.Type{datatype.String}, datatype.Boolean, 1),
		"d": datatype.Union(datatype.String, datatype.Null),
	}, "a", "c")

	queries := []string{"$", "$.a", "$.a.b", "$.c[0]", "$.c[3]", "$.c[-1]", "$.d", "$.missing", "$.a.b.c"}
	for _, text := range queries {
		t.Run(text, func(t *testing.T) {
			t.Parallel()

			q := mustParse(t, text)
			path, ok := q.ToNormalizedPath()
			if !ok {
				t.Fatalf("ToNormalizedPath(%q) failed", text)
			}
			got := New(root, nil).Type(q)
			if want := datatype.AtPath(root, path); !datatype.Equivalent(got, want) {
				t.Fatalf("Type(%q) = %s, want %s", text, got, want)
			}
		})
	}
}

func TestFilterOnFarIndex(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		root datatype.Type
		want datatype.Type
	}{
		{
			name: "open_array",
			root: datatype.Array(nil, datatype.Array(nil, datatype.Number, 0), 0),
			want: datatype.Array(nil, datatype.Number, 0),
		},
		{name: "any", root: datatype.Any, want: datatype.Array(nil, datatype.Any, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			q := mustParse(t, "$[?@[100000000] == 1]")
			if got := New(tt.root, nil).Type(q); !datatype.Equivalent(got, tt.want) {
				t.Fatalf("Type() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestQueryTypes(t *testing.T) {
	t.Parallel()

	circle := obj(map[string]datatype.Type{"kind": datatype.Literal("circle"), "r": datatype.Number}, "kind", "r")
	square := obj(map[string]datatype.Type{"kind": datatype.Literal("square"), "side": datatype.Number}, "kind", "side")
	shapes := datatype.Array(nil, datatype.Union(circle, square), 0)
	optionalA := datatype.Array(nil, obj(map[string]datatype.Type{"a": datatype.Union(datatype.Number, datatype.String)}), 0)
	tuple := datatype.Array([]datatype.Type{datatype.String, datatype.Number, datatype.Boolean}, datatype.Never, 3)
	nested := obj(map[string]datatype.Type{
		"a": obj(map[string]datatype.Type{"b": datatype.Number}, "b"),
		"x": obj(map[string]datatype.Type{"b": datatype.String}),
	}, "a", "x")

	tests := []struct {
		name  string
		root  datatype.Type
		query string
		want  datatype.Type
	}{
		{
			name:  "author_not_null",
			root:  datatype.Of(mustDecode(t, `{"items":[{"author":"X"},{"author":null}]}`)),
			query: "$.items[?@.author != null]",
			want:  obj(map[string]datatype.Type{"author": datatype.Literal("X")}, "author"),
		},
		{
			name:  "existence",
			root:  optionalA,
			query: "$[?@.a]",
			want:  obj(map[string]datatype.Type{"a": datatype.Union(datatype.Number, datatype.String)}, "a"),
		},
		{
			name:  "non_existence",
			root:  optionalA,
			query: "$[?!@.a]",
			want:  obj(nil),
		},
		{
			name:  "equality",
			root:  optionalA,
			query: "$[?@.a == 1]",
			want:  obj(map[string]datatype.Type{"a": datatype.Literal(1.0)}, "a"),
		},
		{
			name:  "equality_reversed",
			root:  optionalA,
			query: "$[?'x' == @.a]",
			want:  obj(map[string]datatype.Type{"a": datatype.Literal("x")}, "a"),
		},
		{
			name:  "or_unions_branches",
			root:  optionalA,
			query: "$[?@.a == 'x' || @.a == 1]",
			want: datatype.Union(
				obj(map[string]datatype.Type{"a": datatype.Literal("x")}, "a"),
				obj(map[string]datatype.Type{"a": datatype.Literal(1.0)}, "a"),
			),
		},
		{
			name:  "discriminated_union",
			root:  shapes,
			query: "$[?@.kind == 'circle' && @.r > 1]",
			want:  circle,
		},
		{
			name:  "not_equal_discriminant",
			root:  shapes,
			query: "$[?@.kind != 'circle']",
			want:  square,
		},
		{
			name:  "negated_and",
			root:  shapes,
			query: "$[?!(@.kind == 'circle' && @.r)]",
			want:  square,
		},
		{
			name:  "comparison_with_missing_member_impossible",
			root:  shapes,
			query: "$[?@.side == 1 && @.r == 1]",
			want:  datatype.Never,
		},
		{
			name:  "descendant",
			root:  nested,
			query: "$..b",
			want:  datatype.Union(datatype.Number, datatype.String),
		},
		{
			name:  "slice_tuple",
			root:  tuple,
			query: "$[1:]",
			want:  datatype.Union(datatype.Number, datatype.Boolean),
		},
		{
			name:  "slice_empty_range",
			root:  datatype.Of(mustDecode(t, `{"items":[1,2,3]}`)),
			query: "$.items[2:1]",
			want:  datatype.Never,
		},
		{
			name:  "slice_zero_step",
			root:  datatype.Array(nil, datatype.Number, 0),
			query: "$[::0]",
			want:  datatype.Never,
		},
		{
			name:  "wildcard_empty_object",
			root:  obj(map[string]datatype.Type{"empty": obj(nil)}, "empty"),
			query: "$.empty.*",
			want:  datatype.Never,
		},
		{
			name:  "any_root",
			root:  datatype.Any,
			query: "$.a[0]",
			want:  datatype.Any,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := New(tt.root, nil).Type(mustParse(t, tt.query))
			if !datatype.Equivalent(got, tt.want) {
				t.Fatalf("Type(%q) = %s, want %s", tt.query, got, tt.want)
			}
		})
	}
}

func mustDecode(t *testing.T, doc string) any {
	t.Helper()

	v, err := jsonvalue.DecodeBytes([]byte(doc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	return v
}

func TestElementTypes(t *testing.T) {
	t.Parallel()

	item := obj(map[string]datatype.Type{"a": datatype.String, "n": datatype.Number}, "a")
	root := obj(map[string]datatype.Type{"items": datatype.Array(nil, item, 0)}, "items")
	text := "$.items[?length(@.a) > 1 && value(@.n) == 2]"
	q := mustParse(t, text)
	a := New(root, nil)

	tests := []struct {
		name string
		at   string
		want datatype.Type
	}{
		{name: "root_identifier", at: "$", want: root},
		{name: "member", at: "items", want: datatype.Array(nil, item, 0)},
		{name: "current_identifier", at: "@", want: item},
		{name: "query_in_filter", at: "a)", want: datatype.String},
		{name: "length_call", at: "length", want: datatype.Union(datatype.Number, datatype.Nothing)},
		{name: "value_call", at: "value", want: datatype.Union(datatype.Number, datatype.Nothing)},
		{name: "literal", at: "2]", want: datatype.Literal(2.0)},
		{name: "comparison", at: ">", want: datatype.Boolean},
		{name: "filter_selector", at: "?", want: item},
	}

	// subtests share the analyzer and run sequentially
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := typeAt(t, a, q, text, tt.at); !datatype.Equivalent(got, tt.want) {
				t.Fatalf("type at %q = %s, want %s", tt.at, got, tt.want)
			}
		})
	}
}

func TestIncomingType(t *testing.T) {
	t.Parallel()

	inner := obj(map[string]datatype.Type{"b": datatype.Number}, "b")
	root := obj(map[string]datatype.Type{"a": inner}, "a")
	q := mustParse(t, "$.a..b")
	a := New(root, nil)

	if got := a.IncomingType(q.Segments[0]); !datatype.Equivalent(got, root) {
		t.Fatalf("IncomingType(.a) = %s, want %s", got, root)
	}
	if got := a.IncomingType(q.Segments[1]); !datatype.Equivalent(got, inner) {
		t.Fatalf("IncomingType(..b) = %s, want %s", got, inner)
	}
	if got := a.Type(q); !datatype.Equivalent(got, datatype.Number) {
		t.Fatalf("Type = %s, want number", got)
	}
}
