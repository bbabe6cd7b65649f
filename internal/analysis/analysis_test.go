package analysis

import (
	"reflect"
	"testing"

	"github.com/jacoelho/jpq/internal/datatype"
	"github.com/jacoelho/jpq/internal/diagnostic"
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

// anchors renders each diagnostic as the text it covers and its message.
func anchors(text string, diags []diagnostic.Diagnostic) []string {
	out := make([]string, len(diags))
	for i, d := range diags {
		out[i] = text[d.Range.Start:d.Range.End] + ": " + d.Message
	}
	return out
}

func TestStaticAnalyze(t *testing.T) {
	t.Parallel()

	obj := func(props map[string]datatype.Type, required ...string) datatype.Type {
		return datatype.Object(props, datatype.Never, required...)
	}
	circle := obj(map[string]datatype.Type{"kind": datatype.Literal("circle"), "r": datatype.Number}, "kind", "r")
	shapes := datatype.Array(nil, circle, 0)

	tests := []struct {
		name  string
		root  datatype.Type
		query string
		want  []string
	}{
		{
			name:  "empty_object_wildcard",
			root:  obj(map[string]datatype.Type{"empty": obj(nil)}, "empty"),
			query: "$.empty.*",
			want:  []string{"*: wildcard selects nothing from values of type {}"},
		},
		{
			name:  "absent_member_reported_once",
			root:  obj(map[string]datatype.Type{"a": datatype.Number}, "a"),
			query: "$.b.c[0]",
			want:  []string{"b: selector 'b' selects nothing from values of type {a: number}"},
		},
		{
			name:  "impossible_filter",
			root:  shapes,
			query: "$[?@.kind == 'square']",
			want: []string{
				`?@.kind == 'square': filter selects nothing from values of type array<{kind: "circle", r: number}>`,
			},
		},
		{
			name:  "index_on_object",
			root:  obj(map[string]datatype.Type{"a": datatype.Number}, "a"),
			query: "$[0]",
			want:  []string{"0: index 0 selects nothing from values of type {a: number}"},
		},
		{
			name:  "open_slice_on_string",
			root:  obj(map[string]datatype.Type{"a": datatype.String}, "a"),
			query: "$.a[1:]",
			want:  []string{"1:: slice 1: selects nothing from values of type string"},
		},
		{name: "valid", root: shapes, query: "$[?@.kind == 'circle'].r", want: []string{}},
		{name: "any_root", root: datatype.Any, query: "$.a[*].b[?@.c]", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			diags := NewStatic(nil).Analyze(mustParse(t, tt.query), tt.root)
			for _, d := range diags {
				if d.Severity != diagnostic.SeverityWarning {
					t.Fatalf("severity = %s, want warning", d.Severity)
				}
			}
			if got := anchors(tt.query, diags); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Analyze(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestDynamicAnalyze(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		doc   string
		query string
		want  []string
	}{
		{
			name:  "filter_selects_nothing",
			doc:   `{"items":[{"price":1},{"price":2}]}`,
			query: "$.items[?@.price > 100]",
			want:  []string{"?@.price > 100: filter selects nothing"},
		},
		{
			name:  "downstream_not_reported",
			doc:   `{"x":1}`,
			query: "$.a.b",
			want:  []string{"a: selector 'a' selects nothing"},
		},
		{
			name:  "condition_never_true",
			doc:   `[{"a":1,"b":1},{"a":2}]`,
			query: "$[?@.a == 1 || @.b == 2]",
			want: []string{
				"@.b == 2: condition @.b == 2 is never true",
				"b: selector 'b' selects nothing",
			},
		},
		{
			name:  "handler_warning_once",
			doc:   `["a","b"]`,
			query: "$[?match(@, '[')]",
			want: []string{
				"?match(@, '['): filter selects nothing",
				`'[': "[" is not a valid I-Regexp pattern`,
			},
		},
		{
			name:  "no_warnings",
			doc:   `{"a":[1,2]}`,
			query: "$.a[?@ > 1]",
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			doc, err := jsonvalue.DecodeBytes([]byte(tt.doc))
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			res := NewDynamic(nil).Analyze(mustParse(t, tt.query), doc)
			if got := anchors(tt.query, res.Diagnostics); !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("Analyze(%q) = %q, want %q", tt.query, got, tt.want)
			}
		})
	}
}

func TestDynamicAnalyzeReturnsNodes(t *testing.T) {
	t.Parallel()

	doc, err := jsonvalue.DecodeBytes([]byte(`{"items":[{"author":"X"},{"author":null}]}`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	res := NewDynamic(nil).Analyze(mustParse(t, "$.items[?@.author != null]"), doc)
	if len(res.Nodes) != 1 || res.Nodes[0].Path().String() != "$['items'][0]" {
		t.Fatalf("Nodes = %v", res.Nodes.Paths())
	}
	if len(res.Diagnostics) != 0 {
		t.Fatalf("Diagnostics = %v", res.Diagnostics)
	}
}
