package syntax

import (
	"reflect"
	"strings"
	"testing"

	"github.com/jacoelho/jpq/internal/diagnostic"
)

func TestParseValidQueries(t *testing.T) {
	t.Parallel()

	queries := []string{
		"$",
		"$.a",
		"$.a.b.c",
		"$['a']",
		`$["a\"b"]`,
		"$[0]",
		"$[-1]",
		"$[1:3]",
		"$[::2]",
		"$[:]",
		"$[-3:-1:1]",
		"$[*]",
		"$.*",
		"$..a",
		"$..*",
		"$..[0, 'a']",
		"$['a', 1, *, 1:2]",
		"$[?@.a]",
		"$[?@.a == 1]",
		"$[?@.a != null && @.b < 2 || !@.c]",
		"$[?(@.a >= 1.5e3)]",
		"$[?length(@.a) > 2]",
		"$[?match(@.b, 'a.*')]",
		"$[?search(@.b, \"x\") && value(@..c) == 'x']",
		"$[?count(@.*) == 0]",
		"$[?@.a == $.b]",
		"$[?@ == true]",
		"$ [0] .a",
		"$.true.null",
		"$.été",
	}

	for _, q := range queries {
		t.Run(q, func(t *testing.T) {
			t.Parallel()

			tree, diags := Parse(q)
			if len(diags) != 0 {
				t.Fatalf("Parse(%q) diagnostics = %v, want none", q, diags)
			}
			if got := Text(tree); got != q {
				t.Fatalf("Text() = %q, want %q", got, q)
			}
		})
	}
}

func TestParseInvalidQueries(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		query   string
		message string
	}{
		{name: "empty", query: "", message: "query must start with '$'"},
		{name: "relative_root", query: "@.a", message: "'@' is only allowed inside filters"},
		{name: "leading_blank", query: " $", message: "must not start with blank space"},
		{name: "trailing_blank", query: "$.a ", message: "must not end with blank space"},
		{name: "blank_after_dot", query: "$. a", message: "blank space is not allowed after '.'"},
		{name: "digit_shorthand", query: "$.1", message: "must not start with a digit"},
		{name: "unclosed_bracket", query: "$['a'", message: "expected ']'"},
		{name: "empty_brackets", query: "$[]", message: "expected selector"},
		{name: "unquoted_name", query: "$[a]", message: "must be quoted"},
		{name: "float_index", query: "$[1.0]", message: "index must be an integer"},
		{name: "negative_zero", query: "$[-0]", message: "negative zero"},
		{name: "leading_zero", query: "$[01]", message: "leading zeros"},
		{name: "single_equal", query: "$[?@.a = 1]", message: "did you mean '=='"},
		{name: "chained_comparison", query: "$[?@.a == 1 == 2]", message: "cannot be chained"},
		{name: "bare_word", query: "$[?@.a == foo]", message: "string literals must be quoted"},
		{name: "unclosed_paren", query: "$[?(@.a]", message: "expected ')'"},
		{name: "blank_before_call", query: "$[?length (@.a)]", message: "after a function name"},
		{name: "bad_function_name", query: "$[?Length(@.a)]", message: "invalid function name"},
		{name: "unterminated_string", query: "$['abc", message: "unterminated"},
		{name: "garbage_after_query", query: "$.a)", message: "unexpected ')'"},
		{name: "missing_comma", query: "$[1 2]", message: "expected ',' or ']'"},
		{name: "invalid_escape", query: `$['\q']`, message: "escape"},
		{name: "control_character", query: "$['\u0001']", message: "invalid character"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tree, diags := Parse(tt.query)
			if !diagnostic.HasErrors(diags) {
				t.Fatalf("Parse(%q) reported no errors", tt.query)
			}
			found := false
			for _, d := range diags {
				if strings.Contains(d.Message, tt.message) {
					found = true
				}
				if d.Range.Start < 0 || d.Range.End > len(tt.query) || d.Range.Start > d.Range.End {
					t.Fatalf("diagnostic %v has range outside query of length %d", d, len(tt.query))
				}
			}
			if !found {
				t.Fatalf("Parse(%q) diagnostics = %v, want one containing %q", tt.query, diags, tt.message)
			}
			if got := Text(tree); got != tt.query {
				t.Fatalf("Text() = %q, want %q", got, tt.query)
			}
		})
	}
}

func TestParseLosslessOnGarbage(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"$$$",
		"$[[[",
		"$[?]]]",
		"$[?(((",
		"$.a..",
		"x.y",
		"$[?@.a &| @.b]",
		"$[?length(@.a,,)]",
		"$[1:2:3:4]",
		"$['a' 'b']",
		"  $ . ['x'] ? ",
		"$[?!!]",
		"$\xff",
	}

	for _, in := range inputs {
		tree, _ := Parse(in)
		if got := Text(tree); got != in {
			t.Fatalf("Text(Parse(%q)) = %q", in, got)
		}
	}
}

func TestParseTreeShape(t *testing.T) {
	t.Parallel()

	tree, diags := Parse("$.a[0, 'b']..[?@.c > 1]")
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics %v", diags)
	}
	if len(tree.Segments) != 3 {
		t.Fatalf("got %d segments, want 3", len(tree.Segments))
	}

	var kinds []Kind
	for _, seg := range tree.Segments {
		for _, sel := range seg.Selectors {
			kinds = append(kinds, sel.Kind())
		}
	}
	want := []Kind{KindNameSelector, KindIndexSelector, KindNameSelector, KindFilterSelector}
	if !reflect.DeepEqual(kinds, want) {
		t.Fatalf("selector kinds = %v, want %v", kinds, want)
	}
	if !tree.Segments[2].Descendant {
		t.Fatal("third segment should be descendant")
	}

	filter := tree.Segments[2].Selectors[0].(*FilterSelector)
	cmp, ok := filter.Expression.(*ComparisonExpression)
	if !ok {
		t.Fatalf("filter expression is %T, want *ComparisonExpression", filter.Expression)
	}
	if cmp.Operator.TokenKind != TokenGreater {
		t.Fatalf("operator = %v, want '>'", cmp.Operator.TokenKind)
	}
	if cmp.Parent() != filter || filter.Parent() != tree.Segments[2] || tree.Segments[2].Parent() != tree {
		t.Fatal("parent links are broken")
	}
}

func TestParsePrecedence(t *testing.T) {
	t.Parallel()

	tree, _ := Parse("$[?@.a || @.b && !@.c]")
	e := tree.Segments[0].Selectors[0].(*FilterSelector).Expression
	or, ok := e.(*OrExpression)
	if !ok {
		t.Fatalf("top expression is %T, want *OrExpression", e)
	}
	and, ok := or.Right.(*AndExpression)
	if !ok {
		t.Fatalf("right of || is %T, want *AndExpression", or.Right)
	}
	if _, ok := and.Right.(*NotExpression); !ok {
		t.Fatalf("right of && is %T, want *NotExpression", and.Right)
	}
}

func TestSliceBoundsAndValues(t *testing.T) {
	t.Parallel()

	tree, _ := Parse("$[1:-2:3, :, 'x\\u0041', 7]")
	sel := tree.Segments[0].Selectors

	start, end, step := sel[0].(*SliceSelector).Bounds()
	if *start != 1 || *end != -2 || *step != 3 {
		t.Fatalf("Bounds() = %d %d %d, want 1 -2 3", *start, *end, *step)
	}
	start, end, step = sel[1].(*SliceSelector).Bounds()
	if start != nil || end != nil || step != nil {
		t.Fatal("empty slice should have nil bounds")
	}
	if got := sel[2].(*NameSelector).Value(); got != "xA" {
		t.Fatalf("name = %q, want %q", got, "xA")
	}
	if got, _ := sel[3].(*IndexSelector).Value(); got != 7 {
		t.Fatalf("index = %d, want 7", got)
	}
}

func TestDiagnosticsAreSorted(t *testing.T) {
	t.Parallel()

	_, diags := Parse("$[a][b]")
	if len(diags) != 2 {
		t.Fatalf("got %d diagnostics, want 2: %v", len(diags), diags)
	}
	if diags[0].Range.Start > diags[1].Range.Start {
		t.Fatalf("diagnostics not sorted: %v", diags)
	}
}
