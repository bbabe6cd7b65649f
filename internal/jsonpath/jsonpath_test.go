package jsonpath

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/jacoelho/jpq/internal/diagnostic"
	"github.com/jacoelho/jpq/internal/functions"
	"github.com/jacoelho/jpq/internal/jsonvalue"
)

const exampleJSON = `{
  "store": {
    "book": [
      { "category": "reference", "author": "Nigel Rees", "title": "Sayings of the Century", "price": 8.95 },
      { "category": "fiction", "author": "Evelyn Waugh", "title": "Sword of Honour", "price": 12.99 },
      { "category": "fiction", "author": "Herman Melville", "title": "Moby Dick", "isbn": "0-553-21311-3", "price": 8.99 },
      { "category": "fiction", "author": "J. R. R. Tolkien", "title": "The Lord of the Rings", "isbn": "0-395-19395-8", "price": 22.99 }
    ],
    "bicycle": { "color": "red", "price": 399 }
  }
}`

func mustDecode(t *testing.T, text string) any {
	t.Helper()
	v, err := jsonvalue.DecodeBytes([]byte(text))
	if err != nil {
		t.Fatalf("DecodeBytes(%q) error: %v", text, err)
	}
	return v
}

func TestBasicOperations(t *testing.T) {
	t.Parallel()

	doc := mustDecode(t, exampleJSON)

	tests := []struct {
		name  string
		query string
		paths []string
		want  string
	}{
		{
			name:  "wildcard_author_selection",
			query: "$.store.book[*].author",
			paths: []string{
				"$['store']['book'][0]['author']",
				"$['store']['book'][1]['author']",
				"$['store']['book'][2]['author']",
				"$['store']['book'][3]['author']",
			},
			want: `["Nigel Rees", "Evelyn Waugh", "Herman Melville", "J. R. R. Tolkien"]`,
		},
		{
			name:  "recursive_price_search",
			query: "$.store..price",
			paths: []string{
				"$['store']['book'][0]['price']",
				"$['store']['book'][1]['price']",
				"$['store']['book'][2]['price']",
				"$['store']['book'][3]['price']",
				"$['store']['bicycle']['price']",
			},
			want: `[8.95, 12.99, 8.99, 22.99, 399]`,
		},
		{
			name:  "last_book",
			query: "$..book[-1].title",
			paths: []string{"$['store']['book'][3]['title']"},
			want:  `["The Lord of the Rings"]`,
		},
		{
			name:  "books_with_isbn",
			query: "$..book[?@.isbn].title",
			paths: []string{"$['store']['book'][2]['title']", "$['store']['book'][3]['title']"},
			want:  `["Moby Dick", "The Lord of the Rings"]`,
		},
		{
			name:  "cheap_books",
			query: "$.store.book[?@.price < 10].author",
			paths: []string{"$['store']['book'][0]['author']", "$['store']['book'][2]['author']"},
			want:  `["Nigel Rees", "Herman Melville"]`,
		},
		{
			name:  "first_two_books",
			query: "$.store.book[:2].category",
			paths: []string{"$['store']['book'][0]['category']", "$['store']['book'][1]['category']"},
			want:  `["reference", "fiction"]`,
		},
		{
			name:  "regex_match",
			query: `$.store.book[?match(@.author, ".* Rees")].price`,
			paths: []string{"$['store']['book'][0]['price']"},
			want:  `[8.95]`,
		},
		{
			name:  "no_match",
			query: "$.store.car",
			want:  `[]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := MustCompile(tt.query).Select(doc)

			var paths []string
			for _, p := range got.Paths() {
				paths = append(paths, p.String())
			}
			if !reflect.DeepEqual(paths, tt.paths) {
				t.Fatalf("paths = %q, want %q", paths, tt.paths)
			}
			if want := mustDecode(t, tt.want); !jsonvalue.Equal(got.Values(), want) {
				t.Fatalf("values = %v, want %s", got.Values(), tt.want)
			}
		})
	}
}

func TestInvalidSyntax(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
	}{
		{"empty_query", ""},
		{"missing_dollar_prefix", "store.book"},
		{"invalid_start_character", "!store"},
		{"unterminated_bracket", "$.store["},
		{"path_ending_with_dot", "$.store."},
		{"path_ending_with_double_dot", "$.store.."},
		{"unexpected_character_in_path", "$.store@"},
		{"malformed_union_expression", "$.store['a',]"},
		{"single_equals", "$[?@.a = 1]"},
		{"leading_zero", "$[01]"},
		{"unterminated_string", "$['a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Compile(tt.query)
			if !errors.Is(err, ErrSyntax) {
				t.Fatalf("Compile(%q) error = %v, want ErrSyntax", tt.query, err)
			}
		})
	}
}

func TestInvalidQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
	}{
		{"unknown_function", "$[?foo(@)]"},
		{"non_singular_comparison", "$[?@.* == 1]"},
		{"literal_as_test", "$[?1]"},
		{"wrong_arity", "$[?length(@.a, @.b) == 1]"},
		{"index_out_of_range", "$[9007199254740992]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Compile(tt.query)
			if !errors.Is(err, ErrInvalidQuery) {
				t.Fatalf("Compile(%q) error = %v, want ErrInvalidQuery", tt.query, err)
			}
			if errors.Is(err, ErrSyntax) {
				t.Fatalf("Compile(%q) error = %v, must not be ErrSyntax", tt.query, err)
			}
		})
	}
}

func TestErrorListsDiagnostics(t *testing.T) {
	t.Parallel()

	_, err := Compile("$[?foo(@) && bar(@)]")

	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("Compile() error = %T, want *Error", err)
	}
	if got := len(perr.Diagnostics); got != 2 {
		t.Fatalf("len(Diagnostics) = %d, want 2: %v", got, perr.Diagnostics)
	}
	for _, fn := range []string{"foo", "bar"} {
		if !strings.Contains(err.Error(), fn) {
			t.Fatalf("Error() = %q, want mention of %q", err.Error(), fn)
		}
	}
}

func TestMustCompilePanics(t *testing.T) {
	t.Parallel()

	defer func() {
		if recover() == nil {
			t.Fatal("MustCompile() did not panic")
		}
	}()
	MustCompile("$[")
}

func TestStream(t *testing.T) {
	t.Parallel()

	input := `{"a": 1}
{"a": [2, 3]}
{"b": 4}
{"a": 5}`

	var got []Result
	for r, err := range MustCompile("$.a").Stream(context.Background(), strings.NewReader(input)) {
		if err != nil {
			t.Fatalf("Stream() error: %v", err)
		}
		got = append(got, r)
	}

	want := []Result{
		{Document: 0, Path: "$['a']", Value: "1"},
		{Document: 1, Path: "$['a']", Value: "[2,3]"},
		{Document: 3, Path: "$['a']", Value: "5"},
	}
	if len(got) != len(want) {
		t.Fatalf("Stream() = %v, want %v", got, want)
	}
	for i := range got {
		encoded, err := jsonvalue.Encode(got[i].Value)
		if err != nil {
			t.Fatalf("Encode() error: %v", err)
		}
		got[i].Value = string(encoded)
		if got[i] != want[i] {
			t.Fatalf("result %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestStreamStopsEarly(t *testing.T) {
	t.Parallel()

	count := 0
	for _, err := range MustCompile("$[*]").Stream(context.Background(), strings.NewReader(`[1, 2, 3] [4]`)) {
		if err != nil {
			t.Fatalf("Stream() error: %v", err)
		}
		count++
		if count == 2 {
			break
		}
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2", count)
	}
}

func TestMalformedJSON(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
	}{
		{"missing_value", `{"invalid": }`},
		{"unclosed_string", `{"unclosed": "string`},
		{"trailing_comma", `{"trailing": "comma",}`},
		{"bare_key", `{broken}`},
		{"unclosed_array", `[1, 2`},
		{"bad_second_document", `{"test": 1} {"test": }`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got error
			for _, err := range MustCompile("$.test").Stream(context.Background(), strings.NewReader(tt.input)) {
				if err != nil {
					got = err
				}
			}
			if !errors.Is(got, ErrMalformed) {
				t.Fatalf("Stream(%q) error = %v, want ErrMalformed", tt.input, got)
			}
		})
	}
}

func TestContextCancellation(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var got error
	for _, err := range MustCompile("$.store.book[*]").Stream(ctx, strings.NewReader(exampleJSON)) {
		if err != nil {
			got = err
		}
	}
	if !errors.Is(got, context.Canceled) {
		t.Fatalf("Stream() error = %v, want context.Canceled", got)
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		expr    string
		wantErr bool
	}{
		{"root_path", "$", false},
		{"simple_property", "$.name", false},
		{"array_index", "$.items[0]", false},
		{"wildcard", "$.items[*]", false},
		{"descendant_operator", "$..name", false},
		{"slice_selector", "$.items[1:3]", false},
		{"zero_step_slice", "$.items[0:5:0]", false},
		{"existence_filter", "$.items[?@]", false},
		{"root_in_filter", "$.store.book[?@.price < $.expensive]", false},
		{"nested_function", "$[?count(@.*) == length(@.tags)]", false},
		{"blank_space", "$ [ 'a' , 1 ] .b", false},
		{"unicode_name", "$.日本", false},
		{"empty", "", true},
		{"trailing_blank", "$.a ", true},
		{"dot_bracket", "$.['a']", true},
		{"function_result_unused", "$[?length(@)]", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := Validate(tt.expr)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
			}
		})
	}
}

func TestCompileOptions(t *testing.T) {
	t.Parallel()

	registry := functions.Default()
	err := registry.Register(&functions.Definition{
		Name:   "upper",
		Params: []functions.FilterType{functions.ValueType},
		Result: functions.ValueType,
		Handler: func(_ *functions.Context, args []any) any {
			s, ok := args[0].(string)
			if !ok {
				return jsonvalue.Nothing
			}
			return strings.ToUpper(s)
		},
	})
	if err != nil {
		t.Fatalf("Register() error: %v", err)
	}

	if _, err := Compile(`$[?upper(@) == "A"]`); !errors.Is(err, ErrInvalidQuery) {
		t.Fatalf("Compile() without registry error = %v, want ErrInvalidQuery", err)
	}

	p, err := Compile(`$[?upper(@) == "A"]`, WithFunctions(registry))
	if err != nil {
		t.Fatalf("Compile() error: %v", err)
	}
	got := p.Select(mustDecode(t, `["a", "b", 1]`)).Values()
	if want := []any{"a"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Select() = %v, want %v", got, want)
	}
}

func TestReportOption(t *testing.T) {
	t.Parallel()

	var got []diagnostic.Diagnostic
	p := MustCompile(`$[?match(@, "[")]`, WithReport(func(d diagnostic.Diagnostic) {
		got = append(got, d)
	}))
	if n := p.Select(mustDecode(t, `["x"]`)); len(n) != 0 {
		t.Fatalf("Select() = %v, want empty", n)
	}
	if len(got) == 0 {
		t.Fatal("expected a reported warning for the invalid pattern")
	}
}
