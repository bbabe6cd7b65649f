package iregexp

import (
	"errors"
	"reflect"
	"testing"
)

func TestCheck(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		valid   bool
		dots    []int
	}{
		{name: "empty", pattern: "", valid: true},
		{name: "literal", pattern: "abc", valid: true},
		{name: "alternation", pattern: "a|b|", valid: true},
		{name: "group_and_quantifiers", pattern: "(ab)*c+d?", valid: true},
		{name: "range_quantifier", pattern: "a{2}b{1,}c{1,3}", valid: true},
		{name: "dots", pattern: "a.b.", valid: true, dots: []int{1, 3}},
		{name: "dot_in_class", pattern: "[.]", valid: true},
		{name: "escaped_dot", pattern: `\.`, valid: true},
		{name: "class_range", pattern: "[a-z0-9_]", valid: true},
		{name: "negated_class", pattern: "[^a-c]", valid: true},
		{name: "class_leading_and_trailing_dash", pattern: "[-a-]", valid: true},
		{name: "category", pattern: `\p{Lu}\P{N}`, valid: true},
		{name: "category_in_class", pattern: `[\p{L}\d]`, valid: false},
		{name: "perl_class", pattern: `\d`, valid: false},
		{name: "backreference", pattern: `(a)\1`, valid: false},
		{name: "unbalanced_group", pattern: "(a", valid: false},
		{name: "stray_close", pattern: "a)", valid: false},
		{name: "double_quantifier", pattern: "a**", valid: false},
		{name: "lazy_quantifier", pattern: "a+?", valid: false},
		{name: "open_range", pattern: "a{,2}", valid: false},
		{name: "unterminated_class", pattern: "[ab", valid: false},
		{name: "empty_class", pattern: "[]", valid: false},
		{name: "unknown_category", pattern: `\p{Xx}`, valid: false},
		{name: "non_capturing_group", pattern: "(?:a)", valid: false},
		{name: "unicode", pattern: "été.", valid: true, dots: []int{5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			res, ok := Check(tt.pattern)
			if ok != tt.valid {
				t.Fatalf("Check(%q) valid = %v, want %v", tt.pattern, ok, tt.valid)
			}
			if ok && !reflect.DeepEqual(res.Dots, tt.dots) {
				t.Fatalf("Check(%q) dots = %v, want %v", tt.pattern, res.Dots, tt.dots)
			}
		})
	}
}

func TestTranslate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		pattern string
		full    bool
		want    string
	}{
		{pattern: "a.c", full: true, want: `\A(?:a[^\n\r]c)\z`},
		{pattern: "a.c", full: false, want: `a[^\n\r]c`},
		{pattern: "[.]^$", full: false, want: `[.]\^\$`},
	}

	for _, tt := range tests {
		got, err := Translate(tt.pattern, tt.full)
		if err != nil {
			t.Fatalf("Translate(%q) error = %v", tt.pattern, err)
		}
		if got != tt.want {
			t.Fatalf("Translate(%q, %v) = %q, want %q", tt.pattern, tt.full, got, tt.want)
		}
	}

	if _, err := Translate("(", true); !errors.Is(err, ErrInvalid) {
		t.Fatalf("Translate invalid pattern error = %v, want ErrInvalid", err)
	}
}

func TestCompileSemantics(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern string
		full    bool
		input   string
		want    bool
	}{
		{name: "match_is_anchored", pattern: "b", full: true, input: "abc", want: false},
		{name: "search_is_not", pattern: "b", full: false, input: "abc", want: true},
		{name: "alternation_anchored_as_whole", pattern: "a|bc", full: true, input: "abc", want: false},
		{name: "dot_rejects_newline", pattern: "a.c", full: true, input: "a\nc", want: false},
		{name: "dot_rejects_carriage_return", pattern: "a.c", full: true, input: "a\rc", want: false},
		{name: "dot_matches_other", pattern: "a.c", full: true, input: "a-c", want: true},
		{name: "caret_is_literal", pattern: "a^b", full: true, input: "a^b", want: true},
		{name: "category", pattern: `\p{Lu}+`, full: true, input: "ÉTÉ", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			re, err := Compile(tt.pattern, tt.full)
			if err != nil {
				t.Fatalf("Compile(%q) error = %v", tt.pattern, err)
			}
			if got := re.MatchString(tt.input); got != tt.want {
				t.Fatalf("%q matching %q = %v, want %v", tt.pattern, tt.input, got, tt.want)
			}
		})
	}
}
