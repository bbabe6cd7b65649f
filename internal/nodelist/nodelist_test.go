package nodelist

import (
	"reflect"
	"testing"

	"github.com/jacoelho/jpq/internal/normpath"
)

func TestNodePath(t *testing.T) {
	t.Parallel()

	root := Root(map[string]any{})
	a := root.Child(normpath.Name("a"), []any{"x"})
	x := a.Child(normpath.Index(0), "x")

	if !root.IsRoot() || x.IsRoot() {
		t.Fatal("IsRoot mismatch")
	}
	if got := x.Depth(); got != 2 {
		t.Fatalf("Depth() = %d, want 2", got)
	}
	if got, want := x.Path().String(), "$['a'][0]"; got != want {
		t.Fatalf("Path() = %s, want %s", got, want)
	}
	if got := root.Path(); len(got) != 0 {
		t.Fatalf("root Path() = %v, want empty", got)
	}
}

func TestListKeepsDuplicates(t *testing.T) {
	t.Parallel()

	root := Root([]any{1})
	one := root.Child(normpath.Index(0), 1)
	l := Concat(List{one}, List{one, root})

	if got, want := l.Values(), []any{1, 1, []any{1}}; !reflect.DeepEqual(got, want) {
		t.Fatalf("Values() = %v, want %v", got, want)
	}
	paths := l.Paths()
	if len(paths) != 3 || !paths[0].Equal(paths[1]) || len(paths[2]) != 0 {
		t.Fatalf("Paths() = %v", paths)
	}
	if _, ok := l.Single(); ok {
		t.Fatal("Single() on three nodes should fail")
	}
}
