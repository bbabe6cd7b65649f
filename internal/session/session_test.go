package session

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/jacoelho/jpq/internal/datatype"
	"github.com/jacoelho/jpq/internal/jsonvalue"
)

func mustDecode(t *testing.T, text string) any {
	t.Helper()
	v, err := jsonvalue.DecodeBytes([]byte(text))
	if err != nil {
		t.Fatalf("DecodeBytes(%q) error: %v", text, err)
	}
	return v
}

func TestSessionLifecycle(t *testing.T) {
	t.Parallel()

	m := NewManager(nil, nil)
	s := m.Open("$.a")

	if s.Version() != 1 || !s.Valid() || len(s.Diagnostics()) != 0 {
		t.Fatalf("Open() = version %d valid %v diagnostics %v", s.Version(), s.Valid(), s.Diagnostics())
	}
	if got, ok := m.Get(s.ID()); !ok || got != s {
		t.Fatalf("Get(%s) = %v, %v", s.ID(), got, ok)
	}

	if _, err := m.Update(s.ID(), "$[?foo(@)]"); err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if s.Version() != 2 || s.Valid() || s.Text() != "$[?foo(@)]" {
		t.Fatalf("after Update: version %d valid %v text %q", s.Version(), s.Valid(), s.Text())
	}
	if got := s.Select(mustDecode(t, `[1]`)); got != nil {
		t.Fatalf("Select() on invalid query = %v, want nil", got)
	}

	if !m.Close(s.ID()) {
		t.Fatal("Close() = false, want true")
	}
	if m.Close(s.ID()) {
		t.Fatal("second Close() = true, want false")
	}
	if _, err := m.Update(s.ID(), "$"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update() after Close error = %v, want ErrNotFound", err)
	}
	if _, err := m.Update(uuid.New(), "$"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Update(unknown) error = %v, want ErrNotFound", err)
	}
}

func TestSessionTypeAt(t *testing.T) {
	t.Parallel()

	s := NewManager(nil, nil).Open("$.a.b")
	s.SetRootType(datatype.Widen(datatype.Of(mustDecode(t, `{"a": {"b": "x"}, "c": 1}`))))

	tests := []struct {
		name string
		pos  int
		want string
	}{
		{"root", 0, `{a: {b: string}, c: number}`},
		{"first_member", 2, `{b: string}`},
		{"second_member", 4, `string`},
	}
	for _, tt := range tests {
		_, typ, ok := s.TypeAt(tt.pos)
		if !ok {
			t.Fatalf("%s: TypeAt(%d) not found", tt.name, tt.pos)
		}
		if got := datatype.Format(typ); got != tt.want {
			t.Fatalf("%s: TypeAt(%d) = %s, want %s", tt.name, tt.pos, got, tt.want)
		}
	}

	if _, _, ok := s.TypeAt(99); ok {
		t.Fatal("TypeAt(99) found an element outside the query")
	}
}

func TestSessionAnalysis(t *testing.T) {
	t.Parallel()

	doc := mustDecode(t, `{"a": 1}`)
	s := NewManager(nil, nil).Open("$.c")
	s.SetRootType(datatype.Of(doc))

	if got := s.Analyze(); len(got) != 1 {
		t.Fatalf("Analyze() = %v, want one warning", got)
	}

	res := s.Run(doc)
	if len(res.Nodes) != 0 || len(res.Diagnostics) != 1 {
		t.Fatalf("Run() = %v, want no nodes and one warning", res)
	}

	s.setText("$.a")
	if got := s.Select(doc).Values(); len(got) != 1 || !jsonvalue.Equal(got[0], mustDecode(t, "1")) {
		t.Fatalf("Select() = %v, want [1]", got)
	}
}

func TestManagerConcurrentOpen(t *testing.T) {
	t.Parallel()

	m := NewManager(nil, nil)

	var wg sync.WaitGroup
	ids := make([]uuid.UUID, 32)
	for i := range ids {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids[i] = m.Open("$..x").ID()
		}()
	}
	wg.Wait()

	if got := m.Len(); got != len(ids) {
		t.Fatalf("Len() = %d, want %d", got, len(ids))
	}
	for _, id := range ids {
		if _, ok := m.Get(id); !ok {
			t.Fatalf("Get(%s) missing", id)
		}
	}
}
