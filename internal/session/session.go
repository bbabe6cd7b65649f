// Package session keeps the state of queries being edited interactively.
// A Session owns the parse result of one query text and the analyzer caches
// built over it; the Manager hands sessions out by identifier.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/jacoelho/jpq/internal/analysis"
	"github.com/jacoelho/jpq/internal/check"
	"github.com/jacoelho/jpq/internal/datatype"
	"github.com/jacoelho/jpq/internal/diagnostic"
	"github.com/jacoelho/jpq/internal/eval"
	"github.com/jacoelho/jpq/internal/functions"
	"github.com/jacoelho/jpq/internal/nodelist"
	"github.com/jacoelho/jpq/internal/syntax"
	"github.com/jacoelho/jpq/internal/typeanalysis"
)

var ErrNotFound = errors.New("session not found")

// Session is not safe for concurrent use.
type Session struct {
	id        uuid.UUID
	version   int
	text      string
	query     *syntax.Query
	diags     []diagnostic.Diagnostic
	functions *functions.Registry
	logger    *slog.Logger

	root     datatype.Type
	analyzer *typeanalysis.Analyzer
}

func newSession(id uuid.UUID, text string, registry *functions.Registry, logger *slog.Logger) *Session {
	s := &Session{id: id, functions: registry, logger: logger, root: datatype.Any}
	s.setText(text)
	return s
}

func (s *Session) setText(text string) {
	q, diags := syntax.Parse(text)
	diags = append(diags, check.Check(q, s.functions)...)
	diagnostic.Sort(diags)

	s.version++
	s.text = text
	s.query = q
	s.diags = diags
	s.analyzer = nil
}

func (s *Session) ID() uuid.UUID { return s.id }

// Version starts at 1 and grows with every text change.
func (s *Session) Version() int { return s.version }

func (s *Session) Text() string { return s.text }

func (s *Session) Query() *syntax.Query { return s.query }

// Diagnostics returns the parser and checker diagnostics, sorted by
// position.
func (s *Session) Diagnostics() []diagnostic.Diagnostic {
	return slices.Clone(s.diags)
}

// Valid reports whether the text compiled without errors.
func (s *Session) Valid() bool {
	return !diagnostic.HasErrors(s.diags)
}

// SetRootType changes the type the query is analyzed against.
func (s *Session) SetRootType(t datatype.Type) {
	s.root = t
	s.analyzer = nil
}

func (s *Session) RootType() datatype.Type { return s.root }

func (s *Session) typeAnalyzer() *typeanalysis.Analyzer {
	if s.analyzer == nil {
		s.analyzer = typeanalysis.New(s.root, s.functions)
	}
	return s.analyzer
}

// TypeAt returns the innermost element covering pos and its data type. ok
// is false when pos is outside the query.
func (s *Session) TypeAt(pos int) (e syntax.Element, t datatype.Type, ok bool) {
	e = syntax.ElementAt(s.query, pos)
	if e == nil {
		return nil, nil, false
	}
	return e, s.typeAnalyzer().Type(e), true
}

// Select evaluates the query. Queries with errors select nothing.
func (s *Session) Select(argument any) nodelist.List {
	if !s.Valid() {
		return nil
	}
	return eval.Select(s.query, argument, eval.Options{Functions: s.functions, Logger: s.logger})
}

// Analyze runs the static analyzer against the root type.
func (s *Session) Analyze() []diagnostic.Diagnostic {
	if !s.Valid() {
		return nil
	}
	a := analysis.NewStatic(s.functions)
	a.Logger = s.logger
	return a.Analyze(s.query, s.root)
}

// Run evaluates the query under the dynamic analyzer.
func (s *Session) Run(argument any) analysis.Result {
	if !s.Valid() {
		return analysis.Result{}
	}
	a := analysis.NewDynamic(s.functions)
	a.Logger = s.logger
	return a.Analyze(s.query, argument)
}

// Manager is safe for concurrent use. The sessions it returns are not.
type Manager struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*Session

	functions *functions.Registry
	logger    *slog.Logger
}

// NewManager creates a manager. A nil registry means the built-ins.
func NewManager(registry *functions.Registry, logger *slog.Logger) *Manager {
	if registry == nil {
		registry = functions.Default()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Manager{
		sessions:  make(map[uuid.UUID]*Session),
		functions: registry,
		logger:    logger,
	}
}

// Open parses text into a new session.
func (m *Manager) Open(text string) *Session {
	id := uuid.New()
	s := newSession(id, text, m.functions, m.logger.With(slog.String("session", id.String())))

	m.mu.Lock()
	m.sessions[id] = s
	m.mu.Unlock()

	m.logger.Debug("session opened", slog.String("session", id.String()))
	return s
}

func (m *Manager) Get(id uuid.UUID) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Update replaces the text of a session, discarding its caches.
func (m *Manager) Update(id uuid.UUID, text string) (*Session, error) {
	s, ok := m.Get(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	s.setText(text)
	return s, nil
}

func (m *Manager) Close(id uuid.UUID) bool {
	m.mu.Lock()
	_, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()

	if ok {
		m.logger.Debug("session closed", slog.String("session", id.String()))
	}
	return ok
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}
