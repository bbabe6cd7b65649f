// Package results accumulates per-input statistics of a run.
package results

import (
	"log/slog"
	"time"
)

type InputResult struct {
	Name      string
	Documents int
	Matches   int
	Duration  time.Duration
	Error     error
}

type InputResultBuilder struct {
	name      string
	documents int
	matches   int
	start     time.Time
	err       error
}

// NewInputResultBuilder starts timing an input.
func NewInputResultBuilder(name string) *InputResultBuilder {
	return &InputResultBuilder{name: name, start: time.Now()}
}

// AddDocument records one document and the number of nodes it matched.
func (b *InputResultBuilder) AddDocument(matches int) *InputResultBuilder {
	b.documents++
	b.matches += matches
	return b
}

func (b *InputResultBuilder) WithError(err error) *InputResultBuilder {
	b.err = err
	return b
}

func (b *InputResultBuilder) Build() InputResult {
	return InputResult{
		Name:      b.name,
		Documents: b.documents,
		Matches:   b.matches,
		Duration:  time.Since(b.start),
		Error:     b.err,
	}
}

type Summary struct {
	InputResults []InputResult
	Documents    int
	Matches      int
	FailedInputs int
}

func NewSummary(expectedInputs int) *Summary {
	return &Summary{
		InputResults: make([]InputResult, 0, expectedInputs),
	}
}

func (s *Summary) Add(builder *InputResultBuilder) InputResult {
	result := builder.Build()

	s.InputResults = append(s.InputResults, result)
	s.Documents += result.Documents
	s.Matches += result.Matches
	if result.Error != nil {
		s.FailedInputs++
	}
	return result
}

func (s *Summary) Duration() time.Duration {
	var total time.Duration
	for _, r := range s.InputResults {
		total += r.Duration
	}
	return total
}

// DocumentsPerSecond is 0 for runs too short to measure.
func (s *Summary) DocumentsPerSecond() float64 {
	d := s.Duration()
	if d == 0 {
		return 0
	}
	return float64(s.Documents) / d.Seconds()
}

// LogValue lets a summary be logged as a single attribute group.
func (s *Summary) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("inputs", len(s.InputResults)),
		slog.Int("failed", s.FailedInputs),
		slog.Int("documents", s.Documents),
		slog.Int("matches", s.Matches),
		slog.Duration("duration", s.Duration()),
	)
}

func (r InputResult) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.String("name", r.Name),
		slog.Int("documents", r.Documents),
		slog.Int("matches", r.Matches),
		slog.Duration("duration", r.Duration),
	}
	if r.Error != nil {
		attrs = append(attrs, slog.String("error", r.Error.Error()))
	}
	return slog.GroupValue(attrs...)
}
