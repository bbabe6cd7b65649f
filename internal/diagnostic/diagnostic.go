package diagnostic

import (
	"fmt"
	"slices"
)

// Severity indicates diagnostic impact.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
)

// Range identifies a half-open byte range [Start, End) in the query text.
type Range struct {
	Start int `json:"start"`
	End   int `json:"end"`
}

// Len returns the number of bytes covered by the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Contains reports whether pos lies inside the range. A position equal to End
// is considered inside so that empty ranges can still be hit.
func (r Range) Contains(pos int) bool {
	return pos >= r.Start && pos <= r.End
}

func (r Range) String() string {
	return fmt.Sprintf("%d:%d", r.Start, r.End)
}

// Diagnostic is a single message attached to a range of query text.
type Diagnostic struct {
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Range    Range    `json:"range"`
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s at %s: %s", d.Severity, d.Range, d.Message)
}

// Errorf creates an error diagnostic.
func Errorf(r Range, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityError, Message: fmt.Sprintf(format, args...), Range: r}
}

// Warningf creates a warning diagnostic.
func Warningf(r Range, format string, args ...any) Diagnostic {
	return Diagnostic{Severity: SeverityWarning, Message: fmt.Sprintf(format, args...), Range: r}
}

// HasErrors reports whether any diagnostic has error severity.
func HasErrors(diags []Diagnostic) bool {
	return slices.ContainsFunc(diags, func(d Diagnostic) bool {
		return d.Severity == SeverityError
	})
}

// Sort orders diagnostics by position, keeping the report order of
// diagnostics that start at the same offset.
func Sort(diags []Diagnostic) {
	slices.SortStableFunc(diags, func(a, b Diagnostic) int {
		if a.Range.Start != b.Range.Start {
			return a.Range.Start - b.Range.Start
		}
		return a.Range.End - b.Range.End
	})
}
