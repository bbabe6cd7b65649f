package stdout

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/jacoelho/jpq/internal/diagnostic"
	"github.com/jacoelho/jpq/internal/document"
	"github.com/jacoelho/jpq/internal/formatter"
	"github.com/jacoelho/jpq/internal/jsonvalue"
	"github.com/jacoelho/jpq/internal/nodelist"
)

// Selects what Nodes prints for each node.
type Mode int

const (
	PathsAndValues Mode = iota
	PathsOnly
	ValuesOnly
)

// Options configure a Formatter.
type Options struct {
	Mode Mode
	YAML bool // encode values as YAML documents instead of JSON lines
}

// Formatter implements stdout-based output formatting.
type Formatter struct {
	writer  io.Writer
	opts    Options
	written int // values written, for YAML document separators
}

// New creates a new stdout formatter that outputs to stdout.
func New(opts Options) formatter.Formatter {
	return NewWithWriter(os.Stdout, opts)
}

// NewWithWriter creates a new stdout formatter with a custom writer.
// This is useful for testing or redirecting output to files.
func NewWithWriter(writer io.Writer, opts Options) formatter.Formatter {
	return &Formatter{writer: writer, opts: opts}
}

// Nodes prints one line per node in JSON mode and one document per node in
// YAML mode.
func (f *Formatter) Nodes(nodes nodelist.List) error {
	for _, n := range nodes {
		var err error
		switch f.opts.Mode {
		case PathsOnly:
			_, err = fmt.Fprintln(f.writer, n.Path().String())
		case ValuesOnly:
			err = f.value(n.Value)
		default:
			err = f.value(jsonvalue.ObjectOf("path", n.Path().String(), "value", n.Value))
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (f *Formatter) Document(value any) error {
	return f.value(value)
}

func (f *Formatter) value(v any) error {
	if f.opts.YAML {
		b, err := document.EncodeYAML(v)
		if err != nil {
			return err
		}
		if f.written > 0 {
			if _, err := io.WriteString(f.writer, "---\n"); err != nil {
				return err
			}
		}
		f.written++
		_, err = f.writer.Write(b)
		return err
	}

	b, err := jsonvalue.Encode(v)
	if err != nil {
		return err
	}
	f.written++
	_, err = fmt.Fprintf(f.writer, "%s\n", b)
	return err
}

// Diagnostics prints each diagnostic followed by the query with the range
// underlined:
//
//	error: function foo is not defined
//	  $[?foo(@)]
//	     ^^^
func (f *Formatter) Diagnostics(query string, diags []diagnostic.Diagnostic) error {
	line := strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == '\t' {
			return ' '
		}
		return r
	}, query)

	for _, d := range diags {
		if _, err := fmt.Fprintf(f.writer, "%s: %s\n  %s\n  %s\n", d.Severity, d.Message, line, underline(query, d.Range)); err != nil {
			return err
		}
	}
	return nil
}

func underline(query string, r diagnostic.Range) string {
	start := min(max(r.Start, 0), len(query))
	end := min(max(r.End, start), len(query))
	width := max(utf8.RuneCountInString(query[start:end]), 1)
	return strings.Repeat(" ", utf8.RuneCountInString(query[:start])) + strings.Repeat("^", width)
}

func (f *Formatter) Query(canonical string) error {
	_, err := fmt.Fprintln(f.writer, canonical)
	return err
}
