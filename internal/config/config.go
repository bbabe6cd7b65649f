package config

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/jacoelho/jpq/internal/document"
	"github.com/jacoelho/jpq/internal/exit"
)

var (
	ErrNoArguments     = errors.New("no arguments provided")
	ErrNoQuery         = errors.New("no query specified")
	ErrConflictingMode = errors.New("conflicting flags")
	ErrInvalidOutput   = errors.New("output must be json or yaml")
	ErrNegativeRate    = errors.New("rate cannot be negative")
)

// Output encodings for selected values.
const (
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Config represents the complete configuration for the jpq tool.
type Config struct {
	Query string
	Files []string // empty reads stdin

	// Format forces the input format; empty guesses from the file name.
	Format string
	Output string

	Paths  bool // print normalized paths only
	Values bool // print values only

	Check   bool // parse and check, do not evaluate
	Analyze bool // report selectors and conditions that never matched
	Static  bool // report selectors impossible for the document type
	Delete  bool // print the documents with the selected nodes removed

	Rate  float64 // documents per second (0 = unlimited)
	Debug bool
}

// InputFormat returns the format for the named input.
func (c *Config) InputFormat(name string) document.Format {
	if c.Format != "" {
		f, _ := document.ParseFormat(c.Format)
		return f
	}
	return document.FormatOf(name)
}

// Validate validates the configuration and returns an error if invalid.
func (c *Config) Validate() error {
	if c.Query == "" {
		return ErrNoQuery
	}

	if c.Format != "" {
		if _, err := document.ParseFormat(c.Format); err != nil {
			return err
		}
	}

	if c.Output != OutputJSON && c.Output != OutputYAML {
		return fmt.Errorf("%w, got: %s", ErrInvalidOutput, c.Output)
	}

	if c.Paths && c.Values {
		return fmt.Errorf("%w: -paths and -values", ErrConflictingMode)
	}
	if c.Delete && (c.Paths || c.Values) {
		return fmt.Errorf("%w: -delete prints documents, not nodes", ErrConflictingMode)
	}
	if c.Check && (c.Delete || c.Analyze || c.Static) {
		return fmt.Errorf("%w: -check does not read input", ErrConflictingMode)
	}

	if c.Rate < 0 {
		return ErrNegativeRate
	}

	for _, file := range c.Files {
		if _, err := os.Stat(file); err != nil {
			return fmt.Errorf("input file %s not found: %w", file, err)
		}
	}

	return nil
}

// Parse parses command-line arguments and returns a validated Config.
// If parsing fails or help is requested, returns nil config and exit result.
func Parse(args []string) (*Config, *exit.Result) {
	if len(args) == 0 {
		return nil, exit.Errorf("Error: %v\n\n%s", ErrNoArguments, Usage())
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.Usage = func() {}
	fs.SetOutput(io.Discard)

	var (
		format  = fs.String("format", "", "Input format: json, hujson, yaml or ndjson")
		output  = fs.String("output", OutputJSON, "Output encoding: json or yaml")
		paths   = fs.Bool("paths", false, "Print normalized paths only")
		values  = fs.Bool("values", false, "Print values only")
		check   = fs.Bool("check", false, "Check the query and print it in canonical form")
		analyze = fs.Bool("analyze", false, "Warn about selectors and conditions that never matched")
		static  = fs.Bool("static", false, "Warn about selectors impossible for the document type")
		del     = fs.Bool("delete", false, "Print documents with the selected nodes removed")
		rate    = fs.Float64("rate", 0, "Documents per second (0 for unlimited)")
		debug   = fs.Bool("debug", false, "Enable debug logging")
	)

	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, exit.Success(Usage())
		}
		return nil, exit.Errorf("Error: failed to parse arguments: %v\n\n%s", err, Usage())
	}

	positional := fs.Args()
	if len(positional) == 0 {
		return nil, exit.Errorf("Error: %v\n\n%s", ErrNoQuery, Usage())
	}

	config := &Config{
		Query:   positional[0],
		Files:   positional[1:],
		Format:  *format,
		Output:  *output,
		Paths:   *paths,
		Values:  *values,
		Check:   *check,
		Analyze: *analyze,
		Static:  *static,
		Delete:  *del,
		Rate:    *rate,
		Debug:   *debug,
	}

	if err := config.Validate(); err != nil {
		return nil, exit.Errorf("Error: %v\n\n%s", err, Usage())
	}

	return config, nil
}

// Usage returns a usage string for the CLI tool.
func Usage() string {
	return `jpq - RFC 9535 JSONPath query tool

Usage: jpq [options] <query> [file1] [file2] ...

Reads standard input when no file is given.

Options:
  --format FORMAT   Input format: json, hujson, yaml, ndjson (default: from file extension)
  --output FORMAT   Output encoding: json, yaml (default: json)
  --paths           Print normalized paths only
  --values          Print values only
  --check           Check the query and print it in canonical form
  --analyze         Warn about selectors and conditions that never matched
  --static          Warn about selectors impossible for the document type
  --delete          Print documents with the selected nodes removed
  --rate N          Documents per second for streamed input (0 for unlimited)
  --debug           Enable debug logging
  -h, --help        Show this help message

Exit status: 0 on matches, 2 when nothing matched, 3 for an invalid query, 1 on other errors.

Examples:
  jpq '$.store.book[*].author' store.json
  jpq --values '$..price' store.yaml
  jpq --format ndjson --rate 100 '$[?@.level == "error"]' < events.log
  jpq --check '$[?length(@.tags) > 1]'
  jpq --delete '$..password' config.jsonc`
}
