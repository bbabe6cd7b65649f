// Package runner executes one jpq invocation: it compiles the query, reads
// every input document and hands the results to a formatter.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/jacoelho/jpq/internal/config"
	"github.com/jacoelho/jpq/internal/datatype"
	"github.com/jacoelho/jpq/internal/diagnostic"
	"github.com/jacoelho/jpq/internal/document"
	"github.com/jacoelho/jpq/internal/exit"
	"github.com/jacoelho/jpq/internal/formatter"
	"github.com/jacoelho/jpq/internal/formatter/stdout"
	"github.com/jacoelho/jpq/internal/jsonpath"
	"github.com/jacoelho/jpq/internal/jsonvalue"
	"github.com/jacoelho/jpq/internal/nodelist"
	"github.com/jacoelho/jpq/internal/normpath"
	"github.com/jacoelho/jpq/internal/ratelimit"
	"github.com/jacoelho/jpq/internal/results"
	"github.com/jacoelho/jpq/internal/session"
	"github.com/jacoelho/jpq/internal/syntax"
	"github.com/jacoelho/jpq/internal/transform"
)

const stdinName = "-"

// Runner executes a query over the configured inputs.
type Runner struct {
	config      *config.Config
	rateLimiter *ratelimit.Limiter
	logger      *slog.Logger
	sessions    *session.Manager

	input     io.Reader
	output    io.Writer
	errOutput io.Writer
}

// New creates a new Runner with the provided configuration.
func New(cfg *config.Config) (*Runner, *exit.Result) {
	if err := cfg.Validate(); err != nil {
		return nil, exit.Errorf("Error creating runner: %v\n", err)
	}

	r := &Runner{
		config:      cfg,
		rateLimiter: ratelimit.New(cfg.Rate),
		input:       os.Stdin,
		output:      os.Stdout,
		errOutput:   os.Stderr,
	}
	r.logger = r.newLogger()
	r.sessions = session.NewManager(nil, r.logger)
	return r, nil
}

func (r *Runner) newLogger() *slog.Logger {
	level := slog.LevelWarn
	if r.config.Debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(r.errOutput, &slog.HandlerOptions{Level: level}))
}

func (r *Runner) SetInput(rd io.Reader) {
	r.input = rd
}

func (r *Runner) SetOutput(w io.Writer) {
	r.output = w
}

// SetErrorOutput redirects diagnostics and logs.
func (r *Runner) SetErrorOutput(w io.Writer) {
	r.errOutput = w
	r.logger = r.newLogger()
	r.sessions = session.NewManager(nil, r.logger)
}

func (r *Runner) formatter() formatter.Formatter {
	opts := stdout.Options{YAML: r.config.Output == config.OutputYAML}
	switch {
	case r.config.Paths:
		opts.Mode = stdout.PathsOnly
	case r.config.Values:
		opts.Mode = stdout.ValuesOnly
	}
	return stdout.NewWithWriter(r.output, opts)
}

func (r *Runner) diagnostics() formatter.Formatter {
	return stdout.NewWithWriter(r.errOutput, stdout.Options{})
}

// Run returns the process exit code.
func (r *Runner) Run(ctx context.Context) int {
	path, err := jsonpath.Compile(r.config.Query,
		jsonpath.WithLogger(r.logger),
		jsonpath.WithReport(func(d diagnostic.Diagnostic) {
			_ = r.diagnostics().Diagnostics(r.config.Query, []diagnostic.Diagnostic{d})
		}),
	)
	if err != nil {
		var perr *jsonpath.Error
		if errors.As(err, &perr) {
			_ = r.diagnostics().Diagnostics(perr.Query, perr.Diagnostics)
			return exit.Rejected().ExitCode
		}
		fmt.Fprintf(r.errOutput, "Error: %v\n", err)
		return exit.Failure
	}

	if r.config.Check {
		if err := r.formatter().Query(syntax.Format(path.Query())); err != nil {
			fmt.Fprintf(r.errOutput, "Error: %v\n", err)
			return exit.Failure
		}
		return exit.OK
	}

	var sess *session.Session
	if r.config.Static || r.config.Analyze {
		sess = r.sessions.Open(r.config.Query)
		defer r.sessions.Close(sess.ID())
		r.logger.Debug("analysis session opened", slog.String("session", sess.ID().String()))
	}

	inputs := r.config.Files
	if len(inputs) == 0 {
		inputs = []string{stdinName}
	}

	out := r.formatter()
	summary := results.NewSummary(len(inputs))
	defer func() {
		r.logger.Debug("run finished", slog.Any("summary", summary))
	}()

	for _, name := range inputs {
		if err := ctx.Err(); err != nil {
			fmt.Fprintf(r.errOutput, "\nInterrupted: %v\n", err)
			return exit.Failure
		}

		b := results.NewInputResultBuilder(name)
		err := r.processInput(ctx, path, sess, name, out, b)
		result := summary.Add(b.WithError(err))
		r.logger.Debug("input processed", slog.Any("input", result))
		if err != nil {
			fmt.Fprintf(r.errOutput, "Error: %s: %v\n", name, err)
			return exit.Failure
		}
	}

	if summary.Matches == 0 && !r.config.Delete {
		return exit.Empty().ExitCode
	}
	return exit.OK
}

func (r *Runner) open(name string) (io.ReadCloser, error) {
	if name == stdinName {
		return io.NopCloser(r.input), nil
	}
	return os.Open(name)
}

func (r *Runner) processInput(ctx context.Context, path *jsonpath.Path, sess *session.Session, name string, out formatter.Formatter, b *results.InputResultBuilder) error {
	f, err := r.open(name)
	if err != nil {
		return err
	}
	defer f.Close()

	format := r.config.InputFormat(name)
	r.logger.Debug("reading input", slog.String("name", name), slog.String("format", format.String()))

	if r.config.Delete && format == document.JSON && r.config.Output == config.OutputJSON {
		n, err := r.deleteRaw(path, f, out)
		b.AddDocument(n)
		return err
	}

	docs := ratelimit.Throttle(ctx, r.rateLimiter, document.Documents(f, format))
	for doc, err := range docs {
		if err != nil {
			return err
		}
		n, err := r.processDocument(path, sess, doc, out)
		b.AddDocument(n)
		if err != nil {
			return err
		}
	}
	return nil
}

// processDocument runs the analyzers through sess, which is nil unless
// -static or -analyze is set.
func (r *Runner) processDocument(path *jsonpath.Path, sess *session.Session, doc any, out formatter.Formatter) (int, error) {
	if r.config.Static {
		sess.SetRootType(datatype.Widen(datatype.Of(doc)))
		diags := sess.Analyze()
		if err := r.diagnostics().Diagnostics(path.String(), diags); err != nil {
			return 0, err
		}
	}

	var selected nodelist.List
	if r.config.Analyze {
		res := sess.Run(doc)
		if err := r.diagnostics().Diagnostics(path.String(), res.Diagnostics); err != nil {
			return 0, err
		}
		selected = res.Nodes
	} else {
		selected = path.Select(doc)
	}

	if r.config.Delete {
		return len(selected), r.writeRemoved(doc, selected.Paths(), out)
	}
	return len(selected), out.Nodes(selected)
}

func (r *Runner) writeRemoved(doc any, paths []normpath.Path, out formatter.Formatter) error {
	result := transform.RemoveAtPaths(doc, paths)
	if jsonvalue.IsNothing(result) {
		return nil
	}
	return out.Document(result)
}

// deleteRaw edits the input bytes so untouched parts keep their layout.
func (r *Runner) deleteRaw(path *jsonpath.Path, f io.Reader, out formatter.Formatter) (int, error) {
	data, err := io.ReadAll(f)
	if err != nil {
		return 0, err
	}
	doc, err := jsonvalue.DecodeBytes(data)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", document.ErrDecode, err)
	}

	selected := path.Select(doc)
	result, err := transform.RemoveAtPathsJSON(data, selected.Paths())
	if errors.Is(err, transform.ErrUnaddressable) {
		return len(selected), r.writeRemoved(doc, selected.Paths(), out)
	}
	if err != nil {
		return len(selected), err
	}
	_, err = fmt.Fprintf(r.output, "%s\n", bytes.TrimSpace(result))
	return len(selected), err
}
