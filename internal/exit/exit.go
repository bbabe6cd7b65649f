// Package exit carries what the command prints on termination and the
// status it returns.
package exit

import (
	"fmt"
	"io"
	"os"
)

// Status codes. NoMatch lets scripts tell an empty result from a failure.
const (
	OK      = 0
	Failure = 1
	NoMatch = 2
	Invalid = 3
)

// Result holds the output destination and exit code for program termination.
type Result struct {
	Output   io.Writer
	ExitCode int
	Message  string
}

// Print writes the result message to the configured output destination.
func (r *Result) Print() {
	if r.Message == "" {
		return
	}
	fmt.Fprint(r.Output, r.Message)
}

// Success creates a successful exit result that outputs to stdout.
func Success(message string) *Result {
	return &Result{Output: os.Stdout, ExitCode: OK, Message: message}
}

// Error creates a failure result that outputs to stderr.
func Error(message string) *Result {
	return &Result{Output: os.Stderr, ExitCode: Failure, Message: message}
}

// Errorf creates an error exit result with formatted message.
func Errorf(format string, a ...any) *Result {
	return Error(fmt.Sprintf(format, a...))
}

// Empty reports a run that selected nothing.
func Empty() *Result {
	return &Result{Output: os.Stderr, ExitCode: NoMatch}
}

// Rejected reports a query that did not compile. The diagnostics have been
// printed already.
func Rejected() *Result {
	return &Result{Output: os.Stderr, ExitCode: Invalid}
}
