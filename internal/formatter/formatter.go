package formatter

import (
	"github.com/jacoelho/jpq/internal/diagnostic"
	"github.com/jacoelho/jpq/internal/nodelist"
)

// Formatter renders query results. Implementations decide the output
// device.
type Formatter interface {
	// Nodes renders the nodes selected from one input document.
	Nodes(nodes nodelist.List) error
	// Document renders a whole, possibly transformed, input document.
	Document(value any) error
	// Diagnostics renders diagnostics against the query text they refer to.
	Diagnostics(query string, diags []diagnostic.Diagnostic) error
	// Query renders a query in canonical form.
	Query(canonical string) error
}
