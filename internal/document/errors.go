package document

import "errors"

var (
	// ErrUnsupportedFormat is returned for an unknown format name.
	ErrUnsupportedFormat = errors.New("unsupported document format")

	// ErrDecode wraps every failure to read an input document.
	ErrDecode = errors.New("failed to decode document")

	// ErrUnrepresentable indicates a YAML value with no JSON equivalent,
	// such as .nan or .inf.
	ErrUnrepresentable = errors.New("value has no JSON representation")
)
