package transform

import "errors"

var (
	ErrUnaddressable = errors.New("path cannot be addressed in raw JSON")
	ErrInvalidJSON   = errors.New("invalid JSON document")
)
