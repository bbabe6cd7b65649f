package jsonvalue

import "errors"

var (
	ErrMalformed    = errors.New("malformed JSON")
	ErrTrailingData = errors.New("unexpected data after JSON value")
)
