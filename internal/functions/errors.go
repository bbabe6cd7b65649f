package functions

import "errors"

var (
	ErrDuplicate  = errors.New("function already registered")
	ErrInvalidDef = errors.New("invalid function definition")
)
