package metric

import "errors"

// Errors reported while validating names and assembling metrics.
var (
	ErrInvalidName    = errors.New("invalid name")
	ErrReservedName   = errors.New("reserved name")
	ErrDuplicateLabel = errors.New("duplicate label")
	ErrArityMismatch  = errors.New("arity mismatch")
	ErrNotANumber     = errors.New("not a number")
	ErrEmptyBody      = errors.New("record body is empty")
)
