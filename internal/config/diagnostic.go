package config

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidConfig is matched by every *ValidationError.
var ErrInvalidConfig = errors.New("invalid configuration")

// Kind classifies a diagnostic.
type Kind string

const (
	KindMissingValueSource Kind = "MissingValueSource"
	KindNoBindingsDefined  Kind = "NoBindingsDefined"
	KindArityMismatch      Kind = "ArityMismatch"
	KindInvalidName        Kind = "InvalidName"
	KindReservedName       Kind = "ReservedName"
	KindDuplicateLabel     Kind = "DuplicateLabel"
	KindInvalidExpression  Kind = "InvalidExpression"
	KindMissingField       Kind = "MissingField"
	KindInvalidValue       Kind = "InvalidValue"
	KindNoSourceEnabled    Kind = "NoSourceEnabled"
)

// Diagnostic describes one configuration problem.
type Diagnostic struct {
	Kind        Kind
	Subject     string
	Valid       bool
	Explanation string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s: %s: %s", d.Subject, d.Kind, d.Explanation)
}

func invalid(kind Kind, subject, format string, args ...any) Diagnostic {
	return Diagnostic{
		Kind:        kind,
		Subject:     subject,
		Explanation: fmt.Sprintf(format, args...),
	}
}

// ValidationError carries every diagnostic found while validating.
type ValidationError struct {
	Diagnostics []Diagnostic
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d problem(s)", ErrInvalidConfig, len(e.Diagnostics))
	for _, d := range e.Diagnostics {
		b.WriteString("\n  ")
		b.WriteString(d.String())
	}
	return b.String()
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidConfig
}
