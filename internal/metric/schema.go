package metric

import (
	"fmt"
	"strings"
)

// Separator splits label declarations and value tuple lines.
const Separator = ","

// LabelSchema is the ordered set of label names a gauge is keyed by.
// The zero value is the empty schema of a plain scalar gauge.
type LabelSchema struct {
	names []string
}

// ParseLabelSchema parses a comma-separated label declaration.
// Tokens are not trimmed; the first invalid or duplicate name aborts parsing.
func ParseLabelSchema(declaration string) (LabelSchema, error) {
	if declaration == "" {
		return LabelSchema{}, nil
	}

	names := strings.Split(declaration, Separator)
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if err := ValidateLabelName(name); err != nil {
			return LabelSchema{}, err
		}
		if _, exists := seen[name]; exists {
			return LabelSchema{}, fmt.Errorf("%w: %q declared more than once", ErrDuplicateLabel, name)
		}
		seen[name] = struct{}{}
	}

	return LabelSchema{names: names}, nil
}

// Size returns the number of labels.
func (s LabelSchema) Size() int {
	return len(s.names)
}

// IsEmpty reports whether the schema declares no labels.
func (s LabelSchema) IsEmpty() bool {
	return len(s.names) == 0
}

// Names returns a copy of the label names in declaration order.
func (s LabelSchema) Names() []string {
	names := make([]string, len(s.names))
	copy(names, s.names)
	return names
}

// String returns the schema in its declaration form.
func (s LabelSchema) String() string {
	return strings.Join(s.names, Separator)
}
