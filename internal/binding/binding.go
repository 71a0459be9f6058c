// Package binding resolves operator-declared value lines against records.
package binding

import (
	"slices"
	"strings"
)

// Binding pairs an operator-chosen key with a raw value line template.
type Binding struct {
	Key      string
	Template string
}

// Set is an immutable collection of bindings ordered by key.
type Set struct {
	bindings []Binding
}

// NewSet builds a set from key/template pairs.
func NewSet(templates map[string]string) Set {
	bindings := make([]Binding, 0, len(templates))
	for key, tmpl := range templates {
		bindings = append(bindings, Binding{Key: key, Template: tmpl})
	}
	slices.SortFunc(bindings, func(a, b Binding) int {
		return strings.Compare(a.Key, b.Key)
	})
	return Set{bindings: bindings}
}

// Len returns the number of bindings.
func (s Set) Len() int {
	return len(s.bindings)
}

// All returns the bindings in key order.
func (s Set) All() []Binding {
	return slices.Clone(s.bindings)
}
