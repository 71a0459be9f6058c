// Package record defines the unit of input and the sources that produce it.
package record

import (
	"context"
	"maps"
)

// Record is one input event: string attributes plus an optional raw body.
type Record struct {
	Attributes map[string]string
	Body       []byte
}

// Clone returns a copy that shares nothing with r.
func (r Record) Clone() Record {
	return Record{
		Attributes: maps.Clone(r.Attributes),
		Body:       append([]byte(nil), r.Body...),
	}
}

// Handler consumes records. It must be safe for concurrent use.
type Handler interface {
	Handle(ctx context.Context, rec Record) error
}

// HandlerFunc adapts a function to Handler.
type HandlerFunc func(ctx context.Context, rec Record) error

// Handle calls f.
func (f HandlerFunc) Handle(ctx context.Context, rec Record) error {
	return f(ctx, rec)
}

// Source delivers records to a handler until ctx is done or input ends.
type Source interface {
	Name() string
	Run(ctx context.Context) error
}
