package binding

import (
	"bufio"
	"bytes"
	"fmt"

	"github.com/neox5/pushbox/internal/metric"
)

// Resolver evaluates bindings for one gauge and decodes them into tuples.
// It holds no per-record state and is safe for concurrent use.
type Resolver struct {
	schema   metric.LabelSchema
	bindings Set
	evaluate Evaluator
}

// NewResolver creates a resolver. A nil evaluate uses Evaluate.
func NewResolver(schema metric.LabelSchema, bindings Set, evaluate Evaluator) *Resolver {
	if evaluate == nil {
		evaluate = Evaluate
	}
	return &Resolver{
		schema:   schema,
		bindings: bindings,
		evaluate: evaluate,
	}
}

// Arity returns the item count every value line must have.
func (r *Resolver) Arity() int {
	return r.schema.Size() + 1
}

// Resolve evaluates every binding against attrs and decodes the results.
// The first failure aborts resolution.
func (r *Resolver) Resolve(attrs map[string]string) ([]metric.ValueTuple, error) {
	tuples := make([]metric.ValueTuple, 0, r.bindings.Len())

	for _, b := range r.bindings.bindings {
		line, err := r.evaluate(b.Template, attrs)
		if err != nil {
			return nil, fmt.Errorf("binding %q: %w", b.Key, err)
		}

		tuple, err := metric.DecodeTuple(line, r.Arity())
		if err != nil {
			return nil, fmt.Errorf("binding %q: %w", b.Key, err)
		}
		tuples = append(tuples, tuple)
	}

	return tuples, nil
}

// ResolveLines decodes one tuple per line of body.
func (r *Resolver) ResolveLines(body []byte) ([]metric.ValueTuple, error) {
	if len(body) == 0 {
		return nil, metric.ErrEmptyBody
	}

	var tuples []metric.ValueTuple

	scanner := bufio.NewScanner(bytes.NewReader(body))
	scanner.Buffer(make([]byte, 0, 4096), len(body)+1)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		tuple, err := metric.DecodeTuple(scanner.Text(), r.Arity())
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		tuples = append(tuples, tuple)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	return tuples, nil
}
