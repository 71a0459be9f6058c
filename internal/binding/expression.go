package binding

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalidExpression reports a malformed ${...} expression.
var ErrInvalidExpression = errors.New("invalid expression")

// attributeNamePattern matches the attribute reference inside ${...}
var attributeNamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.\-]+$`)

const defaultMarker = ":-"

// Evaluator turns a template into a concrete string using record attributes.
type Evaluator func(template string, attrs map[string]string) (string, error)

// Evaluate expands ${name} and ${name:-default} references from attrs.
// A missing attribute expands to the empty string; $$ is a literal $.
func Evaluate(template string, attrs map[string]string) (string, error) {
	if !strings.Contains(template, "$") {
		return template, nil
	}

	var b strings.Builder
	b.Grow(len(template))

	for i := 0; i < len(template); {
		c := template[i]
		if c != '$' || i+1 == len(template) {
			b.WriteByte(c)
			i++
			continue
		}

		switch template[i+1] {
		case '$':
			b.WriteByte('$')
			i += 2
		case '{':
			end := strings.IndexByte(template[i+2:], '}')
			if end < 0 {
				return "", fmt.Errorf("%w: unterminated ${ in %q", ErrInvalidExpression, template)
			}
			val, err := evaluateReference(template[i+2:i+2+end], attrs)
			if err != nil {
				return "", fmt.Errorf("%w in %q", err, template)
			}
			b.WriteString(val)
			i += end + 3
		default:
			b.WriteByte(c)
			i++
		}
	}

	return b.String(), nil
}

// evaluateReference resolves the body of a single ${...} expression.
func evaluateReference(ref string, attrs map[string]string) (string, error) {
	name, def, hasDefault := strings.Cut(ref, defaultMarker)
	if !attributeNamePattern.MatchString(name) {
		return "", fmt.Errorf("%w: attribute reference %q", ErrInvalidExpression, ref)
	}

	val, ok := attrs[name]
	if hasDefault && (!ok || val == "") {
		return def, nil
	}
	return val, nil
}

// CheckExpression validates template syntax without any attributes.
func CheckExpression(template string) error {
	_, err := Evaluate(template, nil)
	return err
}

// HasExpression reports whether s contains a ${...} reference.
func HasExpression(s string) bool {
	return strings.Contains(s, "${")
}
