package record

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/goccy/go-json"
)

// ErrInvalidEnvelope reports a payload that is not a record envelope.
var ErrInvalidEnvelope = errors.New("invalid record envelope")

// envelope is the JSON form of a record:
//
//	{"attributes": {"appId": "1", "total": 42}, "body": "get,1,42\n"}
type envelope struct {
	Attributes map[string]json.RawMessage `json:"attributes"`
	Body       *string                    `json:"body"`
}

// DecodeEnvelope parses a JSON record envelope. Scalar attribute values
// are kept in their JSON text form; objects and arrays are rejected.
func DecodeEnvelope(data []byte) (Record, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Record{}, fmt.Errorf("%w: %w", ErrInvalidEnvelope, err)
	}

	rec := Record{Attributes: make(map[string]string, len(env.Attributes))}
	for name, raw := range env.Attributes {
		val, err := attributeValue(raw)
		if err != nil {
			return Record{}, fmt.Errorf("%w: attribute %q: %w", ErrInvalidEnvelope, name, err)
		}
		rec.Attributes[name] = val
	}
	if env.Body != nil {
		rec.Body = []byte(*env.Body)
	}

	return rec, nil
}

// EncodeEnvelope renders rec as a JSON record envelope.
func EncodeEnvelope(rec Record) ([]byte, error) {
	out := struct {
		Attributes map[string]string `json:"attributes"`
		Body       *string           `json:"body,omitempty"`
	}{Attributes: rec.Attributes}
	if rec.Body != nil {
		body := string(rec.Body)
		out.Body = &body
	}
	return json.Marshal(out)
}

func attributeValue(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", nil
	}

	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", err
		}
		return s, nil
	case '{', '[':
		return "", errors.New("value must be a string, number, boolean or null")
	case 'n':
		return "", nil
	default:
		return string(trimmed), nil
	}
}
