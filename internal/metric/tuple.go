package metric

import (
	"fmt"
	"strconv"
	"strings"
)

// ValueTuple is one row of label values followed by the gauge value.
type ValueTuple struct {
	LabelValues []string
	Value       float64
}

// DecodeTuple splits line on commas and expects exactly expectedArity items:
// the label values in schema order, then the numeric value.
// Items are taken as-is, without trimming.
func DecodeTuple(line string, expectedArity int) (ValueTuple, error) {
	items := strings.Split(line, Separator)
	if len(items) != expectedArity {
		return ValueTuple{}, fmt.Errorf("%w: line %q has %d item(s), expected %d",
			ErrArityMismatch, line, len(items), expectedArity)
	}

	raw := items[len(items)-1]
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return ValueTuple{}, fmt.Errorf("%w: value %q in line %q", ErrNotANumber, raw, line)
	}

	return ValueTuple{
		LabelValues: items[:len(items)-1],
		Value:       value,
	}, nil
}

// EncodeTuple renders a tuple back into its line form.
// Label values containing the separator do not survive a round trip.
func EncodeTuple(t ValueTuple) string {
	items := make([]string, 0, len(t.LabelValues)+1)
	items = append(items, t.LabelValues...)
	items = append(items, strconv.FormatFloat(t.Value, 'g', -1, 64))
	return strings.Join(items, Separator)
}
