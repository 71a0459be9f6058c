package config

import (
	"errors"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/neox5/pushbox/internal/binding"
	"github.com/neox5/pushbox/internal/metric"
)

// reservedLabels are set by the push grouping key and cannot be declared.
var reservedLabels = []string{"job", metric.GroupingKeyInstance}

// ValidateGaugeSchema checks that a labeled gauge declares a value source
// and bindings whose shape matches its labels.
func ValidateGaugeSchema(g GaugeConfig) []Diagnostic {
	if g.IsScalar() {
		return nil
	}

	subject := g.Subject()
	labelCount := len(strings.Split(g.Labels, metric.Separator))

	var diags []Diagnostic

	if g.Source == "" {
		diags = append(diags, invalid(KindMissingValueSource, subject,
			"labels are defined but no value source is set (must be attribute or content)"))
	}

	if g.Source == ValueSourceContent {
		return diags
	}

	if len(g.Bindings) == 0 {
		diags = append(diags, invalid(KindNoBindingsDefined, subject,
			"labels are defined but no bindings are declared"))
		return diags
	}

	for _, key := range slices.Sorted(maps.Keys(g.Bindings)) {
		items := len(strings.Split(g.Bindings[key], metric.Separator))
		if items == labelCount+1 {
			continue
		}
		diags = append(diags, invalid(KindArityMismatch, subject,
			"binding %q has %d item(s): the binding values should contain %d items (label values followed by the value) since %s defined",
			key, items, labelCount+1, labelPhrase(labelCount)))
		break
	}

	return diags
}

func labelPhrase(n int) string {
	if n == 1 {
		return "there is 1 label"
	}
	return "there are " + strconv.Itoa(n) + " labels"
}

// validateGauge runs every per-gauge check, including ValidateGaugeSchema.
func validateGauge(g GaugeConfig) []Diagnostic {
	subject := g.Subject()
	var diags []Diagnostic

	switch {
	case isBlank(g.Name):
		diags = append(diags, invalid(KindMissingField, subject, "name cannot be empty"))
	case binding.HasExpression(g.Name):
		if err := binding.CheckExpression(g.Name); err != nil {
			diags = append(diags, invalid(KindInvalidExpression, subject, "name: %v", err))
		}
	default:
		if err := metric.ValidateMetricName(g.Name); err != nil {
			diags = append(diags, invalid(KindInvalidName, subject, "%v", err))
		}
	}

	if isBlank(g.Help) {
		diags = append(diags, invalid(KindMissingField, subject, "help cannot be empty"))
	}

	if g.IsScalar() {
		diags = append(diags, validateScalarValue(subject, g.Value)...)
	} else {
		diags = append(diags, validateLabels(subject, g.Labels)...)
	}

	switch g.Source {
	case "", ValueSourceAttribute, ValueSourceContent:
	default:
		diags = append(diags, invalid(KindInvalidValue, subject,
			"invalid source: %s (must be attribute or content)", g.Source))
	}

	for _, key := range slices.Sorted(maps.Keys(g.Bindings)) {
		if err := binding.CheckExpression(g.Bindings[key]); err != nil {
			diags = append(diags, invalid(KindInvalidExpression, subject, "binding %q: %v", key, err))
		}
	}

	return append(diags, ValidateGaugeSchema(g)...)
}

func validateScalarValue(subject, value string) []Diagnostic {
	if isBlank(value) {
		return []Diagnostic{invalid(KindMissingField, subject, "value is required when no labels are defined")}
	}
	if binding.HasExpression(value) {
		if err := binding.CheckExpression(value); err != nil {
			return []Diagnostic{invalid(KindInvalidExpression, subject, "value: %v", err)}
		}
		return nil
	}
	if _, err := strconv.ParseFloat(value, 64); err != nil {
		return []Diagnostic{invalid(KindInvalidValue, subject, "value %q is not a number", value)}
	}
	return nil
}

func validateLabels(subject, labels string) []Diagnostic {
	schema, err := metric.ParseLabelSchema(labels)
	if err != nil {
		kind := KindInvalidName
		switch {
		case errors.Is(err, metric.ErrReservedName):
			kind = KindReservedName
		case errors.Is(err, metric.ErrDuplicateLabel):
			kind = KindDuplicateLabel
		}
		return []Diagnostic{invalid(kind, subject, "labels: %v", err)}
	}

	var diags []Diagnostic
	for _, name := range schema.Names() {
		if slices.Contains(reservedLabels, name) {
			diags = append(diags, invalid(KindReservedName, subject,
				"label %q conflicts with the push grouping key", name))
		}
	}
	return diags
}
