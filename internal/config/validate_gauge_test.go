package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds(diags []Diagnostic) []Kind {
	out := make([]Kind, 0, len(diags))
	for _, d := range diags {
		out = append(out, d.Kind)
	}
	return out
}

func TestValidateGaugeSchema(t *testing.T) {
	tests := []struct {
		name  string
		gauge GaugeConfig
		want  []Kind
	}{
		{
			name:  "scalar gauge has no schema",
			gauge: GaugeConfig{Name: "up", Help: "h", Value: "1"},
			want:  []Kind{},
		},
		{
			name: "valid attribute bindings",
			gauge: GaugeConfig{
				Name: "metric", Help: "help", Labels: "method,appId", Source: ValueSourceAttribute,
				Bindings: map[string]string{"1": "get,1,42", "2": "post,1,${v}"},
			},
			want: []Kind{},
		},
		{
			name:  "content source needs no bindings",
			gauge: GaugeConfig{Name: "metric", Help: "help", Labels: "method", Source: ValueSourceContent},
			want:  []Kind{},
		},
		{
			name:  "missing source and bindings",
			gauge: GaugeConfig{Name: "metric", Help: "help", Labels: "method"},
			want:  []Kind{KindMissingValueSource, KindNoBindingsDefined},
		},
		{
			name:  "attribute source without bindings",
			gauge: GaugeConfig{Name: "metric", Help: "help", Labels: "method", Source: ValueSourceAttribute},
			want:  []Kind{KindNoBindingsDefined},
		},
		{
			name: "missing source with mismatched binding",
			gauge: GaugeConfig{
				Name: "metric", Help: "help", Labels: "method,appId",
				Bindings: map[string]string{"1": "get,1"},
			},
			want: []Kind{KindMissingValueSource, KindArityMismatch},
		},
		{
			name: "one arity diagnostic for several bad bindings",
			gauge: GaugeConfig{
				Name: "metric", Help: "help", Labels: "method,appId", Source: ValueSourceAttribute,
				Bindings: map[string]string{"1": "get", "2": "post,1,2,3", "3": "put,1,1"},
			},
			want: []Kind{KindArityMismatch},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, kinds(ValidateGaugeSchema(tt.gauge)))
		})
	}
}

func TestValidateGaugeSchemaArityExplanation(t *testing.T) {
	diags := ValidateGaugeSchema(GaugeConfig{
		Name:     "metric",
		Help:     "help",
		Labels:   "method,appId",
		Source:   ValueSourceAttribute,
		Bindings: map[string]string{"1": "get,1"},
	})

	require.Len(t, diags, 1)
	d := diags[0]
	assert.Equal(t, KindArityMismatch, d.Kind)
	assert.False(t, d.Valid)
	assert.Equal(t, "gauge metric", d.Subject)
	assert.Contains(t, d.Explanation, "should contain 3 items")
	assert.Contains(t, d.Explanation, "there are 2 labels defined")
}

func TestValidateGaugeSchemaSingleLabelWording(t *testing.T) {
	diags := ValidateGaugeSchema(GaugeConfig{
		Name:     "metric",
		Labels:   "method",
		Source:   ValueSourceAttribute,
		Bindings: map[string]string{"a": "get"},
	})

	require.Len(t, diags, 1)
	assert.Contains(t, diags[0].Explanation, "should contain 2 items")
	assert.Contains(t, diags[0].Explanation, "there is 1 label defined")
}

func TestValidateGauge(t *testing.T) {
	tests := []struct {
		name  string
		gauge GaugeConfig
		want  []Kind
	}{
		{
			name:  "expression in name is allowed",
			gauge: GaugeConfig{Name: "requests_${service}", Help: "h", Value: "${count}"},
			want:  []Kind{},
		},
		{
			name:  "blank name and help",
			gauge: GaugeConfig{Value: "1"},
			want:  []Kind{KindMissingField, KindMissingField},
		},
		{
			name:  "invalid metric name",
			gauge: GaugeConfig{Name: "9lives", Help: "h", Value: "1"},
			want:  []Kind{KindInvalidName},
		},
		{
			name:  "broken name expression",
			gauge: GaugeConfig{Name: "req_${service", Help: "h", Value: "1"},
			want:  []Kind{KindInvalidExpression},
		},
		{
			name:  "scalar without value",
			gauge: GaugeConfig{Name: "up", Help: "h"},
			want:  []Kind{KindMissingField},
		},
		{
			name:  "scalar literal not a number",
			gauge: GaugeConfig{Name: "up", Help: "h", Value: "yes"},
			want:  []Kind{KindInvalidValue},
		},
		{
			name: "reserved label",
			gauge: GaugeConfig{
				Name: "m", Help: "h", Labels: "__name", Source: ValueSourceContent,
			},
			want: []Kind{KindReservedName},
		},
		{
			name: "duplicate label",
			gauge: GaugeConfig{
				Name: "m", Help: "h", Labels: "a,a", Source: ValueSourceContent,
			},
			want: []Kind{KindDuplicateLabel},
		},
		{
			name: "invalid label",
			gauge: GaugeConfig{
				Name: "m", Help: "h", Labels: "a-b", Source: ValueSourceContent,
			},
			want: []Kind{KindInvalidName},
		},
		{
			name: "grouping key label",
			gauge: GaugeConfig{
				Name: "m", Help: "h", Labels: "instance", Source: ValueSourceContent,
			},
			want: []Kind{KindReservedName},
		},
		{
			name: "unknown source",
			gauge: GaugeConfig{
				Name: "m", Help: "h", Labels: "a", Source: "body",
				Bindings: map[string]string{"1": "x,1"},
			},
			want: []Kind{KindInvalidValue},
		},
		{
			name: "broken binding expression",
			gauge: GaugeConfig{
				Name: "m", Help: "h", Labels: "a", Source: ValueSourceAttribute,
				Bindings: map[string]string{"1": "x,${v"},
			},
			want: []Kind{KindInvalidExpression},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, kinds(validateGauge(tt.gauge)))
		})
	}
}
