package metric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateMetricName(t *testing.T) {
	valid := []string{
		"valid_metric",
		"valid_metric_123",
		"_valid_metric",
		"valid:metric",
		"Valid_Metric",
		"a",
		"_",
		":",
		"http:request_duration_seconds",
	}
	for _, name := range valid {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, ValidateMetricName(name))
		})
	}

	invalid := []string{
		"",
		"123invalid",
		"invalid metric",
		"invalid-metric",
		"invalid.metric",
		"metric@name",
		"metric#name",
		"metric/name",
		"metric(name)",
		"metric\n",
	}
	for _, name := range invalid {
		t.Run("invalid "+name, func(t *testing.T) {
			assert.ErrorIs(t, ValidateMetricName(name), ErrInvalidName)
		})
	}
}

func TestValidateLabelName(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		for _, name := range []string{"method", "appId", "_", "_private", "a1", "A_b_C"} {
			assert.NoError(t, ValidateLabelName(name), name)
		}
	})

	t.Run("reserved", func(t *testing.T) {
		for _, name := range []string{"__", "__foo", "__name__"} {
			assert.ErrorIs(t, ValidateLabelName(name), ErrReservedName, name)
		}
	})

	t.Run("colon illegal in labels", func(t *testing.T) {
		assert.ErrorIs(t, ValidateLabelName("a:b"), ErrInvalidName)
		assert.NoError(t, ValidateMetricName("a:b"))
	})

	t.Run("invalid", func(t *testing.T) {
		for _, name := range []string{"", "1abc", "a-b", "a b", " method"} {
			assert.ErrorIs(t, ValidateLabelName(name), ErrInvalidName, name)
		}
	})
}
