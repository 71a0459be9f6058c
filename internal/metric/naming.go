package metric

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	metricNameRegex = regexp.MustCompile(`^[a-zA-Z_:][a-zA-Z0-9_:]*$`)
	labelNameRegex  = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

// reservedLabelPrefix marks label names used internally by Prometheus.
const reservedLabelPrefix = "__"

// ValidateMetricName checks a metric name against Prometheus naming rules.
func ValidateMetricName(name string) error {
	if !metricNameRegex.MatchString(name) {
		return fmt.Errorf("%w: metric name %q must match %s", ErrInvalidName, name, metricNameRegex)
	}
	return nil
}

// ValidateLabelName checks a label name against Prometheus naming rules.
// Colons are legal in metric names but not in label names.
func ValidateLabelName(name string) error {
	if strings.HasPrefix(name, reservedLabelPrefix) {
		return fmt.Errorf("%w: label name %q starts with %q", ErrReservedName, name, reservedLabelPrefix)
	}
	if !labelNameRegex.MatchString(name) {
		return fmt.Errorf("%w: label name %q must match %s", ErrInvalidName, name, labelNameRegex)
	}
	return nil
}
