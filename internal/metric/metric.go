// Package metric validates metric schemas and assembles gauge instances
// ready to be pushed.
package metric

// GroupingKeyInstance is the only grouping label attached to a push.
const GroupingKeyInstance = "instance"

// GroupingKey returns the grouping key for instance.
func GroupingKey(instance string) map[string]string {
	return map[string]string{GroupingKeyInstance: instance}
}
