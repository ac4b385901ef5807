package instrumentation

import "strings"

// Cardinality management helpers for metrics.
// These functions reduce high-cardinality label values to prevent metrics explosion.
//
// # Warning
//
// High cardinality in metrics can cause:
// - Increased memory usage in Prometheus/metrics backends
// - Slower query performance
// - Higher storage costs
//
// Always use these helpers when recording metrics with user-supplied values.

// BoundedOperation reduces a step operation name such as "tag_add:bug" or
// "triage:abc123" to its kind ("tag_add", "triage") so the
// user-supplied detail never becomes a label value.
//
// Example:
//
//	BoundedOperation("tag_add:bug")   // "tag_add"
//	BoundedOperation("update")        // "update"
//	BoundedOperation("")              // "unknown"
func BoundedOperation(operation string) string {
	if operation == "" {
		return StatusUnknown
	}
	kind, _, _ := strings.Cut(operation, ":")
	if kind == "" {
		return StatusUnknown
	}
	return kind
}

// Common operation types for Fizzy API metrics.
// Status and Service constants are defined in config.go.
const (
	OperationList   = "list"
	OperationGet    = "get"
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
	OperationToggle = "toggle"
	OperationMove   = "move"
)
