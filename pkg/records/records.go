// Package records defines the in-memory record representation shared by
// parsers, transforms, and the writer.
package records

// Record is a single data record keyed by field name. JSON objects decode
// into this type directly.
type Record map[string]any
