package doc

import "fmt"

// ID identifies a document uniquely within a replica.
// IDs are opaque and comparable; the engine never interprets their contents.
type ID string

// ParseID validates a wire-level identifier representation.
// The only structural requirement is non-emptiness; everything else is
// policy belonging to the caller that minted the identifier.
func ParseID(s string) (ID, error) {
	if s == "" {
		return "", fmt.Errorf("parse id: empty identifier")
	}
	return ID(s), nil
}

// Fields maps field names to arbitrary JSON-compatible values.
type Fields map[string]any

// Clone returns a deep copy of the field map.
// Nested maps and slices are copied recursively so a snapshot never aliases
// live store state.
func (f Fields) Clone() Fields {
	if f == nil {
		return nil
	}
	out := make(Fields, len(f))
	for k, v := range f {
		out[k] = cloneValue(v)
	}
	return out
}

// CloneValue deep-copies a single field value.
func CloneValue(v any) any {
	return cloneValue(v)
}

func cloneValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			out[k] = cloneValue(elem)
		}
		return out
	case Fields:
		return map[string]any(val.Clone())
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = cloneValue(elem)
		}
		return out
	default:
		// Scalars (string, bool, numbers, nil) are immutable.
		return val
	}
}

// Document is an identified field map held by a replica.
type Document struct {
	ID     ID
	Fields Fields
}

// Clone returns a deep copy of the document.
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	return &Document{ID: d.ID, Fields: d.Fields.Clone()}
}
