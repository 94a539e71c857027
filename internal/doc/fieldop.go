package doc

// FieldOp is a sealed interface representing a proposed per-field operation.
// Only Set and Unset implement it. A field not mentioned in a Changes map is
// left untouched, so there is no explicit Keep variant.
type FieldOp interface {
	fieldOp() // Sealed - only Set and Unset implement it
}

// Set proposes storing Value for a field, replacing any current value.
type Set struct {
	Value any
}

func (Set) fieldOp() {}

// Unset proposes deleting a field from the document.
type Unset struct{}

func (Unset) fieldOp() {}

// Changes maps field names to proposed operations.
type Changes map[string]FieldOp

// SetFields builds a Changes map that sets every field of m.
func SetFields(m Fields) Changes {
	out := make(Changes, len(m))
	for k, v := range m {
		out[k] = Set{Value: v}
	}
	return out
}
