package store

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/mirror/internal/doc"
)

// marshalFields converts a field map to canonical JSON TEXT for storage.
// Canonical serialization keeps the stored form deterministic, so two
// structurally equal documents always produce identical rows.
func marshalFields(fields doc.Fields) (string, error) {
	data, err := doc.MarshalCanonical(fields)
	if err != nil {
		return "", fmt.Errorf("marshal fields: %w", err)
	}
	return string(data), nil
}

// unmarshalFields decodes a stored TEXT column back into a field map.
func unmarshalFields(data string) (doc.Fields, error) {
	var m map[string]any
	if err := json.Unmarshal([]byte(data), &m); err != nil {
		return nil, fmt.Errorf("unmarshal fields: %w", err)
	}
	return doc.Fields(m), nil
}
