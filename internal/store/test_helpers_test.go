package store

import "github.com/roach88/mirror/internal/doc"

// testDoc builds a single-field document for store tests.
func testDoc(id doc.ID, field string, value any) *doc.Document {
	return &doc.Document{ID: id, Fields: doc.Fields{field: value}}
}
