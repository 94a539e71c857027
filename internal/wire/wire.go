// Package wire decodes transport-level change messages and batch files into
// the engine's message types.
//
// The logical wire shape is transport-agnostic JSON (YAML is accepted for
// batch files):
//
//	{
//	  "msg": "added" | "changed" | "removed" | "replaced",
//	  "id": "<identifier>",
//	  "fields":  { ... },   // added: initial state; changed: values to set
//	  "cleared": [ ... ],   // changed: field names to delete
//	  "replace": { ... }    // replaced: target state; null or absent = delete
//	}
//
// Field deletion travels in the explicit "cleared" list rather than an
// in-band sentinel value, so no field value is ever reserved.
//
// Batch files are validated against a CUE schema before decoding; see
// ValidateBatch.
package wire

import (
	"encoding/json"
	"fmt"

	"github.com/roach88/mirror/internal/doc"
	"github.com/roach88/mirror/internal/reconcile"
)

// RawMessage is the decoded transport representation of one change message.
//
// Replace carries no present-vs-null distinction: both an absent key and an
// explicit null mean "the document should not exist". The authoritative
// source only sends "replaced" with a body when the document exists.
type RawMessage struct {
	Msg     string         `json:"msg" yaml:"msg"`
	ID      string         `json:"id" yaml:"id"`
	Fields  map[string]any `json:"fields,omitempty" yaml:"fields,omitempty"`
	Cleared []string       `json:"cleared,omitempty" yaml:"cleared,omitempty"`
	Replace map[string]any `json:"replace,omitempty" yaml:"replace,omitempty"`
}

// DecodeMessage parses one JSON-encoded change message.
func DecodeMessage(data []byte) (reconcile.Message, error) {
	var raw RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return reconcile.Message{}, &reconcile.ProtocolError{
			Code:   reconcile.ErrCodeMalformedMessage,
			Detail: fmt.Sprintf("invalid message JSON: %v", err),
		}
	}
	return Decode(raw)
}

// Decode converts a transport message into an engine message, enforcing the
// structural requirements of each tag.
func Decode(raw RawMessage) (reconcile.Message, error) {
	id, err := doc.ParseID(raw.ID)
	if err != nil {
		return reconcile.Message{}, &reconcile.ProtocolError{
			Code:   reconcile.ErrCodeMalformedMessage,
			Tag:    reconcile.Tag(raw.Msg),
			Detail: "missing identifier",
		}
	}

	switch reconcile.Tag(raw.Msg) {
	case reconcile.TagAdded:
		if raw.Fields == nil {
			return reconcile.Message{}, &reconcile.ProtocolError{
				Code:   reconcile.ErrCodeMalformedMessage,
				Tag:    reconcile.TagAdded,
				ID:     id,
				Detail: "added message without fields",
			}
		}
		return reconcile.Added(id, doc.Fields(raw.Fields)), nil

	case reconcile.TagChanged:
		changes, err := decodeChanges(id, raw)
		if err != nil {
			return reconcile.Message{}, err
		}
		return reconcile.Changed(id, changes), nil

	case reconcile.TagRemoved:
		return reconcile.Removed(id), nil

	case reconcile.TagReplaced:
		if raw.Replace == nil {
			return reconcile.Replaced(id, nil), nil
		}
		f := doc.Fields(raw.Replace)
		return reconcile.Replaced(id, &f), nil

	default:
		return reconcile.Message{}, &reconcile.ProtocolError{
			Code:   reconcile.ErrCodeUnknownMessage,
			Tag:    reconcile.Tag(raw.Msg),
			ID:     id,
			Detail: "unrecognized message tag",
		}
	}
}

// decodeChanges merges the set values and cleared names of a changed message
// into tagged field operations.
func decodeChanges(id doc.ID, raw RawMessage) (doc.Changes, error) {
	if len(raw.Fields) == 0 && len(raw.Cleared) == 0 {
		return nil, &reconcile.ProtocolError{
			Code:   reconcile.ErrCodeMalformedMessage,
			Tag:    reconcile.TagChanged,
			ID:     id,
			Detail: "changed message without field operations",
		}
	}

	changes := make(doc.Changes, len(raw.Fields)+len(raw.Cleared))
	for name, v := range raw.Fields {
		changes[name] = doc.Set{Value: v}
	}
	for _, name := range raw.Cleared {
		if _, ok := changes[name]; ok {
			return nil, &reconcile.ProtocolError{
				Code:   reconcile.ErrCodeMalformedMessage,
				Tag:    reconcile.TagChanged,
				ID:     id,
				Detail: fmt.Sprintf("field %q both set and cleared", name),
			}
		}
		changes[name] = doc.Unset{}
	}
	return changes, nil
}
