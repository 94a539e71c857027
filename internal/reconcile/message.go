package reconcile

import "github.com/roach88/mirror/internal/doc"

// Tag identifies the message variant.
type Tag string

const (
	// TagAdded introduces a document that must not already exist.
	TagAdded Tag = "added"

	// TagChanged patches fields of a document that must exist.
	TagChanged Tag = "changed"

	// TagRemoved deletes a document that must exist.
	TagRemoved Tag = "removed"

	// TagReplaced unconditionally forces a document to a given state:
	// insert-or-overwrite when a replacement is carried, delete-if-present
	// when it is not.
	TagReplaced Tag = "replaced"
)

// Message is one authoritative change, a tagged union over the variants
// above. Exactly one payload field is meaningful per tag:
//
//	TagAdded    -> Fields
//	TagChanged  -> Changes
//	TagRemoved  -> (none)
//	TagReplaced -> Replacement (nil means delete-if-present)
type Message struct {
	Tag Tag
	ID  doc.ID

	// Fields carries the initial document state for TagAdded.
	Fields doc.Fields

	// Changes carries per-field operations for TagChanged.
	Changes doc.Changes

	// Replacement carries the full target state for TagReplaced.
	// A nil pointer means the document should not exist.
	Replacement *doc.Fields
}

// Added builds an add message.
func Added(id doc.ID, fields doc.Fields) Message {
	return Message{Tag: TagAdded, ID: id, Fields: fields}
}

// Changed builds a change message.
func Changed(id doc.ID, changes doc.Changes) Message {
	return Message{Tag: TagChanged, ID: id, Changes: changes}
}

// Removed builds a remove message.
func Removed(id doc.ID) Message {
	return Message{Tag: TagRemoved, ID: id}
}

// Replaced builds a replace message. Pass nil to request delete-if-present.
func Replaced(id doc.ID, replacement *doc.Fields) Message {
	return Message{Tag: TagReplaced, ID: id, Replacement: replacement}
}

// validate checks that the message carries the parts its tag requires.
func (m Message) validate() error {
	if m.ID == "" {
		return &ProtocolError{
			Code:   ErrCodeMalformedMessage,
			Tag:    m.Tag,
			Detail: "missing identifier",
		}
	}
	switch m.Tag {
	case TagAdded:
		if m.Fields == nil {
			return &ProtocolError{
				Code:   ErrCodeMalformedMessage,
				Tag:    m.Tag,
				ID:     m.ID,
				Detail: "added message without fields",
			}
		}
	case TagChanged:
		if len(m.Changes) == 0 {
			return &ProtocolError{
				Code:   ErrCodeMalformedMessage,
				Tag:    m.Tag,
				ID:     m.ID,
				Detail: "changed message without field operations",
			}
		}
	case TagRemoved, TagReplaced:
		// No payload requirements.
	default:
		return &ProtocolError{
			Code:   ErrCodeUnknownMessage,
			Tag:    m.Tag,
			ID:     m.ID,
			Detail: "unrecognized message tag",
		}
	}
	return nil
}
