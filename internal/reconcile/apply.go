package reconcile

import (
	"context"
	"fmt"

	"github.com/roach88/mirror/internal/diff"
	"github.com/roach88/mirror/internal/doc"
)

// Apply reconciles one authoritative change message into the store.
//
// Presence or absence of the target document is determined by a store
// lookup per message, never by internally tracked state. The transitions:
//
//	Added                target absent  -> insert
//	Added                target present -> fatal ADD_ON_EXISTING
//	Removed              target present -> remove
//	Removed              target absent  -> fatal REMOVE_ON_MISSING
//	Changed              target present -> minimal patch, update if non-empty
//	Changed              target absent  -> fatal CHANGE_ON_MISSING
//	Replaced (nil)       any            -> remove if present, else no-op
//	Replaced (non-nil)   target absent  -> insert
//	Replaced (non-nil)   target present -> whole-document overwrite
//
// Any error returned aborts the batch: the caller must treat the replica as
// desynchronized and resynchronize from the authoritative source.
func (r *Replica) Apply(ctx context.Context, m Message) error {
	if err := m.validate(); err != nil {
		return err
	}

	current, present, err := r.store.Lookup(ctx, m.ID)
	if err != nil {
		return fmt.Errorf("apply %s %q: %w", m.Tag, m.ID, err)
	}

	switch m.Tag {
	case TagAdded:
		if present {
			return &ProtocolError{
				Code:   ErrCodeAddOnExisting,
				Tag:    m.Tag,
				ID:     m.ID,
				Detail: "document already present",
			}
		}
		if err := r.store.Insert(ctx, &doc.Document{ID: m.ID, Fields: m.Fields}); err != nil {
			return fmt.Errorf("apply %s %q: %w", m.Tag, m.ID, err)
		}

	case TagRemoved:
		if !present {
			return &ProtocolError{
				Code:   ErrCodeRemoveOnMissing,
				Tag:    m.Tag,
				ID:     m.ID,
				Detail: "document not present",
			}
		}
		if err := r.store.Remove(ctx, m.ID); err != nil {
			return fmt.Errorf("apply %s %q: %w", m.Tag, m.ID, err)
		}

	case TagChanged:
		if !present {
			return &ProtocolError{
				Code:   ErrCodeChangeOnMissing,
				Tag:    m.Tag,
				ID:     m.ID,
				Detail: "document not present",
			}
		}
		p := diff.Compute(current.Fields, m.Changes)
		if p.IsEmpty() {
			// Every proposed operation is a no-op; never forward an
			// empty patch to the store.
			return nil
		}
		if err := r.store.Update(ctx, m.ID, p); err != nil {
			return fmt.Errorf("apply %s %q: %w", m.Tag, m.ID, err)
		}

	case TagReplaced:
		if err := r.applyReplace(ctx, m, current, present); err != nil {
			return err
		}
	}

	r.logger.Debug("reconciled message", "tag", string(m.Tag), "id", string(m.ID))
	return nil
}

// applyReplace forces a document to the authoritative state carried by a
// replace message. Unlike the other variants it is tolerant of the target's
// presence: the server is declaring what the state should be, not describing
// a transition.
func (r *Replica) applyReplace(ctx context.Context, m Message, current *doc.Document, present bool) error {
	if m.Replacement == nil {
		if !present {
			// Idempotent delete: the document is already gone.
			return nil
		}
		if err := r.store.Remove(ctx, m.ID); err != nil {
			return fmt.Errorf("apply %s %q: %w", m.Tag, m.ID, err)
		}
		return nil
	}

	if !present {
		if err := r.store.Insert(ctx, &doc.Document{ID: m.ID, Fields: *m.Replacement}); err != nil {
			return fmt.Errorf("apply %s %q: %w", m.Tag, m.ID, err)
		}
		return nil
	}

	// Plain whole-document overwrite, not a merge: fields absent from the
	// replacement are unset.
	p := diff.Overwrite(current.Fields, *m.Replacement)
	if p.IsEmpty() {
		return nil
	}
	if err := r.store.Update(ctx, m.ID, p); err != nil {
		return fmt.Errorf("apply %s %q: %w", m.Tag, m.ID, err)
	}
	return nil
}
