package store

import (
	"context"
	"errors"

	"github.com/roach88/mirror/internal/diff"
	"github.com/roach88/mirror/internal/doc"
)

// ErrDocumentExists is returned by Insert when the identifier is taken.
var ErrDocumentExists = errors.New("document already exists")

// ErrDocumentMissing is returned by Update and Remove when no document with
// the identifier exists.
var ErrDocumentMissing = errors.New("document does not exist")

// Store is the document store contract consumed by the reconciler.
//
// Lookup is the single source of truth for document presence: the reconciler
// never tracks presence itself, it asks the store per message.
type Store interface {
	// Lookup returns the document for id, or ok=false if none exists.
	// The returned document is a copy; mutating it does not affect the store.
	Lookup(ctx context.Context, id doc.ID) (*doc.Document, bool, error)

	// Insert stores a new document. Fails with ErrDocumentExists if a
	// document with the same identifier is already present.
	Insert(ctx context.Context, d *doc.Document) error

	// Update applies a field patch to an existing document. Fails with
	// ErrDocumentMissing if no document with the identifier exists.
	Update(ctx context.Context, id doc.ID, p diff.Patch) error

	// Remove deletes an existing document. Fails with ErrDocumentMissing if
	// no document with the identifier exists.
	Remove(ctx context.Context, id doc.ID) error

	// RemoveAll clears every document. Used only for replica reset.
	RemoveAll(ctx context.Context) error

	// Observe registers an observer for mutation events.
	Observe(fn Observer)

	// SuspendNotifications withholds observer events until resume.
	// The batch controller never nests suspensions.
	SuspendNotifications()

	// ResumeNotifications delivers the coalesced net effect of all mutations
	// since the matching suspend.
	ResumeNotifications()
}
