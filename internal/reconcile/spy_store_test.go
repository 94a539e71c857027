package reconcile

import (
	"context"

	"github.com/roach88/mirror/internal/diff"
	"github.com/roach88/mirror/internal/doc"
	"github.com/roach88/mirror/internal/store"
)

// storeEvent keeps observer callbacks in this package's tests readable.
type storeEvent = store.Event

// spyStore wraps a real store and counts contract calls, so tests can
// assert on exactly which mutations and suspensions the engine issued.
type spyStore struct {
	store.Store

	inserts  int
	updates  int
	removes  int
	resets   int
	suspends int
	resumes  int
}

func newSpyStore() *spyStore {
	return &spyStore{Store: store.NewMemory()}
}

func (s *spyStore) Insert(ctx context.Context, d *doc.Document) error {
	s.inserts++
	return s.Store.Insert(ctx, d)
}

func (s *spyStore) Update(ctx context.Context, id doc.ID, p diff.Patch) error {
	s.updates++
	return s.Store.Update(ctx, id, p)
}

func (s *spyStore) Remove(ctx context.Context, id doc.ID) error {
	s.removes++
	return s.Store.Remove(ctx, id)
}

func (s *spyStore) RemoveAll(ctx context.Context) error {
	s.resets++
	return s.Store.RemoveAll(ctx)
}

func (s *spyStore) SuspendNotifications() {
	s.suspends++
	s.Store.SuspendNotifications()
}

func (s *spyStore) ResumeNotifications() {
	s.resumes++
	s.Store.ResumeNotifications()
}

func fieldsPtr(f doc.Fields) *doc.Fields {
	return &f
}
