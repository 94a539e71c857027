package store

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/roach88/mirror/internal/diff"
	"github.com/roach88/mirror/internal/doc"
)

// Compile-time contract assertion.
var _ Store = (*Memory)(nil)

// Memory is an in-memory Store for embedding and tests.
type Memory struct {
	mu     sync.RWMutex
	docs   map[doc.ID]doc.Fields
	notify notifier
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[doc.ID]doc.Fields)}
}

// Lookup returns a copy of the document for id, or ok=false.
func (s *Memory) Lookup(_ context.Context, id doc.ID) (*doc.Document, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	fields, ok := s.docs[id]
	if !ok {
		return nil, false, nil
	}
	return &doc.Document{ID: id, Fields: fields.Clone()}, true, nil
}

// Insert stores a new document.
func (s *Memory) Insert(_ context.Context, d *doc.Document) error {
	s.mu.Lock()
	if _, ok := s.docs[d.ID]; ok {
		s.mu.Unlock()
		return fmt.Errorf("insert %q: %w", d.ID, ErrDocumentExists)
	}
	s.docs[d.ID] = d.Fields.Clone()
	s.mu.Unlock()

	s.notify.emit(Event{Kind: EventAdded, ID: d.ID, Fields: d.Fields.Clone()})
	return nil
}

// Update applies a patch to an existing document.
func (s *Memory) Update(_ context.Context, id doc.ID, p diff.Patch) error {
	s.mu.Lock()
	fields, ok := s.docs[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("update %q: %w", id, ErrDocumentMissing)
	}
	// Copy patch values so later caller-side mutation of the message maps
	// cannot reach store state.
	owned := diff.Patch{Unset: p.Unset}
	if len(p.Set) > 0 {
		owned.Set = make(map[string]any, len(p.Set))
		for k, v := range p.Set {
			owned.Set[k] = doc.CloneValue(v)
		}
	}
	diff.Apply(fields, owned)
	s.mu.Unlock()

	s.notify.emit(Event{Kind: EventChanged, ID: id, Patch: p})
	return nil
}

// Remove deletes an existing document.
func (s *Memory) Remove(_ context.Context, id doc.ID) error {
	s.mu.Lock()
	if _, ok := s.docs[id]; !ok {
		s.mu.Unlock()
		return fmt.Errorf("remove %q: %w", id, ErrDocumentMissing)
	}
	delete(s.docs, id)
	s.mu.Unlock()

	s.notify.emit(Event{Kind: EventRemoved, ID: id})
	return nil
}

// RemoveAll clears every document.
func (s *Memory) RemoveAll(_ context.Context) error {
	s.mu.Lock()
	removed := make([]doc.ID, 0, len(s.docs))
	for id := range s.docs {
		removed = append(removed, id)
	}
	s.docs = make(map[doc.ID]doc.Fields)
	s.mu.Unlock()

	slices.Sort(removed)
	for _, id := range removed {
		s.notify.emit(Event{Kind: EventRemoved, ID: id})
	}
	return nil
}

// Observe registers an observer for mutation events.
func (s *Memory) Observe(fn Observer) {
	s.notify.observe(fn)
}

// SuspendNotifications withholds events until the matching resume.
func (s *Memory) SuspendNotifications() {
	s.notify.suspend(s.snapshotAll())
}

// ResumeNotifications delivers the coalesced net effect since suspension.
func (s *Memory) ResumeNotifications() {
	s.notify.resume(s.snapshotAll())
}

func (s *Memory) snapshotAll() map[doc.ID]doc.Fields {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[doc.ID]doc.Fields, len(s.docs))
	for id, fields := range s.docs {
		out[id] = fields.Clone()
	}
	return out
}

// All returns every document, sorted by identifier.
func (s *Memory) All(_ context.Context) ([]doc.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]doc.Document, 0, len(s.docs))
	for id, fields := range s.docs {
		out = append(out, doc.Document{ID: id, Fields: fields.Clone()})
	}
	slices.SortFunc(out, func(a, b doc.Document) int {
		return cmp.Compare(a.ID, b.ID)
	})
	return out, nil
}

// Len returns the number of stored documents.
func (s *Memory) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
