package reconcile

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/mirror/internal/diff"
	"github.com/roach88/mirror/internal/doc"
	"github.com/roach88/mirror/internal/store"
)

// Connector is the authoritative source of truth behind a replica.
// GetDoc reflects server-confirmed state, which may differ from the local
// store while optimistic writes are outstanding.
type Connector interface {
	GetDoc(ctx context.Context, id doc.ID) (*doc.Document, bool, error)
}

// Replica owns a document store and reconciles authoritative change
// messages into it.
//
// Batches on the same replica must be strictly sequential and
// non-overlapping; this is caller discipline, not enforced re-entrancy
// protection. The store is assumed exclusively owned for a batch's duration.
type Replica struct {
	store     store.Store
	connector Connector
	logger    *slog.Logger
	idgen     IDGenerator
	originals originalsLedger
}

// Option configures a Replica.
type Option func(*Replica)

// WithLogger sets the replica's logger. The default discards nothing but
// logs at slog's default level via slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Replica) {
		r.logger = logger
	}
}

// WithConnector sets the authoritative connector consulted by GetDoc.
func WithConnector(c Connector) Option {
	return func(r *Replica) {
		r.connector = c
	}
}

// WithIDGenerator sets the generator used to mint identifiers for local
// inserts that carry none.
func WithIDGenerator(g IDGenerator) Option {
	return func(r *Replica) {
		r.idgen = g
	}
}

// New creates a Replica over the given store.
func New(s store.Store, opts ...Option) *Replica {
	r := &Replica{
		store:  s,
		logger: slog.Default(),
		idgen:  UUIDGenerator{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Store returns the underlying document store.
func (r *Replica) Store() store.Store {
	return r.store
}

// GetDoc returns the server-confirmed document for id.
// When a connector is configured the lookup is delegated to it, not the
// local store, so callers holding outstanding optimistic writes see the
// authoritative state. Without a connector it falls back to the local store.
func (r *Replica) GetDoc(ctx context.Context, id doc.ID) (*doc.Document, bool, error) {
	if r.connector != nil {
		return r.connector.GetDoc(ctx, id)
	}
	return r.store.Lookup(ctx, id)
}

// Insert performs a local speculative insert. If the document carries no
// identifier one is minted with the configured generator. The pre-mutation
// absence is recorded in the originals ledger when a capture window is open.
func (r *Replica) Insert(ctx context.Context, d *doc.Document) (doc.ID, error) {
	if d.ID == "" {
		d = &doc.Document{ID: r.idgen.NewID(), Fields: d.Fields}
	}
	if err := r.store.Insert(ctx, d); err != nil {
		return "", fmt.Errorf("local insert: %w", err)
	}
	r.originals.noteAbsent(d.ID)
	return d.ID, nil
}

// Update performs a local speculative update. The patch is computed with the
// field diff computer; when every proposed operation is a no-op, no store
// mutation is issued and no original is captured.
func (r *Replica) Update(ctx context.Context, id doc.ID, changes doc.Changes) error {
	current, ok, err := r.store.Lookup(ctx, id)
	if err != nil {
		return fmt.Errorf("local update: %w", err)
	}
	if !ok {
		return fmt.Errorf("local update %q: %w", id, store.ErrDocumentMissing)
	}
	p := diff.Compute(current.Fields, changes)
	if p.IsEmpty() {
		return nil
	}
	if err := r.store.Update(ctx, id, p); err != nil {
		return fmt.Errorf("local update: %w", err)
	}
	r.originals.noteDocument(current)
	return nil
}

// Remove performs a local speculative remove.
func (r *Replica) Remove(ctx context.Context, id doc.ID) error {
	current, ok, err := r.store.Lookup(ctx, id)
	if err != nil {
		return fmt.Errorf("local remove: %w", err)
	}
	if !ok {
		return fmt.Errorf("local remove %q: %w", id, store.ErrDocumentMissing)
	}
	if err := r.store.Remove(ctx, id); err != nil {
		return fmt.Errorf("local remove: %w", err)
	}
	r.originals.noteDocument(current)
	return nil
}
