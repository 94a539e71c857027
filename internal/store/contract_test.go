package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/mirror/internal/diff"
	"github.com/roach88/mirror/internal/doc"
)

// testStoreContract exercises the Store contract shared by every
// implementation.
func testStoreContract(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	// Lookup on empty store
	_, ok, err := s.Lookup(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)

	// Insert then lookup
	d := &doc.Document{ID: "a", Fields: doc.Fields{"x": 1, "y": "two"}}
	require.NoError(t, s.Insert(ctx, d))

	got, ok, err := s.Lookup(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, doc.ID("a"), got.ID)
	assert.True(t, doc.DeepEqual(got.Fields["x"], 1))
	assert.True(t, doc.DeepEqual(got.Fields["y"], "two"))

	// Duplicate insert fails
	err = s.Insert(ctx, &doc.Document{ID: "a", Fields: doc.Fields{"x": 9}})
	assert.ErrorIs(t, err, ErrDocumentExists)

	// Update set and unset
	require.NoError(t, s.Update(ctx, "a", diff.Patch{
		Set:   map[string]any{"x": 2},
		Unset: []string{"y"},
	}))
	got, ok, err = s.Lookup(ctx, "a")
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, doc.DeepEqual(got.Fields["x"], 2))
	assert.NotContains(t, got.Fields, "y")

	// Update on missing id fails
	err = s.Update(ctx, "missing", diff.Patch{Set: map[string]any{"x": 1}})
	assert.ErrorIs(t, err, ErrDocumentMissing)

	// Remove on missing id fails; it is a contract violation, not a no-op
	err = s.Remove(ctx, "missing")
	assert.ErrorIs(t, err, ErrDocumentMissing)

	// Remove then lookup
	require.NoError(t, s.Remove(ctx, "a"))
	_, ok, err = s.Lookup(ctx, "a")
	require.NoError(t, err)
	assert.False(t, ok)

	// RemoveAll
	require.NoError(t, s.Insert(ctx, &doc.Document{ID: "b", Fields: doc.Fields{"n": 1}}))
	require.NoError(t, s.Insert(ctx, &doc.Document{ID: "c", Fields: doc.Fields{"n": 2}}))
	require.NoError(t, s.RemoveAll(ctx))
	_, ok, err = s.Lookup(ctx, "b")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = s.Lookup(ctx, "c")
	require.NoError(t, err)
	assert.False(t, ok)
}

// testStoreNotifications exercises suspension and coalescing semantics.
func testStoreNotifications(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	var events []Event
	s.Observe(func(ev Event) {
		events = append(events, ev)
	})

	// Unsuspended mutations notify immediately.
	require.NoError(t, s.Insert(ctx, &doc.Document{ID: "a", Fields: doc.Fields{"x": 1}}))
	require.Len(t, events, 1)
	assert.Equal(t, EventAdded, events[0].Kind)
	assert.Equal(t, doc.ID("a"), events[0].ID)

	// Suspended mutations are withheld, then coalesced on resume.
	events = nil
	s.SuspendNotifications()
	require.NoError(t, s.Update(ctx, "a", diff.Patch{Set: map[string]any{"x": 2}}))
	require.NoError(t, s.Insert(ctx, &doc.Document{ID: "b", Fields: doc.Fields{"y": 1}}))
	require.NoError(t, s.Update(ctx, "b", diff.Patch{Set: map[string]any{"y": 5}}))
	assert.Empty(t, events, "no events while suspended")

	s.ResumeNotifications()
	require.Len(t, events, 2)

	// Net effect for "a" is a single change; for "b" a single add carrying
	// the final state.
	assert.Equal(t, EventChanged, events[0].Kind)
	assert.Equal(t, doc.ID("a"), events[0].ID)
	assert.True(t, doc.DeepEqual(events[0].Patch.Set["x"], 2))

	assert.Equal(t, EventAdded, events[1].Kind)
	assert.Equal(t, doc.ID("b"), events[1].ID)
	assert.True(t, doc.DeepEqual(events[1].Fields["y"], 5))

	// Mutations that cancel out produce no event.
	events = nil
	s.SuspendNotifications()
	require.NoError(t, s.Insert(ctx, &doc.Document{ID: "tmp", Fields: doc.Fields{"z": 1}}))
	require.NoError(t, s.Remove(ctx, "tmp"))
	s.ResumeNotifications()
	assert.Empty(t, events, "add+remove within a suspension must coalesce to nothing")

	// Resume without suspend is a no-op.
	events = nil
	s.ResumeNotifications()
	assert.Empty(t, events)
}
