package reconcile

import "github.com/roach88/mirror/internal/doc"

// originalsLedger captures pre-mutation document snapshots during an
// optimistic-write window.
//
// A snapshot is taken on the first touch of an identifier only; later
// mutations within the same window never overwrite it, so the ledger always
// holds the state from before the window's first local write. A nil entry
// marks a document that did not exist.
type originalsLedger struct {
	capturing bool
	snapshots map[doc.ID]*doc.Document
}

// noteDocument records the pre-mutation state of a touched document.
func (l *originalsLedger) noteDocument(d *doc.Document) {
	if !l.capturing {
		return
	}
	if _, ok := l.snapshots[d.ID]; ok {
		return
	}
	l.snapshots[d.ID] = d.Clone()
}

// noteAbsent records that a touched identifier had no document.
func (l *originalsLedger) noteAbsent(id doc.ID) {
	if !l.capturing {
		return
	}
	if _, ok := l.snapshots[id]; ok {
		return
	}
	l.snapshots[id] = nil
}

// SaveOriginals opens a capture window for local speculative writes.
// Opening a window discards any snapshots from a previous one.
func (r *Replica) SaveOriginals() {
	r.originals.capturing = true
	r.originals.snapshots = make(map[doc.ID]*doc.Document)
}

// RetrieveOriginals closes the capture window and returns every captured
// snapshot, keyed by identifier; a nil value means the document did not
// exist before the window's first write to it. The ledger is drained:
// calling again without an intervening SaveOriginals returns an empty map.
func (r *Replica) RetrieveOriginals() map[doc.ID]*doc.Document {
	out := r.originals.snapshots
	r.originals.capturing = false
	r.originals.snapshots = nil
	if out == nil {
		out = make(map[doc.ID]*doc.Document)
	}
	return out
}
