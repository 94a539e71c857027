package store

import (
	"slices"
	"sync"

	"github.com/roach88/mirror/internal/diff"
	"github.com/roach88/mirror/internal/doc"
)

// EventKind classifies a mutation event.
type EventKind string

const (
	// EventAdded reports a document that did not exist before.
	EventAdded EventKind = "added"

	// EventChanged reports a field-level change to an existing document.
	EventChanged EventKind = "changed"

	// EventRemoved reports a deleted document.
	EventRemoved EventKind = "removed"
)

// Event describes one effective mutation, delivered to observers.
type Event struct {
	Kind   EventKind
	ID     doc.ID
	Fields doc.Fields // post-state for EventAdded; nil otherwise
	Patch  diff.Patch // delta for EventChanged; zero otherwise
}

// notifier implements observer registration and notification suspension for
// the store implementations.
//
// During suspension it keeps the pre-suspend snapshot of the whole replica.
// On resume it compares the snapshot against the current state and delivers
// exactly one net event per changed identifier, in sorted id order for
// determinism.
type notifier struct {
	mu        sync.Mutex
	observers []Observer
	suspended bool
	snapshot  map[doc.ID]doc.Fields
}

// Observer receives mutation events. Observers must not mutate the store
// from within the callback.
type Observer func(Event)

func (n *notifier) observe(fn Observer) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.observers = append(n.observers, fn)
}

// emit delivers an event unless notifications are suspended.
func (n *notifier) emit(ev Event) {
	n.mu.Lock()
	if n.suspended {
		n.mu.Unlock()
		return
	}
	observers := slices.Clone(n.observers)
	n.mu.Unlock()

	for _, fn := range observers {
		fn(ev)
	}
}

// suspend begins withholding events. current is the replica state at the
// moment of suspension and becomes the baseline for coalescing.
func (n *notifier) suspend(current map[doc.ID]doc.Fields) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.suspended {
		return
	}
	n.suspended = true
	n.snapshot = current
}

// resume delivers the net effect of every mutation since suspend, comparing
// the suspension baseline against current.
func (n *notifier) resume(current map[doc.ID]doc.Fields) {
	n.mu.Lock()
	if !n.suspended {
		n.mu.Unlock()
		return
	}
	before := n.snapshot
	n.suspended = false
	n.snapshot = nil
	observers := slices.Clone(n.observers)
	n.mu.Unlock()

	if len(observers) == 0 {
		return
	}
	for _, ev := range coalesce(before, current) {
		for _, fn := range observers {
			fn(ev)
		}
	}
}

// coalesce computes one net event per identifier whose state differs between
// before and after.
func coalesce(before, after map[doc.ID]doc.Fields) []Event {
	ids := make([]doc.ID, 0, len(before)+len(after))
	seen := make(map[doc.ID]struct{}, len(before)+len(after))
	for id := range before {
		ids = append(ids, id)
		seen[id] = struct{}{}
	}
	for id := range after {
		if _, ok := seen[id]; !ok {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	var events []Event
	for _, id := range ids {
		old, hadOld := before[id]
		cur, hasCur := after[id]
		switch {
		case !hadOld && hasCur:
			events = append(events, Event{Kind: EventAdded, ID: id, Fields: cur.Clone()})
		case hadOld && !hasCur:
			events = append(events, Event{Kind: EventRemoved, ID: id})
		default:
			p := diff.Overwrite(old, cur)
			if !p.IsEmpty() {
				events = append(events, Event{Kind: EventChanged, ID: id, Patch: p})
			}
		}
	}
	return events
}
