package reconcile

import (
	"context"
	"fmt"
)

// Batch is the scoped guard for one begin/end update pair.
//
// End resumes notifications exactly once per guard, so it is safe to defer
// immediately after BeginUpdate and also call explicitly on the happy path.
type Batch struct {
	replica   *Replica
	suspended bool
	ended     bool
}

// BeginUpdate opens a batch of expected size batchSize.
//
// Notifications are suspended when the batch carries more than one message
// or requests a reset, so observers only see the pre- and post-batch states.
// A reset clears every document before the first message is applied.
//
// Suspension has no bearing on mutation visibility inside the batch:
// mutations apply immediately and later messages of the same batch observe
// them through store lookups.
func (r *Replica) BeginUpdate(ctx context.Context, batchSize int, reset bool) (*Batch, error) {
	b := &Batch{replica: r}

	if batchSize > 1 || reset {
		r.store.SuspendNotifications()
		b.suspended = true
	}
	if reset {
		if err := r.store.RemoveAll(ctx); err != nil {
			b.End()
			return nil, fmt.Errorf("begin update: reset: %w", err)
		}
		r.logger.Debug("replica reset", "batch_size", batchSize)
	}
	return b, nil
}

// End closes the batch, resuming notifications if this batch suspended them.
// Safe to call more than once; only the first call has effect.
func (b *Batch) End() {
	if b.ended {
		return
	}
	b.ended = true
	if b.suspended {
		b.replica.store.ResumeNotifications()
	}
}
