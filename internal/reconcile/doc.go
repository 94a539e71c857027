// Package reconcile applies an ordered stream of authoritative change
// messages to a locally held document replica.
//
// # Model
//
// The engine is a pure, synchronous reducer over messages: each Apply runs
// to completion before the next, with no internal buffering, reordering, or
// parallelism. Document presence is never tracked internally; the store's
// Lookup is the single source of truth, queried once per message.
//
// Batches bracket message sequences so the notification layer only observes
// the pre- and post-batch states. BeginUpdate returns a scoped guard whose
// End resumes notifications exactly once, including on error paths.
//
// A failed Apply is fatal for the batch: the replica must be treated as
// desynchronized and resynchronized by the caller (typically via a
// reset-and-replay batch). See ProtocolError.
//
// # Optimistic writes
//
// Local speculative mutations go through the Replica's Insert, Update and
// Remove methods. Between SaveOriginals and RetrieveOriginals the replica
// captures the pre-mutation snapshot of each touched document (first touch
// only), so a caller can later compare or roll back against the
// authoritative state. The reconciler itself is unaware of this capability.
package reconcile
