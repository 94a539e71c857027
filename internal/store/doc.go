// Package store provides document storage for a replica.
//
// Two implementations of the Store contract are provided:
//   - Memory: mutex-guarded in-memory map, the default for embedding and tests
//   - SQLite: durable single-file replica using WAL mode
//
// # Contract
//
// Insert fails if the identifier already exists; Update and Remove fail if it
// does not. Removing a missing document is a contract violation, never a
// silent no-op; the reconciler depends on this to detect desynchronization.
//
// # Notifications
//
// Observers registered with Observe receive one Event per effective mutation.
// While notifications are suspended, events are withheld; on resume each
// observer receives the net per-document effect (added/changed/removed,
// computed against the pre-suspend snapshot), as if every mutation since the
// suspension had happened atomically. Documents that were mutated and then
// restored to their pre-suspend state produce no event at all.
//
// # Storage format (SQLite)
//
// Documents are stored as canonical JSON TEXT keyed by id. The database is
// configured with WAL mode, NORMAL synchronous mode, a 5-second busy timeout,
// and a single-writer connection pool.
package store
