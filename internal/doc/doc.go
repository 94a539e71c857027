// Package doc defines the document model shared by the replica engine.
//
// A document is an identifier plus a flat map of field names to arbitrary
// JSON-compatible values. Field-level mutations are expressed as explicit
// tagged operations (Set, Unset) rather than a magic in-band "absent" value,
// so there is never ambiguity between "store this value" and "delete this
// field".
//
// Equality of field values is structural: two values are equal when their
// canonical JSON serializations are byte-identical. Canonical JSON here
// follows RFC 8785 conventions (UTF-16 key ordering, NFC-normalized strings,
// no HTML escaping) so that equality is stable across encode/decode
// round-trips and across the SQLite and in-memory stores.
package doc
