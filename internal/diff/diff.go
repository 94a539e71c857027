// Package diff computes minimal field-level patches against a document.
//
// A patch carries only the fields whose target state differs (by structural
// equality) from the document's current state, so downstream stores and
// observers never see no-op mutations.
package diff

import (
	"sort"

	"github.com/roach88/mirror/internal/doc"
)

// Patch is a minimal field delta: values to store and field names to delete.
// Set and Unset are disjoint over field names.
type Patch struct {
	Set   map[string]any
	Unset []string
}

// IsEmpty reports whether applying the patch would change nothing.
// An empty patch must never be forwarded to a store update.
func (p Patch) IsEmpty() bool {
	return len(p.Set) == 0 && len(p.Unset) == 0
}

// Compute builds the minimal patch that brings current to the state proposed
// by changes:
//
//   - Set whose value is structurally equal to the current value: omitted.
//   - Set whose value differs, or targets a missing field: added to Set.
//   - Unset of a present field: added to Unset.
//   - Unset of an already-absent field: omitted, symmetric with the
//     equal-value case above.
//
// Unset entries are sorted for deterministic patch comparison.
func Compute(current doc.Fields, changes doc.Changes) Patch {
	var p Patch
	for name, op := range changes {
		switch op := op.(type) {
		case doc.Set:
			cur, ok := current[name]
			if ok && doc.DeepEqual(cur, op.Value) {
				continue
			}
			if p.Set == nil {
				p.Set = make(map[string]any)
			}
			p.Set[name] = op.Value
		case doc.Unset:
			if _, ok := current[name]; !ok {
				continue
			}
			p.Unset = append(p.Unset, name)
		}
	}
	sort.Strings(p.Unset)
	return p
}

// Overwrite builds the patch that makes current exactly equal to replacement:
// every differing replacement field is set, and every current field not in
// the replacement is unset. This is a plain whole-document overwrite, not a
// merge.
func Overwrite(current, replacement doc.Fields) Patch {
	changes := doc.SetFields(replacement)
	for name := range current {
		if _, ok := replacement[name]; !ok {
			changes[name] = doc.Unset{}
		}
	}
	return Compute(current, changes)
}

// Apply mutates fields in place according to the patch.
// Stores share this so the in-memory and SQLite implementations agree on
// patch semantics exactly.
func Apply(fields doc.Fields, p Patch) {
	for name, v := range p.Set {
		fields[name] = v
	}
	for _, name := range p.Unset {
		delete(fields, name)
	}
}
