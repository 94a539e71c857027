package doc

import (
	"bytes"
	"reflect"
)

// DeepEqual reports whether two field values are structurally equal.
//
// Equality is defined as byte-identical canonical JSON, which makes it
// agnostic to Go-level representation differences that do not survive a
// serialization round-trip: int(5), int64(5), float64(5) and json.Number("5")
// all compare equal.
//
// Values that cannot be canonically serialized fall back to
// reflect.DeepEqual.
func DeepEqual(a, b any) bool {
	if a == nil && b == nil {
		return true
	}
	ab, errA := marshalCanonical(a)
	bb, errB := marshalCanonical(b)
	if errA != nil || errB != nil {
		return reflect.DeepEqual(a, b)
	}
	return bytes.Equal(ab, bb)
}
