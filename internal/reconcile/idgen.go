package reconcile

import (
	"fmt"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/roach88/mirror/internal/doc"
)

// IDGenerator mints identifiers for local inserts that carry none.
// Implemented by UUIDGenerator (production) and SequentialGenerator (tests).
type IDGenerator interface {
	NewID() doc.ID
}

// UUIDGenerator mints random UUIDv4 identifiers.
type UUIDGenerator struct{}

// NewID returns a fresh UUID string.
func (UUIDGenerator) NewID() doc.ID {
	return doc.ID(uuid.NewString())
}

// SequentialGenerator mints deterministic identifiers for tests:
// prefix-1, prefix-2, ...
type SequentialGenerator struct {
	Prefix string
	n      atomic.Int64
}

// NewID returns the next identifier in sequence.
func (g *SequentialGenerator) NewID() doc.ID {
	return doc.ID(fmt.Sprintf("%s-%d", g.Prefix, g.n.Add(1)))
}
