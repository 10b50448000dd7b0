package incr

import (
	"github.com/google/uuid"
)

// Identifier is a process-unique identifier assigned to every node,
// graph, and observer at creation time. It is usable as a map key and
// is ordered (roughly) by creation time because it is backed by a
// UUIDv7, which carries a millisecond timestamp in its high bits.
type Identifier uuid.UUID

// Identifier is intentionally zero-valued by default; ZeroIdentifier
// is never assigned to a live node, graph, or observer.
var ZeroIdentifier Identifier

// NewIdentifier returns a new, process-unique identifier.
func NewIdentifier() Identifier {
	id, err := uuid.NewV7()
	if err != nil {
		// uuid.NewV7 only fails if the process entropy source is
		// broken; fall back to a random v4 rather than panic.
		return Identifier(uuid.New())
	}
	return Identifier(id)
}

// IsZero returns true if the identifier is the zero value.
func (id Identifier) IsZero() bool {
	return id == ZeroIdentifier
}

// String returns the full string form of the identifier.
func (id Identifier) String() string {
	return uuid.UUID(id).String()
}

// Short returns an abbreviated form of the identifier suitable for
// diagnostics and DOT labels.
func (id Identifier) Short() string {
	s := uuid.UUID(id).String()
	if len(s) < 8 {
		return s
	}
	return s[:8]
}
