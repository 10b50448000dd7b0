package incr

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors for contract violations (spec.md §7.1) and graph-level
// failures. ErrUninitializedNode and ErrObserverNotLinkable mark
// structural bugs and reach the caller as a panic wrapped in a
// NodeError; the others are returned, so the caller (or the engine)
// decides how to surface them.
var (
	// ErrAlreadyStabilizing is returned by Stabilize if a stabilization
	// pass is already in progress on the graph.
	ErrAlreadyStabilizing = errors.New("incr: graph is already stabilizing")
	// ErrCycle is returned when linking a parent/child edge would
	// create a cycle in the dependency graph.
	ErrCycle = errors.New("incr: linking these nodes would create a cycle")
	// ErrUninitializedNode is a contract violation: a predicate was
	// evaluated against a node whose kind is still Uninitialized.
	ErrUninitializedNode = errors.New("incr: node is uninitialized")
	// ErrObserverNotLinkable is a contract violation: an observer in
	// state Created or Unlinked was found linked into a node's
	// observer list.
	ErrObserverNotLinkable = errors.New("incr: observer is not in a linkable state")
	// ErrParentIndexOutOfRange is returned by Node.GetParent for an
	// out-of-bounds index (spec.md §4.9).
	ErrParentIndexOutOfRange = errors.New("incr: parent index out of range")
)

// NodeError is the user-visible failure shape described in spec.md
// §7.2: value_exn raised with a structured message and a serializable
// snapshot of the node that failed.
type NodeError struct {
	NodeID   Identifier
	NodeKind string
	Height   int
	Reason   string
	cause    error
}

// Error implements error.
func (e *NodeError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("incr: node %s (%s, height=%d): %s: %v", e.NodeID.Short(), e.NodeKind, e.Height, e.Reason, e.cause)
	}
	return fmt.Sprintf("incr: node %s (%s, height=%d): %s", e.NodeID.Short(), e.NodeKind, e.Height, e.Reason)
}

// Unwrap lets errors.Is/As see through to the underlying cause.
func (e *NodeError) Unwrap() error { return e.cause }

// newNodeError builds a NodeError snapshot from a node's current state.
func newNodeError(n *Node, reason string, cause error) *NodeError {
	return &NodeError{
		NodeID:   n.id,
		NodeKind: n.kindID.String(),
		Height:   n.height,
		Reason:   reason,
		cause:    cause,
	}
}
