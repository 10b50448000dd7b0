package incr

import "context"

// observerState is the small state machine every observer record
// moves through (spec.md §4.5, §9 DESIGN NOTES "Observer state
// machine"): Created -> InUse -> (Disallowed)* -> Unlinked. A node's
// observer list must only ever contain observers in InUse or
// Disallowed; Created or Unlinked observers reachable from a live
// node's list are a contract violation (spec.md §7.1).
type observerState uint8

const (
	observerStateCreated observerState = iota
	observerStateInUse
	observerStateDisallowed
	observerStateUnlinked
)

func (s observerState) String() string {
	switch s {
	case observerStateCreated:
		return "created"
	case observerStateInUse:
		return "in_use"
	case observerStateDisallowed:
		return "disallowed"
	case observerStateUnlinked:
		return "unlinked"
	default:
		return "unknown"
	}
}

// observer is the internal, type-erased observer record threaded into
// a node's observer list. The public, typed handle is *Observer[A]
// below; several public handles over the same watched node may share
// distinct observer records (spec.md scenario "Observer creation and
// teardown... observer lifecycle").
type observer struct {
	id      Identifier
	graph   *Graph
	node    INode // the node this observer watches
	state   observerState
	label   string
	metadata any

	onUpdateHandlers []OnUpdateHandler

	// intrusive doubly-linked list through the watched node's
	// observer list (spec.md §3 "observers — head of a doubly-linked
	// list of internal observer records").
	nextInObserving *observer
	prevInObserving *observer
}

// disallow transitions the observer to Disallowed: it remains linked
// (so its on-update handlers still run the "skip, don't crash" way
// described in spec.md §4.6) but will no longer be treated as
// necessary-producing once it is fully unlinked.
func (o *observer) disallow() {
	if o.state == observerStateInUse {
		o.state = observerStateDisallowed
	}
}

// Observer is the public handle returned by Observe. It is generic
// over the watched value type purely for a type-safe Value() accessor;
// all bookkeeping lives on the shared, erased *observer record.
type Observer[A any] struct {
	rec   *observer
	input Incr[A]
}

// Value returns the current value of the observed node, or the zero
// value of A if the observer has been unobserved.
func (o *Observer[A]) Value() (out A) {
	if o.input != nil {
		out = o.input.Value()
	}
	return
}

// Node returns the metadata node for the watched input, so callers can
// use the same diagnostics surface as any other INode.
func (o *Observer[A]) Node() *Node { return o.input.Node() }

// OnUpdate registers a handler on this observer specifically (as
// opposed to Node.OnUpdate, which registers directly on a node).
func (o *Observer[A]) OnUpdate(fn OnUpdateHandler) {
	o.rec.onUpdateHandlers = append([]OnUpdateHandler{fn}, o.rec.onUpdateHandlers...)
	if o.rec.node != nil {
		o.rec.node.Node().recountOnUpdateHandlers()
	}
}

// Unobserve detaches the observer from its watched node and, if that
// was the last necessary-keeping reference, lets the watched subgraph
// become unnecessary (height -1, removed from the recompute heap).
func (o *Observer[A]) Unobserve(ctx context.Context) {
	if o.rec.graph == nil || o.input == nil {
		return
	}
	o.rec.graph.unobserve(ctx, o.rec)
	o.input = nil
}

// IsUnobserved returns true once Unobserve has completed.
func (o *Observer[A]) IsUnobserved() bool {
	return o.rec.state == observerStateUnlinked
}

// iterObservers walks the node's observer list head to tail, calling
// visit for each record; visit returns false to stop early.
func (n *Node) iterObservers(visit func(*observer) bool) {
	cur := n.observersHead
	for cur != nil {
		if !visit(cur) {
			return
		}
		cur = cur.nextInObserving
	}
}

// linkObserver pushes an observer record onto the head of the node's
// observer list and keeps numOnUpdateHandlers accurate (spec.md
// invariant 7).
func (n *Node) linkObserver(o *observer) {
	o.nextInObserving = n.observersHead
	o.prevInObserving = nil
	if n.observersHead != nil {
		n.observersHead.prevInObserving = o
	}
	n.observersHead = o
	n.recountOnUpdateHandlers()
}

// unlinkObserver removes an observer record from the node's observer
// list in O(1) using the intrusive prev/next pointers.
func (n *Node) unlinkObserver(o *observer) {
	if o.prevInObserving != nil {
		o.prevInObserving.nextInObserving = o.nextInObserving
	} else if n.observersHead == o {
		n.observersHead = o.nextInObserving
	}
	if o.nextInObserving != nil {
		o.nextInObserving.prevInObserving = o.prevInObserving
	}
	o.nextInObserving = nil
	o.prevInObserving = nil
	n.recountOnUpdateHandlers()
}

// recountOnUpdateHandlers recomputes the cached num_on_update_handlers
// field (spec.md invariant 7: own handlers plus every observer's).
func (n *Node) recountOnUpdateHandlers() {
	total := len(n.onUpdateHandlers)
	n.iterObservers(func(o *observer) bool {
		total += len(o.onUpdateHandlers)
		return true
	})
	n.numOnUpdateHandlers = total
}
