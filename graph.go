package incr

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"
)

// New returns a new graph state, which is the type that represents the
// shared state of a computation graph.
//
// You can pass configuration options as `GraphOption` to customize settings
// within the graph, such as what the maximum "height" a node can be.
//
// This is the entrypoint for all stabilization and computation
// operations, and generally the Graph will be passed to node constructors.
//
// Nodes you initialize the graph with will need to be observed by
// an Observer before you can stabilize them.
func New(opts ...GraphOption) *Graph {
	options := GraphOptions{
		MaxHeight: DefaultMaxHeight,
	}
	for _, opt := range opts {
		opt(&options)
	}
	g := &Graph{
		id:                       NewIdentifier(),
		stabilizationNum:         1,
		status:                   StatusNotStabilizing,
		nodes:                    make(map[Identifier]INode),
		recomputeHeap:            newRecomputeHeap(options.MaxHeight),
		adjustHeightsHeap:        newAdjustHeightsHeap(options.MaxHeight),
		setDuringStabilization:   make(map[Identifier]INode),
		handleAfterStabilization: make(map[Identifier][]OnUpdateHandler),
	}
	return g
}

// GraphOption mutates GraphOptions.
type GraphOption func(*GraphOptions)

// OptGraphMaxHeight sets the graph's initial recompute-heap bucket
// capacity; the heap still grows past this on demand (node.go
// growParentCapacity-style doubling), so this is a sizing hint, not a
// hard ceiling.
func OptGraphMaxHeight(maxHeight int) GraphOption {
	return func(g *GraphOptions) {
		g.MaxHeight = maxHeight
	}
}

// GraphOptions are options for graphs.
type GraphOptions struct {
	MaxHeight int
}

// DefaultMaxHeight is the default initial bucket capacity for the
// recompute and adjust-heights heaps.
const DefaultMaxHeight = 256

// Graph status values (spec.md §5 "a graph is in exactly one of:
// not stabilizing, stabilizing, running update handlers").
const (
	StatusNotStabilizing int32 = iota
	StatusStabilizing
	StatusRunningUpdateHandlers
)

var _ Scope = (*Graph)(nil)

// Graph is the state shared across every node in a computation graph.
// Instantiate it with New. The graph tracks how many stabilizations
// have happened, which nodes are necessary, and which nodes are
// currently stale and queued to recompute.
type Graph struct {
	id    Identifier
	label string

	nodesMu sync.Mutex
	nodes   map[Identifier]INode

	recomputeHeap     *recomputeHeap
	adjustHeightsHeap *adjustHeightsHeap

	setDuringStabilizationMu sync.Mutex
	setDuringStabilization   map[Identifier]INode

	handleAfterStabilizationMu sync.Mutex
	handleAfterStabilization   map[Identifier][]OnUpdateHandler

	stabilizationNum StabilizationNum
	status           int32

	stabilizationStarted time.Time

	numNodes           uint64
	numNodesRecomputed uint64
	numNodesChanged    uint64

	metadata any

	onStabilizationStart []func(context.Context)
	onStabilizationEnd   []func(context.Context, time.Time, error)

	propagateInvalidityQueue []INode
}

// ID is the identifier for the graph.
func (graph *Graph) ID() Identifier { return graph.id }

// Label returns the graph label.
func (graph *Graph) Label() string { return graph.label }

// SetLabel sets the graph label.
func (graph *Graph) SetLabel(label string) { graph.label = label }

// Metadata is extra data held on the graph instance.
func (graph *Graph) Metadata() any { return graph.metadata }

// SetMetadata sets the metadata for the graph instance.
func (graph *Graph) SetMetadata(metadata any) { graph.metadata = metadata }

// StabilizationNum returns the current stabilization counter (spec.md
// §3 "t, the current stabilization number").
func (graph *Graph) StabilizationNum() StabilizationNum { return graph.stabilizationNum }

// IsStabilizing returns whether the graph is currently stabilizing or
// running update handlers.
func (graph *Graph) IsStabilizing() bool {
	return atomic.LoadInt32(&graph.status) != StatusNotStabilizing
}

// Has returns whether the graph currently tracks gn.
func (graph *Graph) Has(gn INode) (ok bool) {
	graph.nodesMu.Lock()
	_, ok = graph.nodes[gn.Node().id]
	graph.nodesMu.Unlock()
	return
}

// NumNodes returns the number of nodes the graph currently tracks.
func (graph *Graph) NumNodes() uint64 { return graph.numNodes }

// Stats returns lifetime recompute/change counters (stats.go exposes
// the richer, per-kind breakdown on top of these).
func (graph *Graph) Stats() (recomputed, changed uint64) {
	return graph.numNodesRecomputed, graph.numNodesChanged
}

// OnStabilizationStart adds a stabilization start handler.
func (graph *Graph) OnStabilizationStart(handler func(context.Context)) {
	graph.onStabilizationStart = append(graph.onStabilizationStart, handler)
}

// OnStabilizationEnd adds a stabilization end handler.
func (graph *Graph) OnStabilizationEnd(handler func(context.Context, time.Time, error)) {
	graph.onStabilizationEnd = append(graph.onStabilizationEnd, handler)
}

// SetStale marks gn explicitly stale and queues it if necessary
// (exposed for Var.Set, which is the only combinator spec.md allows
// to be set directly by the user rather than recomputed from inputs).
func (graph *Graph) SetStale(gn INode) {
	n := gn.Node()
	n.setAt = graph.stabilizationNum
	if n.IsNecessary() && !n.IsInRecomputeHeap() {
		graph.recomputeHeap.add(n)
	}
}

//
// Scope interface methods: the graph itself is the top scope.
//

func (graph *Graph) isTopScope() bool   { return true }
func (graph *Graph) scopeIsValid() bool { return true }
func (graph *Graph) scopeHeight() int   { return heightUnset }
func (graph *Graph) addScopeNode(_ INode)    {}
func (graph *Graph) removeScopeNode(_ INode) {}

func (graph *Graph) String() string { return fmt.Sprintf("{graph:%s}", graph.id.Short()) }

//
// internal invalidation/necessity machinery (spec.md §4.3, §4.4)
//

func (graph *Graph) pushInvalidityQueue(n INode) {
	graph.propagateInvalidityQueue = append(graph.propagateInvalidityQueue, n)
}

func (graph *Graph) popInvalidityQueue() (INode, bool) {
	if len(graph.propagateInvalidityQueue) == 0 {
		return nil, false
	}
	n := graph.propagateInvalidityQueue[0]
	graph.propagateInvalidityQueue = graph.propagateInvalidityQueue[1:]
	return n, true
}

// invalidateNode transitions n to Invalid (spec.md §4.3): if it was
// necessary, it is unlinked from every one of its own inputs, its
// height is fixed one past its creation scope, and every one of its
// parents is queued to be re-examined for invalidation or
// recomputation in turn.
func (graph *Graph) invalidateNode(ctx context.Context, n INode) {
	nn := n.Node()
	if !nn.IsValid() {
		return
	}

	nn.changedAt = graph.stabilizationNum
	nn.recomputedAt = graph.stabilizationNum
	wasNecessary := nn.IsNecessary()
	if wasNecessary {
		graph.removeAllInputEdges(n)
		nn.height = nn.createdIn.scopeHeight() + 1
	}
	if bindMain, ok := n.(IBindMain); ok {
		_ = bindMain.invalidateBind(ctx)
	}
	nn.SetKind(leafKind{id: KindInvalid})

	if wasNecessary {
		nn.IterateParents(func(_ int, parent INode) {
			graph.pushInvalidityQueue(parent)
		})
	}
	if nn.IsInRecomputeHeap() {
		graph.recomputeHeap.remove(nn)
	}
	if nn.numOnUpdateHandlers > 0 {
		graph.handleAfterStabilizationMu.Lock()
		graph.handleAfterStabilization[nn.id] = append(graph.handleAfterStabilization[nn.id], func(c context.Context, _ UpdateEvent, now time.Time) {
			runOnUpdateHandlers(c, nn, UpdateEventInvalidated, now)
		})
		graph.handleAfterStabilizationMu.Unlock()
	}
}

// removeAllInputEdges unlinks n from every one of its current inputs
// (n.Kind().EachChild), the spec.md §4.4 counterpart to "remove_parent"
// applied to every child at once; each affected input is then checked
// for having become unnecessary itself.
func (graph *Graph) removeAllInputEdges(n INode) {
	var toCheck []INode
	n.Node().Kind().EachChild(func(idx int, child INode) {
		removeParent(child, n, idx)
		toCheck = append(toCheck, child)
	})
	for _, child := range toCheck {
		graph.checkIfUnnecessary(child)
	}
}

// checkIfUnnecessary removes n from the graph once nothing keeps it
// necessary any more: no parent, no observer, not force-marked. The
// Has check makes a second call for the same node (a child listed
// twice, as in Map2(n, n)) a no-op.
func (graph *Graph) checkIfUnnecessary(n INode) {
	nn := n.Node()
	if nn.numParents == 0 && nn.observersHead == nil && !nn.forceNecessary && graph.Has(n) {
		graph.becameUnnecessary(n)
	}
}

func (graph *Graph) becameUnnecessary(n INode) {
	graph.removeNode(n)
	graph.removeAllInputEdges(n)
}

func (graph *Graph) edgeIsStale(child, parent INode) bool {
	return parent.Node().changedAt.After(child.Node().recomputedAt)
}

// addChild links parent as a consumer of child at the given
// child-side slot index (spec.md §4.4 "add_parent"), raising heights
// first if the new edge would violate height ordering, then queueing
// child for recomputation if it is freshly necessary or already
// stale relative to parent.
func (graph *Graph) addChild(ctx context.Context, child, parent INode, childIndex int) error {
	graph.addChildWithoutAdjustingHeights(ctx, child, parent, childIndex)
	cn, pn := child.Node(), parent.Node()
	if cn.height >= pn.height {
		if err := adjustHeights(graph.recomputeHeap, graph.adjustHeightsHeap, child, parent); err != nil {
			return err
		}
	}
	graph.propagateInvalidity(ctx)
	if !cn.IsInRecomputeHeap() && (cn.recomputedAt.IsNone() || graph.edgeIsStale(child, parent)) {
		graph.recomputeHeap.add(cn)
	}
	return nil
}

func (graph *Graph) addChildWithoutAdjustingHeights(ctx context.Context, child, parent INode, childIndex int) {
	cn := child.Node()
	wasNecessary := cn.IsNecessary()

	addParent(child, parent, childIndex)

	if !child.Node().IsValid() {
		graph.pushInvalidityQueue(parent)
	}
	if !wasNecessary {
		_ = graph.becameNecessaryRecursive(ctx, child)
	}
}

// becameNecessaryRecursive implements spec.md §4.4's "became necessary":
// the node is registered with the graph, given a height one past its
// creation scope, and every one of its current inputs is linked as a
// consumer (recursively making each input necessary in turn if it
// wasn't already).
func (graph *Graph) becameNecessaryRecursive(ctx context.Context, n INode) error {
	graph.addNode(n)
	nn := n.Node()
	if err := raiseHeight(graph.recomputeHeap, nn, nn.createdIn.scopeHeight()+1); err != nil {
		return err
	}
	var err error
	nn.Kind().EachChild(func(idx int, child INode) {
		if err != nil {
			return
		}
		graph.addChildWithoutAdjustingHeights(ctx, child, n, idx)
		if child.Node().height >= nn.height {
			err = raiseHeight(graph.recomputeHeap, nn, child.Node().height+1)
		}
	})
	if err != nil {
		return err
	}
	if nn.IsStale() && !nn.IsInRecomputeHeap() {
		graph.recomputeHeap.add(nn)
	}
	return nil
}

func (graph *Graph) becameNecessary(ctx context.Context, n INode) error {
	if err := graph.becameNecessaryRecursive(ctx, n); err != nil {
		return err
	}
	graph.propagateInvalidity(ctx)
	return nil
}

func (graph *Graph) propagateInvalidity(ctx context.Context) {
	for {
		n, ok := graph.popInvalidityQueue()
		if !ok {
			return
		}
		nn := n.Node()
		if !nn.IsValid() {
			continue
		}
		if nn.ShouldBeInvalidated() {
			graph.invalidateNode(ctx, n)
		} else if !nn.IsInRecomputeHeap() {
			graph.recomputeHeap.add(nn)
		}
	}
}

func (graph *Graph) addNode(n INode) {
	graph.nodesMu.Lock()
	defer graph.nodesMu.Unlock()

	nn := n.Node()
	if _, exists := graph.nodes[nn.id]; exists {
		return
	}
	nn.graph = graph
	graph.numNodes++
	nn.initializeFrom(n)
	graph.nodes[nn.id] = n
}

func (graph *Graph) removeNode(n INode) {
	graph.nodesMu.Lock()
	delete(graph.nodes, n.Node().id)
	graph.nodesMu.Unlock()
	graph.zeroNode(n)
}

func (graph *Graph) zeroNode(n INode) {
	nn := n.Node()
	if nn.IsInRecomputeHeap() {
		graph.recomputeHeap.remove(nn)
	}
	graph.numNodes--

	graph.handleAfterStabilizationMu.Lock()
	delete(graph.handleAfterStabilization, nn.id)
	graph.handleAfterStabilizationMu.Unlock()

	nn.setAt = 0
	nn.changedAt = 0
	nn.recomputedAt = 0
	nn.height = heightUnset
}

// addNewObserverToNode links a freshly-created observer record into n
// and, if n was not previously necessary, runs the became-necessary
// propagation (spec.md §4.5 "Observe").
func (graph *Graph) addNewObserverToNode(ctx context.Context, o *observer, n INode) error {
	wasNecessary := n.Node().IsNecessary()
	n.Node().linkObserver(o)
	if !wasNecessary {
		return graph.becameNecessary(ctx, n)
	}
	return nil
}

// unobserve implements Observer.Unobserve: the observer record is
// unlinked and transitioned to Unlinked; if that removes the last
// thing keeping the watched node necessary, the node (and any inputs
// that become unnecessary in turn) is removed from the graph.
func (graph *Graph) unobserve(ctx context.Context, o *observer) {
	if o.state == observerStateUnlinked {
		return
	}
	n := o.node
	o.disallow()
	n.Node().unlinkObserver(o)
	o.state = observerStateUnlinked
	graph.checkIfUnnecessary(n)
}

//
// stabilization (spec.md §5)
//

func (graph *Graph) ensureNotStabilizing(ctx context.Context) error {
	if atomic.LoadInt32(&graph.status) != StatusNotStabilizing {
		tracePrintf(ctx, graph.stabilizationNum, "stabilize: already stabilizing, cannot continue")
		return ErrAlreadyStabilizing
	}
	return nil
}

func (graph *Graph) stabilizeStart(ctx context.Context) {
	atomic.StoreInt32(&graph.status, StatusStabilizing)
	for _, handler := range graph.onStabilizationStart {
		handler(ctx)
	}
	graph.stabilizationStarted = time.Now()
	tracePrintf(ctx, graph.stabilizationNum, "stabilization starting")
}

func (graph *Graph) stabilizeEnd(ctx context.Context, err error) {
	defer func() {
		graph.stabilizationStarted = time.Time{}
		atomic.StoreInt32(&graph.status, StatusNotStabilizing)
	}()
	for _, handler := range graph.onStabilizationEnd {
		handler(ctx, graph.stabilizationStarted, err)
	}
	if err != nil {
		traceErrorf(ctx, graph.stabilizationNum, err, "stabilization failed (%v elapsed)", time.Since(graph.stabilizationStarted).Round(time.Microsecond))
	} else {
		tracePrintf(ctx, graph.stabilizationNum, "stabilization complete (%v elapsed)", time.Since(graph.stabilizationStarted).Round(time.Microsecond))
	}
	graph.stabilizeEndRunUpdateHandlers(ctx)
	graph.stabilizationNum++
	graph.stabilizeEndHandleSetDuringStabilization(ctx)
}

func (graph *Graph) stabilizeEndHandleSetDuringStabilization(ctx context.Context) {
	graph.setDuringStabilizationMu.Lock()
	defer graph.setDuringStabilizationMu.Unlock()
	for _, n := range graph.setDuringStabilization {
		_ = n.Node().maybeStabilize(ctx)
		graph.SetStale(n)
	}
	clear(graph.setDuringStabilization)
}

func (graph *Graph) stabilizeEndRunUpdateHandlers(ctx context.Context) {
	graph.handleAfterStabilizationMu.Lock()
	defer graph.handleAfterStabilizationMu.Unlock()

	atomic.StoreInt32(&graph.status, StatusRunningUpdateHandlers)
	now := time.Now()
	for id, handlers := range graph.handleAfterStabilization {
		_ = id
		runHandlerList(ctx, handlers, UpdateEventChanged, now)
	}
	clear(graph.handleAfterStabilization)
}

// recompute runs one node's computation for the current stabilization
// pass: cutoff check, then maybeStabilize, then queueing any
// now-stale necessary consumers (spec.md §4.2, §4.6).
func (graph *Graph) recompute(ctx context.Context, n INode) error {
	nn := n.Node()
	graph.numNodesRecomputed++
	nn.numRecomputes++
	nn.recomputedAt = graph.stabilizationNum

	shouldCutoff, err := nn.maybeCutoff(ctx)
	if err != nil {
		return newNodeError(nn, "cutoff", err)
	}
	if shouldCutoff {
		tracePrintf(ctx, graph.stabilizationNum, "stabilization saw active cutoff on %v", n)
		return nil
	}

	tracePrintf(ctx, graph.stabilizationNum, "stabilization is recomputing %v", n)
	graph.numNodesChanged++
	nn.numChanges++

	if err := nn.maybeStabilize(ctx); err != nil {
		nn.markComputed(err)
		return newNodeError(nn, "stabilize", err)
	}
	nn.markComputed(nil)

	nn.changedAt = graph.stabilizationNum
	if nn.numOnUpdateHandlers > 0 {
		graph.handleAfterStabilizationMu.Lock()
		graph.handleAfterStabilization[nn.id] = append(graph.handleAfterStabilization[nn.id], func(c context.Context, ev UpdateEvent, now time.Time) {
			runOnUpdateHandlers(c, nn, ev, now)
		})
		graph.handleAfterStabilizationMu.Unlock()
	}

	nn.IterateParents(func(_ int, parent INode) {
		pn := parent.Node()
		if pn.IsNecessary() && pn.IsStale() && !pn.IsInRecomputeHeap() {
			graph.recomputeHeap.add(pn)
		}
	})
	return nil
}
