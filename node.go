package incr

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
)

// heightUnset is the sentinel value for height, heightInRecomputeHeap,
// and heightInAdjustHeightsHeap meaning "not in that state" (spec.md
// §3: "height -- ... value -1 when not necessary"; "-1 iff not in
// that heap" for the two heap-membership fields).
const heightUnset = -1

// INode is the type-erased view of a node every combinator
// implements; it is, itself, the "packed node" described in spec.md
// §4.1/§9 (a packed node is simply an INode whose value type parameter
// the holder never reads).
type INode interface {
	Node() *Node
}

// Incr is a typed node producing a value of type A.
type Incr[A any] interface {
	INode
	Value() A
}

// IStabilize is implemented by combinators that compute a value
// during stabilization. Detected by interface-sniffing, the same way
// the teacher detects ICutoff and IAlways.
type IStabilize interface {
	Stabilize(ctx context.Context) error
}

// ICutoff is implemented by combinators that supply their own cutoff
// predicate (spec.md §3 "cutoff").
type ICutoff interface {
	Cutoff(ctx context.Context) (bool, error)
}

// IAlways is implemented by combinators that are always considered
// stale once necessary, regardless of parent change times.
type IAlways interface {
	Always()
}

// IBindMain is implemented by the primary node of a Bind (spec.md
// §4.1 "Bind_main"); the Graph needs this seam to invalidate a bind's
// dynamically-bound subgraph when the bind itself is invalidated.
type IBindMain interface {
	INode
	invalidateBind(ctx context.Context) error
}

// NewNode returns a freshly allocated, Uninitialized node. Callers
// must call SetKind (directly, or via one of the Node-mutating helpers
// combinators use) before the node is linked into a graph; any
// behavioral query against an Uninitialized node is a contract
// violation (spec.md §4.1, §4.9).
func NewNode() *Node {
	n := &Node{
		id:                        NewIdentifier(),
		kind:                      leafKind{id: KindUninitialized},
		kindID:                    KindUninitialized,
		height:                    heightUnset,
		heightInRecomputeHeap:     heightUnset,
		heightInAdjustHeightsHeap: heightUnset,
	}
	if KeepNodeCreationBacktrace() {
		n.creationBacktrace = errors.New("node created here")
	}
	return n
}

// Node is the common, value-type-erased metadata for any node in the
// computation graph (spec.md §3). The node's value itself lives on
// the typed combinator that embeds *Node (mapIncr[A], varIncr[A], ...)
// because Go generics cannot erase a type parameter from a struct
// field the way the source language's existential types can; Node
// instead tracks presence/absence of a value (hasValue, valueErr) so
// that predicates like is_stale and invariant 5 ("if the node is
// valid and not stale, value_opt is present") can be checked without
// knowing A. See DESIGN.md for the full rationale.
type Node struct {
	id Identifier

	kind   Kind
	kindID KindID

	hasValue bool
	valueErr error

	recomputedAt StabilizationNum
	changedAt    StabilizationNum
	setAt        StabilizationNum
	boundAt      StabilizationNum

	numOnUpdateHandlers int

	// parent storage: one inline slot (parent0) plus a dynamically
	// grown array (parent1), doubling from an effective capacity of 1
	// (spec.md §4.4 "Growth policy"). The same parent may occupy more
	// than one logical slot (e.g. Map2(n, n, ...)).
	parentCap  int
	parent0    INode
	parent1    []INode
	numParents int

	// childIndexInParentAt[i], for parent slot i, is the index at
	// which this node appears in that parent's child list
	// (my_child_index_in_parent_at_index, spec.md §3 invariant 9).
	// Its length tracks parentCap, not numParents.
	childIndexInParentAt []int

	// parentIndexInChildAt[i], for child slot i of this node's own
	// kind, is the index at which this node appears in that child's
	// parent list (my_parent_index_in_child_at_index, spec.md §3
	// invariant 8). Sized by kind.MaxNumChildren(), reset by SetKind.
	parentIndexInChildAt []int

	createdIn       Scope
	nextInSameScope INode

	height int

	heightInRecomputeHeap int
	prevInRecomputeHeap   *Node
	nextInRecomputeHeap   *Node

	heightInAdjustHeightsHeap int
	nextInAdjustHeightsHeap   *Node

	observersHead *observer

	isInHandleAfterStabilization bool

	onUpdateHandlers []OnUpdateHandler

	forceNecessary bool

	always bool

	graph *Graph
	label string

	userInfo          any
	metadata          any
	creationBacktrace error

	numRecomputes uint64
	numChanges    uint64

	cutoff    func(ctx context.Context) (bool, error)
	stabilize func(ctx context.Context) error
}

// ID returns the node's process-unique identifier.
func (n *Node) ID() Identifier { return n.id }

// Kind returns the node's current kind.
func (n *Node) Kind() Kind { return n.kind }

// KindID returns the node's current kind tag.
func (n *Node) KindID() KindID { return n.kindID }

// Label returns the descriptive label for the node, or "" if unset.
func (n *Node) Label() string { return n.label }

// SetLabel sets a descriptive label on the node, used in diagnostics
// and DOT export.
func (n *Node) SetLabel(label string) { n.label = label }

// Metadata returns user-assignable metadata.
func (n *Node) Metadata() any { return n.metadata }

// SetMetadata sets user-assignable metadata.
func (n *Node) SetMetadata(md any) { n.metadata = md }

// UserInfo returns the diagnostic annotation set via SetUserInfo.
func (n *Node) UserInfo() any { return n.userInfo }

// SetUserInfo sets a diagnostic annotation (spec.md §3 "user_info").
func (n *Node) SetUserInfo(info any) { n.userInfo = info }

// Height returns the node's current height, or -1 if not necessary.
func (n *Node) Height() int { return n.height }

// Graph returns the graph this node is attached to, or nil.
func (n *Node) Graph() *Graph { return n.graph }

// CreatedIn returns the scope the node was created in.
func (n *Node) CreatedIn() Scope { return n.createdIn }

// RecomputedAt returns the stabilization number of the last pass in
// which this node's computation function ran.
func (n *Node) RecomputedAt() StabilizationNum { return n.recomputedAt }

// ChangedAt returns the stabilization number of the last pass in
// which the value was considered changed (cutoff did not fire).
func (n *Node) ChangedAt() StabilizationNum { return n.changedAt }

// NumOnUpdateHandlers returns the cached count described by spec.md
// invariant 7.
func (n *Node) NumOnUpdateHandlers() int { return n.numOnUpdateHandlers }

// NumParents returns the count of live parent entries.
func (n *Node) NumParents() int { return n.numParents }

// Stats returns (recomputes, changes) counters for diagnostics.
func (n *Node) Stats() (recomputes, changes uint64) { return n.numRecomputes, n.numChanges }

// String renders a short diagnostic label, e.g. "map_n[a1b2c3d4]@3".
func (n *Node) String() string {
	if n.label != "" {
		return fmt.Sprintf("%s[%s]:%s@%d", n.kindID, n.id.Short(), n.label, n.height)
	}
	return fmt.Sprintf("%s[%s]@%d", n.kindID, n.id.Short(), n.height)
}

//
// value bookkeeping (see type doc for why this isn't value_opt directly)
//

// HasValue reports whether the node has ever produced a value.
func (n *Node) HasValue() bool { return n.hasValue }

// markComputed records that the combinator produced a value (or
// failed to) this pass; Graph.recompute calls it after the typed
// wrapper's Stabilize returns.
func (n *Node) markComputed(err error) {
	n.valueErr = err
	if err == nil {
		n.hasValue = true
	}
}

// ValueErr returns the error from the most recent computation, if any.
func (n *Node) ValueErr() error { return n.valueErr }

//
// Kind mutation (spec.md §6 "set_kind")
//

// SetKind reinitializes the node to a new kind, resetting
// parentIndexInChildAt to -1 of length newKind.MaxNumChildren(). This
// is how a node becomes Invalid, and how Bind/If/Join rewire which
// combinator a change-sentinel's main node currently is.
func (n *Node) SetKind(newKind Kind) {
	n.kind = newKind
	n.kindID = newKind.KindID()
	size := newKind.MaxNumChildren()
	n.parentIndexInChildAt = make([]int, size)
	for i := range n.parentIndexInChildAt {
		n.parentIndexInChildAt[i] = heightUnset
	}
}

//
// Predicates (spec.md §4.2, §4.3, §6)
//

// IsValid returns false only once the node's kind is Invalid.
func (n *Node) IsValid() bool { return n.kindID != KindInvalid }

// IsConst returns true for Const-kind nodes.
func (n *Node) IsConst() bool { return n.kindID == KindConst }

// IsNecessary returns true if the node has a non-negative height (on
// some path to an observer) or has been force-marked necessary during
// a transient re-parenting operation (spec.md §3 "force_necessary").
func (n *Node) IsNecessary() bool {
	return n.height != heightUnset || n.forceNecessary
}

// IsInRecomputeHeap reports recompute-heap membership.
func (n *Node) IsInRecomputeHeap() bool { return n.heightInRecomputeHeap != heightUnset }

// IsInAdjustHeightsHeap reports adjust-heights-heap membership.
func (n *Node) IsInAdjustHeightsHeap() bool { return n.heightInAdjustHeightsHeap != heightUnset }

// NeedsToBeComputed implements spec.md invariant 1's right-hand side:
// necessary and stale.
func (n *Node) NeedsToBeComputed() bool {
	return n.IsNecessary() && n.IsStale()
}

// IsStale implements spec.md §4.2.
func (n *Node) IsStale() bool {
	switch n.kindID {
	case KindUninitialized:
		contractViolation(newNodeError(n, "is_stale on Uninitialized node", ErrUninitializedNode))
		return false
	case KindInvalid:
		return false
	case KindVar:
		return n.setAt.After(n.recomputedAt)
	default:
		if n.always && !n.recomputedAt.IsNone() {
			return true
		}
		if n.kindID.isStructurallyStaticLeaf() {
			return n.recomputedAt.IsNone()
		}
		if n.recomputedAt.IsNone() {
			return true
		}
		if n.boundAt.After(n.recomputedAt) {
			return true
		}
		stale := false
		n.kind.EachChild(func(_ int, c INode) {
			if stale {
				return
			}
			if c.Node().changedAt.After(n.recomputedAt) {
				stale = true
			}
		})
		return stale
	}
}

// ShouldBeInvalidated implements spec.md §4.3, preserving the
// asymmetry called out in DESIGN NOTES §9: Bind_main/If_then_else/
// Join_main are invalidated only by their own change-sentinel child
// going invalid, never by an arbitrary other child (e.g. a
// restructured-away rhs) going invalid.
func (n *Node) ShouldBeInvalidated() bool {
	switch n.kindID {
	case KindUninitialized:
		contractViolation(newNodeError(n, "should_be_invalidated on Uninitialized node", ErrUninitializedNode))
		return false
	case KindInvalid:
		return false
	case KindConst, KindVar, KindAt, KindAtIntervals, KindSnapshot, KindStepFunction:
		return false
	case KindBindLHSChange, KindIfTestChange, KindJoinLHSChange:
		if wk, ok := n.kind.(watchedChildKind); ok {
			if watched := wk.WatchedChild(); watched != nil {
				return !watched.Node().IsValid()
			}
		}
		return false
	case KindBindMain, KindIfThenElse, KindJoinMain:
		if mk, ok := n.kind.(mainNodeKind); ok {
			if sentinel := mk.ChangeSentinel(); sentinel != nil {
				return !sentinel.Node().IsValid()
			}
		}
		return false
	default:
		return n.HasInvalidChild()
	}
}

// HasInvalidChild returns true if any current child of this node is
// invalid (spec.md §4.3, §6).
func (n *Node) HasInvalidChild() bool {
	found := false
	n.kind.EachChild(func(_ int, c INode) {
		if found {
			return
		}
		if !c.Node().IsValid() {
			found = true
		}
	})
	return found
}

// HasChild returns true if id appears among this node's current children.
func (n *Node) HasChild(id Identifier) bool {
	found := false
	n.kind.EachChild(func(_ int, c INode) {
		if found {
			return
		}
		if c.Node().id == id {
			found = true
		}
	})
	return found
}

// HasParent returns true if id appears among this node's live parents.
func (n *Node) HasParent(id Identifier) bool {
	for i := 0; i < n.numParents; i++ {
		if p := n.parentAt(i); p != nil && p.Node().id == id {
			return true
		}
	}
	return false
}

// MaxNumChildren delegates to the current kind.
func (n *Node) MaxNumChildren() int { return n.kind.MaxNumChildren() }

// MaxNumParents returns the current parent array capacity.
func (n *Node) MaxNumParents() int { return n.parentCap }

// IterateChildren enumerates current children in index order.
func (n *Node) IterateChildren(visit func(index int, child INode)) {
	n.kind.EachChild(visit)
}

// IterateParents enumerates live parents in index order; order across
// calls is unspecified beyond that (spec.md §3 "Parent order is
// unobservable").
func (n *Node) IterateParents(visit func(index int, parent INode)) {
	for i := 0; i < n.numParents; i++ {
		visit(i, n.parentAt(i))
	}
}

// GetParent returns the parent at index, failing explicitly out of
// range (spec.md §4.9).
func (n *Node) GetParent(index int) (INode, error) {
	if index < 0 || index >= n.numParents {
		return nil, ErrParentIndexOutOfRange
	}
	return n.parentAt(index), nil
}

//
// parent array storage
//

func (n *Node) parentAt(i int) INode {
	if i == 0 {
		return n.parent0
	}
	return n.parent1[i-1]
}

func (n *Node) setParentAt(i int, v INode) {
	if i == 0 {
		n.parent0 = v
		return
	}
	n.parent1[i-1] = v
}

func (n *Node) clearParentAt(i int) {
	n.setParentAt(i, nil)
}

// growParentCapacity ensures the parent array (and its back-index
// shadow, childIndexInParentAt) can hold at least `required` logical
// slots, doubling from an effective starting capacity of 1 (spec.md
// §4.4 "Growth policy"): capacity 1 (parent0 only), then 2 (parent0 +
// one parent1 slot), then 4, 8, ...
func (n *Node) growParentCapacity(required int) {
	if n.parentCap >= required {
		return
	}
	newCap := n.parentCap
	if newCap == 0 {
		newCap = 1
	}
	for newCap < required {
		newCap *= 2
	}
	newParent1 := make([]INode, newCap-1)
	copy(newParent1, n.parent1)
	n.parent1 = newParent1

	newBackIdx := make([]int, newCap)
	copy(newBackIdx, n.childIndexInParentAt)
	for i := len(n.childIndexInParentAt); i < newCap; i++ {
		newBackIdx[i] = heightUnset
	}
	n.childIndexInParentAt = newBackIdx

	n.parentCap = newCap
}

// addParent links child as a parent-referencing edge of parent at the
// given child-side slot index (spec.md §4.4 "add_parent"). It grows
// the child's parent array if needed, appends at the end, and records
// both back-indices.
func addParent(child INode, parent INode, childIndex int) {
	cn := child.Node()
	pn := parent.Node()

	cn.growParentCapacity(cn.numParents + 1)
	slot := cn.numParents
	cn.setParentAt(slot, parent)
	cn.childIndexInParentAt[slot] = childIndex
	cn.numParents++

	if childIndex < len(pn.parentIndexInChildAt) {
		pn.parentIndexInChildAt[childIndex] = slot
	}
}

// removeParent unlinks the edge from child's parent array pointing at
// parent via the parent-side slot childIndex, using the swap-with-last
// algorithm from spec.md §4.4 so the operation stays O(1): the last
// live slot is moved into the removed slot's place, and the moved
// parent's own back-index (recorded under whatever child_index it
// occupies) is corrected to point at the new slot.
func removeParent(child INode, parent INode, childIndex int) {
	cn := child.Node()
	pn := parent.Node()

	removedSlot := -1
	if childIndex < len(pn.parentIndexInChildAt) {
		removedSlot = pn.parentIndexInChildAt[childIndex]
	}
	if removedSlot < 0 || removedSlot >= cn.numParents {
		// Fall back to a linear scan: two distinct child_index slots of
		// the same parent (e.g. Map2(n, n)) can race to the same
		// pn.parentIndexInChildAt entry only transiently; defend here.
		for i := 0; i < cn.numParents; i++ {
			if p := cn.parentAt(i); p != nil && p.Node().id == pn.id && cn.childIndexInParentAt[i] == childIndex {
				removedSlot = i
				break
			}
		}
	}
	if removedSlot < 0 {
		return
	}

	lastSlot := cn.numParents - 1
	if removedSlot != lastSlot {
		movedParent := cn.parentAt(lastSlot)
		movedChildIndex := cn.childIndexInParentAt[lastSlot]
		cn.setParentAt(removedSlot, movedParent)
		cn.childIndexInParentAt[removedSlot] = movedChildIndex
		if movedParent != nil {
			mpn := movedParent.Node()
			if movedChildIndex < len(mpn.parentIndexInChildAt) {
				mpn.parentIndexInChildAt[movedChildIndex] = removedSlot
			}
		}
	}
	cn.clearParentAt(lastSlot)
	cn.childIndexInParentAt[lastSlot] = heightUnset
	cn.numParents--

	if childIndex < len(pn.parentIndexInChildAt) {
		pn.parentIndexInChildAt[childIndex] = heightUnset
	}
}

//
// on-update handlers (spec.md §4.6)
//

// OnUpdate registers an update handler directly on this node. New
// handlers are prepended; spec.md §5's "reverse insertion order"
// falls out of draining the slice front-to-back.
func (n *Node) OnUpdate(fn OnUpdateHandler) {
	n.onUpdateHandlers = append([]OnUpdateHandler{fn}, n.onUpdateHandlers...)
	n.numOnUpdateHandlers++
}

// GetCutoff returns the node's cutoff delegate, or nil if none is set
// (the node behaves as NeverCutoff).
func (n *Node) GetCutoff() func(ctx context.Context) (bool, error) { return n.cutoff }

// SetCutoff installs a cutoff delegate.
func (n *Node) SetCutoff(fn func(ctx context.Context) (bool, error)) { n.cutoff = fn }

// maybeCutoff calls the cutoff delegate if set, otherwise reports no
// cutoff. spec.md §3 names physical-identity equality as the default;
// this package defaults to NeverCutoff instead, a deliberate divergence
// recorded in DESIGN.md, since Map's value type is unconstrained `any`
// and Go has no generic identity/equality operation over it without a
// comparable constraint.
func (n *Node) maybeCutoff(ctx context.Context) (bool, error) {
	if n.cutoff != nil {
		return n.cutoff(ctx)
	}
	return false, nil
}

// detectCutoff detects if gn implements ICutoff and caches the
// delegate, the same interface-sniffing idiom the teacher used for
// ICutoff/IAlways/IStabilize detection.
func (n *Node) detectCutoff(gn INode) {
	if typed, ok := gn.(ICutoff); ok {
		n.cutoff = typed.Cutoff
	}
}

// detectAlways detects if gn implements IAlways.
func (n *Node) detectAlways(gn INode) {
	_, n.always = gn.(IAlways)
}

// detectStabilize detects if gn implements IStabilize and caches the
// delegate the recompute hot path calls.
func (n *Node) detectStabilize(gn INode) {
	if typed, ok := gn.(IStabilize); ok {
		n.stabilize = typed.Stabilize
	}
}

// initializeFrom runs every interface-sniffing detector against gn; it
// is called once, when a node is first linked into a graph.
func (n *Node) initializeFrom(gn INode) {
	n.detectCutoff(gn)
	n.detectAlways(gn)
	n.detectStabilize(gn)
}

// maybeStabilize calls the cached Stabilize delegate if the
// combinator implements IStabilize, otherwise it is a no-op (a node
// with no Stabilize method never changes on its own, e.g. Const).
func (n *Node) maybeStabilize(ctx context.Context) error {
	if n.stabilize != nil {
		return n.stabilize(ctx)
	}
	return nil
}

//
// identity (spec.md §6 "same")
//

// Same reports identity (not value) equality between two nodes.
func Same(a, b INode) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Node().id == b.Node().id
}

// contractViolation aborts on a structural bug. Unlike user-visible
// NodeError failures (spec.md §7.2), these never occur in correct
// callers and so are not modeled as regular errors (spec.md §7.1).
func contractViolation(err error) {
	panic(err)
}
