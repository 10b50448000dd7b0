package incr

// adjustHeightsHeap is the auxiliary queue used while raising heights
// ahead of a height-violating edge (spec.md §4.4 "adjust_heights"):
// when adding a parent/child edge would leave parent.height <=
// child.height, every transitively-affected node's height must be
// raised, in height order, before the new edge is safe to add and
// before the recompute heap's height-ordering invariant can be relied
// on again. This type does not appear in the teacher's package (the
// teacher's computePseudoHeight recomputes depth-first on every
// query instead), so it is grounded on the recompute heap's own
// bucketed-queue shape, reused here for a second, transient purpose.
type adjustHeightsHeap struct {
	buckets   []*Node
	minHeight int
	maxHeight int
	size      int

	// maxHeightSeen bounds the heights this heap (and the graph's
	// recompute heap) must be able to hold; it only ever grows.
	maxHeightSeen int
}

func newAdjustHeightsHeap(initialCapacity int) *adjustHeightsHeap {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	return &adjustHeightsHeap{
		buckets:   make([]*Node, initialCapacity),
		minHeight: initialCapacity,
		maxHeight: -1,
	}
}

func (h *adjustHeightsHeap) IsEmpty() bool { return h.size == 0 }

func (h *adjustHeightsHeap) ensureCapacity(height int) {
	if height < len(h.buckets) {
		return
	}
	newCap := len(h.buckets)
	if newCap == 0 {
		newCap = 1
	}
	for newCap <= height {
		newCap *= 2
	}
	grown := make([]*Node, newCap)
	copy(grown, h.buckets)
	h.buckets = grown
}

// add queues n, keyed by its height at the moment of insertion. A
// node already present is not re-added (set semantics: a node is
// processed once per adjust_heights pass, per spec.md §4.4).
func (h *adjustHeightsHeap) add(n *Node) {
	if n.IsInAdjustHeightsHeap() {
		return
	}
	height := n.height
	if height < 0 {
		height = 0
	}
	h.ensureCapacity(height)

	n.nextInAdjustHeightsHeap = h.buckets[height]
	h.buckets[height] = n
	n.heightInAdjustHeightsHeap = height
	h.size++

	if height < h.minHeight {
		h.minHeight = height
	}
	if height > h.maxHeight {
		h.maxHeight = height
	}
	if height > h.maxHeightSeen {
		h.maxHeightSeen = height
	}
}

// removeMin pops a node from the lowest-height bucket; callers process
// nodes in ascending height order so a node's new height is finalized
// before any node that might depend on it is visited.
func (h *adjustHeightsHeap) removeMin() *Node {
	if h.size == 0 {
		return nil
	}
	for h.minHeight <= h.maxHeight {
		if h.minHeight >= len(h.buckets) {
			h.minHeight++
			continue
		}
		if head := h.buckets[h.minHeight]; head != nil {
			h.buckets[h.minHeight] = head.nextInAdjustHeightsHeap
			head.nextInAdjustHeightsHeap = nil
			head.heightInAdjustHeightsHeap = heightUnset
			h.size--
			return head
		}
		h.minHeight++
	}
	return nil
}

// raiseHeight sets n's height to at least newHeight, fixing up its
// recompute-heap bucket if it is currently queued. It does not
// propagate to n's consumers; callers that just linked a brand-new
// edge and know no consumer could already be queued at a
// lower-than-required height (e.g. becameNecessaryRecursive, where n
// has no parents yet) can use this cheaper path instead of the full
// adjustHeights cascade.
func raiseHeight(rh *recomputeHeap, n *Node, newHeight int) error {
	if newHeight > maxSupportedHeight {
		return ErrCycle
	}
	if n.height >= newHeight {
		return nil
	}
	n.height = newHeight
	if n.IsInRecomputeHeap() {
		rh.fixupHeight(n)
	}
	return nil
}

// maxSupportedHeight bounds height growth as a crude cycle detector:
// a correctly-built DAG's height is bounded by its node count, so a
// height this large almost certainly means a cycle was introduced
// through an API misuse this package could not otherwise catch
// (spec.md §7.1 "linking these nodes would create a cycle").
const maxSupportedHeight = 1 << 20

// adjustHeights raises parent's height above child's, then cascades
// the raise through every downstream consumer whose height is no
// longer greater than one of its own (possibly just-raised) inputs,
// processing the affected set in ascending height order via ah so a
// node's final height is settled before any node that depends on it
// is visited (spec.md §4.4 "adjust_heights").
func adjustHeights(rh *recomputeHeap, ah *adjustHeightsHeap, child, parent INode) error {
	cn, pn := child.Node(), parent.Node()
	if err := raiseHeight(rh, pn, cn.height+1); err != nil {
		return err
	}
	ah.add(pn)

	for {
		n := ah.removeMin()
		if n == nil {
			break
		}
		propagateHeightToParents(rh, ah, n)
	}
	return nil
}

// propagateHeightToParents raises every parent (consumer) of n whose
// height does not already exceed n's, queueing each raised parent so
// its own consumers are checked in turn.
func propagateHeightToParents(rh *recomputeHeap, ah *adjustHeightsHeap, n *Node) {
	n.IterateParents(func(_ int, parent INode) {
		pn := parent.Node()
		if pn.height > n.height {
			return
		}
		if err := raiseHeight(rh, pn, n.height+1); err != nil {
			return
		}
		ah.add(pn)
	})
}
