package incr

import "fmt"

// recomputeHeap is the bucketed, height-ordered queue of necessary,
// stale nodes (spec.md §4.7 "Recompute heap"). Bucket i holds every
// currently-queued node whose height equals i, linked through the
// node's own prevInRecomputeHeap/nextInRecomputeHeap intrusive
// pointers so insertion, removal, and membership tests are all O(1) —
// the same shape as the teacher's map-based buckets in
// recompute_heap.go, generalized from map[int]*nodeSet to a directly
// indexed, growable []*Node bucket-head array so height lookups don't
// pay a map hash on every stabilization pass.
type recomputeHeap struct {
	buckets   []*Node // buckets[h] is the head of height h's list, or nil
	minHeight int
	maxHeight int
	size      int
}

func newRecomputeHeap(initialCapacity int) *recomputeHeap {
	if initialCapacity < 1 {
		initialCapacity = 1
	}
	return &recomputeHeap{
		buckets:   make([]*Node, initialCapacity),
		minHeight: initialCapacity,
		maxHeight: -1,
	}
}

// Len returns the total number of queued nodes across all buckets.
func (h *recomputeHeap) Len() int { return h.size }

// IsEmpty reports whether the heap has no queued nodes.
func (h *recomputeHeap) IsEmpty() bool { return h.size == 0 }

// ensureCapacity grows the bucket array so that index `height` is valid.
func (h *recomputeHeap) ensureCapacity(height int) {
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

// add inserts n into its height's bucket. n must not already be in
// the heap (spec.md invariant: a node appears in at most one
// recompute-heap bucket at a time).
func (h *recomputeHeap) add(n *Node) {
	height := n.height
	if height < 0 {
		panic(fmt.Sprintf("incr: cannot add node %s to recompute heap with unset height", n.id.Short()))
	}
	h.ensureCapacity(height)

	head := h.buckets[height]
	n.nextInRecomputeHeap = head
	n.prevInRecomputeHeap = nil
	if head != nil {
		head.prevInRecomputeHeap = n
	}
	h.buckets[height] = n
	n.heightInRecomputeHeap = height
	h.size++

	if height < h.minHeight {
		h.minHeight = height
	}
	if height > h.maxHeight {
		h.maxHeight = height
	}
}

// remove unlinks n from its current bucket in O(1).
func (h *recomputeHeap) remove(n *Node) {
	height := n.heightInRecomputeHeap
	if height < 0 {
		return
	}
	if n.prevInRecomputeHeap != nil {
		n.prevInRecomputeHeap.nextInRecomputeHeap = n.nextInRecomputeHeap
	} else if height < len(h.buckets) && h.buckets[height] == n {
		h.buckets[height] = n.nextInRecomputeHeap
	}
	if n.nextInRecomputeHeap != nil {
		n.nextInRecomputeHeap.prevInRecomputeHeap = n.prevInRecomputeHeap
	}
	n.prevInRecomputeHeap = nil
	n.nextInRecomputeHeap = nil
	n.heightInRecomputeHeap = heightUnset
	h.size--
}

// fixupHeight removes and re-adds n at its (presumably just-changed)
// current node.height. Used when adjust_heights raises a node's
// height while it is already queued.
func (h *recomputeHeap) fixupHeight(n *Node) {
	if n.heightInRecomputeHeap == heightUnset {
		return
	}
	h.remove(n)
	h.add(n)
}

// removeMin pops and returns one node from the lowest non-empty
// bucket, or nil if the heap is empty. Ties within a bucket are
// resolved LIFO (most recently queued first), which is an
// unobservable implementation detail per spec.md §5 ("processing
// order among equal-height nodes is unspecified").
func (h *recomputeHeap) removeMin() *Node {
	if h.size == 0 {
		return nil
	}
	for h.minHeight <= h.maxHeight {
		if h.minHeight >= len(h.buckets) {
			h.minHeight++
			continue
		}
		if head := h.buckets[h.minHeight]; head != nil {
			h.remove(head)
			return head
		}
		h.minHeight++
	}
	return nil
}

// minHeightInHeap returns the height of the lowest non-empty bucket,
// or -1 if empty. Nothing in the package calls it; Stabilize drains
// the heap through removeMin.
func (h *recomputeHeap) minHeightInHeap() int {
	if h.size == 0 {
		return heightUnset
	}
	for height := h.minHeight; height <= h.maxHeight; height++ {
		if height < len(h.buckets) && h.buckets[height] != nil {
			h.minHeight = height
			return height
		}
	}
	return heightUnset
}

// each visits every queued node; order across buckets is ascending
// height, within a bucket is list order. It is a diagnostics helper;
// neither the stabilization hot path nor stats.go or dot.go call it.
func (h *recomputeHeap) each(visit func(*Node)) {
	for height := 0; height < len(h.buckets); height++ {
		for cur := h.buckets[height]; cur != nil; {
			next := cur.nextInRecomputeHeap
			visit(cur)
			cur = next
		}
	}
}
