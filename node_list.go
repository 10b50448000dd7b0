package incr

// nodeListNode is a single link in a singly-linked list of INode,
// the "Packed Node List" grounding referenced in DESIGN.md: since
// every combinator already implements INode (which erases its value
// type parameter), a packed list is just a list of INode — no
// separate box type is required, unlike the teacher's key/value
// `list[K,V]` (see other_examples wcharczuk recompute_heap.go).
type nodeListNode struct {
	value INode
	next  *nodeListNode
}

// nodeList is a minimal singly-linked list: an ordered, appendable
// collection of nodes without per-node membership bookkeeping. No
// code in the package uses it at present (Dot keeps its roots in a
// plain slice). Hot paths that need O(1) removal (the recompute heap,
// a node's observer list, a node's same-scope list) use intrusive
// pointers on Node itself.
type nodeList struct {
	head *nodeListNode
	tail *nodeListNode
	size int
}

func newNodeList() *nodeList {
	return &nodeList{}
}

// Push appends nodes to the tail of the list, preserving call order.
func (l *nodeList) Push(nodes ...INode) {
	for _, n := range nodes {
		item := &nodeListNode{value: n}
		if l.tail == nil {
			l.head = item
			l.tail = item
		} else {
			l.tail.next = item
			l.tail = item
		}
		l.size++
	}
}

// Each walks the list head to tail.
func (l *nodeList) Each(visit func(INode)) {
	for cur := l.head; cur != nil; cur = cur.next {
		visit(cur.value)
	}
}

// Values materializes the list contents as a slice.
func (l *nodeList) Values() []INode {
	out := make([]INode, 0, l.size)
	l.Each(func(n INode) {
		out = append(out, n)
	})
	return out
}

// IsEmpty reports whether the list has no elements.
func (l *nodeList) IsEmpty() bool { return l.size == 0 }

// Len returns the number of elements in the list.
func (l *nodeList) Len() int { return l.size }
