package incr

import "context"

// ArrayFold folds over a dynamic, ordered slice of same-typed input
// nodes, recomputing init folded left-to-right through fn over every
// input's current value each time it recomputes (spec.md §4.1
// "Array_fold"). Inputs can be added or removed after construction
// with AddInput/RemoveInput, restructuring the graph the same way
// Bind's rhs does, just without an intervening change-sentinel (there
// is no single "which one changed" question to answer; a fold always
// re-reads every current input).
func ArrayFold[A, B any](scope Scope, inputs []Incr[A], init B, fn func(acc B, v A) B) Incr[B] {
	f := &arrayFoldIncr[A, B]{init: init, fn: fn}
	for _, in := range inputs {
		f.inputs = append(f.inputs, in)
	}
	f.n = NewNode()
	f.n.SetKind(f)
	f.n.createdIn = scope
	return f
}

// UnorderedArrayFold is like ArrayFold but fn is expected to be
// commutative and associative; this implementation still performs a
// full fold on every recompute (no incremental add/remove delta
// bookkeeping), so the distinction from ArrayFold is
// presently one of documented intent rather than algorithmic
// complexity.
func UnorderedArrayFold[A, B any](scope Scope, inputs []Incr[A], init B, fn func(acc B, v A) B) Incr[B] {
	f := ArrayFold(scope, inputs, init, fn)
	f.(*arrayFoldIncr[A, B]).unordered = true
	return f
}

type arrayFoldIncr[A, B any] struct {
	n         *Node
	inputs    []Incr[A]
	init      B
	fn        func(acc B, v A) B
	value     B
	unordered bool
}

func (f *arrayFoldIncr[A, B]) Node() *Node { return f.n }
func (f *arrayFoldIncr[A, B]) Value() B    { return f.value }

func (f *arrayFoldIncr[A, B]) Stabilize(context.Context) error {
	acc := f.init
	for _, in := range f.inputs {
		acc = f.fn(acc, in.Value())
	}
	f.value = acc
	return nil
}

func (f *arrayFoldIncr[A, B]) KindID() KindID {
	if f.unordered {
		return KindUnorderedArrayFold
	}
	return KindArrayFold
}
func (f *arrayFoldIncr[A, B]) MaxNumChildren() int { return len(f.inputs) }
func (f *arrayFoldIncr[A, B]) ChildAt(index int) (INode, bool) {
	if index < 0 || index >= len(f.inputs) {
		return nil, false
	}
	return f.inputs[index], true
}
func (f *arrayFoldIncr[A, B]) EachChild(visit func(index int, child INode)) {
	for i, c := range f.inputs {
		visit(i, c)
	}
}

// AddInput appends a new input and, if the fold is already necessary
// within its graph, links the edge immediately so the new input
// participates in the very next stabilization.
func (f *arrayFoldIncr[A, B]) AddInput(ctx context.Context, in Incr[A]) error {
	idx := len(f.inputs)
	f.inputs = append(f.inputs, in)
	if f.n.IsNecessary() && f.n.graph != nil {
		return f.n.graph.addChild(ctx, in, f, idx)
	}
	return nil
}

// RemoveInput removes the first input matching id, unlinking the
// corresponding graph edge if the fold is necessary.
func (f *arrayFoldIncr[A, B]) RemoveInput(id Identifier) {
	for i, in := range f.inputs {
		if in.Node().id != id {
			continue
		}
		if f.n.IsNecessary() && f.n.graph != nil {
			removeParent(in, f, i)
			f.n.graph.checkIfUnnecessary(in)
		}
		f.inputs = append(f.inputs[:i], f.inputs[i+1:]...)
		if f.n.IsNecessary() && f.n.graph != nil {
			f.n.graph.SetStale(f)
		}
		return
	}
}
