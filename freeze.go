package incr

import "context"

// Freeze watches input until shouldFreeze reports true for its
// current value; after that, the returned node keeps that value
// forever and its cutoff always suppresses further propagation,
// regardless of how input continues to change (spec.md §4.1 "Freeze").
func Freeze[A any](scope Scope, input Incr[A], shouldFreeze func(A) bool) Incr[A] {
	f := &freezeIncr[A]{input: input, shouldFreeze: shouldFreeze}
	f.n = NewNode()
	f.n.SetKind(f)
	f.n.createdIn = scope
	return f
}

type freezeIncr[A any] struct {
	n            *Node
	input        Incr[A]
	shouldFreeze func(A) bool
	value        A
	frozen       bool
}

func (f *freezeIncr[A]) Node() *Node { return f.n }
func (f *freezeIncr[A]) Value() A    { return f.value }

// Cutoff implements ICutoff: once frozen, the value never propagates
// again, no matter what input does next.
func (f *freezeIncr[A]) Cutoff(context.Context) (bool, error) {
	return f.frozen, nil
}

func (f *freezeIncr[A]) Stabilize(context.Context) error {
	if f.frozen {
		return nil
	}
	current := f.input.Value()
	f.value = current
	if f.shouldFreeze(current) {
		f.frozen = true
	}
	return nil
}

func (f *freezeIncr[A]) KindID() KindID      { return KindFreeze }
func (f *freezeIncr[A]) MaxNumChildren() int { return 1 }
func (f *freezeIncr[A]) ChildAt(index int) (INode, bool) {
	if index != 0 {
		return nil, false
	}
	return f.input, true
}
func (f *freezeIncr[A]) EachChild(visit func(index int, child INode)) {
	visit(0, f.input)
}
