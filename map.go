package incr

import "context"

// mapIncr is the single backing type for Map1 through Map9 and MapN
// (spec.md §4.1 "Map"): all of them collapse to KindMapN, a fixed
// list of input nodes plus an erased closure invoked over their
// current values during Stabilize. Distinguishing Map1 from Map9 at
// the type level would balloon the surface for no behavioral
// difference; the closure itself is where the arity lives.
type mapIncr[A any] struct {
	n           *Node
	inputs      []INode
	value       A
	recomputeFn func(ctx context.Context) (A, error)
}

func newMapIncr[A any](scope Scope, inputs []INode, fn func(ctx context.Context) (A, error)) *mapIncr[A] {
	m := &mapIncr[A]{inputs: inputs, recomputeFn: fn}
	m.n = NewNode()
	m.n.SetKind(m)
	m.n.createdIn = scope
	return m
}

func (m *mapIncr[A]) Node() *Node { return m.n }
func (m *mapIncr[A]) Value() A    { return m.value }

func (m *mapIncr[A]) Stabilize(ctx context.Context) error {
	v, err := m.recomputeFn(ctx)
	if err != nil {
		return err
	}
	m.value = v
	return nil
}

func (m *mapIncr[A]) KindID() KindID      { return KindMapN }
func (m *mapIncr[A]) MaxNumChildren() int { return len(m.inputs) }
func (m *mapIncr[A]) ChildAt(index int) (INode, bool) {
	if index < 0 || index >= len(m.inputs) {
		return nil, false
	}
	return m.inputs[index], true
}
func (m *mapIncr[A]) EachChild(visit func(index int, child INode)) {
	for i, c := range m.inputs {
		visit(i, c)
	}
}

// Map1 applies fn to a's current value whenever a changes.
func Map1[A, B any](scope Scope, a Incr[A], fn func(A) B) Incr[B] {
	return newMapIncr[B](scope, []INode{a}, func(context.Context) (B, error) {
		return fn(a.Value()), nil
	})
}

// Map2 applies fn to a and b's current values whenever either changes.
func Map2[A, B, C any](scope Scope, a Incr[A], b Incr[B], fn func(A, B) C) Incr[C] {
	return newMapIncr[C](scope, []INode{a, b}, func(context.Context) (C, error) {
		return fn(a.Value(), b.Value()), nil
	})
}

// Map3 applies fn to a, b, and c's current values whenever any changes.
func Map3[A, B, C, D any](scope Scope, a Incr[A], b Incr[B], c Incr[C], fn func(A, B, C) D) Incr[D] {
	return newMapIncr[D](scope, []INode{a, b, c}, func(context.Context) (D, error) {
		return fn(a.Value(), b.Value(), c.Value()), nil
	})
}

// MapErr is like Map1 but fn may fail; a returned error aborts the
// current stabilization pass with a NodeError wrapping it (spec.md
// §7.2).
func MapErr[A, B any](scope Scope, a Incr[A], fn func(A) (B, error)) Incr[B] {
	return newMapIncr[B](scope, []INode{a}, func(context.Context) (B, error) {
		return fn(a.Value())
	})
}

// MapN applies fn to the current values of every input in inputs; it
// is the open-arity escape hatch for Map1..Map9 (spec.md §4.1 "MapN").
func MapN[A, B any](scope Scope, fn func([]A) B, inputs ...Incr[A]) Incr[B] {
	children := make([]INode, len(inputs))
	for i, in := range inputs {
		children[i] = in
	}
	return newMapIncr[B](scope, children, func(context.Context) (B, error) {
		values := make([]A, len(inputs))
		for i, in := range inputs {
			values[i] = in.Value()
		}
		return fn(values), nil
	})
}
