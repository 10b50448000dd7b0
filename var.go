package incr

import "context"

// VarIncr is the public interface for a settable leaf node (spec.md
// §4.1 "Var"): the only combinator a caller may mutate directly,
// rather than recomputing from its inputs.
type VarIncr[A any] interface {
	Incr[A]
	// Set assigns a new value. If called while the graph is mid
	// stabilization, the assignment is deferred until the current pass
	// finishes (spec.md §5 "Set during stabilization") rather than
	// racing the in-progress recompute.
	Set(value A)
}

// Var returns a new settable leaf node holding initial.
func Var[A any](scope Scope, initial A) VarIncr[A] {
	n := NewNode()
	v := &varIncr[A]{n: n, value: initial}
	n.SetKind(v)
	n.createdIn = scope
	n.hasValue = true
	return v
}

type varIncr[A any] struct {
	n     *Node
	value A

	pending    A
	hasPending bool
}

func (v *varIncr[A]) Node() *Node { return v.n }
func (v *varIncr[A]) Value() A    { return v.value }

func (v *varIncr[A]) Set(newValue A) {
	g := v.n.graph
	if g != nil && g.IsStabilizing() {
		g.setDuringStabilizationMu.Lock()
		v.pending = newValue
		v.hasPending = true
		g.setDuringStabilization[v.n.id] = v
		g.setDuringStabilizationMu.Unlock()
		return
	}
	v.value = newValue
	if g == nil {
		v.n.setAt++
		return
	}
	g.SetStale(v)
}

// Stabilize applies a value deferred by Set during stabilization.
func (v *varIncr[A]) Stabilize(_ context.Context) error {
	if v.hasPending {
		v.value = v.pending
		v.hasPending = false
	}
	return nil
}

func (v *varIncr[A]) KindID() KindID                         { return KindVar }
func (v *varIncr[A]) MaxNumChildren() int                    { return 0 }
func (v *varIncr[A]) ChildAt(int) (INode, bool)              { return nil, false }
func (v *varIncr[A]) EachChild(func(index int, child INode)) {}
