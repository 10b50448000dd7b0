package incr

import "context"

// Cutoff wraps input so that, after its value is recomputed, fn
// decides whether the new value is "equal enough" to the last one to
// suppress propagation to consumers (spec.md §3 "cutoff", §4.1). This
// is the same KindMapN shape as Map1 — a single input, a value copy —
// with an ICutoff implementation layered on top, detected the same
// interface-sniffing way any combinator's cutoff is.
func Cutoff[A any](scope Scope, input Incr[A], fn CutoffFunc[A]) Incr[A] {
	c := &cutoffIncr[A]{input: input, fn: fn}
	c.n = NewNode()
	c.n.SetKind(c)
	c.n.createdIn = scope
	return c
}

type cutoffIncr[A any] struct {
	n       *Node
	input   Incr[A]
	fn      CutoffFunc[A]
	value   A
	hasPrev bool
}

func (c *cutoffIncr[A]) Node() *Node { return c.n }
func (c *cutoffIncr[A]) Value() A    { return c.value }

// Cutoff implements ICutoff: the first recompute never cuts off
// (there is no previous value to compare against).
func (c *cutoffIncr[A]) Cutoff(context.Context) (bool, error) {
	if !c.hasPrev {
		return false, nil
	}
	return c.fn(c.value, c.input.Value()), nil
}

func (c *cutoffIncr[A]) Stabilize(context.Context) error {
	c.value = c.input.Value()
	c.hasPrev = true
	return nil
}

func (c *cutoffIncr[A]) KindID() KindID      { return KindMapN }
func (c *cutoffIncr[A]) MaxNumChildren() int { return 1 }
func (c *cutoffIncr[A]) ChildAt(index int) (INode, bool) {
	if index != 0 {
		return nil, false
	}
	return c.input, true
}
func (c *cutoffIncr[A]) EachChild(visit func(index int, child INode)) {
	visit(0, c.input)
}
