package incr

import "context"

// Join flattens an incremental of incrementals into a single
// incremental that always tracks whichever inner node lhs currently
// points at (spec.md §4.1 "Join"). Unlike Bind, the inner incremental
// already exists somewhere else in the graph — Join just relinks
// which one it reads through, so like If it needs no Scope of its
// own.
func Join[A any](scope Scope, lhs Incr[Incr[A]]) Incr[A] {
	lc := &joinLHSChangeIncr[A]{lhs: lhs}
	lc.n = NewNode()
	lc.n.SetKind(lc)
	lc.n.createdIn = scope

	j := &joinIncr[A]{lhs: lhs, lhsChange: lc}
	j.n = NewNode()
	j.n.SetKind(j)
	j.n.createdIn = scope
	return j
}

type joinLHSChangeIncr[A any] struct {
	n   *Node
	lhs Incr[Incr[A]]
}

func (lc *joinLHSChangeIncr[A]) Node() *Node { return lc.n }

func (lc *joinLHSChangeIncr[A]) KindID() KindID      { return KindJoinLHSChange }
func (lc *joinLHSChangeIncr[A]) MaxNumChildren() int { return 1 }
func (lc *joinLHSChangeIncr[A]) ChildAt(index int) (INode, bool) {
	if index != 0 {
		return nil, false
	}
	return lc.lhs, true
}
func (lc *joinLHSChangeIncr[A]) EachChild(visit func(index int, child INode)) {
	visit(0, lc.lhs)
}
func (lc *joinLHSChangeIncr[A]) WatchedChild() INode { return lc.lhs }

// joinIncr is the Join_main node. Its children are its lhs_change
// sentinel at slot 0 and whichever inner incremental lhs currently
// holds at slot 1.
type joinIncr[A any] struct {
	n         *Node
	lhs       Incr[Incr[A]]
	lhsChange *joinLHSChangeIncr[A]
	inner     Incr[A]
	value     A
}

func (j *joinIncr[A]) Node() *Node { return j.n }

// Value reads through to the current inner incremental, so an inner
// node that is linked and first computed later in the same pass is
// seen; j.value is only the fallback while no inner is linked.
func (j *joinIncr[A]) Value() A {
	if j.inner != nil {
		return j.inner.Value()
	}
	return j.value
}

func (j *joinIncr[A]) KindID() KindID      { return KindJoinMain }
func (j *joinIncr[A]) MaxNumChildren() int { return 2 }
func (j *joinIncr[A]) ChildAt(index int) (INode, bool) {
	switch index {
	case 0:
		return j.lhsChange, true
	case 1:
		if j.inner == nil {
			return nil, false
		}
		return j.inner, true
	default:
		return nil, false
	}
}
func (j *joinIncr[A]) EachChild(visit func(index int, child INode)) {
	visit(0, j.lhsChange)
	if j.inner != nil {
		visit(1, j.inner)
	}
}
func (j *joinIncr[A]) ChangeSentinel() INode { return j.lhsChange }

func (j *joinIncr[A]) Stabilize(ctx context.Context) error {
	g := j.n.graph

	if j.lhsChange.n.changedAt == g.stabilizationNum || j.inner == nil {
		want := j.lhs.Value()
		if j.inner == nil || want == nil || j.inner.Node().id != want.Node().id {
			if j.inner != nil && j.n.IsNecessary() && g != nil {
				removeParent(j.inner, j, 1)
				g.checkIfUnnecessary(j.inner)
			}
			j.inner = want
			if want != nil && j.n.IsNecessary() && g != nil {
				if err := g.addChild(ctx, want, j, 1); err != nil {
					return err
				}
			}
		}
	}

	if j.inner != nil {
		j.value = j.inner.Value()
	}
	return nil
}
