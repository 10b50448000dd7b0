package incr

import "context"

// If selects between then_ and else_ based on test's current boolean
// value (spec.md §4.1 "If"). Unlike Bind, the two branches are fixed,
// already-constructed nodes rather than something built on the fly, so
// If needs no Scope of its own — it just changes which of two existing
// children it reads through.
//
// The same two-node shape as Bind applies: an If_test_change sentinel
// watching test, and the If_then_else main node whose
// should_be_invalidated is driven solely by that sentinel (spec.md
// §4.3, §9).
func If[A any](scope Scope, test Incr[bool], then_, else_ Incr[A]) Incr[A] {
	tc := &ifTestChangeIncr{test: test}
	tc.n = NewNode()
	tc.n.SetKind(tc)
	tc.n.createdIn = scope

	i := &ifIncr[A]{test: test, then_: then_, else_: else_, testChange: tc}
	i.n = NewNode()
	i.n.SetKind(i)
	i.n.createdIn = scope
	return i
}

type ifTestChangeIncr struct {
	n    *Node
	test Incr[bool]
}

func (tc *ifTestChangeIncr) Node() *Node { return tc.n }

func (tc *ifTestChangeIncr) KindID() KindID      { return KindIfTestChange }
func (tc *ifTestChangeIncr) MaxNumChildren() int { return 1 }
func (tc *ifTestChangeIncr) ChildAt(index int) (INode, bool) {
	if index != 0 {
		return nil, false
	}
	return tc.test, true
}
func (tc *ifTestChangeIncr) EachChild(visit func(index int, child INode)) {
	visit(0, tc.test)
}
func (tc *ifTestChangeIncr) WatchedChild() INode { return tc.test }

// ifIncr is the If_then_else main node. Its children are the test
// sentinel at slot 0 and whichever of then_/else_ is currently
// selected at slot 1; the unselected branch is not linked as a child
// at all, so it does not force recomputation or keep itself necessary
// on If's account (spec.md §4.1 "If" — "only the live branch is a
// dependency").
type ifIncr[A any] struct {
	n          *Node
	test       Incr[bool]
	then_      Incr[A]
	else_      Incr[A]
	testChange *ifTestChangeIncr
	selected   Incr[A]
	value      A
}

func (i *ifIncr[A]) Node() *Node { return i.n }
func (i *ifIncr[A]) Value() A    { return i.value }

func (i *ifIncr[A]) KindID() KindID      { return KindIfThenElse }
func (i *ifIncr[A]) MaxNumChildren() int { return 2 }
func (i *ifIncr[A]) ChildAt(index int) (INode, bool) {
	switch index {
	case 0:
		return i.testChange, true
	case 1:
		if i.selected == nil {
			return nil, false
		}
		return i.selected, true
	default:
		return nil, false
	}
}
func (i *ifIncr[A]) EachChild(visit func(index int, child INode)) {
	visit(0, i.testChange)
	if i.selected != nil {
		visit(1, i.selected)
	}
}
func (i *ifIncr[A]) ChangeSentinel() INode { return i.testChange }

// Stabilize relinks slot 1 to whichever branch test currently selects
// (only on passes where the test sentinel itself just changed), then
// always reads the live value of whatever is selected.
func (i *ifIncr[A]) Stabilize(ctx context.Context) error {
	g := i.n.graph

	if i.testChange.n.changedAt == g.stabilizationNum || i.selected == nil {
		want := i.else_
		if i.test.Value() {
			want = i.then_
		}
		if i.selected == nil || i.selected.Node().id != want.Node().id {
			if i.selected != nil && i.n.IsNecessary() && g != nil {
				removeParent(i.selected, i, 1)
				g.checkIfUnnecessary(i.selected)
			}
			i.selected = want
			if i.n.IsNecessary() && g != nil {
				if err := g.addChild(ctx, want, i, 1); err != nil {
					return err
				}
			}
		}
	}

	i.value = i.selected.Value()
	return nil
}
