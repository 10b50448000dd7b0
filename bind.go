package incr

import "context"

// Bind lets an entire subgraph be swapped out based on a function of
// a single input (spec.md §4.1 "Bind"). fn receives a Scope: any node
// it constructs must be created in that scope (rather than the
// outer one) so it is torn down automatically the next time the bind
// rebinds or is itself invalidated (spec.md Glossary "Scope").
//
// Internally a Bind is two linked nodes: a Bind_lhs_change sentinel
// that watches lhs and is what should_be_invalidated checks against
// (spec.md §4.3, §9), and the Bind_main node returned to the caller,
// whose value is whatever the currently-bound right-hand incremental
// currently reads (no local copy is kept; Value() reads straight
// through). This mirrors the teacher's bindIncr/unlinkOld/linkNew
// shape in spirit, generalized from a flat child/observer map
// rewiring to proper Scope-scoped node teardown.
func Bind[A, B any](scope Scope, lhs Incr[A], fn func(Scope, A) Incr[B]) Incr[B] {
	return BindContext[A, B](scope, lhs, func(_ context.Context, s Scope, va A) (Incr[B], error) {
		return fn(s, va), nil
	})
}

// BindContext is like Bind but allows the bind delegate to take a
// context and return an error; a returned error aborts the
// stabilization pass with a NodeError wrapping it.
func BindContext[A, B any](scope Scope, lhs Incr[A], fn func(context.Context, Scope, A) (Incr[B], error)) Incr[B] {
	lc := &bindLHSChangeIncr[A]{lhs: lhs}
	lc.n = NewNode()
	lc.n.SetKind(lc)
	lc.n.createdIn = scope

	b := &bindIncr[A, B]{lhs: lhs, fn: fn, lhsChange: lc}
	b.n = NewNode()
	b.n.SetKind(b)
	b.n.createdIn = scope
	return b
}

// bindLHSChangeIncr is the Bind_lhs_change sentinel: its only purpose
// is to recompute (and so bump changedAt) whenever lhs changes, which
// is what makes Bind_main stale via the ordinary "any child changed"
// rule, and what should_be_invalidated checks for Bind_main's own
// invalidation (spec.md §4.3).
type bindLHSChangeIncr[A any] struct {
	n   *Node
	lhs Incr[A]
}

func (lc *bindLHSChangeIncr[A]) Node() *Node { return lc.n }

func (lc *bindLHSChangeIncr[A]) KindID() KindID      { return KindBindLHSChange }
func (lc *bindLHSChangeIncr[A]) MaxNumChildren() int { return 1 }
func (lc *bindLHSChangeIncr[A]) ChildAt(index int) (INode, bool) {
	if index != 0 {
		return nil, false
	}
	return lc.lhs, true
}
func (lc *bindLHSChangeIncr[A]) EachChild(visit func(index int, child INode)) {
	visit(0, lc.lhs)
}
func (lc *bindLHSChangeIncr[A]) WatchedChild() INode { return lc.lhs }

// bindIncr is the Bind_main node. Its children are its lhs_change
// sentinel at slot 0 and, once bound, the currently-bound
// right-hand-side node at slot 1 (kept dynamic, unlike every other
// combinator's fixed child list, because rebinding replaces it).
type bindIncr[A, B any] struct {
	n         *Node
	lhs       Incr[A]
	fn        func(context.Context, Scope, A) (Incr[B], error)
	lhsChange *bindLHSChangeIncr[A]
	bound     Incr[B]
	scope     *bindScope
}

func (b *bindIncr[A, B]) Node() *Node { return b.n }

func (b *bindIncr[A, B]) Value() (out B) {
	if b.bound != nil {
		out = b.bound.Value()
	}
	return
}

func (b *bindIncr[A, B]) KindID() KindID      { return KindBindMain }
func (b *bindIncr[A, B]) MaxNumChildren() int { return 2 }
func (b *bindIncr[A, B]) ChildAt(index int) (INode, bool) {
	switch index {
	case 0:
		return b.lhsChange, true
	case 1:
		if b.bound == nil {
			return nil, false
		}
		return b.bound, true
	default:
		return nil, false
	}
}
func (b *bindIncr[A, B]) EachChild(visit func(index int, child INode)) {
	visit(0, b.lhsChange)
	if b.bound != nil {
		visit(1, b.bound)
	}
}
func (b *bindIncr[A, B]) ChangeSentinel() INode { return b.lhsChange }

// EachRHSScopeNode visits every node currently created on this bind's
// rhs scope, for diagnostics (spec.md §4.8 DOT export: "a dashed edge
// from any Bind_lhs_change to each node created on its rhs").
func (b *bindIncr[A, B]) EachRHSScopeNode(visit func(INode)) {
	if b.scope == nil {
		return
	}
	b.scope.eachScopeNode(visit)
}

// Stabilize only performs the rebind work when lhs_change actually
// recomputed this pass; on every other recompute (e.g. the bound
// rhs's own value changed) Value() already reads through live, so
// there is nothing to do.
func (b *bindIncr[A, B]) Stabilize(ctx context.Context) error {
	g := b.n.graph
	if b.lhsChange.n.changedAt != g.stabilizationNum {
		return nil
	}

	newScope := newBindScope(b)
	newRHS, err := b.fn(ctx, newScope, b.lhs.Value())
	if err != nil {
		return err
	}

	oldScope := b.scope
	oldBound := b.bound

	rebinding := (oldBound == nil) != (newRHS == nil)
	if oldBound != nil && newRHS != nil {
		rebinding = oldBound.Node().id != newRHS.Node().id
	}

	if rebinding {
		if oldBound != nil && b.n.IsNecessary() && g != nil {
			removeParent(oldBound, b, 1)
			g.checkIfUnnecessary(oldBound)
		}
		b.bound = newRHS
		if newRHS != nil && b.n.IsNecessary() && g != nil {
			if err := g.addChild(ctx, newRHS, b, 1); err != nil {
				return err
			}
		}
	}

	b.scope = newScope
	if oldScope != nil {
		oldScope.invalidate()
		g.invalidateScopeNodes(ctx, oldScope)
	}
	b.n.boundAt = g.stabilizationNum
	return nil
}

// invalidateBind implements IBindMain: when Bind_main itself is
// invalidated (because its own lhs_change sentinel went invalid), the
// entire currently-bound subgraph is torn down with it.
func (b *bindIncr[A, B]) invalidateBind(ctx context.Context) error {
	if b.scope != nil {
		b.scope.invalidate()
		if b.n.graph != nil {
			b.n.graph.invalidateScopeNodes(ctx, b.scope)
		}
	}
	b.bound = nil
	return nil
}

// invalidateScopeNodes invalidates every node on scope's node list,
// walking it head first, which is the most recently added node first.
func (graph *Graph) invalidateScopeNodes(ctx context.Context, scope *bindScope) {
	scope.eachScopeNode(func(n INode) {
		if n.Node().IsValid() {
			graph.invalidateNode(ctx, n)
		}
	})
}
