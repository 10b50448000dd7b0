package incr

// Const returns a node that always holds value and is never stale
// after its first stabilization (spec.md §4.1 "Const"). It has no
// children and never recomputes once it has produced its one value.
func Const[A any](scope Scope, value A) Incr[A] {
	n := NewNode()
	c := &constIncr[A]{n: n, value: value}
	n.SetKind(c)
	n.createdIn = scope
	n.hasValue = true
	return c
}

type constIncr[A any] struct {
	n     *Node
	value A
}

func (c *constIncr[A]) Node() *Node { return c.n }
func (c *constIncr[A]) Value() A    { return c.value }

func (c *constIncr[A]) KindID() KindID                         { return KindConst }
func (c *constIncr[A]) MaxNumChildren() int                    { return 0 }
func (c *constIncr[A]) ChildAt(int) (INode, bool)              { return nil, false }
func (c *constIncr[A]) EachChild(func(index int, child INode)) {}
