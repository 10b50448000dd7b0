package incr

import "context"

// DiffMapByKeys returns two incrementals derived from a map-valued
// input: one holding just the keys added since the last stabilization,
// the other just the keys removed (spec.md §4.1 "MapN" family — this
// is a MapN-shaped supplement built the same way Map1/Map2 are, kept
// here as its own file since it is a matched pair rather than a single
// combinator).
func DiffMapByKeys[K comparable, V any](scope Scope, input Incr[map[K]V]) (added, removed Incr[map[K]V]) {
	return DiffMapByKeysAdded(scope, input), DiffMapByKeysRemoved(scope, input)
}

// DiffMapByKeysAdded returns an incremental holding just the subset of
// input's map that is present now but was not present last time this
// node recomputed.
func DiffMapByKeysAdded[K comparable, V any](scope Scope, input Incr[map[K]V]) Incr[map[K]V] {
	d := &diffMapByKeysAddedIncr[K, V]{input: input}
	d.n = NewNode()
	d.n.SetKind(d)
	d.n.createdIn = scope
	return d
}

// DiffMapByKeysRemoved returns an incremental holding just the subset
// of input's map that was present last time this node recomputed but
// is no longer present.
func DiffMapByKeysRemoved[K comparable, V any](scope Scope, input Incr[map[K]V]) Incr[map[K]V] {
	d := &diffMapByKeysRemovedIncr[K, V]{input: input}
	d.n = NewNode()
	d.n.SetKind(d)
	d.n.createdIn = scope
	return d
}

type diffMapByKeysAddedIncr[K comparable, V any] struct {
	n     *Node
	input Incr[map[K]V]
	value map[K]V
	prev  map[K]V
}

func (d *diffMapByKeysAddedIncr[K, V]) Node() *Node     { return d.n }
func (d *diffMapByKeysAddedIncr[K, V]) Value() map[K]V  { return d.value }
func (d *diffMapByKeysAddedIncr[K, V]) Stabilize(context.Context) error {
	next := d.input.Value()
	d.value = diffMapByKeysAdded(d.prev, next)
	d.prev = next
	return nil
}
func (d *diffMapByKeysAddedIncr[K, V]) KindID() KindID      { return KindMapN }
func (d *diffMapByKeysAddedIncr[K, V]) MaxNumChildren() int { return 1 }
func (d *diffMapByKeysAddedIncr[K, V]) ChildAt(index int) (INode, bool) {
	if index != 0 {
		return nil, false
	}
	return d.input, true
}
func (d *diffMapByKeysAddedIncr[K, V]) EachChild(visit func(index int, child INode)) {
	visit(0, d.input)
}

type diffMapByKeysRemovedIncr[K comparable, V any] struct {
	n     *Node
	input Incr[map[K]V]
	value map[K]V
	prev  map[K]V
}

func (d *diffMapByKeysRemovedIncr[K, V]) Node() *Node    { return d.n }
func (d *diffMapByKeysRemovedIncr[K, V]) Value() map[K]V { return d.value }
func (d *diffMapByKeysRemovedIncr[K, V]) Stabilize(context.Context) error {
	next := d.input.Value()
	d.value = diffMapByKeysRemoved(d.prev, next)
	d.prev = next
	return nil
}
func (d *diffMapByKeysRemovedIncr[K, V]) KindID() KindID      { return KindMapN }
func (d *diffMapByKeysRemovedIncr[K, V]) MaxNumChildren() int { return 1 }
func (d *diffMapByKeysRemovedIncr[K, V]) ChildAt(index int) (INode, bool) {
	if index != 0 {
		return nil, false
	}
	return d.input, true
}
func (d *diffMapByKeysRemovedIncr[K, V]) EachChild(visit func(index int, child INode)) {
	visit(0, d.input)
}

func diffMapByKeysAdded[K comparable, V any](prev, next map[K]V) map[K]V {
	add := make(map[K]V)
	for k, v := range next {
		if _, ok := prev[k]; !ok {
			add[k] = v
		}
	}
	return add
}

func diffMapByKeysRemoved[K comparable, V any](prev, next map[K]V) map[K]V {
	rem := make(map[K]V)
	for k, v := range prev {
		if _, ok := next[k]; !ok {
			rem[k] = v
		}
	}
	return rem
}
