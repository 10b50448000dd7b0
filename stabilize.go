package incr

import "context"

// Stabilize runs a full stabilization pass: it drains the recompute
// heap in ascending height order, recomputing every necessary, stale
// node exactly once, until the heap is empty (spec.md §5). Nodes
// whose combinator implements IAlways are re-queued immediately after
// they recompute so they run again on the very next pass without
// waiting for an explicit SetStale.
func (graph *Graph) Stabilize(ctx context.Context) (err error) {
	if err = graph.ensureNotStabilizing(ctx); err != nil {
		return
	}
	graph.stabilizeStart(ctx)
	defer func() {
		graph.stabilizeEnd(ctx, err)
	}()

	var alwaysRecompute []*Node
	for !graph.recomputeHeap.IsEmpty() {
		n := graph.recomputeHeap.removeMin()
		if n == nil {
			break
		}
		if err = graph.recompute(ctx, n); err != nil {
			return err
		}
		if n.always {
			alwaysRecompute = append(alwaysRecompute, n)
		}
	}
	for _, n := range alwaysRecompute {
		if !n.IsInRecomputeHeap() {
			graph.recomputeHeap.add(n)
		}
	}
	return nil
}

// StabilizeOne runs a single node's subgraph through Stabilize after
// ensuring it is queued, a convenience wrapper spec.md §5 describes
// as equivalent to SetStale followed by Stabilize for leaf inputs.
func (graph *Graph) StabilizeOne(ctx context.Context, n INode) error {
	nn := n.Node()
	if nn.IsNecessary() && !nn.IsInRecomputeHeap() && nn.IsStale() {
		graph.recomputeHeap.add(nn)
	}
	return graph.Stabilize(ctx)
}
