package incr

import "context"

// Observe creates a new Observer watching input, marking it (and
// transitively everything it depends on) necessary if it was not
// already (spec.md §4.5 "Observe"). The returned Observer must
// eventually have Unobserve called on it, or the subgraph it keeps
// alive will never become unnecessary.
func Observe[A any](ctx context.Context, graph *Graph, input Incr[A]) (*Observer[A], error) {
	rec := &observer{
		id:    NewIdentifier(),
		graph: graph,
		node:  input,
		state: observerStateInUse,
	}
	if err := graph.addNewObserverToNode(ctx, rec, input); err != nil {
		return nil, err
	}
	return &Observer[A]{rec: rec, input: input}, nil
}
