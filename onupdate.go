package incr

import (
	"context"
	"time"
)

// UpdateEvent distinguishes why an on-update handler is firing
// (spec.md §4.6 run_on_update_handlers(t, event, now)).
type UpdateEvent uint8

const (
	// UpdateEventChanged fires after a node recomputed and its cutoff
	// did not suppress propagation.
	UpdateEventChanged UpdateEvent = iota
	// UpdateEventInvalidated fires when a node transitioned to Invalid.
	UpdateEventInvalidated
)

func (e UpdateEvent) String() string {
	switch e {
	case UpdateEventChanged:
		return "changed"
	case UpdateEventInvalidated:
		return "invalidated"
	default:
		return "unknown"
	}
}

// OnUpdateHandler is the callback payload registered via
// Node.OnUpdate. Handlers may mutate the graph (add observers, set
// variables, disable observers) but may not append more handlers to
// the list currently being drained and expect them to run in the same
// dispatch (spec.md §4.6).
type OnUpdateHandler func(ctx context.Context, event UpdateEvent, now time.Time)

// runHandlerList drains a frozen snapshot of a handler slice in LIFO
// order (new handlers are prepended at registration time in
// Node.OnUpdate, so iterating the slice front-to-back here is
// equivalent to "reverse insertion order"; spec.md §5 ordering
// guarantees, §8 "drains in LIFO order from the currently frozen head").
func runHandlerList(ctx context.Context, handlers []OnUpdateHandler, event UpdateEvent, now time.Time) {
	for _, h := range handlers {
		h(ctx, event, now)
	}
}

// runOnUpdateHandlers implements spec.md §4.6 in full: first the
// node's own handlers, then each linked observer's handlers, with the
// observer's state re-read before every single invocation so that a
// handler disabling its own observer mid-dispatch stops the rest of
// that observer's handlers from running in the same pass.
func runOnUpdateHandlers(ctx context.Context, n *Node, event UpdateEvent, now time.Time) {
	// Node.OnUpdate prepends, so the slice is already head-first;
	// freeze the length so handlers appended during this drain do not
	// run in this pass.
	frozen := n.onUpdateHandlers[:len(n.onUpdateHandlers):len(n.onUpdateHandlers)]
	runHandlerList(ctx, frozen, event, now)

	n.iterObservers(func(o *observer) bool {
		obsHandlers := o.onUpdateHandlers[:len(o.onUpdateHandlers):len(o.onUpdateHandlers)]
		for _, h := range obsHandlers {
			switch o.state {
			case observerStateInUse:
				h(ctx, event, now)
			case observerStateDisallowed:
				continue
			default:
				// Created/Unlinked observers must never be linked into
				// a live node's observer list (spec.md §4.5). With
				// Debug on this contract violation panics; with it off
				// the handler is skipped.
				if Debug() {
					panic(newNodeError(n, "observer in non-linkable state during dispatch", ErrObserverNotLinkable))
				}
			}
		}
		return true
	})
}
