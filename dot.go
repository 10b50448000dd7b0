package incr

import (
	"fmt"
	"io"
)

// IterDescendants does a depth-first visit of roots and everything
// reachable from them via Kind().EachChild, calling visit once per
// distinct node id (spec.md §4.8). A visited-id set makes this safe to
// call even against a malformed graph that contains a cycle, which is
// exactly the diagnostic situation this exists for.
func IterDescendants(visit func(INode), roots ...INode) {
	visited := make(map[Identifier]bool)
	var walk func(n INode)
	walk = func(n INode) {
		nn := n.Node()
		if visited[nn.id] {
			return
		}
		visited[nn.id] = true
		visit(n)
		nn.Kind().EachChild(func(_ int, child INode) {
			walk(child)
		})
	}
	for _, root := range roots {
		walk(root)
	}
}

// rhsScopeOwner is implemented by combinators (currently only
// Bind_main) that own a rhs Scope whose nodes should be called out
// specially in diagnostics.
type rhsScopeOwner interface {
	EachRHSScopeNode(visit func(INode))
}

// Dot writes a Graphviz DOT representation of the subgraph reachable
// from roots (spec.md §4.8). Each node is rendered with its kind,
// height, and label if set; edges are drawn child -> parent, matching
// the direction data actually flows during recompute. Every node
// created on a Bind's rhs scope additionally gets a dashed edge from
// that Bind's lhs_change sentinel, surfacing the scope relationship
// that EachChild alone does not expose.
//
// There is no graphviz-rendering dependency anywhere in the retrieved
// pack, so this stays on the standard library (io/fmt) rather than
// reaching for a third-party DOT writer (see DESIGN.md).
func Dot(w io.Writer, roots ...INode) error {
	var visitErr error

	emit := func(format string, args ...any) {
		if visitErr != nil {
			return
		}
		if _, err := fmt.Fprintf(w, format, args...); err != nil {
			visitErr = err
		}
	}

	emit("digraph incr {\n")
	emit("  rankdir=BT;\n")

	inGraph := make(map[Identifier]bool)
	IterDescendants(func(n INode) {
		inGraph[n.Node().id] = true
	}, roots...)

	var scopeEdges []string
	IterDescendants(func(n INode) {
		nn := n.Node()
		label := nn.label
		if label == "" {
			label = nn.kindID.String()
		}
		emit("  %q [label=%q, shape=box];\n", nn.id.String(), fmt.Sprintf("%s\nheight=%d", label, nn.height))

		nn.Kind().EachChild(func(_ int, child INode) {
			emit("  %q -> %q;\n", child.Node().id.String(), nn.id.String())
		})

		if owner, ok := n.(rhsScopeOwner); ok {
			if mnk, ok := n.(mainNodeKind); ok {
				sentinel := mnk.ChangeSentinel()
				owner.EachRHSScopeNode(func(rhs INode) {
					if inGraph[rhs.Node().id] {
						scopeEdges = append(scopeEdges, fmt.Sprintf("  %q -> %q [style=dashed];\n", sentinel.Node().id.String(), rhs.Node().id.String()))
					}
				})
			}
		}
	}, roots...)

	for _, edge := range scopeEdges {
		emit("%s", edge)
	}

	emit("}\n")
	return visitErr
}
