package incr

// DetectCycleIfLinked reports whether linking child as a new input of
// parent would introduce a cycle, by walking child's existing input
// chain for parent's id. It is meant to be called before a dynamic
// combinator like ArrayFold.AddInput accepts a caller-supplied node,
// since add_child itself has no way to back out once the edge and any
// height adjustment it triggers are already applied (spec.md §4.4
// "add_parent", §7.1 "no cycles").
func DetectCycleIfLinked(parent, child INode) error {
	if parent.Node().id == child.Node().id {
		return newNodeError(parent.Node(), "detect_cycle_if_linked", ErrCycle)
	}
	visited := make(map[Identifier]bool)
	if reaches(child, parent.Node().id, visited) {
		return newNodeError(parent.Node(), "detect_cycle_if_linked", ErrCycle)
	}
	return nil
}

func reaches(n INode, target Identifier, visited map[Identifier]bool) bool {
	nn := n.Node()
	if visited[nn.id] {
		return false
	}
	visited[nn.id] = true
	found := false
	nn.Kind().EachChild(func(_ int, child INode) {
		if found {
			return
		}
		if child.Node().id == target || reaches(child, target, visited) {
			found = true
		}
	})
	return found
}
