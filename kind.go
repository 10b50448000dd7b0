package incr

// KindID is a closed tag enumerating every node shape a Node can
// carry (spec.md §4.1). It is stored directly on Node so the hot-loop
// predicates in node.go (Node.IsStale, Node.ShouldBeInvalidated) can
// switch on a cheap integer instead of
// going through an interface, even though child enumeration for a
// given kind is still reached through the Kind interface below.
type KindID uint8

const (
	// KindUninitialized is the transient kind of a Node between
	// NewNode and the combinator constructor finishing setup. Any
	// behavioral query against it is a contract violation (spec.md §4.1).
	KindUninitialized KindID = iota
	// KindConst is a plain constant; stale only until first computed.
	KindConst
	// KindVar is a settable leaf; stale iff set_at > recomputed_at.
	KindVar
	// KindAt, KindAtIntervals, KindSnapshot, KindStepFunction are the
	// time-driven leaf kinds. Their staleness rule is identical to
	// KindConst (recomputed_at = none); the Alarm subsystem that
	// drives their recomputation is an explicit external collaborator
	// (spec.md §1) and is not implemented in this package.
	KindAt
	KindAtIntervals
	KindSnapshot
	KindStepFunction
	// KindMapN is the fixed/dynamic-arity map combinator family
	// (Map1..Map9 collapse to this one kind, distinguished only by
	// the closure they hold).
	KindMapN
	// KindArrayFold and KindUnorderedArrayFold fold over a dynamic
	// slice of same-typed children.
	KindArrayFold
	KindUnorderedArrayFold
	// KindFreeze stops recomputing a child's value after the first
	// time a predicate is satisfied.
	KindFreeze
	// KindBindMain, KindBindLHSChange: a Bind's primary node and its
	// change-sentinel watching the left-hand input.
	KindBindMain
	KindBindLHSChange
	// KindIfThenElse, KindIfTestChange: an If's primary node and its
	// change-sentinel watching the test input.
	KindIfThenElse
	KindIfTestChange
	// KindJoinMain, KindJoinLHSChange: a Join's primary node and its
	// change-sentinel watching the outer input.
	KindJoinMain
	KindJoinLHSChange
	// KindInvalid is the absorbing terminal kind (spec.md §3 Lifecycle).
	KindInvalid
)

var kindIDNames = [...]string{
	KindUninitialized:      "uninitialized",
	KindConst:              "const",
	KindVar:                "var",
	KindAt:                 "at",
	KindAtIntervals:        "at_intervals",
	KindSnapshot:           "snapshot",
	KindStepFunction:       "step_function",
	KindMapN:               "map_n",
	KindArrayFold:          "array_fold",
	KindUnorderedArrayFold: "unordered_array_fold",
	KindFreeze:             "freeze",
	KindBindMain:           "bind",
	KindBindLHSChange:      "bind_lhs_change",
	KindIfThenElse:         "if",
	KindIfTestChange:       "if_test_change",
	KindJoinMain:           "join",
	KindJoinLHSChange:      "join_lhs_change",
	KindInvalid:            "invalid",
}

// String returns the diagnostic name for the kind id.
func (k KindID) String() string {
	if int(k) < len(kindIDNames) && kindIDNames[k] != "" {
		return kindIDNames[k]
	}
	return "unknown"
}

// isChangeSentinel returns true for the three internal kinds whose
// sole purpose is to observe one watched child and trigger graph
// restructuring (spec.md §4.1, Glossary "Change-sentinel node").
func (k KindID) isChangeSentinel() bool {
	switch k {
	case KindBindLHSChange, KindIfTestChange, KindJoinLHSChange:
		return true
	default:
		return false
	}
}

// isStructurallyStaticLeaf returns true for the leaf kinds whose
// staleness rule never inspects children (spec.md §4.2).
func (k KindID) isStructurallyStaticLeaf() bool {
	switch k {
	case KindConst, KindAt, KindAtIntervals, KindSnapshot, KindStepFunction:
		return true
	default:
		return false
	}
}

// Kind is implemented by every concrete combinator type and exposes
// the child set the node layer needs for traversal, invalidation, and
// height computation (spec.md §4.1). Each combinator implements this
// directly, the same way teacher combinators implement IStabilize and
// ICutoff by interface-sniffing their own concrete type.
type Kind interface {
	// KindID returns the closed tag for this kind.
	KindID() KindID
	// MaxNumChildren returns the upper bound on child slots, used to
	// size Node.parentIndexInChildAt.
	MaxNumChildren() int
	// ChildAt returns the child at index, or nil if the slot is
	// currently empty (e.g. a Bind before its first Bind() call).
	// Callers needing a total function should check has-value.
	ChildAt(index int) (INode, bool)
	// EachChild enumerates current children in a stable index order.
	EachChild(visit func(index int, child INode))
}

// watchedChildKind is implemented by the three change-sentinel kinds;
// should_be_invalidated (spec.md §4.3) and the DOT exporter need to
// find "the one watched child" without guessing at index 0.
type watchedChildKind interface {
	Kind
	WatchedChild() INode
}

// mainNodeKind is implemented by Bind_main, If_then_else, and
// Join_main: should_be_invalidated for these three kinds is driven
// exclusively by their corresponding change-sentinel child going
// invalid, not by any other child (spec.md §4.3, §9 Open Question).
type mainNodeKind interface {
	Kind
	ChangeSentinel() INode
}

// leafKind is a zero-children Kind helper carrying only a tag; NewNode
// uses it for Uninitialized and invalidateNode for Invalid. Const and
// Var implement Kind on their own types instead.
type leafKind struct {
	id KindID
}

func (k leafKind) KindID() KindID                         { return k.id }
func (k leafKind) MaxNumChildren() int                    { return 0 }
func (k leafKind) ChildAt(int) (INode, bool)              { return nil, false }
func (k leafKind) EachChild(func(index int, child INode)) {}
