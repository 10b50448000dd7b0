package incr

// Return is an alias for Const kept for familiarity with the
// teacher's original naming; a "returned" value is a constant leaf,
// not something bound to a Var (spec.md §4.1 "Const").
func Return[A any](scope Scope, value A) Incr[A] {
	return Const(scope, value)
}
