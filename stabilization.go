package incr

// StabilizationNum is a monotone counter identifying a single
// stabilization pass of a Graph. The zero value, NeverStabilized, is
// the sentinel meaning "no stabilization has touched this yet" and
// compares less than every real pass number, so the usual
// "changed_at <= recomputed_at" and staleness comparisons work
// without a special case.
type StabilizationNum uint64

// NeverStabilized is the sentinel stabilization number meaning "none".
const NeverStabilized StabilizationNum = 0

// IsNone returns true if the stabilization number is the "none" sentinel.
func (s StabilizationNum) IsNone() bool {
	return s == NeverStabilized
}

// After returns true if s represents a strictly later stabilization
// pass than other.
func (s StabilizationNum) After(other StabilizationNum) bool {
	return s > other
}
