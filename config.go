package incr

import "sync/atomic"

// config holds the process-wide, read-mostly flags described in
// spec.md §6 "Configuration options (process-wide)". They are stored
// as atomics rather than plain bools because node creation can
// legitimately race with a flag flip in test setup/teardown, even
// though the graph itself is single-threaded per spec.md §5.
var (
	keepNodeCreationBacktrace atomic.Bool
	verboseLogging            atomic.Bool
	debugAssertions           atomic.Bool
)

// SetKeepNodeCreationBacktrace toggles capturing a backtrace on every
// new node (Node.creationBacktrace). Off by default: capturing a
// backtrace on every node allocation is expensive and is only useful
// while debugging a leak or an invariant violation.
func SetKeepNodeCreationBacktrace(on bool) {
	keepNodeCreationBacktrace.Store(on)
}

// KeepNodeCreationBacktrace returns the current setting.
func KeepNodeCreationBacktrace() bool {
	return keepNodeCreationBacktrace.Load()
}

// SetVerbose toggles debug-level logging of graph-internal events
// (stabilization start and end, per-node recompute and cutoff) for
// loggers created by WithTracing after the call.
func SetVerbose(on bool) {
	verboseLogging.Store(on)
}

// Verbose returns the current setting.
func Verbose() bool {
	return verboseLogging.Load()
}

// SetDebug toggles extra assertions. The one check that reads it is
// the observer-state check in on-update dispatch (onupdate.go), which
// panics only while Debug is on.
func SetDebug(on bool) {
	debugAssertions.Store(on)
}

// Debug returns the current setting.
func Debug() bool {
	return debugAssertions.Load()
}
