// Package stats holds the process-wide statistics counters from spec.md
// Section 3 and Section 7: monotonic for the life of the Context, reset
// only by explicit re-init.
package stats

// Counters holds the process-wide packet and error counters (spec.md
// Section 3: "Statistics"). All fields are monotonic; callers mutate them
// only while holding the context-wide critical section guard.
type Counters struct {
	RXPackets uint64
	TXPackets uint64
	RXErrors  uint64
	TXErrors  uint64
	RXDropped uint64
	TXDropped uint64

	ChecksumErrors uint64
	RoutingErrors  uint64
}

// Snapshot returns a copy of the counters for external consumers (the
// get_statistics public operation, the Prometheus exporter). Counters is
// small and copy-by-value on every read is intentional: callers must never
// hold a live pointer into the Context across calls.
func (c *Counters) Snapshot() Counters {
	return *c
}

// Reset zeroes every counter, used only by explicit Context re-init
// (spec.md Section 3: "Monotonic; reset only on explicit re-init.").
func (c *Counters) Reset() {
	*c = Counters{}
}
